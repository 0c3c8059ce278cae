package pram

// Executor is a bulk-synchronous parallel-for / parallel-filter built on
// top of a Pool. Each call splits its index range into contiguous batches,
// one per worker by default, and dispatches them through the pool's
// ExecuteSync barrier so the caller observes every batch complete before
// returning.
type Executor struct {
	pool *Pool
}

// NewExecutor returns an Executor driving work through pool.
func NewExecutor(pool *Pool) *Executor {
	return &Executor{pool: pool}
}

// Parallelism returns the number of batches Pfor uses by default, equal to
// the underlying pool's worker count.
func (e *Executor) Parallelism() int {
	return e.pool.Parallelism()
}

type batchRange struct{ lo, hi int }

// splitBatches partitions [from, to) into b contiguous batches whose sizes
// differ by at most one: the first `b - ((b*s - n) mod b)` batches have
// size s = ceil(n/b), the rest have size floor(n/b).
func splitBatches(from, to, b int) []batchRange {
	n := to - from
	if n <= 0 {
		return nil
	}
	if b < 1 {
		b = 1
	}
	if b > n {
		b = n
	}
	s := ceilDiv(n, b)
	full := b - (((b*s-n)%b)+b)%b

	ranges := make([]batchRange, b)
	lo := from
	for i := 0; i < b; i++ {
		size := s
		if i >= full {
			size = n / b
		}
		hi := lo + size
		ranges[i] = batchRange{lo, hi}
		lo = hi
	}
	return ranges
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}

// runBatched dispatches b contiguous batches over [from, to) through the
// pool's barrier, invoking fn(batchIndex, lo, hi) for each. Callers that
// need one disjoint output slot per batch (Pfilter, the BFS frontier)
// index it by batchIndex.
func (e *Executor) runBatched(from, to, b int, fn func(batchIdx, lo, hi int)) {
	if to <= from {
		return
	}
	ranges := splitBatches(from, to, b)
	bodies := make([]func(), len(ranges))
	for i, r := range ranges {
		i, r := i, r
		bodies[i] = func() { fn(i, r.lo, r.hi) }
	}
	e.pool.ExecuteSync(bodies)
}

// Pfor applies body to every index in [from, to), split into
// Parallelism() contiguous batches and run across the pool. It blocks
// until every index has been processed.
func (e *Executor) Pfor(from, to int, body func(i int)) {
	e.runBatched(from, to, e.Parallelism(), func(_, lo, hi int) {
		for i := lo; i < hi; i++ {
			body(i)
		}
	})
}

// PforBatchSize applies body to every index in [from, to), split into
// ceil((to-from)/batchSize) contiguous batches rather than one batch per
// worker. Each batch holds at most batchSize indices, and batch sizes
// differ by at most one (see splitBatches). The number of batches may
// exceed Parallelism(), in which case a worker runs more than one batch.
func (e *Executor) PforBatchSize(from, to, batchSize int, body func(i int)) {
	n := to - from
	if n <= 0 {
		return
	}
	if batchSize < 1 {
		batchSize = 1
	}
	b := ceilDiv(n, batchSize)
	e.runBatched(from, to, b, func(_, lo, hi int) {
		for i := lo; i < hi; i++ {
			body(i)
		}
	})
}

// Pfilter returns the subsequence of items for which predicate holds,
// preserving relative order. It splits items into Parallelism() batches,
// each writing its matches into its own pre-sized local slice, then
// concatenates the per-batch results in batch order. Pre-sizing (rather
// than appending to a shared slice, or to per-worker slices created only
// after the fact) is what makes the per-batch writes race-free.
func Pfilter[T any](e *Executor, items []T, predicate func(T) bool) []T {
	n := len(items)
	if n == 0 {
		return nil
	}
	b := e.Parallelism()
	if b > n {
		b = n
	}
	local := make([][]T, b)
	e.runBatched(0, n, b, func(batchIdx, lo, hi int) {
		matches := make([]T, 0, hi-lo)
		for i := lo; i < hi; i++ {
			if predicate(items[i]) {
				matches = append(matches, items[i])
			}
		}
		local[batchIdx] = matches
	})

	result := make([]T, 0, n)
	for _, m := range local {
		result = append(result, m...)
	}
	return result
}
