package pram

import (
	"cmp"
	"context"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
)

// StopCondition decides when a randomized test loop should stop drawing
// more operations. Reset prepares the condition for a fresh run (starting
// a duration's clock, zeroing a repeat counter); Check is polled once per
// iteration and returns false when the loop should end.
type StopCondition interface {
	Reset()
	Check() bool
}

// Repeats is a StopCondition satisfied by a fixed iteration count.
type Repeats struct {
	n   uint64
	cur uint64
}

// NewRepeats returns a StopCondition that allows exactly n iterations.
func NewRepeats(n uint64) *Repeats {
	return &Repeats{n: n}
}

// Reset zeroes the repeat counter.
func (r *Repeats) Reset() {
	r.cur = 0
}

// Check reports whether another iteration is allowed, then advances the
// counter.
func (r *Repeats) Check() bool {
	ok := r.cur < r.n
	r.cur++
	return ok
}

// DurationSeconds is a StopCondition satisfied until a fixed wall-clock
// duration has elapsed since the last Reset.
type DurationSeconds struct {
	clock Clock
	dur   time.Duration
	start time.Time
}

// NewDurationSeconds returns a StopCondition bounded by seconds of wall
// time measured against clock. A nil clock falls back to DefaultClock.
func NewDurationSeconds(clock Clock, seconds int) *DurationSeconds {
	if clock == nil {
		clock = DefaultClock
	}
	return &DurationSeconds{clock: clock, dur: time.Duration(seconds) * time.Second}
}

// Reset restarts the duration's clock at the current time.
func (d *DurationSeconds) Reset() {
	d.start = d.clock.Now()
}

// Check reports whether the configured duration has not yet elapsed.
func (d *DurationSeconds) Check() bool {
	return d.clock.Since(d.start) < d.dur
}

// WeightedOp is one randomly-dispatched outcome of a RunWeighted loop: Op
// is attempted with probability proportional to Weight among its siblings.
// Op returns false to signal a failed postcondition, aborting the loop.
type WeightedOp struct {
	Weight int
	Op     func() bool
}

// RunWeighted repeatedly draws a weighted-random outcome from outcomes and
// invokes it, for as long as cond allows another iteration. If common is
// non-nil it runs after every outcome and must also hold. RunWeighted
// returns an *InvariantViolation the first time an outcome or common
// reports failure; it never retries past that point.
func RunWeighted(cond StopCondition, common func() bool, outcomes []WeightedOp, rng Generator) error {
	total := 0
	for _, o := range outcomes {
		total += o.Weight
	}
	if total <= 0 {
		return NewUsageError("RunWeighted: outcome weights must sum to a positive total, got %d", total)
	}

	cond.Reset()
	for cond.Check() {
		idx := rng.IntN(total)
		for _, o := range outcomes {
			if idx < o.Weight {
				if !o.Op() {
					return NewInvariantViolation("harness", "weighted operation reported failure", nil)
				}
				break
			}
			idx -= o.Weight
		}
		if common != nil && !common() {
			return NewInvariantViolation("harness", "common postcondition failed", nil)
		}
	}
	return nil
}

// Prepopulate seeds tree with a random subset of all (each candidate
// included independently with probability 1/2), inserting the chosen
// subset in balanced order: insert the midpoint of a range first, then
// recurse on the two halves, so the resulting tree isn't a degenerate
// chain of hand-over-hand-locked nodes. It returns the keys it inserted.
func Prepopulate[K cmp.Ordered](tree *Tree[K], all []K, rng Generator) []K {
	inserted := make([]K, 0, len(all)*2/3)
	for _, v := range all {
		if rng.IntN(2) == 1 {
			inserted = append(inserted, v)
		}
	}

	type span struct{ l, r int }
	stack := []span{{0, len(inserted)}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.l >= s.r {
			continue
		}
		m := s.l + (s.r-s.l)/2
		tree.Insert(inserted[m])
		if s.l < m {
			stack = append(stack, span{s.l, m})
		}
		if m+1 < s.r {
			stack = append(stack, span{m + 1, s.r})
		}
	}

	return inserted
}

// HistoryTestConfig configures RunHistoryTest.
type HistoryTestConfig[K cmp.Ordered] struct {
	// Tree is prepopulated and then exercised concurrently.
	Tree *Tree[K]
	// Values is the candidate keyspace random Insert/Remove/Contains calls
	// draw from.
	Values []K
	// Parallelism is the number of goroutines issuing operations.
	Parallelism int
	// X weights Insert and Remove equally against Contains: each of
	// Insert and Remove gets weight X, Contains gets weight 10-2X. Must
	// satisfy 0 <= X <= 5.
	X int
	// NewStopCondition builds a fresh StopCondition for each goroutine
	// (a duration-based condition carries its own start time per caller).
	NewStopCondition func() StopCondition
	// Rng supplies randomness for key selection and prepopulation. It is
	// shared across every goroutine, so it must be safe for concurrent
	// use (NewGenerator and NewSeededGenerator both are).
	Rng Generator
}

// RunHistoryTest prepopulates cfg.Tree with a random subset of cfg.Values,
// then runs cfg.Parallelism goroutines concurrently issuing weighted
// random Insert/Remove/Contains calls until each goroutine's stop
// condition is exhausted. It returns the recorded per-thread operation
// history, suitable for CheckLinearizable.
func RunHistoryTest[K cmp.Ordered](cfg HistoryTestConfig[K]) (History[K], error) {
	if cfg.X < 0 || cfg.X > 5 {
		return History[K]{}, NewUsageError("RunHistoryTest: x must satisfy 0 <= x <= 5, got %d", cfg.X)
	}
	if cfg.Parallelism <= 0 {
		return History[K]{}, NewUsageError("RunHistoryTest: parallelism must be positive, got %d", cfg.Parallelism)
	}
	if len(cfg.Values) == 0 {
		return History[K]{}, NewUsageError("RunHistoryTest: values must be non-empty")
	}

	inserted := Prepopulate(cfg.Tree, cfg.Values, cfg.Rng)

	threads := make([][]Operation[K], cfg.Parallelism)
	errs := make([]error, cfg.Parallelism)
	var wg sync.WaitGroup
	wg.Add(cfg.Parallelism)

	for i := 0; i < cfg.Parallelism; i++ {
		go func(i int) {
			defer wg.Done()
			var ops []Operation[K]

			randomKey := func() K {
				return cfg.Values[cfg.Rng.IntN(len(cfg.Values))]
			}
			outcomes := []WeightedOp{
				{Weight: cfg.X, Op: func() bool {
					key := randomKey()
					inserted, ts := cfg.Tree.Insert(key)
					ops = append(ops, Operation[K]{Kind: OpInsert, Key: key, EntryTS: ts, Result: inserted})
					return true
				}},
				{Weight: cfg.X, Op: func() bool {
					key := randomKey()
					removed, ts := cfg.Tree.Remove(key)
					ops = append(ops, Operation[K]{Kind: OpRemove, Key: key, EntryTS: ts, Result: removed})
					return true
				}},
				{Weight: 10 - 2*cfg.X, Op: func() bool {
					key := randomKey()
					result, ts := cfg.Tree.Contains(key)
					ops = append(ops, Operation[K]{Kind: OpContains, Key: key, EntryTS: ts, Result: result})
					return true
				}},
			}

			errs[i] = RunWeighted(cfg.NewStopCondition(), nil, outcomes, cfg.Rng)
			threads[i] = ops
		}(i)
	}
	wg.Wait()

	total := 0
	for _, ops := range threads {
		total += len(ops)
	}

	for _, err := range errs {
		if err != nil {
			capitan.Error(context.Background(), SignalHarnessPostconditionFailed,
				FieldOpsCompleted.Field(total),
				FieldError.Field(err.Error()),
			)
			return History[K]{}, err
		}
	}

	return History[K]{InitialKeys: inserted, Threads: threads}, nil
}

// OperationsPerSecond reports the aggregate operation throughput of a
// completed history over the given wall-clock duration.
func OperationsPerSecond[K cmp.Ordered](h History[K], elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	total := 0
	for _, ops := range h.Threads {
		total += len(ops)
	}
	return float64(total) / elapsed.Seconds()
}
