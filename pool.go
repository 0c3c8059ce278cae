package pram

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Metric keys for Pool observability.
const (
	PoolTasksProcessedTotal = metricz.Key("pool.tasks.processed.total")
	PoolBarriersTotal       = metricz.Key("pool.barriers.total")
	PoolQueueDepthGauge     = metricz.Key("pool.queue.depth")
	PoolActiveWorkersGauge  = metricz.Key("pool.workers.active")
)

// Span names for Pool.
const (
	PoolExecuteSyncSpan = tracez.Key("pool.execute_sync")
)

// Span tags for Pool.
const (
	PoolTagBatchCount = tracez.Tag("pool.batch_count")
)

// Hook event keys for Pool.
const (
	PoolEventWorkerStarted = hookz.Key("pool.worker_started")
	PoolEventWorkerStopped = hookz.Key("pool.worker_stopped")
)

// WorkerEvent is emitted via hookz when a worker goroutine starts or stops.
type WorkerEvent struct {
	WorkerID int
}

// Task is a unit of work enqueued on a Pool's BlockingQueue. Invoking it
// runs the work; the returned bool is true for a poison task, telling the
// worker that executed it to exit its loop instead of fetching another
// task.
type Task func() (poison bool)

// WorkerID identifies one of a Pool's long-lived worker goroutines.
type WorkerID int

// Pool is a fixed set of P long-lived worker goroutines, each draining a
// shared BlockingQueue[Task] until it pops a poison task. FinishAll stops
// every worker by enqueuing exactly P poison tasks. ExecuteSync runs a
// batch of work items across the pool and blocks the caller until every
// item — and every worker that picked one up — has reached a shared
// barrier, giving callers a bulk-synchronous phase boundary.
type Pool struct {
	mu      sync.RWMutex
	queue   *BlockingQueue[Task]
	workers int
	ids     []WorkerID
	wg      sync.WaitGroup
	clock   clockz.Clock
	active  atomic.Int64

	metrics *metricz.Registry
	tracer  *tracez.Tracer
	hooks   *hookz.Hooks[WorkerEvent]
}

// NewPool creates a Pool with the given number of workers and starts their
// goroutines immediately.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	registry := metricz.New()
	registry.Counter(PoolTasksProcessedTotal)
	registry.Counter(PoolBarriersTotal)
	registry.Gauge(PoolQueueDepthGauge)
	registry.Gauge(PoolActiveWorkersGauge)

	p := &Pool{
		queue:   NewBlockingQueue[Task](),
		workers: workers,
		ids:     make([]WorkerID, workers),
		clock:   clockz.RealClock,
		metrics: registry,
		tracer:  tracez.New(),
		hooks:   hookz.New[WorkerEvent](),
	}
	for i := 0; i < workers; i++ {
		p.ids[i] = WorkerID(i)
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.runWorker(WorkerID(i))
	}
	return p
}

// WithClock overrides the clock used for timestamped signal emission,
// useful for deterministic tests.
func (p *Pool) WithClock(clock clockz.Clock) *Pool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clock = clock
	return p
}

func (p *Pool) getClock() clockz.Clock {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.clock == nil {
		return clockz.RealClock
	}
	return p.clock
}

func (p *Pool) runWorker(id WorkerID) {
	defer p.wg.Done()

	ctx := context.Background()
	_ = p.hooks.Emit(ctx, PoolEventWorkerStarted, WorkerEvent{WorkerID: int(id)}) //nolint:errcheck
	p.metrics.Gauge(PoolActiveWorkersGauge).Set(float64(p.active.Add(1)))
	capitan.Info(ctx, SignalPoolWorkerStarted,
		FieldWorkerID.Field(int(id)),
		FieldTimestamp.Field(float64(p.getClock().Now().Unix())),
	)

	for {
		task := p.queue.PopBlocking()
		if task() {
			break
		}
		p.metrics.Counter(PoolTasksProcessedTotal).Inc()
	}

	p.metrics.Gauge(PoolActiveWorkersGauge).Set(float64(p.active.Add(-1)))
	capitan.Info(ctx, SignalPoolWorkerStopped,
		FieldWorkerID.Field(int(id)),
		FieldTimestamp.Field(float64(p.getClock().Now().Unix())),
	)
	_ = p.hooks.Emit(ctx, PoolEventWorkerStopped, WorkerEvent{WorkerID: int(id)}) //nolint:errcheck
}

// WorkerIDs returns the identifiers of this pool's worker goroutines, in
// creation order. The PRAM executor's pfilter and level-synchronous BFS's
// frontier shards do not use these identifiers: they size their output
// slots by Parallelism() and index them by batch.
func (p *Pool) WorkerIDs() []WorkerID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]WorkerID, len(p.ids))
	copy(out, p.ids)
	return out
}

// Parallelism returns the number of worker goroutines in the pool.
func (p *Pool) Parallelism() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.workers
}

// Push enqueues a single task.
func (p *Pool) Push(t Task) {
	depth := p.queue.Len() + 1
	p.metrics.Gauge(PoolQueueDepthGauge).Set(float64(depth))
	if depth > p.Parallelism() {
		capitan.Warn(context.Background(), SignalPoolSaturated,
			FieldQueueDepth.Field(depth),
			FieldWorkerCount.Field(p.Parallelism()),
		)
	}
	p.queue.Push(t)
}

// PushAll enqueues tasks as a single atomic batch.
func (p *Pool) PushAll(tasks []Task) {
	p.queue.PushAll(tasks)
}

// ExecuteSync runs each of bodies as an independent task on the pool and
// blocks the caller until all of them — and the pool workers that ran them
// — reach a shared barrier. It implements the bulk-synchronous phase
// boundary the PRAM executor's pfor/pfilter rely on: push the batch, push
// one barrier task per worker, then arrive at the barrier itself. Because
// the queue is FIFO and each worker processes its own tasks in order, a
// worker's barrier task never runs before that worker's share of bodies.
func (p *Pool) ExecuteSync(bodies []func()) {
	if len(bodies) == 0 {
		return
	}
	ctx, span := p.tracer.StartSpan(context.Background(), PoolExecuteSyncSpan)
	defer span.Finish()
	span.SetTag(PoolTagBatchCount, strconv.Itoa(len(bodies)))

	n := p.Parallelism()
	barrier := newBarrier(n + 1)

	tasks := make([]Task, 0, len(bodies)+n)
	for _, body := range bodies {
		body := body
		tasks = append(tasks, func() bool {
			body()
			return false
		})
	}
	for i := 0; i < n; i++ {
		tasks = append(tasks, func() bool {
			barrier.arriveAndWait()
			return false
		})
	}

	capitan.Info(ctx, SignalPoolBarrierStart, FieldBatchCount.Field(len(bodies)))
	p.PushAll(tasks)
	barrier.arriveAndWait()
	p.metrics.Counter(PoolBarriersTotal).Inc()
	capitan.Info(ctx, SignalPoolBarrierDone, FieldBatchCount.Field(len(bodies)))
}

// FinishAll enqueues one poison task per worker and blocks until every
// worker has exited its loop. The pool must not be used after FinishAll
// returns.
func (p *Pool) FinishAll() {
	n := p.Parallelism()
	poison := make([]Task, n)
	for i := range poison {
		poison[i] = func() bool { return true }
	}
	p.PushAll(poison)
	p.wg.Wait()
	p.tracer.Close()
	p.hooks.Close()
}

// OnWorkerStarted registers a handler invoked when a worker goroutine
// starts.
func (p *Pool) OnWorkerStarted(handler func(context.Context, WorkerEvent) error) error {
	_, err := p.hooks.Hook(PoolEventWorkerStarted, handler)
	return err
}

// OnWorkerStopped registers a handler invoked when a worker goroutine
// stops.
func (p *Pool) OnWorkerStopped(handler func(context.Context, WorkerEvent) error) error {
	_, err := p.hooks.Hook(PoolEventWorkerStopped, handler)
	return err
}

// Metrics returns the pool's metrics registry.
func (p *Pool) Metrics() *metricz.Registry {
	return p.metrics
}

// Tracer returns the pool's tracer.
func (p *Pool) Tracer() *tracez.Tracer {
	return p.tracer
}

// barrier is a reusable cyclic barrier of fixed arity: exactly n arrivals
// release all waiters and reset it for the next phase.
type barrier struct {
	mu        sync.Mutex
	cond      *sync.Cond
	n         int
	arrived   int
	generation int
}

func newBarrier(n int) *barrier {
	b := &barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *barrier) arriveAndWait() {
	b.mu.Lock()
	defer b.mu.Unlock()
	gen := b.generation
	b.arrived++
	if b.arrived == b.n {
		b.arrived = 0
		b.generation++
		b.cond.Broadcast()
		return
	}
	for gen == b.generation {
		b.cond.Wait()
	}
}
