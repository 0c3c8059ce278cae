// Package pram implements the concurrency core shared by three parallel
// systems exercises: a shared-queue parallel quicksort, a level-synchronous
// parallel breadth-first search over large implicit graphs, and a
// fine-grained concurrent external binary search tree.
//
// # Core components
//
//   - BlockingQueue[T]: an MPMC FIFO queue with blocking and non-blocking
//     dequeue. Every other component is built on top of it.
//   - Pool: a fixed set of long-lived worker goroutines draining a
//     BlockingQueue[Task] until a poison task tells them to stop.
//   - Executor: a bulk-synchronous parallel-for / parallel-filter built on
//     a Pool, joining each batch with a reusable phase barrier.
//   - Sorter[T]: a partition-based parallel quicksort that drives its own
//     BlockingQueue of sort ranges directly, independent of Pool/Executor.
//   - Graph / CubicGraph: an implicit, weighted, directed adjacency
//     abstraction whose edges are produced on demand.
//   - BFSDistances / ParallelBFSDistances: sequential and level-synchronous
//     parallel breadth-first search over a Graph.
//   - Tree[K]: an external binary search tree (all keys at leaves) with
//     hand-over-hand locking, linearizable Insert/Remove/Contains, and a
//     monotone logical timestamp per operation.
//   - CheckLinearizable: an offline validator deciding whether a recorded
//     multi-threaded History of Tree operations admits a sequential
//     witness consistent with the observed results.
//   - RunWeighted / RunHistoryTest: a weighted, randomized operation
//     dispatcher, and a driver that uses it to run a Tree under concurrent
//     load until a stop condition fires.
//
// # Observability
//
// Pool and Tree each carry a metricz.Registry, a tracez.Tracer, and a
// hookz.Hooks so callers can subscribe to lifecycle events without
// coupling to internals. Operationally significant moments, such as pool
// saturation or a linearizability violation, are logged through capitan.
//
// # Non-goals
//
// Wait-freedom, lock-free data structures, NUMA locality, work stealing,
// persistence, and distribution are out of scope; every data structure
// here relies on locks (mutexes, and TATASLock spin locks for Tree nodes)
// and blocking coordination.
package pram
