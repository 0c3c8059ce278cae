package pram

import "github.com/zoobzio/capitan"

// Signal constants for pram lifecycle events.
// Signals follow the pattern: <component>.<event>.
const (
	// Pool signals.
	SignalPoolWorkerStarted  capitan.Signal = "pool.worker-started"
	SignalPoolWorkerStopped  capitan.Signal = "pool.worker-stopped"
	SignalPoolSaturated      capitan.Signal = "pool.saturated"
	SignalPoolBarrierStart   capitan.Signal = "pool.barrier-start"
	SignalPoolBarrierDone    capitan.Signal = "pool.barrier-done"

	// BFS signals.
	SignalBFSLevelStart capitan.Signal = "bfs.level-start"
	SignalBFSLevelDone  capitan.Signal = "bfs.level-done"

	// BST signals.
	SignalBSTOperationStart  capitan.Signal = "bst.operation-start"
	SignalBSTOperationCommit capitan.Signal = "bst.operation-commit"
	SignalBSTPredicateFailed capitan.Signal = "bst.predicate-failed"

	// Linearizability signals.
	SignalLinearizeViolation capitan.Signal = "linearize.violation"

	// Harness signals.
	SignalHarnessPostconditionFailed capitan.Signal = "harness.postcondition-failed"
)

// Common field keys using capitan primitive types.
var (
	// Common fields.
	FieldComponent = capitan.NewStringKey("component")
	FieldError     = capitan.NewStringKey("error")
	FieldTimestamp = capitan.NewFloat64Key("timestamp")

	// Pool fields.
	FieldWorkerID      = capitan.NewIntKey("worker_id")
	FieldWorkerCount   = capitan.NewIntKey("worker_count")
	FieldActiveWorkers = capitan.NewIntKey("active_workers")
	FieldQueueDepth    = capitan.NewIntKey("queue_depth")
	FieldBatchCount    = capitan.NewIntKey("batch_count")

	// BFS fields.
	FieldLevel        = capitan.NewIntKey("level")
	FieldFrontierSize = capitan.NewIntKey("frontier_size")

	// BST fields.
	FieldKey       = capitan.NewStringKey("key")
	FieldOpKind    = capitan.NewStringKey("op_kind")
	FieldEntryTS   = capitan.NewIntKey("entry_ts")
	FieldThreadID  = capitan.NewIntKey("thread_id")

	// Harness fields.
	FieldOpsCompleted = capitan.NewIntKey("ops_completed")
)
