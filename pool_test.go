package pram

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolExecuteSyncRunsAllBodies(t *testing.T) {
	p := NewPool(4)
	defer p.FinishAll()

	var count atomic.Int64
	bodies := make([]func(), 10)
	for i := range bodies {
		bodies[i] = func() { count.Add(1) }
	}
	p.ExecuteSync(bodies)

	if got := count.Load(); got != 10 {
		t.Fatalf("count = %d, want 10", got)
	}
}

func TestPoolExecuteSyncIsBarrierSynchronous(t *testing.T) {
	p := NewPool(3)
	defer p.FinishAll()

	var phase atomic.Int64
	for round := 0; round < 5; round++ {
		bodies := []func(){
			func() {
				if phase.Load() != int64(round) {
					t.Errorf("round %d: saw stale phase %d", round, phase.Load())
				}
			},
			func() {
				if phase.Load() != int64(round) {
					t.Errorf("round %d: saw stale phase %d", round, phase.Load())
				}
			},
		}
		p.ExecuteSync(bodies)
		phase.Add(1)
	}
}

func TestPoolFinishAllStopsWorkers(t *testing.T) {
	p := NewPool(2)
	done := make(chan struct{})
	go func() {
		p.FinishAll()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("FinishAll did not return")
	}
}

func TestPoolWorkerIDsLength(t *testing.T) {
	p := NewPool(5)
	defer p.FinishAll()
	if got := len(p.WorkerIDs()); got != 5 {
		t.Fatalf("len(WorkerIDs()) = %d, want 5", got)
	}
}
