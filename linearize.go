package pram

import (
	"cmp"
	"context"
	"sort"

	"github.com/zoobzio/capitan"
)

// Operation is one recorded entry/result pair from a Tree's history: the
// kind of call, the key it touched, the monotone timestamp assigned at
// its entry, and its boolean result (insert/remove "changed something",
// contains "key present").
type Operation[K cmp.Ordered] struct {
	Kind    OpKind
	Key     K
	EntryTS uint64
	Result  bool
}

// History is a per-thread record of operations against a tree that
// started from InitialKeys. Each per-thread slice must be sorted by
// EntryTS ascending, as a Tree's monotone counter guarantees when the
// recording thread appends in call order.
type History[K cmp.Ordered] struct {
	InitialKeys []K
	Threads     [][]Operation[K]
}

// Violation describes why CheckLinearizable rejected a history.
type Violation[K cmp.Ordered] struct {
	ThreadID int
	Index    int
	Op       Operation[K]
	Msg      string
}

const noExit = ^uint64(0)

type opRecord[K cmp.Ordered] struct {
	threadID int
	index    int
	op       Operation[K]
	exitTS   uint64 // noExit for the final op on its thread
}

type sweepEvent[K cmp.Ordered] struct {
	ts     uint64
	isExit bool
	rec    *opRecord[K]
}

// CheckLinearizable decides whether h admits a sequential witness: an
// ordering of every operation, each placed somewhere between its entry
// and exit timestamp, consistent with set semantics (insert/remove/
// contains against a single abstract set seeded with h.InitialKeys).
//
// It sweeps entry and exit events in timestamp order — entries before
// exits when timestamps tie, since a thread's exit timestamp is by
// construction equal to its next operation's entry timestamp — tracking
// which keys are "in superposition" (their membership is undetermined
// because a concurrent operation on the same key hasn't committed yet)
// and cancelling any concurrent Contains whose key enters superposition,
// since such an observation cannot refute a consistent witness.
func CheckLinearizable[K cmp.Ordered](h History[K]) (bool, *Violation[K]) {
	committed := make(map[K]bool, len(h.InitialKeys))
	for _, k := range h.InitialKeys {
		committed[k] = true
	}

	records := make([]*opRecord[K], 0)
	for t, ops := range h.Threads {
		for i, op := range ops {
			rec := &opRecord[K]{threadID: t, index: i, op: op}
			if i+1 < len(ops) {
				rec.exitTS = ops[i+1].EntryTS
			} else {
				rec.exitTS = noExit
			}
			records = append(records, rec)
		}
	}

	events := make([]sweepEvent[K], 0, len(records)*2)
	for _, rec := range records {
		events = append(events, sweepEvent[K]{ts: rec.op.EntryTS, isExit: false, rec: rec})
		events = append(events, sweepEvent[K]{ts: rec.exitTS, isExit: true, rec: rec})
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].ts != events[j].ts {
			return events[i].ts < events[j].ts
		}
		return !events[i].isExit && events[j].isExit
	})

	active := make(map[int]*opRecord[K])
	pendingExit := make(map[K]uint64)
	cancelled := make(map[*opRecord[K]]bool)

	concurrentOfKind := func(kind OpKind, key K, exclude int) bool {
		for tid, rec := range active {
			if tid == exclude {
				continue
			}
			if rec.op.Kind == kind && rec.op.Key == key {
				return true
			}
		}
		return false
	}

	cancelConcurrentContains := func(key K) {
		for _, rec := range active {
			if rec.op.Kind == OpContains && rec.op.Key == key {
				cancelled[rec] = true
			}
		}
	}

	var violation *Violation[K]

	for _, ev := range events {
		rec := ev.rec
		if violation != nil {
			break
		}
		if !ev.isExit {
			active[rec.threadID] = rec
			switch rec.op.Kind {
			case OpInsert:
				if concurrentOfKind(OpRemove, rec.op.Key, rec.threadID) || !committed[rec.op.Key] {
					if _, uncertain := pendingExit[rec.op.Key]; !uncertain {
						pendingExit[rec.op.Key] = 0
					}
					cancelConcurrentContains(rec.op.Key)
				}
			case OpRemove:
				if concurrentOfKind(OpInsert, rec.op.Key, rec.threadID) || committed[rec.op.Key] {
					if _, uncertain := pendingExit[rec.op.Key]; !uncertain {
						pendingExit[rec.op.Key] = 0
					}
					cancelConcurrentContains(rec.op.Key)
				}
			case OpContains:
				_, uncertain := pendingExit[rec.op.Key]
				contended := concurrentOfKind(OpInsert, rec.op.Key, rec.threadID) || concurrentOfKind(OpRemove, rec.op.Key, rec.threadID)
				if uncertain && contended {
					cancelled[rec] = true
				}
			}
			continue
		}

		// Exit event. Only clear active[threadID] if it still points at
		// this op: under entries-before-exits tie ordering, a same-thread
		// successor's entry may already have overwritten the slot.
		if active[rec.threadID] == rec {
			delete(active, rec.threadID)
		}

		switch rec.op.Kind {
		case OpInsert:
			key := rec.op.Key
			if concurrentOfKind(OpRemove, key, rec.threadID) {
				pendingExit[key] = ev.ts
				continue
			}
			if bound, uncertain := pendingExit[key]; uncertain && bound > rec.op.EntryTS {
				continue
			}
			delete(pendingExit, key)
			committed[key] = true
		case OpRemove:
			key := rec.op.Key
			if concurrentOfKind(OpInsert, key, rec.threadID) {
				pendingExit[key] = ev.ts
				continue
			}
			if bound, uncertain := pendingExit[key]; uncertain && bound > rec.op.EntryTS {
				continue
			}
			delete(pendingExit, key)
			committed[key] = false
		case OpContains:
			if cancelled[rec] {
				continue
			}
			if committed[rec.op.Key] != rec.op.Result {
				violation = &Violation[K]{
					ThreadID: rec.threadID,
					Index:    rec.index,
					Op:       rec.op,
					Msg:      "contains result disagrees with every consistent witness",
				}
				capitan.Error(context.Background(), SignalLinearizeViolation,
					FieldThreadID.Field(rec.threadID),
					FieldEntryTS.Field(int(rec.op.EntryTS)),
				)
			}
		}
	}

	if violation != nil {
		return false, violation
	}
	return true, nil
}
