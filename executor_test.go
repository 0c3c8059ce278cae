package pram

import (
	"sort"
	"sync"
	"testing"
)

func TestExecutorPforCoversEveryIndex(t *testing.T) {
	pool := NewPool(4)
	defer pool.FinishAll()
	exec := NewExecutor(pool)

	n := 97
	seen := make([]int32, n)
	var mu sync.Mutex
	exec.Pfor(0, n, func(i int) {
		mu.Lock()
		seen[i]++
		mu.Unlock()
	})
	for i, c := range seen {
		if c != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, c)
		}
	}
}

func TestExecutorPforBatchSize(t *testing.T) {
	pool := NewPool(3)
	defer pool.FinishAll()
	exec := NewExecutor(pool)

	n := 23
	seen := make([]bool, n)
	var mu sync.Mutex
	exec.PforBatchSize(0, n, 4, func(i int) {
		mu.Lock()
		seen[i] = true
		mu.Unlock()
	})
	for i, ok := range seen {
		if !ok {
			t.Fatalf("index %d not visited", i)
		}
	}
}

func TestPfilterPreservesOrderAndMatches(t *testing.T) {
	pool := NewPool(4)
	defer pool.FinishAll()
	exec := NewExecutor(pool)

	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}
	got := Pfilter(exec, items, func(i int) bool { return i%3 == 0 })

	var want []int
	for _, i := range items {
		if i%3 == 0 {
			want = append(want, i)
		}
	}
	if !sort.IntsAreSorted(got) {
		t.Fatalf("Pfilter result not in ascending order: %v", got)
	}
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestSplitBatchesSizesDifferByAtMostOne(t *testing.T) {
	ranges := splitBatches(0, 17, 5)
	total := 0
	min, max := ranges[0].hi-ranges[0].lo, ranges[0].hi-ranges[0].lo
	for _, r := range ranges {
		size := r.hi - r.lo
		total += size
		if size < min {
			min = size
		}
		if size > max {
			max = size
		}
	}
	if total != 17 {
		t.Fatalf("batch sizes sum to %d, want 17", total)
	}
	if max-min > 1 {
		t.Fatalf("batch sizes differ by more than one: min=%d max=%d", min, max)
	}
}
