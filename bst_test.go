package pram

import (
	"sync"
	"testing"
)

func TestTreeInsertContains(t *testing.T) {
	tr := NewTree[int]()
	defer tr.Close()

	if ok, _ := tr.Contains(5); ok {
		t.Fatal("empty tree contains 5")
	}
	if inserted, _ := tr.Insert(5); !inserted {
		t.Fatal("Insert(5) on empty tree returned false")
	}
	if ok, _ := tr.Contains(5); !ok {
		t.Fatal("Contains(5) after Insert(5) returned false")
	}
	if inserted, _ := tr.Insert(5); inserted {
		t.Fatal("duplicate Insert(5) returned true")
	}
	if !tr.ValidBST() {
		t.Fatal("tree invalid after inserts")
	}
}

func TestTreeInsertManyThenContainsAll(t *testing.T) {
	tr := NewTree[int]()
	defer tr.Close()

	keys := []int{50, 20, 80, 10, 30, 70, 90, 5, 15}
	for _, k := range keys {
		tr.Insert(k)
	}
	if !tr.ValidBST() {
		t.Fatal("tree invalid after inserts")
	}
	for _, k := range keys {
		if ok, _ := tr.Contains(k); !ok {
			t.Fatalf("Contains(%d) = false after insert", k)
		}
	}
	if ok, _ := tr.Contains(999); ok {
		t.Fatal("Contains(999) = true, want false")
	}
}

func TestTreeRemoveRestoresInvariant(t *testing.T) {
	tr := NewTree[int]()
	defer tr.Close()

	keys := []int{50, 20, 80, 10, 30, 70, 90, 5, 15, 25, 35}
	for _, k := range keys {
		tr.Insert(k)
	}

	toRemove := []int{20, 90, 5, 50}
	for _, k := range toRemove {
		if removed, _ := tr.Remove(k); !removed {
			t.Fatalf("Remove(%d) returned false", k)
		}
		if !tr.ValidBST() {
			t.Fatalf("tree invalid after removing %d", k)
		}
	}
	for _, k := range toRemove {
		if ok, _ := tr.Contains(k); ok {
			t.Fatalf("Contains(%d) = true after Remove", k)
		}
	}
	for _, k := range keys {
		removed := false
		for _, r := range toRemove {
			if r == k {
				removed = true
			}
		}
		if removed {
			continue
		}
		if ok, _ := tr.Contains(k); !ok {
			t.Fatalf("Contains(%d) = false, survivor key lost during unrelated removes", k)
		}
	}
}

func TestTreeRemoveAbsentKey(t *testing.T) {
	tr := NewTree[int]()
	defer tr.Close()
	tr.Insert(1)
	tr.Insert(2)

	if removed, _ := tr.Remove(999); removed {
		t.Fatal("Remove(999) on absent key returned true")
	}
	if !tr.ValidBST() {
		t.Fatal("tree invalid after no-op remove")
	}
}

func TestTreeRemoveLastKeyEmptiesTree(t *testing.T) {
	tr := NewTree[int]()
	defer tr.Close()
	tr.Insert(42)
	if removed, _ := tr.Remove(42); !removed {
		t.Fatal("Remove(42) returned false")
	}
	if ok, _ := tr.Contains(42); ok {
		t.Fatal("Contains(42) true after removing the only key")
	}
	if inserted, _ := tr.Insert(42); !inserted {
		t.Fatal("re-Insert(42) into emptied tree returned false")
	}
}

func TestTreeEntryTSIsMonotoneAndUnique(t *testing.T) {
	tr := NewTree[int]()
	defer tr.Close()

	const n = 50
	ts := make([]uint64, n)
	var wg sync.WaitGroup
	var mu sync.Mutex
	idx := 0
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(key int) {
			defer wg.Done()
			_, entryTS := tr.Insert(key)
			mu.Lock()
			ts[idx] = entryTS
			idx++
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	seen := make(map[uint64]bool, n)
	for _, v := range ts {
		if v == 0 {
			t.Fatal("entry timestamp of 0 observed, counter should start at 1")
		}
		if seen[v] {
			t.Fatalf("duplicate entry timestamp %d", v)
		}
		seen[v] = true
	}
	if !tr.ValidBST() {
		t.Fatal("tree invalid after concurrent inserts")
	}
}

func TestTreeConcurrentInsertRemoveContains(t *testing.T) {
	tr := NewTree[int]()
	defer tr.Close()

	const keyspace = 200
	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(seed int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				k := (seed*37 + i) % keyspace
				switch i % 3 {
				case 0:
					tr.Insert(k)
				case 1:
					tr.Remove(k)
				case 2:
					tr.Contains(k)
				}
			}
		}(w)
	}
	wg.Wait()

	if !tr.ValidBST() {
		t.Fatal("tree invalid after concurrent mixed workload")
	}
}
