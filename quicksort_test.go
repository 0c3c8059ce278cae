package pram

import (
	"sort"
	"testing"
)

func TestSortSmallSlices(t *testing.T) {
	rng := NewSeededGenerator(1)
	cases := [][]int{
		nil,
		{1},
		{2, 1},
		{3, 1, 2},
		{5, 4, 3, 2, 1},
	}
	for _, c := range cases {
		want := append([]int(nil), c...)
		sort.Ints(want)
		Sort(c, rng)
		for i := range want {
			if c[i] != want[i] {
				t.Fatalf("Sort(%v) = %v, want %v", want, c, want)
			}
		}
	}
}

func TestSorterSortsLargeSlice(t *testing.T) {
	rng := NewSeededGenerator(7)
	n := 20000
	a := make([]int, n)
	for i := range a {
		a[i] = (i * 2654435761) % 999983
	}
	want := append([]int(nil), a...)
	sort.Ints(want)

	sorter := NewSorter[int](4, DefaultThreshold, rng)
	sorter.Sort(a)

	if !sort.IntsAreSorted(a) {
		t.Fatal("Sorter.Sort did not produce a sorted slice")
	}
	for i := range want {
		if a[i] != want[i] {
			t.Fatalf("a[%d] = %d, want %d", i, a[i], want[i])
		}
	}
}

func TestSorterHandlesDuplicateKeys(t *testing.T) {
	rng := NewSeededGenerator(3)
	a := make([]int, 5000)
	for i := range a {
		a[i] = i % 7
	}
	sorter := NewSorter[int](8, 100, rng)
	sorter.Sort(a)
	if !sort.IntsAreSorted(a) {
		t.Fatal("Sorter.Sort with duplicate keys did not produce a sorted slice")
	}
}

func TestPartitionThreeWay(t *testing.T) {
	a := []int{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5}
	lessEnd, greaterBegin := partition(a, 5)
	for _, v := range a[:lessEnd] {
		if v >= 5 {
			t.Fatalf("element %d in less-than region is >= pivot", v)
		}
	}
	for _, v := range a[lessEnd:greaterBegin] {
		if v != 5 {
			t.Fatalf("element %d in equal region is != pivot", v)
		}
	}
	for _, v := range a[greaterBegin:] {
		if v <= 5 {
			t.Fatalf("element %d in greater-than region is <= pivot", v)
		}
	}
}
