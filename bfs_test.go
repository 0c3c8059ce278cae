package pram

import "testing"

func validateCubeDistances(t *testing.T, g *CubicGraph, dist []uint64) {
	t.Helper()
	for idx, d := range dist {
		x, y, z := g.Idx1Dto3D(idx)
		want := uint64(x + y + z)
		if d != want {
			t.Fatalf("distance to (%d,%d,%d) = %d, want %d", x, y, z, d, want)
		}
	}
}

func TestBFSDistancesCubicGraph(t *testing.T) {
	g := NewCubicGraph(4)
	dist := BFSDistances(g, g.Idx3Dto1D(0, 0, 0))
	validateCubeDistances(t, g, dist)
}

func TestParallelBFSDistancesCubicGraph(t *testing.T) {
	g := NewCubicGraph(6)
	pool := NewPool(4)
	defer pool.FinishAll()
	exec := NewExecutor(pool)

	dist := ParallelBFSDistances(exec, g, g.Idx3Dto1D(0, 0, 0))
	validateCubeDistances(t, g, dist)
}

func TestParallelAndSequentialBFSAgree(t *testing.T) {
	g := NewCubicGraph(5)
	seq := BFSDistances(g, 0)

	pool := NewPool(3)
	defer pool.FinishAll()
	exec := NewExecutor(pool)
	par := ParallelBFSDistances(exec, g, 0)

	for i := range seq {
		if seq[i] != par[i] {
			t.Fatalf("vertex %d: sequential=%d parallel=%d", i, seq[i], par[i])
		}
	}
}

func TestBFSUnreachableVertex(t *testing.T) {
	g := disconnectedGraph{size: 3}
	dist := BFSDistances(g, 0)
	if dist[0] != 0 {
		t.Fatalf("dist[0] = %d, want 0", dist[0])
	}
	if dist[1] != Unreachable || dist[2] != Unreachable {
		t.Fatalf("dist = %v, want [0 Unreachable Unreachable]", dist)
	}
}

type disconnectedGraph struct{ size int }

func (g disconnectedGraph) Size() int            { return g.size }
func (g disconnectedGraph) EdgesOf(int) []Edge { return nil }
