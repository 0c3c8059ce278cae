package pram

import "testing"

func TestCubicGraphRoundTripsCoordinates(t *testing.T) {
	g := NewCubicGraph(4)
	for v := 0; v < g.Size(); v++ {
		x, y, z := g.Idx1Dto3D(v)
		if got := g.Idx3Dto1D(x, y, z); got != v {
			t.Fatalf("Idx3Dto1D(Idx1Dto3D(%d)) = %d, want %d", v, got, v)
		}
	}
}

func TestCubicGraphEdgesStayInBounds(t *testing.T) {
	g := NewCubicGraph(3)
	for v := 0; v < g.Size(); v++ {
		for _, e := range g.EdgesOf(v) {
			if e.To < 0 || e.To >= g.Size() {
				t.Fatalf("vertex %d has out-of-bounds edge to %d", v, e.To)
			}
			if e.Weight != 1 {
				t.Fatalf("vertex %d has non-unit edge weight %d", v, e.Weight)
			}
		}
	}
}

func TestCubicGraphCornerHasThreeEdges(t *testing.T) {
	g := NewCubicGraph(4)
	origin := g.Idx3Dto1D(0, 0, 0)
	if got := len(g.EdgesOf(origin)); got != 3 {
		t.Fatalf("origin has %d edges, want 3", got)
	}
	farCorner := g.Idx3Dto1D(3, 3, 3)
	if got := len(g.EdgesOf(farCorner)); got != 3 {
		t.Fatalf("far corner has %d edges, want 3", got)
	}
}
