package types

import (
	"testing"
)

func TestGraphAddRemove(t *testing.T) {
	g := NewGraph()
	g.AddEdge(0, 1, map[string]float64{"distance": 2.5})
	g.AddEdge(1, 2, nil)

	if g.NumNodes() != 3 || g.NumEdges() != 2 {
		t.Fatalf("expected 3 nodes 2 edges, got %d/%d", g.NumNodes(), g.NumEdges())
	}
	if !g.HasEdge(1, 0) {
		t.Errorf("edges must be undirected")
	}
	if w, ok := g.EdgeAttr(1, 0, "distance"); !ok || w != 2.5 {
		t.Errorf("attributes must be symmetric, got %f (%v)", w, ok)
	}

	g.RemoveNode(1)
	if g.NumNodes() != 2 || g.NumEdges() != 0 {
		t.Errorf("removal must drop incident edges, got %d/%d", g.NumNodes(), g.NumEdges())
	}
	if g.HasEdge(0, 1) || g.HasEdge(2, 1) {
		t.Errorf("stale edges left after removal")
	}
}

func TestGraphSortedIteration(t *testing.T) {
	g := NewGraph()
	for _, id := range []NodeID{5, 1, 9, 3} {
		g.AddEdge(7, id, nil)
	}

	nbrs := g.Neighbors(7)
	for i := 1; i < len(nbrs); i++ {
		if nbrs[i-1] >= nbrs[i] {
			t.Fatalf("neighbors not sorted: %v", nbrs)
		}
	}
	nodes := g.Nodes()
	for i := 1; i < len(nodes); i++ {
		if nodes[i-1] >= nodes[i] {
			t.Fatalf("nodes not sorted: %v", nodes)
		}
	}
}

func TestGraphCopyIsIndependent(t *testing.T) {
	g := NewGraph()
	g.AddNode(0, Position{X: 1, Y: 2})
	g.AddEdge(0, 1, map[string]float64{"distance": 4})

	c := g.Copy()
	c.RemoveNode(0)
	c.AddEdge(5, 6, nil)

	if !g.HasNode(0) || g.NumEdges() != 1 {
		t.Errorf("mutating the copy changed the original")
	}
	if g.HasNode(5) {
		t.Errorf("copy additions leaked into the original")
	}
	if pos, ok := g.Position(0); !ok || pos.X != 1 {
		t.Errorf("original position lost: %+v (%v)", pos, ok)
	}
}

func TestEdgeKeyCanonical(t *testing.T) {
	if NewEdgeKey(3, 1) != NewEdgeKey(1, 3) {
		t.Errorf("edge keys must be direction independent")
	}
}

func TestRouteHops(t *testing.T) {
	if (Route{1}).Hops() != 0 {
		t.Errorf("self route has zero hops")
	}
	if (Route{1, 2, 3}).Hops() != 2 {
		t.Errorf("expected 2 hops")
	}
}
