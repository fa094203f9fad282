package benchmark

import (
	"testing"

	"golang.org/x/exp/rand"
)

func TestGeneratorTopologyClasses(t *testing.T) {
	gen := NewGenerator(rand.NewSource(42))

	cases := []struct {
		class TopologyClass
		nodes int
	}{
		{SmallSparse, 15},
		{MediumDense, 30},
		{LargeSparse, 50},
		{XLargeDense, 100},
	}
	for _, c := range cases {
		g, err := gen.GenerateTopology(c.class)
		if err != nil {
			t.Fatalf("%s: %s", c.class, err)
		}
		if g.NumNodes() != c.nodes {
			t.Errorf("%s: expected %d nodes, got %d", c.class, c.nodes, g.NumNodes())
		}
	}

	if _, err := gen.GenerateTopology("bogus"); err == nil {
		t.Errorf("expected error for unknown topology class")
	}
}

func TestGeneratorDeterminism(t *testing.T) {
	a := NewGenerator(rand.NewSource(7))
	b := NewGenerator(rand.NewSource(7))

	ga, _ := a.GenerateTopology(MediumSparse)
	gb, _ := b.GenerateTopology(MediumSparse)

	if ga.NumNodes() != gb.NumNodes() || ga.NumEdges() != gb.NumEdges() {
		t.Fatalf("same seed produced different topologies: %d/%d vs %d/%d",
			ga.NumNodes(), ga.NumEdges(), gb.NumNodes(), gb.NumEdges())
	}
	for _, id := range ga.Nodes() {
		pa, _ := ga.Position(id)
		pb, ok := gb.Position(id)
		if !ok || pa != pb {
			t.Fatalf("node %d positions differ: %+v vs %+v", id, pa, pb)
		}
	}

	ra, _ := a.GenerateRoutes(ga, 10, PatternRandom)
	rb, _ := b.GenerateRoutes(gb, 10, PatternRandom)
	for i := range ra {
		if ra[i] != rb[i] {
			t.Fatalf("same seed produced different routes at %d: %v vs %v", i, ra[i], rb[i])
		}
	}
}

func TestGeneratorRoutePatterns(t *testing.T) {
	gen := NewGenerator(rand.NewSource(3))
	g, err := gen.GenerateTopology(MediumDense)
	if err != nil {
		t.Fatalf("topology failed: %s", err)
	}

	for _, pattern := range []TrafficPattern{PatternRandom, PatternHubSpoke, PatternEdgeToEdge, PatternHotspot} {
		routes, err := gen.GenerateRoutes(g, 25, pattern)
		if err != nil {
			t.Fatalf("%s: %s", pattern, err)
		}
		if len(routes) != 25 {
			t.Errorf("%s: expected 25 routes, got %d", pattern, len(routes))
		}
		for _, r := range routes {
			if r.Source == r.Destination {
				t.Errorf("%s: degenerate route %v", pattern, r)
			}
			if !g.HasNode(r.Source) || !g.HasNode(r.Destination) {
				t.Errorf("%s: route endpoints outside the graph: %v", pattern, r)
			}
		}
	}

	if _, err := gen.GenerateRoutes(g, 5, "bogus"); err == nil {
		t.Errorf("expected error for unknown pattern")
	}
}

func TestCreateScenarioAppliesFailures(t *testing.T) {
	gen := NewGenerator(rand.NewSource(11))
	s, err := gen.CreateScenario(ScenarioSpec{
		Name:        "knockout",
		Topology:    LargeDense,
		NumRoutes:   10,
		Pattern:     PatternRandom,
		FailureRate: float64(FailureExtreme),
	})
	if err != nil {
		t.Fatalf("scenario failed: %s", err)
	}
	if s.NumNodes() >= 50 {
		t.Errorf("extreme failure rate removed no nodes: %d left", s.NumNodes())
	}
	if s.NumNodes() < 2 {
		t.Errorf("knockout must leave at least two nodes, got %d", s.NumNodes())
	}
	for _, r := range s.Routes {
		if !s.Graph.HasNode(r.Source) || !s.Graph.HasNode(r.Destination) {
			t.Errorf("route %v references a removed node", r)
		}
	}
}

func TestSuites(t *testing.T) {
	gen := NewGenerator(rand.NewSource(42))

	full, err := gen.BenchmarkSuite()
	if err != nil {
		t.Fatalf("benchmark suite failed: %s", err)
	}
	if len(full) != 9 {
		t.Errorf("expected 9 benchmark scenarios, got %d", len(full))
	}

	quick, err := gen.QuickSuite()
	if err != nil {
		t.Fatalf("quick suite failed: %s", err)
	}
	if len(quick) != 3 {
		t.Errorf("expected 3 quick scenarios, got %d", len(quick))
	}
	for _, s := range quick {
		if len(s.Routes) == 0 {
			t.Errorf("scenario %s has no routes", s.Name)
		}
	}
}
