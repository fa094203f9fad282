package routing

import (
	"testing"

	"github.com/meshnetframework/meshnet/types"
)

// cycleGraph builds a ring 0-1-...-(n-1)-0.
func cycleGraph(n int) *types.Graph {
	g := types.NewGraph()
	for i := 0; i < n; i++ {
		g.AddEdge(types.NodeID(i), types.NodeID((i+1)%n), nil)
	}
	return g
}

func TestReactiveSelfRoute(t *testing.T) {
	g := lineGraph(3)
	r := NewReactiveCached()

	route := r.FindRoute(g, 2, 2, nil)
	if len(route) != 1 || route[0] != 2 {
		t.Errorf("expected self route [2], got %v", route)
	}
	if r.Discoveries() != 0 {
		t.Errorf("self route must not trigger discovery")
	}
}

func TestReactiveDisconnected(t *testing.T) {
	g := types.NewGraph()
	g.AddEdge(0, 1, nil)
	g.AddEdge(2, 3, nil)
	r := NewReactiveCached()

	if route := r.FindRoute(g, 0, 3, nil); route != nil {
		t.Errorf("expected nil route across components, got %v", route)
	}
	if r.Stats().FailedRoutes != 1 {
		t.Errorf("expected 1 failed route, got %d", r.Stats().FailedRoutes)
	}
	if r.CacheStats().CachedRoutes != 0 {
		t.Errorf("failed discovery must not populate the cache")
	}
}

func TestReactiveCacheHitSkipsDiscovery(t *testing.T) {
	g := lineGraph(5)
	r := NewReactiveCached()

	first := r.FindRoute(g, 0, 4, nil)
	second := r.FindRoute(g, 0, 4, nil)

	if first == nil || second == nil {
		t.Fatalf("expected routes, got %v and %v", first, second)
	}
	if r.Discoveries() != 1 {
		t.Errorf("expected 1 discovery for repeated query, got %d", r.Discoveries())
	}
	if len(first) != len(second) {
		t.Errorf("cached route differs from discovered one: %v vs %v", first, second)
	}
}

func TestReactiveCacheTimeout(t *testing.T) {
	g := lineGraph(4)
	r := NewReactiveCachedWithTimeout(5)

	state := &types.NetworkState{Timestep: 0, HasTimestep: true}
	r.FindRoute(g, 0, 3, state)
	if r.Discoveries() != 1 {
		t.Fatalf("expected initial discovery")
	}

	// Inside the timeout window the cached route is reused.
	state.Timestep = 5
	r.FindRoute(g, 0, 3, state)
	if r.Discoveries() != 1 {
		t.Errorf("cache entry expired too early")
	}

	// Beyond the window the entry is purged and rediscovered.
	state.Timestep = 6
	r.FindRoute(g, 0, 3, state)
	if r.Discoveries() != 2 {
		t.Errorf("expected rediscovery after timeout, got %d discoveries", r.Discoveries())
	}
}

func TestReactiveCacheInvalidatedByTopologyChange(t *testing.T) {
	g := lineGraph(4)
	r := NewReactiveCached()

	route := r.FindRoute(g, 0, 3, nil)
	if route == nil {
		t.Fatalf("expected route on line graph")
	}

	// Breaking an edge on the cached route must force rediscovery, which
	// then fails because the graph is now split.
	g.RemoveNode(2)
	route = r.FindRoute(g, 0, 3, nil)
	if route != nil {
		t.Errorf("expected nil route after breaking the topology, got %v", route)
	}
	if r.Discoveries() != 2 {
		t.Errorf("expected rediscovery after structural change, got %d", r.Discoveries())
	}
}

func TestReactiveQualityRanking(t *testing.T) {
	// Triangle with a direct low quality edge: discovery must prefer the
	// two hop detour with perfect links.
	g := types.NewGraph()
	g.AddEdge(0, 2, nil)
	g.AddEdge(0, 1, nil)
	g.AddEdge(1, 2, nil)
	r := NewReactiveCached()

	state := &types.NetworkState{
		LinkQualities: map[types.EdgeKey]float64{
			types.NewEdgeKey(0, 2): 0.1,
		},
	}
	route := r.FindRoute(g, 0, 2, state)
	if route.Hops() != 2 {
		t.Errorf("expected high quality detour, got %v", route)
	}
}

func TestReactiveClearCache(t *testing.T) {
	g := lineGraph(4)
	r := NewReactiveCached()

	r.FindRoute(g, 0, 3, nil)
	r.ClearCache()
	if r.CacheStats().CachedRoutes != 0 {
		t.Errorf("expected empty cache after clear")
	}
	r.FindRoute(g, 0, 3, nil)
	if r.Discoveries() != 2 {
		t.Errorf("expected rediscovery after cache clear, got %d", r.Discoveries())
	}
}

func TestReactiveCycleDeliveryAndCache(t *testing.T) {
	g := cycleGraph(10)
	r := NewReactiveCached()

	for i := 0; i < 5; i++ {
		source := types.NodeID(i)
		destination := types.NodeID(i + 5)
		route := r.FindRoute(g, source, destination, nil)
		if route == nil {
			t.Fatalf("expected route %d -> %d on the ring", source, destination)
		}
		if route[0] != source || route[len(route)-1] != destination {
			t.Errorf("route endpoints wrong: %v", route)
		}
		// Opposite points of a 10 ring are always 5 hops apart.
		if route.Hops() != 5 {
			t.Errorf("expected 5 hop route, got %v", route)
		}
	}

	stats := r.Stats()
	if stats.SuccessRate != 1.0 {
		t.Errorf("expected 100%% delivery on the ring, got %f", stats.SuccessRate)
	}
	if r.CacheStats().CachedRoutes != 5 {
		t.Errorf("expected 5 cached routes, got %d", r.CacheStats().CachedRoutes)
	}
}
