package routing

import (
	"time"

	"github.com/meshnetframework/meshnet/types"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// DefaultWeightAttr is the edge attribute ShortestPath weighs edges by.
// Edges without the attribute count as weight 1, so a graph with no
// weight attributes at all is routed by hop count.
const DefaultWeightAttr = "weight"

// minQuality floors link quality when converting it to an additive cost,
// so a zero-quality link is expensive rather than a division by zero.
const minQuality = 0.01

// ShortestPath finds minimum-weight paths with Dijkstra's algorithm.
type ShortestPath struct {
	weightAttr string
	stats      *StatsTracker
}

var _ Algorithm = &ShortestPath{}

// NewShortestPath creates a hop-count shortest path algorithm.
func NewShortestPath() *ShortestPath {
	return NewShortestPathWithWeight(DefaultWeightAttr)
}

// NewShortestPathWithWeight creates a shortest path algorithm weighing
// edges by the named attribute.
func NewShortestPathWithWeight(attr string) *ShortestPath {
	return &ShortestPath{
		weightAttr: attr,
		stats:      NewStatsTracker(),
	}
}

func (s *ShortestPath) Name() string {
	return "Dijkstra"
}

// FindRoute returns the minimum weight route between source and
// destination, or nil if none exists.
func (s *ShortestPath) FindRoute(g *types.Graph, source, destination types.NodeID, _ *types.NetworkState) types.Route {
	start := time.Now()

	if !g.HasNode(source) || !g.HasNode(destination) {
		s.stats.Record(nil, time.Since(start))
		return nil
	}
	if source == destination {
		route := types.Route{source}
		s.stats.Record(route, time.Since(start))
		return route
	}

	route := dijkstra(g, source, destination, func(u, v types.NodeID) float64 {
		if w, ok := g.EdgeAttr(u, v, s.weightAttr); ok {
			return w
		}
		return 1.0
	})
	s.stats.Record(route, time.Since(start))
	return route
}

// FindRouteWithQuality weighs each edge by the inverse of its quality
// score, so high quality links are preferred without ever increasing the
// cost below one hop. A nil quality map falls back to plain FindRoute.
func (s *ShortestPath) FindRouteWithQuality(g *types.Graph, source, destination types.NodeID, qualities map[types.EdgeKey]float64) types.Route {
	if qualities == nil {
		return s.FindRoute(g, source, destination, nil)
	}
	start := time.Now()

	if !g.HasNode(source) || !g.HasNode(destination) {
		s.stats.Record(nil, time.Since(start))
		return nil
	}
	if source == destination {
		route := types.Route{source}
		s.stats.Record(route, time.Since(start))
		return route
	}

	route := dijkstra(g, source, destination, func(u, v types.NodeID) float64 {
		q, ok := qualities[types.NewEdgeKey(u, v)]
		if !ok {
			q = 1.0
		}
		if q < minQuality {
			q = minQuality
		}
		return 1.0 / q
	})
	s.stats.Record(route, time.Since(start))
	return route
}

func (s *ShortestPath) Stats() Stats {
	return s.stats.Snapshot()
}

func (s *ShortestPath) ResetStats() {
	s.stats.Reset()
}

// dijkstra converts the topology to the graph package representation and
// runs its shortest path tree search rooted at source.
func dijkstra(g *types.Graph, source, destination types.NodeID, weight func(u, v types.NodeID) float64) types.Route {
	wg := simple.NewWeightedUndirectedGraph(0, 0)
	for _, id := range g.Nodes() {
		wg.AddNode(simple.Node(id))
	}
	for _, u := range g.Nodes() {
		for _, v := range g.Neighbors(u) {
			if u >= v {
				continue
			}
			wg.SetWeightedEdge(simple.WeightedEdge{
				F: simple.Node(u),
				T: simple.Node(v),
				W: weight(u, v),
			})
		}
	}

	spTree := path.DijkstraFrom(simple.Node(source), wg)
	nodeSeq, _ := spTree.To(int64(destination))
	if len(nodeSeq) == 0 {
		return nil
	}
	route := make(types.Route, 0, len(nodeSeq))
	for _, n := range nodeSeq {
		route = append(route, types.NodeID(n.ID()))
	}
	return route
}
