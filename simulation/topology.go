package simulation

import (
	"github.com/meshnetframework/meshnet/types"
	"golang.org/x/exp/rand"
)

// TopologyGenerator places nodes uniformly at random in a rectangle and
// connects every pair within communication range (a random geometric
// graph). The random source is injected so runs are reproducible.
type TopologyGenerator struct {
	Width  float64
	Height float64
	rng    *rand.Rand
}

// NewTopologyGenerator creates a generator over the given area.
func NewTopologyGenerator(width, height float64, src rand.Source) *TopologyGenerator {
	return &TopologyGenerator{
		Width:  width,
		Height: height,
		rng:    rand.New(src),
	}
}

// RandomPositions draws n uniform positions in the area.
func (t *TopologyGenerator) RandomPositions(n int) []types.Position {
	positions := make([]types.Position, n)
	for i := 0; i < n; i++ {
		positions[i] = types.Position{
			X: t.rng.Float64() * t.Width,
			Y: t.rng.Float64() * t.Height,
		}
	}
	return positions
}

// CreateRandomTopology builds nodes and the matching graph. Edges carry a
// "distance" attribute; hop-count routing ignores it, distance-aware
// weightings can use it.
func (t *TopologyGenerator) CreateRandomTopology(numNodes int, communicationRange float64) ([]*Node, *types.Graph) {
	positions := t.RandomPositions(numNodes)

	nodes := make([]*Node, numNodes)
	graph := types.NewGraph()
	for i, pos := range positions {
		id := types.NodeID(i)
		nodes[i] = NewNode(id, pos)
		graph.AddNode(id, pos)
	}

	for i := 0; i < numNodes; i++ {
		for j := i + 1; j < numNodes; j++ {
			d := positions[i].Distance(positions[j])
			if d <= communicationRange {
				u, v := types.NodeID(i), types.NodeID(j)
				nodes[i].AddNeighbor(v)
				nodes[j].AddNeighbor(u)
				graph.AddEdge(u, v, map[string]float64{"distance": d})
			}
		}
	}
	return nodes, graph
}
