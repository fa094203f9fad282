package benchmark

import (
	"fmt"

	"github.com/meshnetframework/meshnet/types"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// TopologyClass names a preset network size and density.
type TopologyClass string

const (
	SmallSparse  TopologyClass = "small_sparse"
	SmallDense   TopologyClass = "small_dense"
	MediumSparse TopologyClass = "medium_sparse"
	MediumDense  TopologyClass = "medium_dense"
	LargeSparse  TopologyClass = "large_sparse"
	LargeDense   TopologyClass = "large_dense"
	XLargeSparse TopologyClass = "xlarge_sparse"
	XLargeDense  TopologyClass = "xlarge_dense"
)

type topologyConfig struct {
	nodes  int
	radius float64
}

// topologyConfigs maps each class to its node count and connection
// radius on the unit square.
var topologyConfigs = map[TopologyClass]topologyConfig{
	SmallSparse:  {nodes: 15, radius: 0.25},
	SmallDense:   {nodes: 15, radius: 0.40},
	MediumSparse: {nodes: 30, radius: 0.20},
	MediumDense:  {nodes: 30, radius: 0.30},
	LargeSparse:  {nodes: 50, radius: 0.18},
	LargeDense:   {nodes: 50, radius: 0.25},
	XLargeSparse: {nodes: 100, radius: 0.15},
	XLargeDense:  {nodes: 100, radius: 0.20},
}

// FailureLevel is the per-node knockout probability applied when a
// scenario is built.
type FailureLevel float64

const (
	FailureNone    FailureLevel = 0.0
	FailureLow     FailureLevel = 0.02
	FailureMedium  FailureLevel = 0.05
	FailureHigh    FailureLevel = 0.10
	FailureExtreme FailureLevel = 0.20
)

// TrafficPattern names how test routes are drawn over a topology.
type TrafficPattern string

const (
	PatternRandom     TrafficPattern = "random"
	PatternHubSpoke   TrafficPattern = "hub-spoke"
	PatternEdgeToEdge TrafficPattern = "edge-to-edge"
	PatternHotspot    TrafficPattern = "hotspot"
)

// RoutePair is one source/destination query of a scenario.
type RoutePair struct {
	Source      types.NodeID `json:"source" yaml:"source"`
	Destination types.NodeID `json:"destination" yaml:"destination"`
}

// Scenario is one frozen test case: a topology plus the route queries to
// run against it. The comparator never mutates it; algorithms receive
// copies of Graph.
type Scenario struct {
	Name               string
	Description        string
	Topology           TopologyClass
	Graph              *types.Graph
	Routes             []RoutePair
	State              *types.NetworkState
	Pattern            TrafficPattern
	FailureProbability float64
}

// NumNodes returns the scenario's node count after failure knockout.
func (s *Scenario) NumNodes() int {
	return s.Graph.NumNodes()
}

// NumEdges returns the scenario's edge count after failure knockout.
func (s *Scenario) NumEdges() int {
	return s.Graph.NumEdges()
}

// Density returns the fraction of possible edges present.
func (s *Scenario) Density() float64 {
	n := s.Graph.NumNodes()
	if n < 2 {
		return 0
	}
	return float64(2*s.Graph.NumEdges()) / float64(n*(n-1))
}

// Generator builds reproducible scenarios from a seeded source.
type Generator struct {
	rng *rand.Rand
	src rand.Source
}

// NewGenerator creates a generator over the given random source.
func NewGenerator(src rand.Source) *Generator {
	return &Generator{
		rng: rand.New(src),
		src: src,
	}
}

// GenerateTopology builds a random geometric graph on the unit square
// for the given class. Edges carry the euclidean distance attribute.
func (g *Generator) GenerateTopology(class TopologyClass) (*types.Graph, error) {
	config, ok := topologyConfigs[class]
	if !ok {
		return nil, fmt.Errorf("unknown topology class %q", class)
	}

	graph := types.NewGraph()
	positions := make([]types.Position, config.nodes)
	for i := 0; i < config.nodes; i++ {
		positions[i] = types.Position{X: g.rng.Float64(), Y: g.rng.Float64()}
		graph.AddNode(types.NodeID(i), positions[i])
	}
	for i := 0; i < config.nodes; i++ {
		for j := i + 1; j < config.nodes; j++ {
			d := positions[i].Distance(positions[j])
			if d <= config.radius {
				graph.AddEdge(types.NodeID(i), types.NodeID(j), map[string]float64{"distance": d})
			}
		}
	}
	return graph, nil
}

// GenerateRoutes draws numRoutes source/destination pairs over the graph
// following the traffic pattern.
func (g *Generator) GenerateRoutes(graph *types.Graph, numRoutes int, pattern TrafficPattern) ([]RoutePair, error) {
	nodes := graph.Nodes()
	if len(nodes) < 2 {
		return nil, fmt.Errorf("need at least two nodes to generate routes, have %d", len(nodes))
	}

	switch pattern {
	case PatternRandom, "":
		return g.randomRoutes(nodes, numRoutes), nil
	case PatternHubSpoke:
		return g.hubSpokeRoutes(graph, nodes, numRoutes), nil
	case PatternEdgeToEdge:
		return g.edgeToEdgeRoutes(graph, nodes, numRoutes), nil
	case PatternHotspot:
		return g.hotspotRoutes(nodes, numRoutes), nil
	default:
		return nil, fmt.Errorf("unknown traffic pattern %q", pattern)
	}
}

func (g *Generator) randomRoutes(nodes []types.NodeID, numRoutes int) []RoutePair {
	routes := make([]RoutePair, 0, numRoutes)
	for i := 0; i < numRoutes; i++ {
		routes = append(routes, g.distinctPair(nodes))
	}
	return routes
}

// hubSpokeRoutes routes to and from the highest degree node.
func (g *Generator) hubSpokeRoutes(graph *types.Graph, nodes []types.NodeID, numRoutes int) []RoutePair {
	hub := nodes[0]
	for _, id := range nodes {
		if len(graph.Neighbors(id)) > len(graph.Neighbors(hub)) {
			hub = id
		}
	}

	others := make([]types.NodeID, 0, len(nodes)-1)
	for _, id := range nodes {
		if id != hub {
			others = append(others, id)
		}
	}

	routes := make([]RoutePair, 0, numRoutes)
	for i := 0; i < numRoutes; i++ {
		other := others[g.rng.Intn(len(others))]
		if g.rng.Float64() < 0.5 {
			routes = append(routes, RoutePair{Source: hub, Destination: other})
		} else {
			routes = append(routes, RoutePair{Source: other, Destination: hub})
		}
	}
	return routes
}

// edgeToEdgeRoutes routes between peripheral nodes (degree two or less),
// falling back to all nodes when the periphery is too small.
func (g *Generator) edgeToEdgeRoutes(graph *types.Graph, nodes []types.NodeID, numRoutes int) []RoutePair {
	periphery := make([]types.NodeID, 0)
	for _, id := range nodes {
		if len(graph.Neighbors(id)) <= 2 {
			periphery = append(periphery, id)
		}
	}
	if len(periphery) < 2 {
		periphery = nodes
	}

	routes := make([]RoutePair, 0, numRoutes)
	for i := 0; i < numRoutes; i++ {
		routes = append(routes, g.distinctPair(periphery))
	}
	return routes
}

// hotspotRoutes concentrates eighty percent of traffic onto a hotspot
// set covering twenty percent of nodes.
func (g *Generator) hotspotRoutes(nodes []types.NodeID, numRoutes int) []RoutePair {
	hotspotSize := len(nodes) / 5
	if hotspotSize < 2 {
		hotspotSize = 2
	}
	hotspots := g.sample(nodes, hotspotSize)

	routes := make([]RoutePair, 0, numRoutes)
	for i := 0; i < numRoutes; i++ {
		if g.rng.Float64() < 0.8 {
			source := hotspots[g.rng.Intn(len(hotspots))]
			destination := source
			for destination == source {
				destination = nodes[g.rng.Intn(len(nodes))]
			}
			routes = append(routes, RoutePair{Source: source, Destination: destination})
		} else {
			routes = append(routes, g.distinctPair(nodes))
		}
	}
	return routes
}

func (g *Generator) distinctPair(nodes []types.NodeID) RoutePair {
	source := nodes[g.rng.Intn(len(nodes))]
	destination := source
	for destination == source {
		destination = nodes[g.rng.Intn(len(nodes))]
	}
	return RoutePair{Source: source, Destination: destination}
}

// sample draws k distinct nodes without replacement.
func (g *Generator) sample(nodes []types.NodeID, k int) []types.NodeID {
	shuffled := make([]types.NodeID, len(nodes))
	copy(shuffled, nodes)
	g.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:k]
}

// ScenarioSpec declares a scenario to build.
type ScenarioSpec struct {
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Topology    TopologyClass  `yaml:"topology" json:"topology"`
	NumRoutes   int            `yaml:"num_routes" json:"num_routes"`
	Pattern     TrafficPattern `yaml:"pattern" json:"pattern"`
	FailureRate float64        `yaml:"failure_rate" json:"failure_rate"`
}

// CreateScenario builds a full scenario: topology, failure knockout,
// then route queries drawn over the surviving nodes.
func (g *Generator) CreateScenario(spec ScenarioSpec) (*Scenario, error) {
	graph, err := g.GenerateTopology(spec.Topology)
	if err != nil {
		return nil, err
	}

	if spec.FailureRate > 0 {
		g.knockOutNodes(graph, spec.FailureRate)
	}

	routes, err := g.GenerateRoutes(graph, spec.NumRoutes, spec.Pattern)
	if err != nil {
		return nil, err
	}

	description := spec.Description
	if description == "" {
		description = fmt.Sprintf("%s network with %s traffic", spec.Topology, spec.Pattern)
	}

	return &Scenario{
		Name:               spec.Name,
		Description:        description,
		Topology:           spec.Topology,
		Graph:              graph,
		Routes:             routes,
		State:              &types.NetworkState{},
		Pattern:            spec.Pattern,
		FailureProbability: spec.FailureRate,
	}, nil
}

// knockOutNodes removes each node independently with probability rate,
// always leaving at least two nodes standing.
func (g *Generator) knockOutNodes(graph *types.Graph, rate float64) {
	bern := distuv.Bernoulli{P: rate, Src: g.src}
	for _, id := range graph.Nodes() {
		if graph.NumNodes() <= 2 {
			return
		}
		if bern.Rand() == 1 {
			graph.RemoveNode(id)
		}
	}
}

// BenchmarkSuite returns the full scenario battery covering all network
// sizes, traffic patterns and failure levels.
func (g *Generator) BenchmarkSuite() ([]*Scenario, error) {
	specs := []ScenarioSpec{
		{Name: "Small-Sparse-Random", Topology: SmallSparse, NumRoutes: 20, Pattern: PatternRandom, FailureRate: float64(FailureLow),
			Description: "Small sparse network with random traffic and low failure rate"},
		{Name: "Small-Dense-HubSpoke", Topology: SmallDense, NumRoutes: 25, Pattern: PatternHubSpoke, FailureRate: float64(FailureMedium),
			Description: "Small dense network with hub-spoke traffic pattern"},
		{Name: "Medium-Sparse-Random", Topology: MediumSparse, NumRoutes: 50, Pattern: PatternRandom, FailureRate: float64(FailureLow),
			Description: "Medium sparse network with random traffic"},
		{Name: "Medium-Dense-Hotspot", Topology: MediumDense, NumRoutes: 60, Pattern: PatternHotspot, FailureRate: float64(FailureMedium),
			Description: "Medium dense network with hotspot traffic pattern"},
		{Name: "Large-Sparse-EdgeToEdge", Topology: LargeSparse, NumRoutes: 80, Pattern: PatternEdgeToEdge, FailureRate: float64(FailureLow),
			Description: "Large sparse network with edge-to-edge communication"},
		{Name: "Large-Dense-Random", Topology: LargeDense, NumRoutes: 100, Pattern: PatternRandom, FailureRate: float64(FailureMedium),
			Description: "Large dense network with random traffic"},
		{Name: "StressTest-HighFailure", Topology: MediumDense, NumRoutes: 100, Pattern: PatternRandom, FailureRate: float64(FailureHigh),
			Description: "Stress test with high failure rate"},
		{Name: "StressTest-LargeScale", Topology: XLargeSparse, NumRoutes: 200, Pattern: PatternHotspot, FailureRate: float64(FailureMedium),
			Description: "Large scale stress test with 100 nodes"},
		{Name: "EdgeCase-ExtremeFailure", Topology: SmallDense, NumRoutes: 30, Pattern: PatternRandom, FailureRate: float64(FailureExtreme),
			Description: "Edge case with extreme failure rate"},
	}
	return g.buildAll(specs)
}

// QuickSuite returns a reduced battery for fast runs.
func (g *Generator) QuickSuite() ([]*Scenario, error) {
	specs := []ScenarioSpec{
		{Name: "Quick-Small", Topology: SmallSparse, NumRoutes: 15, Pattern: PatternRandom, FailureRate: float64(FailureLow)},
		{Name: "Quick-Medium", Topology: MediumSparse, NumRoutes: 30, Pattern: PatternRandom, FailureRate: float64(FailureMedium)},
		{Name: "Quick-Large", Topology: LargeSparse, NumRoutes: 50, Pattern: PatternRandom, FailureRate: float64(FailureMedium)},
	}
	return g.buildAll(specs)
}

func (g *Generator) buildAll(specs []ScenarioSpec) ([]*Scenario, error) {
	scenarios := make([]*Scenario, 0, len(specs))
	for _, spec := range specs {
		s, err := g.CreateScenario(spec)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", spec.Name, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}
