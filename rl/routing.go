package rl

import (
	"time"

	"github.com/meshnetframework/meshnet/routing"
	"github.com/meshnetframework/meshnet/types"
)

// Learned routes with a trained agent's value table. Each FindRoute is a
// greedy rollout over adapter observations: the walk reads link state but
// never forwards, so it drains no battery and mutates nothing.
type Learned struct {
	adapter *Adapter
	agent   *QAgent
	encoder *StateEncoder

	maxSteps int
	stats    *routing.StatsTracker
}

var _ routing.Algorithm = &Learned{}

// NewLearned wraps a trained agent as a routing algorithm. The encoder
// width must match the one the agent was trained with.
//
// Rollouts observe the adapter's live network, not the graph argument of
// FindRoute; the graph must describe that same network. A graph with a
// different node set is rejected as a failed route rather than silently
// routed over the wrong topology.
func NewLearned(adapter *Adapter, agent *QAgent, maxNeighbors int, maxSteps int) *Learned {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &Learned{
		adapter:  adapter,
		agent:    agent,
		encoder:  NewStateEncoder(maxNeighbors),
		maxSteps: maxSteps,
		stats:    routing.NewStatsTracker(),
	}
}

func (l *Learned) Name() string {
	return "Q-Learning"
}

// FindRoute rolls the policy out hop by hop until the destination, a
// dead end or the step bound.
func (l *Learned) FindRoute(g *types.Graph, source, destination types.NodeID, state *types.NetworkState) types.Route {
	start := time.Now()
	route := l.rollout(g, source, destination)
	l.stats.Record(route, time.Since(start))
	return route
}

func (l *Learned) rollout(g *types.Graph, source, destination types.NodeID) types.Route {
	if !l.graphMatchesNetwork(g) {
		return nil
	}
	if !g.HasNode(source) || !g.HasNode(destination) {
		return nil
	}
	if source == destination {
		return types.Route{source}
	}

	current := source
	route := types.Route{source}
	visited := map[types.NodeID]bool{source: true}

	for step := 0; step < l.maxSteps; step++ {
		obs, err := l.adapter.GetObservation(current, destination, visited)
		if err != nil || len(obs.Neighbors) == 0 {
			return nil
		}

		action := l.agent.ActGreedy(l.encoder.Encode(obs), l.encoder.MaxNeighbors())
		if action >= len(obs.Neighbors) {
			action = len(obs.Neighbors) - 1
		}

		current = obs.Neighbors[action].TargetNodeID
		route = append(route, current)
		visited[current] = true

		if current == destination {
			return route
		}
	}
	return nil
}

// graphMatchesNetwork checks that the graph's node set is exactly the
// adapter network's, catching callers that pass an unrelated topology.
func (l *Learned) graphMatchesNetwork(g *types.Graph) bool {
	nodes := l.adapter.Network().Nodes
	if g.NumNodes() != len(nodes) {
		return false
	}
	for id := range nodes {
		if !g.HasNode(id) {
			return false
		}
	}
	return true
}

func (l *Learned) Stats() routing.Stats {
	return l.stats.Snapshot()
}

func (l *Learned) ResetStats() {
	l.stats.Reset()
}
