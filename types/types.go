package types

import (
	"fmt"
	"math"
)

// NodeID identifies a node for the lifetime of a simulation.
type NodeID int64

func (n NodeID) String() string {
	return fmt.Sprintf("%d", int64(n))
}

// Position is a 2D coordinate in the simulation area.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the euclidean distance to another position.
func (p Position) Distance(o Position) float64 {
	dx := o.X - p.X
	dy := o.Y - p.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Route is an ordered node sequence from source to destination inclusive.
// A single-element route is valid only when source == destination.
type Route []NodeID

// Hops returns the number of edge traversals along the route.
func (r Route) Hops() int {
	if len(r) == 0 {
		return 0
	}
	return len(r) - 1
}

// Source returns the first node of the route.
func (r Route) Source() NodeID {
	return r[0]
}

// Destination returns the last node of the route.
func (r Route) Destination() NodeID {
	return r[len(r)-1]
}

// NodeState is a read-only snapshot of one node as seen by a routing
// decision. All ratio fields are normalized to [0,1].
type NodeState struct {
	ID             NodeID   `json:"id"`
	BatteryLevel   float64  `json:"battery_level"`
	QueueOccupancy float64  `json:"queue_occupancy"`
	Position       Position `json:"position"`
	IsActive       bool     `json:"is_active"`
}

// LinkState describes the link from the observed node to one neighbor.
// It is derived from current positions each observation, never stored.
type LinkState struct {
	TargetNodeID      NodeID  `json:"target_node_id"`
	SignalStrength    float64 `json:"signal_strength"`
	BandwidthCapacity float64 `json:"bandwidth_capacity"`
}

// NetworkObservation is the bounded snapshot used to make one routing
// decision. It is created per decision step and never persisted.
type NetworkObservation struct {
	CurrentNode    NodeState
	Neighbors      []LinkState
	NeighborNodes  map[NodeID]NodeState
	DestinationPos Position
}

// EdgeKey identifies an undirected edge. Use NewEdgeKey so that
// (u,v) and (v,u) map to the same key.
type EdgeKey struct {
	U NodeID
	V NodeID
}

// NewEdgeKey returns the canonical key for the edge between a and b.
func NewEdgeKey(a, b NodeID) EdgeKey {
	if a > b {
		a, b = b, a
	}
	return EdgeKey{U: a, V: b}
}

// NetworkState carries optional side information passed to routing
// algorithms alongside the graph.
type NetworkState struct {
	// Timestep is the current logical simulation step. Reactive caches
	// age relative to it.
	Timestep int
	// HasTimestep reports whether Timestep was supplied by the caller.
	HasTimestep bool
	// LinkQualities maps edges to quality scores in (0,1]. Missing edges
	// default to quality 1.
	LinkQualities map[EdgeKey]float64
}

// Quality returns the quality of edge (a,b), looking up both directions,
// defaulting to 1 when unknown.
func (s *NetworkState) Quality(a, b NodeID) float64 {
	if s == nil || s.LinkQualities == nil {
		return 1.0
	}
	if q, ok := s.LinkQualities[NewEdgeKey(a, b)]; ok {
		return q
	}
	return 1.0
}
