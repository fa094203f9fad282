package rl

import (
	"github.com/meshnetframework/meshnet/types"
)

// Encoder constants.
const (
	// MaxDistanceMeters normalizes the distance-to-destination feature.
	MaxDistanceMeters = 1000.0
	// FeaturesPerNeighbor is signal, energy and queue occupancy.
	FeaturesPerNeighbor = 3
	// DefaultMaxNeighbors bounds the per-hop action space.
	DefaultMaxNeighbors = 5
)

// StateEncoder deterministically maps an observation to a fixed length
// feature vector. It carries no mutable state beyond configuration.
//
// Layout: [distance to destination] followed by up to maxNeighbors
// triples of (signal, energy, queue). Missing slots are padded with
// (0, 0, 1), a dead link to a drained and congested node, so a policy is
// never rewarded for picking a padding slot.
type StateEncoder struct {
	maxNeighbors int
}

// NewStateEncoder creates an encoder with the given neighbor bound.
func NewStateEncoder(maxNeighbors int) *StateEncoder {
	if maxNeighbors <= 0 {
		maxNeighbors = DefaultMaxNeighbors
	}
	return &StateEncoder{maxNeighbors: maxNeighbors}
}

// MaxNeighbors returns the neighbor bound.
func (e *StateEncoder) MaxNeighbors() int {
	return e.maxNeighbors
}

// StateDim returns the encoded vector length.
func (e *StateEncoder) StateDim() int {
	return 1 + e.maxNeighbors*FeaturesPerNeighbor
}

// Encode converts one observation into the feature vector. Neighbors
// beyond the bound are truncated; neighbors without a node snapshot are
// skipped.
func (e *StateEncoder) Encode(obs types.NetworkObservation) []float64 {
	state := make([]float64, 0, e.StateDim())

	dist := obs.CurrentNode.Position.Distance(obs.DestinationPos)
	normDist := dist / MaxDistanceMeters
	if normDist > 1.0 {
		normDist = 1.0
	}
	state = append(state, normDist)

	count := 0
	for _, link := range obs.Neighbors {
		if count >= e.maxNeighbors {
			break
		}
		neighbor, ok := obs.NeighborNodes[link.TargetNodeID]
		if !ok {
			continue
		}
		state = append(state, link.SignalStrength, neighbor.BatteryLevel, neighbor.QueueOccupancy)
		count++
	}

	for ; count < e.maxNeighbors; count++ {
		state = append(state, 0.0, 0.0, 1.0)
	}
	return state
}
