package rl

import (
	"testing"

	"github.com/meshnetframework/meshnet/types"
)

func observationWithNeighbors(n int) types.NetworkObservation {
	obs := types.NetworkObservation{
		CurrentNode:    types.NodeState{ID: 0, Position: types.Position{X: 0, Y: 0}},
		DestinationPos: types.Position{X: 100, Y: 0},
		NeighborNodes:  make(map[types.NodeID]types.NodeState),
	}
	for i := 1; i <= n; i++ {
		id := types.NodeID(i)
		obs.Neighbors = append(obs.Neighbors, types.LinkState{
			TargetNodeID:      id,
			SignalStrength:    0.9,
			BandwidthCapacity: 40.0,
		})
		obs.NeighborNodes[id] = types.NodeState{
			ID:             id,
			BatteryLevel:   0.8,
			QueueOccupancy: 0.2,
			IsActive:       true,
		}
	}
	return obs
}

func TestEncoderStateDim(t *testing.T) {
	e := NewStateEncoder(5)
	if e.StateDim() != 16 {
		t.Errorf("expected state dim 16 for 5 neighbors, got %d", e.StateDim())
	}
}

func TestEncoderFixedLengthAcrossDegrees(t *testing.T) {
	e := NewStateEncoder(5)
	for _, n := range []int{0, 1, 3, 5, 8} {
		state := e.Encode(observationWithNeighbors(n))
		if len(state) != e.StateDim() {
			t.Errorf("degree %d: expected length %d, got %d", n, e.StateDim(), len(state))
		}
	}
}

func TestEncoderPadding(t *testing.T) {
	e := NewStateEncoder(5)
	state := e.Encode(observationWithNeighbors(1))

	// First neighbor slot holds real features.
	if state[1] != 0.9 || state[2] != 0.8 || state[3] != 0.2 {
		t.Errorf("unexpected first neighbor features: %v", state[1:4])
	}
	// Remaining slots are padded with the dead link triple.
	for i := 0; i < 4; i++ {
		offset := 4 + i*FeaturesPerNeighbor
		if state[offset] != 0.0 || state[offset+1] != 0.0 || state[offset+2] != 1.0 {
			t.Errorf("padding slot %d wrong: %v", i, state[offset:offset+3])
		}
	}
}

func TestEncoderTruncation(t *testing.T) {
	e := NewStateEncoder(2)
	state := e.Encode(observationWithNeighbors(6))
	if len(state) != 7 {
		t.Errorf("expected 7 features for 2 neighbor bound, got %d", len(state))
	}
}

func TestEncoderDistanceNormalization(t *testing.T) {
	e := NewStateEncoder(5)

	obs := observationWithNeighbors(0)
	state := e.Encode(obs)
	if state[0] != 0.1 {
		t.Errorf("expected normalized distance 0.1 for 100m, got %f", state[0])
	}

	obs.DestinationPos = types.Position{X: 5000, Y: 0}
	state = e.Encode(obs)
	if state[0] != 1.0 {
		t.Errorf("distance beyond the bound must clamp to 1.0, got %f", state[0])
	}
}

func TestEncoderSkipsMissingSnapshots(t *testing.T) {
	e := NewStateEncoder(5)
	obs := observationWithNeighbors(2)
	delete(obs.NeighborNodes, 1)

	state := e.Encode(obs)
	// Only node 2 has a snapshot, so a single real slot then padding.
	if state[1] != 0.9 || state[2] != 0.8 {
		t.Errorf("expected node 2 features in slot 0, got %v", state[1:4])
	}
	if state[4] != 0.0 || state[6] != 1.0 {
		t.Errorf("expected padding in slot 1, got %v", state[4:7])
	}
}
