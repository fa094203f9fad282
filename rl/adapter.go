package rl

import (
	"fmt"
	"sort"

	"github.com/meshnetframework/meshnet/simulation"
	"github.com/meshnetframework/meshnet/types"
)

// Signal strength tiers, modeled on 802.11g modulation bands.
const (
	SignalExcellent = 0.8
	SignalGood      = 0.6
	SignalFair      = 0.4
	SignalWeak      = 0.2
)

// Bandwidth fractions granted per signal tier.
const (
	BandwidthExcellentRatio = 1.0
	BandwidthGoodRatio      = 0.75
	BandwidthFairRatio      = 0.5
	BandwidthWeakRatio      = 0.25
	BandwidthMinimumRatio   = 0.1
)

// Physical layer constants.
const (
	MaxBandwidthMbps      = 54.0
	MinBandwidthMbps      = 1.0
	BaseLatencySeconds    = 0.001
	LatencyPerMeter       = 0.0001
	BaseEnergyCost        = 0.5
	EnergyCostPerMeter    = 0.01
	DistancePenaltyFactor = 0.3
	// batteryScale converts the energy cost unit to the normalized
	// battery range.
	batteryScale = 100.0
)

// Reason codes returned by ExecuteAction.
const (
	ReasonSuccess        = "success"
	ReasonSourceNotFound = "source_not_found"
	ReasonTargetNotFound = "target_not_found"
	ReasonNotANeighbor   = "not_a_neighbor"
	ReasonTargetInactive = "target_inactive"
)

// ActionResult reports the outcome of one forwarding attempt. Rejections
// carry a reason code instead of an error.
type ActionResult struct {
	Success    bool    `json:"success"`
	Latency    float64 `json:"latency"`
	EnergyCost float64 `json:"energy_cost"`
	Reason     string  `json:"reason"`
}

// Adapter bridges the live simulation to the observation/action contract
// consumed by routing policies.
type Adapter struct {
	network            *simulation.Network
	communicationRange float64
}

// NewAdapter wraps a network with the given communication range.
func NewAdapter(network *simulation.Network, communicationRange float64) *Adapter {
	return &Adapter{
		network:            network,
		communicationRange: communicationRange,
	}
}

// Network returns the underlying simulation.
func (a *Adapter) Network() *simulation.Network {
	return a.network
}

// GetObservation builds the bounded decision snapshot for nodeID routing
// toward destinationID. Neighbors already in visited are excluded, the
// rest are ranked by signal strength (ties broken by ID). An unknown
// nodeID is a contract violation and returns an error.
func (a *Adapter) GetObservation(nodeID, destinationID types.NodeID, visited map[types.NodeID]bool) (types.NetworkObservation, error) {
	current, ok := a.network.Nodes[nodeID]
	if !ok {
		return types.NetworkObservation{}, fmt.Errorf("node %d not found in network", nodeID)
	}

	destinationPos := types.Position{}
	if dest, ok := a.network.Nodes[destinationID]; ok {
		destinationPos = dest.Position
	}

	links := make([]types.LinkState, 0, len(current.Neighbors))
	neighborNodes := make(map[types.NodeID]types.NodeState, len(current.Neighbors))
	for _, nbrID := range current.Neighbors {
		nbr, ok := a.network.Nodes[nbrID]
		if !ok || !nbr.IsActive || visited[nbrID] {
			continue
		}
		distance := current.DistanceTo(nbr)
		signal := a.signalStrength(distance)
		links = append(links, types.LinkState{
			TargetNodeID:      nbrID,
			SignalStrength:    signal,
			BandwidthCapacity: a.bandwidthCapacity(signal, distance),
		})
		neighborNodes[nbrID] = nbr.Snapshot()
	}
	sort.SliceStable(links, func(i, j int) bool {
		if links[i].SignalStrength != links[j].SignalStrength {
			return links[i].SignalStrength > links[j].SignalStrength
		}
		return links[i].TargetNodeID < links[j].TargetNodeID
	})

	return types.NetworkObservation{
		CurrentNode:    current.Snapshot(),
		Neighbors:      links,
		NeighborNodes:  neighborNodes,
		DestinationPos: destinationPos,
	}, nil
}

// ExecuteAction forwards from source to target, validating the hop and
// applying its physical costs. Battery is the single source of truth for
// energy: the deduction shows up in observations taken after this call,
// never retroactively in the current one.
func (a *Adapter) ExecuteAction(sourceID, targetID types.NodeID) ActionResult {
	source, ok := a.network.Nodes[sourceID]
	if !ok {
		return ActionResult{Reason: ReasonSourceNotFound}
	}
	target, ok := a.network.Nodes[targetID]
	if !ok {
		return ActionResult{Reason: ReasonTargetNotFound}
	}
	if !source.HasNeighbor(targetID) {
		return ActionResult{Reason: ReasonNotANeighbor}
	}
	if !target.IsActive {
		return ActionResult{Reason: ReasonTargetInactive}
	}

	distance := source.DistanceTo(target)
	latency := BaseLatencySeconds + distance*LatencyPerMeter
	energyCost := BaseEnergyCost + distance*EnergyCostPerMeter

	source.DrainBattery(energyCost / batteryScale)
	target.DrainBattery(energyCost / batteryScale / 2)

	return ActionResult{
		Success:    true,
		Latency:    latency,
		EnergyCost: energyCost,
		Reason:     ReasonSuccess,
	}
}

// signalStrength applies inverse quadratic falloff with distance, zero at
// and beyond communication range.
func (a *Adapter) signalStrength(distance float64) float64 {
	if distance >= a.communicationRange {
		return 0.0
	}
	norm := distance / a.communicationRange
	signal := 1.0 - norm*norm
	if signal < 0 {
		return 0.0
	}
	if signal > 1 {
		return 1.0
	}
	return signal
}

// bandwidthCapacity maps signal strength to a banded fraction of the
// maximum bandwidth, penalized by distance and floored at the guaranteed
// minimum.
func (a *Adapter) bandwidthCapacity(signal, distance float64) float64 {
	var ratio float64
	switch {
	case signal >= SignalExcellent:
		ratio = BandwidthExcellentRatio
	case signal >= SignalGood:
		ratio = BandwidthGoodRatio
	case signal >= SignalFair:
		ratio = BandwidthFairRatio
	case signal >= SignalWeak:
		ratio = BandwidthWeakRatio
	default:
		ratio = BandwidthMinimumRatio
	}

	penalty := 1.0 - (distance/a.communicationRange)*DistancePenaltyFactor
	ratio *= penalty
	if ratio < BandwidthMinimumRatio {
		ratio = BandwidthMinimumRatio
	}

	bandwidth := ratio * MaxBandwidthMbps
	if bandwidth < MinBandwidthMbps {
		bandwidth = MinBandwidthMbps
	}
	return bandwidth
}
