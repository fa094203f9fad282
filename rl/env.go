package rl

import (
	"errors"

	"github.com/meshnetframework/meshnet/types"
	"golang.org/x/exp/rand"
)

// ErrTooFewActiveNodes is returned by Reset when the network cannot host
// an episode. There is no recoverable default for an empty network.
var ErrTooFewActiveNodes = errors.New("fewer than two active nodes in the network")

// Episode termination reasons reported in StepInfo.
const (
	ReasonNoNeighbors     = "no_neighbors"
	ReasonMaxSteps        = "max_steps"
	ReasonDelivered       = "success"
	ReasonObservationLost = "observation_failed"
)

// DefaultMaxSteps is the episode step budget before truncation.
const DefaultMaxSteps = 50

// EnvConfig parameterizes the environment.
type EnvConfig struct {
	MaxNeighbors int
	MaxSteps     int
	Weights      RewardWeights
}

// StepInfo is the auxiliary data returned with each transition.
type StepInfo struct {
	Reason      string
	Source      types.NodeID
	Destination types.NodeID
	Path        types.Route
	Steps       int
}

// Env is the finite-horizon episodic decision process: each episode
// routes one conceptual packet hop by hop until delivery, failure or the
// step budget. Calls are strictly sequential; after termination only
// Reset revives the environment.
type Env struct {
	adapter *Adapter
	encoder *StateEncoder
	reward  *RewardCalculator
	rng     *rand.Rand

	maxSteps int

	currentNode types.NodeID
	destination types.NodeID
	stepsTaken  int
	path        types.Route
	done        bool
	truncated   bool
	lastReason  string
}

// NewEnv creates an environment over the adapter. The random source
// drives source/destination sampling only.
func NewEnv(adapter *Adapter, config EnvConfig, src rand.Source) *Env {
	if config.MaxSteps <= 0 {
		config.MaxSteps = DefaultMaxSteps
	}
	return &Env{
		adapter:  adapter,
		encoder:  NewStateEncoder(config.MaxNeighbors),
		reward:   NewRewardCalculator(config.Weights),
		rng:      rand.New(src),
		maxSteps: config.MaxSteps,
		done:     true,
	}
}

// StateSize returns the fixed observation vector length.
func (e *Env) StateSize() int {
	return e.encoder.StateDim()
}

// ActionCount returns the fixed discrete action bound.
func (e *Env) ActionCount() int {
	return e.encoder.MaxNeighbors()
}

// Reset starts a new episode at a uniformly random active source with a
// distinct random active destination.
func (e *Env) Reset() ([]float64, StepInfo, error) {
	active := e.adapter.Network().ActiveNodes()
	if len(active) < 2 {
		return nil, StepInfo{}, ErrTooFewActiveNodes
	}

	e.currentNode = active[e.rng.Intn(len(active))]
	e.destination = e.currentNode
	for e.destination == e.currentNode {
		e.destination = active[e.rng.Intn(len(active))]
	}

	e.stepsTaken = 0
	e.path = types.Route{e.currentNode}
	e.done = false
	e.truncated = false
	e.lastReason = ""

	info := e.info("")
	return e.state(), info, nil
}

// Step forwards the packet to the neighbor selected by action. The
// action indexes the current ranked neighbor list; indices beyond it are
// clamped to the last valid neighbor rather than rejected.
func (e *Env) Step(action int) (state []float64, reward float64, done bool, truncated bool, info StepInfo) {
	// A finished episode stays finished; further steps replay the
	// terminal signal without advancing anything.
	if e.done || e.truncated {
		return e.zeroState(), 0, e.done, e.truncated, e.info(e.lastReason)
	}
	e.stepsTaken++

	obs, err := e.adapter.GetObservation(e.currentNode, e.destination, e.visited())
	if err != nil {
		e.done = true
		return e.zeroState(), e.reward.Calculate(StepOutcome{Failed: true}), true, false, e.finish(ReasonObservationLost)
	}

	if len(obs.Neighbors) == 0 {
		e.done = true
		reward = e.reward.Calculate(StepOutcome{Failed: true, HopCount: e.stepsTaken})
		return e.encoder.Encode(obs), reward, true, false, e.finish(ReasonNoNeighbors)
	}

	if action >= len(obs.Neighbors) {
		action = len(obs.Neighbors) - 1
	}
	if action < 0 {
		action = 0
	}
	link := obs.Neighbors[action]

	result := e.adapter.ExecuteAction(e.currentNode, link.TargetNodeID)
	if !result.Success {
		e.done = true
		reward = e.reward.Calculate(StepOutcome{Failed: true, HopCount: e.stepsTaken})
		return e.state(), reward, true, false, e.finish(result.Reason)
	}

	e.currentNode = link.TargetNodeID
	e.path = append(e.path, link.TargetNodeID)

	if e.currentNode == e.destination {
		e.done = true
		reward = e.reward.Calculate(StepOutcome{Success: true, HopCount: e.stepsTaken})
		return e.state(), reward, true, false, e.finish(ReasonDelivered)
	}

	if e.stepsTaken >= e.maxSteps {
		e.truncated = true
		reward = e.reward.Calculate(StepOutcome{Failed: true, HopCount: e.stepsTaken})
		return e.state(), reward, false, true, e.finish(ReasonMaxSteps)
	}

	// Still in transit: shape the reward with the richer signal of the
	// newly occupied node and the link that led to it.
	outcome := StepOutcome{
		HopCount:       e.stepsTaken,
		SignalStrength: link.SignalStrength,
		Bandwidth:      link.BandwidthCapacity,
		HasLink:        true,
	}
	if node, ok := e.adapter.Network().Nodes[e.currentNode]; ok {
		outcome.EnergyLevel = node.Battery
		outcome.HasEnergy = true
		outcome.QueueOccupancy = node.QueueOccupancy()
	}
	reward = e.reward.Calculate(outcome)
	return e.state(), reward, false, false, e.info("")
}

// Path returns the nodes traversed so far in the current episode.
func (e *Env) Path() types.Route {
	out := make(types.Route, len(e.path))
	copy(out, e.path)
	return out
}

// Done reports whether the episode has ended, by termination or by
// truncation. Either way only Reset starts a new one.
func (e *Env) Done() bool {
	return e.done || e.truncated
}

// Truncated reports whether the episode ended by hitting the step bound.
func (e *Env) Truncated() bool {
	return e.truncated
}

func (e *Env) finish(reason string) StepInfo {
	e.lastReason = reason
	return e.info(reason)
}

func (e *Env) visited() map[types.NodeID]bool {
	visited := make(map[types.NodeID]bool, len(e.path))
	for _, id := range e.path {
		visited[id] = true
	}
	return visited
}

func (e *Env) state() []float64 {
	obs, err := e.adapter.GetObservation(e.currentNode, e.destination, e.visited())
	if err != nil {
		return e.zeroState()
	}
	return e.encoder.Encode(obs)
}

func (e *Env) zeroState() []float64 {
	return make([]float64, e.encoder.StateDim())
}

func (e *Env) info(reason string) StepInfo {
	info := StepInfo{
		Reason:      reason,
		Destination: e.destination,
		Path:        e.Path(),
		Steps:       e.stepsTaken,
	}
	if len(e.path) > 0 {
		info.Source = e.path[0]
	}
	return info
}
