package rl

import (
	"errors"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// ErrInvalidEpsilon is returned for exploration rates outside [0,1].
var ErrInvalidEpsilon = errors.New("invalid epsilon value")

// Policy selects one of numActions actions given the value table and the
// current state hash.
type Policy interface {
	NextAction(saMap *StateActionMap, state string, numActions int) (int, bool)
}

// EpsilonGreedyPolicy explores uniformly with probability epsilon and
// exploits the value table otherwise.
type EpsilonGreedyPolicy struct {
	Epsilon float64
	rng     *rand.Rand
}

var _ Policy = &EpsilonGreedyPolicy{}

// NewEpsilonGreedyPolicy validates epsilon and creates the policy.
func NewEpsilonGreedyPolicy(epsilon float64, src rand.Source) (*EpsilonGreedyPolicy, error) {
	if epsilon < 0 || epsilon > 1 {
		return nil, ErrInvalidEpsilon
	}
	return &EpsilonGreedyPolicy{
		Epsilon: epsilon,
		rng:     rand.New(src),
	}, nil
}

func (p *EpsilonGreedyPolicy) NextAction(saMap *StateActionMap, state string, numActions int) (int, bool) {
	if numActions <= 0 {
		return 0, false
	}
	if p.rng.Float64() < p.Epsilon {
		return p.rng.Intn(numActions), true
	}
	return saMap.BestAction(state, numActions), true
}

// SoftMaxPolicy samples actions with probability proportional to the
// exponential of their values.
type SoftMaxPolicy struct {
	src rand.Source
}

var _ Policy = &SoftMaxPolicy{}

// NewSoftMaxPolicy creates the policy over the given random source.
func NewSoftMaxPolicy(src rand.Source) *SoftMaxPolicy {
	return &SoftMaxPolicy{src: src}
}

func (p *SoftMaxPolicy) NextAction(saMap *StateActionMap, state string, numActions int) (int, bool) {
	if numActions <= 0 {
		return 0, false
	}
	vals := saMap.Values(state, numActions)
	weights := make([]float64, numActions)
	var sum float64
	for i, v := range vals {
		exp := math.Exp(v)
		weights[i] = exp
		sum += exp
	}
	for i := range weights {
		weights[i] /= sum
	}
	i, ok := sampleuv.NewWeighted(weights, p.src).Take()
	if !ok {
		return 0, false
	}
	return i, true
}

// GreedyPolicy always exploits the value table. It is the evaluation
// policy used once training is done.
type GreedyPolicy struct{}

var _ Policy = &GreedyPolicy{}

func (GreedyPolicy) NextAction(saMap *StateActionMap, state string, numActions int) (int, bool) {
	if numActions <= 0 {
		return 0, false
	}
	return saMap.BestAction(state, numActions), true
}
