package rl

import (
	"github.com/meshnetframework/meshnet/types"
	"golang.org/x/exp/rand"
)

// Transition is one recorded (s, a, r, s') step.
type Transition struct {
	State     []float64
	Action    int
	Reward    float64
	NextState []float64
	Done      bool
}

// QAgentConfig holds the learning hyperparameters.
type QAgentConfig struct {
	Alpha        float64
	Gamma        float64
	Epsilon      float64
	EpsilonMin   float64
	EpsilonDecay float64
}

// DefaultQAgentConfig returns the training defaults.
func DefaultQAgentConfig() QAgentConfig {
	return QAgentConfig{
		Alpha:        0.1,
		Gamma:        0.99,
		Epsilon:      1.0,
		EpsilonMin:   0.01,
		EpsilonDecay: 0.995,
	}
}

// QAgent is a tabular Q-learning agent over encoded states. It consumes
// encoded state vectors, emits bounded discrete actions and learns from
// recorded transitions; the environment never depends on its internals.
type QAgent struct {
	config  QAgentConfig
	explore *EpsilonGreedyPolicy
	saMap   *StateActionMap
	memory  *types.List[Transition]
}

// NewQAgent creates an agent with its own value table.
func NewQAgent(config QAgentConfig, src rand.Source) (*QAgent, error) {
	explore, err := NewEpsilonGreedyPolicy(config.Epsilon, src)
	if err != nil {
		return nil, err
	}
	return &QAgent{
		config:  config,
		explore: explore,
		saMap:   NewStateActionMap(),
		memory:  types.NewEmptyList[Transition](),
	}, nil
}

// Act picks an action for the encoded state, exploring per the current
// epsilon.
func (a *QAgent) Act(state []float64, numActions int) int {
	action, ok := a.explore.NextAction(a.saMap, HashState(state), numActions)
	if !ok {
		return 0
	}
	return action
}

// ActGreedy picks the best known action without exploration.
func (a *QAgent) ActGreedy(state []float64, numActions int) int {
	return a.saMap.BestAction(HashState(state), numActions)
}

// Observe applies the Q-learning update for one transition and records
// it.
func (a *QAgent) Observe(t Transition) {
	a.memory.Append(t)

	stateKey := HashState(t.State)
	cur, _ := a.saMap.Get(stateKey, t.Action)

	var future float64
	if !t.Done {
		future, _ = a.saMap.MaxQ(HashState(t.NextState))
	}
	target := t.Reward + a.config.Gamma*future
	a.saMap.Update(stateKey, t.Action, cur+a.config.Alpha*(target-cur))
}

// DecayEpsilon lowers the exploration rate, bounded below by EpsilonMin.
func (a *QAgent) DecayEpsilon() {
	if a.explore.Epsilon > a.config.EpsilonMin {
		a.explore.Epsilon *= a.config.EpsilonDecay
		if a.explore.Epsilon < a.config.EpsilonMin {
			a.explore.Epsilon = a.config.EpsilonMin
		}
	}
}

// Epsilon returns the current exploration rate.
func (a *QAgent) Epsilon() float64 {
	return a.explore.Epsilon
}

// ValueTable exposes the learned action values.
func (a *QAgent) ValueTable() *StateActionMap {
	return a.saMap
}

// MemorySize returns the number of recorded transitions.
func (a *QAgent) MemorySize() int {
	return a.memory.Size()
}
