package rl

import (
	"testing"

	"golang.org/x/exp/rand"
)

func TestStateActionMapBestAction(t *testing.T) {
	m := NewStateActionMap()
	m.Update("s", 1, 0.5)
	m.Update("s", 3, 2.0)

	if got := m.BestAction("s", 5); got != 3 {
		t.Errorf("expected action 3, got %d", got)
	}
	// Actions at or beyond the bound are never picked.
	m.Update("s", 7, 100.0)
	if got := m.BestAction("s", 5); got != 3 {
		t.Errorf("out of bound action leaked: got %d", got)
	}
}

func TestStateActionMapTiesResolveLowestIndex(t *testing.T) {
	m := NewStateActionMap()
	m.Update("s", 2, 0.0)
	m.Update("s", 4, 0.0)

	if got := m.BestAction("s", 5); got != 0 {
		t.Errorf("all zero values must resolve to action 0, got %d", got)
	}

	m.Update("s", 1, 3.0)
	m.Update("s", 3, 3.0)
	if got := m.BestAction("s", 5); got != 1 {
		t.Errorf("tied maxima must resolve to the lowest index, got %d", got)
	}
}

func TestStateActionMapMaxQ(t *testing.T) {
	m := NewStateActionMap()
	if _, ok := m.MaxQ("unseen"); ok {
		t.Errorf("unseen state must report no max")
	}
	m.Update("s", 0, -2.0)
	m.Update("s", 1, -1.0)
	if max, ok := m.MaxQ("s"); !ok || max != -1.0 {
		t.Errorf("expected max -1.0, got %f (%v)", max, ok)
	}
}

func TestHashStateQuantizes(t *testing.T) {
	a := HashState([]float64{0.123, 0.456})
	b := HashState([]float64{0.1234, 0.4561})
	c := HashState([]float64{0.2, 0.456})

	if a != b {
		t.Errorf("states equal after quantization must share a key")
	}
	if a == c {
		t.Errorf("distinct states must not collide on the key")
	}
}

func TestQAgentLearnsFromTransition(t *testing.T) {
	agent, err := NewQAgent(QAgentConfig{
		Alpha:        0.5,
		Gamma:        0.9,
		Epsilon:      0.0,
		EpsilonMin:   0.0,
		EpsilonDecay: 1.0,
	}, rand.NewSource(1))
	if err != nil {
		t.Fatalf("failed to create agent: %s", err)
	}

	state := []float64{0.1, 0.2}
	agent.Observe(Transition{
		State:  state,
		Action: 2,
		Reward: 10.0,
		Done:   true,
	})

	// Terminal update: Q = 0 + 0.5 * (10 + 0 - 0) = 5.
	q, ok := agent.ValueTable().Get(HashState(state), 2)
	if !ok || q != 5.0 {
		t.Errorf("expected Q value 5.0, got %f (%v)", q, ok)
	}
	if agent.ActGreedy(state, 5) != 2 {
		t.Errorf("greedy action must follow the learned value")
	}
	if agent.MemorySize() != 1 {
		t.Errorf("expected 1 recorded transition, got %d", agent.MemorySize())
	}
}

func TestQAgentBootstrapsFromNextState(t *testing.T) {
	agent, err := NewQAgent(QAgentConfig{
		Alpha:        1.0,
		Gamma:        0.5,
		Epsilon:      0.0,
		EpsilonMin:   0.0,
		EpsilonDecay: 1.0,
	}, rand.NewSource(1))
	if err != nil {
		t.Fatalf("failed to create agent: %s", err)
	}

	next := []float64{0.9}
	agent.ValueTable().Update(HashState(next), 0, 8.0)

	state := []float64{0.1}
	agent.Observe(Transition{
		State:     state,
		Action:    0,
		Reward:    1.0,
		NextState: next,
		Done:      false,
	})

	// Q = 1 + 0.5 * 8 = 5 with alpha 1.
	q, _ := agent.ValueTable().Get(HashState(state), 0)
	if q != 5.0 {
		t.Errorf("expected bootstrapped Q 5.0, got %f", q)
	}
}

func TestQAgentEpsilonDecay(t *testing.T) {
	agent, err := NewQAgent(QAgentConfig{
		Alpha:        0.1,
		Gamma:        0.9,
		Epsilon:      1.0,
		EpsilonMin:   0.5,
		EpsilonDecay: 0.5,
	}, rand.NewSource(1))
	if err != nil {
		t.Fatalf("failed to create agent: %s", err)
	}

	agent.DecayEpsilon()
	if agent.Epsilon() != 0.5 {
		t.Errorf("expected epsilon 0.5, got %f", agent.Epsilon())
	}
	agent.DecayEpsilon()
	if agent.Epsilon() != 0.5 {
		t.Errorf("epsilon must not decay below the minimum, got %f", agent.Epsilon())
	}
}

func TestEpsilonGreedyValidation(t *testing.T) {
	if _, err := NewEpsilonGreedyPolicy(1.5, rand.NewSource(1)); err != ErrInvalidEpsilon {
		t.Errorf("expected ErrInvalidEpsilon for 1.5, got %v", err)
	}
	if _, err := NewEpsilonGreedyPolicy(-0.1, rand.NewSource(1)); err != ErrInvalidEpsilon {
		t.Errorf("expected ErrInvalidEpsilon for -0.1, got %v", err)
	}
}

func TestGreedyPolicyExploits(t *testing.T) {
	m := NewStateActionMap()
	m.Update("s", 4, 9.0)

	action, ok := GreedyPolicy{}.NextAction(m, "s", 5)
	if !ok || action != 4 {
		t.Errorf("expected greedy action 4, got %d (%v)", action, ok)
	}
	if _, ok := (GreedyPolicy{}).NextAction(m, "s", 0); ok {
		t.Errorf("zero actions must report failure")
	}
}
