package rl

import (
	"testing"

	"github.com/meshnetframework/meshnet/log"
	"github.com/meshnetframework/meshnet/simulation"
	"github.com/meshnetframework/meshnet/types"
	"golang.org/x/exp/rand"
)

func newTestEnv(t *testing.T, network *simulation.Network, maxSteps int) *Env {
	t.Helper()
	adapter := NewAdapter(network, testRange)
	return NewEnv(adapter, EnvConfig{
		MaxNeighbors: 5,
		MaxSteps:     maxSteps,
		Weights:      DefaultRewardWeights(),
	}, rand.NewSource(7))
}

func TestEnvResetNeedsTwoActiveNodes(t *testing.T) {
	network := simulation.NewNetwork(100, 100, 1, log.DefaultLogger)
	network.AddNode(0, types.Position{X: 0, Y: 0}, testRange)

	env := newTestEnv(t, network, 10)
	if _, _, err := env.Reset(); err != ErrTooFewActiveNodes {
		t.Errorf("expected ErrTooFewActiveNodes, got %v", err)
	}
}

func TestEnvDeliversOnAdjacentPair(t *testing.T) {
	env := newTestEnv(t, pairNetwork(t), 10)

	state, info, err := env.Reset()
	if err != nil {
		t.Fatalf("reset failed: %s", err)
	}
	if len(state) != env.StateSize() {
		t.Errorf("expected state length %d, got %d", env.StateSize(), len(state))
	}
	if info.Source == info.Destination {
		t.Errorf("source and destination must differ")
	}

	_, reward, done, truncated, info := env.Step(0)
	if !done || truncated {
		t.Fatalf("expected terminal delivery, done=%v truncated=%v", done, truncated)
	}
	if info.Reason != ReasonDelivered {
		t.Errorf("expected reason %q, got %q", ReasonDelivered, info.Reason)
	}
	// One hop success: 100 + 19*2.
	if reward != 138.0 {
		t.Errorf("expected reward 138, got %f", reward)
	}
	if !env.Done() {
		t.Errorf("environment must report done")
	}
}

func TestEnvActionClamping(t *testing.T) {
	// Out of range and negative actions clamp onto the single valid
	// neighbor instead of being rejected.
	for _, action := range []int{99, -5} {
		env := newTestEnv(t, pairNetwork(t), 10)
		if _, _, err := env.Reset(); err != nil {
			t.Fatalf("reset failed: %s", err)
		}
		_, _, done, _, info := env.Step(action)
		if !done || info.Reason != ReasonDelivered {
			t.Errorf("action %d: expected clamped delivery, got done=%v reason=%q", action, done, info.Reason)
		}
	}
}

func TestEnvNoNeighborsTerminates(t *testing.T) {
	// Two active nodes far out of range of each other.
	network := simulation.NewNetwork(100, 100, 1, log.DefaultLogger)
	network.AddNode(0, types.Position{X: 0, Y: 0}, testRange)
	network.AddNode(1, types.Position{X: 90, Y: 90}, testRange)

	env := newTestEnv(t, network, 10)
	if _, _, err := env.Reset(); err != nil {
		t.Fatalf("reset failed: %s", err)
	}
	_, reward, done, truncated, info := env.Step(0)
	if !done || truncated {
		t.Errorf("expected terminal failure, done=%v truncated=%v", done, truncated)
	}
	if info.Reason != ReasonNoNeighbors {
		t.Errorf("expected reason %q, got %q", ReasonNoNeighbors, info.Reason)
	}
	if reward != -1.0 {
		t.Errorf("expected failure reward -1, got %f", reward)
	}
}

func TestEnvTruncationAtStepBudget(t *testing.T) {
	// Line 0-1-2 where only the middle node relays. With a budget of one
	// step an episode between the endpoints must truncate.
	network := simulation.NewNetwork(100, 100, 1, log.DefaultLogger)
	network.AddNode(0, types.Position{X: 0, Y: 0}, testRange)
	network.AddNode(1, types.Position{X: 6, Y: 0}, testRange)
	network.AddNode(2, types.Position{X: 12, Y: 0}, testRange)

	env := newTestEnv(t, network, 1)

	for attempt := 0; attempt < 100; attempt++ {
		_, info, err := env.Reset()
		if err != nil {
			t.Fatalf("reset failed: %s", err)
		}
		if info.Source == 1 || info.Destination == 1 {
			continue
		}

		// Endpoints pair: the single allowed step lands on the relay.
		_, reward, done, truncated, info := env.Step(0)
		if done {
			t.Fatalf("expected non-terminal truncation, got done with reason %q", info.Reason)
		}
		if !truncated {
			t.Fatalf("expected truncation at the step budget")
		}
		if info.Reason != ReasonMaxSteps {
			t.Errorf("expected reason %q, got %q", ReasonMaxSteps, info.Reason)
		}
		if reward != -1.0 {
			t.Errorf("expected failure penalty on truncation, got %f", reward)
		}
		return
	}
	t.Fatal("never sampled an endpoint to endpoint episode")
}

func TestEnvTruncationEndsEpisode(t *testing.T) {
	// Same line as the truncation test: once the single step is spent the
	// episode is over and further steps are inert until Reset.
	network := simulation.NewNetwork(100, 100, 1, log.DefaultLogger)
	network.AddNode(0, types.Position{X: 0, Y: 0}, testRange)
	network.AddNode(1, types.Position{X: 6, Y: 0}, testRange)
	network.AddNode(2, types.Position{X: 12, Y: 0}, testRange)

	env := newTestEnv(t, network, 1)

	for attempt := 0; attempt < 100; attempt++ {
		_, info, err := env.Reset()
		if err != nil {
			t.Fatalf("reset failed: %s", err)
		}
		if info.Source == 1 || info.Destination == 1 {
			continue
		}

		env.Step(0)
		if !env.Done() {
			t.Fatalf("truncated episode must report done")
		}
		if !env.Truncated() {
			t.Fatalf("truncation flag not set")
		}
		pathLen := len(env.Path())

		_, reward, done, truncated, again := env.Step(0)
		if done || !truncated {
			t.Errorf("dead episode changed state: done=%v truncated=%v", done, truncated)
		}
		if reward != 0 {
			t.Errorf("dead episode paid reward %f", reward)
		}
		if again.Reason != ReasonMaxSteps {
			t.Errorf("expected reason %q, got %q", ReasonMaxSteps, again.Reason)
		}
		if again.Steps != 1 || len(env.Path()) != pathLen {
			t.Errorf("dead episode advanced: steps=%d path=%v", again.Steps, env.Path())
		}
		return
	}
	t.Fatal("never sampled an endpoint to endpoint episode")
}

func TestEnvPathTracksTraversal(t *testing.T) {
	env := newTestEnv(t, pairNetwork(t), 10)
	_, info, err := env.Reset()
	if err != nil {
		t.Fatalf("reset failed: %s", err)
	}
	env.Step(0)

	path := env.Path()
	if len(path) != 2 {
		t.Fatalf("expected 2 node path, got %v", path)
	}
	if path[0] != info.Source || path[1] != info.Destination {
		t.Errorf("path %v does not match episode %d -> %d", path, info.Source, info.Destination)
	}
}
