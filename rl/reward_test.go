package rl

import (
	"testing"
)

func TestRewardFailureIgnoresEverythingElse(t *testing.T) {
	r := NewRewardCalculator(DefaultRewardWeights())

	for _, hops := range []int{0, 1, 10, 100} {
		got := r.Calculate(StepOutcome{Failed: true, HopCount: hops})
		if got != -1.0 {
			t.Errorf("failure reward must be -1 regardless of hops, got %f at %d hops", got, hops)
		}
	}
}

func TestRewardSuccessHopBonus(t *testing.T) {
	r := NewRewardCalculator(DefaultRewardWeights())

	short := r.Calculate(StepOutcome{Success: true, HopCount: 2})
	long := r.Calculate(StepOutcome{Success: true, HopCount: 10})
	if short <= long {
		t.Errorf("fewer hops must earn more: %f vs %f", short, long)
	}

	// 2 hops leaves 18 bonus steps at 2 each on top of the base 100.
	if short != 136.0 {
		t.Errorf("expected 136 for a 2 hop success, got %f", short)
	}

	// At or beyond the threshold only the base reward remains.
	atThreshold := r.Calculate(StepOutcome{Success: true, HopCount: 20})
	beyond := r.Calculate(StepOutcome{Success: true, HopCount: 45})
	if atThreshold != 100.0 || beyond != 100.0 {
		t.Errorf("expected flat 100 at and beyond the hop threshold, got %f and %f", atThreshold, beyond)
	}
}

func TestRewardSuccessMonotoneInHops(t *testing.T) {
	r := NewRewardCalculator(DefaultRewardWeights())
	prev := r.Calculate(StepOutcome{Success: true, HopCount: 1})
	for hops := 2; hops <= 25; hops++ {
		cur := r.Calculate(StepOutcome{Success: true, HopCount: hops})
		if cur > prev {
			t.Fatalf("reward increased from %d to %d hops: %f -> %f", hops-1, hops, prev, cur)
		}
		prev = cur
	}
}

func TestRewardInTransit(t *testing.T) {
	r := NewRewardCalculator(DefaultRewardWeights())

	// Full battery, perfect link, empty queue:
	// -5 + 0*(-50) + 1*3 + (54/54)*2 + 0*(-10) = 0
	got := r.Calculate(StepOutcome{
		HopCount:       1,
		EnergyLevel:    1.0,
		HasEnergy:      true,
		SignalStrength: 1.0,
		Bandwidth:      54.0,
		HasLink:        true,
	})
	if got != 0.0 {
		t.Errorf("expected 0 for a perfect in-transit step, got %f", got)
	}

	// Drained battery dominates the penalty.
	drained := r.Calculate(StepOutcome{
		HopCount:    1,
		EnergyLevel: 0.0,
		HasEnergy:   true,
	})
	if drained != -55.0 {
		t.Errorf("expected -55 for a drained relay, got %f", drained)
	}
}

func TestRewardUnknownEnergyDefaultsToHalf(t *testing.T) {
	r := NewRewardCalculator(DefaultRewardWeights())

	unknown := r.Calculate(StepOutcome{HopCount: 1})
	half := r.Calculate(StepOutcome{HopCount: 1, EnergyLevel: 0.5, HasEnergy: true})
	if unknown != half {
		t.Errorf("unknown energy must score as half drained: %f vs %f", unknown, half)
	}
}
