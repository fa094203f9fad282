package rl

// RewardWeights names every factor of the per-step reward. No weight is
// hardcoded at a call site.
type RewardWeights struct {
	Success         float64 `json:"success"`
	Failure         float64 `json:"failure"`
	StepPenalty     float64 `json:"step_penalty"`
	EnergyPenalty   float64 `json:"energy_penalty"`
	SignalBonus     float64 `json:"signal_bonus"`
	BandwidthBonus  float64 `json:"bandwidth_bonus"`
	QueuePenalty    float64 `json:"queue_penalty"`
	HopBonusPerStep float64 `json:"hop_bonus_per_step"`
	// HopBonusThreshold is the hop count at which the success bonus
	// reaches zero.
	HopBonusThreshold int `json:"hop_bonus_threshold"`
}

// DefaultRewardWeights returns the weights used in training.
func DefaultRewardWeights() RewardWeights {
	return RewardWeights{
		Success:           100.0,
		Failure:           -1.0,
		StepPenalty:       -5.0,
		EnergyPenalty:     -50.0,
		SignalBonus:       3.0,
		BandwidthBonus:    2.0,
		QueuePenalty:      -10.0,
		HopBonusPerStep:   2.0,
		HopBonusThreshold: 20,
	}
}

// StepOutcome carries everything a single decision step's reward depends
// on. HasEnergy and HasLink flag which optional factors were observed.
type StepOutcome struct {
	Success  bool
	Failed   bool
	HopCount int

	EnergyLevel float64
	HasEnergy   bool

	SignalStrength float64
	Bandwidth      float64
	QueueOccupancy float64
	HasLink        bool
}

// RewardCalculator scores one decision step.
type RewardCalculator struct {
	weights RewardWeights
}

// NewRewardCalculator creates a calculator with the given weights.
func NewRewardCalculator(weights RewardWeights) *RewardCalculator {
	return &RewardCalculator{weights: weights}
}

// Calculate evaluates the three mutually exclusive cases in priority
// order: failure, success, in transit.
func (r *RewardCalculator) Calculate(o StepOutcome) float64 {
	if o.Failed {
		return r.weights.Failure
	}

	if o.Success {
		reward := r.weights.Success
		remaining := r.weights.HopBonusThreshold - o.HopCount
		if remaining > 0 {
			reward += float64(remaining) * r.weights.HopBonusPerStep
		}
		return reward
	}

	reward := r.weights.StepPenalty

	// Unknown energy is scored as a half-drained battery.
	energy := 0.5
	if o.HasEnergy {
		energy = o.EnergyLevel
	}
	reward += (1.0 - energy) * r.weights.EnergyPenalty

	if o.HasLink {
		reward += o.SignalStrength * r.weights.SignalBonus
		reward += (o.Bandwidth / MaxBandwidthMbps) * r.weights.BandwidthBonus
		reward += o.QueueOccupancy * r.weights.QueuePenalty
	}
	return reward
}
