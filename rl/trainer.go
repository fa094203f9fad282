package rl

import (
	"github.com/meshnetframework/meshnet/log"
	"gonum.org/v1/gonum/stat"
)

// EpisodeResult summarizes one training episode.
type EpisodeResult struct {
	Episode     int     `json:"episode"`
	TotalReward float64 `json:"total_reward"`
	Steps       int     `json:"steps"`
	Delivered   bool    `json:"delivered"`
	Reason      string  `json:"reason"`
	Epsilon     float64 `json:"epsilon"`
}

// TrainingResult aggregates a full training run.
type TrainingResult struct {
	Episodes     []EpisodeResult `json:"episodes"`
	DeliveryRate float64         `json:"delivery_rate"`
	MeanReward   float64         `json:"mean_reward"`
	MeanSteps    float64         `json:"mean_steps"`
	StatesSeen   int             `json:"states_seen"`
	FinalEpsilon float64         `json:"final_epsilon"`
}

// Trainer runs episodic Q-learning against the environment.
type Trainer struct {
	env    *Env
	agent  *QAgent
	logger *log.Logger
}

// NewTrainer creates a trainer. A nil logger falls back to the default.
func NewTrainer(env *Env, agent *QAgent, logger *log.Logger) *Trainer {
	if logger == nil {
		logger = log.DefaultLogger
	}
	return &Trainer{
		env:    env,
		agent:  agent,
		logger: logger,
	}
}

// Train runs numEpisodes episodes, learning online from every transition
// and decaying exploration after each episode.
func (t *Trainer) Train(numEpisodes int) (TrainingResult, error) {
	results := make([]EpisodeResult, 0, numEpisodes)

	for episode := 0; episode < numEpisodes; episode++ {
		result, err := t.runEpisode(episode)
		if err != nil {
			return TrainingResult{}, err
		}
		t.agent.DecayEpsilon()
		results = append(results, result)

		if (episode+1)%10 == 0 {
			t.logger.With(log.LogParams{
				"episode":   episode + 1,
				"reward":    result.TotalReward,
				"steps":     result.Steps,
				"delivered": result.Delivered,
				"epsilon":   t.agent.Epsilon(),
				"states":    t.agent.ValueTable().StateCount(),
			}).Info("training progress")
		}
	}

	return t.summarize(results), nil
}

func (t *Trainer) runEpisode(episode int) (EpisodeResult, error) {
	state, _, err := t.env.Reset()
	if err != nil {
		return EpisodeResult{}, err
	}

	var totalReward float64
	var lastInfo StepInfo
	delivered := false

	for {
		action := t.agent.Act(state, t.env.ActionCount())
		nextState, reward, done, truncated, info := t.env.Step(action)

		t.agent.Observe(Transition{
			State:     state,
			Action:    action,
			Reward:    reward,
			NextState: nextState,
			Done:      done,
		})

		totalReward += reward
		state = nextState
		lastInfo = info

		if done || truncated {
			delivered = info.Reason == ReasonDelivered
			break
		}
	}

	return EpisodeResult{
		Episode:     episode,
		TotalReward: totalReward,
		Steps:       lastInfo.Steps,
		Delivered:   delivered,
		Reason:      lastInfo.Reason,
		Epsilon:     t.agent.Epsilon(),
	}, nil
}

func (t *Trainer) summarize(results []EpisodeResult) TrainingResult {
	rewards := make([]float64, len(results))
	steps := make([]float64, len(results))
	deliveries := 0
	for i, r := range results {
		rewards[i] = r.TotalReward
		steps[i] = float64(r.Steps)
		if r.Delivered {
			deliveries++
		}
	}

	summary := TrainingResult{
		Episodes:     results,
		StatesSeen:   t.agent.ValueTable().StateCount(),
		FinalEpsilon: t.agent.Epsilon(),
	}
	if len(results) > 0 {
		summary.DeliveryRate = float64(deliveries) / float64(len(results))
		summary.MeanReward = stat.Mean(rewards, nil)
		summary.MeanSteps = stat.Mean(steps, nil)
	}
	return summary
}
