package train

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meshnetframework/meshnet/config"
	"github.com/meshnetframework/meshnet/log"
	"github.com/meshnetframework/meshnet/rl"
	"github.com/meshnetframework/meshnet/simulation"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
)

// TrainCmd returns the command for training the routing agent
func TrainCmd() *cobra.Command {
	var episodes int

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the Q-learning routing agent on a simulated network",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.ParseConfig(config.ConfigPath)
			if err != nil {
				return fmt.Errorf("failed to parse config: %s", err)
			}
			log.Init(conf.LogConfig)

			sim := conf.Simulation
			network := simulation.NewNetwork(sim.AreaWidth, sim.AreaHeight, sim.Seed, log.DefaultLogger)
			network.Create(sim.NumNodes, sim.CommunicationRange)

			adapter := rl.NewAdapter(network, sim.CommunicationRange)
			env := rl.NewEnv(adapter, rl.EnvConfig{
				MaxNeighbors: conf.RL.MaxNeighbors,
				MaxSteps:     conf.RL.MaxSteps,
				Weights:      rl.DefaultRewardWeights(),
			}, rand.NewSource(sim.Seed))

			agent, err := rl.NewQAgent(rl.QAgentConfig{
				Alpha:        conf.RL.Alpha,
				Gamma:        conf.RL.Gamma,
				Epsilon:      conf.RL.Epsilon,
				EpsilonMin:   conf.RL.EpsilonMin,
				EpsilonDecay: conf.RL.EpsilonDecay,
			}, rand.NewSource(sim.Seed+1))
			if err != nil {
				return fmt.Errorf("failed to create agent: %s", err)
			}

			if episodes <= 0 {
				episodes = conf.RL.Episodes
			}
			trainer := rl.NewTrainer(env, agent, log.DefaultLogger)
			result, err := trainer.Train(episodes)
			if err != nil {
				return fmt.Errorf("training failed: %s", err)
			}

			log.With(log.LogParams{
				"episodes":      episodes,
				"delivery_rate": result.DeliveryRate,
				"mean_reward":   result.MeanReward,
				"states_seen":   result.StatesSeen,
				"final_epsilon": result.FinalEpsilon,
			}).Info("Training complete")

			path, err := saveResult(conf.OutputDir, &result)
			if err != nil {
				return fmt.Errorf("failed to save training result: %s", err)
			}
			fmt.Printf("Training result written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().IntVarP(&episodes, "episodes", "e", 0, "Number of training episodes, overrides config")
	return cmd
}

func saveResult(dir string, result *rl.TrainingResult) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "training_result.json")
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
