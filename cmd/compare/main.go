package compare

import (
	"fmt"

	"github.com/meshnetframework/meshnet/benchmark"
	"github.com/meshnetframework/meshnet/config"
	"github.com/meshnetframework/meshnet/log"
	"github.com/meshnetframework/meshnet/routing"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
)

// CompareCmd returns the command for running the routing comparison
func CompareCmd() *cobra.Command {
	var suitePath string
	var quick bool

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run the routing algorithm comparison battery",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.ParseConfig(config.ConfigPath)
			if err != nil {
				return fmt.Errorf("failed to parse config: %s", err)
			}
			log.Init(conf.LogConfig)

			scenarios, err := loadScenarios(suitePath, quick, conf.Simulation.Seed)
			if err != nil {
				return fmt.Errorf("failed to build scenarios: %s", err)
			}

			algorithms := []routing.Algorithm{
				routing.NewShortestPath(),
				routing.NewReactiveCached(),
			}
			comparator := benchmark.NewComparator(algorithms, log.DefaultLogger)
			comparator.AddScenarios(scenarios)

			report := comparator.Run()

			jsonPath, err := report.Save(conf.OutputDir, "")
			if err != nil {
				return fmt.Errorf("failed to save report: %s", err)
			}
			mdPath, err := report.SaveMarkdown(conf.OutputDir, "")
			if err != nil {
				return fmt.Errorf("failed to save markdown report: %s", err)
			}
			log.With(log.LogParams{
				"json":     jsonPath,
				"markdown": mdPath,
			}).Info("Comparison reports written")

			fmt.Println(report.RenderMarkdown())
			return nil
		},
	}
	cmd.Flags().StringVarP(&suitePath, "suite", "s", "", "YAML suite file declaring the scenarios to run")
	cmd.Flags().BoolVarP(&quick, "quick", "q", false, "Run the reduced quick suite")
	return cmd
}

func loadScenarios(suitePath string, quick bool, seed uint64) ([]*benchmark.Scenario, error) {
	if suitePath != "" {
		return benchmark.LoadSuite(suitePath)
	}
	gen := benchmark.NewGenerator(rand.NewSource(seed))
	if quick {
		return gen.QuickSuite()
	}
	return gen.BenchmarkSuite()
}
