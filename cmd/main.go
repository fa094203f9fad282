package cmd

import (
	"github.com/meshnetframework/meshnet/cmd/compare"
	"github.com/meshnetframework/meshnet/cmd/serve"
	"github.com/meshnetframework/meshnet/cmd/train"
	"github.com/meshnetframework/meshnet/config"
	"github.com/spf13/cobra"
)

// RootCmd returns the root cobra command of the simulator tool
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meshnet",
		Short: "Benchmark routing strategies over disaster-scenario mesh networks",
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.PersistentFlags().StringVarP(&config.ConfigPath, "config", "c", "", "Config file path")
	cmd.AddCommand(compare.CompareCmd())
	cmd.AddCommand(train.TrainCmd())
	cmd.AddCommand(serve.ServeCmd())
	return cmd
}
