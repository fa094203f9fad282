package serve

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/meshnetframework/meshnet/benchmark"
	"github.com/meshnetframework/meshnet/config"
	"github.com/meshnetframework/meshnet/dashboard"
	"github.com/meshnetframework/meshnet/log"
	"github.com/meshnetframework/meshnet/util"
	"github.com/spf13/cobra"
)

// ServeCmd returns the command for serving saved results over HTTP
func ServeCmd() *cobra.Command {
	var reportPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve saved comparison reports on the results dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			termCh := util.Term()

			conf, err := config.ParseConfig(config.ConfigPath)
			if err != nil {
				return fmt.Errorf("failed to parse config: %s", err)
			}
			log.Init(conf.LogConfig)

			srv := dashboard.NewReportServer(conf.ReportServerAddr, log.DefaultLogger)
			if reportPath != "" {
				report, err := loadReport(reportPath)
				if err != nil {
					return fmt.Errorf("failed to load report: %s", err)
				}
				srv.SetReport(report)
			}

			if err := srv.Start(); err != nil {
				return fmt.Errorf("failed to start report server: %s", err)
			}

			<-termCh
			return srv.Stop()
		},
	}
	cmd.Flags().StringVarP(&reportPath, "report", "r", "", "Path of a saved comparison report JSON")
	return cmd
}

func loadReport(path string) (*benchmark.ComparisonReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var report benchmark.ComparisonReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
