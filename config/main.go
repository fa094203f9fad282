package config

import (
	"encoding/json"
	"fmt"
	"os"
)

var (
	// ConfigPath is the variable which stores the config path command line parameter
	ConfigPath string
)

// Config stores the config for the tool
type Config struct {
	// Simulation parameters for the mesh network
	Simulation SimulationConfig `json:"simulation"`
	// RL hyperparameters for the learning agent and environment
	RL RLConfig `json:"rl"`
	// ReportServerAddr address of the results dashboard
	ReportServerAddr string `json:"report_server_addr"`
	// OutputDir directory where comparison reports are written
	OutputDir string `json:"output_dir"`
	// LogConfig configuration for logging
	LogConfig LogConfig `json:"log"`
}

// SimulationConfig stores the parameters of the simulated mesh network
type SimulationConfig struct {
	// NumNodes number of nodes placed in the area
	NumNodes int `json:"num_nodes"`
	// CommunicationRange maximum link distance in meters
	CommunicationRange float64 `json:"communication_range"`
	// AreaWidth width of the simulation area in meters
	AreaWidth float64 `json:"area_width"`
	// AreaHeight height of the simulation area in meters
	AreaHeight float64 `json:"area_height"`
	// FailureRate per-step probability that a node fails
	FailureRate float64 `json:"failure_rate"`
	// Seed for all injected random sources
	Seed uint64 `json:"seed"`
}

// RLConfig stores the hyperparameters of the Q-learning agent
type RLConfig struct {
	// MaxNeighbors bounds the per-hop action space
	MaxNeighbors int `json:"max_neighbors"`
	// MaxSteps episode step budget before truncation
	MaxSteps int `json:"max_steps"`
	// Episodes number of training episodes
	Episodes int `json:"episodes"`
	// Alpha learning rate
	Alpha float64 `json:"alpha"`
	// Gamma discount factor
	Gamma float64 `json:"gamma"`
	// Epsilon initial exploration rate
	Epsilon float64 `json:"epsilon"`
	// EpsilonMin lower bound of the exploration rate
	EpsilonMin float64 `json:"epsilon_min"`
	// EpsilonDecay multiplicative decay applied per episode
	EpsilonDecay float64 `json:"epsilon_decay"`
}

// LogConfig stores the config for logging purpose
type LogConfig struct {
	// Path of the log file
	Path string `json:"path"`
	// Format to log. Only `json` is currently supported
	Format string `json:"format"`
	// Level log level, one of panic|fatal|error|warn|warning|info|debug|trace
	Level string `json:"level"`
}

// DefaultConfig returns the config used when no file overrides it
func DefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			NumNodes:           20,
			CommunicationRange: 25.0,
			AreaWidth:          100.0,
			AreaHeight:         100.0,
			FailureRate:        0.02,
			Seed:               42,
		},
		RL: RLConfig{
			MaxNeighbors: 5,
			MaxSteps:     50,
			Episodes:     100,
			Alpha:        0.1,
			Gamma:        0.99,
			Epsilon:      1.0,
			EpsilonMin:   0.01,
			EpsilonDecay: 0.995,
		},
		ReportServerAddr: "0.0.0.0:7074",
		OutputDir:        "results",
		LogConfig: LogConfig{
			Path:   "",
			Format: "json",
			Level:  "info",
		},
	}
}

// ParseConfig parses config from the specified file, falling back to
// defaults for missing fields
func ParseConfig(path string) (*Config, error) {
	conf := DefaultConfig()
	if path == "" {
		return conf, nil
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %s", err)
	}
	if err := json.Unmarshal(bytes, conf); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %s", err)
	}
	return conf, nil
}
