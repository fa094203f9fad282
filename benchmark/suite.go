package benchmark

import (
	"fmt"
	"os"

	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"
)

// SuiteFile is the on-disk YAML layout of a scenario battery.
type SuiteFile struct {
	Seed      uint64         `yaml:"seed"`
	Scenarios []ScenarioSpec `yaml:"scenarios"`
}

// ParseSuiteFile reads and validates a suite declaration.
func ParseSuiteFile(path string) (*SuiteFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite file: %w", err)
	}
	var suite SuiteFile
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("parsing suite file: %w", err)
	}
	if len(suite.Scenarios) == 0 {
		return nil, fmt.Errorf("suite file %s declares no scenarios", path)
	}
	for i, spec := range suite.Scenarios {
		if spec.Name == "" {
			return nil, fmt.Errorf("scenario %d has no name", i)
		}
		if _, ok := topologyConfigs[spec.Topology]; !ok {
			return nil, fmt.Errorf("scenario %q: unknown topology class %q", spec.Name, spec.Topology)
		}
		if spec.NumRoutes <= 0 {
			return nil, fmt.Errorf("scenario %q: num_routes must be positive", spec.Name)
		}
	}
	return &suite, nil
}

// LoadSuite builds the scenarios declared in a YAML suite file using the
// file's seed.
func LoadSuite(path string) ([]*Scenario, error) {
	suite, err := ParseSuiteFile(path)
	if err != nil {
		return nil, err
	}
	seed := suite.Seed
	if seed == 0 {
		seed = 42
	}
	gen := NewGenerator(rand.NewSource(seed))
	return gen.buildAll(suite.Scenarios)
}
