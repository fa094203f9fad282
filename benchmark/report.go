package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/meshnetframework/meshnet/metrics"
)

// Metric names a comparable dimension of the overall comparison.
type Metric string

const (
	// MetricSuccessRate is higher-is-better.
	MetricSuccessRate Metric = "success_rate"
	// MetricRouteLength is lower-is-better.
	MetricRouteLength Metric = "avg_route_length"
	// MetricComputationTime is lower-is-better.
	MetricComputationTime Metric = "computation_time"
)

// OverallStats aggregates one algorithm's results across all scenarios.
type OverallStats struct {
	TotalRoutesTested    int     `json:"total_routes_tested"`
	TotalRoutesFound     int     `json:"total_routes_found"`
	OverallSuccessRate   float64 `json:"overall_success_rate"`
	AvgRouteLength       float64 `json:"avg_route_length"`
	TotalComputationTime float64 `json:"total_computation_time"`
}

// ComparisonReport is the complete output of one comparator run.
type ComparisonReport struct {
	Timestamp            time.Time                            `json:"timestamp"`
	Algorithms           []string                             `json:"algorithms"`
	Scenarios            int                                  `json:"scenarios"`
	TotalComputationTime float64                              `json:"total_computation_time"`
	ScenarioResults      map[string]map[string]ScenarioResult `json:"scenario_results"`
	OverallComparison    map[string]OverallStats              `json:"overall_comparison"`
	// PacketSummaries is the per-algorithm packet-level rollup across
	// every scenario, one collector per algorithm.
	PacketSummaries map[string]metrics.SummaryStats `json:"packet_summaries,omitempty"`
	// HeadToHead holds the pairwise collector comparisons in
	// registration order.
	HeadToHead []metrics.Comparison `json:"head_to_head,omitempty"`
}

// aggregate recomputes the cross-scenario rollup per algorithm.
func (r *ComparisonReport) aggregate() {
	r.OverallComparison = make(map[string]OverallStats, len(r.Algorithms))
	for _, name := range r.Algorithms {
		var overall OverallStats
		var totalHops float64
		for _, results := range r.ScenarioResults {
			result, ok := results[name]
			if !ok {
				continue
			}
			overall.TotalRoutesTested += result.TotalRoutes
			overall.TotalRoutesFound += result.RoutesFound
			totalHops += result.AvgRouteLength * float64(result.RoutesFound)
			overall.TotalComputationTime += result.TotalComputationTime
		}
		if overall.TotalRoutesTested > 0 {
			overall.OverallSuccessRate = float64(overall.TotalRoutesFound) / float64(overall.TotalRoutesTested)
		}
		if overall.TotalRoutesFound > 0 {
			overall.AvgRouteLength = totalHops / float64(overall.TotalRoutesFound)
		}
		r.OverallComparison[name] = overall
	}
}

// Winner returns the best algorithm for the metric and its value. Ties
// resolve to the first algorithm in registration order.
func (r *ComparisonReport) Winner(metric Metric) (string, float64, error) {
	var best string
	var bestValue float64
	found := false

	for _, name := range r.Algorithms {
		stats, ok := r.OverallComparison[name]
		if !ok {
			continue
		}
		var value float64
		var better bool
		switch metric {
		case MetricSuccessRate:
			value = stats.OverallSuccessRate
			better = value > bestValue
		case MetricRouteLength:
			value = stats.AvgRouteLength
			better = value < bestValue
		case MetricComputationTime:
			value = stats.TotalComputationTime
			better = value < bestValue
		default:
			return "", 0, fmt.Errorf("unknown comparison metric %q", metric)
		}
		if !found || better {
			best, bestValue = name, value
			found = true
		}
	}
	if !found {
		return "", 0, fmt.Errorf("no results to compare")
	}
	return best, bestValue, nil
}

// Save writes the report as indented JSON under dir. An empty filename
// gets a timestamped default. The written path is returned.
func (r *ComparisonReport) Save(dir, filename string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if filename == "" {
		filename = fmt.Sprintf("routing_comparison_%s.json", r.Timestamp.Format("20060102_150405"))
	}
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// RenderMarkdown formats the report as a human readable summary.
func (r *ComparisonReport) RenderMarkdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Routing Algorithm Comparison\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", r.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "Algorithms: %s\n\n", strings.Join(r.Algorithms, ", "))
	fmt.Fprintf(&b, "Scenarios: %d, total computation time: %.4fs\n\n", r.Scenarios, r.TotalComputationTime)

	b.WriteString("## Overall Results\n\n")
	b.WriteString("| Algorithm | Success Rate | Avg Hops | Total Time |\n")
	b.WriteString("|-----------|--------------|----------|------------|\n")
	for _, name := range r.Algorithms {
		stats := r.OverallComparison[name]
		fmt.Fprintf(&b, "| %s | %.2f%% | %.2f | %.4fs |\n",
			name, stats.OverallSuccessRate*100, stats.AvgRouteLength, stats.TotalComputationTime)
	}
	b.WriteString("\n## Winners by Metric\n\n")
	for _, metric := range []Metric{MetricSuccessRate, MetricRouteLength, MetricComputationTime} {
		winner, value, err := r.Winner(metric)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "- %s: **%s** (%.4f)\n", metric, winner, value)
	}

	b.WriteString("\n## Per-Scenario Results\n")
	scenarioNames := make([]string, 0, len(r.ScenarioResults))
	for name := range r.ScenarioResults {
		scenarioNames = append(scenarioNames, name)
	}
	sort.Strings(scenarioNames)

	for _, scenarioName := range scenarioNames {
		fmt.Fprintf(&b, "\n### %s\n\n", scenarioName)
		b.WriteString("| Algorithm | Found | Failed | Success Rate | Avg Hops | Avg Time |\n")
		b.WriteString("|-----------|-------|--------|--------------|----------|----------|\n")
		for _, algoName := range r.Algorithms {
			result, ok := r.ScenarioResults[scenarioName][algoName]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "| %s | %d | %d | %.2f%% | %.2f | %.6fs |\n",
				algoName, result.RoutesFound, result.RoutesFailed,
				result.SuccessRate*100, result.AvgRouteLength, result.AvgComputationTime)
		}
	}
	return b.String()
}

// SaveMarkdown writes the rendered summary next to the JSON report.
func (r *ComparisonReport) SaveMarkdown(dir, filename string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	if filename == "" {
		filename = fmt.Sprintf("routing_comparison_%s.md", r.Timestamp.Format("20060102_150405"))
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(r.RenderMarkdown()), 0o644); err != nil {
		return "", fmt.Errorf("writing markdown report: %w", err)
	}
	return path, nil
}
