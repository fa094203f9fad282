package benchmark

import (
	"fmt"
	"time"

	"github.com/meshnetframework/meshnet/log"
	"github.com/meshnetframework/meshnet/metrics"
	"github.com/meshnetframework/meshnet/routing"
	"github.com/meshnetframework/meshnet/types"
	"github.com/meshnetframework/meshnet/util"
)

// ScenarioResult is one algorithm's outcome over one scenario's routes.
type ScenarioResult struct {
	RoutesFound          int           `json:"routes_found"`
	RoutesFailed         int           `json:"routes_failed"`
	TotalRoutes          int           `json:"total_routes"`
	SuccessRate          float64       `json:"success_rate"`
	AvgRouteLength       float64       `json:"avg_route_length"`
	MinRouteLength       int           `json:"min_route_length"`
	MaxRouteLength       int           `json:"max_route_length"`
	AvgComputationTime   float64       `json:"avg_computation_time"`
	TotalComputationTime float64       `json:"total_computation_time"`
	AlgorithmStats       routing.Stats `json:"algorithm_stats"`
	Panicked             bool          `json:"panicked,omitempty"`
}

// Comparator runs every registered algorithm against every registered
// scenario under identical conditions. Each algorithm gets a fresh copy
// of the scenario graph and zeroed stats, so nothing leaks between runs.
// Iteration follows registration order, keeping reports deterministic.
type Comparator struct {
	algorithms []routing.Algorithm
	scenarios  []*Scenario
	logger     *log.Logger

	collectors map[string]*metrics.Collector
	packetIDs  *util.Counter

	totalRoutesTested int
}

// NewComparator creates a comparator over the given algorithms. A nil
// logger falls back to the default.
func NewComparator(algorithms []routing.Algorithm, logger *log.Logger) *Comparator {
	if logger == nil {
		logger = log.DefaultLogger
	}
	return &Comparator{
		algorithms: algorithms,
		logger:     logger,
		packetIDs:  util.NewCounter(),
	}
}

// AddScenario registers a scenario for the next Run.
func (c *Comparator) AddScenario(s *Scenario) {
	c.scenarios = append(c.scenarios, s)
}

// AddScenarios registers a batch of scenarios in order.
func (c *Comparator) AddScenarios(scenarios []*Scenario) {
	c.scenarios = append(c.scenarios, scenarios...)
}

// TotalRoutesTested returns the number of FindRoute calls issued so far.
func (c *Comparator) TotalRoutesTested() int {
	return c.totalRoutesTested
}

// Run executes the full algorithms by scenarios matrix and returns the
// comparison report.
func (c *Comparator) Run() *ComparisonReport {
	start := time.Now()

	names := make([]string, len(c.algorithms))
	for i, algo := range c.algorithms {
		names[i] = algo.Name()
	}
	c.logger.With(log.LogParams{
		"algorithms": names,
		"scenarios":  len(c.scenarios),
	}).Info("starting routing comparison")

	report := &ComparisonReport{
		Timestamp:       time.Now(),
		Algorithms:      names,
		Scenarios:       len(c.scenarios),
		ScenarioResults: make(map[string]map[string]ScenarioResult),
	}

	c.collectors = make(map[string]*metrics.Collector, len(names))
	for _, name := range names {
		c.collectors[name] = metrics.NewCollector(name)
	}

	for i, scenario := range c.scenarios {
		c.logger.With(log.LogParams{
			"scenario": scenario.Name,
			"index":    i + 1,
			"of":       len(c.scenarios),
			"nodes":    scenario.NumNodes(),
			"edges":    scenario.NumEdges(),
			"routes":   len(scenario.Routes),
		}).Info("running scenario")

		results := make(map[string]ScenarioResult, len(c.algorithms))
		for _, algo := range c.algorithms {
			results[algo.Name()] = c.runAlgorithm(algo, scenario)
		}
		report.ScenarioResults[scenario.Name] = results
	}

	report.TotalComputationTime = time.Since(start).Seconds()
	report.aggregate()

	report.PacketSummaries = make(map[string]metrics.SummaryStats, len(names))
	for _, name := range names {
		coll := c.collectors[name]
		coll.Finalize()
		report.PacketSummaries[name] = coll.SummaryStats()
	}
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			report.HeadToHead = append(report.HeadToHead,
				c.collectors[names[i]].CompareWith(c.collectors[names[j]]))
		}
	}
	return report
}

// runAlgorithm tests one algorithm over one scenario on a frozen graph
// copy. A panic inside FindRoute fails the remaining routes of this run
// instead of aborting the whole comparison.
func (c *Comparator) runAlgorithm(algo routing.Algorithm, scenario *Scenario) (result ScenarioResult) {
	algo.ResetStats()
	if clearer, ok := algo.(routing.CacheClearer); ok {
		clearer.ClearCache()
	}

	frozen := scenario.Graph.Copy()
	result.TotalRoutes = len(scenario.Routes)

	defer func() {
		if r := recover(); r != nil {
			c.logger.With(log.LogParams{
				"algorithm": algo.Name(),
				"scenario":  scenario.Name,
				"panic":     fmt.Sprint(r),
			}).Error("algorithm panicked during scenario run")
			result.Panicked = true
			result.RoutesFailed = result.TotalRoutes - result.RoutesFound
			fillDerived(&result, nil, nil)
			result.AlgorithmStats = algo.Stats()
		}
	}()

	coll := c.collectors[algo.Name()]
	var lengths []int
	var times []time.Duration
	start := time.Now()

	for _, pair := range scenario.Routes {
		packetID := c.packetIDs.Next()
		routeStart := time.Now()
		route := c.findRoute(algo, frozen, pair, scenario.State)
		times = append(times, time.Since(routeStart))
		c.totalRoutesTested++

		coll.RecordPacketSent(packetID, pair.Source, pair.Destination, route, routeStart)
		if route != nil {
			result.RoutesFound++
			lengths = append(lengths, route.Hops())
			for i := 1; i+1 < len(route); i++ {
				coll.RecordPacketForwarded(route[i])
			}
			coll.RecordPacketDelivered(packetID, time.Now())
		} else {
			result.RoutesFailed++
			coll.RecordPacketLost(packetID, metrics.FailureNoRoute)
		}
	}

	result.TotalComputationTime = time.Since(start).Seconds()
	fillDerived(&result, lengths, times)
	result.AlgorithmStats = algo.Stats()

	c.logger.With(log.LogParams{
		"algorithm":    algo.Name(),
		"scenario":     scenario.Name,
		"success_rate": result.SuccessRate,
	}).Debug("algorithm scenario run complete")
	return result
}

func (c *Comparator) findRoute(algo routing.Algorithm, g *types.Graph, pair RoutePair, state *types.NetworkState) types.Route {
	return algo.FindRoute(g, pair.Source, pair.Destination, state)
}

func fillDerived(result *ScenarioResult, lengths []int, times []time.Duration) {
	if result.TotalRoutes > 0 {
		result.SuccessRate = float64(result.RoutesFound) / float64(result.TotalRoutes)
	}
	if len(lengths) > 0 {
		total := 0
		result.MinRouteLength = lengths[0]
		result.MaxRouteLength = lengths[0]
		for _, l := range lengths {
			total += l
			if l < result.MinRouteLength {
				result.MinRouteLength = l
			}
			if l > result.MaxRouteLength {
				result.MaxRouteLength = l
			}
		}
		result.AvgRouteLength = float64(total) / float64(len(lengths))
	}
	if len(times) > 0 {
		var total time.Duration
		for _, t := range times {
			total += t
		}
		result.AvgComputationTime = total.Seconds() / float64(len(times))
	}
}
