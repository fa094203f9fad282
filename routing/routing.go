package routing

import (
	"time"

	"github.com/meshnetframework/meshnet/types"
)

// Algorithm computes routes over a graph snapshot. Implementations keep
// cumulative performance counters which are updated on every FindRoute
// call regardless of outcome.
type Algorithm interface {
	// Name of the algorithm, used as the key in comparison reports
	Name() string
	// FindRoute returns a route from source to destination or nil when no
	// route exists. Missing nodes are a failed attempt, not an error.
	FindRoute(g *types.Graph, source, destination types.NodeID, state *types.NetworkState) types.Route
	// Stats returns a snapshot of the cumulative counters
	Stats() Stats
	// ResetStats zeroes the cumulative counters
	ResetStats()
}

// CacheClearer is implemented by algorithms that keep route caches which
// must not leak across comparator runs.
type CacheClearer interface {
	ClearCache()
}

// Stats is the cumulative per-algorithm counter snapshot.
type Stats struct {
	TotalRoutes      int     `json:"total_routes_calculated"`
	SuccessfulRoutes int     `json:"successful_routes"`
	FailedRoutes     int     `json:"failed_routes"`
	TotalHops        int     `json:"total_hops"`
	SuccessRate      float64 `json:"success_rate"`
	AvgHops          float64 `json:"avg_hops"`
	// AvgLatency is the mean route computation time in seconds
	AvgLatency float64 `json:"avg_latency"`
}

// StatsTracker accumulates the counters every Algorithm variant shares.
// Variants compose one and report Stats through Snapshot.
type StatsTracker struct {
	totalRoutes      int
	successfulRoutes int
	failedRoutes     int
	totalHops        int
	totalCompute     time.Duration
}

// NewStatsTracker creates a zeroed tracker.
func NewStatsTracker() *StatsTracker {
	return &StatsTracker{}
}

// Record updates the counters after one FindRoute call. A nil route
// counts as a failure.
func (s *StatsTracker) Record(route types.Route, elapsed time.Duration) {
	s.totalRoutes++
	if route != nil {
		s.successfulRoutes++
		s.totalHops += route.Hops()
	} else {
		s.failedRoutes++
	}
	s.totalCompute += elapsed
}

// Reset zeroes all counters.
func (s *StatsTracker) Reset() {
	*s = StatsTracker{}
}

// Snapshot derives the exported counter view.
func (s *StatsTracker) Snapshot() Stats {
	stats := Stats{
		TotalRoutes:      s.totalRoutes,
		SuccessfulRoutes: s.successfulRoutes,
		FailedRoutes:     s.failedRoutes,
		TotalHops:        s.totalHops,
	}
	if s.successfulRoutes > 0 {
		stats.AvgHops = float64(s.totalHops) / float64(s.successfulRoutes)
	}
	if s.totalRoutes > 0 {
		stats.SuccessRate = float64(s.successfulRoutes) / float64(s.totalRoutes)
		stats.AvgLatency = s.totalCompute.Seconds() / float64(s.totalRoutes)
	}
	return stats
}
