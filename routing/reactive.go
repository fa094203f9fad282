package routing

import (
	"sort"
	"time"

	"github.com/meshnetframework/meshnet/types"
)

// DefaultCacheTimeout is the number of timesteps a cached route stays
// usable without rediscovery.
const DefaultCacheTimeout = 100

// maxRouteCandidates bounds how many complete paths discovery collects
// before ranking them.
const maxRouteCandidates = 3

type cacheKey struct {
	source      types.NodeID
	destination types.NodeID
}

type cacheEntry struct {
	route      types.Route
	discovered int
}

// ReactiveCached is an on-demand routing algorithm in the spirit of AODV:
// routes are discovered only when requested, cached per (source,
// destination) pair, and invalidated both by age and by structural
// changes in the topology. The cache is owned by the instance; two
// instances never share state.
type ReactiveCached struct {
	cacheTimeout    int
	cache           map[cacheKey]cacheEntry
	currentTimestep int
	discoveries     int
	stats           *StatsTracker
}

var _ Algorithm = &ReactiveCached{}
var _ CacheClearer = &ReactiveCached{}

// NewReactiveCached creates the algorithm with the default cache timeout.
func NewReactiveCached() *ReactiveCached {
	return NewReactiveCachedWithTimeout(DefaultCacheTimeout)
}

// NewReactiveCachedWithTimeout creates the algorithm with a custom cache
// timeout measured in timesteps.
func NewReactiveCachedWithTimeout(timeout int) *ReactiveCached {
	return &ReactiveCached{
		cacheTimeout: timeout,
		cache:        make(map[cacheKey]cacheEntry),
		stats:        NewStatsTracker(),
	}
}

func (r *ReactiveCached) Name() string {
	return "AODV"
}

// UpdateTimestep advances the logical clock and purges cache entries
// older than the timeout. It runs before any cache lookup in a FindRoute
// call that supplies a timestep.
func (r *ReactiveCached) UpdateTimestep(timestep int) {
	r.currentTimestep = timestep
	for key, entry := range r.cache {
		if r.currentTimestep-entry.discovered > r.cacheTimeout {
			delete(r.cache, key)
		}
	}
}

// FindRoute returns a cached route when one is still valid, otherwise
// performs discovery and caches the result.
func (r *ReactiveCached) FindRoute(g *types.Graph, source, destination types.NodeID, state *types.NetworkState) types.Route {
	start := time.Now()

	if state != nil && state.HasTimestep {
		r.UpdateTimestep(state.Timestep)
	}

	if !g.HasNode(source) || !g.HasNode(destination) {
		r.stats.Record(nil, time.Since(start))
		return nil
	}
	if source == destination {
		route := types.Route{source}
		r.stats.Record(route, time.Since(start))
		return route
	}

	key := cacheKey{source: source, destination: destination}
	if entry, ok := r.cache[key]; ok {
		if r.routeValid(g, entry.route) {
			r.stats.Record(entry.route, time.Since(start))
			return entry.route
		}
		// Structurally broken regardless of age.
		delete(r.cache, key)
	}

	route := r.discover(g, source, destination, state)
	if route != nil {
		r.cache[key] = cacheEntry{route: route, discovered: r.currentTimestep}
	}
	r.stats.Record(route, time.Since(start))
	return route
}

// discover runs a breadth first exploration from source, collecting up to
// maxRouteCandidates complete paths. Neighbor expansion is in ascending
// ID order so discovery is deterministic for a given graph. Candidates
// are ranked by mean link quality, then hop count, then route order.
func (r *ReactiveCached) discover(g *types.Graph, source, destination types.NodeID, state *types.NetworkState) types.Route {
	r.discoveries++

	type searchEntry struct {
		node types.NodeID
		path types.Route
	}
	queue := []searchEntry{{node: source, path: types.Route{source}}}
	visited := map[types.NodeID]bool{source: true}

	type candidate struct {
		route   types.Route
		quality float64
	}
	candidates := make([]candidate, 0, maxRouteCandidates)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.node == destination {
			candidates = append(candidates, candidate{
				route:   cur.path,
				quality: r.routeQuality(cur.path, state),
			})
			if len(candidates) >= maxRouteCandidates {
				break
			}
			continue
		}

		for _, nbr := range g.Neighbors(cur.node) {
			if visited[nbr] {
				continue
			}
			// The destination stays unvisited so multiple complete
			// paths can surface as candidates.
			if nbr != destination {
				visited[nbr] = true
			}
			next := make(types.Route, len(cur.path), len(cur.path)+1)
			copy(next, cur.path)
			queue = append(queue, searchEntry{node: nbr, path: append(next, nbr)})
		}
	}

	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].quality != candidates[j].quality {
			return candidates[i].quality > candidates[j].quality
		}
		if len(candidates[i].route) != len(candidates[j].route) {
			return len(candidates[i].route) < len(candidates[j].route)
		}
		return routeLess(candidates[i].route, candidates[j].route)
	})
	return candidates[0].route
}

// routeQuality is the mean per-edge quality along the route, defaulting
// to 1 per edge when the caller supplied no quality map.
func (r *ReactiveCached) routeQuality(route types.Route, state *types.NetworkState) float64 {
	if len(route) < 2 {
		return 1.0
	}
	total := 0.0
	for i := 0; i < len(route)-1; i++ {
		total += state.Quality(route[i], route[i+1])
	}
	return total / float64(len(route)-1)
}

// routeValid checks that every node and every consecutive edge of a
// cached route still exists in the current graph.
func (r *ReactiveCached) routeValid(g *types.Graph, route types.Route) bool {
	if len(route) == 0 {
		return false
	}
	if len(route) == 1 {
		return g.HasNode(route[0])
	}
	for _, id := range route {
		if !g.HasNode(id) {
			return false
		}
	}
	for i := 0; i < len(route)-1; i++ {
		if !g.HasEdge(route[i], route[i+1]) {
			return false
		}
	}
	return true
}

// ClearCache drops every cached route.
func (r *ReactiveCached) ClearCache() {
	r.cache = make(map[cacheKey]cacheEntry)
}

// Discoveries returns how many times route discovery ran. Tests use it to
// verify cache hits skip discovery.
func (r *ReactiveCached) Discoveries() int {
	return r.discoveries
}

// CacheStats describes the cache for introspection.
type CacheStats struct {
	CachedRoutes    int `json:"cached_routes"`
	CacheTimeout    int `json:"cache_timeout"`
	CurrentTimestep int `json:"current_timestep"`
}

// CacheStats returns the current cache counters.
func (r *ReactiveCached) CacheStats() CacheStats {
	return CacheStats{
		CachedRoutes:    len(r.cache),
		CacheTimeout:    r.cacheTimeout,
		CurrentTimestep: r.currentTimestep,
	}
}

func (r *ReactiveCached) Stats() Stats {
	return r.stats.Snapshot()
}

func (r *ReactiveCached) ResetStats() {
	r.stats.Reset()
}

func routeLess(a, b types.Route) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
