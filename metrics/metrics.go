package metrics

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/meshnetframework/meshnet/types"
	"gonum.org/v1/gonum/stat"
)

// FailureReason classifies why a packet was lost.
type FailureReason string

const (
	FailureInvalidRoute     FailureReason = "invalid_route"
	FailureLinkFailure      FailureReason = "link_failure"
	FailureNodeFailure      FailureReason = "node_failure"
	FailureNoRoute          FailureReason = "no_route"
	FailureNoValidNeighbors FailureReason = "no_valid_neighbors"
	FailureMaxHopsExceeded  FailureReason = "max_hops_exceeded"
	FailureUnknown          FailureReason = "unknown"
)

// PacketMetrics tracks one packet transmission from send to outcome.
// Exactly one of delivered or lost is recorded per packet; callers own
// that contract.
type PacketMetrics struct {
	PacketID      int           `json:"packet_id"`
	Source        types.NodeID  `json:"source"`
	Destination   types.NodeID  `json:"destination"`
	Route         types.Route   `json:"route"`
	SentTime      time.Time     `json:"sent_time"`
	DeliveredTime time.Time     `json:"delivered_time"`
	HopCount      int           `json:"hops"`
	WasDelivered  bool          `json:"was_delivered"`
	FailureReason FailureReason `json:"failure_reason,omitempty"`
	Algorithm     string        `json:"routing_algorithm"`
}

// Latency returns the end to end delay in seconds, +Inf if undelivered.
func (p *PacketMetrics) Latency() float64 {
	if !p.WasDelivered || p.DeliveredTime.IsZero() {
		return math.Inf(1)
	}
	return p.DeliveredTime.Sub(p.SentTime).Seconds()
}

// IsSuccessful reports whether the packet completed delivery.
func (p *PacketMetrics) IsSuccessful() bool {
	return p.WasDelivered && !p.DeliveredTime.IsZero()
}

// NodeStats counts per-node packet activity.
type NodeStats struct {
	PacketsSent      int `json:"packets_sent"`
	PacketsReceived  int `json:"packets_received"`
	PacketsForwarded int `json:"packets_forwarded"`
}

// Distribution summarizes a sample of values.
type Distribution struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Stdev  float64 `json:"stdev"`
}

// LinkUtilization summarizes how traffic spread over links.
type LinkUtilization struct {
	TotalLinksUsed int     `json:"total_links_used"`
	MeanUsage      float64 `json:"mean_usage"`
	MaxUsage       int     `json:"max_usage"`
	MinUsage       int     `json:"min_usage"`
}

// SummaryStats is the per-algorithm rollup, derived on demand from the
// raw packet log.
type SummaryStats struct {
	Algorithm         string                `json:"algorithm"`
	NoData            bool                  `json:"no_data,omitempty"`
	TotalPackets      int                   `json:"total_packets"`
	PacketsDelivered  int                   `json:"packets_delivered"`
	PacketsLost       int                   `json:"packets_lost"`
	DeliveryRate      float64               `json:"delivery_rate"`
	LossRate          float64               `json:"loss_rate"`
	Latency           Distribution          `json:"latency"`
	Hops              Distribution          `json:"hops"`
	NetworkEfficiency float64               `json:"network_efficiency"`
	Throughput        float64               `json:"throughput"`
	TotalDuration     float64               `json:"total_duration"`
	FailureReasons    map[FailureReason]int `json:"failure_reasons"`
	LinkUtilization   LinkUtilization       `json:"link_utilization"`
}

// Collector accumulates packet-level metrics for one algorithm's run.
// The packet log is append only; summaries are pure derivations over it.
type Collector struct {
	lock sync.Mutex

	algorithm string
	packets   []*PacketMetrics
	byID      map[int]*PacketMetrics

	startTime time.Time
	endTime   time.Time

	totalSent      int
	totalDelivered int
	totalLost      int

	nodeStats      map[types.NodeID]*NodeStats
	linkUsage      map[types.EdgeKey]int
	failureReasons map[FailureReason]int
}

// NewCollector creates a collector for the named algorithm and opens the
// collection window.
func NewCollector(algorithm string) *Collector {
	return &Collector{
		algorithm:      algorithm,
		byID:           make(map[int]*PacketMetrics),
		startTime:      time.Now(),
		nodeStats:      make(map[types.NodeID]*NodeStats),
		linkUsage:      make(map[types.EdgeKey]int),
		failureReasons: make(map[FailureReason]int),
	}
}

// Algorithm returns the name this collector was created for.
func (c *Collector) Algorithm() string {
	return c.algorithm
}

// RecordPacketSent logs a packet entering the network with its planned
// route and charges each route link's usage counter.
func (c *Collector) RecordPacketSent(packetID int, source, destination types.NodeID, route types.Route, sentTime time.Time) *PacketMetrics {
	c.lock.Lock()
	defer c.lock.Unlock()

	hops := 0
	if len(route) > 0 {
		hops = len(route) - 1
	}
	m := &PacketMetrics{
		PacketID:    packetID,
		Source:      source,
		Destination: destination,
		Route:       route,
		SentTime:    sentTime,
		HopCount:    hops,
		Algorithm:   c.algorithm,
	}
	c.packets = append(c.packets, m)
	c.byID[packetID] = m
	c.totalSent++
	c.node(source).PacketsSent++

	for i := 0; i+1 < len(route); i++ {
		c.linkUsage[types.NewEdgeKey(route[i], route[i+1])]++
	}
	return m
}

// RecordPacketDelivered marks the packet as delivered at the given time.
func (c *Collector) RecordPacketDelivered(packetID int, deliveredTime time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()

	m, ok := c.byID[packetID]
	if !ok {
		return
	}
	m.WasDelivered = true
	m.DeliveredTime = deliveredTime
	c.totalDelivered++
	c.node(m.Destination).PacketsReceived++
}

// RecordPacketLost marks the packet as lost with a failure reason.
func (c *Collector) RecordPacketLost(packetID int, reason FailureReason) {
	c.lock.Lock()
	defer c.lock.Unlock()

	m, ok := c.byID[packetID]
	if !ok {
		return
	}
	if reason == "" {
		reason = FailureUnknown
	}
	m.WasDelivered = false
	m.FailureReason = reason
	c.totalLost++
	c.failureReasons[reason]++
}

// RecordPacketForwarded charges an intermediate node's forward counter.
func (c *Collector) RecordPacketForwarded(nodeID types.NodeID) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.node(nodeID).PacketsForwarded++
}

// Finalize closes the collection window. Throughput is computed over the
// window between construction (or Reset) and this call.
func (c *Collector) Finalize() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.endTime = time.Now()
}

// Reset drops all collected data and reopens the collection window.
func (c *Collector) Reset() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.packets = nil
	c.byID = make(map[int]*PacketMetrics)
	c.totalSent = 0
	c.totalDelivered = 0
	c.totalLost = 0
	c.nodeStats = make(map[types.NodeID]*NodeStats)
	c.linkUsage = make(map[types.EdgeKey]int)
	c.failureReasons = make(map[FailureReason]int)
	c.startTime = time.Now()
	c.endTime = time.Time{}
}

// PerNodeStats returns a copy of the per-node counters.
func (c *Collector) PerNodeStats() map[types.NodeID]NodeStats {
	c.lock.Lock()
	defer c.lock.Unlock()

	out := make(map[types.NodeID]NodeStats, len(c.nodeStats))
	for id, s := range c.nodeStats {
		out[id] = *s
	}
	return out
}

// LinkUsage returns a copy of the per-link usage counters.
func (c *Collector) LinkUsage() map[types.EdgeKey]int {
	c.lock.Lock()
	defer c.lock.Unlock()

	out := make(map[types.EdgeKey]int, len(c.linkUsage))
	for k, v := range c.linkUsage {
		out[k] = v
	}
	return out
}

// SummaryStats derives the aggregate rollup from the raw packet log. It
// has no side effects and is safe to call repeatedly.
func (c *Collector) SummaryStats() SummaryStats {
	c.lock.Lock()
	defer c.lock.Unlock()

	if len(c.packets) == 0 {
		return SummaryStats{Algorithm: c.algorithm, NoData: true}
	}

	var latencies, hops []float64
	delivered := 0
	for _, m := range c.packets {
		if !m.IsSuccessful() {
			continue
		}
		delivered++
		hops = append(hops, float64(m.HopCount))
		if l := m.Latency(); !math.IsInf(l, 1) {
			latencies = append(latencies, l)
		}
	}

	stats := SummaryStats{
		Algorithm:        c.algorithm,
		TotalPackets:     len(c.packets),
		PacketsDelivered: delivered,
		PacketsLost:      len(c.packets) - delivered,
		DeliveryRate:     float64(delivered) / float64(len(c.packets)),
		LossRate:         float64(len(c.packets)-delivered) / float64(len(c.packets)),
		Latency:          describe(latencies),
		Hops:             describe(hops),
		FailureReasons:   copyReasons(c.failureReasons),
	}

	totalHops := 0.0
	for _, h := range hops {
		totalHops += h
	}
	if totalHops > 0 {
		stats.NetworkEfficiency = float64(delivered) / totalHops
	}

	if !c.endTime.IsZero() {
		duration := c.endTime.Sub(c.startTime).Seconds()
		stats.TotalDuration = duration
		if duration > 0 {
			stats.Throughput = float64(delivered) / duration
		}
	}

	if len(c.linkUsage) > 0 {
		usage := make([]float64, 0, len(c.linkUsage))
		minUse, maxUse := math.MaxInt, 0
		for _, v := range c.linkUsage {
			usage = append(usage, float64(v))
			if v < minUse {
				minUse = v
			}
			if v > maxUse {
				maxUse = v
			}
		}
		stats.LinkUtilization = LinkUtilization{
			TotalLinksUsed: len(c.linkUsage),
			MeanUsage:      stat.Mean(usage, nil),
			MaxUsage:       maxUse,
			MinUsage:       minUse,
		}
	}
	return stats
}

// Comparison is the head to head result of two collectors. Diffs are
// this collector minus the other; winners respect each metric's better
// direction.
type Comparison struct {
	Algorithms       [2]string         `json:"algorithms"`
	DeliveryRateDiff float64           `json:"delivery_rate_diff"`
	LatencyDiff      float64           `json:"latency_diff"`
	HopsDiff         float64           `json:"hops_diff"`
	EfficiencyDiff   float64           `json:"efficiency_diff"`
	ThroughputDiff   float64           `json:"throughput_diff"`
	Winner           map[string]string `json:"winner"`
}

// CompareWith compares this collector's summary against another's.
func (c *Collector) CompareWith(other *Collector) Comparison {
	self := c.SummaryStats()
	that := other.SummaryStats()

	cmp := Comparison{
		Algorithms:       [2]string{c.algorithm, other.algorithm},
		DeliveryRateDiff: self.DeliveryRate - that.DeliveryRate,
		LatencyDiff:      self.Latency.Mean - that.Latency.Mean,
		HopsDiff:         self.Hops.Mean - that.Hops.Mean,
		EfficiencyDiff:   self.NetworkEfficiency - that.NetworkEfficiency,
		ThroughputDiff:   self.Throughput - that.Throughput,
		Winner:           make(map[string]string),
	}

	pickHigher := func(diff float64) string {
		if diff > 0 {
			return c.algorithm
		}
		return other.algorithm
	}
	pickLower := func(diff float64) string {
		if diff < 0 {
			return c.algorithm
		}
		return other.algorithm
	}
	cmp.Winner["delivery_rate"] = pickHigher(cmp.DeliveryRateDiff)
	cmp.Winner["latency"] = pickLower(cmp.LatencyDiff)
	cmp.Winner["hops"] = pickLower(cmp.HopsDiff)
	cmp.Winner["efficiency"] = pickHigher(cmp.EfficiencyDiff)
	cmp.Winner["throughput"] = pickHigher(cmp.ThroughputDiff)
	return cmp
}

func (c *Collector) node(id types.NodeID) *NodeStats {
	s, ok := c.nodeStats[id]
	if !ok {
		s = &NodeStats{}
		c.nodeStats[id] = s
	}
	return s
}

func describe(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	d := Distribution{
		Mean:   stat.Mean(sorted, nil),
		Median: median(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		d.Stdev = stat.StdDev(sorted, nil)
	}
	return d
}

// median expects sorted input.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func copyReasons(m map[FailureReason]int) map[FailureReason]int {
	out := make(map[FailureReason]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
