package simulation

import (
	"time"

	"github.com/meshnetframework/meshnet/log"
	"github.com/meshnetframework/meshnet/metrics"
	"github.com/meshnetframework/meshnet/types"
	"github.com/meshnetframework/meshnet/util"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// MaxPacketHops bounds the baseline forwarding loop
	MaxPacketHops = 10
	// RepairChance probability that a failed node comes back in one step
	RepairChance = 0.5
	// RandomForwardProbability of the baseline forwarder picking a random
	// neighbor instead of the geographically closest one
	RandomForwardProbability = 0.7
)

// Packet is one conceptual payload moving through the mesh.
type Packet struct {
	ID          int
	Source      types.NodeID
	Destination types.NodeID
	HopCount    int
	Path        types.Route
}

// NewPacket creates a packet positioned at its source.
func NewPacket(id int, source, destination types.NodeID) *Packet {
	return &Packet{
		ID:          id,
		Source:      source,
		Destination: destination,
		Path:        types.Route{source},
	}
}

// AddHop moves the packet one node further.
func (p *Packet) AddHop(id types.NodeID) {
	p.HopCount++
	p.Path = append(p.Path, id)
}

// Current returns the node the packet sits at.
func (p *Packet) Current() types.NodeID {
	return p.Path[len(p.Path)-1]
}

// Network owns the nodes and the live topology graph, and drives the
// stochastic failure/repair process. All mutation is single threaded.
type Network struct {
	Width  float64
	Height float64
	Nodes  map[types.NodeID]*Node
	Graph  *types.Graph

	SimulationTime int

	src       rand.Source
	rng       *rand.Rand
	gen       *TopologyGenerator
	packet    *util.Counter
	collector *metrics.Collector
	logger    *log.Logger

	DeliveredPackets int
	LostPackets      int
}

// NewNetwork creates an empty network over the given area, seeded for
// reproducible failure injection and topology generation.
func NewNetwork(width, height float64, seed uint64, logger *log.Logger) *Network {
	src := rand.NewSource(seed)
	return &Network{
		Width:     width,
		Height:    height,
		Nodes:     make(map[types.NodeID]*Node),
		Graph:     types.NewGraph(),
		src:       src,
		rng:       rand.New(src),
		gen:       NewTopologyGenerator(width, height, src),
		packet:    util.NewCounter(),
		collector: metrics.NewCollector("Baseline"),
		logger:    logger.With(log.LogParams{"component": "network"}),
	}
}

// Metrics returns the collector recording the packet lifecycle of every
// SendPacket call.
func (n *Network) Metrics() *metrics.Collector {
	return n.collector
}

// Create replaces the current topology with a fresh random geometric one.
func (n *Network) Create(numNodes int, communicationRange float64) {
	nodes, graph := n.gen.CreateRandomTopology(numNodes, communicationRange)
	n.Nodes = make(map[types.NodeID]*Node, len(nodes))
	for _, node := range nodes {
		n.Nodes[node.ID] = node
	}
	n.Graph = graph
	n.logger.With(log.LogParams{
		"nodes": graph.NumNodes(),
		"edges": graph.NumEdges(),
	}).Info("Created network topology")
}

// AddNode inserts a node and links it to every node within range.
func (n *Network) AddNode(id types.NodeID, pos types.Position, communicationRange float64) bool {
	if _, exists := n.Nodes[id]; exists {
		return false
	}
	node := NewNode(id, pos)
	for otherID, other := range n.Nodes {
		d := pos.Distance(other.Position)
		if d <= communicationRange {
			node.AddNeighbor(otherID)
			other.AddNeighbor(id)
			n.Graph.AddEdge(id, otherID, map[string]float64{"distance": d})
		}
	}
	n.Graph.AddNode(id, pos)
	n.Nodes[id] = node
	return true
}

// RemoveNode deletes a node and its links.
func (n *Network) RemoveNode(id types.NodeID) bool {
	node, ok := n.Nodes[id]
	if !ok {
		return false
	}
	for _, nbr := range node.Neighbors {
		if other, ok := n.Nodes[nbr]; ok {
			other.RemoveNeighbor(id)
		}
	}
	n.Graph.RemoveNode(id)
	delete(n.Nodes, id)
	return true
}

// Distance returns the euclidean distance between two nodes, or false if
// either is unknown.
func (n *Network) Distance(a, b types.NodeID) (float64, bool) {
	na, ok := n.Nodes[a]
	if !ok {
		return 0, false
	}
	nb, ok := n.Nodes[b]
	if !ok {
		return 0, false
	}
	return na.DistanceTo(nb), true
}

// ActiveNodes returns the IDs of active nodes sorted ascending.
func (n *Network) ActiveNodes() []types.NodeID {
	active := make([]types.NodeID, 0, len(n.Nodes))
	for _, id := range n.Graph.Nodes() {
		if node, ok := n.Nodes[id]; ok && node.IsActive {
			active = append(active, id)
		}
	}
	return active
}

// SimulateFailures runs one round of the stochastic failure/repair
// process. Active nodes fail with the given probability; failed nodes
// are repaired with RepairChance. Iteration is in sorted ID order so a
// fixed seed reproduces the exact sequence.
func (n *Network) SimulateFailures(failureRate float64) (failed, repaired []types.NodeID) {
	if failureRate <= 0 {
		return nil, nil
	}
	bern := distuv.Bernoulli{P: failureRate, Src: n.src}
	for _, id := range n.Graph.Nodes() {
		node, ok := n.Nodes[id]
		if !ok {
			continue
		}
		if bern.Rand() < 1 {
			continue
		}
		if node.IsActive {
			node.Fail()
			failed = append(failed, id)
		} else if n.rng.Float64() < RepairChance {
			node.Repair()
			repaired = append(repaired, id)
		}
	}
	if len(failed) > 0 || len(repaired) > 0 {
		n.logger.With(log.LogParams{
			"failed":   failed,
			"repaired": repaired,
		}).Debug("Failure process ran")
	}
	return failed, repaired
}

// nextHop implements the baseline forwarder: mostly random among active
// unvisited neighbors, occasionally greedy toward the destination.
func (n *Network) nextHop(p *Packet) (types.NodeID, bool) {
	current, ok := n.Nodes[p.Current()]
	if !ok || !current.IsActive {
		return 0, false
	}
	visited := make(map[types.NodeID]bool, len(p.Path))
	for _, id := range p.Path {
		visited[id] = true
	}
	candidates := make([]types.NodeID, 0, len(current.Neighbors))
	for _, nbr := range current.Neighbors {
		node, ok := n.Nodes[nbr]
		if ok && node.IsActive && !visited[nbr] {
			candidates = append(candidates, nbr)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	if n.rng.Float64() < RandomForwardProbability {
		return candidates[n.rng.Intn(len(candidates))], true
	}
	dest, ok := n.Nodes[p.Destination]
	if !ok {
		return candidates[n.rng.Intn(len(candidates))], true
	}
	best := candidates[0]
	bestDist := n.Nodes[best].Position.Distance(dest.Position)
	for _, c := range candidates[1:] {
		if d := n.Nodes[c].Position.Distance(dest.Position); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, true
}

// SendPacket pushes one packet through the baseline forwarder until it is
// delivered, stranded or out of hops. It returns the traversed path and
// whether delivery succeeded.
func (n *Network) SendPacket(source, destination types.NodeID) (types.Route, bool) {
	src, ok := n.Nodes[source]
	if !ok || !src.IsActive {
		return nil, false
	}
	if _, ok := n.Nodes[destination]; !ok {
		return nil, false
	}
	p := NewPacket(n.packet.Next(), source, destination)
	sent := time.Now()
	stranded := false
	for p.HopCount < MaxPacketHops {
		if p.Current() == destination {
			n.DeliveredPackets++
			n.recordOutcome(p, sent, true, "")
			return p.Path, true
		}
		hop, ok := n.nextHop(p)
		if !ok {
			stranded = true
			break
		}
		p.AddHop(hop)
	}
	if p.Current() == destination {
		n.DeliveredPackets++
		n.recordOutcome(p, sent, true, "")
		return p.Path, true
	}
	n.LostPackets++
	reason := metrics.FailureMaxHopsExceeded
	if stranded {
		reason = metrics.FailureNoValidNeighbors
	}
	n.recordOutcome(p, sent, false, reason)
	return p.Path, false
}

// recordOutcome logs the packet's full lifecycle with the collector:
// send with the traversed path, the intermediate forwards, and the final
// delivery or loss.
func (n *Network) recordOutcome(p *Packet, sent time.Time, delivered bool, reason metrics.FailureReason) {
	n.collector.RecordPacketSent(p.ID, p.Source, p.Destination, p.Path, sent)
	for i := 1; i+1 < len(p.Path); i++ {
		n.collector.RecordPacketForwarded(p.Path[i])
	}
	if delivered {
		n.collector.RecordPacketDelivered(p.ID, time.Now())
	} else {
		n.collector.RecordPacketLost(p.ID, reason)
	}
}

// Step advances the simulation one timestep: failures run and one random
// packet is pushed through the baseline forwarder.
func (n *Network) Step(failureRate float64) {
	n.SimulationTime++
	n.SimulateFailures(failureRate)

	active := n.ActiveNodes()
	if len(active) < 2 {
		return
	}
	source := active[n.rng.Intn(len(active))]
	destination := source
	for destination == source {
		destination = active[n.rng.Intn(len(active))]
	}
	n.SendPacket(source, destination)
}

// NetworkStats is a point-in-time summary of the network.
type NetworkStats struct {
	SimulationTime   int     `json:"simulation_time"`
	TotalNodes       int     `json:"total_nodes"`
	ActiveNodes      int     `json:"active_nodes"`
	DeliveredPackets int     `json:"delivered_packets"`
	LostPackets      int     `json:"lost_packets"`
	DeliveryRate     float64 `json:"delivery_rate"`
}

// Stats summarizes the network state.
func (n *Network) Stats() NetworkStats {
	total := n.DeliveredPackets + n.LostPackets
	rate := 0.0
	if total > 0 {
		rate = float64(n.DeliveredPackets) / float64(total)
	}
	return NetworkStats{
		SimulationTime:   n.SimulationTime,
		TotalNodes:       len(n.Nodes),
		ActiveNodes:      len(n.ActiveNodes()),
		DeliveredPackets: n.DeliveredPackets,
		LostPackets:      n.LostPackets,
		DeliveryRate:     rate,
	}
}
