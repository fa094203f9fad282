package simulation

import (
	"github.com/meshnetframework/meshnet/types"
	"golang.org/x/exp/slices"
)

// Node is one mesh device: a position, a battery, a bounded packet queue
// and a neighbor list maintained by the network.
type Node struct {
	ID            types.NodeID
	Position      types.Position
	IsActive      bool
	Battery       float64 // normalized, 0 = drained
	QueueLen      int
	QueueCapacity int
	Neighbors     []types.NodeID
}

// NewNode creates an active node with a full battery and empty queue.
func NewNode(id types.NodeID, pos types.Position) *Node {
	return &Node{
		ID:            id,
		Position:      pos,
		IsActive:      true,
		Battery:       1.0,
		QueueLen:      0,
		QueueCapacity: 10,
		Neighbors:     make([]types.NodeID, 0),
	}
}

// AddNeighbor records a neighbor, keeping the list sorted and free of
// duplicates.
func (n *Node) AddNeighbor(id types.NodeID) {
	idx, found := slices.BinarySearch(n.Neighbors, id)
	if found {
		return
	}
	n.Neighbors = slices.Insert(n.Neighbors, idx, id)
}

// RemoveNeighbor drops a neighbor if present.
func (n *Node) RemoveNeighbor(id types.NodeID) {
	idx, found := slices.BinarySearch(n.Neighbors, id)
	if found {
		n.Neighbors = slices.Delete(n.Neighbors, idx, idx+1)
	}
}

// HasNeighbor reports whether id is a neighbor of n.
func (n *Node) HasNeighbor(id types.NodeID) bool {
	_, found := slices.BinarySearch(n.Neighbors, id)
	return found
}

// Fail marks the node inactive.
func (n *Node) Fail() {
	n.IsActive = false
}

// Repair marks the node active again.
func (n *Node) Repair() {
	n.IsActive = true
}

// QueueOccupancy returns queue length over capacity in [0,1].
func (n *Node) QueueOccupancy() float64 {
	if n.QueueCapacity == 0 {
		return 1.0
	}
	occ := float64(n.QueueLen) / float64(n.QueueCapacity)
	if occ > 1.0 {
		occ = 1.0
	}
	return occ
}

// DistanceTo returns the euclidean distance to another node.
func (n *Node) DistanceTo(o *Node) float64 {
	return n.Position.Distance(o.Position)
}

// DrainBattery deducts a normalized amount, flooring at zero.
func (n *Node) DrainBattery(amount float64) {
	n.Battery -= amount
	if n.Battery < 0 {
		n.Battery = 0
	}
}

// Snapshot returns the node's state as an immutable value.
func (n *Node) Snapshot() types.NodeState {
	return types.NodeState{
		ID:             n.ID,
		BatteryLevel:   n.Battery,
		QueueOccupancy: n.QueueOccupancy(),
		Position:       n.Position,
		IsActive:       n.IsActive,
	}
}
