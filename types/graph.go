package types

import (
	"golang.org/x/exp/slices"
)

// Graph is an undirected graph with node positions and per-edge float
// attributes. Iteration order over nodes and neighbors is always sorted
// by NodeID so that algorithms built on top of it are deterministic.
//
// Graph is not safe for concurrent mutation; the comparator hands each
// algorithm a frozen copy instead of sharing one instance.
type Graph struct {
	positions map[NodeID]Position
	adjacency map[NodeID]map[NodeID]map[string]float64
	numEdges  int
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		positions: make(map[NodeID]Position),
		adjacency: make(map[NodeID]map[NodeID]map[string]float64),
	}
}

// AddNode adds a node with its position. Re-adding an existing node only
// updates the position.
func (g *Graph) AddNode(id NodeID, pos Position) {
	g.positions[id] = pos
	if _, ok := g.adjacency[id]; !ok {
		g.adjacency[id] = make(map[NodeID]map[string]float64)
	}
}

// AddEdge connects u and v, creating the nodes if absent. Attributes are
// stored symmetrically.
func (g *Graph) AddEdge(u, v NodeID, attrs map[string]float64) {
	if u == v {
		return
	}
	if _, ok := g.adjacency[u]; !ok {
		g.AddNode(u, g.positions[u])
	}
	if _, ok := g.adjacency[v]; !ok {
		g.AddNode(v, g.positions[v])
	}
	if _, exists := g.adjacency[u][v]; !exists {
		g.numEdges++
	}
	stored := make(map[string]float64, len(attrs))
	for k, val := range attrs {
		stored[k] = val
	}
	g.adjacency[u][v] = stored
	g.adjacency[v][u] = stored
}

// RemoveNode deletes a node and all its incident edges.
func (g *Graph) RemoveNode(id NodeID) {
	for nbr := range g.adjacency[id] {
		delete(g.adjacency[nbr], id)
		g.numEdges--
	}
	delete(g.adjacency, id)
	delete(g.positions, id)
}

// HasNode reports whether id is present.
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.adjacency[id]
	return ok
}

// HasEdge reports whether u and v are adjacent.
func (g *Graph) HasEdge(u, v NodeID) bool {
	_, ok := g.adjacency[u][v]
	return ok
}

// Position returns the position of a node.
func (g *Graph) Position(id NodeID) (Position, bool) {
	p, ok := g.positions[id]
	return p, ok
}

// EdgeAttr returns the named attribute of edge (u,v).
func (g *Graph) EdgeAttr(u, v NodeID, key string) (float64, bool) {
	attrs, ok := g.adjacency[u][v]
	if !ok {
		return 0, false
	}
	val, ok := attrs[key]
	return val, ok
}

// Nodes returns all node IDs sorted ascending.
func (g *Graph) Nodes() []NodeID {
	ids := make([]NodeID, 0, len(g.adjacency))
	for id := range g.adjacency {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Neighbors returns the neighbors of id sorted ascending.
func (g *Graph) Neighbors(id NodeID) []NodeID {
	nbrs := make([]NodeID, 0, len(g.adjacency[id]))
	for nbr := range g.adjacency[id] {
		nbrs = append(nbrs, nbr)
	}
	slices.Sort(nbrs)
	return nbrs
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() int {
	return len(g.adjacency)
}

// NumEdges returns the number of undirected edges.
func (g *Graph) NumEdges() int {
	return g.numEdges
}

// Copy returns a deep copy of the graph.
func (g *Graph) Copy() *Graph {
	c := NewGraph()
	for id, pos := range g.positions {
		c.AddNode(id, pos)
	}
	for u, nbrs := range g.adjacency {
		for v, attrs := range nbrs {
			if u < v {
				c.AddEdge(u, v, attrs)
			}
		}
	}
	return c
}
