package datastructure

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrMissingID is returned when an edge originates from a node that was never declared.
	ErrMissingID = errors.New("edge source node does not exist")
	// ErrInvalidGraph covers other data-integrity problems found while loading a graph.
	ErrInvalidGraph = errors.New("invalid graph data")
)

type NodeID uint64

type EdgeID uint64

// Vertex is a (id, value) pair used to build a Graph.
type Vertex[V any] struct {
	ID    NodeID
	Value V
}

// EdgeTriple is a directed edge (from, value, to) used to build a Graph.
type EdgeTriple[E any] struct {
	From  NodeID
	Value E
	To    NodeID
}

// Link is one outgoing connection of a node.
type Link[E any] struct {
	To    NodeID
	Value E
}

type element[V, E any] struct {
	value V
	// sorted by To, at most one link per target
	links []Link[E]
}

// Graph is a directed graph that is read-only after construction.
// Edge targets are not validated, a link may point at a node that does not exist.
type Graph[V, E any] struct {
	elements map[NodeID]*element[V, E]
	ids      []NodeID
	numEdges int
}

// NewGraph builds a graph from its vertices and edges. An edge whose source node is missing fails
// with ErrMissingID. When the same (from, to) pair is given twice, the last edge wins.
func NewGraph[V, E any](vertices []Vertex[V], edges []EdgeTriple[E]) (*Graph[V, E], error) {
	g := &Graph[V, E]{
		elements: make(map[NodeID]*element[V, E], len(vertices)),
		ids:      make([]NodeID, 0, len(vertices)),
	}
	for _, v := range vertices {
		if _, ok := g.elements[v.ID]; !ok {
			g.ids = append(g.ids, v.ID)
		}
		g.elements[v.ID] = &element[V, E]{value: v.Value}
	}
	sort.Slice(g.ids, func(i, j int) bool { return g.ids[i] < g.ids[j] })

	for _, e := range edges {
		el, ok := g.elements[e.From]
		if !ok {
			return nil, fmt.Errorf("edge %d -> %d: %w", e.From, e.To, ErrMissingID)
		}
		el.links = append(el.links, Link[E]{To: e.To, Value: e.Value})
	}

	for _, el := range g.elements {
		if len(el.links) == 0 {
			continue
		}
		sort.SliceStable(el.links, func(i, j int) bool { return el.links[i].To < el.links[j].To })
		deduped := el.links[:0]
		for i, l := range el.links {
			if i+1 < len(el.links) && el.links[i+1].To == l.To {
				continue
			}
			deduped = append(deduped, l)
		}
		el.links = deduped
		g.numEdges += len(deduped)
	}
	return g, nil
}

func (g *Graph[V, E]) Contains(id NodeID) bool {
	_, ok := g.elements[id]
	return ok
}

func (g *Graph[V, E]) Get(id NodeID) (V, bool) {
	el, ok := g.elements[id]
	if !ok {
		var zero V
		return zero, false
	}
	return el.value, true
}

// GetEdge finds the edge from -> to in O(log degree).
func (g *Graph[V, E]) GetEdge(from, to NodeID) (E, bool) {
	var zero E
	el, ok := g.elements[from]
	if !ok {
		return zero, false
	}
	i := sort.Search(len(el.links), func(i int) bool { return el.links[i].To >= to })
	if i < len(el.links) && el.links[i].To == to {
		return el.links[i].Value, true
	}
	return zero, false
}

// GetConn returns the outgoing links of a node ordered by target id.
// The returned slice is shared with the graph and must not be modified.
func (g *Graph[V, E]) GetConn(id NodeID) ([]Link[E], bool) {
	el, ok := g.elements[id]
	if !ok {
		return nil, false
	}
	return el.links, true
}

func (g *Graph[V, E]) GetEdges(id NodeID) ([]E, bool) {
	links, ok := g.GetConn(id)
	if !ok {
		return nil, false
	}
	edges := make([]E, len(links))
	for i, l := range links {
		edges[i] = l.Value
	}
	return edges, true
}

func (g *Graph[V, E]) GetConnIDs(id NodeID) ([]NodeID, bool) {
	links, ok := g.GetConn(id)
	if !ok {
		return nil, false
	}
	ids := make([]NodeID, len(links))
	for i, l := range links {
		ids[i] = l.To
	}
	return ids, true
}

// ListIDs returns every node id in ascending order.
func (g *Graph[V, E]) ListIDs() []NodeID {
	ids := make([]NodeID, len(g.ids))
	copy(ids, g.ids)
	return ids
}

// GetAllNodes returns every node value in ascending id order.
func (g *Graph[V, E]) GetAllNodes() []V {
	nodes := make([]V, 0, len(g.ids))
	for _, id := range g.ids {
		nodes = append(nodes, g.elements[id].value)
	}
	return nodes
}

// ForEachEdge calls fn for every edge, sources in ascending order.
func (g *Graph[V, E]) ForEachEdge(fn func(from, to NodeID, e E)) {
	for _, id := range g.ids {
		for _, l := range g.elements[id].links {
			fn(id, l.To, l.Value)
		}
	}
}

func (g *Graph[V, E]) NumNodes() int {
	return len(g.ids)
}

func (g *Graph[V, E]) NumEdges() int {
	return g.numEdges
}
