package datastructure

import (
	"errors"
	"fmt"
)

var ErrBrokenPath = errors.New("path refers to a missing node or edge")

// Path is a walk through a graph, stored as node ids.
type Path struct {
	nodes []NodeID
}

func NewPath(nodes []NodeID) Path {
	return Path{nodes: nodes}
}

func (p Path) Len() int {
	return len(p.nodes)
}

func (p Path) IsEmpty() bool {
	return len(p.nodes) == 0
}

// First panics on an empty path.
func (p Path) First() NodeID {
	return p.nodes[0]
}

// Last panics on an empty path.
func (p Path) Last() NodeID {
	return p.nodes[len(p.nodes)-1]
}

// GetIndices returns the node ids in walk order. The slice is shared with the path.
func (p Path) GetIndices() []NodeID {
	return p.nodes
}

// Join keeps p up to (excluding) the first node equal to other.Last(), then appends other reversed.
//
//	[1 2 3 4 5].Join([6 2 8 3]) == [1 2 3 8 2 6]
func (p Path) Join(other Path) Path {
	if other.IsEmpty() {
		return p.clone()
	}
	last := other.Last()
	joined := make([]NodeID, 0, len(p.nodes)+len(other.nodes))
	for _, n := range p.nodes {
		if n == last {
			break
		}
		joined = append(joined, n)
	}
	for i := len(other.nodes) - 1; i >= 0; i-- {
		joined = append(joined, other.nodes[i])
	}
	return Path{nodes: joined}
}

// Append concatenates two paths without checking for overlap.
func (p Path) Append(other Path) Path {
	appended := make([]NodeID, 0, len(p.nodes)+len(other.nodes))
	appended = append(appended, p.nodes...)
	appended = append(appended, other.nodes...)
	return Path{nodes: appended}
}

// Truncate cuts the path right after the first occurrence of node. It returns false, leaving the
// path untouched, when node is not on the path.
func (p *Path) Truncate(node NodeID) bool {
	for i, n := range p.nodes {
		if n == node {
			p.nodes = p.nodes[:i+1]
			return true
		}
	}
	return false
}

// GetFirstOccurring returns the given ids that are on the path, ordered by first occurrence.
func (p Path) GetFirstOccurring(ids []NodeID) []NodeID {
	toHit := make(map[NodeID]struct{}, len(ids))
	for _, id := range ids {
		toHit[id] = struct{}{}
	}
	res := make([]NodeID, 0, len(ids))
	for _, n := range p.nodes {
		if _, ok := toHit[n]; ok {
			delete(toHit, n)
			res = append(res, n)
		}
	}
	return res
}

func (p Path) clone() Path {
	nodes := make([]NodeID, len(p.nodes))
	copy(nodes, p.nodes)
	return Path{nodes: nodes}
}

// PathElements resolves the node values and the edges between consecutive nodes of a walk.
func PathElements[V, E any](g *Graph[V, E], nodes []NodeID) ([]V, []E, error) {
	values := make([]V, 0, len(nodes))
	for _, n := range nodes {
		v, ok := g.Get(n)
		if !ok {
			return nil, nil, fmt.Errorf("node %d: %w", n, ErrBrokenPath)
		}
		values = append(values, v)
	}
	var edges []E
	if len(nodes) > 1 {
		edges = make([]E, 0, len(nodes)-1)
	}
	for i := 1; i < len(nodes); i++ {
		e, ok := g.GetEdge(nodes[i-1], nodes[i])
		if !ok {
			return nil, nil, fmt.Errorf("edge %d -> %d: %w", nodes[i-1], nodes[i], ErrBrokenPath)
		}
		edges = append(edges, e)
	}
	return values, edges, nil
}

type Annotated[D any] struct {
	Node  NodeID
	Value D
}

// AnnotatedPath is a walk with a value per node, usually the cost at that node.
type AnnotatedPath[D any] struct {
	items []Annotated[D]
}

func NewAnnotatedPath[D any](items []Annotated[D]) AnnotatedPath[D] {
	return AnnotatedPath[D]{items: items}
}

func (p AnnotatedPath[D]) Len() int {
	return len(p.items)
}

func (p AnnotatedPath[D]) Items() []Annotated[D] {
	return p.items
}

func (p AnnotatedPath[D]) First() Annotated[D] {
	return p.items[0]
}

func (p AnnotatedPath[D]) Last() Annotated[D] {
	return p.items[len(p.items)-1]
}

// GetPathFiltered keeps the nodes whose annotation satisfies keep.
func (p AnnotatedPath[D]) GetPathFiltered(keep func(D) bool) Path {
	nodes := make([]NodeID, 0, len(p.items))
	for _, it := range p.items {
		if keep(it.Value) {
			nodes = append(nodes, it.Node)
		}
	}
	return Path{nodes: nodes}
}

// AsMap maps each node to its annotation. A node visited twice keeps its last annotation.
func (p AnnotatedPath[D]) AsMap() map[NodeID]D {
	m := make(map[NodeID]D, len(p.items))
	for _, it := range p.items {
		m[it.Node] = it.Value
	}
	return m
}

func (p AnnotatedPath[D]) AsPath() Path {
	nodes := make([]NodeID, len(p.items))
	for i, it := range p.items {
		nodes[i] = it.Node
	}
	return Path{nodes: nodes}
}
