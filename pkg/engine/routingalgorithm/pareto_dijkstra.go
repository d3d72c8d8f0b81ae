package routingalgorithm

import (
	"fmt"

	"github.com/lintang-b-s/rodroute/pkg/datastructure"
	"github.com/lintang-b-s/rodroute/pkg/util"
)

// SingleAction is one node of the search tree. Prev points at the parent entry, the root points at
// itself.
type SingleAction[D any] struct {
	Prev     int
	Node     datastructure.NodeID
	Cost     D
	Disabled bool
	// Ignore entries can not end a single result search.
	Ignore bool
}

// HeapData is a priority queue item. Index breaks ties between equal hints so that the search is
// deterministic.
type HeapData struct {
	Hint  uint64
	Index int
	Node  datastructure.NodeID
}

func heapDataLess(a, b HeapData) bool {
	if a.Hint != b.Hint {
		return a.Hint < b.Hint
	}
	return a.Index < b.Index
}

// SearchTree is the result of a pareto search.
type SearchTree[D any] struct {
	Actions   []SingleAction[D]
	Endpoints []int
	// Frontier lists, per reached node, the arena indices that were never dominated.
	Frontier map[datastructure.NodeID][]int
}

type searchOptions struct {
	maxArenaSize int
}

type SearchOption func(*searchOptions)

// WithMaxArenaSize caps the number of search tree entries. Non positive values keep the default.
func WithMaxArenaSize(n int) SearchOption {
	return func(o *searchOptions) {
		if n > 0 {
			o.maxArenaSize = n
		}
	}
}

// Generate runs a multi criteria dijkstra from start. Instead of one distance per node it keeps every
// cost that is not majorised by another cost reaching the same node. The search fails with
// datastructure.ErrOutOfMemory once the tree grows past its cap.
func Generate[V, E any, D datastructure.Majorising[D]](g *datastructure.Graph[V, E], start datastructure.NodeID,
	startCost D, ctrl Controller[V, E, D], opts ...SearchOption) (*SearchTree[D], error) {
	o := searchOptions{maxArenaSize: datastructure.DefaultMaxArenaSize}
	for _, opt := range opts {
		opt(&o)
	}

	if !g.Contains(start) {
		return nil, fmt.Errorf("start node %d: %w", start, datastructure.ErrMissingID)
	}

	arena := datastructure.NewLimitedVec[SingleAction[D]](o.maxArenaSize)
	if err := arena.Push(SingleAction[D]{Prev: 0, Node: start, Cost: startCost}); err != nil {
		return nil, err
	}
	frontier := map[datastructure.NodeID][]int{start: {0}}

	pq := datastructure.NewMinHeap(heapDataLess)
	pq.Insert(HeapData{Hint: ctrl.Hint(startCost), Index: 0, Node: start})

	forceSingle := ctrl.ForceSingleResult()
	deferFilter := ctrl.DeferFilterUntilEndpointSeen()
	possibleEndingFound := false

	for !pq.IsEmpty() {
		item, _ := pq.ExtractMin()
		cur := *arena.At(item.Index)
		if cur.Disabled {
			continue
		}

		value, _ := g.Get(item.Node)
		ending := ctrl.Classify(value, cur.Cost)
		if ending != No {
			possibleEndingFound = true
		}
		if forceSingle && ending == Yes && !cur.Ignore {
			break
		}
		ignoreNext := forceSingle && ending == Kinda

		links, _ := g.GetConn(item.Node)
		for _, link := range links {
			if !g.Contains(link.To) {
				continue
			}
			next := ctrl.CostAfter(cur.Cost, link.Value)
			if (!deferFilter || possibleEndingFound) && !ctrl.Admissible(next) {
				continue
			}

			survivors := frontier[link.To]
			for _, idx := range survivors {
				other := arena.At(idx)
				if datastructure.MajorisesStrict(other.Cost, next) {
					other.Disabled = true
				}
			}

			compacted := survivors[:0]
			dominated := false
			for _, idx := range survivors {
				other := arena.At(idx)
				if other.Disabled {
					continue
				}
				compacted = append(compacted, idx)
				if next.Majorises(other.Cost) {
					dominated = true
				}
			}

			if !dominated {
				index := arena.Len()
				err := arena.Push(SingleAction[D]{
					Prev:   item.Index,
					Node:   link.To,
					Cost:   next,
					Ignore: ignoreNext,
				})
				if err != nil {
					return nil, fmt.Errorf("pareto search from %d: %w", start, err)
				}
				pq.Insert(HeapData{Hint: ctrl.Hint(next), Index: index, Node: link.To})
				compacted = append(compacted, index)
			}
			frontier[link.To] = compacted
		}
	}

	actions := arena.Inner()
	endpoints := make([]int, 0)
	isEndpoint := make(map[int]struct{})

	for i, a := range actions {
		if a.Disabled {
			continue
		}
		value, _ := g.Get(a.Node)
		if ctrl.Classify(value, a.Cost) != Yes {
			continue
		}
		parent := actions[a.Prev]
		parentValue, _ := g.Get(parent.Node)
		if ctrl.Classify(parentValue, parent.Cost) == Yes {
			continue
		}
		endpoints = append(endpoints, i)
		isEndpoint[i] = struct{}{}
	}

	if ctrl.YieldLeavesAsEndpoints() {
		// children always come after their parent, so every entry alive before this pass still
		// disables its own parent. Yes endpoints stay enabled even when they have children.
		for i := range actions {
			if actions[i].Disabled || actions[i].Prev == i {
				continue
			}
			if _, ok := isEndpoint[actions[i].Prev]; ok {
				continue
			}
			actions[actions[i].Prev].Disabled = true
		}
		for i, a := range actions {
			if a.Disabled {
				continue
			}
			if _, ok := isEndpoint[i]; ok {
				continue
			}
			endpoints = append(endpoints, i)
		}
	}

	return &SearchTree[D]{
		Actions:   actions,
		Endpoints: endpoints,
		Frontier:  frontier,
	}, nil
}

// Reconstruct walks parent links from index back to the root and returns the nodes root first.
func Reconstruct[D any](actions []SingleAction[D], index int) datastructure.Path {
	nodes := make([]datastructure.NodeID, 0)
	for {
		a := actions[index]
		nodes = append(nodes, a.Node)
		if a.Prev == index {
			break
		}
		index = a.Prev
	}
	util.ReverseInPlace(nodes)
	return datastructure.NewPath(nodes)
}

// ReconstructAnnotated is Reconstruct keeping annotate(cost) next to every node.
func ReconstructAnnotated[D, A any](actions []SingleAction[D], index int, annotate func(D) A) datastructure.AnnotatedPath[A] {
	items := make([]datastructure.Annotated[A], 0)
	for {
		a := actions[index]
		items = append(items, datastructure.Annotated[A]{Node: a.Node, Value: annotate(a.Cost)})
		if a.Prev == index {
			break
		}
		index = a.Prev
	}
	util.ReverseInPlace(items)
	return datastructure.NewAnnotatedPath(items)
}

func (t *SearchTree[D]) IntoNodes(index int) datastructure.Path {
	return Reconstruct(t.Actions, index)
}

func (t *SearchTree[D]) IntoAnnotatedNodes(index int) datastructure.AnnotatedPath[D] {
	return ReconstructAnnotated(t.Actions, index, func(d D) D { return d })
}

// Survivors returns the non disabled frontier entries of node.
func (t *SearchTree[D]) Survivors(node datastructure.NodeID) []int {
	res := make([]int, 0, len(t.Frontier[node]))
	for _, idx := range t.Frontier[node] {
		if !t.Actions[idx].Disabled {
			res = append(res, idx)
		}
	}
	return res
}
