package routingalgorithm

import (
	"testing"

	"github.com/lintang-b-s/rodroute/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cell [2]int

type scalarController struct {
	DefaultPolicy[cell, datastructure.Float64]
	maxCost     float64
	yieldLeaves bool
	forceSingle bool
	deferFilter bool
	classify    func(cost float64) Ending
}

func (c scalarController) CostAfter(cost datastructure.Float64, weight float64) datastructure.Float64 {
	return cost + datastructure.Float64(weight)
}

func (c scalarController) Admissible(cost datastructure.Float64) bool {
	return float64(cost) < c.maxCost
}

func (c scalarController) Hint(cost datastructure.Float64) uint64 {
	return uint64(cost * 1000)
}

func (c scalarController) Classify(_ cell, cost datastructure.Float64) Ending {
	if c.classify == nil {
		return No
	}
	return c.classify(float64(cost))
}

func (c scalarController) YieldLeavesAsEndpoints() bool { return c.yieldLeaves }

func (c scalarController) ForceSingleResult() bool { return c.forceSingle }

func (c scalarController) DeferFilterUntilEndpointSeen() bool { return c.deferFilter }

func unitGrid(t *testing.T, w, h int) *datastructure.Graph[cell, float64] {
	g, err := datastructure.CreateTestGraph(w, h,
		func(x, y int) cell { return cell{x, y} },
		func(from, to datastructure.NodeID) float64 { return 1.0 })
	require.NoError(t, err)
	return g
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

func TestGenerateGrid(t *testing.T) {
	g := unitGrid(t, 3, 3)
	ctrl := scalarController{maxCost: 10, yieldLeaves: true}

	start := datastructure.GridNodeID(0, 0, 3)
	tree, err := Generate[cell, float64, datastructure.Float64](g, start, 0, ctrl)
	require.NoError(t, err)

	for _, id := range g.ListIDs() {
		v, _ := g.Get(id)
		entries := tree.Frontier[id]
		require.Len(t, entries, 1, "node %v", v)
		assert.Equal(t, datastructure.Float64(v[0]+v[1]), tree.Actions[entries[0]].Cost)
	}

	require.NotEmpty(t, tree.Endpoints)
	covered := make(map[datastructure.NodeID]struct{})
	for _, ep := range tree.Endpoints {
		a := tree.Actions[ep]
		assert.False(t, a.Disabled)
		v, _ := g.Get(a.Node)
		assert.Equal(t, datastructure.Float64(abs(v[0])+abs(v[1])), a.Cost)

		path := tree.IntoNodes(ep)
		assert.Equal(t, start, path.First())
		assert.Equal(t, a.Node, path.Last())
		assert.Equal(t, int(a.Cost)+1, path.Len())
		for _, n := range path.GetIndices() {
			covered[n] = struct{}{}
		}
		_, _, err := datastructure.PathElements(g, path.GetIndices())
		assert.NoError(t, err)
	}
	assert.Len(t, covered, 9)
}

func TestGenerateAnnotatedReconstruction(t *testing.T) {
	g := unitGrid(t, 3, 3)
	ctrl := scalarController{maxCost: 10, yieldLeaves: true}

	tree, err := Generate[cell, float64, datastructure.Float64](g, 0, 0, ctrl)
	require.NoError(t, err)

	for _, ep := range tree.Endpoints {
		ap := tree.IntoAnnotatedNodes(ep)
		items := ap.Items()
		for i, it := range items {
			assert.Equal(t, datastructure.Float64(i), it.Value)
		}
		assert.Equal(t, tree.IntoNodes(ep).GetIndices(), ap.AsPath().GetIndices())
	}
}

func TestGenerateOutOfMemory(t *testing.T) {
	g := unitGrid(t, 100, 100)
	ctrl := scalarController{maxCost: 1e9}

	_, err := Generate[cell, float64, datastructure.Float64](g, 0, 0, ctrl, WithMaxArenaSize(50))
	assert.ErrorIs(t, err, datastructure.ErrOutOfMemory)
}

func TestGenerateMissingStart(t *testing.T) {
	g := unitGrid(t, 2, 2)
	_, err := Generate[cell, float64, datastructure.Float64](g, 42, 0, scalarController{maxCost: 10})
	assert.ErrorIs(t, err, datastructure.ErrMissingID)
}

func TestGenerateIsolatedStartIsLeaf(t *testing.T) {
	g, err := datastructure.NewGraph[cell, float64]([]datastructure.Vertex[cell]{{ID: 1}}, nil)
	require.NoError(t, err)

	tree, err := Generate[cell, float64, datastructure.Float64](g, 1, 0, scalarController{maxCost: 10, yieldLeaves: true})
	require.NoError(t, err)
	assert.Equal(t, []int{0}, tree.Endpoints)
	assert.Equal(t, []datastructure.NodeID{1}, tree.IntoNodes(0).GetIndices())
}

func TestGenerateSkipsDanglingTargets(t *testing.T) {
	g, err := datastructure.NewGraph(
		[]datastructure.Vertex[cell]{{ID: 0}, {ID: 1}},
		[]datastructure.EdgeTriple[float64]{{From: 0, Value: 1, To: 1}, {From: 0, Value: 1, To: 7}},
	)
	require.NoError(t, err)

	tree, err := Generate[cell, float64, datastructure.Float64](g, 0, 0, scalarController{maxCost: 10, yieldLeaves: true})
	require.NoError(t, err)
	assert.Len(t, tree.Actions, 2)
	_, ok := tree.Frontier[7]
	assert.False(t, ok)
}

func TestGenerateLeavesKeepYesEndpoints(t *testing.T) {
	g := line(t)
	// node 2 is a Yes endpoint and still has the surviving children 3, 4, 5
	ctrl := scalarController{maxCost: 10, yieldLeaves: true, classify: func(cost float64) Ending {
		if cost == 2 {
			return Yes
		}
		return No
	}}

	tree, err := Generate[cell, float64, datastructure.Float64](g, 0, 0, ctrl)
	require.NoError(t, err)

	nodes := make([]datastructure.NodeID, 0, len(tree.Endpoints))
	for _, idx := range tree.Endpoints {
		assert.False(t, tree.Actions[idx].Disabled)
		nodes = append(nodes, tree.Actions[idx].Node)
	}
	assert.ElementsMatch(t, []datastructure.NodeID{2, 5}, nodes)
}

// line builds 0 - 1 - 2 - 3 - 4 - 5
func line(t *testing.T) *datastructure.Graph[cell, float64] {
	return unitGrid(t, 6, 1)
}

func yesFrom(limit float64) func(float64) Ending {
	return func(cost float64) Ending {
		if cost >= limit {
			return Yes
		}
		return No
	}
}

func TestGenerateEndpointLegality(t *testing.T) {
	g := line(t)
	ctrl := scalarController{maxCost: 5, classify: yesFrom(3)}

	tree, err := Generate[cell, float64, datastructure.Float64](g, 0, 0, ctrl)
	require.NoError(t, err)

	require.Len(t, tree.Endpoints, 1)
	ep := tree.Actions[tree.Endpoints[0]]
	assert.Equal(t, datastructure.NodeID(3), ep.Node)

	// node 4 is reached with a Yes parent
	assert.Len(t, tree.Survivors(4), 1)
	assert.Empty(t, tree.Frontier[5])

	for _, idx := range tree.Endpoints {
		a := tree.Actions[idx]
		assert.Equal(t, Yes, ctrl.Classify(cell{}, a.Cost))
		assert.NotEqual(t, Yes, ctrl.Classify(cell{}, tree.Actions[a.Prev].Cost))
	}
}

func TestGenerateForceSingle(t *testing.T) {
	g := line(t)
	ctrl := scalarController{maxCost: 10, forceSingle: true, classify: yesFrom(3)}

	tree, err := Generate[cell, float64, datastructure.Float64](g, 0, 0, ctrl)
	require.NoError(t, err)

	assert.Empty(t, tree.Frontier[4])
	require.Len(t, tree.Endpoints, 1)
	assert.Equal(t, datastructure.NodeID(3), tree.Actions[tree.Endpoints[0]].Node)
}

func TestGenerateForceSingleIgnoresChildrenOfKinda(t *testing.T) {
	g := line(t)
	ctrl := scalarController{maxCost: 10, forceSingle: true, classify: func(cost float64) Ending {
		switch {
		case cost >= 3:
			return Yes
		case cost == 2:
			return Kinda
		default:
			return No
		}
	}}

	tree, err := Generate[cell, float64, datastructure.Float64](g, 0, 0, ctrl)
	require.NoError(t, err)

	third := tree.Actions[tree.Frontier[3][0]]
	assert.True(t, third.Ignore)
	assert.Len(t, tree.Frontier[4], 1)
	assert.Empty(t, tree.Frontier[5])
}

func TestGenerateDeferFilter(t *testing.T) {
	g := line(t)

	strict := scalarController{maxCost: 2, classify: yesFrom(3)}
	tree, err := Generate[cell, float64, datastructure.Float64](g, 0, 0, strict)
	require.NoError(t, err)
	assert.NotEmpty(t, tree.Frontier[1])
	assert.Empty(t, tree.Frontier[2])
	assert.Empty(t, tree.Endpoints)

	deferred := strict
	deferred.deferFilter = true
	tree, err = Generate[cell, float64, datastructure.Float64](g, 0, 0, deferred)
	require.NoError(t, err)
	assert.NotEmpty(t, tree.Frontier[3])
	assert.Empty(t, tree.Frontier[4])
	require.Len(t, tree.Endpoints, 1)
	assert.Equal(t, datastructure.NodeID(3), tree.Actions[tree.Endpoints[0]].Node)
}

type pairCost = datastructure.Pair[datastructure.Float64, datastructure.Float64]

type pairController struct {
	DefaultPolicy[cell, pairCost]
}

func (pairController) CostAfter(cost pairCost, w [2]float64) pairCost {
	return datastructure.NewPair(cost.First+datastructure.Float64(w[0]), cost.Second+datastructure.Float64(w[1]))
}

func (pairController) Admissible(cost pairCost) bool { return cost.First < 8 }

func (pairController) Hint(cost pairCost) uint64 { return uint64(cost.First * 1000) }

func TestGenerateParetoFrontier(t *testing.T) {
	g, err := datastructure.CreateTestGraph(4, 4,
		func(x, y int) cell { return cell{x, y} },
		func(from, to datastructure.NodeID) [2]float64 {
			// moving along the first row is expensive in the second criterion
			if from%4 == 0 && to%4 == 0 {
				return [2]float64{1, 10}
			}
			return [2]float64{1, 1}
		})
	require.NoError(t, err)

	tree, err := Generate[cell, [2]float64, pairCost](g, 0, datastructure.NewPair[datastructure.Float64, datastructure.Float64](0, 0), pairController{})
	require.NoError(t, err)

	survivorsSeen := 0
	for node := range tree.Frontier {
		survivors := tree.Survivors(node)
		survivorsSeen += len(survivors)
		for i, a := range survivors {
			for j, b := range survivors {
				if i == j {
					continue
				}
				assert.False(t, tree.Actions[a].Cost.Majorises(tree.Actions[b].Cost))
			}
		}
	}
	assert.Greater(t, survivorsSeen, g.NumNodes())
	// (2,0) is reached both straight along the first row and around through the second one
	assert.Len(t, tree.Survivors(datastructure.GridNodeID(2, 0, 4)), 2)

	for i, a := range tree.Actions {
		if !a.Disabled {
			continue
		}
		found := false
		for _, s := range tree.Survivors(a.Node) {
			if datastructure.MajorisesStrict(a.Cost, tree.Actions[s].Cost) {
				found = true
			}
		}
		assert.True(t, found, "entry %d is disabled without a better survivor", i)
	}

	// the cost of every survivor is the cost of its reconstructed walk
	ctrl := pairController{}
	for _, idx := range tree.Survivors(15) {
		path := tree.IntoNodes(idx)
		_, edges, err := datastructure.PathElements(g, path.GetIndices())
		require.NoError(t, err)
		cost := datastructure.NewPair[datastructure.Float64, datastructure.Float64](0, 0)
		for _, e := range edges {
			cost = ctrl.CostAfter(cost, e)
		}
		assert.Equal(t, tree.Actions[idx].Cost, cost)
	}
}

func TestHeapDataLess(t *testing.T) {
	assert.True(t, heapDataLess(HeapData{Hint: 1, Index: 9}, HeapData{Hint: 2, Index: 0}))
	assert.True(t, heapDataLess(HeapData{Hint: 1, Index: 0}, HeapData{Hint: 1, Index: 1}))
	assert.False(t, heapDataLess(HeapData{Hint: 1, Index: 1}, HeapData{Hint: 1, Index: 1}))
}
