package rod

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/lintang-b-s/rodroute/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(g *datastructure.ApplicationGraph, locator EdgeLocator) *Router {
	return NewRouter(g, locator, DefaultHyperparameters(), zap.NewNop(), WithSeed(42))
}

func TestCreateRod(t *testing.T) {
	g := cityGrid(t, 8, 8)
	r := newTestRouter(g, fixedLocator{from: 0, to: 1})

	meta := NewMetadata(1.0, "park", "")
	rod, err := r.CreateRod(context.Background(), gridCoordinate(0, 0), meta)
	require.NoError(t, err)

	assert.Equal(t, datastructure.NodeID(0), rod.First().Node)
	assert.Equal(t, 0.0, rod.First().Value.ActualLength)
	assert.GreaterOrEqual(t, rod.Last().Value.ActualLength, 0.5)
	assert.Less(t, rod.Last().Value.ActualLength, 1.0)
	requireWalkable(t, g, rod.AsPath())

	length, err := datastructure.PathLength(g, rod.AsPath())
	require.NoError(t, err)
	assert.InDelta(t, rod.Last().Value.ActualLength, length, 1e-9)
}

func TestCreateRodReturnMode(t *testing.T) {
	g := cityGrid(t, 8, 8)
	r := newTestRouter(g, fixedLocator{from: 2, to: 3})

	meta := NewMetadata(1.0, "", "").WithOriginalRoute(datastructure.NewPath([]datastructure.NodeID{0, 1, 2, 3, 4}))
	rod, err := r.CreateRod(context.Background(), gridCoordinate(0, 2), meta)
	require.NoError(t, err)

	// 2 is met first, so the route is cut there and the search starts at the other end
	assert.Equal(t, []datastructure.NodeID{0, 1, 2}, meta.OriginalRoute.GetIndices())
	assert.Equal(t, datastructure.NodeID(3), rod.First().Node)
	requireWalkable(t, g, rod.AsPath())
}

func TestCreateRodNotIntersecting(t *testing.T) {
	g := cityGrid(t, 8, 8)
	r := newTestRouter(g, fixedLocator{from: 20, to: 21})

	meta := NewMetadata(1.0, "", "").WithOriginalRoute(datastructure.NewPath([]datastructure.NodeID{0, 1}))
	_, err := r.CreateRod(context.Background(), gridCoordinate(2, 4), meta)
	assert.ErrorIs(t, err, ErrNotIntersectingRoute)

	var nir *NotIntersectingRouteError
	require.True(t, errors.As(err, &nir))
	assert.Equal(t, datastructure.NodeID(20), nir.From)
}

func TestCreateRodNoSuchEdge(t *testing.T) {
	g := cityGrid(t, 4, 4)

	r := newTestRouter(g, fixedLocator{err: errNoEdges})
	_, err := r.CreateRod(context.Background(), gridCoordinate(0, 0), NewMetadata(1.0, "", ""))
	assert.ErrorIs(t, err, ErrNoSuchEdge)

	// the locator answers with an edge the graph does not know
	r = newTestRouter(g, fixedLocator{from: 0, to: 5})
	_, err = r.CreateRod(context.Background(), gridCoordinate(0, 0), NewMetadata(1.0, "", ""))
	assert.ErrorIs(t, err, ErrNoSuchEdge)
}

func TestRouteRoundTrip(t *testing.T) {
	g := cityGrid(t, 8, 8)
	r := newTestRouter(g, fixedLocator{from: 0, to: 1})

	meta := NewMetadata(1.0, "park", "")
	res, err := r.Route(context.Background(), gridCoordinate(0, 0), gridCoordinate(0, 0), meta)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.Attempts, 1)
	assert.Equal(t, datastructure.NodeID(0), res.Path.First())
	assert.Equal(t, datastructure.NodeID(0), res.Path.Last())
	requireWalkable(t, g, res.Path)
	assert.Greater(t, res.Length, 0.0)

	// the outbound half is cut where the closing half first meets it
	walked, err := datastructure.PathLength(g, res.Path)
	require.NoError(t, err)
	assert.LessOrEqual(t, walked, res.Length+1e-9)
}

func TestRouteNoSuchEdge(t *testing.T) {
	g := cityGrid(t, 4, 4)
	r := newTestRouter(g, fixedLocator{err: errNoEdges})

	_, err := r.Route(context.Background(), gridCoordinate(0, 0), gridCoordinate(0, 0), NewMetadata(1.0, "", ""))
	assert.ErrorIs(t, err, ErrNoSuchEdge)
}

func TestRouteCancelled(t *testing.T) {
	g := cityGrid(t, 4, 4)
	r := newTestRouter(g, fixedLocator{from: 0, to: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Route(ctx, gridCoordinate(0, 0), gridCoordinate(0, 0), NewMetadata(1.0, "", ""))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRouteGivesUp(t *testing.T) {
	g := cityGrid(t, 2, 2)
	params := DefaultHyperparameters()
	params.MaxTries = 3
	r := NewRouter(g, fixedLocator{from: 0, to: 1}, params, zap.NewNop(), WithSeed(1))

	// a 50 km loop can not be found in a 100 m square
	_, err := r.Route(context.Background(), gridCoordinate(0, 0), gridCoordinate(0, 0), NewMetadata(50, "", ""))
	assert.ErrorIs(t, err, ErrRoutingFailed)
	assert.ErrorIs(t, err, ErrNothingSelected)
}

func TestWithSeedConcurrent(t *testing.T) {
	g := cityGrid(t, 2, 2)
	shared := newTestRouter(g, fixedLocator{from: 0, to: 1})
	sequential := newTestRouter(g, fixedLocator{from: 0, to: 1})

	const workers, draws = 8, 50
	got := make([]uint64, 0, workers*draws)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]uint64, 0, draws)
			for i := 0; i < draws; i++ {
				local = append(local, shared.seed())
			}
			mu.Lock()
			got = append(got, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	want := make([]uint64, 0, workers*draws)
	for i := 0; i < workers*draws; i++ {
		want = append(want, sequential.seed())
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	assert.Equal(t, want, got)
}
