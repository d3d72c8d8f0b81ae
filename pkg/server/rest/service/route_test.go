package service

import (
	"context"
	"errors"
	"testing"

	"github.com/lintang-b-s/rodroute/pkg/datastructure"
	"github.com/lintang-b-s/rodroute/pkg/engine/rod"
	"github.com/lintang-b-s/rodroute/pkg/geo"
	"github.com/lintang-b-s/rodroute/pkg/rating"
	"github.com/lintang-b-s/rodroute/pkg/routetag"
	"github.com/lintang-b-s/rodroute/pkg/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRouter struct {
	g        *datastructure.ApplicationGraph
	res      rod.RouteResult
	err      error
	gotFrom  geo.Coordinate
	gotTo    geo.Coordinate
	gotRoute *datastructure.Path
}

func (f *fakeRouter) Route(_ context.Context, from, to geo.Coordinate, meta *rod.Metadata) (rod.RouteResult, error) {
	f.gotFrom, f.gotTo = from, to
	f.gotRoute = meta.OriginalRoute
	return f.res, f.err
}

func (f *fakeRouter) Graph() *datastructure.ApplicationGraph {
	return f.g
}

type fakeHits struct {
	paths []datastructure.Path
}

func (f *fakeHits) Improve(p datastructure.Path) error {
	f.paths = append(f.paths, p)
	return nil
}

type fakeQueue struct {
	updates []rating.Update
	err     error
}

func (f *fakeQueue) Submit(_ context.Context, up rating.Update) error {
	if f.err != nil {
		return f.err
	}
	f.updates = append(f.updates, up)
	return nil
}

// square: 0 -> 1 -> 2 -> 3 -> 0, both directions.
func squareGraph(t *testing.T) *datastructure.ApplicationGraph {
	t.Helper()
	nodes := []datastructure.NodeRecord{
		{ID: 0, Lat: 51.0500, Lon: 3.7200},
		{ID: 1, Lat: 51.0500, Lon: 3.7220},
		{ID: 2, Lat: 51.0515, Lon: 3.7220},
		{ID: 3, Lat: 51.0515, Lon: 3.7200},
	}
	var edges []datastructure.EdgeRecord
	for i := 0; i < 4; i++ {
		a, b := datastructure.NodeID(i), datastructure.NodeID((i+1)%4)
		edges = append(edges,
			datastructure.EdgeRecord{ID: datastructure.EdgeID(len(edges)), From: a, To: b, Rating: 0.5, Tags: datastructure.TagPark},
			datastructure.EdgeRecord{ID: datastructure.EdgeID(len(edges) + 1), From: b, To: a, Rating: 0.5, Tags: datastructure.TagPark})
	}
	g, err := datastructure.NewApplicationGraph(nodes, edges, nil)
	require.NoError(t, err)
	return g
}

func loop() datastructure.Path {
	return datastructure.NewPath([]datastructure.NodeID{0, 1, 2, 3, 0})
}

func TestRouteDirections(t *testing.T) {
	g := squareGraph(t)
	router := &fakeRouter{g: g, res: rod.RouteResult{Path: loop(), Length: 0.5, Attempts: 2}}
	hits := &fakeHits{}
	svc := NewRouteService(router, hits, &fakeQueue{}, zap.NewNop())

	out, err := svc.Route(context.Background(), RouteRequest{Lat: 51.05, Lon: 3.72, Distance: 0.5, Tags: "park"})
	require.NoError(t, err)

	require.NotNil(t, out.Directions)
	assert.Nil(t, out.GeoJSON)
	assert.Len(t, out.Directions.Coordinates, 5)
	assert.Equal(t, routetag.Encode(loop()), out.Directions.Tag)
	assert.Equal(t, 2, out.Attempts)
	assert.InDelta(t, 0.5, out.Length, 1e-9)

	assert.Equal(t, router.gotFrom, router.gotTo)
	assert.Nil(t, router.gotRoute)
	require.Len(t, hits.paths, 1)
	assert.Equal(t, loop().GetIndices(), hits.paths[0].GetIndices())
}

func TestRouteGeoJSON(t *testing.T) {
	g := squareGraph(t)
	router := &fakeRouter{g: g, res: rod.RouteResult{Path: loop(), Length: 0.5, Attempts: 1}}
	svc := NewRouteService(router, &fakeHits{}, &fakeQueue{}, zap.NewNop())

	out, err := svc.Route(context.Background(), RouteRequest{Lat: 51.05, Lon: 3.72, Distance: 0.5, Type: GeoJSON})
	require.NoError(t, err)
	assert.Nil(t, out.Directions)
	require.NotNil(t, out.GeoJSON)
	assert.Len(t, out.GeoJSON.Features, 1)
}

func TestRouteReturnUsesLastVisitedNode(t *testing.T) {
	g := squareGraph(t)
	visited := datastructure.NewPath([]datastructure.NodeID{0, 1, 2})
	router := &fakeRouter{g: g, res: rod.RouteResult{Path: loop(), Length: 0.5, Attempts: 1}}
	svc := NewRouteService(router, &fakeHits{}, &fakeQueue{}, zap.NewNop())

	_, err := svc.Route(context.Background(), RouteRequest{
		Lat: 51.0500, Lon: 3.7200, Distance: 0.5, VisitedPath: routetag.Encode(visited),
	})
	require.NoError(t, err)

	last, _ := g.Get(2)
	assert.Equal(t, last.Coordinate().Geo(), router.gotTo)
	require.NotNil(t, router.gotRoute)
	assert.Equal(t, visited.GetIndices(), router.gotRoute.GetIndices())
}

func TestRouteInvalidVisitedPath(t *testing.T) {
	g := squareGraph(t)
	svc := NewRouteService(&fakeRouter{g: g}, &fakeHits{}, &fakeQueue{}, zap.NewNop())

	tests := []struct {
		name string
		tag  string
	}{
		{"not base64", "%%%"},
		// 0 -> 2 is not an edge
		{"not a walk", routetag.Encode(datastructure.NewPath([]datastructure.NodeID{0, 2}))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Route(context.Background(), RouteRequest{Distance: 1, VisitedPath: tt.tag})
			require.Error(t, err)
			assert.Equal(t, server.ErrBadParamInput, server.CodeOf(err))
		})
	}
}

func TestRouteErrorCodes(t *testing.T) {
	g := squareGraph(t)
	tests := []struct {
		name string
		err  error
		want server.ErrorCode
	}{
		{"no edge", &rod.NoSuchEdgeError{}, server.ErrNotFound},
		{"not intersecting", &rod.NotIntersectingRouteError{}, server.ErrBadParamInput},
		{"failed", rod.ErrRoutingFailed, server.ErrNotFound},
		{"other", errors.New("boom"), server.ErrInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := &fakeHits{}
			svc := NewRouteService(&fakeRouter{g: g, err: tt.err}, hits, &fakeQueue{}, zap.NewNop())
			_, err := svc.Route(context.Background(), RouteRequest{Distance: 1})
			require.Error(t, err)
			assert.Equal(t, tt.want, server.CodeOf(err))
			assert.Empty(t, hits.paths)
		})
	}
}

func TestRate(t *testing.T) {
	g := squareGraph(t)
	queue := &fakeQueue{}
	svc := NewRouteService(&fakeRouter{g: g}, &fakeHits{}, queue, zap.NewNop())

	err := svc.Rate(context.Background(), routetag.Encode(loop()), 0.9)
	require.NoError(t, err)
	require.Len(t, queue.updates, 1)
	assert.Len(t, queue.updates[0].Edges, 4)
	assert.Equal(t, 0.9, queue.updates[0].Rating)

	err = svc.Rate(context.Background(), "%%%", 0.9)
	assert.Equal(t, server.ErrBadParamInput, server.CodeOf(err))

	queue.err = context.Canceled
	err = svc.Rate(context.Background(), routetag.Encode(loop()), 0.9)
	assert.Equal(t, server.ErrInternalServerError, server.CodeOf(err))
}

func TestParseRouteType(t *testing.T) {
	assert.Equal(t, GeoJSON, ParseRouteType("geojson"))
	assert.Equal(t, Directions, ParseRouteType("directions"))
	assert.Equal(t, Directions, ParseRouteType(""))
}
