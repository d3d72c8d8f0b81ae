package rod

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/lintang-b-s/rodroute/pkg/datastructure"
	"github.com/lintang-b-s/rodroute/pkg/geo"
	"github.com/stretchr/testify/require"
)

const (
	baseLat = 51.05
	baseLon = 3.72
	// roughly 100 m between neighbouring nodes
	latStep = 0.0009
)

var lonStep = latStep / math.Cos(baseLat*math.Pi/180)

// cityGrid is a w x h street grid. Streets along x == 3 run through a park.
func cityGrid(t *testing.T, w, h int) *datastructure.ApplicationGraph {
	t.Helper()
	nodes := make([]datastructure.NodeRecord, 0, w*h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			nodes = append(nodes, datastructure.NodeRecord{
				ID:  datastructure.GridNodeID(x, y, h),
				Lat: baseLat + float64(y)*latStep,
				Lon: baseLon + float64(x)*lonStep,
			})
		}
	}

	edges := make([]datastructure.EdgeRecord, 0)
	addEdge := func(x1, y1, x2, y2 int) {
		var tags datastructure.Tags
		if x1 == 3 && x2 == 3 {
			tags = datastructure.TagPark
		}
		from, to := datastructure.GridNodeID(x1, y1, h), datastructure.GridNodeID(x2, y2, h)
		edges = append(edges,
			datastructure.EdgeRecord{ID: datastructure.EdgeID(len(edges)), From: from, To: to, Tags: tags},
			datastructure.EdgeRecord{ID: datastructure.EdgeID(len(edges) + 1), From: to, To: from, Tags: tags},
		)
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if x+1 < w {
				addEdge(x, y, x+1, y)
			}
			if y+1 < h {
				addEdge(x, y, x, y+1)
			}
		}
	}

	g, err := datastructure.NewApplicationGraph(nodes, edges, nil)
	require.NoError(t, err)
	return g
}

func gridCoordinate(x, y int) geo.Coordinate {
	return geo.NewCoordinate(baseLat+float64(y)*latStep, baseLon+float64(x)*lonStep)
}

type fixedLocator struct {
	from, to datastructure.NodeID
	err      error
}

func (l fixedLocator) NearestEdge(ctx context.Context, lat, lon float64) (datastructure.NodeID, datastructure.NodeID, error) {
	if l.err != nil {
		return 0, 0, l.err
	}
	return l.from, l.to, nil
}

var errNoEdges = errors.New("no edges here")

func requireWalkable(t *testing.T, g *datastructure.ApplicationGraph, p datastructure.Path) {
	t.Helper()
	_, _, err := datastructure.PathElements(g, p.GetIndices())
	require.NoError(t, err)
}
