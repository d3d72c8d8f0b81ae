package snap

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/lintang-b-s/rodroute/pkg/datastructure"
	"github.com/lintang-b-s/rodroute/pkg/geo"
	"go.uber.org/zap"
)

var ErrEdgesNotFound = errors.New("no edge near point")

const (
	// TOLERANCE pads every edge bounding box, in km.
	TOLERANCE = 0.1
	minRadius = 0.3 // 300 meter
	maxWiden  = 2
)

// edgeLeaf is a directed edge stored in the tree.
type edgeLeaf struct {
	from, to   datastructure.NodeID
	fromC, toC geo.Coordinate
	bound      rtreego.Rect
}

func (e *edgeLeaf) Bounds() rtreego.Rect {
	return e.bound
}

// RoadSnapper finds the graph edges close to a point with an in-memory r-tree.
type RoadSnapper struct {
	rtree  *rtreego.Rtree
	logger *zap.Logger
}

func NewRoadSnapper(logger *zap.Logger) *RoadSnapper {
	return &RoadSnapper{rtree: rtreego.NewTree(2, 25, 50), logger: logger}
}

// boundingBox returns the box around lat/lon padded by radius km on every side.
func boundingBox(lat, lon, radius float64) (rtreego.Rect, error) {
	upperLat, upperLon := geo.GetDestinationPoint(lat, lon, 45, radius*math.Sqrt2)
	lowerLat, lowerLon := geo.GetDestinationPoint(lat, lon, 225, radius*math.Sqrt2)
	return rtreego.NewRectFromPoints(rtreego.Point{lowerLat, lowerLon}, rtreego.Point{upperLat, upperLon})
}

// BuildRoadSnapper inserts every edge of g.
func (rs *RoadSnapper) BuildRoadSnapper(g *datastructure.ApplicationGraph) error {
	var err error
	count := 0
	g.ForEachEdge(func(from, to datastructure.NodeID, _ *datastructure.AnnotatedEdge) {
		if err != nil {
			return
		}
		fromNode, ok := g.Get(from)
		if !ok {
			return
		}
		toNode, ok := g.Get(to)
		if !ok {
			return
		}
		err = rs.insertEdge(from, to, fromNode.Coordinate().Geo(), toNode.Coordinate().Geo())
		count++
		if count%10000 == 0 {
			rs.logger.Debug("inserting edges to r-tree", zap.Int("count", count))
		}
	})
	if err != nil {
		return fmt.Errorf("build road snapper: %w", err)
	}
	rs.logger.Info("road snapper ready", zap.Int("edges", rs.rtree.Size()))
	return nil
}

func (rs *RoadSnapper) insertEdge(from, to datastructure.NodeID, fromC, toC geo.Coordinate) error {
	upperFromLat, upperFromLon := geo.GetDestinationPoint(fromC.Lat, fromC.Lon, 45, TOLERANCE*math.Sqrt2)
	lowerFromLat, lowerFromLon := geo.GetDestinationPoint(fromC.Lat, fromC.Lon, 225, TOLERANCE*math.Sqrt2)

	upperToLat, upperToLon := geo.GetDestinationPoint(toC.Lat, toC.Lon, 45, TOLERANCE*math.Sqrt2)
	lowerToLat, lowerToLon := geo.GetDestinationPoint(toC.Lat, toC.Lon, 225, TOLERANCE*math.Sqrt2)

	bound, err := rtreego.NewRectFromPoints(
		rtreego.Point{min(lowerFromLat, lowerToLat), min(lowerFromLon, lowerToLon)},
		rtreego.Point{max(upperFromLat, upperToLat), max(upperFromLon, upperToLon)},
	)
	if err != nil {
		return err
	}
	rs.rtree.Insert(&edgeLeaf{from: from, to: to, fromC: fromC, toC: toC, bound: bound})
	return nil
}

// SnapToRoads returns the edges whose padded box intersects a box around the point, widening
// the box a few times when nothing is found.
func (rs *RoadSnapper) SnapToRoads(lat, lon float64) ([]*edgeLeaf, error) {
	radius := minRadius
	for i := 0; i <= maxWiden; i++ {
		bound, err := boundingBox(lat, lon, radius)
		if err != nil {
			return nil, err
		}
		found := rs.rtree.SearchIntersect(bound)
		if len(found) > 0 {
			edges := make([]*edgeLeaf, 0, len(found))
			for _, s := range found {
				edges = append(edges, s.(*edgeLeaf))
			}
			return edges, nil
		}
		radius *= 2
	}
	return nil, ErrEdgesNotFound
}

// NearestEdge returns the edge closest to the point on the sphere.
func (rs *RoadSnapper) NearestEdge(ctx context.Context, lat, lon float64) (datastructure.NodeID, datastructure.NodeID, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	edges, err := rs.SnapToRoads(lat, lon)
	if err != nil {
		return 0, 0, fmt.Errorf("nearest edge at (%f, %f): %w", lat, lon, err)
	}

	p := geo.NewCoordinate(lat, lon)
	var best *edgeLeaf
	bestDist := math.Inf(1)
	for _, e := range edges {
		if d := geo.DistanceToSegment(p, e.fromC, e.toC); d < bestDist {
			best, bestDist = e, d
		}
	}
	if best == nil {
		return 0, 0, fmt.Errorf("nearest edge at (%f, %f): %w", lat, lon, ErrEdgesNotFound)
	}
	return best.from, best.to, nil
}
