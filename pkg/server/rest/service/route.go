package service

import (
	"context"
	"errors"

	"github.com/lintang-b-s/rodroute/pkg/datastructure"
	"github.com/lintang-b-s/rodroute/pkg/engine/rod"
	"github.com/lintang-b-s/rodroute/pkg/geo"
	"github.com/lintang-b-s/rodroute/pkg/guidance"
	"github.com/lintang-b-s/rodroute/pkg/rating"
	"github.com/lintang-b-s/rodroute/pkg/routetag"
	"github.com/lintang-b-s/rodroute/pkg/server"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

type Router interface {
	Route(ctx context.Context, from, to geo.Coordinate, meta *rod.Metadata) (rod.RouteResult, error)
	Graph() *datastructure.ApplicationGraph
}

type HitCounter interface {
	Improve(p datastructure.Path) error
}

type RatingQueue interface {
	Submit(ctx context.Context, up rating.Update) error
}

type RouteType string

const (
	Directions RouteType = "directions"
	GeoJSON    RouteType = "geojson"
)

// ParseRouteType falls back to Directions for anything it does not know.
func ParseRouteType(s string) RouteType {
	if RouteType(s) == GeoJSON {
		return GeoJSON
	}
	return Directions
}

type RouteRequest struct {
	Lat      float64
	Lon      float64
	Distance float64
	Tags     string
	NegTags  string
	Type     RouteType
	// VisitedPath is the route tag of the already walked part, set when asking for a way back.
	VisitedPath string
}

type RouteOutput struct {
	Directions *guidance.Directions
	GeoJSON    *geojson.FeatureCollection
	Length     float64
	Attempts   int
}

type RouteService struct {
	router  Router
	hits    HitCounter
	ratings RatingQueue
	logger  *zap.Logger
}

func NewRouteService(router Router, hits HitCounter, ratings RatingQueue, logger *zap.Logger) *RouteService {
	return &RouteService{router: router, hits: hits, ratings: ratings, logger: logger}
}

// Route generates a round trip of about req.Distance km starting at (req.Lat, req.Lon). With a
// visited path it generates the way back to the last node of that path instead.
func (s *RouteService) Route(ctx context.Context, req RouteRequest) (RouteOutput, error) {
	g := s.router.Graph()
	meta := rod.NewMetadata(req.Distance, req.Tags, req.NegTags)
	from := geo.NewCoordinate(req.Lat, req.Lon)
	to := from

	if req.VisitedPath != "" {
		visited, err := routetag.DecodeOn(g, req.VisitedPath)
		if err != nil {
			return RouteOutput{}, server.WrapErrorf(err, server.ErrBadParamInput, "visited_path is not a valid route")
		}
		meta.WithOriginalRoute(visited)
		if last, ok := g.Get(visited.Last()); ok {
			to = last.Coordinate().Geo()
		}
	}

	res, err := s.router.Route(ctx, from, to, meta)
	if err != nil {
		return RouteOutput{}, s.routeError(err)
	}

	if err := s.hits.Improve(res.Path); err != nil {
		s.logger.Warn("failed to count edge hits", zap.Error(err))
	}

	out := RouteOutput{Length: res.Length, Attempts: res.Attempts}
	switch req.Type {
	case GeoJSON:
		fc, err := guidance.IntoGeoJSON(g, res.Path, true)
		if err != nil {
			return RouteOutput{}, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
		}
		out.GeoJSON = fc
	default:
		d, err := guidance.IntoDirections(g, res.Path, meta)
		if err != nil {
			return RouteOutput{}, server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
		}
		out.Directions = &d
	}

	s.logger.Info("route generated",
		zap.Float64("requested", req.Distance), zap.Float64("length", res.Length),
		zap.Int("attempts", res.Attempts), zap.Int("nodes", res.Path.Len()))
	return out, nil
}

func (s *RouteService) routeError(err error) error {
	switch {
	case errors.Is(err, rod.ErrNoSuchEdge):
		return server.WrapErrorf(err, server.ErrNotFound, "sorry!! the location you entered is not covered on my map :(")
	case errors.Is(err, rod.ErrNotIntersectingRoute):
		return server.WrapErrorf(err, server.ErrBadParamInput, "your location is not on the visited path")
	case errors.Is(err, rod.ErrRoutingFailed):
		return server.WrapErrorf(err, server.ErrNotFound, "empty route! try another distance")
	default:
		s.logger.Error("routing failed", zap.Error(err))
		return server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}
}

// Rate queues a rating for every edge of the route behind tag.
func (s *RouteService) Rate(ctx context.Context, tag string, value float64) error {
	g := s.router.Graph()
	path, err := routetag.DecodeOn(g, tag)
	if err != nil {
		return server.WrapErrorf(err, server.ErrBadParamInput, "tag is not a valid route")
	}
	up, err := rating.NewUpdate(g, path, value)
	if err != nil {
		return server.WrapErrorf(err, server.ErrBadParamInput, "tag is not a valid route")
	}
	if err := s.ratings.Submit(ctx, up); err != nil {
		return server.WrapErrorf(err, server.ErrInternalServerError, "internal server error")
	}
	return nil
}
