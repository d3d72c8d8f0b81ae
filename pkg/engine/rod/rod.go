package rod

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/lintang-b-s/rodroute/pkg/datastructure"
	"github.com/lintang-b-s/rodroute/pkg/engine/routingalgorithm"
	"github.com/lintang-b-s/rodroute/pkg/geo"
	"github.com/lintang-b-s/rodroute/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

// EdgeLocator finds the edge closest to a coordinate.
type EdgeLocator interface {
	NearestEdge(ctx context.Context, lat, lon float64) (from, to datastructure.NodeID, err error)
}

type Router struct {
	graph   *datastructure.ApplicationGraph
	locator EdgeLocator
	params  Hyperparameters
	seed    func() uint64
	logger  *zap.Logger
}

type RouterOption func(*Router)

// WithSeed makes every search draw from a fixed sequence of seeds. The sequence is shared by
// concurrent Route calls.
func WithSeed(seed uint64) RouterOption {
	return func(r *Router) {
		var mu sync.Mutex
		src := rand.New(rand.NewSource(seed))
		r.seed = func() uint64 {
			mu.Lock()
			defer mu.Unlock()
			return src.Uint64()
		}
	}
}

func NewRouter(graph *datastructure.ApplicationGraph, locator EdgeLocator, params Hyperparameters,
	logger *zap.Logger, opts ...RouterOption) *Router {
	r := &Router{
		graph:   graph,
		locator: locator,
		params:  params,
		seed:    rand.Uint64,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) newRand() *rand.Rand {
	return rand.New(rand.NewSource(r.seed()))
}

func (r *Router) Graph() *datastructure.ApplicationGraph {
	return r.graph
}

func (r *Router) getEdge(ctx context.Context, pos geo.Coordinate) (*datastructure.AnnotatedEdge, error) {
	from, to, err := r.locator.NearestEdge(ctx, pos.Lat, pos.Lon)
	if err != nil {
		return nil, &NoSuchEdgeError{Lat: pos.Lat, Lon: pos.Lon, Err: err}
	}
	edge, ok := r.graph.GetEdge(from, to)
	if !ok {
		return nil, &NoSuchEdgeError{Lat: pos.Lat, Lon: pos.Lon}
	}
	return edge, nil
}

// createField runs a rod search from start. A poison path turns on the line fields between its
// first and last node. A failed search is logged and gives an empty tree.
func (r *Router) createField(start datastructure.NodeID, endings map[datastructure.NodeID]Distance,
	meta *Metadata, closing bool, skip *datastructure.NodeID, poisonPath *datastructure.Path,
	rng *rand.Rand) *routingalgorithm.SearchTree[Distance] {
	ctrl := &rodController{
		params:        r.params,
		maxLength:     meta.RequestedLength,
		poisonerLarge: NoPoison{},
		poisonerSmall: NoPoison{},
		endings:       endings,
		closing:       closing,
		modifier:      meta.TagConverter,
		pointToSkip:   skip,
		rng:           rng,
	}

	var first, last *datastructure.PoiNode
	if poisonPath != nil && !poisonPath.IsEmpty() {
		var okFirst, okLast bool
		first, okFirst = r.graph.Get(poisonPath.First())
		last, okLast = r.graph.Get(poisonPath.Last())
		if !okFirst || !okLast {
			r.logger.Warn("poison path leaves the graph, searching without poison")
			first, last = nil, nil
		}
	}

	if first != nil && last != nil {
		largeRandom := util.Uniform(rng, r.params.RandomMin, r.params.RandomMax)
		smallRandom := largeRandom - r.params.RandomIncrease

		from, to := first.Coordinate().Geo(), last.Coordinate().Geo()
		minDistance := geo.CalculateHaversineDistance(from.Lat, from.Lon, to.Lat, to.Lon)

		reqLength := meta.RequestedLength
		if !closing {
			walked, err := datastructure.PathLength(r.graph, *poisonPath)
			if err != nil {
				r.logger.Warn("poison path is broken", zap.Error(err))
			}
			reqLength -= walked
		}
		if reqLength < minDistance*1.2 {
			ctrl.maxLength = minDistance * 1.2
		} else {
			ctrl.maxLength = reqLength
		}

		ctrl.poisonerLarge = NewPoisonLine(from, to, largeRandom,
			util.Uniform(rng, r.params.RandomMinLin, r.params.RandomMaxLin))
		ctrl.poisonerSmall = NewPoisonLine(from, to, smallRandom,
			util.Uniform(rng, r.params.RandomMinLin, r.params.RandomMaxLin))
	}

	tree, err := routingalgorithm.Generate[*datastructure.PoiNode, *datastructure.AnnotatedEdge, Distance](
		r.graph, start, Def(), ctrl, routingalgorithm.WithMaxArenaSize(r.params.MaxArena))
	if err != nil {
		r.logger.Warn("rod search failed", zap.Uint64("start", uint64(start)), zap.Error(err))
		return &routingalgorithm.SearchTree[Distance]{}
	}
	return tree
}

// CreateRod grows the outbound half of a round trip from the edge closest to pos. In return mode
// (meta.OriginalRoute set) the visited route is truncated where it meets that edge, and the search
// is discouraged from turning back along it.
func (r *Router) CreateRod(ctx context.Context, pos geo.Coordinate, meta *Metadata) (datastructure.AnnotatedPath[Distance], error) {
	edge, err := r.getEdge(ctx, pos)
	if err != nil {
		return datastructure.AnnotatedPath[Distance]{}, err
	}

	start := edge.From
	var skip *datastructure.NodeID
	if meta.OriginalRoute != nil {
		occurrences := meta.OriginalRoute.GetFirstOccurring([]datastructure.NodeID{edge.From, edge.To})
		if len(occurrences) == 0 {
			return datastructure.AnnotatedPath[Distance]{}, &NotIntersectingRouteError{From: edge.From, To: edge.To}
		}
		x := occurrences[0]
		start = edge.From + edge.To - x
		skip = &x
		if !meta.OriginalRoute.Truncate(x) {
			return datastructure.AnnotatedPath[Distance]{}, &NotIntersectingRouteError{From: edge.From, To: edge.To}
		}
	}

	rng := r.newRand()
	tree := r.createField(start, map[datastructure.NodeID]Distance{}, meta, false, skip, meta.OriginalRoute, rng)

	pathLength := 0.0
	if meta.OriginalRoute != nil {
		pathLength, err = datastructure.PathLength(r.graph, *meta.OriginalRoute)
		if err != nil {
			return datastructure.AnnotatedPath[Distance]{}, fmt.Errorf("visited route: %w", err)
		}
	}

	selector := NewSelector[int](rng)
	for _, ending := range tree.Endpoints {
		m := tree.Actions[ending].Cost
		if m.ActualLength+pathLength < meta.RequestedLength/2.0 {
			continue
		}
		selector.Update(m.MinorValue*math.Exp(-m.IllegalNodeHits*5.0+
			r.params.EventImportance*m.PotentialTrack/m.ActualLength), ending)
	}

	last, ok := selector.Decompose()
	if !ok {
		return datastructure.AnnotatedPath[Distance]{}, ErrNothingSelected
	}
	return tree.IntoAnnotatedNodes(last), nil
}

// CloseRod searches from the edge closest to pos back to one of the nodes of the outbound rod, and
// returns the visited route followed by the full loop together with the loop length in km.
func (r *Router) CloseRod(ctx context.Context, pos geo.Coordinate, meta *Metadata,
	path datastructure.AnnotatedPath[Distance]) (datastructure.Path, float64, error) {
	edge, err := r.getEdge(ctx, pos)
	if err != nil {
		return datastructure.Path{}, 0, err
	}
	start := edge.From

	originalRoute := datastructure.NewPath(nil)
	if meta.OriginalRoute != nil {
		originalRoute = *meta.OriginalRoute
	}
	walked, err := datastructure.PathLength(r.graph, originalRoute)
	if err != nil {
		return datastructure.Path{}, 0, fmt.Errorf("visited route: %w", err)
	}

	closingMeta := *meta
	closingMeta.RequestedLength = meta.RequestedLength - walked
	requested := closingMeta.RequestedLength

	endings := path.AsMap()
	poisonPath := path.GetPathFiltered(func(d Distance) bool {
		return d.ActualLength >= requested*0.125 && d.ActualLength <= requested*0.375
	})

	rng := r.newRand()
	tree := r.createField(start, endings, &closingMeta, true, nil, &poisonPath, rng)

	selector := NewSelector[int](rng)
	selectorLarge := NewSelector[int](rng)
	count := 0
	for _, ending := range tree.Endpoints {
		if ending == 0 {
			continue
		}
		a := tree.Actions[ending]
		met := endings[a.Node]
		totalDistance := a.Cost.ActualLength + met.ActualLength
		events := a.Cost.PotentialTrack + met.PotentialTrack
		count++
		if totalDistance <= requested {
			selector.Update(math.Exp(totalDistance+r.params.EventImportance*events/totalDistance), ending)
		} else {
			selectorLarge.Update(math.Exp(-totalDistance+r.params.EventImportance*events/totalDistance), ending)
		}
	}
	r.logger.Debug("closing candidates", zap.Int("selected", count), zap.Int("endpoints", len(tree.Endpoints)))

	longest, ok := selector.Decompose()
	if !ok {
		longest, ok = selectorLarge.Decompose()
	}
	if !ok {
		return datastructure.Path{}, 0, ErrNothingSelected
	}

	a := tree.Actions[longest]
	trueLength := a.Cost.ActualLength + endings[a.Node].ActualLength
	finalPath := path.AsPath().Join(tree.IntoNodes(longest))
	return originalRoute.Append(finalPath), trueLength, nil
}

type RouteResult struct {
	Path datastructure.Path
	// Length of the newly generated part, in km.
	Length   float64
	Attempts int
}

// Route builds a round trip starting near from and ending near to. Outbound and closing searches
// are retried with fresh random hyperparameters up to MaxTries times.
func (r *Router) Route(ctx context.Context, from, to geo.Coordinate, meta *Metadata) (RouteResult, error) {
	maxTries := r.params.MaxTries
	if maxTries <= 0 {
		maxTries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxTries; attempt++ {
		if err := ctx.Err(); err != nil {
			return RouteResult{}, err
		}

		rod, err := r.CreateRod(ctx, from, meta)
		if err != nil {
			if errors.Is(err, ErrNoSuchEdge) || errors.Is(err, ErrNotIntersectingRoute) {
				return RouteResult{}, err
			}
			lastErr = err
			continue
		}

		path, length, err := r.CloseRod(ctx, to, meta, rod)
		if err != nil {
			if errors.Is(err, ErrNoSuchEdge) {
				return RouteResult{}, err
			}
			lastErr = err
			continue
		}
		return RouteResult{Path: path, Length: length, Attempts: attempt}, nil
	}
	return RouteResult{}, fmt.Errorf("%w after %d attempts: %w", ErrRoutingFailed, maxTries, lastErr)
}
