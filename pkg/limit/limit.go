package limit

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/lintang-b-s/rodroute/pkg/datastructure"
	"go.uber.org/zap"
)

// Limit counts how often every edge ended up in a generated route. The counts make popular edges
// more expensive for later searches. Once the total gets past factor * edge count, a background
// decay lowers every counter by one.
type Limit struct {
	graph    *datastructure.ApplicationGraph
	hits     atomic.Int64
	maxHits  int64
	decaying atomic.Bool
	trigger  chan struct{}
	done     chan struct{}
	wg       sync.WaitGroup
	logger   *zap.Logger
}

func NewLimit(graph *datastructure.ApplicationGraph, factor float64, logger *zap.Logger) *Limit {
	l := &Limit{
		graph:   graph,
		maxHits: int64(float64(graph.NumEdges()) * factor),
		trigger: make(chan struct{}, 1),
		done:    make(chan struct{}),
		logger:  logger,
	}
	l.wg.Add(1)
	go l.resetter()
	return l
}

func (l *Limit) resetter() {
	defer l.wg.Done()
	for {
		select {
		case <-l.done:
			return
		case <-l.trigger:
			l.logger.Info("decaying edge hits")
			removed := Reset(l.graph)
			l.hits.Add(-int64(removed))
			l.decaying.Store(false)
		}
	}
}

// Improve marks every edge of p as used once more.
func (l *Limit) Improve(p datastructure.Path) error {
	_, edges, err := datastructure.PathElements(l.graph, p.GetIndices())
	if err != nil {
		return fmt.Errorf("improve: %w", err)
	}
	for _, e := range edges {
		e.AddHit()
	}

	count := l.hits.Add(int64(len(edges))) - int64(len(edges))
	l.logger.Debug("edge hits", zap.Int64("count", count), zap.Int64("max", l.maxHits))
	if count > l.maxHits && l.decaying.CompareAndSwap(false, true) {
		l.trigger <- struct{}{}
	}
	return nil
}

func (l *Limit) Hits() int64 {
	return l.hits.Load()
}

// Close stops the decay worker.
func (l *Limit) Close() {
	close(l.done)
	l.wg.Wait()
}

// Reset subtracts one from every non zero edge counter and returns how many hits were removed.
func Reset(graph *datastructure.ApplicationGraph) uint64 {
	var counter uint64
	graph.ForEachEdge(func(_, _ datastructure.NodeID, e *datastructure.AnnotatedEdge) {
		if e.DecrementHit() {
			counter++
		}
	})
	return counter
}
