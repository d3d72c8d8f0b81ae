package rating

import (
	"context"
	"fmt"
	"sync"

	"github.com/lintang-b-s/rodroute/pkg/datastructure"
	"go.uber.org/zap"
)

// Update rates every edge of a walked route.
type Update struct {
	Edges  []datastructure.EdgeID
	Rating float64
}

func NewUpdate(g *datastructure.ApplicationGraph, route datastructure.Path, rating float64) (Update, error) {
	_, edges, err := datastructure.PathElements(g, route.GetIndices())
	if err != nil {
		return Update{}, fmt.Errorf("rate route: %w", err)
	}
	ids := make([]datastructure.EdgeID, len(edges))
	for i, e := range edges {
		ids[i] = e.ID
	}
	return Update{Edges: ids, Rating: rating}, nil
}

// Updater applies updates one at a time in the background.
type Updater struct {
	store     *Store
	influence float64
	updates   chan Update
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	logger    *zap.Logger
}

func NewUpdater(store *Store, influence float64, queueSize int, logger *zap.Logger) *Updater {
	return &Updater{
		store:     store,
		influence: influence,
		updates:   make(chan Update, queueSize),
		logger:    logger,
	}
}

// Start consumes updates until ctx is done or Close is called.
func (u *Updater) Start(ctx context.Context) {
	ctx, u.cancel = context.WithCancel(ctx)
	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case up := <-u.updates:
				if err := u.store.Apply(up, u.influence); err != nil {
					u.logger.Error("failed to store rating", zap.Error(err))
				}
			}
		}
	}()
}

// Submit queues an update, waiting for room until ctx is done.
func (u *Updater) Submit(ctx context.Context, up Update) error {
	select {
	case u.updates <- up:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until the consumer started by Start has returned.
func (u *Updater) Wait() {
	u.wg.Wait()
}

// Close stops the consumer and waits for it. Updates still queued are dropped.
func (u *Updater) Close() {
	if u.cancel != nil {
		u.cancel()
	}
	u.wg.Wait()
}
