package rating

import (
	"context"
	"testing"
	"time"

	"github.com/lintang-b-s/rodroute/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMemStore(t *testing.T) *Store {
	s, err := OpenStore("", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreApply(t *testing.T) {
	s := newMemStore(t)

	r, err := s.Get(7)
	require.NoError(t, err)
	assert.Equal(t, NeutralRating, r)

	require.NoError(t, s.Apply(Update{Edges: []datastructure.EdgeID{7, 8}, Rating: 1.0}, 0.5))
	r, err = s.Get(7)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, r, 1e-12)

	require.NoError(t, s.Apply(Update{Edges: []datastructure.EdgeID{7}, Rating: 0.0}, 0.5))
	r, err = s.Get(7)
	require.NoError(t, err)
	assert.InDelta(t, 0.375, r, 1e-12)

	r, err = s.Get(8)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, r, 1e-12)
}

func TestStoreApplyRepeatedEdge(t *testing.T) {
	s := newMemStore(t)
	require.NoError(t, s.Apply(Update{Edges: []datastructure.EdgeID{3, 3}, Rating: 1.0}, 0.5))
	r, err := s.Get(3)
	require.NoError(t, err)
	assert.InDelta(t, 0.875, r, 1e-12)
}

func TestNewUpdate(t *testing.T) {
	g, err := datastructure.NewApplicationGraph(
		[]datastructure.NodeRecord{{ID: 1, Lat: 51.05, Lon: 3.72}, {ID: 2, Lat: 51.051, Lon: 3.72}},
		[]datastructure.EdgeRecord{{ID: 10, From: 1, To: 2}, {ID: 11, From: 2, To: 1}},
		nil)
	require.NoError(t, err)

	u, err := NewUpdate(g, datastructure.NewPath([]datastructure.NodeID{1, 2, 1}), 0.9)
	require.NoError(t, err)
	assert.Equal(t, []datastructure.EdgeID{10, 11}, u.Edges)
	assert.Equal(t, 0.9, u.Rating)

	_, err = NewUpdate(g, datastructure.NewPath([]datastructure.NodeID{1, 3}), 0.9)
	assert.ErrorIs(t, err, datastructure.ErrBrokenPath)
}

func TestUpdater(t *testing.T) {
	s := newMemStore(t)
	u := NewUpdater(s, 0.5, 4, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	u.Start(ctx)

	require.NoError(t, u.Submit(context.Background(), Update{Edges: []datastructure.EdgeID{1}, Rating: 1.0}))
	assert.Eventually(t, func() bool {
		r, err := s.Get(1)
		return err == nil && r == 0.75
	}, time.Second, 5*time.Millisecond)

	cancel()
	u.Wait()
}

func TestUpdaterCloseWithLiveContext(t *testing.T) {
	s := newMemStore(t)
	u := NewUpdater(s, 0.5, 4, zap.NewNop())
	// the parent context is never cancelled
	u.Start(context.Background())

	done := make(chan struct{})
	go func() {
		u.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not stop the updater")
	}
}

func TestUpdaterSubmitCancelled(t *testing.T) {
	s := newMemStore(t)
	u := NewUpdater(s, 0.5, 0, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := u.Submit(ctx, Update{Edges: []datastructure.EdgeID{1}, Rating: 1.0})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadInto(t *testing.T) {
	g, err := datastructure.NewApplicationGraph(
		[]datastructure.NodeRecord{{ID: 1, Lat: 51.05, Lon: 3.72}, {ID: 2, Lat: 51.051, Lon: 3.72}},
		[]datastructure.EdgeRecord{{ID: 10, From: 1, To: 2, Rating: 0.5}, {ID: 11, From: 2, To: 1, Rating: 0.5}},
		nil)
	require.NoError(t, err)

	s := newMemStore(t)
	require.NoError(t, s.Apply(Update{Edges: []datastructure.EdgeID{10, 99}, Rating: 1.0}, 0.5))

	n, err := s.LoadInto(g)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	e, ok := g.GetEdge(1, 2)
	require.True(t, ok)
	assert.InDelta(t, 0.75, e.Rating, 1e-6)
	e, ok = g.GetEdge(2, 1)
	require.True(t, ok)
	assert.InDelta(t, 0.5, e.Rating, 1e-6)
}
