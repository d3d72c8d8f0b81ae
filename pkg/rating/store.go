package rating

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/lintang-b-s/rodroute/pkg/datastructure"
	"go.uber.org/zap"
)

// NeutralRating is the rating of an edge nobody rated yet.
const NeutralRating = 0.5

var keyPrefix = []byte("rating/")

// Store keeps one rating per edge in pebble.
type Store struct {
	db     *pebble.DB
	logger *zap.Logger
}

// OpenStore opens (or creates) the store in dir. An empty dir keeps everything in memory.
func OpenStore(dir string, logger *zap.Logger) (*Store, error) {
	opts := &pebble.Options{}
	if dir == "" {
		opts.FS = vfs.NewMem()
		dir = "ratings"
	}
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("open rating store %q: %w", dir, err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func edgeKey(id datastructure.EdgeID) []byte {
	key := make([]byte, len(keyPrefix)+8)
	copy(key, keyPrefix)
	binary.BigEndian.PutUint64(key[len(keyPrefix):], uint64(id))
	return key
}

// Get returns NeutralRating for edges without a rating.
func (s *Store) Get(id datastructure.EdgeID) (float64, error) {
	val, closer, err := s.db.Get(edgeKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return NeutralRating, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get rating of edge %d: %w", id, err)
	}
	defer closer.Close()
	if len(val) != 8 {
		return 0, fmt.Errorf("rating of edge %d has %d bytes", id, len(val))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(val)), nil
}

// Apply moves the rating of every edge of u towards u.Rating:
//
//	rating = rating*(1-influence) + u.Rating*influence
func (s *Store) Apply(u Update, influence float64) error {
	batch := s.db.NewBatch()
	defer batch.Close()

	updated := make(map[datastructure.EdgeID]float64, len(u.Edges))
	for _, id := range u.Edges {
		current, ok := updated[id]
		if !ok {
			var err error
			current, err = s.Get(id)
			if err != nil {
				return err
			}
		}
		next := current*(1-influence) + u.Rating*influence
		updated[id] = next

		val := make([]byte, 8)
		binary.LittleEndian.PutUint64(val, math.Float64bits(next))
		if err := batch.Set(edgeKey(id), val, nil); err != nil {
			return fmt.Errorf("set rating of edge %d: %w", id, err)
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("commit ratings: %w", err)
	}
	s.logger.Debug("ratings stored", zap.Int("edges", len(updated)), zap.Float64("rating", u.Rating))
	return nil
}

// LoadInto copies every stored rating onto the matching edge of g and returns how many edges were
// updated. Ratings of edges g does not know are skipped.
func (s *Store) LoadInto(g *datastructure.ApplicationGraph) (int, error) {
	byID := make(map[datastructure.EdgeID]*datastructure.AnnotatedEdge, g.NumEdges())
	g.ForEachEdge(func(_, _ datastructure.NodeID, e *datastructure.AnnotatedEdge) {
		byID[e.ID] = e
	})

	upper := append([]byte{}, keyPrefix...)
	upper[len(upper)-1]++
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: keyPrefix, UpperBound: upper})
	if err != nil {
		return 0, fmt.Errorf("iterate ratings: %w", err)
	}
	defer iter.Close()

	loaded := 0
	for iter.First(); iter.Valid(); iter.Next() {
		key, val := iter.Key(), iter.Value()
		if len(key) != len(keyPrefix)+8 || len(val) != 8 {
			continue
		}
		id := datastructure.EdgeID(binary.BigEndian.Uint64(key[len(keyPrefix):]))
		e, ok := byID[id]
		if !ok {
			continue
		}
		e.Rating = float32(math.Float64frombits(binary.LittleEndian.Uint64(val)))
		loaded++
	}
	if err := iter.Error(); err != nil {
		return loaded, fmt.Errorf("iterate ratings: %w", err)
	}
	s.logger.Info("ratings loaded", zap.Int("edges", loaded))
	return loaded, nil
}
