package kv

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/dgraph-io/badger/v4"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lintang-b-s/rodroute/pkg/concurrent"
	"github.com/lintang-b-s/rodroute/pkg/datastructure"
	"github.com/lintang-b-s/rodroute/pkg/geo"
	"github.com/uber/h3-go/v4"
	"go.uber.org/zap"
)

var (
	ErrEdgesNotFound = errors.New("edges not found")
)

const (
	h3Resolution = 9
	batchSize    = 1000
	cacheSize    = 4096
	maxDiskLevel = 10
)

type KVDB struct {
	db     *badger.DB
	cache  *lru.Cache[string, []KVEdge]
	logger *zap.Logger
}

func NewKVDB(db *badger.DB, logger *zap.Logger) (*KVDB, error) {
	cache, err := lru.New[string, []KVEdge](cacheSize)
	if err != nil {
		return nil, err
	}
	return &KVDB{db: db, cache: cache, logger: logger}, nil
}

// BuildH3IndexedEdges buckets every edge of g into the h3 cell of its midpoint and stores the buckets.
func (k *KVDB) BuildH3IndexedEdges(ctx context.Context, g *datastructure.ApplicationGraph) error {
	k.logger.Info("creating & saving h3 indexed street to key-value db...")

	kv := make(map[string][]KVEdge)
	var iterErr error
	g.ForEachEdge(func(from, to datastructure.NodeID, e *datastructure.AnnotatedEdge) {
		if iterErr != nil {
			return
		}
		if err := ctx.Err(); err != nil {
			iterErr = err
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
		center := geo.Average(fromNode.Coordinate().Geo(), toNode.Coordinate().Geo())
		cell := h3.LatLngToCell(h3.NewLatLng(center.Lat, center.Lon), h3Resolution)
		key := cell.String()
		kv[key] = append(kv[key], KVEdge{
			CenterLoc:  [2]float64{center.Lat, center.Lon},
			FromLoc:    [2]float64{fromNode.Lat, fromNode.Lon},
			ToLoc:      [2]float64{toNode.Lat, toNode.Lon},
			FromNodeID: from,
			ToNodeID:   to,
		})
	})
	if iterErr != nil {
		return fmt.Errorf("build h3 index: %w", iterErr)
	}

	batches := make([][]batchData, 0, len(kv)/batchSize+1)
	batch := make([]batchData, 0, batchSize)
	for key, value := range kv {
		batch = append(batch, batchData{key: key, value: value})
		if len(batch) == batchSize {
			batches = append(batches, batch)
			batch = make([]batchData, 0, batchSize)
		}
	}
	if len(batch) > 0 {
		batches = append(batches, batch)
	}

	workers := concurrent.NewWorkerPool[[]batchData, encodedBatch](runtime.NumCPU(), len(batches))
	for _, b := range batches {
		workers.AddJob(b)
	}
	workers.Close()
	workers.Start(encodeBatch)
	workers.Wait()

	var firstErr error
	for res := range workers.CollectResults() {
		if firstErr != nil {
			continue
		}
		if res.err != nil {
			firstErr = res.err
			continue
		}
		firstErr = k.saveBatchEdges(ctx, res.rows)
	}
	if firstErr != nil {
		return firstErr
	}

	k.logger.Info("creating & saving h3 indexed street to key-value db done", zap.Int("cells", len(kv)))
	return nil
}

type batchData struct {
	key   string
	value []KVEdge
}

type encodedRow struct {
	key []byte
	val []byte
}

type encodedBatch struct {
	rows []encodedRow
	err  error
}

func encodeBatch(batch []batchData) encodedBatch {
	rows := make([]encodedRow, 0, len(batch))
	for _, data := range batch {
		val, err := encodeEdges(data.value)
		if err != nil {
			return encodedBatch{err: fmt.Errorf("cell %s: %w", data.key, err)}
		}
		rows = append(rows, encodedRow{key: []byte(data.key), val: val})
	}
	return encodedBatch{rows: rows}
}

func (k *KVDB) saveBatchEdges(ctx context.Context, rows []encodedRow) error {
	batch := k.db.NewWriteBatch()
	defer batch.Cancel()

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := batch.Set(row.key, row.val); err != nil {
			return err
		}
	}

	if err := batch.Flush(); err != nil {
		k.logger.Error("error saving edges", zap.Error(err))
		return err
	}
	k.logger.Debug("saved edge cells", zap.Int("count", len(rows)))
	return nil
}

// getCell returns the edges of one h3 cell. A missing cell is empty, not an error.
func (k *KVDB) getCell(cell h3.Cell) ([]KVEdge, error) {
	key := cell.String()
	if edges, ok := k.cache.Get(key); ok {
		return edges, nil
	}

	var val []byte
	err := k.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	edges, err := loadEdges(val)
	if err != nil {
		return nil, err
	}
	k.cache.Add(key, edges)
	return edges, nil
}

func (k *KVDB) getCells(ctx context.Context, cells []h3.Cell, skip h3.Cell) ([]KVEdge, error) {
	edges := []KVEdge{}
	for _, c := range cells {
		if c == skip {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		streets, err := k.getCell(c)
		if err != nil {
			return nil, err
		}
		edges = append(edges, streets...)
	}
	return edges, nil
}

// GetNearestStreetsFromPointCoord looks in the cell of the point first, then in a 1 km ring around
// it, then in ever larger grid disks.
func (k *KVDB) GetNearestStreetsFromPointCoord(ctx context.Context, lat, lon float64) ([]KVEdge, error) {
	cell := h3.LatLngToCell(h3.NewLatLng(lat, lon), h3Resolution)

	edges, err := k.getCell(cell)
	if err != nil {
		return nil, err
	}

	if len(edges) == 0 {
		edges, err = k.getCells(ctx, kRingIndexesArea(lat, lon, 1), cell)
		if err != nil {
			return nil, err
		}
	}

	for lev := 1; lev <= maxDiskLevel && len(edges) == 0; lev++ {
		edges, err = k.getCells(ctx, h3.GridDisk(cell, lev), cell)
		if err != nil {
			return nil, err
		}
	}

	if len(edges) == 0 {
		return nil, ErrEdgesNotFound
	}
	return edges, nil
}

// NearestEdge picks the stored segment closest to the point.
func (k *KVDB) NearestEdge(ctx context.Context, lat, lon float64) (datastructure.NodeID, datastructure.NodeID, error) {
	edges, err := k.GetNearestStreetsFromPointCoord(ctx, lat, lon)
	if err != nil {
		return 0, 0, fmt.Errorf("nearest edge at (%f, %f): %w", lat, lon, err)
	}

	p := geo.NewCoordinate(lat, lon)
	best, bestDist := -1, math.Inf(1)
	for i, e := range edges {
		d := geo.DistanceToSegment(p, geo.NewCoordinate(e.FromLoc[0], e.FromLoc[1]), geo.NewCoordinate(e.ToLoc[0], e.ToLoc[1]))
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return 0, 0, fmt.Errorf("nearest edge at (%f, %f): %w", lat, lon, ErrEdgesNotFound)
	}
	return edges[best].FromNodeID, edges[best].ToNodeID, nil
}

func kRingIndexesArea(lat, lon, searchRadiusKm float64) []h3.Cell {
	home := h3.NewLatLng(lat, lon)
	origin := h3.LatLngToCell(home, h3Resolution)
	originArea := h3.CellAreaKm2(origin)
	searchArea := math.Pi * searchRadiusKm * searchRadiusKm

	radius := 0
	diskArea := originArea

	for diskArea < searchArea {
		radius++
		cellCount := float64(3*radius*(radius+1) + 1)
		diskArea = cellCount * originArea
	}

	return h3.GridDisk(origin, radius)
}

// Empty reports whether no h3 cell has been stored yet.
func (k *KVDB) Empty() (bool, error) {
	empty := true
	err := k.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		it.Rewind()
		empty = !it.Valid()
		return nil
	})
	return empty, err
}

func (k *KVDB) Close() error {
	return k.db.Close()
}
