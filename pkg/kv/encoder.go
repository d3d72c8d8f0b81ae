package kv

import (
	"fmt"

	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"
	"github.com/lintang-b-s/rodroute/pkg/datastructure"
)

// KVEdge is one directed street segment stored in an h3 cell bucket.
type KVEdge struct {
	CenterLoc  [2]float64 // [lat, lon]
	FromLoc    [2]float64
	ToLoc      [2]float64
	FromNodeID datastructure.NodeID
	ToNodeID   datastructure.NodeID
}

func encodeEdges(sw []KVEdge) ([]byte, error) {
	bb, err := binary.Marshal(sw)
	if err != nil {
		return nil, fmt.Errorf("encode edges: %w", err)
	}
	return compress(bb)
}

func loadEdges(bbCompressed []byte) ([]KVEdge, error) {
	if len(bbCompressed) == 0 {
		return nil, nil
	}
	bb, err := decompress(bbCompressed)
	if err != nil {
		return nil, err
	}
	var sw []KVEdge
	if err := binary.Unmarshal(bb, &sw); err != nil {
		return nil, fmt.Errorf("decode edges: %w", err)
	}
	return sw, nil
}

func compress(bb []byte) ([]byte, error) {
	var bbCompressed []byte
	bbCompressed, err := zstd.Compress(bbCompressed, bb)
	if err != nil {
		return []byte{}, err
	}
	return bbCompressed, nil
}

func decompress(bbCompressed []byte) ([]byte, error) {
	var bb []byte
	bb, err := zstd.Decompress(bb, bbCompressed)
	if err != nil {
		return []byte{}, err
	}
	return bb, nil
}
