package storage

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lintang-b-s/rodroute/pkg/datastructure"
)

// GraphFile is everything the engine needs to rebuild the street graph.
type GraphFile struct {
	Nodes []datastructure.NodeRecord
	Edges []datastructure.EdgeRecord
	Pois  []datastructure.Poi
}

func SaveGraphFile(path string, gf *GraphFile) error {
	buf := new(bytes.Buffer)
	if err := gob.NewEncoder(buf).Encode(gf); err != nil {
		return fmt.Errorf("encode graph file: %w", err)
	}

	compressed := new(bytes.Buffer)
	if err := CompressData(buf.Bytes(), compressed); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(compressed.Bytes()); err != nil {
		return err
	}
	return f.Sync()
}

func LoadGraphFile(path string) (*GraphFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := new(bytes.Buffer)
	if err := DecompressData(f, buf); err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}

	var gf GraphFile
	if err := gob.NewDecoder(buf).Decode(&gf); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &gf, nil
}

func (gf *GraphFile) Graph() (*datastructure.ApplicationGraph, error) {
	return datastructure.NewApplicationGraph(gf.Nodes, gf.Edges, gf.Pois)
}
