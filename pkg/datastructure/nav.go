package datastructure

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/golang/geo/r3"
	"github.com/lintang-b-s/rodroute/pkg/geo"
	"github.com/twpayne/go-polyline"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

func (c Coordinate) Geo() geo.Coordinate {
	return geo.NewCoordinate(c.Lat, c.Lon)
}

func CreatePolyline(path []Coordinate) string {
	coords := make([][]float64, 0, len(path))
	for _, p := range path {
		coords = append(coords, []float64{p.Lat, p.Lon})
	}
	return string(polyline.EncodeCoords(coords))
}

// Tags is a set of scenic features close to an edge or carried by a poi.
type Tags uint8

const (
	TagTourism Tags = 1 << iota
	TagMonument
	TagWater
	TagPark
	TagUniversity
)

var tagNames = []struct {
	tag  Tags
	name string
}{
	{TagTourism, "tourism"},
	{TagMonument, "monument"},
	{TagWater, "water"},
	{TagPark, "park"},
	{TagUniversity, "university"},
}

// TagFromName returns 0 for unknown names.
func TagFromName(name string) Tags {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range tagNames {
		if t.name == name {
			return t.tag
		}
	}
	return 0
}

func TagsFrom(names ...string) Tags {
	var tags Tags
	for _, n := range names {
		tags |= TagFromName(n)
	}
	return tags
}

func (t Tags) Has(tag Tags) bool {
	return t&tag != 0
}

func (t Tags) Names() []string {
	names := make([]string, 0, len(tagNames))
	for _, tn := range tagNames {
		if t.Has(tn.tag) {
			names = append(names, tn.name)
		}
	}
	return names
}

// TagNames lists every known tag name.
func TagNames() []string {
	return Tags(0xff).Names()
}

type Poi struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Tag         string  `json:"tag,omitempty"`
}

// NodeRecord and EdgeRecord are the raw rows a graph is loaded from.
type NodeRecord struct {
	ID     NodeID
	Lat    float64
	Lon    float64
	PoiIDs []uint64
}

type EdgeRecord struct {
	ID     EdgeID
	From   NodeID
	To     NodeID
	Rating float32
	Tags   Tags
}

type PoiNode struct {
	ID   NodeID
	Lat  float64
	Lon  float64
	Pois []*Poi
}

func (n *PoiNode) Coordinate() Coordinate {
	return NewCoordinate(n.Lat, n.Lon)
}

type AnnotatedEdge struct {
	ID     EdgeID
	From   NodeID
	To     NodeID
	Rating float32
	Tags   Tags
	// Dist is the edge length in km.
	Dist float64
	// Average is the edge midpoint on the unit sphere.
	Average r3.Vector
	hits    atomic.Uint64
}

func (e *AnnotatedEdge) Hits() uint64 {
	return e.hits.Load()
}

func (e *AnnotatedEdge) AddHit() {
	e.hits.Add(1)
}

// DecrementHit lowers the hit counter by one unless it is already zero.
func (e *AnnotatedEdge) DecrementHit() bool {
	for {
		prev := e.hits.Load()
		if prev == 0 {
			return false
		}
		if e.hits.CompareAndSwap(prev, prev-1) {
			return true
		}
	}
}

type ApplicationGraph = Graph[*PoiNode, *AnnotatedEdge]

// NewApplicationGraph links pois to nodes and annotates every edge with its length and midpoint.
// Both ends of every edge must be known nodes.
func NewApplicationGraph(nodes []NodeRecord, edges []EdgeRecord, pois []Poi) (*ApplicationGraph, error) {
	poiByID := make(map[uint64]*Poi, len(pois))
	for i := range pois {
		poiByID[pois[i].ID] = &pois[i]
	}

	vertices := make([]Vertex[*PoiNode], 0, len(nodes))
	byID := make(map[NodeID]*PoiNode, len(nodes))
	for _, n := range nodes {
		pn := &PoiNode{ID: n.ID, Lat: n.Lat, Lon: n.Lon}
		for _, pid := range n.PoiIDs {
			if p, ok := poiByID[pid]; ok {
				pn.Pois = append(pn.Pois, p)
			}
		}
		byID[n.ID] = pn
		vertices = append(vertices, Vertex[*PoiNode]{ID: n.ID, Value: pn})
	}

	triples := make([]EdgeTriple[*AnnotatedEdge], 0, len(edges))
	for _, e := range edges {
		from, ok := byID[e.From]
		if !ok {
			return nil, fmt.Errorf("edge %d: from node %d: %w", e.ID, e.From, ErrMissingID)
		}
		to, ok := byID[e.To]
		if !ok {
			return nil, fmt.Errorf("edge %d: to node %d: %w", e.ID, e.To, ErrInvalidGraph)
		}
		ae := &AnnotatedEdge{
			ID:      e.ID,
			From:    e.From,
			To:      e.To,
			Rating:  e.Rating,
			Tags:    e.Tags,
			Dist:    geo.CalculateHaversineDistance(from.Lat, from.Lon, to.Lat, to.Lon),
			Average: geo.As3D(geo.Average(from.Coordinate().Geo(), to.Coordinate().Geo())),
		}
		triples = append(triples, EdgeTriple[*AnnotatedEdge]{From: e.From, Value: ae, To: e.To})
	}
	return NewGraph(vertices, triples)
}

// PathLength sums the edge lengths of a path, in km.
func PathLength(g *ApplicationGraph, p Path) (float64, error) {
	_, edges, err := PathElements(g, p.GetIndices())
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, e := range edges {
		total += e.Dist
	}
	return total, nil
}
