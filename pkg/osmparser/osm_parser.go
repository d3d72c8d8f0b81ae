package osmparser

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhconnelly/rtreego"
	"github.com/k0kubun/go-ansi"
	"github.com/lintang-b-s/rodroute/pkg/datastructure"
	"github.com/lintang-b-s/rodroute/pkg/storage"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/schollz/progressbar/v3"
	"github.com/uber/h3-go/v4"
	"go.uber.org/zap"
)

const (
	poiResolution = 10
	// neutral rating of a fresh edge
	defaultRating = 0.5
)

// scanner is implemented by both osmpbf.Scanner and osmxml.Scanner.
type scanner interface {
	Scan() bool
	Object() osm.Object
	Err() error
	Close() error
}

type nodeCoord struct {
	lat float64
	lon float64
}

type area struct {
	nodes []osm.NodeID
	tags  datastructure.Tags
}

type OsmParser struct {
	// wayNodeMap holds every node used by a walkable way
	wayNodeMap      map[osm.NodeID]struct{}
	areaNodeMap     map[osm.NodeID]struct{}
	areas           []area
	acceptedNodeMap map[osm.NodeID]nodeCoord
	nodeIDMap       map[osm.NodeID]datastructure.NodeID
	nodes           []datastructure.NodeRecord
	edges           []datastructure.EdgeRecord
	pois            []datastructure.Poi
	acceptedWays    int

	progress io.Writer
	logger   *zap.Logger
}

type Option func(*OsmParser)

// WithProgressWriter sends the progress bars to w instead of the terminal.
func WithProgressWriter(w io.Writer) Option {
	return func(p *OsmParser) {
		p.progress = w
	}
}

func NewOSMParser(logger *zap.Logger, opts ...Option) *OsmParser {
	p := &OsmParser{
		wayNodeMap:      make(map[osm.NodeID]struct{}),
		areaNodeMap:     make(map[osm.NodeID]struct{}),
		acceptedNodeMap: make(map[osm.NodeID]nodeCoord),
		nodeIDMap:       make(map[osm.NodeID]datastructure.NodeID),
		progress:        ansi.NewAnsiStdout(),
		logger:          logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads an .osm.pbf (or .osm xml) file twice: first to learn which nodes belong to walkable
// ways and scenic areas, then to collect their coordinates and build the graph.
func (p *OsmParser) Parse(ctx context.Context, mapFile string) (*storage.GraphFile, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	xml := strings.HasSuffix(filepath.Base(mapFile), ".osm")
	return p.ParseReader(ctx, f, xml)
}

// ParseReader parses from r, which must support seeking back to the start for the second pass.
func (p *OsmParser) ParseReader(ctx context.Context, r io.ReadSeeker, xml bool) (*storage.GraphFile, error) {
	open := func() scanner {
		if xml {
			return osmxml.New(ctx, r)
		}
		// must not be parallel
		return osmpbf.New(ctx, r, 1)
	}

	if err := p.scan(open(), p.firstPass); err != nil {
		return nil, fmt.Errorf("first pass: %w", err)
	}
	p.logger.Info("read openstreetmap ways", zap.Int("walkable", p.acceptedWays), zap.Int("areas", len(p.areas)))

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	bar := p.newBar(p.acceptedWays, "[cyan][1/2][reset] building walking graph ...")
	if err := p.scan(open(), func(o osm.Object) {
		p.secondPass(o, bar)
	}); err != nil {
		return nil, fmt.Errorf("second pass: %w", err)
	}
	_ = bar.Finish()

	p.tagEdgesInAreas()
	p.attachPois()

	p.logger.Info("walking graph done",
		zap.Int("nodes", len(p.nodes)), zap.Int("edges", len(p.edges)), zap.Int("pois", len(p.pois)))

	return &storage.GraphFile{Nodes: p.nodes, Edges: p.edges, Pois: p.pois}, nil
}

func (p *OsmParser) newBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.progress),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func (p *OsmParser) scan(s scanner, fn func(o osm.Object)) error {
	defer s.Close()
	for s.Scan() {
		fn(s.Object())
	}
	return s.Err()
}

func (p *OsmParser) firstPass(o osm.Object) {
	way, ok := o.(*osm.Way)
	if !ok {
		return
	}
	if acceptOsmWay(way) {
		p.acceptedWays++
		for _, n := range way.Nodes {
			p.wayNodeMap[n.ID] = struct{}{}
		}
		return
	}
	if isArea(way) {
		a := area{nodes: make([]osm.NodeID, 0, len(way.Nodes)), tags: tagsOf(way.Tags)}
		for _, n := range way.Nodes {
			a.nodes = append(a.nodes, n.ID)
			p.areaNodeMap[n.ID] = struct{}{}
		}
		p.areas = append(p.areas, a)
	}
}

func (p *OsmParser) secondPass(o osm.Object, bar *progressbar.ProgressBar) {
	switch obj := o.(type) {
	case *osm.Node:
		_, onWay := p.wayNodeMap[obj.ID]
		_, onArea := p.areaNodeMap[obj.ID]
		if onWay || onArea {
			p.acceptedNodeMap[obj.ID] = nodeCoord{lat: obj.Lat, lon: obj.Lon}
		}
		p.processPoi(obj)
	case *osm.Way:
		if !acceptOsmWay(obj) {
			return
		}
		p.processWay(obj)
		_ = bar.Add(1)
	}
}

func (p *OsmParser) processPoi(node *osm.Node) {
	name := node.Tags.Find("name")
	tags := tagsOf(node.Tags)
	if name == "" || tags == 0 {
		return
	}
	p.pois = append(p.pois, datastructure.Poi{
		ID:          uint64(node.ID),
		Name:        name,
		Description: node.Tags.Find("description"),
		Lat:         node.Lat,
		Lon:         node.Lon,
		Tag:         tags.Names()[0],
	})
}

func (p *OsmParser) graphNode(id osm.NodeID) (datastructure.NodeID, bool) {
	if gid, ok := p.nodeIDMap[id]; ok {
		return gid, true
	}
	coord, ok := p.acceptedNodeMap[id]
	if !ok {
		// node outside the extract
		return 0, false
	}
	gid := datastructure.NodeID(len(p.nodes))
	p.nodeIDMap[id] = gid
	p.nodes = append(p.nodes, datastructure.NodeRecord{ID: gid, Lat: coord.lat, Lon: coord.lon})
	return gid, true
}

// processWay adds both directions of every segment of a walkable way.
func (p *OsmParser) processWay(way *osm.Way) {
	tags := tagsOf(way.Tags)
	prev, prevOK := p.graphNode(way.Nodes[0].ID)
	for i := 1; i < len(way.Nodes); i++ {
		curr, ok := p.graphNode(way.Nodes[i].ID)
		if ok && prevOK && curr != prev {
			p.addEdge(prev, curr, tags)
			p.addEdge(curr, prev, tags)
		}
		prev, prevOK = curr, ok
	}
}

func (p *OsmParser) addEdge(from, to datastructure.NodeID, tags datastructure.Tags) {
	p.edges = append(p.edges, datastructure.EdgeRecord{
		ID:     datastructure.EdgeID(len(p.edges)),
		From:   from,
		To:     to,
		Rating: defaultRating,
		Tags:   tags,
	})
}

type areaLeaf struct {
	ring  orb.Ring
	tags  datastructure.Tags
	bound rtreego.Rect
}

func (a *areaLeaf) Bounds() rtreego.Rect {
	return a.bound
}

// tagEdgesInAreas gives every edge whose midpoint lies inside a scenic area the tags of that area.
func (p *OsmParser) tagEdgesInAreas() {
	if len(p.areas) == 0 {
		return
	}
	tree := rtreego.NewTree(2, 25, 50)
	for _, a := range p.areas {
		ring := make(orb.Ring, 0, len(a.nodes))
		for _, id := range a.nodes {
			c, ok := p.acceptedNodeMap[id]
			if !ok {
				break
			}
			ring = append(ring, orb.Point{c.lon, c.lat})
		}
		if len(ring) != len(a.nodes) {
			continue
		}
		b := ring.Bound()
		rect, err := rtreego.NewRectFromPoints(rtreego.Point{b.Min[0], b.Min[1]}, rtreego.Point{b.Max[0], b.Max[1]})
		if err != nil {
			p.logger.Debug("skipping degenerate area", zap.Error(err))
			continue
		}
		tree.Insert(&areaLeaf{ring: ring, tags: a.tags, bound: rect})
	}

	for i := range p.edges {
		from, to := p.nodes[p.edges[i].From], p.nodes[p.edges[i].To]
		mid := orb.Point{(from.Lon + to.Lon) / 2, (from.Lat + to.Lat) / 2}
		probe, err := rtreego.NewRect(rtreego.Point{mid[0], mid[1]}, []float64{1e-9, 1e-9})
		if err != nil {
			continue
		}
		for _, s := range tree.SearchIntersect(probe) {
			leaf := s.(*areaLeaf)
			if planar.PolygonContains(orb.Polygon{leaf.ring}, mid) {
				p.edges[i].Tags |= leaf.tags
			}
		}
	}
}

// attachPois links every poi to the closest graph node in its h3 neighbourhood, and tags the
// edges leaving that node. Pois without a node nearby are dropped.
func (p *OsmParser) attachPois() {
	cells := make(map[h3.Cell][]datastructure.NodeID)
	for _, n := range p.nodes {
		c := h3.LatLngToCell(h3.NewLatLng(n.Lat, n.Lon), poiResolution)
		cells[c] = append(cells[c], n.ID)
	}

	out := make(map[datastructure.NodeID][]int)
	for i, e := range p.edges {
		out[e.From] = append(out[e.From], i)
	}

	kept := make([]datastructure.Poi, 0, len(p.pois))
	for _, poi := range p.pois {
		origin := h3.LatLngToCell(h3.NewLatLng(poi.Lat, poi.Lon), poiResolution)
		best, bestDist, found := datastructure.NodeID(0), 0.0, false
		for _, c := range h3.GridDisk(origin, 1) {
			for _, id := range cells[c] {
				n := p.nodes[id]
				d := (n.Lat-poi.Lat)*(n.Lat-poi.Lat) + (n.Lon-poi.Lon)*(n.Lon-poi.Lon)
				if !found || d < bestDist {
					best, bestDist, found = id, d, true
				}
			}
		}
		if !found {
			continue
		}
		p.nodes[best].PoiIDs = append(p.nodes[best].PoiIDs, poi.ID)
		tag := datastructure.TagFromName(poi.Tag)
		for _, ei := range out[best] {
			p.edges[ei].Tags |= tag
		}
		kept = append(kept, poi)
	}
	p.pois = kept
}
