package guidance

import (
	"errors"
	"fmt"

	"github.com/lintang-b-s/rodroute/pkg/datastructure"
	"github.com/lintang-b-s/rodroute/pkg/routetag"
)

var ErrEmptyPath = errors.New("path is empty")

type DirectionalNode struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
	Dir string  `json:"c"`
}

// Directions is the turn by turn answer of a routing request.
type Directions struct {
	Coordinates []DirectionalNode    `json:"coordinates"`
	Tag         string               `json:"tag"`
	Pois        []*datastructure.Poi `json:"pois"`
	Polyline    string               `json:"polyline"`
}

type nodeRef struct {
	id   datastructure.NodeID
	node *datastructure.PoiNode
}

func resolve(g Graph, path datastructure.Path) ([]nodeRef, error) {
	if path.IsEmpty() {
		return nil, ErrEmptyPath
	}
	nodes := make([]nodeRef, 0, path.Len())
	for _, id := range path.GetIndices() {
		n, ok := g.Get(id)
		if !ok {
			return nil, fmt.Errorf("node %d: %w", id, datastructure.ErrBrokenPath)
		}
		nodes = append(nodes, nodeRef{id: id, node: n})
	}
	return nodes, nil
}

// IntoDirections annotates every node of path with the way to go there. The first and the last node,
// and nodes without a real choice, get DirNone.
func IntoDirections(g Graph, path datastructure.Path, liker Liker) (Directions, error) {
	nodes, err := resolve(g, path)
	if err != nil {
		return Directions{}, err
	}

	coordinates := make([]DirectionalNode, 0, len(nodes))
	coords := make([]datastructure.Coordinate, 0, len(nodes))
	push := func(n nodeRef, dir string) {
		coordinates = append(coordinates, DirectionalNode{Lon: n.node.Lon, Lat: n.node.Lat, Dir: dir})
		coords = append(coords, n.node.Coordinate())
	}

	push(nodes[0], DirNone)
	for i := 1; i+1 < len(nodes); i++ {
		a, b, c := nodes[i-1], nodes[i], nodes[i+1]
		turnaround := a.id == c.id
		dir := getTurnDirection(a.node.Coordinate().Geo(), b.node.Coordinate().Geo(), c.node.Coordinate().Geo(), turnaround)
		if !turnaround && !hasChoice(g, b) {
			dir = DirNone
		}
		push(b, dir)
	}
	if len(nodes) > 1 {
		push(nodes[len(nodes)-1], DirNone)
	}

	seen := make(map[uint64]struct{})
	pois := make([]*datastructure.Poi, 0)
	for _, n := range nodes {
		for _, p := range n.node.Pois {
			if !liker.Likes(datastructure.TagFromName(p.Tag)) {
				continue
			}
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			pois = append(pois, p)
		}
	}

	return Directions{
		Coordinates: coordinates,
		Tag:         routetag.Encode(path),
		Pois:        pois,
		Polyline:    datastructure.CreatePolyline(coords),
	}, nil
}
