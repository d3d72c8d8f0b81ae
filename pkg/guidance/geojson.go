package guidance

import (
	"github.com/lintang-b-s/rodroute/pkg/datastructure"
	"github.com/lintang-b-s/rodroute/pkg/geo"
	"github.com/lintang-b-s/rodroute/pkg/routetag"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// IntoGeoJSON returns the route as a feature collection with a single line string. simplify drops
// nodes that barely change the shape of the line.
func IntoGeoJSON(g Graph, path datastructure.Path, simplify bool) (*geojson.FeatureCollection, error) {
	nodes, err := resolve(g, path)
	if err != nil {
		return nil, err
	}

	coords := make([]geo.Coordinate, 0, len(nodes))
	for _, n := range nodes {
		coords = append(coords, n.node.Coordinate().Geo())
	}
	if simplify {
		coords = geo.RamesDouglasPeucker(coords)
	}

	line := make(orb.LineString, 0, len(coords))
	for _, c := range coords {
		line = append(line, orb.Point{c.Lon, c.Lat})
	}

	feature := geojson.NewFeature(line)
	feature.Properties["tag"] = routetag.Encode(path)

	fc := geojson.NewFeatureCollection()
	fc.Append(feature)
	return fc, nil
}
