package osmparser

import (
	"github.com/lintang-b-s/rodroute/pkg/datastructure"
	"github.com/paulmach/osm"
)

var (
	// skipHighway are highways a pedestrian cannot or should not use.
	skipHighway = map[string]struct{}{
		"motorway":      {},
		"motorway_link": {},
		"trunk":         {},
		"trunk_link":    {},
		"construction":  {},
		"proposed":      {},
		"abandoned":     {},
		"raceway":       {},
		"bus_guideway":  {},
		"busway":        {},
		"platform":      {},
		"elevator":      {},
	}

	restricted = map[string]struct{}{
		"no":         {},
		"private":    {},
		"restricted": {},
		"military":   {},
	}

	parkLeisure = map[string]struct{}{
		"park":           {},
		"garden":         {},
		"nature_reserve": {},
		"common":         {},
	}

	parkLanduse = map[string]struct{}{
		"forest":            {},
		"grass":             {},
		"meadow":            {},
		"recreation_ground": {},
		"village_green":     {},
	}

	universityAmenity = map[string]struct{}{
		"university": {},
		"college":    {},
	}
)

// acceptOsmWay reports whether a way is walkable.
func acceptOsmWay(way *osm.Way) bool {
	if len(way.Nodes) < 2 {
		return false
	}
	highway := way.Tags.Find("highway")
	if highway == "" {
		return false
	}
	if _, ok := skipHighway[highway]; ok {
		return false
	}
	if way.Tags.Find("area") == "yes" {
		return false
	}
	foot := way.Tags.Find("foot")
	if foot == "yes" || foot == "designated" {
		return true
	}
	if _, ok := restricted[foot]; ok {
		return false
	}
	if _, ok := restricted[way.Tags.Find("access")]; ok {
		return false
	}
	return true
}

// tagsOf maps osm tags to the scenic tags of the router.
func tagsOf(tags osm.Tags) datastructure.Tags {
	var t datastructure.Tags
	if tags.Find("tourism") != "" {
		t |= datastructure.TagTourism
	}
	if tags.Find("historic") != "" || tags.Find("memorial") != "" {
		t |= datastructure.TagMonument
	}
	if tags.Find("natural") == "water" || tags.Find("waterway") != "" || tags.Find("water") != "" {
		t |= datastructure.TagWater
	}
	if _, ok := parkLeisure[tags.Find("leisure")]; ok {
		t |= datastructure.TagPark
	}
	if _, ok := parkLanduse[tags.Find("landuse")]; ok {
		t |= datastructure.TagPark
	}
	if _, ok := universityAmenity[tags.Find("amenity")]; ok {
		t |= datastructure.TagUniversity
	}
	return t
}

// isArea is true for closed, non-highway ways that carry a scenic tag, like a park outline.
func isArea(way *osm.Way) bool {
	if len(way.Nodes) < 4 || way.Nodes[0].ID != way.Nodes[len(way.Nodes)-1].ID {
		return false
	}
	return way.Tags.Find("highway") == "" && tagsOf(way.Tags) != 0
}
