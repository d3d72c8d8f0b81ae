package guidance

import "github.com/lintang-b-s/rodroute/pkg/datastructure"

type Graph interface {
	Get(id datastructure.NodeID) (*datastructure.PoiNode, bool)
	GetConnIDs(id datastructure.NodeID) ([]datastructure.NodeID, bool)
}

// Liker decides which pois are worth showing next to a route.
type Liker interface {
	Likes(tags datastructure.Tags) bool
}
