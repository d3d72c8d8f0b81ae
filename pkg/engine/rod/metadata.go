package rod

import (
	"strings"

	"github.com/lintang-b-s/rodroute/pkg/datastructure"
)

// TagConverter maps every tag to how much the user likes it. Negative means disliked.
type TagConverter map[datastructure.Tags]float64

func (c TagConverter) Add(name string, size float64) {
	tag := datastructure.TagFromName(name)
	if tag == 0 {
		return
	}
	c[tag] += size
}

// TagModifier sums the preference of every tag in tags.
func (c TagConverter) TagModifier(tags datastructure.Tags) float64 {
	total := 0.0
	for tag, size := range c {
		if tags.Has(tag) {
			total += size
		}
	}
	return total
}

// Metadata describes one routing request.
type Metadata struct {
	// RequestedLength in km.
	RequestedLength float64
	TagConverter    TagConverter
	// OriginalRoute is the already walked route when asking for a way back.
	OriginalRoute *datastructure.Path
}

// NewMetadata parses slash separated tag lists. Every liked tag weighs 1/n, every disliked -1/n.
func NewMetadata(distance float64, tags, negTags string) *Metadata {
	m := &Metadata{
		RequestedLength: distance,
		TagConverter:    make(TagConverter),
	}
	liked := strings.Split(tags, "/")
	for _, t := range liked {
		m.TagConverter.Add(t, 1.0/float64(len(liked)))
	}
	disliked := strings.Split(negTags, "/")
	for _, t := range disliked {
		m.TagConverter.Add(t, -1.0/float64(len(disliked)))
	}
	return m
}

func (m *Metadata) WithOriginalRoute(route datastructure.Path) *Metadata {
	m.OriginalRoute = &route
	return m
}

// Likes reports whether any of tags is liked.
func (m *Metadata) Likes(tags datastructure.Tags) bool {
	return m.TagConverter.TagModifier(tags) > 0
}
