package rod

// Distance is the cost carried along a rod search.
type Distance struct {
	// MajorValue and MinorValue are the edge lengths weighted by potential, the large and
	// the small poison field and a random factor.
	MajorValue float64
	MinorValue float64
	// ActualLength is the walked length in km.
	ActualLength float64
	// IllegalNodeHits counts passes through the node a return route must not turn around at.
	IllegalNodeHits float64
	// NodePotential scales the next edge. It is replaced, not summed.
	NodePotential float64
	// PotentialTrack sums the tag enjoyment met on the way.
	PotentialTrack float64
}

// Def is the cost of an empty walk.
func Def() Distance {
	return Distance{NodePotential: 1.0}
}

func (d Distance) Majorises(other Distance) bool {
	return d.MajorValue >= other.MajorValue &&
		d.MinorValue >= other.MinorValue &&
		d.IllegalNodeHits >= other.IllegalNodeHits
}

func (d Distance) Length() float64 {
	return d.ActualLength
}
