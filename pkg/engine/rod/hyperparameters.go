package rod

import "github.com/lintang-b-s/rodroute/pkg/datastructure"

// Hyperparameters tune the rod search.
type Hyperparameters struct {
	// MaxTries bounds the outbound + closing attempts of a single Route call.
	MaxTries int
	// MaxArena caps the search tree of one search.
	MaxArena int
	// MinLengthFactor is the share of the requested length a closing candidate must reach.
	MinLengthFactor float64
	DiluteFavourite float64
	// Falloff is the decay rate, per km, of the node potential.
	Falloff float64
	PotentialMin float64
	PotentialMax float64
	// EventImportance weighs liked tags passed on the way during selection.
	EventImportance float64

	RandomMin      float64
	RandomMax      float64
	RandomIncrease float64
	RandomMinLin   float64
	RandomMaxLin   float64
}

func DefaultHyperparameters() Hyperparameters {
	return Hyperparameters{
		MaxTries:        20,
		MaxArena:        datastructure.DefaultMaxArenaSize,
		MinLengthFactor: 0.8,
		DiluteFavourite: 1.5,
		Falloff:         4.0,
		PotentialMin:    0.25,
		PotentialMax:    4.0,
		EventImportance: 1.0,
		RandomMin:       0.5,
		RandomMax:       0.8,
		RandomIncrease:  0.04,
		RandomMinLin:    400,
		RandomMaxLin:    500,
	}
}
