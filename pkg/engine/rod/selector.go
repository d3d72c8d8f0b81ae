package rod

import (
	"github.com/lintang-b-s/rodroute/pkg/util"
	"golang.org/x/exp/rand"
)

// Selector picks one value out of a stream of (weight, value) pairs with probability
// weight / sum(weights), keeping only the current pick in memory.
type Selector[T any] struct {
	counter float64
	rng     *rand.Rand
	value   T
	ok      bool
}

func NewSelector[T any](rng *rand.Rand) *Selector[T] {
	return &Selector[T]{rng: rng}
}

// Update offers value with the given weight. Weights that are not positive and finite are ignored.
func (s *Selector[T]) Update(weight float64, value T) {
	if !util.IsFinite(weight) || weight <= 0 {
		return
	}
	s.counter += weight
	if !util.IsFinite(s.counter) {
		// restart the draw when the sum overflows
		s.counter = weight
		s.value, s.ok = value, true
		return
	}
	if s.rng.Float64()*s.counter < weight {
		s.value, s.ok = value, true
	}
}

// Decompose returns the picked value, false when no weight was accepted.
func (s *Selector[T]) Decompose() (T, bool) {
	return s.value, s.ok
}
