package rod

import (
	"math"

	"github.com/lintang-b-s/rodroute/pkg/datastructure"
	"github.com/lintang-b-s/rodroute/pkg/engine/routingalgorithm"
	"github.com/lintang-b-s/rodroute/pkg/util"
	"golang.org/x/exp/rand"
)

// rodController steers the pareto search over the application graph. Closing controllers meet the
// outbound rod at one of its nodes (endings). Outbound controllers have no endings and yield the
// leaves of the search tree.
type rodController struct {
	params        Hyperparameters
	maxLength     float64
	poisonerLarge Poisoner
	poisonerSmall Poisoner
	endings       map[datastructure.NodeID]Distance
	closing       bool
	modifier      TagConverter
	pointToSkip   *datastructure.NodeID
	rng           *rand.Rand
}

var _ routingalgorithm.Controller[*datastructure.PoiNode, *datastructure.AnnotatedEdge, Distance] = (*rodController)(nil)

func (c *rodController) enjoyment(tags datastructure.Tags) float64 {
	return -c.modifier.TagModifier(tags)
}

func (c *rodController) annotate(edge *datastructure.AnnotatedEdge, potential float64) Distance {
	t := edge.Dist
	nextPotential := (potential-1.0)*math.Exp(-t*c.params.Falloff) + 1.0
	pL := c.poisonerLarge.Poison(edge.Average)
	pS := c.poisonerSmall.Poison(edge.Average)

	_, fromEnding := c.endings[edge.From]
	_, toEnding := c.endings[edge.To]
	var e float64
	if fromEnding && toEnding {
		// walking along the outbound rod pushes the potential to its maximum
		e = math.Log(c.params.PotentialMax/nextPotential) / c.params.DiluteFavourite
	} else {
		e = c.enjoyment(edge.Tags)
	}
	if e != 0 {
		nextPotential *= math.Exp(e * c.params.DiluteFavourite)
		nextPotential = util.Clamp(nextPotential, c.params.PotentialMin, c.params.PotentialMax)
	}

	illegal := 0.0
	if c.pointToSkip != nil && edge.To == *c.pointToSkip {
		illegal = 1.0
	}

	randomFactor := float64(edge.Hits()) + 20.0
	randomFactor = randomFactor * randomFactor * util.Uniform(c.rng, 0.1, 1.0)

	return Distance{
		MajorValue:      t * nextPotential * pL * randomFactor,
		MinorValue:      t * nextPotential * pS * randomFactor,
		ActualLength:    t,
		IllegalNodeHits: illegal,
		NodePotential:   nextPotential,
		PotentialTrack:  -e,
	}
}

func (c *rodController) CostAfter(m Distance, edge *datastructure.AnnotatedEdge) Distance {
	added := c.annotate(edge, m.NodePotential)
	return Distance{
		MajorValue:      m.MajorValue + added.MajorValue,
		MinorValue:      m.MinorValue + added.MinorValue,
		ActualLength:    m.ActualLength + added.ActualLength,
		IllegalNodeHits: m.IllegalNodeHits + added.IllegalNodeHits,
		NodePotential:   added.NodePotential,
		PotentialTrack:  m.PotentialTrack + added.PotentialTrack,
	}
}

func (c *rodController) Admissible(m Distance) bool {
	return m.ActualLength < c.maxLength
}

func (c *rodController) Hint(m Distance) uint64 {
	h := m.MajorValue * 1e6
	if h >= math.MaxUint64 {
		return math.MaxUint64
	}
	if h <= 0 || math.IsNaN(h) {
		return 0
	}
	return uint64(h)
}

func (c *rodController) Classify(v *datastructure.PoiNode, m Distance) routingalgorithm.Ending {
	dist, ok := c.endings[v.ID]
	if !ok {
		return routingalgorithm.No
	}
	if m.ActualLength+dist.ActualLength > c.maxLength*c.params.MinLengthFactor {
		return routingalgorithm.Yes
	}
	return routingalgorithm.Kinda
}

func (c *rodController) YieldLeavesAsEndpoints() bool {
	return !c.closing
}

func (c *rodController) ForceSingleResult() bool {
	return false
}

func (c *rodController) DeferFilterUntilEndpointSeen() bool {
	return c.closing
}
