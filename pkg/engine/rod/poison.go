package rod

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/lintang-b-s/rodroute/pkg/geo"
)

// Poisoner scales the cost of an edge by where its midpoint lies.
type Poisoner interface {
	Poison(pos r3.Vector) float64
}

type NoPoison struct{}

func (NoPoison) Poison(r3.Vector) float64 {
	return 1.0
}

// PoisonLine rises exponentially, up to maximum, when approaching the line through start and end.
type PoisonLine struct {
	start     r3.Vector
	end       r3.Vector
	radius    float64
	size      float64
	maximumLn float64
}

// NewPoisonLine builds a line field whose reach is factor times the distance between start and end.
func NewPoisonLine(start, end geo.Coordinate, factor, maximum float64) PoisonLine {
	return PoisonLine{
		start:     geo.As3D(start),
		end:       geo.As3D(end),
		radius:    geo.EarthRadiusKM,
		size:      geo.CalculateHaversineDistance(start.Lat, start.Lon, end.Lat, end.Lon) * factor,
		maximumLn: math.Log(maximum),
	}
}

func (p PoisonLine) Poison(pos r3.Vector) float64 {
	cross := pos.Sub(p.start).Cross(p.end.Sub(p.start))
	value := p.size - p.radius*math.Sqrt(cross.Norm())
	if value > 0 {
		return math.Exp(value / p.size * p.maximumLn)
	}
	return 1.0
}
