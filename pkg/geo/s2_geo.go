package geo

import (
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
)

type Coordinate struct {
	Lat float64
	Lon float64
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{Lat: lat, Lon: lon}
}

func (c Coordinate) point() s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))
}

// As3D places a coordinate on the unit sphere.
func As3D(c Coordinate) r3.Vector {
	return c.point().Vector
}

// Average is the component-wise mean of two coordinates, fine for the short edges of a street graph.
func Average(a, b Coordinate) Coordinate {
	return Coordinate{Lat: (a.Lat + b.Lat) / 2, Lon: (a.Lon + b.Lon) / 2}
}

// DistanceToSegment returns the distance in km from p to the great-circle segment a-b.
func DistanceToSegment(p, a, b Coordinate) float64 {
	pp, pa, pb := p.point(), a.point(), b.point()
	if pa.ApproxEqual(pb) {
		return pp.Distance(pa).Radians() * EarthRadiusKM
	}
	return s2.DistanceFromSegment(pp, pa, pb).Radians() * EarthRadiusKM
}

// TurnValue is (ab x bc) . b on unit vectors, roughly the sine of the turn angle at b.
// Positive values turn left, negative values turn right.
func TurnValue(a, b, c Coordinate) float64 {
	av, bv, cv := As3D(a), As3D(b), As3D(c)
	ab := bv.Sub(av)
	bc := cv.Sub(bv)
	if ab.Norm() == 0 || bc.Norm() == 0 {
		return 0
	}
	return ab.Normalize().Cross(bc.Normalize()).Dot(bv)
}
