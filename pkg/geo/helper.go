package geo

import (
	"container/list"
)

const (
	DOUGLAS_PEUCKER_THRESHOLDS = 7.0 // 7 meter
)

// https://cartography-playground.gitlab.io/playgrounds/douglas-peucker-algorithm/

func RamesDouglasPeucker(coords []Coordinate) []Coordinate {
	size := len(coords)
	if size < 3 {
		return coords
	}

	kepts := make([]bool, size)
	kepts[0] = true
	kepts[size-1] = true

	stack := list.New()
	stack.PushBack([2]int{0, size - 1})

	threshold := DOUGLAS_PEUCKER_THRESHOLDS
	for stack.Len() > 0 {
		pair := stack.Remove(stack.Back()).([2]int)
		left, right := pair[0], pair[1]
		var maxDist float64
		farthestIndex := left

		for i := left + 1; i < right; i++ {
			dist := PointLinePerpendicularDistance(coords[left], coords[right], coords[i])
			if dist > maxDist && dist > threshold {
				maxDist = dist
				farthestIndex = i
			}
		}

		if maxDist > threshold {
			kepts[farthestIndex] = true
			if left < farthestIndex {
				stack.PushBack([2]int{left, farthestIndex})
			}
			if farthestIndex < right {
				stack.PushBack([2]int{farthestIndex, right})
			}
		}
	}

	simplifiedGeometry := make([]Coordinate, 0)
	for i, necessary := range kepts {
		if necessary {
			simplifiedGeometry = append(simplifiedGeometry, coords[i])
		}
	}
	return simplifiedGeometry
}

// PointLinePerpendicularDistance returns the distance in meters from p to the segment a-b.
func PointLinePerpendicularDistance(a, b, p Coordinate) float64 {
	return DistanceToSegment(p, a, b) * 1000
}
