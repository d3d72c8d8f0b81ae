package rod

import (
	"errors"
	"fmt"

	"github.com/lintang-b-s/rodroute/pkg/datastructure"
)

var (
	ErrNoSuchEdge           = errors.New("no edge close to the requested position")
	ErrNotIntersectingRoute = errors.New("position is not on the visited route")
	ErrNothingSelected      = errors.New("no candidate route could be selected")
	ErrRoutingFailed        = errors.New("routing failed")
)

type NoSuchEdgeError struct {
	Lat, Lon float64
	Err      error
}

func (e *NoSuchEdgeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no edge near (%f, %f): %v", e.Lat, e.Lon, e.Err)
	}
	return fmt.Sprintf("no edge near (%f, %f)", e.Lat, e.Lon)
}

func (e *NoSuchEdgeError) Unwrap() error {
	return ErrNoSuchEdge
}

// NotIntersectingRouteError is returned when neither end of the located edge lies on the visited route.
type NotIntersectingRouteError struct {
	From, To datastructure.NodeID
}

func (e *NotIntersectingRouteError) Error() string {
	return fmt.Sprintf("edge %d -> %d does not touch the visited route", e.From, e.To)
}

func (e *NotIntersectingRouteError) Unwrap() error {
	return ErrNotIntersectingRoute
}
