package guidance

import "github.com/lintang-b-s/rodroute/pkg/geo"

const (
	DirNone       = "none"
	DirForward    = "forward"
	DirLeft       = "left"
	DirRight      = "right"
	DirTurnaround = "turnaround"
)

// turnThreshold is the |TurnValue| above which a bend counts as a turn.
const turnThreshold = 0.7

/*
getTurnDirection. arah belokan di b untuk jalan a -> b -> c.

	        c
	        |
	        |
	a ----- b      left

balik ke a dianggap turnaround.
*/
func getTurnDirection(a, b, c geo.Coordinate, turnaround bool) string {
	if turnaround {
		return DirTurnaround
	}
	value := geo.TurnValue(a, b, c)
	if value > turnThreshold {
		return DirLeft
	} else if value < -turnThreshold {
		return DirRight
	}
	return DirForward
}

// hasChoice is false when a walker can only continue or go back at a node.
func hasChoice(g Graph, b nodeRef) bool {
	conn, ok := g.GetConnIDs(b.id)
	return ok && len(conn) > 2
}
