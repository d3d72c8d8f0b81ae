package routingalgorithm

// Ending tells the search whether a node reached with some cost may end a route.
type Ending uint8

const (
	// No marks an interior node.
	No Ending = iota
	// Kinda is not a valid terminus, but in single result mode its children are not allowed to end the search.
	Kinda
	// Yes marks an acceptable terminus.
	Yes
)

func (e Ending) String() string {
	switch e {
	case Kinda:
		return "kinda"
	case Yes:
		return "yes"
	default:
		return "no"
	}
}

// Controller is the policy a pareto search runs under. V is the node value, E the edge value and D
// the cost vector carried along every explored path.
type Controller[V, E, D any] interface {
	// CostAfter returns the cost after traversing edge.
	CostAfter(cost D, edge E) D
	// Admissible drops candidates before they reach a frontier.
	Admissible(cost D) bool
	// Hint orders the priority queue, smaller is explored first.
	Hint(cost D) uint64
	Classify(node V, cost D) Ending
	// YieldLeavesAsEndpoints turns every surviving leaf of the search tree into an endpoint.
	YieldLeavesAsEndpoints() bool
	// ForceSingleResult stops the search at the first Yes.
	ForceSingleResult() bool
	// DeferFilterUntilEndpointSeen skips Admissible until something classified Yes or Kinda.
	DeferFilterUntilEndpointSeen() bool
}

// DefaultPolicy holds the default answers of a Controller. Embed it and override what differs.
type DefaultPolicy[V, D any] struct{}

func (DefaultPolicy[V, D]) Admissible(D) bool { return true }

func (DefaultPolicy[V, D]) Classify(V, D) Ending { return No }

func (DefaultPolicy[V, D]) YieldLeavesAsEndpoints() bool { return false }

func (DefaultPolicy[V, D]) ForceSingleResult() bool { return false }

func (DefaultPolicy[V, D]) DeferFilterUntilEndpointSeen() bool { return false }
