package datastructure

// GridNodeID is the id CreateTestGraph gives to cell (x, y) of a grid with height h.
func GridNodeID(x, y, h int) NodeID {
	return NodeID(x*h + y)
}

// CreateTestGraph builds a w x h checkerboard graph. Every cell is connected in both directions to
// its horizontal and vertical neighbours.
func CreateTestGraph[V, E any](w, h int, fv func(x, y int) V, fe func(from, to NodeID) E) (*Graph[V, E], error) {
	vertices := make([]Vertex[V], 0, w*h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			vertices = append(vertices, Vertex[V]{ID: GridNodeID(x, y, h), Value: fv(x, y)})
		}
	}

	edges := make([]EdgeTriple[E], 0, 4*w*h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			from := GridNodeID(x, y, h)
			neighbours := make([][2]int, 0, 4)
			if x > 0 {
				neighbours = append(neighbours, [2]int{x - 1, y})
			}
			if x < w-1 {
				neighbours = append(neighbours, [2]int{x + 1, y})
			}
			if y > 0 {
				neighbours = append(neighbours, [2]int{x, y - 1})
			}
			if y < h-1 {
				neighbours = append(neighbours, [2]int{x, y + 1})
			}
			for _, nb := range neighbours {
				to := GridNodeID(nb[0], nb[1], h)
				edges = append(edges, EdgeTriple[E]{From: from, Value: fe(from, to), To: to})
			}
		}
	}
	return NewGraph(vertices, edges)
}
