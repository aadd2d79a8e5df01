package algorithms

// ReachResult holds the BFS closure of a set of seed vertices.
type ReachResult[K comparable] struct {
	Order     []K       // discovery order, seeds first
	Distances map[K]int // vertex → shortest hop count from any seed
}

// Contains reports whether v was reached.
func (r *ReachResult[K]) Contains(v K) bool {
	_, ok := r.Distances[v]
	return ok
}

// Reachable performs a multi-source BFS from seeds, following successors.
// Seeds are at distance 0 and are always part of the result. Duplicate
// seeds are visited once.
func Reachable[K comparable](seeds []K, successors func(K) []K) *ReachResult[K] {
	result := &ReachResult[K]{
		Distances: make(map[K]int, len(seeds)),
	}

	queue := make([]K, 0, len(seeds))
	for _, s := range seeds {
		if _, seen := result.Distances[s]; seen {
			continue
		}
		result.Distances[s] = 0
		result.Order = append(result.Order, s)
		queue = append(queue, s)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		hop := result.Distances[current]

		for _, next := range successors(current) {
			if _, seen := result.Distances[next]; seen {
				continue
			}
			result.Distances[next] = hop + 1
			result.Order = append(result.Order, next)
			queue = append(queue, next)
		}
	}

	return result
}
