package algorithms

// Component is one strongly connected component.
type Component[K comparable] struct {
	ID      int
	Members []K
}

// SCCResult holds the result of Tarjan's strongly connected components algorithm.
type SCCResult[K comparable] struct {
	Components []*Component[K]
	Membership map[K]int // vertex → component ID
}

// Closed reports whether no edge leaves component id. A closed component
// is a trap: once entered, it cannot be exited.
func (r *SCCResult[K]) Closed(id int, successors func(K) []K) bool {
	for _, u := range r.Components[id].Members {
		for _, v := range successors(u) {
			if r.Membership[v] != id {
				return false
			}
		}
	}
	return true
}

// tarjanState holds per-vertex state during Tarjan's DFS.
type tarjanState struct {
	index   int
	lowlink int
	onStack bool
}

// StronglyConnectedComponents finds all SCCs using Tarjan's algorithm in O(V+E) time.
// Vertices reachable through successors but missing from vertices are
// visited too. Components are emitted in reverse topological order.
func StronglyConnectedComponents[K comparable](vertices []K, successors func(K) []K) *SCCResult[K] {
	state := make(map[K]*tarjanState, len(vertices))
	var stack []K
	indexCounter := 0
	result := &SCCResult[K]{
		Membership: make(map[K]int, len(vertices)),
	}

	var strongconnect func(u K)
	strongconnect = func(u K) {
		state[u] = &tarjanState{
			index:   indexCounter,
			lowlink: indexCounter,
			onStack: true,
		}
		indexCounter++
		stack = append(stack, u)

		for _, v := range successors(u) {
			if _, exists := state[v]; !exists {
				strongconnect(v)
				if state[v].lowlink < state[u].lowlink {
					state[u].lowlink = state[v].lowlink
				}
			} else if state[v].onStack {
				if state[v].index < state[u].lowlink {
					state[u].lowlink = state[v].index
				}
			}
		}

		// If u is a root vertex, pop the stack to form an SCC
		if state[u].lowlink == state[u].index {
			id := len(result.Components)
			var members []K
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				state[w].onStack = false
				members = append(members, w)
				result.Membership[w] = id
				if w == u {
					break
				}
			}

			result.Components = append(result.Components, &Component[K]{
				ID:      id,
				Members: members,
			})
		}
	}

	for _, v := range vertices {
		if _, exists := state[v]; !exists {
			strongconnect(v)
		}
	}

	return result
}
