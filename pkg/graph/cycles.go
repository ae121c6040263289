package graph

// HasCycle reports whether g contains at least one directed cycle.
//
// A self-loop counts as a cycle. Every call starts from empty visited and
// recursion-stack sets, so the result depends only on g.
func HasCycle(g *Graph) bool {
	return FindCycle(g) != nil
}

// FindCycle returns one directed cycle of g as a vertex path whose first and
// last elements are equal (e.g. [a b a]), or nil if g is acyclic.
//
// The search is a depth-first traversal over from -> to, started once per
// unvisited vertex in lexicographic order so disconnected components are
// covered. Vertices that are fully explored are never re-entered. The
// traversal uses an explicit stack, so arbitrarily long chains do not grow
// the goroutine stack.
func FindCycle(g *Graph) []string {
	type frame struct {
		v    string
		next []string
		i    int
	}

	visited := make(map[string]bool, g.VertexCount())
	onStack := make(map[string]bool)

	for _, start := range g.Vertices() {
		if visited[start] {
			continue
		}
		visited[start] = true
		onStack[start] = true
		stack := []frame{{v: start, next: g.successors(start)}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.i == len(top.next) {
				onStack[top.v] = false
				stack = stack[:len(stack)-1]
				continue
			}
			w := top.next[top.i]
			top.i++

			if onStack[w] {
				var path []string
				for j := len(stack) - 1; j >= 0; j-- {
					if stack[j].v == w {
						for _, f := range stack[j:] {
							path = append(path, f.v)
						}
						break
					}
				}
				return append(path, w)
			}
			if visited[w] {
				continue
			}
			visited[w] = true
			onStack[w] = true
			stack = append(stack, frame{v: w, next: g.successors(w)})
		}
	}
	return nil
}

// successors returns the targets of id's outgoing arcs in insertion order.
func (g *Graph) successors(id string) []string {
	idx := g.outgoing[id]
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = g.arcs[j].To
	}
	return out
}
