package graph

// frame is one entry of the explicit DFS stack: the node and the index of
// the next dependency to look at.
type frame struct {
	id   int
	next int
}

// DetectCycles marks every node that lies on the active DFS path when a
// back edge is found. Nodes already fully explored are not re-entered, so
// this answers "is the node involved in some cycle" rather than listing
// every cycle. Returns the number of nodes marked.
func (g *Graph) DetectCycles() int {
	visited := make(map[int]bool, len(g.order))
	onPath := make(map[int]bool)
	var stack []frame
	marked := 0

	for _, root := range g.order {
		if visited[root] {
			continue
		}
		stack = append(stack[:0], frame{id: root})
		onPath[root] = true

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := g.nodes[top.id].Dependencies
			if top.next == len(deps) {
				visited[top.id] = true
				delete(onPath, top.id)
				stack = stack[:len(stack)-1]
				continue
			}

			dep := deps[top.next]
			top.next++

			switch {
			case onPath[dep]:
				for _, f := range stack {
					n := g.nodes[f.id]
					if !n.CycleMember {
						n.CycleMember = true
						marked++
					}
					n.AddIssue(IssueCircular)
				}
			case visited[dep]:
			default:
				onPath[dep] = true
				stack = append(stack, frame{id: dep})
			}
		}
	}

	return marked
}

// CycleMembers returns the ids of nodes flagged by DetectCycles, in input order.
func (g *Graph) CycleMembers() []int {
	var ids []int
	for _, id := range g.order {
		if g.nodes[id].CycleMember {
			ids = append(ids, id)
		}
	}
	return ids
}
