// Package graph builds the task dependency graph for one analysis call:
// id assignment, pruning of unknown references, cycle detection and
// reverse-dependency counts.
package graph

import (
	"fmt"
	"slices"

	"github.com/twiced-technology-gmbh/taskrank/internal/date"
	"github.com/twiced-technology-gmbh/taskrank/internal/task"
)

// Issue strings attached to nodes.
const (
	IssueCircular = "Circular dependency detected."
)

// Node is one task placed in the graph. Issues only ever grow.
type Node struct {
	ID             int
	Title          string
	DueDate        *date.Date
	EstimatedHours float64
	Importance     int
	Dependencies   []int
	Issues         []string
	CycleMember    bool
}

// AddIssue appends msg unless the node already carries it.
func (n *Node) AddIssue(msg string) {
	if slices.Contains(n.Issues, msg) {
		return
	}
	n.Issues = append(n.Issues, msg)
}

// Graph holds the nodes of one batch in input order.
type Graph struct {
	nodes map[int]*Node
	order []int
}

// Build assigns ids, then drops dependency references that do not name a
// task in the batch. Every input yields exactly one node.
//
// Tasks without an id receive the next sequential id starting at 1,
// skipping every id given explicitly anywhere in the batch. A repeated
// explicit id is reassigned the same way and the node records the change.
func Build(tasks []task.Task) *Graph {
	g := &Graph{
		nodes: make(map[int]*Node, len(tasks)),
		order: make([]int, 0, len(tasks)),
	}

	explicit := make(map[int]bool, len(tasks))
	for _, t := range tasks {
		if t.ID != nil {
			explicit[*t.ID] = true
		}
	}

	next := 0
	synthetic := func() int {
		for {
			next++
			if !explicit[next] {
				return next
			}
		}
	}

	for _, t := range tasks {
		n := &Node{
			Title:          t.Title,
			DueDate:        t.DueDate,
			EstimatedHours: t.EstimatedHours,
			Importance:     t.Importance,
			Dependencies:   slices.Clone(t.Dependencies),
			Issues:         []string{},
		}
		switch {
		case t.ID == nil:
			n.ID = synthetic()
		case g.nodes[*t.ID] != nil:
			n.ID = synthetic()
			n.AddIssue(fmt.Sprintf("Duplicate id %d reassigned to %d.", *t.ID, n.ID))
		default:
			n.ID = *t.ID
		}
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}

	for _, id := range g.order {
		n := g.nodes[id]
		kept := make([]int, 0, len(n.Dependencies))
		for _, dep := range n.Dependencies {
			if _, ok := g.nodes[dep]; !ok {
				n.Issues = append(n.Issues, fmt.Sprintf("Unknown dependency id %d ignored.", dep))
				continue
			}
			kept = append(kept, dep)
		}
		n.Dependencies = kept
	}

	return g
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id int) *Node {
	return g.nodes[id]
}

// Nodes returns all nodes in input order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// Dependents counts, per id, how many dependency entries name it. A task
// listing the same dependency twice counts twice. Ids nobody depends on
// are absent from the map.
func (g *Graph) Dependents() map[int]int {
	counts := make(map[int]int, len(g.order))
	for _, id := range g.order {
		for _, dep := range g.nodes[id].Dependencies {
			counts[dep]++
		}
	}
	return counts
}
