package rdag

import (
	"fmt"
	"slices"
	"strings"
)

// Solve computes a topological order of the current graph. It returns false
// iff the graph contains a cycle. The graph itself is never modified.
func (g *Graph[V]) Solve() bool {
	if !g.stale {
		return !g.cyclic
	}

	order, ok := g.topologicalSort()
	g.sorted = order
	g.cyclic = !ok
	g.stale = false
	return ok
}

// TopologicallySortedValues returns the vertex values such that for every
// edge a -> b, a comes before b. It fails with ErrCycleDetected if the graph
// is currently cyclic.
func (g *Graph[V]) TopologicallySortedValues() ([]V, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	values := make([]V, 0, len(order))
	for _, id := range order {
		values = append(values, g.vertices[id].value)
	}
	return values, nil
}

// TopologicalOrder is like TopologicallySortedValues but returns vertex ids.
func (g *Graph[V]) TopologicalOrder() ([]VertexID, error) {
	if !g.Solve() {
		if path := g.CyclePath(); len(path) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrCycleDetected, formatPath(path))
		}
		return nil, ErrCycleDetected
	}
	return slices.Clone(g.sorted), nil
}

// insertSorted inserts an item into a sorted slice maintaining sort order.
func insertSorted(s []VertexID, item VertexID) []VertexID {
	idx, _ := slices.BinarySearch(s, item)
	return slices.Insert(s, idx, item)
}

// topologicalSort is Kahn's algorithm. The ready queue is kept sorted by
// vertex id, which equals insertion order.
func (g *Graph[V]) topologicalSort() ([]VertexID, bool) {
	inDegree := make(map[VertexID]int, len(g.vertices))
	queue := make([]VertexID, 0, len(g.vertices)/4)
	for _, id := range g.order {
		deg := len(g.vertices[id].in)
		inDegree[id] = deg
		if deg == 0 {
			queue = append(queue, id)
		}
	}

	result := make([]VertexID, 0, len(g.vertices))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, id)

		for _, child := range g.Successors(id) {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = insertSorted(queue, child)
			}
		}
	}

	if len(result) != len(g.vertices) {
		return nil, false
	}
	return result, true
}

// CyclePath returns one cycle as a vertex path whose first and last element
// are the same vertex, or nil if the graph is acyclic.
func (g *Graph[V]) CyclePath() []VertexID {
	visited := make(map[VertexID]bool, len(g.vertices))
	onStack := make(map[VertexID]bool, len(g.vertices))

	var dfs func(VertexID, []VertexID) []VertexID
	dfs = func(id VertexID, path []VertexID) []VertexID {
		visited[id] = true
		onStack[id] = true
		path = append(path, id)

		for _, child := range g.Successors(id) {
			if !visited[child] {
				if cycle := dfs(child, path); cycle != nil {
					return cycle
				}
			} else if onStack[child] {
				start := slices.Index(path, child)
				return append(slices.Clone(path[start:]), child)
			}
		}

		onStack[id] = false
		return nil
	}

	for _, id := range g.order {
		if !visited[id] {
			if cycle := dfs(id, nil); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

func formatPath(path []VertexID) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, " -> ")
}
