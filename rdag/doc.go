// Package rdag is a mutable directed graph over opaque values that answers
// acyclicity and ordering queries.
//
// # Overview
//
// Graph stores one value per vertex and at most one edge per ordered vertex
// pair. Unlike a build-once topology, the graph is edited continuously while
// an application runs, so validation is split from mutation:
//
//   - AddConnection and DeleteConnection only change structure.
//   - Solve computes a global order and reports whether a cycle exists.
//   - TopologicallySortedValues returns values in that order.
//
// Mutations never repair the graph. A caller that speculatively adds an
// edge must remove it again when Solve reports a cycle:
//
//	e, _ := g.AddConnection(a, b)
//	if !g.Solve() {
//	    _ = g.DeleteConnection(e)
//	}
//
// # Ordering
//
// Ordering uses Kahn's algorithm. Ties are broken by vertex insertion order,
// so an unchanged graph always yields the same order. The order is cached
// until the next mutation.
//
// Complexity: O(V log V + E).
//
// # Thread Safety
//
// Graph is NOT safe for concurrent use.
package rdag
