package rdag

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/birdayz/rendergraph/internal/ids"
)

var (
	ErrVertexNotFound = errors.New("vertex not found")
	ErrEdgeNotFound   = errors.New("edge not found")
	ErrEdgeExists     = errors.New("edge already exists")
	ErrSelfLoop       = errors.New("self loop")
	ErrVertexHasEdges = errors.New("vertex has edges")
	ErrCycleDetected  = errors.New("cycle detected in DAG")
	ErrTooLarge       = errors.New("graph too large")
)

// MaxVertices prevents pathological graphs.
const MaxVertices = 10000

// VertexID identifies a vertex. Ids are never reused.
type VertexID uint64

// AnyVertex is the wildcard accepted by IsConnectionDefined.
const AnyVertex VertexID = 0

// EdgeID identifies an edge. Ids are never reused.
type EdgeID uint64

// Edge is a directed edge From -> To.
type Edge struct {
	ID   EdgeID
	From VertexID
	To   VertexID
}

type vertex[V any] struct {
	value V
	out   []EdgeID
	in    []EdgeID
}

type pair struct {
	from, to VertexID
}

// Graph is a directed graph over values of type V.
type Graph[V any] struct {
	vertices map[VertexID]*vertex[V]
	// Insertion order. VertexIDs are monotonic, so this is also sorted.
	order []VertexID
	edges map[EdgeID]Edge
	pairs map[pair]EdgeID

	nextVertex ids.Counter[VertexID]
	nextEdge   ids.Counter[EdgeID]

	// Cached result of the last Solve.
	sorted []VertexID
	cyclic bool
	stale  bool
}

// New creates an empty graph.
func New[V any]() *Graph[V] {
	return &Graph[V]{
		vertices: make(map[VertexID]*vertex[V]),
		order:    make([]VertexID, 0),
		edges:    make(map[EdgeID]Edge),
		pairs:    make(map[pair]EdgeID),
		stale:    true,
	}
}

// AddNode stores v verbatim in a new vertex.
func (g *Graph[V]) AddNode(v V) (VertexID, error) {
	if len(g.vertices) >= MaxVertices {
		return 0, fmt.Errorf("%w: vertex count exceeds maximum %d", ErrTooLarge, MaxVertices)
	}
	id := g.nextVertex.Next()
	g.vertices[id] = &vertex[V]{value: v}
	g.order = append(g.order, id)
	g.stale = true
	return id, nil
}

// DeleteNode removes a vertex. All incident edges must be removed first.
func (g *Graph[V]) DeleteNode(id VertexID) error {
	vx, ok := g.vertices[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrVertexNotFound, id)
	}
	if n := len(vx.in) + len(vx.out); n > 0 {
		return fmt.Errorf("%w: %d has %d edges", ErrVertexHasEdges, id, n)
	}
	delete(g.vertices, id)
	if idx, found := slices.BinarySearch(g.order, id); found {
		g.order = slices.Delete(g.order, idx, idx+1)
	}
	g.stale = true
	return nil
}

// AddConnection adds the edge src -> dst. It does not check for cycles;
// call Solve afterwards.
func (g *Graph[V]) AddConnection(src, dst VertexID) (EdgeID, error) {
	from, ok := g.vertices[src]
	if !ok {
		return 0, fmt.Errorf("%w: source %d", ErrVertexNotFound, src)
	}
	to, ok := g.vertices[dst]
	if !ok {
		return 0, fmt.Errorf("%w: destination %d", ErrVertexNotFound, dst)
	}
	if src == dst {
		return 0, fmt.Errorf("%w: %d", ErrSelfLoop, src)
	}
	if existing, ok := g.pairs[pair{src, dst}]; ok {
		return existing, fmt.Errorf("%w: %d -> %d", ErrEdgeExists, src, dst)
	}

	e := Edge{ID: g.nextEdge.Next(), From: src, To: dst}
	g.edges[e.ID] = e
	g.pairs[pair{src, dst}] = e.ID
	from.out = append(from.out, e.ID)
	to.in = append(to.in, e.ID)
	g.stale = true
	return e.ID, nil
}

// DeleteConnection removes an edge.
func (g *Graph[V]) DeleteConnection(id EdgeID) error {
	e, ok := g.edges[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrEdgeNotFound, id)
	}
	delete(g.edges, id)
	delete(g.pairs, pair{e.From, e.To})

	match := func(eid EdgeID) bool { return eid == id }
	from := g.vertices[e.From]
	from.out = slices.DeleteFunc(from.out, match)
	to := g.vertices[e.To]
	to.in = slices.DeleteFunc(to.in, match)
	g.stale = true
	return nil
}

// IsConnectionDefined reports whether an edge matches. Either endpoint may
// be AnyVertex: (src, AnyVertex) asks for any edge out of src, (AnyVertex,
// dst) for any edge into dst, and (AnyVertex, AnyVertex) for any edge.
func (g *Graph[V]) IsConnectionDefined(src, dst VertexID) bool {
	switch {
	case src == AnyVertex && dst == AnyVertex:
		return len(g.edges) > 0
	case dst == AnyVertex:
		vx, ok := g.vertices[src]
		return ok && len(vx.out) > 0
	case src == AnyVertex:
		vx, ok := g.vertices[dst]
		return ok && len(vx.in) > 0
	default:
		_, ok := g.pairs[pair{src, dst}]
		return ok
	}
}

// Connection returns the edge src -> dst.
func (g *Graph[V]) Connection(src, dst VertexID) (EdgeID, bool) {
	id, ok := g.pairs[pair{src, dst}]
	return id, ok
}

// Edge returns an edge by id.
func (g *Graph[V]) Edge(id EdgeID) (Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// Edges returns all edges ordered by id.
func (g *Graph[V]) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Edge) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Value returns the value stored in a vertex.
func (g *Graph[V]) Value(id VertexID) (V, bool) {
	vx, ok := g.vertices[id]
	if !ok {
		var zero V
		return zero, false
	}
	return vx.value, true
}

// Vertices returns all vertex ids in insertion order.
func (g *Graph[V]) Vertices() []VertexID {
	return slices.Clone(g.order)
}

// Successors returns the direct successors of id in insertion order.
func (g *Graph[V]) Successors(id VertexID) []VertexID {
	vx, ok := g.vertices[id]
	if !ok {
		return nil
	}
	out := make([]VertexID, 0, len(vx.out))
	for _, eid := range vx.out {
		out = append(out, g.edges[eid].To)
	}
	slices.Sort(out)
	return out
}

// Predecessors returns the direct predecessors of id in insertion order.
func (g *Graph[V]) Predecessors(id VertexID) []VertexID {
	vx, ok := g.vertices[id]
	if !ok {
		return nil
	}
	out := make([]VertexID, 0, len(vx.in))
	for _, eid := range vx.in {
		out = append(out, g.edges[eid].From)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of vertices.
func (g *Graph[V]) Len() int {
	return len(g.vertices)
}

// EdgeCount returns the number of edges.
func (g *Graph[V]) EdgeCount() int {
	return len(g.edges)
}
