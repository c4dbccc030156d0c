package rdag

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func addNodes(t testing.TB, g *Graph[string], names ...string) []VertexID {
	out := make([]VertexID, len(names))
	for i, n := range names {
		id, err := g.AddNode(n)
		assert.NoError(t, err)
		out[i] = id
	}
	return out
}

func TestAddNode(t *testing.T) {
	g := New[string]()
	ids := addNodes(t, g, "a", "b")
	assert.Equal(t, []VertexID{1, 2}, ids)

	v, ok := g.Value(ids[1])
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	_, ok = g.Value(99)
	assert.False(t, ok)
	assert.Equal(t, 2, g.Len())
}

func TestDeleteNode(t *testing.T) {
	t.Run("isolated vertex", func(t *testing.T) {
		g := New[string]()
		v := addNodes(t, g, "a", "b", "c")
		assert.NoError(t, g.DeleteNode(v[1]))
		assert.Equal(t, []VertexID{v[0], v[2]}, g.Vertices())

		// Ids are not reused.
		d := addNodes(t, g, "d")
		assert.Equal(t, VertexID(4), d[0])
	})

	t.Run("vertex with edges", func(t *testing.T) {
		g := New[string]()
		v := addNodes(t, g, "a", "b")
		_, err := g.AddConnection(v[0], v[1])
		assert.NoError(t, err)
		assert.True(t, errors.Is(g.DeleteNode(v[0]), ErrVertexHasEdges))
		assert.True(t, errors.Is(g.DeleteNode(v[1]), ErrVertexHasEdges))
	})

	t.Run("unknown vertex", func(t *testing.T) {
		g := New[string]()
		assert.True(t, errors.Is(g.DeleteNode(5), ErrVertexNotFound))
	})
}

func TestAddConnection(t *testing.T) {
	g := New[string]()
	v := addNodes(t, g, "a", "b")

	e, err := g.AddConnection(v[0], v[1])
	assert.NoError(t, err)
	assert.Equal(t, 1, g.EdgeCount())

	edge, ok := g.Edge(e)
	assert.True(t, ok)
	assert.Equal(t, Edge{ID: e, From: v[0], To: v[1]}, edge)

	t.Run("duplicate pair", func(t *testing.T) {
		existing, err := g.AddConnection(v[0], v[1])
		assert.True(t, errors.Is(err, ErrEdgeExists))
		assert.Equal(t, e, existing)
	})

	t.Run("self loop", func(t *testing.T) {
		_, err := g.AddConnection(v[0], v[0])
		assert.True(t, errors.Is(err, ErrSelfLoop))
	})

	t.Run("unknown vertex", func(t *testing.T) {
		_, err := g.AddConnection(v[0], 42)
		assert.True(t, errors.Is(err, ErrVertexNotFound))
		_, err = g.AddConnection(42, v[0])
		assert.True(t, errors.Is(err, ErrVertexNotFound))
	})
}

func TestDeleteConnection(t *testing.T) {
	g := New[string]()
	v := addNodes(t, g, "a", "b")
	e, err := g.AddConnection(v[0], v[1])
	assert.NoError(t, err)

	assert.NoError(t, g.DeleteConnection(e))
	assert.Equal(t, 0, g.EdgeCount())
	assert.False(t, g.IsConnectionDefined(v[0], v[1]))
	assert.Equal(t, 0, len(g.Successors(v[0])))

	assert.True(t, errors.Is(g.DeleteConnection(e), ErrEdgeNotFound))
}

func TestIsConnectionDefined(t *testing.T) {
	g := New[string]()
	v := addNodes(t, g, "a", "b", "c")
	assert.False(t, g.IsConnectionDefined(AnyVertex, AnyVertex))

	_, err := g.AddConnection(v[0], v[1])
	assert.NoError(t, err)

	tests := []struct {
		src, dst VertexID
		want     bool
	}{
		{v[0], v[1], true},
		{v[1], v[0], false},
		{v[0], AnyVertex, true},
		{v[1], AnyVertex, false},
		{AnyVertex, v[1], true},
		{AnyVertex, v[0], false},
		{AnyVertex, v[2], false},
		{AnyVertex, AnyVertex, true},
		{99, AnyVertex, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d->%d", tt.src, tt.dst), func(t *testing.T) {
			assert.Equal(t, tt.want, g.IsConnectionDefined(tt.src, tt.dst))
		})
	}
}

func TestSolve(t *testing.T) {
	t.Run("empty graph", func(t *testing.T) {
		g := New[string]()
		assert.True(t, g.Solve())
		values, err := g.TopologicallySortedValues()
		assert.NoError(t, err)
		assert.Equal(t, 0, len(values))
	})

	t.Run("chain", func(t *testing.T) {
		g := New[string]()
		v := addNodes(t, g, "c", "b", "a")
		_, _ = g.AddConnection(v[2], v[1])
		_, _ = g.AddConnection(v[1], v[0])

		assert.True(t, g.Solve())
		values, err := g.TopologicallySortedValues()
		assert.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, values)
	})

	t.Run("ties broken by insertion order", func(t *testing.T) {
		g := New[string]()
		v := addNodes(t, g, "x", "y", "z", "sink")
		_, _ = g.AddConnection(v[2], v[3])
		_, _ = g.AddConnection(v[0], v[3])
		_, _ = g.AddConnection(v[1], v[3])

		for i := 0; i < 5; i++ {
			values, err := g.TopologicallySortedValues()
			assert.NoError(t, err)
			assert.Equal(t, []string{"x", "y", "z", "sink"}, values)
		}
	})

	t.Run("cycle", func(t *testing.T) {
		g := New[string]()
		v := addNodes(t, g, "a", "b", "c")
		_, _ = g.AddConnection(v[0], v[1])
		_, _ = g.AddConnection(v[1], v[2])
		e, _ := g.AddConnection(v[2], v[0])

		assert.False(t, g.Solve())
		_, err := g.TopologicallySortedValues()
		assert.True(t, errors.Is(err, ErrCycleDetected))
		assert.Contains(t, err.Error(), "1 -> 2 -> 3 -> 1")
		assert.Equal(t, []VertexID{1, 2, 3, 1}, g.CyclePath())

		// Solve does not repair; removing the edge does.
		assert.Equal(t, 3, g.EdgeCount())
		assert.NoError(t, g.DeleteConnection(e))
		assert.True(t, g.Solve())
		assert.Zero(t, g.CyclePath())
	})

	t.Run("order recomputed after mutation", func(t *testing.T) {
		g := New[string]()
		v := addNodes(t, g, "a", "b")
		values, _ := g.TopologicallySortedValues()
		assert.Equal(t, []string{"a", "b"}, values)

		_, _ = g.AddConnection(v[1], v[0])
		values, _ = g.TopologicallySortedValues()
		assert.Equal(t, []string{"b", "a"}, values)
	})
}

func TestSuccessorsPredecessors(t *testing.T) {
	g := New[string]()
	v := addNodes(t, g, "a", "b", "c")
	_, _ = g.AddConnection(v[0], v[2])
	_, _ = g.AddConnection(v[0], v[1])
	_, _ = g.AddConnection(v[1], v[2])

	assert.Equal(t, []VertexID{v[1], v[2]}, g.Successors(v[0]))
	assert.Equal(t, []VertexID{v[0], v[1]}, g.Predecessors(v[2]))
	assert.Zero(t, g.Successors(99))
}

// TestRandomAcyclicOrder adds random forward edges and checks that every
// edge source precedes its destination in the computed order.
func TestRandomAcyclicOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 20; round++ {
		g := New[int]()
		const n = 30
		perm := rng.Perm(n)
		v := make([]VertexID, n)
		for i := range v {
			v[i], _ = g.AddNode(i)
		}
		// rank[perm[i]] = i defines a hidden total order; only add edges
		// that respect it so the graph stays acyclic.
		rank := make([]int, n)
		for i, p := range perm {
			rank[p] = i
		}
		for k := 0; k < 80; k++ {
			a, b := rng.Intn(n), rng.Intn(n)
			if rank[a] < rank[b] {
				_, _ = g.AddConnection(v[a], v[b])
			}
		}

		order, err := g.TopologicalOrder()
		assert.NoError(t, err)
		pos := map[VertexID]int{}
		for i, id := range order {
			pos[id] = i
		}
		for _, e := range g.Edges() {
			assert.True(t, pos[e.From] < pos[e.To], "edge %d -> %d out of order", e.From, e.To)
		}
	}
}
