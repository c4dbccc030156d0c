package rendergraph

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/birdayz/rendergraph/rbus"
	"github.com/birdayz/rendergraph/rnode"
	"github.com/birdayz/rendergraph/rport"
)

var (
	rgba = rport.Texture2D(rport.FormatRGBA8Unorm)
	r32  = rport.Texture2D(rport.FormatR32Float)
)

// First port of each direction; port ids start at 1.
const (
	in1  rport.PortID = 1
	in2  rport.PortID = 2
	out1 rport.PortID = 1
	out2 rport.PortID = 2
)

type testResource struct {
	id   uint64
	desc rport.Descriptor
}

func (r *testResource) ResourceID() uint64           { return r.id }
func (r *testResource) Descriptor() rport.Descriptor { return r.desc }

func texture(id uint64) *testResource {
	return &testResource{id: id, desc: rgba}
}

// renderLog collects node names in render order.
type renderLog struct {
	names []string
}

// passType builds a node with the given inputs and outputs, all rgba. The
// inputs are required if required is set.
func passType(log *renderLog, inputs, outputs int, required bool) rnode.Factory {
	return rnode.Func(
		func(_ context.Context, h rnode.Host, _ rnode.Frame) bool {
			if log != nil {
				log.names = append(log.names, h.Info().Name)
			}
			return true
		},
		rnode.WithInit(func(_ context.Context, h rnode.Host) error {
			var opts []rport.Option
			if required {
				opts = append(opts, rport.Required())
			}
			for range inputs {
				if _, err := h.AddInput("in", rgba, opts...); err != nil {
					return err
				}
			}
			for range outputs {
				if _, err := h.AddOutput("out", rgba); err != nil {
					return err
				}
			}
			return nil
		}),
	)
}

// recorder remembers every event published on a bus.
type recorder struct {
	topics   []rbus.Topic
	payloads []any
}

func record(bus *rbus.Bus) *recorder {
	r := &recorder{}
	bus.Subscribe(rbus.Any, func(topic rbus.Topic, payload any) {
		r.topics = append(r.topics, topic)
		r.payloads = append(r.payloads, payload)
	})
	return r
}

func (r *recorder) count(topic rbus.Topic) int {
	n := 0
	for _, t := range r.topics {
		if t == topic {
			n++
		}
	}
	return n
}

func (r *recorder) portEvents(topic rbus.Topic) []PortEvent {
	var evs []PortEvent
	for i, t := range r.topics {
		if t == topic {
			evs = append(evs, r.payloads[i].(PortEvent))
		}
	}
	return evs
}

type fixture struct {
	seg *Segment
	bus *rbus.Bus
	ev  *recorder
	log *renderLog
}

// newFixture creates a segment with the node types
//
//	source:   no inputs, one output
//	pass:     one optional input, one output
//	required: one required input, one output
//	merge:    two optional inputs, one output
//	split:    one optional input, two outputs
func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	log := &renderLog{}
	bus := rbus.New(NullLogger())
	ev := record(bus)

	opts = append([]Option{
		WithBus(bus),
		WithFactory("source", passType(log, 0, 1, false)),
		WithFactory("pass", passType(log, 1, 1, false)),
		WithFactory("required", passType(log, 1, 1, true)),
		WithFactory("merge", passType(log, 2, 1, false)),
		WithFactory("split", passType(log, 1, 2, false)),
	}, opts...)

	seg, err := New(context.Background(), "test", opts...)
	assert.NoError(t, err)
	return &fixture{seg: seg, bus: bus, ev: ev, log: log}
}

func (f *fixture) add(t *testing.T, typ rnode.Type, name string) NodeID {
	t.Helper()
	n, err := f.seg.AddNode(context.Background(), typ, name)
	assert.NoError(t, err)
	return n.ID()
}

func (f *fixture) connect(t *testing.T, src, dst NodeID) {
	t.Helper()
	assert.NoError(t, f.seg.Connect(src, out1, dst, in1))
}

func (f *fixture) node(t *testing.T, id NodeID) *Node {
	t.Helper()
	n, ok := f.seg.Node(id)
	assert.True(t, ok)
	return n
}

func (f *fixture) resource(t *testing.T, id NodeID, dir rport.Direction, port rport.PortID) rport.Resource {
	t.Helper()
	p, ok := f.node(t, id).Port(dir, port)
	assert.True(t, ok)
	return p.Resource
}
