package rmetrics

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/birdayz/rendergraph"
	"github.com/birdayz/rendergraph/rbus"
	"github.com/birdayz/rendergraph/rnode"
	"github.com/birdayz/rendergraph/rport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type tex struct{}

func (tex) ResourceID() uint64           { return 1 }
func (tex) Descriptor() rport.Descriptor { return rport.Texture2D(rport.FormatRGBA8Unorm) }

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	m := New()
	reg := prometheus.NewRegistry()
	assert.NoError(t, m.Register(reg))

	bus := rbus.New(rendergraph.NullLogger())
	subs := m.Subscribe(bus)
	assert.Equal(t, 7, len(subs))

	src := rnode.Func(
		func(context.Context, rnode.Host, rnode.Frame) bool { return true },
		rnode.WithInit(func(_ context.Context, h rnode.Host) error {
			_, err := h.AddOutput("out", rport.Texture2D(rport.FormatRGBA8Unorm))
			return err
		}),
	)
	seg, err := rendergraph.New(ctx, "main",
		rendergraph.WithBus(bus),
		rendergraph.WithFactory("src", src),
		rendergraph.WithInterceptors(m.Interceptor()),
	)
	assert.NoError(t, err)

	a, err := seg.AddNode(ctx, "src", "a")
	assert.NoError(t, err)
	b, err := seg.AddNode(ctx, "src", "b")
	assert.NoError(t, err)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Nodes.WithLabelValues("main")))

	assert.NoError(t, seg.Connect(a.ID(), a.Outputs()[0].ID, seg.OutputNode().ID(), seg.Target()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Connections.WithLabelValues("main")))

	assert.NoError(t, seg.Attach(a.ID(), rport.Output, a.Outputs()[0].ID, tex{}))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Bindings.WithLabelValues("main", "output", "user", "attach")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Bindings.WithLabelValues("main", "input", "propagation", "attach")))

	_, err = seg.Render(ctx, rnode.Frame{Index: 1})
	assert.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Frames.WithLabelValues("main")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.NodeRenders.WithLabelValues("main", StatusRendered)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.FrameDuration))
	assert.Equal(t, 2, testutil.CollectAndCount(m.NodeRenderDuration))

	assert.NoError(t, seg.DeleteNodes(ctx, b.ID()))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Nodes.WithLabelValues("main")))

	assert.NoError(t, seg.Close(ctx))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Nodes.WithLabelValues("main")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Connections.WithLabelValues("main")))

	for _, sub := range subs {
		assert.NoError(t, bus.Unsubscribe(sub))
	}
}

func TestRegisterTwice(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()
	assert.NoError(t, m.Register(reg))
	assert.Error(t, m.Register(reg))
}
