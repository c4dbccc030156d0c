// Package rmetrics exposes render graph activity as Prometheus metrics.
//
// Metrics are fed from the segment's event bus, plus an interceptor for
// per-node render timing:
//
//	m := rmetrics.New()
//	m.MustRegister(prometheus.DefaultRegisterer)
//	seg, _ := rendergraph.New(ctx, "main",
//	    rendergraph.WithBus(bus),
//	    rendergraph.WithInterceptors(m.Interceptor()),
//	)
//	m.Subscribe(bus)
package rmetrics

import (
	"time"

	"github.com/birdayz/rendergraph"
	"github.com/birdayz/rendergraph/rbus"
	"github.com/birdayz/rendergraph/rnode"
	"github.com/birdayz/rendergraph/rport"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

const namespace = "rendergraph"

// Render outcomes used as the status label.
const (
	StatusRendered = "rendered"
	StatusFailed   = "failed"
	StatusSkipped  = "skipped"
)

// Metrics contains all render graph metrics
type Metrics struct {
	Nodes              *prometheus.GaugeVec
	Connections        *prometheus.GaugeVec
	Frames             *prometheus.CounterVec
	FrameDuration      *prometheus.HistogramVec
	NodeRenders        *prometheus.CounterVec
	NodeRenderDuration *prometheus.HistogramVec
	Bindings           *prometheus.CounterVec
}

// New creates the metrics. They still have to be registered.
func New() *Metrics {
	return &Metrics{
		Nodes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "segment",
				Name:      "nodes",
				Help:      "Number of nodes in a segment",
			},
			[]string{"segment"},
		),

		Connections: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "segment",
				Name:      "connections",
				Help:      "Number of port connections in a segment",
			},
			[]string{"segment"},
		),

		Frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "frame",
				Name:      "rendered_total",
				Help:      "Total number of rendered frames",
			},
			[]string{"segment"},
		),

		FrameDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "frame",
				Name:      "duration_seconds",
				Help:      "Wall time of a whole frame",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"segment"},
		),

		NodeRenders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "node",
				Name:      "renders_total",
				Help:      "Node render outcomes (rendered, failed, skipped)",
			},
			[]string{"segment", "status"},
		),

		NodeRenderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "node",
				Name:      "render_duration_seconds",
				Help:      "Wall time of a single node render",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
			},
			[]string{"segment", "type"},
		),

		Bindings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "port",
				Name:      "bindings_total",
				Help:      "Resource attach and detach operations on ports",
			},
			[]string{"segment", "direction", "origin", "action"},
		),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Nodes,
		m.Connections,
		m.Frames,
		m.FrameDuration,
		m.NodeRenders,
		m.NodeRenderDuration,
		m.Bindings,
	}
}

// Register registers all metrics with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	var errs error
	for _, c := range m.collectors() {
		errs = multierr.Append(errs, reg.Register(c))
	}
	return errs
}

// MustRegister is like Register but panics on error.
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.collectors()...)
}

// Subscribe feeds the metrics from bus. Unsubscribe the returned
// subscriptions to stop.
func (m *Metrics) Subscribe(bus rbus.Subscriber) []rbus.Subscription {
	return []rbus.Subscription{
		bus.Subscribe(rendergraph.TopicNodeAdded, m.onNode),
		bus.Subscribe(rendergraph.TopicNodeRemoved, m.onNode),
		bus.Subscribe(rendergraph.TopicConnected, m.onConnection),
		bus.Subscribe(rendergraph.TopicDisconnected, m.onConnection),
		bus.Subscribe(rendergraph.TopicFrameRendered, m.onFrame),
		bus.Subscribe(rport.TopicResourceAttached, m.onBinding),
		bus.Subscribe(rport.TopicResourceDetached, m.onBinding),
	}
}

// Interceptor measures every node render.
func (m *Metrics) Interceptor() rnode.RenderInterceptor {
	return rnode.TimingInterceptor(func(info rnode.Info, d time.Duration, _ bool) {
		m.NodeRenderDuration.WithLabelValues(info.Segment, string(info.Type)).Observe(d.Seconds())
	})
}

func (m *Metrics) onNode(topic rbus.Topic, payload any) {
	ev, ok := payload.(rendergraph.NodeEvent)
	if !ok {
		return
	}
	g := m.Nodes.WithLabelValues(ev.Segment)
	if topic == rendergraph.TopicNodeAdded {
		g.Inc()
	} else {
		g.Dec()
	}
}

func (m *Metrics) onConnection(topic rbus.Topic, payload any) {
	ev, ok := payload.(rendergraph.ConnectionEvent)
	if !ok {
		return
	}
	g := m.Connections.WithLabelValues(ev.Segment)
	if topic == rendergraph.TopicConnected {
		g.Inc()
	} else {
		g.Dec()
	}
}

func (m *Metrics) onFrame(_ rbus.Topic, payload any) {
	r, ok := payload.(*rendergraph.FrameReport)
	if !ok {
		return
	}
	m.Frames.WithLabelValues(r.Segment).Inc()
	m.FrameDuration.WithLabelValues(r.Segment).Observe(r.Duration.Seconds())
	m.NodeRenders.WithLabelValues(r.Segment, StatusRendered).Add(float64(len(r.Rendered)))
	m.NodeRenders.WithLabelValues(r.Segment, StatusFailed).Add(float64(len(r.Failed)))
	m.NodeRenders.WithLabelValues(r.Segment, StatusSkipped).Add(float64(len(r.Skipped)))
}

func (m *Metrics) onBinding(topic rbus.Topic, payload any) {
	ev, ok := payload.(rendergraph.PortEvent)
	if !ok {
		return
	}
	action := "attach"
	if topic == rport.TopicResourceDetached {
		action = "detach"
	}
	m.Bindings.WithLabelValues(ev.Segment, ev.Direction.String(), ev.Origin.String(), action).Inc()
}
