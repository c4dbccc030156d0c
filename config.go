package rendergraph

import (
	"io"
	"log/slog"

	"github.com/birdayz/rendergraph/dispatch"
	"github.com/birdayz/rendergraph/rbus"
	"github.com/birdayz/rendergraph/rnode"
	"github.com/birdayz/rendergraph/rpool"
	"github.com/birdayz/rendergraph/rport"
	"github.com/go-logr/logr"
)

// Bus is the event bus a Segment publishes on.
type Bus interface {
	rbus.Publisher
	rbus.Subscriber
}

// Option is a function that configures a Segment
type Option func(*Segment)

// WithLog sets the logger for the segment
var WithLog = func(log *slog.Logger) Option {
	return func(s *Segment) {
		s.log = log
	}
}

// WithLogr sets a go-logr logger, bridged to slog.
var WithLogr = func(l logr.Logger) Option {
	return func(s *Segment) {
		s.log = slog.New(logr.ToSlogHandler(l))
	}
}

// WithBus sets the event bus. Segments sharing a bus tell their events apart
// by the Segment field of every payload.
var WithBus = func(b Bus) Option {
	return func(s *Segment) {
		s.bus = b
	}
}

// WithPool sets the resource pool handed to node implementations
var WithPool = func(p rpool.Pool) Option {
	return func(s *Segment) {
		s.pool = p
	}
}

// WithDispatcher sets where node init and deinit run. Defaults to the
// calling goroutine.
var WithDispatcher = func(d dispatch.Dispatcher) Option {
	return func(s *Segment) {
		s.dispatcher = d
	}
}

// WithFactories replaces the node type registry
var WithFactories = func(r *rnode.Registry) Option {
	return func(s *Segment) {
		s.factories = r
	}
}

// WithFactory registers a single node type. Registration errors are
// returned by New.
var WithFactory = func(typ rnode.Type, f rnode.Factory) Option {
	return func(s *Segment) {
		s.extraFactories = append(s.extraFactories, typeFactory{typ: typ, f: f})
	}
}

// WithOutputDescriptor sets the descriptor of the output node's target input
var WithOutputDescriptor = func(d rport.Descriptor) Option {
	return func(s *Segment) {
		s.outputDesc = d
	}
}

// WithPresent sets the function the output node calls with its bound target
// every frame.
var WithPresent = func(fn PresentFunc) Option {
	return func(s *Segment) {
		s.present = fn
	}
}

// WithInterceptors wraps every node render. The first interceptor is the
// outermost.
var WithInterceptors = func(interceptors ...rnode.RenderInterceptor) Option {
	return func(s *Segment) {
		s.interceptors = append(s.interceptors, interceptors...)
	}
}

type typeFactory struct {
	typ rnode.Type
	f   rnode.Factory
}

// NullLogger creates a logger that discards all output
func NullLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
