// Package rendergraph assembles render passes into a graph and renders it
// once per frame in dependency order.
//
// A Segment owns nodes and the connections between their ports. Nodes are
// created from registered factories; connections only ever link an output
// to a compatible input of another node and never close a cycle. When a
// resource is bound to an output, the segment binds it to every connected
// input that is still empty, and unbinds it again when the output lets go.
//
//	seg, err := rendergraph.New(ctx, "main",
//	    rendergraph.WithFactory("clear", passes.Clear(rport.Texture2D(rport.FormatRGBA8Unorm), extent, color)),
//	)
//	clear, err := seg.AddNode(ctx, "clear", "background")
//	err = seg.Connect(clear.ID(), clearOut, seg.OutputNode().ID(), targetIn)
//	report, err := seg.Render(ctx, rnode.Frame{Index: 1})
//
// A Segment is NOT safe for concurrent use. All mutation and rendering
// happens on one goroutine; node init and deinit may be moved to another
// thread with WithDispatcher.
package rendergraph

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/birdayz/rendergraph/dispatch"
	"github.com/birdayz/rendergraph/internal/ids"
	"github.com/birdayz/rendergraph/rbus"
	"github.com/birdayz/rendergraph/rdag"
	"github.com/birdayz/rendergraph/rnode"
	"github.com/birdayz/rendergraph/rpool"
	"github.com/birdayz/rendergraph/rport"
	"go.uber.org/multierr"
)

// Segment is a render graph with exactly one output node.
type Segment struct {
	name string
	log  *slog.Logger

	bus        Bus
	pool       rpool.Pool
	dispatcher dispatch.Dispatcher
	factories  *rnode.Registry
	outputDesc rport.Descriptor
	present    PresentFunc

	extraFactories []typeFactory
	interceptors   []rnode.RenderInterceptor
	chain          *rnode.InterceptorChain

	// nodeBus carries port events of all nodes. The segment observes it for
	// propagation and forwards everything to bus.
	nodeBus *rbus.Bus
	subs    []rbus.Subscription

	graph    *rdag.Graph[NodeID]
	nodes    map[NodeID]*Node
	outgoing map[NodeID][]Connection
	incoming map[NodeID][]Connection
	output   NodeID
	nextID   ids.Counter[NodeID]

	queue    []work
	draining bool
	closed   bool
}

// New creates a segment and its output node.
func New(ctx context.Context, name string, opts ...Option) (*Segment, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	s := &Segment{
		name:       name,
		log:        NullLogger(),
		dispatcher: dispatch.Inline{},
		factories:  rnode.NewRegistry(),
		outputDesc: rport.Texture2D(rport.FormatRGBA8Unorm),
		graph:      rdag.New[NodeID](),
		nodes:      map[NodeID]*Node{},
		outgoing:   map[NodeID][]Connection{},
		incoming:   map[NodeID][]Connection{},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.log = s.log.With("segment", name)
	if s.bus == nil {
		s.bus = rbus.New(s.log)
	}
	if s.pool == nil {
		s.pool = rpool.NewMemory(rpool.WithLog(s.log))
	}
	for _, tf := range s.extraFactories {
		if err := s.factories.Register(tf.typ, tf.f); err != nil {
			return nil, fmt.Errorf("segment %q: %w", name, err)
		}
	}
	if err := s.outputDesc.Normalize().Validate(); err != nil {
		return nil, fmt.Errorf("segment %q output: %w", name, err)
	}
	s.chain = rnode.ChainInterceptors(s.interceptors...)

	s.nodeBus = rbus.New(s.log)
	s.subs = append(s.subs,
		s.nodeBus.Subscribe(rport.TopicResourceAttached, s.observe),
		s.nodeBus.Subscribe(rport.TopicResourceDetached, s.observe),
		s.nodeBus.Subscribe(rbus.Any, s.forward),
	)

	out, err := s.addNode(ctx, rnode.TypeOutput, "output", outputFactory(s.outputDesc, s.present))
	if err != nil {
		return nil, fmt.Errorf("segment %q: create output node: %w", name, err)
	}
	s.output = out.id

	s.log.Debug("Segment created", "output", out.id)
	return s, nil
}

// Name returns the segment name.
func (s *Segment) Name() string {
	return s.name
}

// Bus returns the bus the segment publishes on.
func (s *Segment) Bus() Bus {
	return s.bus
}

// AddNode creates a node of a registered type. The type's factory runs on
// the dispatcher and is awaited; if it fails the node is removed again and
// the error returned.
func (s *Segment) AddNode(ctx context.Context, typ rnode.Type, name string) (*Node, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if typ == rnode.TypeOutput {
		return nil, fmt.Errorf("%w: %q", ErrOutputExists, s.name)
	}
	factory, ok := s.factories.Lookup(typ)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, typ)
	}
	return s.addNode(ctx, typ, name, factory)
}

func (s *Segment) addNode(ctx context.Context, typ rnode.Type, name string, factory rnode.Factory) (*Node, error) {
	n := &Node{
		id:      s.nextID.Next(),
		typ:     typ,
		name:    name,
		segment: s.name,
	}
	n.ports = rport.NewRegistry(uint64(n.id), s.nodeBus)

	vertex, err := s.graph.AddNode(n.id)
	if err != nil {
		return nil, fmt.Errorf("add node %q: %w", name, err)
	}
	n.vertex = vertex
	s.nodes[n.id] = n

	var impl rnode.Impl
	err = s.dispatcher.Do(ctx, func(ctx context.Context) error {
		var err error
		impl, err = factory(ctx, host{s: s, node: n})
		return err
	})
	if err != nil {
		s.log.Warn("Node init failed", "node", n.id, "name", name, "type", typ, "error", err)
		s.discard(n)
		s.drain()
		return nil, fmt.Errorf("init node %q of type %q: %w", name, typ, err)
	}
	n.impl = impl

	s.log.Debug("Node added", "node", n.id, "name", name, "type", typ)
	s.bus.Publish(TopicNodeAdded, s.nodeEvent(n))
	s.drain()
	return n, nil
}

// DeleteNodes removes nodes. Either every node is removed or none is: an
// unknown id, the output node or a node with connections fails the whole
// call, and all such problems are reported together. Deinit errors do not
// stop the removal and are returned afterwards.
func (s *Segment) DeleteNodes(ctx context.Context, ids ...NodeID) error {
	if s.closed {
		return ErrClosed
	}

	var errs error
	seen := make(map[NodeID]struct{}, len(ids))
	targets := make([]*Node, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		n, ok := s.nodes[id]
		switch {
		case !ok:
			errs = multierr.Append(errs, fmt.Errorf("%w: %d", ErrNodeNotFound, id))
		case id == s.output:
			errs = multierr.Append(errs, fmt.Errorf("%w: %s", ErrReservedNode, n))
		case s.graph.IsConnectionDefined(n.vertex, rdag.AnyVertex),
			s.graph.IsConnectionDefined(rdag.AnyVertex, n.vertex):
			errs = multierr.Append(errs, fmt.Errorf("%w: %s", ErrNodeHasConnections, n))
		default:
			targets = append(targets, n)
		}
	}
	if errs != nil {
		return errs
	}

	for _, n := range targets {
		errs = multierr.Append(errs, s.destroy(ctx, n))
	}
	s.drain()
	return errs
}

// destroy tears down a node without connections. Deinit runs even if ctx
// is already cancelled: the node is dropped afterwards, and an impl that
// never deinitializes keeps its pool resources forever.
func (s *Segment) destroy(ctx context.Context, n *Node) error {
	s.bus.Publish(TopicNodeRemoving, s.nodeEvent(n))

	var err error
	if n.impl != nil {
		err = s.dispatcher.Do(context.WithoutCancel(ctx), func(context.Context) error {
			return n.impl.Deinit()
		})
		if err != nil {
			s.log.Warn("Node deinit failed", "node", n.id, "name", n.name, "error", err)
			err = fmt.Errorf("deinit %s: %w", n, err)
		}
	}

	s.discard(n)
	s.log.Debug("Node removed", "node", n.id, "name", n.name)
	s.bus.Publish(TopicNodeRemoved, s.nodeEvent(n))
	return err
}

// discard drops all state of a node. It must not have connections.
func (s *Segment) discard(n *Node) {
	for _, sub := range n.subs {
		if err := s.bus.Unsubscribe(sub); err != nil {
			s.log.Debug("Node subscription already gone", "node", n.id, "topic", sub.Topic)
		}
	}
	n.subs = nil
	n.ports.Release()
	if err := s.graph.DeleteNode(n.vertex); err != nil {
		panic(fmt.Sprintf("rendergraph: segment %q: remove vertex of %s: %v", s.name, n, err))
	}
	delete(s.nodes, n.id)
	delete(s.outgoing, n.id)
	delete(s.incoming, n.id)
	n.dead = true
}

// Node returns a node by id.
func (s *Segment) Node(id NodeID) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Nodes returns all nodes in creation order.
func (s *Segment) Nodes() []*Node {
	vertices := s.graph.Vertices()
	nodes := make([]*Node, 0, len(vertices))
	for _, v := range vertices {
		id, _ := s.graph.Value(v)
		nodes = append(nodes, s.nodes[id])
	}
	return nodes
}

// OutputNode returns the output node.
func (s *Segment) OutputNode() *Node {
	return s.nodes[s.output]
}

// Connections returns every connection, grouped by source node in creation
// order.
func (s *Segment) Connections() []Connection {
	var conns []Connection
	for _, n := range s.Nodes() {
		conns = append(conns, s.outgoing[n.id]...)
	}
	return conns
}

// EdgeCount returns the number of connected node pairs.
func (s *Segment) EdgeCount() int {
	return s.graph.EdgeCount()
}

// Order returns the node ids in render order.
func (s *Segment) Order() ([]NodeID, error) {
	order, err := s.graph.TopologicallySortedValues()
	if err != nil {
		return nil, fmt.Errorf("segment %q: %w", s.name, err)
	}
	return order, nil
}

// Property reads a property of a node implementation.
func (s *Segment) Property(node NodeID, id rnode.PropertyID) (any, error) {
	n, err := s.lookup(node)
	if err != nil {
		return nil, err
	}
	if n.impl == nil {
		return nil, fmt.Errorf("%w: %s is initializing", ErrNodeNotFound, n)
	}
	return n.impl.Property(id)
}

// SetProperty writes a property of a node implementation.
func (s *Segment) SetProperty(node NodeID, id rnode.PropertyID, value any) error {
	n, err := s.lookup(node)
	if err != nil {
		return err
	}
	if n.impl == nil {
		return fmt.Errorf("%w: %s is initializing", ErrNodeNotFound, n)
	}
	return n.impl.SetProperty(id, value)
}

// Close removes every connection, then deinitializes every node, consumers
// before producers, and releases all ports. Deinit errors are aggregated.
func (s *Segment) Close(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	s.closed = true

	order, err := s.graph.TopologicallySortedValues()
	if err != nil {
		order = order[:0]
		for _, n := range s.Nodes() {
			order = append(order, n.id)
		}
	}
	slices.Reverse(order)

	for _, c := range s.Connections() {
		s.removeConnection(c)
	}

	var errs error
	for _, id := range order {
		if n, ok := s.nodes[id]; ok {
			errs = multierr.Append(errs, s.destroy(ctx, n))
		}
	}
	s.queue = nil

	for _, sub := range s.subs {
		_ = s.nodeBus.Unsubscribe(sub)
	}
	s.subs = nil

	s.log.Debug("Segment closed")
	return errs
}

func (s *Segment) lookup(id NodeID) (*Node, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return n, nil
}

func (s *Segment) nodeEvent(n *Node) NodeEvent {
	return NodeEvent{Segment: s.name, Node: n.id, Type: n.typ, Name: n.name}
}
