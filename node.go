package rendergraph

import (
	"fmt"
	"log/slog"

	"github.com/birdayz/rendergraph/rbus"
	"github.com/birdayz/rendergraph/rdag"
	"github.com/birdayz/rendergraph/rnode"
	"github.com/birdayz/rendergraph/rpool"
	"github.com/birdayz/rendergraph/rport"
)

// NodeID identifies a node within its segment. Ids are never reused.
type NodeID uint64

// Node is a vertex of a segment: a typed set of ports plus the
// implementation that renders it.
type Node struct {
	id      NodeID
	typ     rnode.Type
	name    string
	segment string
	vertex  rdag.VertexID
	ports   *rport.Registry
	impl    rnode.Impl
	subs    []rbus.Subscription
	dead    bool
}

func (n *Node) ID() NodeID {
	return n.id
}

func (n *Node) Type() rnode.Type {
	return n.typ
}

func (n *Node) Name() string {
	return n.name
}

// Segment returns the name of the owning segment.
func (n *Node) Segment() string {
	return n.segment
}

func (n *Node) Inputs() []rport.Port {
	return n.ports.Inputs()
}

func (n *Node) Outputs() []rport.Port {
	return n.ports.Outputs()
}

func (n *Node) Port(dir rport.Direction, id rport.PortID) (rport.Port, bool) {
	return n.ports.Port(dir, id)
}

// PortProperty reads a single port property.
func (n *Node) PortProperty(dir rport.Direction, id rport.PortID, prop rport.Property) (any, error) {
	return n.ports.Property(dir, id, prop)
}

// Impl returns the node implementation. It is nil while the node initializes.
func (n *Node) Impl() rnode.Impl {
	return n.impl
}

func (n *Node) info() rnode.Info {
	return rnode.Info{ID: uint64(n.id), Name: n.name, Type: n.typ, Segment: n.segment}
}

func (n *Node) String() string {
	return fmt.Sprintf("%s/%s#%d", n.segment, n.name, n.id)
}

// Connection links one output port to one input port of another node.
type Connection struct {
	SrcNode   NodeID
	SrcOutput rport.PortID
	DstNode   NodeID
	DstInput  rport.PortID
}

func (c Connection) String() string {
	return fmt.Sprintf("%d:%d -> %d:%d", c.SrcNode, c.SrcOutput, c.DstNode, c.DstInput)
}

// host is the rnode.Host of one node. It resolves its node through the
// segment on every call, so an implementation that outlives its node gets
// ErrNodeNotFound instead of touching freed state.
type host struct {
	s    *Segment
	node *Node
}

func (h host) resolve() (*Node, error) {
	if h.node.dead {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, h.node.id)
	}
	return h.node, nil
}

func (h host) Info() rnode.Info {
	return h.node.info()
}

func (h host) AddInput(name string, d rport.Descriptor, opts ...rport.Option) (rport.PortID, error) {
	if _, err := h.resolve(); err != nil {
		return 0, err
	}
	return h.s.AddInput(h.node.id, name, d, opts...)
}

func (h host) AddOutput(name string, d rport.Descriptor, opts ...rport.Option) (rport.PortID, error) {
	if _, err := h.resolve(); err != nil {
		return 0, err
	}
	return h.s.AddOutput(h.node.id, name, d, opts...)
}

func (h host) DeleteInput(id rport.PortID) error {
	if _, err := h.resolve(); err != nil {
		return err
	}
	return h.s.DeleteInput(h.node.id, id)
}

func (h host) DeleteOutput(id rport.PortID) error {
	if _, err := h.resolve(); err != nil {
		return err
	}
	return h.s.DeleteOutput(h.node.id, id)
}

func (h host) Attach(dir rport.Direction, id rport.PortID, res rport.Resource) error {
	if _, err := h.resolve(); err != nil {
		return err
	}
	return h.s.Attach(h.node.id, dir, id, res)
}

func (h host) Port(dir rport.Direction, id rport.PortID) (rport.Port, bool) {
	n, err := h.resolve()
	if err != nil {
		return rport.Port{}, false
	}
	return n.Port(dir, id)
}

func (h host) Inputs() []rport.Port {
	n, err := h.resolve()
	if err != nil {
		return nil
	}
	return n.Inputs()
}

func (h host) Outputs() []rport.Port {
	n, err := h.resolve()
	if err != nil {
		return nil
	}
	return n.Outputs()
}

func (h host) Pool() rpool.Pool {
	return h.s.pool
}

func (h host) Logger() *slog.Logger {
	return h.s.log.With("node", h.node.id, "name", h.node.name)
}

// Subscribe returns the zero Subscription once the node is gone.
func (h host) Subscribe(topic rbus.Topic, fn rbus.Handler) rbus.Subscription {
	if h.node.dead {
		return rbus.Subscription{}
	}
	sub := h.s.bus.Subscribe(topic, fn)
	h.node.subs = append(h.node.subs, sub)
	return sub
}

var _ rnode.Host = host{}
