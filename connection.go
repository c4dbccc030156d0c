package rendergraph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/birdayz/rendergraph/rdag"
	"github.com/birdayz/rendergraph/rport"
)

// Connect links output out of src to input in of dst.
//
// The ports must exist and have compatible descriptors, and the input must
// not already be fed by another output. Any number of connections between
// the same two nodes share one graph edge; a connection that would add an
// edge closing a cycle is rejected and leaves the segment unchanged.
//
// If the output already holds a resource, it is bound to the input right
// away.
func (s *Segment) Connect(src NodeID, out rport.PortID, dst NodeID, in rport.PortID) error {
	if s.closed {
		return ErrClosed
	}
	c := Connection{SrcNode: src, SrcOutput: out, DstNode: dst, DstInput: in}
	if src == dst {
		return fmt.Errorf("%w: %s", ErrSelfLoop, c)
	}

	sn, err := s.lookup(src)
	if err != nil {
		return err
	}
	dn, err := s.lookup(dst)
	if err != nil {
		return err
	}

	ok, err := sn.ports.IsOutputCompatibleWithInput(out, dn.ports, in)
	if err != nil {
		return fmt.Errorf("connect %s: %w", c, err)
	}
	if !ok {
		o, _ := sn.ports.Port(rport.Output, out)
		i, _ := dn.ports.Port(rport.Input, in)
		return fmt.Errorf("%w: %s %q (%s) -> %s %q (%s)",
			ErrIncompatiblePorts, sn, o.Name, o.Descriptor, dn, i.Name, i.Descriptor)
	}

	for _, existing := range s.incoming[dst] {
		if existing.DstInput != in {
			continue
		}
		if existing == c {
			return fmt.Errorf("%w: %s", ErrConnectionExists, c)
		}
		return fmt.Errorf("%w: %s already fed by %d:%d",
			ErrInputAlreadyConnected, c, existing.SrcNode, existing.SrcOutput)
	}

	if _, ok := s.graph.Connection(sn.vertex, dn.vertex); !ok {
		edge, err := s.graph.AddConnection(sn.vertex, dn.vertex)
		if err != nil {
			return fmt.Errorf("connect %s: %w", c, err)
		}
		if !s.graph.Solve() {
			cycle := s.describeCycle(s.graph.CyclePath())
			if err := s.graph.DeleteConnection(edge); err != nil || !s.graph.Solve() {
				panic(fmt.Sprintf("rendergraph: segment %q cannot undo rejected connection %s", s.name, c))
			}
			s.log.Debug("Rejected cyclic connection", "connection", c.String(), "cycle", cycle)
			return fmt.Errorf("connect %s: %w: %s", c, ErrCycleDetected, cycle)
		}
	}

	s.outgoing[src] = append(s.outgoing[src], c)
	s.incoming[dst] = append(s.incoming[dst], c)
	s.log.Debug("Connected", "connection", c.String())
	s.bus.Publish(TopicConnected, ConnectionEvent{Segment: s.name, Connection: c})

	if res := sn.ports.Resource(rport.Output, out); res != nil {
		s.queue = append(s.queue, work{attach: true, node: src, port: out, res: res})
	}
	s.drain()
	return nil
}

// Disconnect removes a connection. The graph edge between the two nodes
// goes with the last connection between them. If the input holds the
// resource of the output it was fed by, it is unbound.
func (s *Segment) Disconnect(src NodeID, out rport.PortID, dst NodeID, in rport.PortID) error {
	if s.closed {
		return ErrClosed
	}
	c := Connection{SrcNode: src, SrcOutput: out, DstNode: dst, DstInput: in}
	if !slices.Contains(s.outgoing[src], c) {
		return fmt.Errorf("%w: %s", ErrConnectionNotFound, c)
	}
	s.removeConnection(c)
	s.drain()
	return nil
}

func (s *Segment) removeConnection(c Connection) {
	match := func(other Connection) bool { return other == c }
	s.outgoing[c.SrcNode] = slices.DeleteFunc(s.outgoing[c.SrcNode], match)
	s.incoming[c.DstNode] = slices.DeleteFunc(s.incoming[c.DstNode], match)

	sn, dn := s.nodes[c.SrcNode], s.nodes[c.DstNode]
	if !s.pairConnected(c.SrcNode, c.DstNode) {
		if edge, ok := s.graph.Connection(sn.vertex, dn.vertex); ok {
			if err := s.graph.DeleteConnection(edge); err != nil {
				s.log.Error("Failed to remove edge", "connection", c.String(), "error", err)
			}
		}
	}

	res := sn.ports.Resource(rport.Output, c.SrcOutput)
	if res != nil && rport.SameResource(dn.ports.Resource(rport.Input, c.DstInput), res) {
		if err := dn.ports.Detach(rport.Input, c.DstInput, rport.OriginPropagation); err != nil {
			s.log.Warn("Failed to unbind disconnected input", "connection", c.String(), "error", err)
		}
	}

	s.log.Debug("Disconnected", "connection", c.String())
	s.bus.Publish(TopicDisconnected, ConnectionEvent{Segment: s.name, Connection: c})
}

func (s *Segment) pairConnected(src, dst NodeID) bool {
	return slices.ContainsFunc(s.outgoing[src], func(c Connection) bool {
		return c.DstNode == dst
	})
}

func (s *Segment) describeCycle(path []rdag.VertexID) string {
	names := make([]string, 0, len(path))
	for _, v := range path {
		if id, ok := s.graph.Value(v); ok {
			names = append(names, s.nodes[id].String())
		}
	}
	return strings.Join(names, " -> ")
}
