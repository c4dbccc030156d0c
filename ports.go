package rendergraph

import (
	"github.com/birdayz/rendergraph/rport"
)

// AddInput declares an input port on a node.
func (s *Segment) AddInput(node NodeID, name string, d rport.Descriptor, opts ...rport.Option) (rport.PortID, error) {
	n, err := s.lookup(node)
	if err != nil {
		return 0, err
	}
	return n.ports.AddInput(name, d, opts...)
}

// AddOutput declares an output port on a node.
func (s *Segment) AddOutput(node NodeID, name string, d rport.Descriptor, opts ...rport.Option) (rport.PortID, error) {
	n, err := s.lookup(node)
	if err != nil {
		return 0, err
	}
	return n.ports.AddOutput(name, d, opts...)
}

// DeleteInput removes an input port together with the connection feeding it.
func (s *Segment) DeleteInput(node NodeID, id rport.PortID) error {
	return s.deletePort(node, rport.Input, id)
}

// DeleteOutput removes an output port together with every connection it
// feeds.
func (s *Segment) DeleteOutput(node NodeID, id rport.PortID) error {
	return s.deletePort(node, rport.Output, id)
}

func (s *Segment) deletePort(node NodeID, dir rport.Direction, id rport.PortID) error {
	n, err := s.lookup(node)
	if err != nil {
		return err
	}
	if _, ok := n.ports.Port(dir, id); !ok {
		if dir == rport.Input {
			return n.ports.DeleteInput(id)
		}
		return n.ports.DeleteOutput(id)
	}

	for _, c := range s.portConnections(node, dir, id) {
		s.removeConnection(c)
	}

	if dir == rport.Input {
		err = n.ports.DeleteInput(id)
	} else {
		err = n.ports.DeleteOutput(id)
	}
	s.drain()
	return err
}

// Attach binds a resource to a port of a node. A nil resource detaches.
// Binding an output propagates to every connected input that is empty;
// unbinding it removes it from the inputs it was propagated to.
func (s *Segment) Attach(node NodeID, dir rport.Direction, id rport.PortID, res rport.Resource) error {
	n, err := s.lookup(node)
	if err != nil {
		return err
	}
	err = n.ports.Attach(dir, id, res, rport.OriginUser)
	s.drain()
	return err
}

// Detach unbinds whatever is bound to a port.
func (s *Segment) Detach(node NodeID, dir rport.Direction, id rport.PortID) error {
	return s.Attach(node, dir, id, nil)
}

func (s *Segment) portConnections(node NodeID, dir rport.Direction, id rport.PortID) []Connection {
	var conns []Connection
	if dir == rport.Input {
		for _, c := range s.incoming[node] {
			if c.DstInput == id {
				conns = append(conns, c)
			}
		}
		return conns
	}
	for _, c := range s.outgoing[node] {
		if c.SrcOutput == id {
			conns = append(conns, c)
		}
	}
	return conns
}
