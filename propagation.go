package rendergraph

import (
	"github.com/birdayz/rendergraph/rbus"
	"github.com/birdayz/rendergraph/rport"
)

// work is a pending propagation step. Port event handlers only queue work;
// it runs once the mutation that caused the event has finished.
type work struct {
	attach bool
	node   NodeID
	port   rport.PortID
	res    rport.Resource
}

// observe queues propagation for output binding changes. Input events are
// ignored, so unbinding a propagated input never travels back upstream.
func (s *Segment) observe(topic rbus.Topic, payload any) {
	ev, ok := payload.(rport.Event)
	if !ok || ev.Direction != rport.Output {
		return
	}
	s.queue = append(s.queue, work{
		attach: topic == rport.TopicResourceAttached,
		node:   NodeID(ev.Node),
		port:   ev.Port,
		res:    ev.Resource,
	})
}

func (s *Segment) forward(topic rbus.Topic, payload any) {
	if ev, ok := payload.(rport.Event); ok {
		s.bus.Publish(topic, PortEvent{Segment: s.name, Event: ev})
	}
}

// drain runs queued work until the queue is empty. Work queued while
// draining is picked up by the running drain.
func (s *Segment) drain() {
	if s.draining {
		return
	}
	s.draining = true
	defer func() { s.draining = false }()

	for len(s.queue) > 0 {
		w := s.queue[0]
		s.queue[0] = work{}
		s.queue = s.queue[1:]
		if w.attach {
			s.propagateAttach(w.node)
		} else {
			s.propagateDetach(w)
		}
	}
	s.queue = nil
}

// propagateAttach binds every empty input of every node other than src to
// the first output feeding it that holds a resource.
func (s *Segment) propagateAttach(src NodeID) {
	for _, n := range s.Nodes() {
		if n.id == src {
			continue
		}
		for _, in := range n.ports.Inputs() {
			if in.Bound() {
				continue
			}
			for _, c := range s.incoming[n.id] {
				if c.DstInput != in.ID || c.SrcNode == n.id {
					continue
				}
				producer, ok := s.nodes[c.SrcNode]
				if !ok {
					continue
				}
				res := producer.ports.Resource(rport.Output, c.SrcOutput)
				if res == nil {
					continue
				}
				if err := n.ports.Attach(rport.Input, in.ID, res, rport.OriginPropagation); err != nil {
					s.log.Warn("Failed to propagate resource",
						"connection", c.String(), "input", in.Name, "error", err)
				}
				break
			}
		}
	}
}

// propagateDetach unbinds the released resource from every input the output
// feeds, as long as the input still holds that very resource.
func (s *Segment) propagateDetach(w work) {
	for _, c := range s.outgoing[w.node] {
		if c.SrcOutput != w.port {
			continue
		}
		dst, ok := s.nodes[c.DstNode]
		if !ok {
			continue
		}
		if !rport.SameResource(dst.ports.Resource(rport.Input, c.DstInput), w.res) {
			continue
		}
		if err := dst.ports.Detach(rport.Input, c.DstInput, rport.OriginPropagation); err != nil {
			s.log.Warn("Failed to propagate detach", "connection", c.String(), "error", err)
		}
	}
}
