package rendergraph

import (
	"context"

	"github.com/birdayz/rendergraph/rnode"
	"github.com/birdayz/rendergraph/rport"
)

// OutputTarget is the name of the output node's only input.
const OutputTarget = "target"

// PropPresentedFrames is a read-only uint64 property of the output node
// counting frames in which it had a target.
const PropPresentedFrames rnode.PropertyID = "presented_frames"

// PresentFunc receives the resource bound to the output node every frame.
type PresentFunc func(ctx context.Context, f rnode.Frame, target rport.Resource) bool

type outputNode struct {
	rnode.Base
	host      rnode.Host
	target    rport.PortID
	present   PresentFunc
	presented uint64
}

func outputFactory(d rport.Descriptor, present PresentFunc) rnode.Factory {
	return func(_ context.Context, h rnode.Host) (rnode.Impl, error) {
		target, err := h.AddInput(OutputTarget, d, rport.Required())
		if err != nil {
			return nil, err
		}
		return &outputNode{host: h, target: target, present: present}, nil
	}
}

func (o *outputNode) Render(ctx context.Context, f rnode.Frame) bool {
	p, ok := o.host.Port(rport.Input, o.target)
	if !ok || !p.Bound() {
		return false
	}
	o.presented++
	if o.present == nil {
		return true
	}
	return o.present(ctx, f, p.Resource)
}

func (o *outputNode) Property(id rnode.PropertyID) (any, error) {
	if id == PropPresentedFrames {
		return o.presented, nil
	}
	return o.Base.Property(id)
}

// Target returns the id of the output node's target input.
func (s *Segment) Target() rport.PortID {
	for _, p := range s.OutputNode().Inputs() {
		if p.Name == OutputTarget {
			return p.ID
		}
	}
	return 0
}
