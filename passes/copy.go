package passes

import (
	"context"

	"github.com/birdayz/rendergraph/rnode"
	"github.com/birdayz/rendergraph/rpool"
	"github.com/birdayz/rendergraph/rport"
)

// Port names of the copy pass.
const (
	CopyInput  = "source"
	CopyOutput = "copy"
)

type copyPass struct {
	pass
	input rport.PortID
}

// Copy copies whatever is bound to its required input into a pooled
// texture of its own.
func Copy(d rport.Descriptor, e rpool.Extent, sub Submitter) rnode.Factory {
	return func(_ context.Context, h rnode.Host) (rnode.Impl, error) {
		in, err := h.AddInput(CopyInput, d, rport.Required())
		if err != nil {
			return nil, err
		}
		p := &copyPass{input: in}
		if err := p.init(h, sub, CopyOutput, d, e); err != nil {
			return nil, err
		}
		return p, nil
	}
}

func (p *copyPass) Render(ctx context.Context, f rnode.Frame) bool {
	src, ok := p.host.Port(rport.Input, p.input)
	if !ok || !src.Bound() {
		return false
	}
	return p.submit(ctx, Command{
		Op:     OpCopy,
		Frame:  f.Index,
		Source: src.Resource,
		Target: p.target,
	})
}
