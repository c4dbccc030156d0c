package passes

import (
	"context"
	"image/color"

	"github.com/birdayz/rendergraph/rnode"
	"github.com/birdayz/rendergraph/rpool"
	"github.com/birdayz/rendergraph/rport"
)

// ClearOutput is the name of the clear pass output.
const ClearOutput = "color"

type clearPass struct {
	pass
}

// Clear fills a pooled texture with a solid color every frame. The color
// is the writable PropClearColor property.
func Clear(d rport.Descriptor, e rpool.Extent, c color.RGBA, sub Submitter) rnode.Factory {
	return func(_ context.Context, h rnode.Host) (rnode.Impl, error) {
		p := &clearPass{}
		if err := p.init(h, sub, ClearOutput, d, e); err != nil {
			return nil, err
		}
		p.DeclareProperty(PropClearColor, c, false)
		return p, nil
	}
}

func (p *clearPass) Render(ctx context.Context, f rnode.Frame) bool {
	c, err := p.Base.Property(PropClearColor)
	if err != nil {
		return false
	}
	return p.submit(ctx, Command{
		Op:     OpClear,
		Frame:  f.Index,
		Target: p.target,
		Color:  c.(color.RGBA),
	})
}
