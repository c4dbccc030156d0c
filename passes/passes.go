// Package passes provides node types that only need a resource pool and
// somewhere to send their commands.
package passes

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	"github.com/birdayz/rendergraph/rnode"
	"github.com/birdayz/rendergraph/rpool"
	"github.com/birdayz/rendergraph/rport"
	"go.uber.org/multierr"
)

// Node types registered by Register.
const (
	TypeClear rnode.Type = "clear"
	TypeCopy  rnode.Type = "copy"
)

// Properties of the built-in passes.
const (
	PropClearColor rnode.PropertyID = "clear_color"
	PropExtent     rnode.PropertyID = "extent"
	PropSubmitted  rnode.PropertyID = "submitted"
)

var ErrSubmit = errors.New("passes: submit failed")

// Op is the kind of a Command.
type Op string

const (
	OpClear Op = "clear"
	OpCopy  Op = "copy"
)

// Command is one unit of GPU work recorded by a pass.
type Command struct {
	Pass   string
	Op     Op
	Frame  uint64
	Source rport.Resource
	Target rport.Resource
	Color  color.RGBA
}

// Submitter receives recorded commands.
type Submitter interface {
	Submit(ctx context.Context, cmd Command) error
}

// SubmitFunc adapts a function to Submitter.
type SubmitFunc func(ctx context.Context, cmd Command) error

func (f SubmitFunc) Submit(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// Discard drops every command.
var Discard Submitter = SubmitFunc(func(context.Context, Command) error { return nil })

// Config is shared by the passes registered with Register.
type Config struct {
	Descriptor rport.Descriptor
	Extent     rpool.Extent
	ClearColor color.RGBA
	Submitter  Submitter
}

// Register adds the clear and copy node types to reg.
func Register(reg *rnode.Registry, cfg Config) error {
	return multierr.Combine(
		reg.Register(TypeClear, Clear(cfg.Descriptor, cfg.Extent, cfg.ClearColor, cfg.Submitter)),
		reg.Register(TypeCopy, Copy(cfg.Descriptor, cfg.Extent, cfg.Submitter)),
	)
}

// pass holds what every built-in pass has: a host, one pooled target bound
// to its output, and a submitter.
type pass struct {
	rnode.Base
	host      rnode.Host
	sub       Submitter
	output    rport.PortID
	target    rport.Resource
	submitted uint64
}

func (p *pass) init(h rnode.Host, sub Submitter, output string, d rport.Descriptor, e rpool.Extent) error {
	if sub == nil {
		sub = Discard
	}
	p.host = h
	p.sub = sub

	id, err := h.AddOutput(output, d)
	if err != nil {
		return err
	}
	p.output = id

	target, err := h.Pool().Acquire(d, e)
	if err != nil {
		return fmt.Errorf("acquire %s target: %w", output, err)
	}
	if err := h.Attach(rport.Output, id, target); err != nil {
		return multierr.Append(err, h.Pool().Release(target))
	}
	p.target = target
	p.DeclareProperty(PropExtent, e, true)
	return nil
}

func (p *pass) submit(ctx context.Context, cmd Command) bool {
	cmd.Pass = p.host.Info().Name
	if err := p.sub.Submit(ctx, cmd); err != nil {
		p.host.Logger().Warn("Submit failed", "op", cmd.Op, "frame", cmd.Frame, "error", err)
		return false
	}
	p.submitted++
	return true
}

func (p *pass) Property(id rnode.PropertyID) (any, error) {
	if id == PropSubmitted {
		return p.submitted, nil
	}
	return p.Base.Property(id)
}

// Deinit returns the target to the pool.
func (p *pass) Deinit() error {
	if p.target == nil {
		return nil
	}
	err := p.host.Pool().Release(p.target)
	p.target = nil
	return err
}
