package rnode

import (
	"context"
	"fmt"
	"reflect"
)

// Base implements the optional parts of Impl: a no-op Deinit and a typed
// property table. Embed it and declare properties during init.
type Base struct {
	props map[PropertyID]*property
}

type property struct {
	value    any
	readOnly bool
}

// DeclareProperty registers a property with its initial value. The value's
// dynamic type is enforced by SetProperty.
func (b *Base) DeclareProperty(id PropertyID, initial any, readOnly bool) {
	if b.props == nil {
		b.props = map[PropertyID]*property{}
	}
	b.props[id] = &property{value: initial, readOnly: readOnly}
}

// Property returns the current value of a declared property.
func (b *Base) Property(id PropertyID) (any, error) {
	p, ok := b.props[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProperty, id)
	}
	return p.value, nil
}

// SetProperty replaces the value of a writable property.
func (b *Base) SetProperty(id PropertyID, value any) error {
	p, ok := b.props[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProperty, id)
	}
	if p.readOnly {
		return fmt.Errorf("%w: %q", ErrReadOnlyProperty, id)
	}
	if want, got := reflect.TypeOf(p.value), reflect.TypeOf(value); p.value != nil && want != got {
		return fmt.Errorf("%w: %q wants %v, got %v", ErrPropertyType, id, want, got)
	}
	p.value = value
	return nil
}

// Deinit does nothing.
func (b *Base) Deinit() error {
	return nil
}

// FuncOption configures optional behavior for Func nodes.
type FuncOption func(*funcImpl)

// WithInit adds initialization logic that runs before the node is added,
// typically declaring ports.
func WithInit(fn func(ctx context.Context, host Host) error) FuncOption {
	return func(f *funcImpl) {
		f.initFn = fn
	}
}

// WithDeinit adds cleanup logic.
func WithDeinit(fn func() error) FuncOption {
	return func(f *funcImpl) {
		f.deinitFn = fn
	}
}

// Func creates a Factory from a render function.
//
// Example:
//
//	reg.MustRegister("fullscreen", rnode.Func(
//	    func(ctx context.Context, host rnode.Host, f rnode.Frame) bool {
//	        return draw(f.Viewport)
//	    },
//	    rnode.WithInit(func(ctx context.Context, host rnode.Host) error {
//	        _, err := host.AddInput("color", rport.Texture2D(rport.FormatRGBA8Unorm), rport.Required())
//	        return err
//	    }),
//	))
func Func(render func(ctx context.Context, host Host, f Frame) bool, opts ...FuncOption) Factory {
	return func(ctx context.Context, host Host) (Impl, error) {
		impl := &funcImpl{host: host, renderFn: render}
		for _, opt := range opts {
			opt(impl)
		}
		if impl.initFn != nil {
			if err := impl.initFn(ctx, host); err != nil {
				return nil, err
			}
		}
		return impl, nil
	}
}

// funcImpl is the Impl behind Func.
type funcImpl struct {
	Base
	host     Host
	renderFn func(context.Context, Host, Frame) bool
	initFn   func(context.Context, Host) error
	deinitFn func() error
}

func (f *funcImpl) Render(ctx context.Context, frame Frame) bool {
	return f.renderFn(ctx, f.host, frame)
}

func (f *funcImpl) Deinit() error {
	if f.deinitFn != nil {
		return f.deinitFn()
	}
	return nil
}
