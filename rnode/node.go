// Package rnode defines what a concrete render pass implements and what it
// can see of the graph node that hosts it.
//
// A node type is registered as a Factory. When the segment adds a node of
// that type it calls the factory with a Host; the factory declares ports,
// acquires resources and returns the Impl that renders every frame.
package rnode

//go:generate mockgen -destination=../mock_rnode_test.go -package=rendergraph . Impl

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"time"

	"github.com/birdayz/rendergraph/rbus"
	"github.com/birdayz/rendergraph/rpool"
	"github.com/birdayz/rendergraph/rport"
)

var (
	ErrUnknownProperty  = errors.New("unknown property")
	ErrReadOnlyProperty = errors.New("read-only property")
	ErrPropertyType     = errors.New("property type mismatch")
)

// Type tags a kind of node.
type Type string

// TypeOutput is the reserved type of the single output node of a segment.
const TypeOutput Type = "output"

// Frame carries per-frame render parameters.
type Frame struct {
	Index     uint64
	Timestamp time.Duration
	Viewport  image.Rectangle
}

// Info identifies a node in logs and interceptors.
type Info struct {
	ID      uint64
	Name    string
	Type    Type
	Segment string
}

// PropertyID names a node specific property.
type PropertyID string

// Impl is the capability set of a concrete node type.
type Impl interface {
	// Render draws one frame. Returning false marks the node as failed for
	// this frame; the rest of the frame still executes.
	Render(ctx context.Context, f Frame) bool
	// Deinit releases everything acquired during init.
	Deinit() error
	Property(id PropertyID) (any, error)
	SetProperty(id PropertyID, value any) error
}

// Host is the view an implementation has of its own node.
type Host interface {
	Info() Info
	AddInput(name string, d rport.Descriptor, opts ...rport.Option) (rport.PortID, error)
	AddOutput(name string, d rport.Descriptor, opts ...rport.Option) (rport.PortID, error)
	DeleteInput(id rport.PortID) error
	DeleteOutput(id rport.PortID) error
	// Attach binds res to a port; nil detaches.
	Attach(dir rport.Direction, id rport.PortID, res rport.Resource) error
	Port(dir rport.Direction, id rport.PortID) (rport.Port, bool)
	Inputs() []rport.Port
	Outputs() []rport.Port
	Pool() rpool.Pool
	Logger() *slog.Logger
	// Subscribe listens on the segment's bus. Subscriptions end when the
	// node is destroyed; afterwards Subscribe does nothing and returns the
	// zero Subscription.
	Subscribe(topic rbus.Topic, h rbus.Handler) rbus.Subscription
}

// Factory initializes a node of one type. It runs on the segment's
// dispatcher and the node is not added until it returns.
type Factory func(ctx context.Context, host Host) (Impl, error)
