package rport

import (
	"errors"
	"fmt"
	"slices"

	"github.com/birdayz/rendergraph/internal/ids"
	"github.com/birdayz/rendergraph/rbus"
)

var (
	ErrPortNotFound         = errors.New("port not found")
	ErrRedundantAttach      = errors.New("redundant attach")
	ErrIncompatibleResource = errors.New("resource incompatible with port")
	ErrUnknownProperty      = errors.New("unknown port property")
)

// Topics published by a Registry.
const (
	TopicPortAdded        rbus.Topic = "port.added"
	TopicPortRemoved      rbus.Topic = "port.removed"
	TopicResourceAttached rbus.Topic = "resource.attached"
	TopicResourceDetached rbus.Topic = "resource.detached"
)

// Direction tells inputs and outputs apart.
type Direction uint8

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// PortID is unique within one (node, direction) pair and never reused.
type PortID uint32

// Origin records who caused a binding change.
type Origin uint8

const (
	// OriginUser is an explicit call by the application or a node.
	OriginUser Origin = iota
	// OriginPropagation is a binding change made by the owning segment while
	// propagating resources along connections.
	OriginPropagation
)

func (o Origin) String() string {
	if o == OriginPropagation {
		return "propagation"
	}
	return "user"
}

// Event is the payload of every Registry topic.
type Event struct {
	Node      uint64
	Direction Direction
	Port      PortID
	Name      string
	Resource  Resource
	Origin    Origin
}

// Port is a typed input or output slot.
type Port struct {
	ID         PortID
	Direction  Direction
	Name       string
	Descriptor Descriptor
	Required   bool
	Resource   Resource
}

// Bound reports whether a resource is attached.
func (p Port) Bound() bool {
	return p.Resource != nil
}

// Option configures a port on creation.
type Option func(*Port)

// Required marks an input as mandatory: a node with an unbound required
// input is skipped at render time.
func Required() Option {
	return func(p *Port) {
		p.Required = true
	}
}

// Registry holds the ports of one node.
//
// Registry is NOT safe for concurrent use.
type Registry struct {
	node  uint64
	pub   rbus.Publisher
	ports [2]map[PortID]*Port
	order [2][]PortID
	next  [2]ids.Counter[PortID]
}

// NewRegistry creates the port registry of node. Every change is published
// on pub.
func NewRegistry(node uint64, pub rbus.Publisher) *Registry {
	return &Registry{
		node:  node,
		pub:   pub,
		ports: [2]map[PortID]*Port{{}, {}},
	}
}

// Node returns the id of the owning node.
func (r *Registry) Node() uint64 {
	return r.node
}

// AddInput adds an input port.
func (r *Registry) AddInput(name string, d Descriptor, opts ...Option) (PortID, error) {
	return r.add(Input, name, d, opts)
}

// AddOutput adds an output port.
func (r *Registry) AddOutput(name string, d Descriptor, opts ...Option) (PortID, error) {
	return r.add(Output, name, d, opts)
}

func (r *Registry) add(dir Direction, name string, d Descriptor, opts []Option) (PortID, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return 0, fmt.Errorf("node %d %s %q: %w", r.node, dir, name, err)
	}

	p := &Port{
		ID:         r.next[dir].Next(),
		Direction:  dir,
		Name:       name,
		Descriptor: d,
	}
	for _, opt := range opts {
		opt(p)
	}

	r.ports[dir][p.ID] = p
	r.order[dir] = append(r.order[dir], p.ID)
	r.publish(TopicPortAdded, p, nil, OriginUser)
	return p.ID, nil
}

// DeleteInput removes an input, detaching its resource first.
func (r *Registry) DeleteInput(id PortID) error {
	return r.delete(Input, id)
}

// DeleteOutput removes an output, detaching its resource first.
func (r *Registry) DeleteOutput(id PortID) error {
	return r.delete(Output, id)
}

func (r *Registry) delete(dir Direction, id PortID) error {
	p, err := r.lookup(dir, id)
	if err != nil {
		return err
	}

	if p.Resource != nil {
		old := p.Resource
		p.Resource = nil
		r.publish(TopicResourceDetached, p, old, OriginUser)
	}

	delete(r.ports[dir], id)
	r.order[dir] = slices.DeleteFunc(r.order[dir], func(pid PortID) bool { return pid == id })
	r.publish(TopicPortRemoved, p, nil, OriginUser)
	return nil
}

// Attach binds res to a port. A nil res detaches. Replacing a binding emits
// a detach for the previous handle before the attach. Attaching the handle
// that is already bound, or detaching an unbound port, returns
// ErrRedundantAttach and publishes nothing.
func (r *Registry) Attach(dir Direction, id PortID, res Resource, origin Origin) error {
	p, err := r.lookup(dir, id)
	if err != nil {
		return err
	}

	if SameResource(p.Resource, res) {
		return fmt.Errorf("%w: node %d %s %d", ErrRedundantAttach, r.node, dir, id)
	}

	if res != nil && !Compatible(res.Descriptor(), p.Descriptor) {
		return fmt.Errorf("%w: node %d %s %q wants %s, got %s",
			ErrIncompatibleResource, r.node, dir, p.Name, p.Descriptor, res.Descriptor().Normalize())
	}

	if p.Resource != nil {
		old := p.Resource
		p.Resource = nil
		r.publish(TopicResourceDetached, p, old, origin)
	}

	if res != nil {
		p.Resource = res
		r.publish(TopicResourceAttached, p, res, origin)
	}
	return nil
}

// Detach is Attach with a nil resource.
func (r *Registry) Detach(dir Direction, id PortID, origin Origin) error {
	return r.Attach(dir, id, nil, origin)
}

// Port returns a copy of a port.
func (r *Registry) Port(dir Direction, id PortID) (Port, bool) {
	p, ok := r.ports[dir][id]
	if !ok {
		return Port{}, false
	}
	return *p, true
}

// Resource returns the resource bound to a port, or nil.
func (r *Registry) Resource(dir Direction, id PortID) Resource {
	if p, ok := r.ports[dir][id]; ok {
		return p.Resource
	}
	return nil
}

// Inputs returns copies of all inputs in creation order.
func (r *Registry) Inputs() []Port {
	return r.list(Input)
}

// Outputs returns copies of all outputs in creation order.
func (r *Registry) Outputs() []Port {
	return r.list(Output)
}

func (r *Registry) list(dir Direction) []Port {
	out := make([]Port, 0, len(r.order[dir]))
	for _, id := range r.order[dir] {
		out = append(out, *r.ports[dir][id])
	}
	return out
}

// Len returns the number of ports in a direction.
func (r *Registry) Len(dir Direction) int {
	return len(r.order[dir])
}

// MissingRequired returns the required inputs that have no resource bound.
func (r *Registry) MissingRequired() []Port {
	var missing []Port
	for _, id := range r.order[Input] {
		p := r.ports[Input][id]
		if p.Required && p.Resource == nil {
			missing = append(missing, *p)
		}
	}
	return missing
}

// IsOutputCompatibleWithInput reports whether output out of r can feed input
// in of dst.
func (r *Registry) IsOutputCompatibleWithInput(out PortID, dst *Registry, in PortID) (bool, error) {
	o, err := r.lookup(Output, out)
	if err != nil {
		return false, err
	}
	i, err := dst.lookup(Input, in)
	if err != nil {
		return false, err
	}
	return Compatible(o.Descriptor, i.Descriptor), nil
}

// Release detaches and removes every port, outputs first.
func (r *Registry) Release() {
	for _, dir := range []Direction{Output, Input} {
		for _, id := range slices.Clone(r.order[dir]) {
			_ = r.delete(dir, id)
		}
	}
}

func (r *Registry) lookup(dir Direction, id PortID) (*Port, error) {
	p, ok := r.ports[dir][id]
	if !ok {
		return nil, fmt.Errorf("%w: node %d %s %d", ErrPortNotFound, r.node, dir, id)
	}
	return p, nil
}

func (r *Registry) publish(topic rbus.Topic, p *Port, res Resource, origin Origin) {
	if r.pub == nil {
		return
	}
	r.pub.Publish(topic, Event{
		Node:      r.node,
		Direction: p.Direction,
		Port:      p.ID,
		Name:      p.Name,
		Resource:  res,
		Origin:    origin,
	})
}
