package rport

import "fmt"

// Property selects a read-only field of a port.
type Property uint8

const (
	PropResource Property = iota
	PropFormat
	PropComponents
	PropDimension
	PropLayers
	PropSamples
	PropMips
	PropRequired
	PropName
)

// Property reads a single field of a port.
func (r *Registry) Property(dir Direction, id PortID, prop Property) (any, error) {
	p, err := r.lookup(dir, id)
	if err != nil {
		return nil, err
	}

	switch prop {
	case PropResource:
		return p.Resource, nil
	case PropFormat:
		return p.Descriptor.Format, nil
	case PropComponents:
		return p.Descriptor.Components, nil
	case PropDimension:
		return p.Descriptor.Dimension, nil
	case PropLayers:
		return p.Descriptor.Layers, nil
	case PropSamples:
		return p.Descriptor.Samples, nil
	case PropMips:
		return p.Descriptor.Mips, nil
	case PropRequired:
		return p.Required, nil
	case PropName:
		return p.Name, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownProperty, prop)
	}
}
