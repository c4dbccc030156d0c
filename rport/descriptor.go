package rport

import (
	"errors"
	"fmt"
	"math/bits"
)

var ErrInvalidDescriptor = errors.New("invalid descriptor")

// Format is the texel format of a resource.
type Format uint16

const (
	FormatUndefined Format = iota
	FormatR8Unorm
	FormatRG8Unorm
	FormatRGBA8Unorm
	FormatRGBA8Srgb
	FormatBGRA8Unorm
	FormatR16Float
	FormatRGBA16Float
	FormatR32Float
	FormatRGBA32Float
	FormatDepth24Stencil8
	FormatDepth32Float
)

func (f Format) String() string {
	switch f {
	case FormatR8Unorm:
		return "R8Unorm"
	case FormatRG8Unorm:
		return "RG8Unorm"
	case FormatRGBA8Unorm:
		return "RGBA8Unorm"
	case FormatRGBA8Srgb:
		return "RGBA8Srgb"
	case FormatBGRA8Unorm:
		return "BGRA8Unorm"
	case FormatR16Float:
		return "R16Float"
	case FormatRGBA16Float:
		return "RGBA16Float"
	case FormatR32Float:
		return "R32Float"
	case FormatRGBA32Float:
		return "RGBA32Float"
	case FormatDepth24Stencil8:
		return "Depth24Stencil8"
	case FormatDepth32Float:
		return "Depth32Float"
	default:
		return "Undefined"
	}
}

// Components returns the number of channels a texel of this format carries.
func (f Format) Components() uint8 {
	switch f {
	case FormatR8Unorm, FormatR16Float, FormatR32Float, FormatDepth32Float:
		return 1
	case FormatRG8Unorm, FormatDepth24Stencil8:
		return 2
	case FormatRGBA8Unorm, FormatRGBA8Srgb, FormatBGRA8Unorm, FormatRGBA16Float, FormatRGBA32Float:
		return 4
	default:
		return 0
	}
}

// Dimension is the texture type of a resource.
type Dimension uint8

const (
	Dimension2D Dimension = iota
	Dimension1D
	Dimension2DArray
	Dimension3D
	DimensionCube
)

func (d Dimension) String() string {
	switch d {
	case Dimension1D:
		return "1D"
	case Dimension2D:
		return "2D"
	case Dimension2DArray:
		return "2DArray"
	case Dimension3D:
		return "3D"
	case DimensionCube:
		return "Cube"
	default:
		return "Unknown"
	}
}

// MipPolicy controls how many mip levels the pool allocates.
type MipPolicy uint8

const (
	MipsSingle MipPolicy = iota
	MipsFull
)

func (m MipPolicy) String() string {
	if m == MipsFull {
		return "Full"
	}
	return "Single"
}

// Descriptor describes what a port accepts or produces.
// Zero Components, Layers and Samples are filled in by Normalize.
type Descriptor struct {
	Format     Format
	Components uint8
	Dimension  Dimension
	Layers     uint32
	Samples    uint32
	Mips       MipPolicy
}

// Texture2D is a shorthand for a single layer, single sample 2D descriptor.
func Texture2D(f Format) Descriptor {
	return Descriptor{Format: f, Dimension: Dimension2D}.Normalize()
}

// Normalize fills in defaults: the format's component count, one layer and
// one sample (six layers for cube maps).
func (d Descriptor) Normalize() Descriptor {
	if d.Components == 0 {
		d.Components = d.Format.Components()
	}
	if d.Layers == 0 {
		d.Layers = 1
		if d.Dimension == DimensionCube {
			d.Layers = 6
		}
	}
	if d.Samples == 0 {
		d.Samples = 1
	}
	return d
}

// Validate checks a normalized descriptor.
func (d Descriptor) Validate() error {
	if d.Format == FormatUndefined {
		return fmt.Errorf("%w: format is undefined", ErrInvalidDescriptor)
	}
	if bits.OnesCount32(d.Samples) != 1 {
		return fmt.Errorf("%w: sample count %d is not a power of two", ErrInvalidDescriptor, d.Samples)
	}
	if d.Dimension == DimensionCube && d.Layers%6 != 0 {
		return fmt.Errorf("%w: cube map needs a multiple of 6 layers, got %d", ErrInvalidDescriptor, d.Layers)
	}
	if (d.Dimension == Dimension1D || d.Dimension == Dimension3D) && d.Layers != 1 {
		return fmt.Errorf("%w: %s textures have exactly one layer, got %d", ErrInvalidDescriptor, d.Dimension, d.Layers)
	}
	if d.Samples > 1 && d.Mips == MipsFull {
		return fmt.Errorf("%w: multisampled textures cannot have mips", ErrInvalidDescriptor)
	}
	return nil
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s/%d %s layers=%d samples=%d mips=%s",
		d.Format, d.Components, d.Dimension, d.Layers, d.Samples, d.Mips)
}

// Compatible reports whether an output described by out can feed an input
// described by in. Format, component count, layer count, sample count and
// dimension must all match exactly. The mip policy is not compared.
func Compatible(out, in Descriptor) bool {
	out, in = out.Normalize(), in.Normalize()
	return out.Format == in.Format &&
		out.Components == in.Components &&
		out.Layers == in.Layers &&
		out.Samples == in.Samples &&
		out.Dimension == in.Dimension
}

// Resource is an opaque GPU backed object bound to a port. Ports never own
// resources; they are borrowed from a pool or created by the application.
type Resource interface {
	// ResourceID uniquely identifies the underlying handle.
	ResourceID() uint64
	Descriptor() Descriptor
}

// SameResource reports whether a and b refer to the same handle.
func SameResource(a, b Resource) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ResourceID() == b.ResourceID()
}
