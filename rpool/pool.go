// Package rpool hands out GPU resources to render passes and takes them back.
//
// The graph engine never allocates. Passes acquire what they produce from a
// Pool during init and release it on deinit; ports only borrow.
package rpool

//go:generate mockgen -destination=../passes/mock_pool_test.go -package=passes . Pool

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/birdayz/rendergraph/internal/ids"
	"github.com/birdayz/rendergraph/rport"
)

var (
	ErrExhausted       = errors.New("pool: exhausted")
	ErrUnknownResource = errors.New("pool: unknown resource")
	ErrInvalidExtent   = errors.New("pool: invalid extent")
)

// Extent is the size of a resource in texels.
type Extent struct {
	Width, Height, Depth uint32
}

// Pool allocates and recycles resources.
type Pool interface {
	Acquire(d rport.Descriptor, e Extent) (rport.Resource, error)
	Release(res rport.Resource) error
}

// Texture is the resource type handed out by Memory.
type Texture struct {
	id     uint64
	desc   rport.Descriptor
	extent Extent
}

func (t *Texture) ResourceID() uint64           { return t.id }
func (t *Texture) Descriptor() rport.Descriptor { return t.desc }
func (t *Texture) Extent() Extent               { return t.extent }
func (t *Texture) String() string {
	return fmt.Sprintf("texture#%d(%s %dx%d)", t.id, t.desc, t.extent.Width, t.extent.Height)
}

type key struct {
	desc   rport.Descriptor
	extent Extent
}

// Memory is an in-process Pool that recycles released textures with an
// identical descriptor and extent. It is the default pool of a segment and
// is suitable for tests and headless runs.
//
// Memory is NOT safe for concurrent use.
type Memory struct {
	log   *slog.Logger
	limit int
	free  map[key][]*Texture
	live  map[uint64]*Texture
	next  ids.Counter[uint64]
}

// MemoryOption configures a Memory pool.
type MemoryOption func(*Memory)

// WithLimit caps the number of textures in use at once. Zero means unlimited.
func WithLimit(n int) MemoryOption {
	return func(m *Memory) {
		m.limit = n
	}
}

// WithLog sets the logger of the pool.
func WithLog(log *slog.Logger) MemoryOption {
	return func(m *Memory) {
		m.log = log
	}
}

// NewMemory creates an empty pool.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		free: map[key][]*Texture{},
		live: map[uint64]*Texture{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire returns a recycled texture if one matches, or creates one.
func (m *Memory) Acquire(d rport.Descriptor, e Extent) (rport.Resource, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if e.Width == 0 || e.Height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidExtent, e.Width, e.Height)
	}
	if e.Depth == 0 {
		e.Depth = 1
	}

	if m.limit > 0 && len(m.live) >= m.limit {
		return nil, fmt.Errorf("%w: %d of %d textures in use", ErrExhausted, len(m.live), m.limit)
	}

	k := key{desc: d, extent: e}
	var tex *Texture
	if free := m.free[k]; len(free) > 0 {
		tex = free[len(free)-1]
		m.free[k] = free[:len(free)-1]
		m.log.Debug("Recycled texture", "texture", tex.id)
	} else {
		tex = &Texture{id: m.next.Next(), desc: d, extent: e}
		m.log.Debug("Created texture", "texture", tex.id, "descriptor", d.String())
	}

	m.live[tex.id] = tex
	return tex, nil
}

// Release returns a texture to the free list.
func (m *Memory) Release(res rport.Resource) error {
	if res == nil {
		return fmt.Errorf("%w: nil", ErrUnknownResource)
	}
	tex, ok := m.live[res.ResourceID()]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownResource, res.ResourceID())
	}
	delete(m.live, tex.id)
	k := key{desc: tex.desc, extent: tex.extent}
	m.free[k] = append(m.free[k], tex)
	return nil
}

// InUse returns the number of textures currently acquired.
func (m *Memory) InUse() int {
	return len(m.live)
}

// Created returns the number of distinct textures ever created.
func (m *Memory) Created() int {
	return int(m.next.Last())
}

var _ Pool = (*Memory)(nil)
