package main

import (
	"context"
	"io"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/birdayz/rendergraph"
	"github.com/birdayz/rendergraph/passes"
	"github.com/birdayz/rendergraph/pkg/log"
	"github.com/birdayz/rendergraph/rnode"
	"github.com/birdayz/rendergraph/rpool"
	"github.com/birdayz/rendergraph/rport"
)

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags([]string{"-frames", "3", "-codec", "proto"})
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), cfg.frames)
	assert.Equal(t, "proto", cfg.codec)
	assert.Equal(t, 60, cfg.fps)

	_, err = parseFlags([]string{"-codec", "xml"})
	assert.Error(t, err)
	_, err = parseFlags([]string{"-fps", "0"})
	assert.Error(t, err)
}

func TestBuildSegment(t *testing.T) {
	ctx := context.Background()
	factories := rnode.NewRegistry()
	assert.NoError(t, passes.Register(factories, passes.Config{
		Descriptor: rport.Texture2D(rport.FormatRGBA8Unorm),
		Extent:     rpool.Extent{Width: 4, Height: 4},
		Submitter:  passes.Discard,
	}))

	seg, err := buildSegment(ctx, []rendergraph.Option{rendergraph.WithFactories(factories)})
	assert.NoError(t, err)
	assert.Equal(t, 2, seg.EdgeCount())

	report, err := seg.Render(ctx, rnode.Frame{Index: 1})
	assert.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, 3, len(report.Rendered))
	assert.NoError(t, seg.Close(ctx))
}

func TestRunFrames(t *testing.T) {
	cfg, err := parseFlags([]string{"-frames", "2", "-fps", "1000", "-metrics-addr", "", "-width", "8", "-height", "8"})
	assert.NoError(t, err)
	zlog, err := log.New(io.Discard, "error")
	assert.NoError(t, err)
	assert.NoError(t, run(context.Background(), cfg, zlog))
}
