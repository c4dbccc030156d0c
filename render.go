package rendergraph

import (
	"context"
	"fmt"
	"time"

	"github.com/birdayz/rendergraph/rnode"
)

// FrameReport describes one Render call.
type FrameReport struct {
	Segment  string
	Frame    rnode.Frame
	Order    []NodeID
	Rendered []NodeID
	// Skipped nodes had an unbound required input.
	Skipped []NodeID
	// Failed nodes returned false from Render.
	Failed   []NodeID
	Duration time.Duration
}

// OK reports whether every node rendered successfully.
func (r *FrameReport) OK() bool {
	return len(r.Skipped) == 0 && len(r.Failed) == 0
}

// Render runs every node once in dependency order. A node with an unbound
// required input is skipped and TopicLacksAttachment is published; nodes
// that do not depend on it still render. Readiness is checked right before
// each node runs, so resources bound by producers earlier in the same frame
// count.
//
// Render only fails if the graph has a cycle, in which case nothing runs.
func (s *Segment) Render(ctx context.Context, f rnode.Frame) (*FrameReport, error) {
	if s.closed {
		return nil, ErrClosed
	}
	start := time.Now()

	order, err := s.graph.TopologicallySortedValues()
	if err != nil {
		s.log.Error("Cannot render cyclic graph", "frame", f.Index, "error", err)
		return nil, fmt.Errorf("segment %q frame %d: %w", s.name, f.Index, err)
	}

	report := &FrameReport{Segment: s.name, Frame: f, Order: order}
	for _, id := range order {
		n, ok := s.nodes[id]
		if !ok || n.impl == nil {
			continue
		}

		if missing := n.ports.MissingRequired(); len(missing) > 0 {
			inputs := make([]string, 0, len(missing))
			for _, p := range missing {
				inputs = append(inputs, p.Name)
			}
			s.log.Debug("Skipping node with unbound inputs", "node", n.id, "name", n.name, "inputs", inputs)
			s.bus.Publish(TopicLacksAttachment, LacksAttachmentEvent{
				Segment: s.name,
				Node:    n.id,
				Name:    n.name,
				Frame:   f.Index,
				Inputs:  inputs,
			})
			report.Skipped = append(report.Skipped, id)
			continue
		}

		impl := n.impl
		ok = s.chain.Execute(ctx, n.info(), f, func(ctx context.Context, _ rnode.Info, f rnode.Frame) bool {
			return impl.Render(ctx, f)
		})
		if ok {
			report.Rendered = append(report.Rendered, id)
		} else {
			report.Failed = append(report.Failed, id)
		}
	}
	s.drain()

	report.Duration = time.Since(start)
	s.bus.Publish(TopicFrameRendered, report)
	return report, nil
}
