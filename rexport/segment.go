package rexport

import "github.com/birdayz/rendergraph"

func segmentOf(payload any) string {
	switch ev := payload.(type) {
	case rendergraph.NodeEvent:
		return ev.Segment
	case rendergraph.ConnectionEvent:
		return ev.Segment
	case rendergraph.PortEvent:
		return ev.Segment
	case rendergraph.LacksAttachmentEvent:
		return ev.Segment
	case *rendergraph.FrameReport:
		return ev.Segment
	}
	return ""
}
