package rendergraph

import (
	"github.com/birdayz/rendergraph/rbus"
	"github.com/birdayz/rendergraph/rnode"
	"github.com/birdayz/rendergraph/rport"
)

// Topics published by a Segment on its bus. Port topics from rport are
// forwarded as well, with a PortEvent payload.
const (
	TopicNodeAdded       rbus.Topic = "node.added"
	TopicNodeRemoving    rbus.Topic = "node.removing"
	TopicNodeRemoved     rbus.Topic = "node.removed"
	TopicConnected       rbus.Topic = "connection.added"
	TopicDisconnected    rbus.Topic = "connection.removed"
	TopicLacksAttachment rbus.Topic = "node.lacks_attachment"
	TopicFrameRendered   rbus.Topic = "frame.rendered"
)

// NodeEvent is the payload of the node topics.
type NodeEvent struct {
	Segment string
	Node    NodeID
	Type    rnode.Type
	Name    string
}

// ConnectionEvent is the payload of TopicConnected and TopicDisconnected.
type ConnectionEvent struct {
	Segment    string
	Connection Connection
}

// LacksAttachmentEvent is published when a node is skipped because a
// required input has nothing bound.
type LacksAttachmentEvent struct {
	Segment string
	Node    NodeID
	Name    string
	Frame   uint64
	Inputs  []string
}

// PortEvent wraps a port registry event with the segment it happened in.
type PortEvent struct {
	Segment string
	rport.Event
}
