package rexport

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/birdayz/rendergraph"
	"github.com/birdayz/rendergraph/rbus"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

var ErrUnsupportedPayload = errors.New("rexport: unsupported payload")

// Codec turns a bus event into a record value.
type Codec interface {
	Encode(topic rbus.Topic, payload any) ([]byte, error)
	ContentType() string
}

// JSON encodes events as flat JSON objects.
type JSON struct{}

func (JSON) ContentType() string { return "application/json" }

func (JSON) Encode(topic rbus.Topic, payload any) ([]byte, error) {
	fields, err := Fields(topic, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// Proto encodes events as google.protobuf.Struct messages.
type Proto struct{}

func (Proto) ContentType() string { return "application/x-protobuf" }

func (Proto) Encode(topic rbus.Topic, payload any) ([]byte, error) {
	fields, err := Fields(topic, payload)
	if err != nil {
		return nil, err
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", topic, err)
	}
	return proto.Marshal(s)
}

// Fields flattens a segment event into a map of plain values.
func Fields(topic rbus.Topic, payload any) (map[string]any, error) {
	f := map[string]any{"topic": string(topic)}
	switch ev := payload.(type) {
	case rendergraph.NodeEvent:
		f["segment"] = ev.Segment
		f["node"] = uint64(ev.Node)
		f["name"] = ev.Name
		f["type"] = string(ev.Type)
	case rendergraph.ConnectionEvent:
		f["segment"] = ev.Segment
		f["src_node"] = uint64(ev.Connection.SrcNode)
		f["src_output"] = uint64(ev.Connection.SrcOutput)
		f["dst_node"] = uint64(ev.Connection.DstNode)
		f["dst_input"] = uint64(ev.Connection.DstInput)
	case rendergraph.PortEvent:
		f["segment"] = ev.Segment
		f["node"] = ev.Node
		f["direction"] = ev.Direction.String()
		f["port"] = uint64(ev.Port)
		f["name"] = ev.Name
		f["origin"] = ev.Origin.String()
		if ev.Resource != nil {
			f["resource"] = ev.Resource.ResourceID()
		}
	case rendergraph.LacksAttachmentEvent:
		f["segment"] = ev.Segment
		f["node"] = uint64(ev.Node)
		f["name"] = ev.Name
		f["frame"] = ev.Frame
		inputs := make([]any, 0, len(ev.Inputs))
		for _, in := range ev.Inputs {
			inputs = append(inputs, in)
		}
		f["inputs"] = inputs
	case *rendergraph.FrameReport:
		f["segment"] = ev.Segment
		f["frame"] = ev.Frame.Index
		f["rendered"] = nodeList(ev.Rendered)
		f["failed"] = nodeList(ev.Failed)
		f["skipped"] = nodeList(ev.Skipped)
		f["duration_ms"] = float64(ev.Duration.Microseconds()) / 1000
	default:
		return nil, fmt.Errorf("%w: %s carries %T", ErrUnsupportedPayload, topic, payload)
	}
	return f, nil
}

func nodeList(ids []rendergraph.NodeID) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, uint64(id))
	}
	return out
}
