// Package rexport ships render graph events to Kafka.
//
// An Exporter listens on a segment's bus and buffers one record per event.
// Rendering never waits on the network: records are produced when Flush is
// called, typically once per frame or on a timer.
package rexport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/birdayz/rendergraph/rbus"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/multierr"
)

// Producer is the part of *kgo.Client an Exporter uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Admin is the part of *kadm.Client EnsureTopic uses.
type Admin interface {
	CreateTopics(ctx context.Context, partitions int32, replicationFactor int16, configs map[string]*string, topics ...string) (kadm.CreateTopicResponses, error)
}

// Header keys set on every record.
const (
	HeaderContentType = "content-type"
	HeaderEventTopic  = "event-topic"
)

// DefaultMaxBuffered is the default number of records held between flushes.
const DefaultMaxBuffered = 4096

// Exporter buffers bus events as Kafka records.
//
// Exporter is NOT safe for concurrent use; call Flush from the goroutine
// that publishes on the bus.
type Exporter struct {
	producer    Producer
	topic       string
	codec       Codec
	log         *slog.Logger
	topics      []rbus.Topic
	maxBuffered int

	buf     []*kgo.Record
	subs    []rbus.Subscription
	dropped uint64
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithCodec sets the record encoding. Defaults to JSON.
func WithCodec(c Codec) Option {
	return func(e *Exporter) {
		e.codec = c
	}
}

// WithLog sets the logger.
func WithLog(log *slog.Logger) Option {
	return func(e *Exporter) {
		e.log = log
	}
}

// WithTopics restricts the exported bus topics. Defaults to all.
func WithTopics(topics ...rbus.Topic) Option {
	return func(e *Exporter) {
		e.topics = topics
	}
}

// WithMaxBuffered caps the records held between flushes. Events beyond the
// cap are dropped and counted.
func WithMaxBuffered(n int) Option {
	return func(e *Exporter) {
		e.maxBuffered = n
	}
}

// New creates an exporter writing to the Kafka topic topic.
func New(p Producer, topic string, opts ...Option) *Exporter {
	e := &Exporter{
		producer:    p,
		topic:       topic,
		codec:       JSON{},
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		topics:      []rbus.Topic{rbus.Any},
		maxBuffered: DefaultMaxBuffered,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Attach starts listening on bus.
func (e *Exporter) Attach(bus rbus.Subscriber) {
	for _, t := range e.topics {
		e.subs = append(e.subs, bus.Subscribe(t, e.handle))
	}
}

// Detach stops listening on bus.
func (e *Exporter) Detach(bus rbus.Subscriber) error {
	var errs error
	for _, sub := range e.subs {
		errs = multierr.Append(errs, bus.Unsubscribe(sub))
	}
	e.subs = nil
	return errs
}

func (e *Exporter) handle(topic rbus.Topic, payload any) {
	value, err := e.codec.Encode(topic, payload)
	if errors.Is(err, ErrUnsupportedPayload) {
		return
	}
	if err != nil {
		e.log.Warn("Failed to encode event", "topic", topic, "error", err)
		return
	}
	if e.maxBuffered > 0 && len(e.buf) >= e.maxBuffered {
		e.dropped++
		return
	}

	rec := &kgo.Record{
		Topic: e.topic,
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: HeaderContentType, Value: []byte(e.codec.ContentType())},
			{Key: HeaderEventTopic, Value: []byte(topic)},
		},
	}
	if seg := segmentOf(payload); seg != "" {
		rec.Key = []byte(seg)
	}
	e.buf = append(e.buf, rec)
}

// Buffered returns the number of records waiting for Flush.
func (e *Exporter) Buffered() int {
	return len(e.buf)
}

// Dropped returns the number of events dropped because the buffer was full.
func (e *Exporter) Dropped() uint64 {
	return e.dropped
}

// Flush produces all buffered records and waits for them to be acknowledged.
func (e *Exporter) Flush(ctx context.Context) error {
	if len(e.buf) == 0 {
		return nil
	}
	recs := e.buf
	e.buf = nil

	if err := e.producer.ProduceSync(ctx, recs...).FirstErr(); err != nil {
		return fmt.Errorf("flush %d records to %q: %w", len(recs), e.topic, err)
	}
	e.log.Debug("Flushed events", "records", len(recs), "topic", e.topic)
	return nil
}

// EnsureTopic creates topic unless it already exists.
func EnsureTopic(ctx context.Context, adm Admin, topic string, partitions int32, replicationFactor int16) error {
	resp, err := adm.CreateTopics(ctx, partitions, replicationFactor, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %q: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %q: %w", r.Topic, r.Err)
		}
	}
	return nil
}
