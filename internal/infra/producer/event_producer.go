package producer

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
)

var ErrProducerClosed = errors.New("producer is closed")

const (
	EventOrderCreated = "order.created"
	EventBidPlaced    = "bid.placed"
)

// Event is a domain event published to the event stream.
// Key keeps events of one aggregate on one partition so consumers
// observe them in order.
type Event struct {
	Name       string    `json:"name"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

type IEventProducer interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

type KafkaEventProducer struct {
	writer *kafka.Writer
	closed atomic.Bool
}

func NewKafkaEventProducer(brokers []string, topic string) *KafkaEventProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
		Compression:  kafka.Snappy,
	}

	return &KafkaEventProducer{writer: writer}
}

var _ IEventProducer = (*KafkaEventProducer)(nil)

func (p *KafkaEventProducer) Publish(ctx context.Context, evt Event) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	value, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.Key),
		Value: value,
	})
}

func (p *KafkaEventProducer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}

// NoopProducer is wired when no broker is configured.
type NoopProducer struct{}

func (NoopProducer) Publish(ctx context.Context, evt Event) error { return nil }
func (NoopProducer) Close() error                                 { return nil }

var _ IEventProducer = (*NoopProducer)(nil)
