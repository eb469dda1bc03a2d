// Package events publishes comment lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

type Kind string

const (
	CommentCreated Kind = "comment.created"
	CommentUpdated Kind = "comment.updated"
	CommentDeleted Kind = "comment.deleted"
)

type Event struct {
	Kind       Kind      `json:"kind"`
	CommentID  int64     `json:"comment_id"`
	PostID     int64     `json:"post_id"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
}

// messageWriter is the subset of *kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer messageWriter
}

// NewProducer writes to topic on brokers. Messages are keyed by post id so
// events for one post stay ordered within a partition.
func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: w}
}

func (p *Producer) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.PostID, 10)),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(event.Kind)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

func (Nop) Close() error { return nil }

// PublisherCloser is satisfied by Producer and Nop.
type PublisherCloser interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// New returns a Kafka producer, or Nop when brokers is empty.
func New(brokers []string, topic string) PublisherCloser {
	if len(brokers) == 0 {
		log.Println("Kafka brokers not configured, comment events disabled")
		return Nop{}
	}
	log.Printf("Publishing comment events to %s on %v", topic, brokers)
	return NewProducer(brokers, topic)
}
