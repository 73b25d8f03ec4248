// Package kafka publishes audit events to a Kafka topic. Kafka is the
// durable audit trail; downstream consumers materialize it for querying.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"garita/pkg/audit"
)

// producer is the slice of kgo.Client the sink uses; tests fake it.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Sink appends audit events to one Kafka topic, keyed by acting user so
// per-user history stays ordered within a partition.
type Sink struct {
	client producer
	topic  string
	logger *slog.Logger
}

// New connects to the brokers and ensures the topic exists. Topic
// creation is idempotent; an already-exists error is ignored.
func New(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	if _, err := admin.CreateTopic(ctx, 1, 1, nil, topic); err != nil {
		// The topic usually exists already; anything else surfaces when
		// the first produce fails.
		logger.Debug("create audit topic", "topic", topic, "error", err)
	}

	return &Sink{client: client, topic: topic, logger: logger}, nil
}

// Append publishes one event. The produce is synchronous so the caller
// knows the trail is durable before moving on.
func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	var key []byte
	if event.UserID != nil {
		key = []byte(strconv.FormatInt(*event.UserID, 10))
	}

	record := &kgo.Record{Topic: s.topic, Key: key, Value: payload}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes and releases the underlying client.
func (s *Sink) Close() {
	s.client.Close()
}
