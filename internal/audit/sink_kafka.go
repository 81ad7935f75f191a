package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink publishes events to a Kafka topic for off-chain subscribers.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

// NewKafkaSink connects to the brokers and makes sure the topic exists.
func NewKafkaSink(ctx context.Context, brokers []string, topic string) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	if _, err := admin.CreateTopic(ctx, 1, 1, nil, topic); err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
		client.Close()
		return nil, fmt.Errorf("ensure topic %s: %w", topic, err)
	}

	return &KafkaSink{client: client, topic: topic}, nil
}

type kafkaEvent struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Timestamp    string  `json:"timestamp"`
	Property     *uint64 `json:"property_id,omitempty"`
	Actor        string  `json:"actor,omitempty"`
	Counterparty string  `json:"counterparty,omitempty"`
	Amount       uint64  `json:"amount,omitempty"`
	Status       string  `json:"status,omitempty"`
	Detail       string  `json:"detail,omitempty"`
}

// Publish produces the event synchronously. Records are keyed by property id
// when present so per-property ordering survives partitioning.
func (s *KafkaSink) Publish(ctx context.Context, event Event) error {
	payload := kafkaEvent{
		ID:           event.ID,
		Type:         string(event.Type),
		Timestamp:    event.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Actor:        event.Actor.String(),
		Counterparty: event.Counterparty.String(),
		Amount:       uint64(event.Amount),
		Status:       event.Status,
		Detail:       event.Detail,
	}
	var key []byte
	if event.Property != nil {
		pid := uint64(*event.Property)
		payload.Property = &pid
		key = []byte(event.Property.String())
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	record := &kgo.Record{Topic: s.topic, Key: key, Value: value}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes and releases the Kafka client.
func (s *KafkaSink) Close() {
	s.client.Close()
}
