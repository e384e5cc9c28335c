package mailer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer is the subset of *kgo.Client the Kafka mailer uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaMailer publishes rendered messages for the mail delivery service.
// Records are keyed by recipient so one address stays on one partition.
type KafkaMailer struct {
	from     string
	topic    string
	producer Producer
}

func NewKafkaMailer(from, topic string, producer Producer) *KafkaMailer {
	return &KafkaMailer{from: from, topic: topic, producer: producer}
}

func (m *KafkaMailer) SendVerification(ctx context.Context, msg Message) error {
	rendered, err := Render(m.from, msg)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(rendered)
	if err != nil {
		return fmt.Errorf("encode mail record: %w", err)
	}
	record := &kgo.Record{
		Topic: m.topic,
		Key:   []byte(rendered.To),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "purpose", Value: []byte(rendered.Purpose)},
		},
	}
	if err := m.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("publish mail record: %w", err)
	}
	return nil
}
