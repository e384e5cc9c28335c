//go:build integration

package mailer_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"campus/internal/auth/mailer"
	"campus/internal/auth/models"
	"campus/internal/platform/kafka"
	"campus/pkg/testutil/containers"
)

func TestKafkaMailer_Redpanda(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rp := containers.NewRedpandaContainer(t)
	const topic = "campus.mail.verification"

	producer, err := kafka.New(rp.Brokers, topic)
	require.NoError(t, err)
	defer producer.Close()
	require.NoError(t, kafka.EnsureTopic(ctx, producer, topic, 1))

	m := mailer.NewKafkaMailer("noreply@school.example", topic, producer)
	require.NoError(t, m.SendVerification(ctx, mailer.Message{
		To:      "jane@example.com",
		Name:    "Jane",
		Code:    "123456",
		Purpose: models.PurposeRegistration,
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.NotEmpty(t, records)

	var body mailer.Rendered
	require.NoError(t, json.Unmarshal(records[0].Value, &body))
	require.Equal(t, "jane@example.com", body.To)
}
