//go:build integration

package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/events"
)

func TestPublisher_Redpanda(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := redpanda.Run(ctx, "docker.redpanda.com/redpandadata/redpanda:v24.2.4",
		redpanda.WithAutoCreateTopics())
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, container)

	broker, err := container.KafkaSeedBroker(ctx)
	require.NoError(t, err)

	const topic = "booking.events.test"
	pub, err := NewPublisher(Config{Brokers: []string{broker}, Topic: topic})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pub.Close(context.Background()) })

	require.NoError(t, pub.Ping(ctx))
	require.NoError(t, pub.Publish(ctx, events.Event{
		ID:         "evt-1",
		Type:       events.TypeRegistrationCreated,
		OccurredAt: time.Now().UTC(),
		ClientID:   1,
		TripID:     5,
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	recs := fetches.Records()
	require.NotEmpty(t, recs)
	require.Equal(t, "1", string(recs[0].Key))
	require.Contains(t, string(recs[0].Value), `"type":"registration.created"`)
}
