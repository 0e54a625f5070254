package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/events"
)

func TestRecord(t *testing.T) {
	t.Parallel()

	e := events.Event{
		ID:         "evt-1",
		Type:       events.TypeRegistrationCreated,
		OccurredAt: time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
		ClientID:   7,
		TripID:     5,
	}
	rec, err := record("booking.events", e)
	require.NoError(t, err)
	require.Equal(t, "booking.events", rec.Topic)
	require.Equal(t, "7", string(rec.Key))
	require.Len(t, rec.Headers, 2)
	require.Equal(t, "registration.created", string(rec.Headers[0].Value))

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Value, &got))
	require.Equal(t, "evt-1", got["id"])
	require.Equal(t, float64(5), got["tripId"])
}

func TestRecord_ClientEventOmitsTrip(t *testing.T) {
	t.Parallel()

	rec, err := record("t", events.Event{ID: "e", Type: events.TypeClientCreated, ClientID: 1})
	require.NoError(t, err)
	require.NotContains(t, string(rec.Value), "tripId")
}

func TestNewPublisher_Validates(t *testing.T) {
	t.Parallel()

	_, err := NewPublisher(Config{Topic: "t"})
	require.Error(t, err)
	_, err = NewPublisher(Config{Brokers: []string{"localhost:9092"}})
	require.Error(t, err)
}
