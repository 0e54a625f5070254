package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/events"
)

func TestRecorder_KeepsEventsInOrder(t *testing.T) {
	t.Parallel()

	r := NewRecorder(nil)
	ctx := context.Background()
	require.NoError(t, r.Publish(ctx, events.Event{ID: "1", Type: events.TypeRegistrationCreated}))
	require.NoError(t, r.Publish(ctx, events.Event{ID: "2", Type: events.TypeRegistrationRemoved}))

	got := r.Events()
	require.Len(t, got, 2)
	require.Equal(t, "1", got[0].ID)
	require.Equal(t, "2", got[1].ID)

	r.FailWith(errors.New("broker down"))
	require.Error(t, r.Publish(ctx, events.Event{ID: "3"}))
	require.Len(t, r.Events(), 2)
}

func TestLogPublisher_LogsWithoutRetaining(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))
	require.NoError(t, r.Publish(context.Background(), events.Event{ID: "e-1", Type: events.TypeClientCreated, ClientID: 7}))

	require.Empty(t, r.Events())
	require.Contains(t, buf.String(), `"event_id":"e-1"`)
	require.Contains(t, buf.String(), `"client_id":7`)
}
