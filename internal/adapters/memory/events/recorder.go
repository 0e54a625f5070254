package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/events"
)

// Recorder is an in-process events.Publisher. It keeps every published event and,
// when given a logger, logs each one. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []events.Event
	logger *slog.Logger
	err    error

	discard bool
}

func NewRecorder(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger}
}

// NewLogPublisher returns a Recorder that logs and retains nothing.
// It backs EVENTS_BACKEND=log.
func NewLogPublisher(logger *slog.Logger) *Recorder {
	return &Recorder{logger: logger, discard: true}
}

func (r *Recorder) Publish(ctx context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if !r.discard {
		r.events = append(r.events, e)
	}
	if r.logger != nil {
		r.logger.InfoContext(ctx, "domain event",
			slog.String("event_id", e.ID),
			slog.String("event_type", string(e.Type)),
			slog.Int64("client_id", int64(e.ClientID)),
			slog.Int64("trip_id", int64(e.TripID)),
		)
	}
	return nil
}

// FailWith makes subsequent Publish calls return err (nil restores normal behavior).
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Events returns a copy of the published events in publish order.
func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}
