package events

import (
	"context"
	"time"

	"github.com/Overland-East-Bay/trip-booking-api/internal/domain"
)

type Type string

const (
	TypeClientCreated       Type = "client.created"
	TypeRegistrationCreated Type = "registration.created"
	TypeRegistrationRemoved Type = "registration.removed"
)

// Event is a domain fact emitted after a transaction commits.
type Event struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	ClientID   domain.ClientID `json:"clientId"`
	TripID     domain.TripID   `json:"tripId,omitempty"`
}

// Publisher delivers events to downstream consumers. Delivery is best-effort:
// callers log failures and never roll back on them.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
