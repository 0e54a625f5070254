package domain

import "time"

// Registration binds one client to one trip.
//
// RegisteredAt is the calendar day the registration was created. PaymentDate is nil
// while the registration is unpaid.
type Registration struct {
	ClientID     ClientID
	TripID       TripID
	RegisteredAt time.Time
	PaymentDate  *time.Time
}

// ClientTrip is a trip projection as seen from one client's registrations.
type ClientTrip struct {
	TripID          TripID
	TripName        string
	TripDescription string
	DateFrom        time.Time
	DateTo          time.Time
	MaxPeople       int
	RegisteredAt    time.Time
	PaymentDate     *time.Time
}
