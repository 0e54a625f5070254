package bookingstore

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrAlreadyRegistered is returned when the (client, trip) pair already exists.
	ErrAlreadyRegistered = errors.New("client already registered for trip")

	// ErrDuplicateClient is returned when a client with the same email or pesel exists.
	ErrDuplicateClient = errors.New("client with this email or pesel already exists")
)
