package domain

import "time"

// Trip is a bookable trip. DateFrom/DateTo are calendar dates (see DateOf).
type Trip struct {
	ID          TripID
	Name        string
	Description string
	DateFrom    time.Time
	DateTo      time.Time
	MaxPeople   int

	// Countries holds the names of the countries the trip visits, sorted by name.
	Countries []string
}

type Country struct {
	ID   CountryID
	Name string
}
