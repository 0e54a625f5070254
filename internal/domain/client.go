package domain

// Client is a person who can be registered for trips.
type Client struct {
	ID        ClientID
	FirstName string
	LastName  string
	Email     string
	Telephone *string
	Pesel     *string
}
