package clients

// CreateClientInput is the caller-supplied shape of a new client.
// Telephone and Pesel are optional; nil and blank are treated the same.
type CreateClientInput struct {
	FirstName string
	LastName  string
	Email     string
	Telephone *string
	Pesel     *string
}
