package clients

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"

	"github.com/Overland-East-Bay/trip-booking-api/internal/domain"
)

var (
	telephonePattern = regexp.MustCompile(`^\+?[0-9 ()-]{6,20}$`)
	peselPattern     = regexp.MustCompile(`^\d{11}$`)
)

// normalized is CreateClientInput after trimming, with blank optionals dropped.
type normalized struct {
	firstName string
	lastName  string
	email     string
	telephone *string
	pesel     *string
}

func normalize(in CreateClientInput) normalized {
	return normalized{
		firstName: domain.NormalizeHumanName(in.FirstName),
		lastName:  domain.NormalizeHumanName(in.LastName),
		email:     domain.NormalizeEmail(in.Email),
		telephone: trimOptional(in.Telephone),
		pesel:     trimOptional(in.Pesel),
	}
}

// validate returns per-field problems, keyed by the JSON field name.
func (n normalized) validate() map[string]any {
	details := map[string]any{}
	if n.firstName == "" {
		details["firstName"] = "must be non-empty"
	}
	if n.lastName == "" {
		details["lastName"] = "must be non-empty"
	}
	if err := validateEmail(n.email); err != nil {
		details["email"] = err.Error()
	}
	if n.telephone != nil && !telephonePattern.MatchString(*n.telephone) {
		details["telephone"] = "must be a phone number"
	}
	if n.pesel != nil && !peselPattern.MatchString(*n.pesel) {
		details["pesel"] = "must be exactly 11 digits"
	}
	return details
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("must be non-empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return errors.New("must be a valid email address")
	}
	// Ensure no "Name <email@x>" format sneaks in.
	if addr.Address != email {
		return errors.New("must be a bare email address")
	}
	return nil
}

func trimOptional(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
