package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Overland-East-Bay/trip-booking-api/internal/domain"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error struct {
		Code      string                            `json:"code"`
		Message   string                            `json:"message"`
		Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
		RequestId nullable.Nullable[string]         `json:"requestId,omitempty"`
	} `json:"error"`
}

type Country struct {
	CountryId int64  `json:"countryId"`
	Name      string `json:"name"`
}

type Trip struct {
	TripId      int64              `json:"tripId"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	DateFrom    openapi_types.Date `json:"dateFrom"`
	DateTo      openapi_types.Date `json:"dateTo"`
	MaxPeople   int                `json:"maxPeople"`
	Countries   []string           `json:"countries"`
}

type Client struct {
	ClientId  int64                     `json:"clientId"`
	FirstName string                    `json:"firstName"`
	LastName  string                    `json:"lastName"`
	Email     openapi_types.Email       `json:"email"`
	Telephone nullable.Nullable[string] `json:"telephone"`
	Pesel     nullable.Nullable[string] `json:"pesel"`
}

type ClientTrip struct {
	TripId       int64                                 `json:"tripId"`
	Name         string                                `json:"name"`
	Description  string                                `json:"description"`
	DateFrom     openapi_types.Date                    `json:"dateFrom"`
	DateTo       openapi_types.Date                    `json:"dateTo"`
	MaxPeople    int                                   `json:"maxPeople"`
	RegisteredAt openapi_types.Date                    `json:"registeredAt"`
	PaymentDate  nullable.Nullable[openapi_types.Date] `json:"paymentDate"`
}

// CreateClientRequest keeps email as a plain string: format problems are reported
// by the client service as VALIDATION_ERROR rather than failing the decode.
type CreateClientRequest struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Telephone *string `json:"telephone,omitempty"`
	Pesel     *string `json:"pesel,omitempty"`
}

type CreateClientResponse struct {
	ClientId int64 `json:"clientId"`
}

type ListTripsResponse struct {
	Trips []Trip `json:"trips"`
}

type GetTripResponse struct {
	Trip Trip `json:"trip"`
}

type ListCountriesResponse struct {
	Countries []Country `json:"countries"`
}

type GetClientResponse struct {
	Client Client `json:"client"`
}

type ListClientTripsResponse struct {
	Trips []ClientTrip `json:"trips"`
}

func tripFromDomain(t domain.Trip) Trip {
	countries := t.Countries
	if countries == nil {
		countries = []string{}
	}
	return Trip{
		TripId:      int64(t.ID),
		Name:        t.Name,
		Description: t.Description,
		DateFrom:    openapi_types.Date{Time: t.DateFrom.UTC()},
		DateTo:      openapi_types.Date{Time: t.DateTo.UTC()},
		MaxPeople:   t.MaxPeople,
		Countries:   countries,
	}
}

func countryFromDomain(c domain.Country) Country {
	return Country{CountryId: int64(c.ID), Name: c.Name}
}

func clientFromDomain(c domain.Client) Client {
	return Client{
		ClientId:  int64(c.ID),
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     openapi_types.Email(c.Email),
		Telephone: nullableString(c.Telephone),
		Pesel:     nullableString(c.Pesel),
	}
}

func clientTripFromDomain(ct domain.ClientTrip) ClientTrip {
	return ClientTrip{
		TripId:       int64(ct.TripID),
		Name:         ct.TripName,
		Description:  ct.TripDescription,
		DateFrom:     openapi_types.Date{Time: ct.DateFrom.UTC()},
		DateTo:       openapi_types.Date{Time: ct.DateTo.UTC()},
		MaxPeople:    ct.MaxPeople,
		RegisteredAt: openapi_types.Date{Time: ct.RegisteredAt.UTC()},
		PaymentDate:  nullableDate(ct.PaymentDate),
	}
}

// Absent values are encoded as an explicit null; the fields carry no omitempty.
func nullableString(p *string) nullable.Nullable[string] {
	var out nullable.Nullable[string]
	if p != nil {
		out.Set(*p)
	} else {
		out.SetNull()
	}
	return out
}

func nullableDate(p *time.Time) nullable.Nullable[openapi_types.Date] {
	var out nullable.Nullable[openapi_types.Date]
	if p != nil {
		out.Set(openapi_types.Date{Time: p.UTC()})
	} else {
		out.SetNull()
	}
	return out
}
