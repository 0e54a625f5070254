package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Overland-East-Bay/trip-booking-api/internal/app/apperr"
	"github.com/Overland-East-Bay/trip-booking-api/internal/app/catalog"
	"github.com/Overland-East-Bay/trip-booking-api/internal/app/clients"
	"github.com/Overland-East-Bay/trip-booking-api/internal/app/registrations"
	"github.com/Overland-East-Bay/trip-booking-api/internal/domain"
	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/idempotency"
)

const (
	routeClients         = "/api/clients"
	routeClientTrip      = "/api/clients/{clientId}/trips/{tripId}"
	maxRequestBodyBytes  = 1 << 20
	contentTypeJSON      = "application/json"
	idempotencyNamespace = "v1"
)

type Server struct {
	Clients       *clients.Service
	Registrations *registrations.Service
	Catalog       *catalog.Service
	Idem          idempotency.Store
	Logger        *slog.Logger
}

func NewServer(clientsSvc *clients.Service, registrationsSvc *registrations.Service, catalogSvc *catalog.Service, idem idempotency.Store) *Server {
	return &Server{
		Clients:       clientsSvc,
		Registrations: registrationsSvc,
		Catalog:       catalogSvc,
		Idem:          idem,
		Logger:        slog.Default(),
	}
}

func (s *Server) routes(r chi.Router) {
	r.Get("/api/trips", s.ListTrips)
	r.Get("/api/trips/{tripId}", s.GetTrip)
	r.Get("/api/countries", s.ListCountries)

	r.Post(routeClients, s.CreateClient)
	r.Get("/api/clients/{clientId}", s.GetClient)
	r.Get("/api/clients/{clientId}/trips", s.ListClientTrips)
	r.Put(routeClientTrip, s.RegisterClientForTrip)
	r.Delete(routeClientTrip, s.UnregisterClientFromTrip)
}

func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := s.Catalog.ListTrips(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	resp := ListTripsResponse{Trips: make([]Trip, 0, len(trips))}
	for _, t := range trips {
		resp.Trips = append(resp.Trips, tripFromDomain(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathID(w, r, "tripId")
	if !ok {
		return
	}
	t, found, err := s.Catalog.GetTrip(r.Context(), domain.TripID(tripID))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	if !found {
		writeError(w, r, http.StatusNotFound, apperr.CodeTripNotFound,
			fmt.Sprintf("Trip with id %d does not exist.", tripID), map[string]any{"tripId": tripID})
		return
	}
	writeJSON(w, http.StatusOK, GetTripResponse{Trip: tripFromDomain(t)})
}

func (s *Server) ListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := s.Catalog.ListCountries(r.Context())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	resp := ListCountriesResponse{Countries: make([]Country, 0, len(countries))}
	for _, c := range countries {
		resp.Countries = append(resp.Countries, countryFromDomain(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) CreateClient(w http.ResponseWriter, r *http.Request) {
	var body CreateClientRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	bodyHash, err := hashCreateClientBody(body)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	gate, handled := s.beginIdempotent(w, r, routeClients, bodyHash)
	if handled {
		return
	}

	id, err := s.Clients.CreateClient(r.Context(), clients.CreateClientInput{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Email:     body.Email,
		Telephone: body.Telephone,
		Pesel:     body.Pesel,
	})
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	resp := CreateClientResponse{ClientId: int64(id)}
	b, err := json.Marshal(resp)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	gate.save(r.Context(), http.StatusCreated, contentTypeJSON, b)

	w.Header().Set("Location", clientLocation(int64(id)))
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(b)
}

func (s *Server) GetClient(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "clientId")
	if !ok {
		return
	}
	c, err := s.Clients.GetClient(r.Context(), domain.ClientID(clientID))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, GetClientResponse{Client: clientFromDomain(c)})
}

func (s *Server) ListClientTrips(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "clientId")
	if !ok {
		return
	}
	trips, err := s.Registrations.ListClientTrips(r.Context(), domain.ClientID(clientID))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	resp := ListClientTripsResponse{Trips: make([]ClientTrip, 0, len(trips))}
	for _, ct := range trips {
		resp.Trips = append(resp.Trips, clientTripFromDomain(ct))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) RegisterClientForTrip(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "clientId")
	if !ok {
		return
	}
	tripID, ok := pathID(w, r, "tripId")
	if !ok {
		return
	}

	// The pair is the whole request, so it is what a key is pinned to.
	bodyHash, err := hashJSON(struct {
		Ns       string `json:"ns"`
		ClientId int64  `json:"clientId"`
		TripId   int64  `json:"tripId"`
	}{idempotencyNamespace, clientID, tripID})
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	gate, handled := s.beginIdempotent(w, r, routeClientTrip, bodyHash)
	if handled {
		return
	}

	if err := s.Registrations.Register(r.Context(), domain.ClientID(clientID), domain.TripID(tripID)); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	gate.save(r.Context(), http.StatusNoContent, "", nil)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) UnregisterClientFromTrip(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(w, r, "clientId")
	if !ok {
		return
	}
	tripID, ok := pathID(w, r, "tripId")
	if !ok {
		return
	}
	if err := s.Registrations.Unregister(r.Context(), domain.ClientID(clientID), domain.TripID(tripID)); err != nil {
		s.writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pathID parses a positive integer path parameter, writing 400 when it is not one.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, codeBadRequest, "invalid path parameter",
			map[string]any{name: "must be a positive integer"})
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, contentTypeJSON) {
		writeError(w, r, http.StatusUnsupportedMediaType, codeBadRequest, "expected application/json body", nil)
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err := dec.Decode(dst); err != nil {
		msg := "malformed JSON body"
		if errors.Is(err, io.EOF) {
			msg = "missing request body"
		}
		writeError(w, r, http.StatusBadRequest, codeBadRequest, msg, nil)
		return false
	}
	if dec.More() {
		writeError(w, r, http.StatusBadRequest, codeBadRequest, "malformed JSON body", nil)
		return false
	}
	return true
}

// hashCreateClientBody canonicalizes fields with normalization semantics
// before hashing, so retries differing only in whitespace or email case
// count as the same request.
func hashCreateClientBody(b CreateClientRequest) (string, error) {
	canon := b
	canon.FirstName = domain.NormalizeHumanName(canon.FirstName)
	canon.LastName = domain.NormalizeHumanName(canon.LastName)
	canon.Email = domain.EmailKey(canon.Email)
	canon.Telephone = trimmedOrNil(canon.Telephone)
	canon.Pesel = trimmedOrNil(canon.Pesel)
	return hashJSON(struct {
		Ns   string              `json:"ns"`
		Body CreateClientRequest `json:"body"`
	}{idempotencyNamespace, canon})
}

func trimmedOrNil(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func clientLocation(id int64) string {
	return routeClients + "/" + strconv.FormatInt(id, 10)
}
