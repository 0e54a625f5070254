package bookingstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Overland-East-Bay/trip-booking-api/internal/domain"
	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/bookingstore"
)

const defaultTxTimeout = 5 * time.Second

type regKey struct {
	clientID domain.ClientID
	tripID   domain.TripID
}

type state struct {
	clients   map[domain.ClientID]domain.Client
	trips     map[domain.TripID]domain.Trip
	countries map[domain.CountryID]string
	regs      map[regKey]domain.Registration

	nextClientID  domain.ClientID
	nextTripID    domain.TripID
	nextCountryID domain.CountryID
}

func newState() *state {
	return &state{
		clients:   make(map[domain.ClientID]domain.Client),
		trips:     make(map[domain.TripID]domain.Trip),
		countries: make(map[domain.CountryID]string),
		regs:      make(map[regKey]domain.Registration),
	}
}

// clone copies the maps; values are cloned on read, so sharing them is fine.
func (s *state) clone() *state {
	out := &state{
		clients:       make(map[domain.ClientID]domain.Client, len(s.clients)),
		trips:         make(map[domain.TripID]domain.Trip, len(s.trips)),
		countries:     make(map[domain.CountryID]string, len(s.countries)),
		regs:          make(map[regKey]domain.Registration, len(s.regs)),
		nextClientID:  s.nextClientID,
		nextTripID:    s.nextTripID,
		nextCountryID: s.nextCountryID,
	}
	for k, v := range s.clients {
		out.clients[k] = v
	}
	for k, v := range s.trips {
		out.trips[k] = v
	}
	for k, v := range s.countries {
		out.countries[k] = v
	}
	for k, v := range s.regs {
		out.regs[k] = v
	}
	return out
}

// Store is an in-memory implementation of bookingstore.Store.
//
// Transactions hold the store-wide lock for their whole duration and work on a copy
// of the state that replaces the live state only on commit, so they are serializable.
// It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	st        *state
	txTimeout time.Duration
}

func NewStore() *Store {
	return &Store{st: newState(), txTimeout: defaultTxTimeout}
}

// WithTxTimeout sets the timeout applied to transactions whose ctx has no deadline.
func (s *Store) WithTxTimeout(d time.Duration) *Store {
	if d > 0 {
		s.txTimeout = d
	}
	return s
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx bookingstore.Tx) error) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check after waiting on the lock.
	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.st.clone()
	if err := fn(&tx{st: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit aborted: %w", err)
	}
	s.st = work
	return nil
}

func (s *Store) ListTrips(ctx context.Context) ([]domain.Trip, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Trip, 0, len(s.st.trips))
	for _, t := range s.st.trips {
		out = append(out, cloneTrip(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateFrom.Equal(out[j].DateFrom) {
			return out[i].DateFrom.After(out[j].DateFrom)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetTrip(ctx context.Context, id domain.TripID) (domain.Trip, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.st.trips[id]
	if !ok {
		return domain.Trip{}, bookingstore.ErrNotFound
	}
	return cloneTrip(t), nil
}

func (s *Store) ListCountries(ctx context.Context) ([]domain.Country, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Country, 0, len(s.st.countries))
	for id, name := range s.st.countries {
		out = append(out, domain.Country{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetClient(ctx context.Context, id domain.ClientID) (domain.Client, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.st.clients[id]
	if !ok {
		return domain.Client{}, bookingstore.ErrNotFound
	}
	return cloneClient(c), nil
}

func (s *Store) CreateTrip(ctx context.Context, nt bookingstore.NewTrip) (domain.TripID, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(nt.Countries))
	for _, name := range nt.Countries {
		name = strings.TrimSpace(name)
		if name == "" || containsString(names, name) {
			continue
		}
		if !s.st.hasCountry(name) {
			s.st.nextCountryID++
			s.st.countries[s.st.nextCountryID] = name
		}
		names = append(names, name)
	}
	sort.Strings(names)

	s.st.nextTripID++
	id := s.st.nextTripID
	s.st.trips[id] = domain.Trip{
		ID:          id,
		Name:        nt.Name,
		Description: nt.Description,
		DateFrom:    domain.DateOf(nt.DateFrom),
		DateTo:      domain.DateOf(nt.DateTo),
		MaxPeople:   nt.MaxPeople,
		Countries:   names,
	}
	return id, nil
}

func (s *Store) Ping(ctx context.Context) error {
	_ = ctx
	return nil
}

type tx struct {
	st *state
}

func (t *tx) ClientExists(ctx context.Context, id domain.ClientID) (bool, error) {
	_ = ctx
	_, ok := t.st.clients[id]
	return ok, nil
}

func (t *tx) ClientKeyTaken(ctx context.Context, email string, pesel *string) (bool, error) {
	_ = ctx
	return t.st.clientKeyTaken(email, pesel), nil
}

func (t *tx) InsertClient(ctx context.Context, c bookingstore.NewClient) (domain.ClientID, error) {
	_ = ctx
	if t.st.clientKeyTaken(c.Email, c.Pesel) {
		return 0, bookingstore.ErrDuplicateClient
	}
	t.st.nextClientID++
	id := t.st.nextClientID
	t.st.clients[id] = domain.Client{
		ID:        id,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Telephone: cloneStringPtr(c.Telephone),
		Pesel:     cloneStringPtr(c.Pesel),
	}
	return id, nil
}

func (t *tx) LockTrip(ctx context.Context, id domain.TripID) (int, error) {
	_ = ctx
	trip, ok := t.st.trips[id]
	if !ok {
		return 0, bookingstore.ErrNotFound
	}
	return trip.MaxPeople, nil
}

func (t *tx) RegistrationExists(ctx context.Context, clientID domain.ClientID, tripID domain.TripID) (bool, error) {
	_ = ctx
	_, ok := t.st.regs[regKey{clientID: clientID, tripID: tripID}]
	return ok, nil
}

func (t *tx) CountRegistrations(ctx context.Context, tripID domain.TripID) (int, error) {
	_ = ctx
	n := 0
	for k := range t.st.regs {
		if k.tripID == tripID {
			n++
		}
	}
	return n, nil
}

func (t *tx) InsertRegistration(ctx context.Context, r domain.Registration) error {
	_ = ctx
	k := regKey{clientID: r.ClientID, tripID: r.TripID}
	if _, ok := t.st.regs[k]; ok {
		return bookingstore.ErrAlreadyRegistered
	}
	// Mirror the foreign keys of the SQL schemas.
	if _, ok := t.st.clients[r.ClientID]; !ok {
		return fmt.Errorf("insert registration: client %d: %w", r.ClientID, bookingstore.ErrNotFound)
	}
	if _, ok := t.st.trips[r.TripID]; !ok {
		return fmt.Errorf("insert registration: trip %d: %w", r.TripID, bookingstore.ErrNotFound)
	}
	r.RegisteredAt = domain.DateOf(r.RegisteredAt)
	if r.PaymentDate != nil {
		d := domain.DateOf(*r.PaymentDate)
		r.PaymentDate = &d
	}
	t.st.regs[k] = r
	return nil
}

func (t *tx) DeleteRegistration(ctx context.Context, clientID domain.ClientID, tripID domain.TripID) error {
	_ = ctx
	k := regKey{clientID: clientID, tripID: tripID}
	if _, ok := t.st.regs[k]; !ok {
		return bookingstore.ErrNotFound
	}
	delete(t.st.regs, k)
	return nil
}

func (t *tx) ListClientTrips(ctx context.Context, clientID domain.ClientID) ([]domain.ClientTrip, error) {
	_ = ctx
	out := make([]domain.ClientTrip, 0)
	for k, r := range t.st.regs {
		if k.clientID != clientID {
			continue
		}
		trip := t.st.trips[k.tripID]
		out = append(out, domain.ClientTrip{
			TripID:          trip.ID,
			TripName:        trip.Name,
			TripDescription: trip.Description,
			DateFrom:        trip.DateFrom,
			DateTo:          trip.DateTo,
			MaxPeople:       trip.MaxPeople,
			RegisteredAt:    r.RegisteredAt,
			PaymentDate:     cloneTimePtr(r.PaymentDate),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].RegisteredAt.Before(out[j].RegisteredAt)
		}
		return out[i].TripID < out[j].TripID
	})
	return out, nil
}

func (s *state) clientKeyTaken(email string, pesel *string) bool {
	key := domain.EmailKey(email)
	for _, c := range s.clients {
		if domain.EmailKey(c.Email) == key {
			return true
		}
		if pesel != nil && c.Pesel != nil && *c.Pesel == *pesel {
			return true
		}
	}
	return false
}

func (s *state) hasCountry(name string) bool {
	for _, n := range s.countries {
		if n == name {
			return true
		}
	}
	return false
}

func cloneTrip(t domain.Trip) domain.Trip {
	t.Countries = append([]string(nil), t.Countries...)
	if t.Countries == nil {
		t.Countries = []string{}
	}
	return t
}

func cloneClient(c domain.Client) domain.Client {
	c.Telephone = cloneStringPtr(c.Telephone)
	c.Pesel = cloneStringPtr(c.Pesel)
	return c
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func containsString(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
