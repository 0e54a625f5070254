package bookingstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Overland-East-Bay/trip-booking-api/internal/adapters/sqlite"
	"github.com/Overland-East-Bay/trip-booking-api/internal/domain"
	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/bookingstore"
)

const defaultTxTimeout = 5 * time.Second

// Store is a SQLite implementation of bookingstore.Store.
//
// Expects a *sql.DB from sqlite.Open: one connection and BEGIN IMMEDIATE
// transactions, so WithinTx calls run one at a time.
type Store struct {
	db        *sql.DB
	txTimeout time.Duration
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, txTimeout: defaultTxTimeout}
}

// WithTxTimeout sets the timeout applied to transactions whose ctx has no deadline.
func (s *Store) WithTxTimeout(d time.Duration) *Store {
	if d > 0 {
		s.txTimeout = d
	}
	return s
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx bookingstore.Tx) error) error {
	if s.db == nil {
		return errors.New("nil sqlite db")
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	stx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = stx.Rollback() // safe to call even after commit
	}()

	if err := fn(&tx{tx: stx}); err != nil {
		return err
	}
	return stx.Commit()
}

func (s *Store) ListTrips(ctx context.Context) ([]domain.Trip, error) {
	if s.db == nil {
		return nil, errors.New("nil sqlite db")
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, date_from, date_to, max_people
		FROM trips
		ORDER BY date_from DESC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	out, err := scanTrips(rows)
	if err != nil {
		return nil, err
	}

	countries, err := s.tripCountries(ctx, nil)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Countries = nonNil(countries[out[i].ID])
	}
	return out, nil
}

func (s *Store) GetTrip(ctx context.Context, id domain.TripID) (domain.Trip, error) {
	if s.db == nil {
		return domain.Trip{}, errors.New("nil sqlite db")
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, date_from, date_to, max_people
		FROM trips
		WHERE id = ?
	`, int64(id))
	if err != nil {
		return domain.Trip{}, err
	}
	ts, err := scanTrips(rows)
	if err != nil {
		return domain.Trip{}, err
	}
	if len(ts) == 0 {
		return domain.Trip{}, bookingstore.ErrNotFound
	}

	countries, err := s.tripCountries(ctx, &id)
	if err != nil {
		return domain.Trip{}, err
	}
	t := ts[0]
	t.Countries = nonNil(countries[id])
	return t, nil
}

func (s *Store) ListCountries(ctx context.Context) ([]domain.Country, error) {
	if s.db == nil {
		return nil, errors.New("nil sqlite db")
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM countries ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Country, 0)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out = append(out, domain.Country{ID: domain.CountryID(id), Name: name})
	}
	return out, rows.Err()
}

func (s *Store) GetClient(ctx context.Context, id domain.ClientID) (domain.Client, error) {
	if s.db == nil {
		return domain.Client{}, errors.New("nil sqlite db")
	}
	var (
		cid              int64
		c                domain.Client
		telephone, pesel sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, telephone, pesel
		FROM clients
		WHERE id = ?
	`, int64(id)).Scan(&cid, &c.FirstName, &c.LastName, &c.Email, &telephone, &pesel)
	if err != nil {
		return domain.Client{}, mapNotFound(err)
	}
	c.ID = domain.ClientID(cid)
	c.Telephone = mapNullStringPtr(telephone)
	c.Pesel = mapNullStringPtr(pesel)
	return c, nil
}

func (s *Store) CreateTrip(ctx context.Context, nt bookingstore.NewTrip) (domain.TripID, error) {
	var id domain.TripID
	err := s.WithinTx(ctx, func(btx bookingstore.Tx) error {
		t := btx.(*tx)
		res, err := t.tx.ExecContext(ctx, `
			INSERT INTO trips (name, description, date_from, date_to, max_people)
			VALUES (?, ?, ?, ?, ?)
		`,
			nt.Name,
			nt.Description,
			domain.FormatDate(nt.DateFrom),
			domain.FormatDate(nt.DateTo),
			nt.MaxPeople,
		)
		if err != nil {
			return err
		}
		tripID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		id = domain.TripID(tripID)

		for _, name := range countryNames(nt.Countries) {
			if _, err := t.tx.ExecContext(ctx, `
				INSERT INTO countries (name) VALUES (?) ON CONFLICT (name) DO NOTHING
			`, name); err != nil {
				return err
			}
			if _, err := t.tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO country_trip (country_id, trip_id)
				SELECT id, ? FROM countries WHERE name = ?
			`, tripID, name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return errors.New("nil sqlite db")
	}
	return s.db.PingContext(ctx)
}

// tripCountries maps trip id to its sorted country names; only is an optional filter.
func (s *Store) tripCountries(ctx context.Context, only *domain.TripID) (map[domain.TripID][]string, error) {
	query := `
		SELECT ct.trip_id, c.name
		FROM country_trip ct
		JOIN countries c ON c.id = ct.country_id
	`
	var args []any
	if only != nil {
		query += ` WHERE ct.trip_id = ?`
		args = append(args, int64(*only))
	}
	query += ` ORDER BY ct.trip_id ASC, c.name ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.TripID][]string)
	for rows.Next() {
		var tripID int64
		var name string
		if err := rows.Scan(&tripID, &name); err != nil {
			return nil, err
		}
		out[domain.TripID(tripID)] = append(out[domain.TripID(tripID)], name)
	}
	return out, rows.Err()
}

type tx struct {
	tx *sql.Tx
}

func (t *tx) ClientExists(ctx context.Context, id domain.ClientID) (bool, error) {
	var ok bool
	err := t.tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM clients WHERE id = ?)`, int64(id)).Scan(&ok)
	return ok, err
}

func (t *tx) ClientKeyTaken(ctx context.Context, email string, pesel *string) (bool, error) {
	var ok bool
	p := mapOptionalString(pesel)
	err := t.tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM clients
			WHERE email_key = ?
			   OR (? IS NOT NULL AND pesel = ?)
		)
	`, domain.EmailKey(email), p, p).Scan(&ok)
	return ok, err
}

func (t *tx) InsertClient(ctx context.Context, c bookingstore.NewClient) (domain.ClientID, error) {
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO clients (first_name, last_name, email, email_key, telephone, pesel)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		c.FirstName,
		c.LastName,
		c.Email,
		domain.EmailKey(c.Email),
		mapOptionalString(c.Telephone),
		mapOptionalString(c.Pesel),
	)
	if err != nil {
		if sqlite.IsUniqueViolation(err) {
			return 0, bookingstore.ErrDuplicateClient
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return domain.ClientID(id), nil
}

// LockTrip reads the capacity. The transaction already holds the database write
// lock (BEGIN IMMEDIATE), so no row lock is needed.
func (t *tx) LockTrip(ctx context.Context, id domain.TripID) (int, error) {
	var maxPeople int
	err := t.tx.QueryRowContext(ctx, `SELECT max_people FROM trips WHERE id = ?`, int64(id)).Scan(&maxPeople)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return maxPeople, nil
}

func (t *tx) RegistrationExists(ctx context.Context, clientID domain.ClientID, tripID domain.TripID) (bool, error) {
	var ok bool
	err := t.tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM client_trip WHERE client_id = ? AND trip_id = ?)
	`, int64(clientID), int64(tripID)).Scan(&ok)
	return ok, err
}

func (t *tx) CountRegistrations(ctx context.Context, tripID domain.TripID) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx, `SELECT count(*) FROM client_trip WHERE trip_id = ?`, int64(tripID)).Scan(&n)
	return n, err
}

func (t *tx) InsertRegistration(ctx context.Context, r domain.Registration) error {
	var payment sql.NullString
	if r.PaymentDate != nil {
		payment = sql.NullString{String: domain.FormatDate(*r.PaymentDate), Valid: true}
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO client_trip (client_id, trip_id, registered_at, payment_date)
		VALUES (?, ?, ?, ?)
	`,
		int64(r.ClientID),
		int64(r.TripID),
		domain.FormatDate(r.RegisteredAt),
		payment,
	)
	switch {
	case err == nil:
		return nil
	case sqlite.IsUniqueViolation(err):
		return bookingstore.ErrAlreadyRegistered
	case sqlite.IsForeignKeyViolation(err):
		return fmt.Errorf("insert registration: %w", bookingstore.ErrNotFound)
	default:
		return err
	}
}

func (t *tx) DeleteRegistration(ctx context.Context, clientID domain.ClientID, tripID domain.TripID) error {
	res, err := t.tx.ExecContext(ctx, `
		DELETE FROM client_trip WHERE client_id = ? AND trip_id = ?
	`, int64(clientID), int64(tripID))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return bookingstore.ErrNotFound
	}
	return nil
}

func (t *tx) ListClientTrips(ctx context.Context, clientID domain.ClientID) ([]domain.ClientTrip, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT t.id, t.name, t.description, t.date_from, t.date_to, t.max_people,
		       ct.registered_at, ct.payment_date
		FROM client_trip ct
		JOIN trips t ON t.id = ct.trip_id
		WHERE ct.client_id = ?
		ORDER BY ct.registered_at ASC, t.id ASC
	`, int64(clientID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ClientTrip, 0)
	for rows.Next() {
		var (
			tripID                         int64
			item                           domain.ClientTrip
			dateFrom, dateTo, registeredAt string
			paymentDate                    sql.NullString
		)
		if err := rows.Scan(
			&tripID,
			&item.TripName,
			&item.TripDescription,
			&dateFrom,
			&dateTo,
			&item.MaxPeople,
			&registeredAt,
			&paymentDate,
		); err != nil {
			return nil, err
		}
		item.TripID = domain.TripID(tripID)
		if item.DateFrom, err = domain.ParseDate(dateFrom); err != nil {
			return nil, err
		}
		if item.DateTo, err = domain.ParseDate(dateTo); err != nil {
			return nil, err
		}
		if item.RegisteredAt, err = domain.ParseDate(registeredAt); err != nil {
			return nil, err
		}
		if paymentDate.Valid {
			d, err := domain.ParseDate(paymentDate.String)
			if err != nil {
				return nil, err
			}
			item.PaymentDate = &d
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// --- helpers ---

// scanTrips drains and closes rows; the single connection must be free before the next query.
func scanTrips(rows *sql.Rows) ([]domain.Trip, error) {
	defer rows.Close()

	out := make([]domain.Trip, 0)
	for rows.Next() {
		var (
			id               int64
			t                domain.Trip
			dateFrom, dateTo string
		)
		if err := rows.Scan(&id, &t.Name, &t.Description, &dateFrom, &dateTo, &t.MaxPeople); err != nil {
			return nil, err
		}
		t.ID = domain.TripID(id)
		var err error
		if t.DateFrom, err = domain.ParseDate(dateFrom); err != nil {
			return nil, err
		}
		if t.DateTo, err = domain.ParseDate(dateTo); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, rows.Close()
}

func countryNames(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, name := range in {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return bookingstore.ErrNotFound
	}
	return err
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func mapOptionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}
