package bookingstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/Overland-East-Bay/trip-booking-api/internal/adapters/postgres"
	"github.com/Overland-East-Bay/trip-booking-api/internal/domain"
	"github.com/Overland-East-Bay/trip-booking-api/internal/ports/out/bookingstore"
)

const defaultTxTimeout = 5 * time.Second

// Store is a Postgres implementation of bookingstore.Store.
//
// Registration transactions lock the trip row FOR UPDATE, which serializes every
// check-then-insert against the same trip. The unique constraints back that up.
type Store struct {
	pool      *pgxpool.Pool
	txTimeout time.Duration
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, txTimeout: defaultTxTimeout}
}

// WithTxTimeout sets the timeout applied to transactions whose ctx has no deadline.
func (s *Store) WithTxTimeout(d time.Duration) *Store {
	if d > 0 {
		s.txTimeout = d
	}
	return s
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx bookingstore.Tx) error) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}
	return pgx.BeginFunc(ctx, s.pool, func(ptx pgx.Tx) error {
		return fn(&tx{tx: ptx})
	})
}

const tripColumns = `
	t.id, t.name, t.description, t.date_from, t.date_to, t.max_people,
	COALESCE(
		array_agg(c.name ORDER BY c.name) FILTER (WHERE c.name IS NOT NULL),
		'{}'
	) AS countries
`

const tripJoins = `
	FROM trips t
	LEFT JOIN country_trip ct ON ct.trip_id = t.id
	LEFT JOIN countries c ON c.id = ct.country_id
`

func (s *Store) ListTrips(ctx context.Context) ([]domain.Trip, error) {
	if s.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := s.pool.Query(ctx, `SELECT `+tripColumns+tripJoins+`
		GROUP BY t.id
		ORDER BY t.date_from DESC, t.id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Trip, 0)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTrip(ctx context.Context, id domain.TripID) (domain.Trip, error) {
	if s.pool == nil {
		return domain.Trip{}, errors.New("nil postgres pool")
	}
	row := s.pool.QueryRow(ctx, `SELECT `+tripColumns+tripJoins+`
		WHERE t.id = $1
		GROUP BY t.id
	`, int64(id))
	t, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, bookingstore.ErrNotFound
		}
		return domain.Trip{}, err
	}
	return t, nil
}

func (s *Store) ListCountries(ctx context.Context) ([]domain.Country, error) {
	if s.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM countries ORDER BY name ASC`)
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
	if s.pool == nil {
		return domain.Client{}, errors.New("nil postgres pool")
	}
	row := s.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, email, telephone, pesel
		FROM clients
		WHERE id = $1
	`, int64(id))
	var (
		cid int64
		c   domain.Client
	)
	if err := row.Scan(&cid, &c.FirstName, &c.LastName, &c.Email, &c.Telephone, &c.Pesel); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Client{}, bookingstore.ErrNotFound
		}
		return domain.Client{}, err
	}
	c.ID = domain.ClientID(cid)
	return c, nil
}

func (s *Store) CreateTrip(ctx context.Context, nt bookingstore.NewTrip) (domain.TripID, error) {
	if s.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	var id int64
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO trips (name, description, date_from, date_to, max_people)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`,
			nt.Name,
			nt.Description,
			dateOf(nt.DateFrom),
			dateOf(nt.DateTo),
			nt.MaxPeople,
		).Scan(&id); err != nil {
			return err
		}

		for _, name := range countryNames(nt.Countries) {
			var countryID int64
			// The no-op update makes RETURNING yield the existing row.
			if err := tx.QueryRow(ctx, `
				INSERT INTO countries (name) VALUES ($1)
				ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
				RETURNING id
			`, name).Scan(&countryID); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO country_trip (country_id, trip_id) VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, countryID, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return domain.TripID(id), nil
}

func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	return s.pool.Ping(ctx)
}

type tx struct {
	tx pgx.Tx
}

func (t *tx) ClientExists(ctx context.Context, id domain.ClientID) (bool, error) {
	var ok bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)`, int64(id)).Scan(&ok)
	return ok, err
}

func (t *tx) ClientKeyTaken(ctx context.Context, email string, pesel *string) (bool, error) {
	var ok bool
	err := t.tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM clients
			WHERE email_key = $1
			   OR ($2::text IS NOT NULL AND pesel = $2::text)
		)
	`, domain.EmailKey(email), pesel).Scan(&ok)
	return ok, err
}

func (t *tx) InsertClient(ctx context.Context, c bookingstore.NewClient) (domain.ClientID, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO clients (first_name, last_name, email, email_key, telephone, pesel)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		c.FirstName,
		c.LastName,
		c.Email,
		domain.EmailKey(c.Email),
		c.Telephone,
		c.Pesel,
	).Scan(&id)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			switch pe.ConstraintName {
			case "clients_email_key_unique", "clients_pesel_unique":
				return 0, bookingstore.ErrDuplicateClient
			}
		}
		return 0, err
	}
	return domain.ClientID(id), nil
}

func (t *tx) LockTrip(ctx context.Context, id domain.TripID) (int, error) {
	var maxPeople int
	err := t.tx.QueryRow(ctx, `SELECT max_people FROM trips WHERE id = $1 FOR UPDATE`, int64(id)).Scan(&maxPeople)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, bookingstore.ErrNotFound
		}
		return 0, err
	}
	return maxPeople, nil
}

func (t *tx) RegistrationExists(ctx context.Context, clientID domain.ClientID, tripID domain.TripID) (bool, error) {
	var ok bool
	err := t.tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM client_trip WHERE client_id = $1 AND trip_id = $2)
	`, int64(clientID), int64(tripID)).Scan(&ok)
	return ok, err
}

func (t *tx) CountRegistrations(ctx context.Context, tripID domain.TripID) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx, `SELECT count(*) FROM client_trip WHERE trip_id = $1`, int64(tripID)).Scan(&n)
	return n, err
}

func (t *tx) InsertRegistration(ctx context.Context, r domain.Registration) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO client_trip (client_id, trip_id, registered_at, payment_date)
		VALUES ($1, $2, $3, $4)
	`,
		int64(r.ClientID),
		int64(r.TripID),
		dateOf(r.RegisteredAt),
		datePtr(r.PaymentDate),
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok {
			switch {
			case pe.Code == postgres.UniqueViolationCode && pe.ConstraintName == "client_trip_pkey":
				return bookingstore.ErrAlreadyRegistered
			case pe.Code == postgres.ForeignKeyViolationCode:
				return fmt.Errorf("insert registration: %s: %w", pe.ConstraintName, bookingstore.ErrNotFound)
			}
		}
		return err
	}
	return nil
}

func (t *tx) DeleteRegistration(ctx context.Context, clientID domain.ClientID, tripID domain.TripID) error {
	tag, err := t.tx.Exec(ctx, `
		DELETE FROM client_trip WHERE client_id = $1 AND trip_id = $2
	`, int64(clientID), int64(tripID))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return bookingstore.ErrNotFound
	}
	return nil
}

func (t *tx) ListClientTrips(ctx context.Context, clientID domain.ClientID) ([]domain.ClientTrip, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT t.id, t.name, t.description, t.date_from, t.date_to, t.max_people,
		       ct.registered_at, ct.payment_date
		FROM client_trip ct
		JOIN trips t ON t.id = ct.trip_id
		WHERE ct.client_id = $1
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
			dateFrom, dateTo, registeredAt pgtype.Date
			paymentDate                    pgtype.Date
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
		item.DateFrom = dateValue(dateFrom)
		item.DateTo = dateValue(dateTo)
		item.RegisteredAt = dateValue(registeredAt)
		item.PaymentDate = dateToTimePtr(paymentDate)
		out = append(out, item)
	}
	return out, rows.Err()
}

// --- helpers ---

func scanTrip(row pgx.Row) (domain.Trip, error) {
	var (
		id               int64
		t                domain.Trip
		dateFrom, dateTo pgtype.Date
	)
	if err := row.Scan(&id, &t.Name, &t.Description, &dateFrom, &dateTo, &t.MaxPeople, &t.Countries); err != nil {
		return domain.Trip{}, err
	}
	t.ID = domain.TripID(id)
	t.DateFrom = dateValue(dateFrom)
	t.DateTo = dateValue(dateTo)
	if t.Countries == nil {
		t.Countries = []string{}
	}
	return t, nil
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

func dateOf(t time.Time) pgtype.Date {
	return pgtype.Date{Time: domain.DateOf(t), Valid: true}
}

func datePtr(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return dateOf(*t)
}

func dateValue(d pgtype.Date) time.Time {
	if !d.Valid {
		return time.Time{}
	}
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

func dateToTimePtr(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := dateValue(d)
	return &t
}
