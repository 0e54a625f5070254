package sqlite

import (
	"database/sql"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/Overland-East-Bay/trip-booking-api/internal/adapters/sqlite/migrations"
)

// ApplyMigrations applies any pending migrations to db.
func ApplyMigrations(db *sql.DB) error {
	instance, err := newMigrate(db)
	if err != nil {
		return err
	}
	err = instance.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// RollbackMigrations rolls back steps migrations.
func RollbackMigrations(db *sql.DB, steps int) error {
	if steps <= 0 {
		return errors.New("steps must be positive")
	}
	instance, err := newMigrate(db)
	if err != nil {
		return err
	}
	err = instance.Steps(-steps)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// MigrationVersion reports the applied schema version. ok is false on an empty database.
func MigrationVersion(db *sql.DB) (version uint, dirty bool, ok bool, err error) {
	instance, err := newMigrate(db)
	if err != nil {
		return 0, false, false, err
	}
	version, dirty, err = instance.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, err
	}
	return version, dirty, true, nil
}

// The migrate instance is never closed: closing it would close db, which the caller owns.
func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return nil, err
	}
	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return nil, err
	}
	return migrate.NewWithInstance("iofs", src, "sqlite", driver)
}
