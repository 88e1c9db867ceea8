package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/storefront/backend/migrations"
	"go.uber.org/zap"
)

// Migrator drives golang-migrate against the payments schema
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New opens a Migrator on db. SQL files come from dir, or from the set
// embedded in the binary when dir is empty.
func New(db *sql.DB, dir string, log *zap.Logger) (*Migrator, error) {
	var files fs.FS = migrations.FS
	if dir != "" {
		files = os.DirFS(dir)
	}

	src, err := iofs.New(files, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	target, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", target)
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	return &Migrator{m: m, log: log.Named("migration")}, nil
}

// Up applies every pending migration
func (mg *Migrator) Up() error {
	return mg.run("up", mg.m.Up)
}

// Down reverts every applied migration
func (mg *Migrator) Down() error {
	return mg.run("down", mg.m.Down)
}

// Steps moves n migrations forward, or back when n is negative
func (mg *Migrator) Steps(n int) error {
	return mg.run(fmt.Sprintf("step %+d", n), func() error { return mg.m.Steps(n) })
}

// run executes one migrate operation. Having nothing to do is not an error.
func (mg *Migrator) run(op string, fn func() error) error {
	mg.log.Info("Migrating", zap.String("op", op))

	switch err := fn(); {
	case errors.Is(err, migrate.ErrNoChange):
		mg.log.Info("Schema already current", zap.String("op", op))
		return nil
	case err != nil:
		return fmt.Errorf("migrate %s: %w", op, err)
	}

	version, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	mg.log.Info("Migrated", zap.String("op", op), zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// Version reports the applied version, or 0 on a fresh database
func (mg *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}

// Force records version as applied without running anything. Use it to clear
// the dirty flag after fixing a half-applied migration by hand.
func (mg *Migrator) Force(version int) error {
	mg.log.Warn("Forcing schema version", zap.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Close releases the source and the database driver
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}
