package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"checkout-be/internal/config"
	"checkout-be/internal/db"
	"checkout-be/internal/logger"
	"checkout-be/migrations"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	modeUp   = "up"
	modeDown = "down"
)

func main() {
	_ = godotenv.Load()

	mode := flag.String("mode", modeUp, "migration mode: up or down")
	flag.Parse()

	logger.Init(os.Getenv("APP_ENV"))
	defer logger.Sync()
	log := logger.L().With(zap.String("cmd", "migrate"), zap.String("mode", *mode))

	conn, err := open()
	if err != nil {
		log.Fatal("failed to connect db", zap.Error(err))
	}
	defer conn.Close()

	if err := run(conn, *mode, migrations.FS); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	log.Info("migrations complete")
}

// open prefers DB_URL and falls back to the DB_* settings the server uses.
func open() (*sql.DB, error) {
	if dbURL := os.Getenv("DB_URL"); dbURL != "" {
		return sql.Open("postgres", dbURL)
	}
	return db.NewDatabase(config.LoadConfig())
}

// run applies every pending migration (up) or rolls back the latest one (down).
func run(conn *sql.DB, mode string, source fs.FS) error {
	if mode != modeUp && mode != modeDown {
		return fmt.Errorf("unknown mode: %s (use 'up' or 'down')", mode)
	}

	m, err := newMigrator(conn, source)
	if err != nil {
		return err
	}

	if mode == modeUp {
		err = m.Up()
	} else {
		err = m.Steps(-1)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", mode, err)
	}

	version, dirty, verr := m.Version()
	switch {
	case errors.Is(verr, migrate.ErrNilVersion):
		logger.L().Info("schema is empty")
	case verr != nil:
		return fmt.Errorf("read schema version: %w", verr)
	default:
		logger.L().Info("schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}
	return nil
}

func newMigrator(conn *sql.DB, source fs.FS) (*migrate.Migrate, error) {
	src, err := iofs.New(source, ".")
	if err != nil {
		return nil, fmt.Errorf("could not open migration source: %w", err)
	}

	driver, err := postgres.WithInstance(conn, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}
