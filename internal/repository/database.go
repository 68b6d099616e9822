package repository

import (
	"embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// NewDB opens and pings a database connection for the given driver.
func NewDB(driver, dataSourceName string, logger *zap.Logger) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres:
	case DriverSQLite:
		dir := filepath.Dir(dataSourceName)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dataSourceName = sqliteDSN(dataSourceName)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dataSourceName)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		// A single connection keeps sqlite writers from tripping over each other.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Successfully connected to the database!", zap.String("driver", driver))
	return db, nil
}

func sqliteDSN(path string) string {
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "busy_timeout(5000)")
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + params.Encode()
}

// MigrateDB runs the embedded migrations for the connection's driver.
func MigrateDB(db *sqlx.DB, logger *zap.Logger) error {
	var (
		driver database.Driver
		err    error
	)

	switch db.DriverName() {
	case DriverPostgres:
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	case DriverSQLite:
		driver, err = migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	default:
		return fmt.Errorf("no migrations for driver %q", db.DriverName())
	}
	if err != nil {
		return fmt.Errorf("couldn't get database instance for running migrations: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+db.DriverName())
	if err != nil {
		return fmt.Errorf("couldn't open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "nexum", driver)
	if err != nil {
		return fmt.Errorf("couldn't create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("couldn't run database migration: %w", err)
	}

	logger.Info("Database migration was run successfully")
	return nil
}
