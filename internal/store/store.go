package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Driver names accepted by Open.
const (
	// DriverCGo is github.com/mattn/go-sqlite3.
	DriverCGo = "sqlite3"

	// DriverPure is modernc.org/sqlite, which needs no C toolchain.
	DriverPure = "sqlite"
)

// Config selects the SQLite driver and database.
type Config struct {
	// Driver is DriverCGo or DriverPure. Empty means DriverCGo.
	Driver string

	// DSN is the database path or URI. Empty means a private in-memory
	// database.
	DSN string

	// Logger receives debug records for every prepared statement.
	// Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns an in-memory database on the cgo driver.
func DefaultConfig() Config {
	return Config{Driver: DriverCGo, DSN: ":memory:"}
}

func (c Config) withDefaults() Config {
	if c.Driver == "" {
		c.Driver = DriverCGo
	}
	if c.DSN == "" {
		c.DSN = ":memory:"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Store runs compiled queries against a SQLite database.
//
// It implements Driver, so a query builder can execute through it.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open creates or opens the SQLite database described by cfg.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - a single connection, so in-memory databases persist across calls
func Open(cfg Config) (*Store, error) {
	cfg = cfg.withDefaults()
	if cfg.Driver != DriverCGo && cfg.Driver != DriverPure {
		return nil, fmt.Errorf("unknown sqlite driver %q (want %q or %q)", cfg.Driver, DriverCGo, DriverPure)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return &Store{db: db, log: cfg.Logger}, nil
}

// New wraps an already opened database, e.g. a sqlmock connection.
func New(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, log: logger}
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Exec runs a statement that returns no rows.
func (s *Store) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	s.log.Debug("exec statement", "sql", query, "args", len(args))
	return s.db.ExecContext(ctx, query, args...)
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// pragma reads the current value of a pragma.
func (s *Store) pragma(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("failed to query %s: %w", name, err)
	}
	return value, nil
}
