// Package store is the remote persistence behind the sync layer: one SQL
// database holding every user's requirement state, media, folders, groups
// and list settings. SQLite (modernc.org/sqlite) serves local use and tests;
// Postgres (pgx) serves shared deployments. The schema is managed by goose.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ParseDriver accepts the driver names used in config and flags.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("invalid store driver: %q (expected sqlite|postgres)", s)
	}
}

type Options struct {
	Driver Driver
	DSN    string
	Log    *zap.Logger
}

type Store struct {
	db     *sql.DB
	driver Driver
	log    *zap.Logger
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationTable = "reqtrack_migrations"

// goose keeps its dialect, base FS and logger in package globals.
var gooseMu sync.Mutex

// Open connects to the database and applies pending migrations.
func Open(ctx context.Context, opts Options) (*Store, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("store").With(zap.String("driver", string(opts.Driver)))

	dsn := strings.TrimSpace(opts.DSN)
	if dsn == "" {
		return nil, errors.New("store: empty dsn")
	}

	var (
		db  *sql.DB
		err error
	)
	switch opts.Driver {
	case DriverSQLite:
		db, err = openSQLite(ctx, dsn)
	case DriverPostgres:
		db, err = sql.Open("pgx", dsn)
		if err == nil {
			err = db.PingContext(ctx)
			if err != nil {
				_ = db.Close()
			}
		}
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", opts.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", opts.Driver, err)
	}

	s := &Store{db: db, driver: opts.Driver, log: log}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Debug("store ready")
	return s, nil
}

func openSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, err
		}
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// Pragmas are per connection, so keep exactly one.
	db.SetMaxOpenConns(1)
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func (s *Store) migrate(ctx context.Context) error {
	dialect := "sqlite3"
	if s.driver == DriverPostgres {
		dialect = "postgres"
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)
	goose.SetTableName(migrationTable)
	goose.SetLogger(gooseLogger{log: s.log.Sugar()})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("store: goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COALESCE(MAX(version_id), 0) FROM `+migrationTable+` WHERE is_applied = ?`), true).Scan(&v)
	return v, err
}

func (s *Store) Driver() Driver { return s.driver }

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) exec(ctx context.Context, q string, args ...any) error {
	_, err := s.db.ExecContext(ctx, s.rebind(q), args...)
	return err
}

// gooseLogger routes goose output through zap.
type gooseLogger struct {
	log *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Debugf(strings.TrimSpace(format), v...)
}

// Fatalf logs without exiting; goose returns the error to Open.
func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Errorf(strings.TrimSpace(format), v...)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
