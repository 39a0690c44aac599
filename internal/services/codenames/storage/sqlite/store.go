package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/mikeczech/codenames/internal/platform/storage/sqlitemigrate"
	"github.com/mikeczech/codenames/internal/services/codenames/domain/event"
	"github.com/mikeczech/codenames/internal/services/codenames/storage/integrity"
	"github.com/mikeczech/codenames/internal/services/codenames/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const dsnOptions = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=synchronous(NORMAL)&_txlock=immediate"

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis reverses toMillis for persisted millisecond timestamps.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// toNullMillis maps optional domain times to sql.NullInt64 for nullable columns.
func toNullMillis(value *time.Time) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*value), Valid: true}
}

// fromNullMillis maps nullable SQL timestamps back into optional times.
func fromNullMillis(value sql.NullInt64) *time.Time {
	if !value.Valid {
		return nil
	}
	t := fromMillis(value.Int64)
	return &t
}

// Store is a SQLite-backed event journal, projection store and word corpus.
type Store struct {
	sqlDB         *sql.DB
	keyring       *integrity.Keyring
	eventRegistry *event.Registry
}

// Option configures a Store.
type Option func(*Store)

// WithKeyring signs appended chain hashes with keyring.
func WithKeyring(keyring *integrity.Keyring) Option {
	return func(s *Store) {
		s.keyring = keyring
	}
}

// Open opens the SQLite database at path and applies the embedded migrations.
// Every appended event is validated against registry.
func Open(ctx context.Context, path string, registry *event.Registry, opts ...Option) (*Store, error) {
	if registry == nil {
		return nil, fmt.Errorf("event registry is required")
	}
	store, err := openStore(ctx, path)
	if err != nil {
		return nil, err
	}
	store.eventRegistry = registry
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

// Close closes the underlying SQLite database. It is nil-safe.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.sqlDB.PingContext(ctx)
}

func openStore(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := "file:" + filepath.Clean(path) + dsnOptions
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	for _, set := range []struct {
		fsys fs.FS
		root string
	}{
		{migrations.EventsFS, "events"},
		{migrations.ProjectionsFS, "projections"},
	} {
		if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, set.fsys, set.root); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("run %s migrations: %w", set.root, err)
		}
	}
	return &Store{sqlDB: sqlDB}, nil
}
