package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Fresh database
// 1 - segments registry and regions key space
const currentSchemaVersion = 1

const defaultBusyTimeoutMS = 5000

// ErrSegmentMismatch is returned when a segment id is already registered
// under a different name.
var ErrSegmentMismatch = errors.New("segment mismatch")

// SegmentID names one region of the address space.
type SegmentID uint8

// Store is an open persistent address space.
type Store struct {
	db   *sql.DB
	path string
}

type options struct {
	busyTimeoutMS int
}

// Option configures Open.
type Option func(*options)

// WithBusyTimeout sets how long a statement waits on a locked database.
func WithBusyTimeout(ms int) Option {
	return func(o *options) {
		if ms > 0 {
			o.busyTimeoutMS = ms
		}
	}
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	o := options{busyTimeoutMS: defaultBusyTimeoutMS}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, and pragmas are
	// per-connection, so keep exactly one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(db, o.busyTimeoutMS); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the file the store was opened from.
func (s *Store) Path() string {
	return s.path
}

// Region returns the region for id. It performs no I/O; the same id
// always addresses the same rows.
func (s *Store) Region(id SegmentID) *Region {
	return &Region{db: s.db, id: id}
}

// RegisterSegment binds id to name. Registering an existing pair again
// is a no-op; binding an id or a name that is already taken by another
// pair returns ErrSegmentMismatch.
func (s *Store) RegisterSegment(ctx context.Context, id SegmentID, name string) error {
	if name == "" {
		return fmt.Errorf("register segment %d: empty name", id)
	}

	var existing string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM segments WHERE segment_id = ?`, int64(id),
	).Scan(&existing)
	switch {
	case err == nil:
		if existing != name {
			return fmt.Errorf("%w: segment %d is %q, not %q", ErrSegmentMismatch, id, existing, name)
		}
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("register segment %d: %w", id, err)
	}

	var taken int64
	err = s.db.QueryRowContext(ctx,
		`SELECT segment_id FROM segments WHERE name = ?`, name,
	).Scan(&taken)
	if err == nil {
		return fmt.Errorf("%w: name %q already belongs to segment %d", ErrSegmentMismatch, name, taken)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("register segment %d: %w", id, err)
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO segments (segment_id, name) VALUES (?, ?)`, int64(id), name,
	); err != nil {
		return fmt.Errorf("register segment %d: %w", id, err)
	}
	return nil
}

// Segments returns the registered id → name mapping.
func (s *Store) Segments(ctx context.Context) (map[SegmentID]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT segment_id, name FROM segments ORDER BY segment_id`)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	out := make(map[SegmentID]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		out[SegmentID(id)] = name
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}
	return out, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB, busyTimeoutMS int) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = FULL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeoutMS),
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported %d", version, currentSchemaVersion)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
