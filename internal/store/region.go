package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Region is one segment of the address space: an ordered map from byte
// keys to byte values.
type Region struct {
	db *sql.DB
	id SegmentID
}

// ID returns the segment this region addresses.
func (r *Region) ID() SegmentID {
	return r.id
}

// Get returns the value stored under key. A missing key is reported as
// ok=false with a nil error.
func (r *Region) Get(ctx context.Context, key []byte) (value []byte, ok bool, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT value FROM regions WHERE segment_id = ? AND key = ?`,
		int64(r.id), key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("region %d: get: %w", r.id, err)
	}
	return value, true, nil
}

// Put stores value under key, replacing any previous value.
func (r *Region) Put(ctx context.Context, key, value []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("region %d: put: empty key", r.id)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO regions (segment_id, key, value)
		VALUES (?, ?, ?)
		ON CONFLICT(segment_id, key) DO UPDATE SET value = excluded.value
	`, int64(r.id), key, value)
	if err != nil {
		return fmt.Errorf("region %d: put: %w", r.id, err)
	}
	return nil
}

// Range calls fn for each key in [from, to) in ascending key order. A
// nil bound is open. Returning an error from fn stops the scan and is
// returned unwrapped.
func (r *Region) Range(ctx context.Context, from, to []byte, fn func(key, value []byte) error) error {
	var b strings.Builder
	b.WriteString(`SELECT key, value FROM regions WHERE segment_id = ?`)
	args := []any{int64(r.id)}
	if from != nil {
		b.WriteString(` AND key >= ?`)
		args = append(args, from)
	}
	if to != nil {
		b.WriteString(` AND key < ?`)
		args = append(args, to)
	}
	b.WriteString(` ORDER BY key ASC`)

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return fmt.Errorf("region %d: range: %w", r.id, err)
	}

	// Drain rows before calling fn. The pool has a single connection,
	// so fn could not query while rows is still open.
	type entry struct{ key, value []byte }
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.key, &e.value); err != nil {
			rows.Close()
			return fmt.Errorf("region %d: range scan: %w", r.id, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("region %d: range iterate: %w", r.id, err)
	}
	rows.Close()

	for _, e := range entries {
		if err := fn(e.key, e.value); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of keys in the region.
func (r *Region) Len(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM regions WHERE segment_id = ?`, int64(r.id),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("region %d: count: %w", r.id, err)
	}
	return n, nil
}
