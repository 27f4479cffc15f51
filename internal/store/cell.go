package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
)

// cellKey is the only key a Cell ever writes in its region.
var cellKey = make([]byte, 8)

// Cell is a single persisted uint64 stored at key 0 of a region.
type Cell struct {
	db   *sql.DB
	id   SegmentID
	init uint64
}

// Cell returns the cell in segment id. Until the first write it reads as init.
func (s *Store) Cell(id SegmentID, init uint64) *Cell {
	return &Cell{db: s.db, id: id, init: init}
}

// Get returns the current value.
func (c *Cell) Get(ctx context.Context) (uint64, error) {
	return c.read(ctx, c.db)
}

// Set overwrites the value.
func (c *Cell) Set(ctx context.Context, v uint64) error {
	return c.write(ctx, c.db, v)
}

// Update applies fn to the current value and persists the result in one
// transaction. If fn returns an error nothing is written.
func (c *Cell) Update(ctx context.Context, fn func(uint64) (uint64, error)) (uint64, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("cell %d: begin tx: %w", c.id, err)
	}
	defer tx.Rollback() // No-op if committed

	cur, err := c.read(ctx, tx)
	if err != nil {
		return 0, err
	}
	next, err := fn(cur)
	if err != nil {
		return 0, err
	}
	if err := c.write(ctx, tx, next); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("cell %d: commit: %w", c.id, err)
	}
	return next, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (c *Cell) read(ctx context.Context, q querier) (uint64, error) {
	var raw []byte
	err := q.QueryRowContext(ctx,
		`SELECT value FROM regions WHERE segment_id = ? AND key = ?`,
		int64(c.id), cellKey,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return c.init, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cell %d: read: %w", c.id, err)
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("cell %d: value is %d bytes, want 8", c.id, len(raw))
	}
	return binary.BigEndian.Uint64(raw), nil
}

func (c *Cell) write(ctx context.Context, q querier, v uint64) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO regions (segment_id, key, value)
		VALUES (?, ?, ?)
		ON CONFLICT(segment_id, key) DO UPDATE SET value = excluded.value
	`, int64(c.id), cellKey, binary.BigEndian.AppendUint64(nil, v))
	if err != nil {
		return fmt.Errorf("cell %d: write: %w", c.id, err)
	}
	return nil
}
