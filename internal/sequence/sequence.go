// Package sequence allocates the identifiers shared by every ledger
// table.
//
// There is exactly one counter per store. It starts at 0, so the first
// identifier handed out is 1. Each allocation is a read-increment-write
// committed in its own SQLite transaction before the value is returned,
// which is what makes identifiers unique across restarts. A value that
// was drawn but never used by its caller is simply skipped; it is never
// handed out again.
package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/ledgerkv/internal/store"
)

// ErrAllocationExhausted is returned when a new identifier could not be
// durably committed. It is not safe to retry blindly: the caller cannot
// tell whether the increment landed.
var ErrAllocationExhausted = errors.New("identifier allocation failed")

// Generator hands out strictly increasing identifiers.
type Generator struct {
	cell *store.Cell
}

// New returns a generator backed by the counter cell in segment id.
// The segment must already be registered.
func New(s *store.Store, id store.SegmentID) *Generator {
	return &Generator{cell: s.Cell(id, 0)}
}

// Next persists current+1 and returns it.
func (g *Generator) Next(ctx context.Context) (uint64, error) {
	id, err := g.cell.Update(ctx, func(cur uint64) (uint64, error) {
		if cur == ^uint64(0) {
			return 0, errors.New("counter at maximum")
		}
		return cur + 1, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrAllocationExhausted, err)
	}
	return id, nil
}

// Current returns the last identifier handed out, or 0 if none has been.
func (g *Generator) Current(ctx context.Context) (uint64, error) {
	v, err := g.cell.Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("read counter: %w", err)
	}
	return v, nil
}
