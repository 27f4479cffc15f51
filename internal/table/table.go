// Package table layers typed records over a store region.
//
// A Table maps uint64 keys to values of one record kind. Keys are
// written big-endian so the region's byte order is numeric order.
package table

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/roach88/ledgerkv/internal/record"
	"github.com/roach88/ledgerkv/internal/store"
)

// Table is an ordered uint64 → V map backed by one region.
type Table[V any] struct {
	region *store.Region
	codec  record.Codec[V]
}

// New returns a table storing codec-encoded values in region.
func New[V any](region *store.Region, codec record.Codec[V]) *Table[V] {
	return &Table[V]{region: region, codec: codec}
}

// Kind returns the record kind stored in the table.
func (t *Table[V]) Kind() record.Kind {
	return t.codec.Kind
}

// Get looks up key. Absence is ok=false, not an error.
func (t *Table[V]) Get(ctx context.Context, key uint64) (v V, ok bool, err error) {
	raw, ok, err := t.region.Get(ctx, encodeKey(key))
	if err != nil || !ok {
		return v, false, err
	}
	v, err = t.codec.Decode(raw)
	if err != nil {
		return v, false, fmt.Errorf("%s %d: %w", t.codec.Kind, key, err)
	}
	return v, true, nil
}

// Put inserts or replaces the value under key. Values whose encoding is
// above the codec ceiling are rejected with record.ErrRecordTooLarge and
// nothing is written.
func (t *Table[V]) Put(ctx context.Context, key uint64, v V) error {
	b := t.codec.Encode(v)
	if err := t.codec.CheckSize(b); err != nil {
		return fmt.Errorf("put %s %d: %w", t.codec.Kind, key, err)
	}
	return t.region.Put(ctx, encodeKey(key), b)
}

// Range calls fn for every key in [from, to] in ascending order.
func (t *Table[V]) Range(ctx context.Context, from, to uint64, fn func(key uint64, v V) error) error {
	if from > to {
		return nil
	}
	var end []byte
	if to != ^uint64(0) {
		end = encodeKey(to + 1)
	}
	return t.region.Range(ctx, encodeKey(from), end, func(k, raw []byte) error {
		key := binary.BigEndian.Uint64(k)
		v, err := t.codec.Decode(raw)
		if err != nil {
			return fmt.Errorf("%s %d: %w", t.codec.Kind, key, err)
		}
		return fn(key, v)
	})
}

// Len returns the number of records in the table.
func (t *Table[V]) Len(ctx context.Context) (int, error) {
	return t.region.Len(ctx)
}

func encodeKey(k uint64) []byte {
	return binary.BigEndian.AppendUint64(make([]byte, 0, 8), k)
}
