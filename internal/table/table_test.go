package table

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ledgerkv/internal/record"
	"github.com/roach88/ledgerkv/internal/store"
)

func newTestTable(t *testing.T) (*store.Store, *Table[record.Obligation]) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "table.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.RegisterSegment(context.Background(), 1, "obligations"))
	return s, New(s.Region(1), record.Obligations)
}

func TestTable_GetMissing(t *testing.T) {
	_, tbl := newTestTable(t)

	_, ok, err := tbl.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTable_PutGet(t *testing.T) {
	_, tbl := newTestTable(t)
	ctx := context.Background()
	want := record.Obligation{ID: 1, Debtor: "alice", Creditor: "bob", Amount: 100, CreatedAt: 5}

	require.NoError(t, tbl.Put(ctx, want.ID, want))

	got, ok, err := tbl.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, record.KindObligation, tbl.Kind())
}

func TestTable_PutIdempotent(t *testing.T) {
	_, tbl := newTestTable(t)
	ctx := context.Background()
	o := record.Obligation{ID: 2, Debtor: "a", Creditor: "b", Amount: 1}

	require.NoError(t, tbl.Put(ctx, 2, o))
	require.NoError(t, tbl.Put(ctx, 2, o))

	n, err := tbl.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, _, err := tbl.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, o, got)
}

func TestTable_PutTooLarge(t *testing.T) {
	_, tbl := newTestTable(t)
	ctx := context.Background()
	big := record.Obligation{ID: 1, Debtor: strings.Repeat("x", record.MaxSize), Creditor: "b", Amount: 1}

	err := tbl.Put(ctx, 1, big)
	require.ErrorIs(t, err, record.ErrRecordTooLarge)

	_, ok, err := tbl.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok, "oversized record must not be written")
}

func TestTable_GetCorrupt(t *testing.T) {
	s, tbl := newTestTable(t)
	ctx := context.Background()

	require.NoError(t, s.Region(1).Put(ctx, encodeKey(4), []byte("garbage bytes")))

	_, ok, err := tbl.Get(ctx, 4)
	require.ErrorIs(t, err, record.ErrCorruptRecord)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "obligation 4")
}

func TestTable_Range(t *testing.T) {
	_, tbl := newTestTable(t)
	ctx := context.Background()

	for _, id := range []uint64{9, 3, 300, 1} {
		require.NoError(t, tbl.Put(ctx, id, record.Obligation{ID: id, Debtor: "d", Creditor: "c", Amount: id}))
	}

	var keys []uint64
	err := tbl.Range(ctx, 2, 300, func(k uint64, o record.Obligation) error {
		assert.Equal(t, k, o.ID)
		keys = append(keys, k)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 9, 300}, keys)
}

func TestTable_RangeFullAndEmpty(t *testing.T) {
	_, tbl := newTestTable(t)
	ctx := context.Background()

	require.NoError(t, tbl.Put(ctx, ^uint64(0), record.Obligation{ID: ^uint64(0), Debtor: "d", Creditor: "c", Amount: 1}))
	require.NoError(t, tbl.Put(ctx, 0, record.Obligation{Debtor: "d", Creditor: "c", Amount: 1}))

	var n int
	require.NoError(t, tbl.Range(ctx, 0, ^uint64(0), func(uint64, record.Obligation) error {
		n++
		return nil
	}))
	assert.Equal(t, 2, n)

	n = 0
	require.NoError(t, tbl.Range(ctx, 5, 4, func(uint64, record.Obligation) error {
		n++
		return nil
	}))
	assert.Equal(t, 0, n)
}

func TestTable_TablesShareStoreNotKeys(t *testing.T) {
	s, obligations := newTestTable(t)
	ctx := context.Background()
	require.NoError(t, s.RegisterSegment(ctx, 2, "escrows"))
	escrows := New(s.Region(2), record.Escrows)

	require.NoError(t, obligations.Put(ctx, 1, record.Obligation{ID: 1, Debtor: "a", Creditor: "b", Amount: 10}))
	require.NoError(t, escrows.Put(ctx, 1, record.EscrowHold{ObligationID: 1, Amount: 5}))

	o, ok, err := obligations.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(10), o.Amount)

	e, ok, err := escrows.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(5), e.Amount)
}
