package script

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ledgerkv/internal/ledger"
	"github.com/roach88/ledgerkv/internal/store"
	"github.com/roach88/ledgerkv/internal/testutil"
)

func newTestLedger(t *testing.T) *ledger.Service {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc, err := ledger.New(context.Background(), st,
		ledger.WithClock(testutil.NewDeterministicClock(1000, 1000)),
		ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	return svc
}

func TestRun_Golden(t *testing.T) {
	for _, name := range []string{"escrow", "policy_claim"} {
		t.Run(name, func(t *testing.T) {
			s, err := Load(filepath.Join("testdata", "scripts", name+".yaml"))
			require.NoError(t, err)

			result, err := Run(context.Background(), newTestLedger(t), s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)

			AssertGolden(t, s.Name, result)
		})
	}
}

func TestRun_ReportsMismatches(t *testing.T) {
	s, err := Parse([]byte(`
name: mismatches
steps:
  - op: add_obligation
    args: {debtor: alice, creditor: bob, amount: 100}
    expect: {id: 7, debtor: alice, note: x}
  - op: get_policy
    args: {id: 1}
  - op: get_obligation
    args: {id: 1}
    expect_error: NOT_FOUND
  - op: create_escrow
    args: {obligation_id: 1, amount: 0}
    expect_error: NOT_FOUND
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), newTestLedger(t), s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		"steps[0] add_obligation: field id: expected 7, got 1",
		"steps[0] add_obligation: field note: not present in record",
		"steps[1] get_policy: unexpected error: NOT_FOUND: policy with id=1 was not found",
		"steps[2] get_obligation: expected NOT_FOUND, got success",
		"steps[3] create_escrow: expected NOT_FOUND, got INVALID_INPUT",
	}, result.Errors)
	assert.Len(t, result.Trace, 4)
}

func TestRun_CancelledContext(t *testing.T) {
	s, err := Parse([]byte("name: x\nsteps: [{op: get_claim, args: {id: 1}}]"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = Run(ctx, newTestLedger(t), s)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_StatePersistsBetweenSteps(t *testing.T) {
	s, err := Parse([]byte(`
name: update
steps:
  - op: add_obligation
    args: {debtor: alice, creditor: bob, amount: 100}
  - op: update_obligation
    args: {id: 1, debtor: alice, creditor: carol, amount: 75}
  - op: get_obligation
    args: {id: 1}
    expect: {id: 1, creditor: carol, amount: 75, created_at: 1000}
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), newTestLedger(t), s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, uint64(1), result.Stats.Counter)
}
