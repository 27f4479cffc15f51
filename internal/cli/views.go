package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/ledgerkv/internal/record"
)

// The view types share their record's fields and JSON tags and add a
// one-line text rendering.

type obligationView record.Obligation

func (v obligationView) String() string {
	return fmt.Sprintf("obligation %d: %s owes %s %d (created_at=%d)",
		v.ID, v.Debtor, v.Creditor, v.Amount, v.CreatedAt)
}

type escrowView record.EscrowHold

func (v escrowView) String() string {
	return fmt.Sprintf("escrow on obligation %d: %d held (created_at=%d)",
		v.ObligationID, v.Amount, v.CreatedAt)
}

type policyView record.CoveragePolicy

func (v policyView) String() string {
	return fmt.Sprintf("policy %d: %s covers %s for %d from %d to %d",
		v.ID, v.Holder, v.Category, v.CoverageAmount, v.Start, v.End)
}

type claimView record.Claim

func (v claimView) String() string {
	return fmt.Sprintf("claim %d on policy %d: %d (claim_date=%d)",
		v.ID, v.PolicyID, v.ClaimAmount, v.ClaimDate)
}

// listView renders one record per line.
type listView[V fmt.Stringer] []V

func (l listView[V]) String() string {
	if len(l) == 0 {
		return "(none)"
	}
	lines := make([]string, len(l))
	for i, v := range l {
		lines[i] = v.String()
	}
	return strings.Join(lines, "\n")
}

func views[R any, V fmt.Stringer](rs []R, conv func(R) V) listView[V] {
	out := make(listView[V], len(rs))
	for i, r := range rs {
		out[i] = conv(r)
	}
	return out
}
