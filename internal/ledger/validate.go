package ledger

import (
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/ledgerkv/internal/record"
)

// normalize puts caller text into NFC so that visually identical names
// are stored as identical bytes.
func normalize(s string) string {
	return norm.NFC.String(s)
}

func validateObligation(o record.Obligation) error {
	if o.Debtor == "" || o.Creditor == "" || o.Amount == 0 {
		return invalidInput(record.KindObligation,
			"debtor and creditor cannot be empty and amount must be greater than 0")
	}
	return checkSize(record.Obligations, o)
}

func validateEscrow(h record.EscrowHold) error {
	if h.Amount == 0 {
		return invalidInput(record.KindEscrow, "escrow amount must be greater than 0")
	}
	return nil
}

func validatePolicy(p record.CoveragePolicy) error {
	if p.Holder == "" || p.Category == "" || p.CoverageAmount == 0 {
		return invalidInput(record.KindPolicy,
			"holder and category cannot be empty and coverage amount must be greater than 0")
	}
	return checkSize(record.Policies, p)
}

// checkSize rejects records whose encoding would exceed the table
// ceiling. Integer fields are fixed width, so the candidate's size is
// final even before its id and timestamps are assigned.
func checkSize[V any](codec record.Codec[V], v V) error {
	if err := codec.CheckSize(codec.Encode(v)); err != nil {
		return invalidInput(codec.Kind, "%v", err)
	}
	return nil
}
