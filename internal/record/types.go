package record

import "fmt"

// Kind identifies an entity. The numeric values are written into every
// encoded record and must never be renumbered.
type Kind uint8

const (
	KindObligation Kind = iota + 1
	KindEscrow
	KindPolicy
	KindClaim
)

func (k Kind) String() string {
	switch k {
	case KindObligation:
		return "obligation"
	case KindEscrow:
		return "escrow"
	case KindPolicy:
		return "policy"
	case KindClaim:
		return "claim"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Obligation is a debt owed by Debtor to Creditor.
// Timestamps throughout this package are nanoseconds since the Unix epoch.
type Obligation struct {
	ID        uint64 `json:"id"`
	Debtor    string `json:"debtor"`
	Creditor  string `json:"creditor"`
	Amount    uint64 `json:"amount"`
	CreatedAt uint64 `json:"created_at"`
}

// EscrowHold is funds held against an obligation. It is keyed by the
// obligation's identifier, so an obligation has at most one hold.
type EscrowHold struct {
	ObligationID uint64 `json:"obligation_id"`
	Amount       uint64 `json:"amount"`
	CreatedAt    uint64 `json:"created_at"`
}

// CoveragePolicy is an insurance policy. Start and End are supplied by
// the purchaser and are not interpreted.
type CoveragePolicy struct {
	ID             uint64 `json:"id"`
	Holder         string `json:"holder"`
	Category       string `json:"category"`
	CoverageAmount uint64 `json:"coverage_amount"`
	Start          uint64 `json:"start"`
	End            uint64 `json:"end"`
}

// Claim is a payout request against a CoveragePolicy.
type Claim struct {
	ID          uint64 `json:"id"`
	PolicyID    uint64 `json:"policy_id"`
	ClaimAmount uint64 `json:"claim_amount"`
	ClaimDate   uint64 `json:"claim_date"`
}

var Obligations = Codec[Obligation]{
	Kind:    KindObligation,
	MaxSize: MaxSize,
	encode: func(e *encoder, o Obligation) {
		e.uint64(o.ID)
		e.string(o.Debtor)
		e.string(o.Creditor)
		e.uint64(o.Amount)
		e.uint64(o.CreatedAt)
	},
	decode: func(d *decoder) Obligation {
		return Obligation{
			ID:        d.uint64(),
			Debtor:    d.string(),
			Creditor:  d.string(),
			Amount:    d.uint64(),
			CreatedAt: d.uint64(),
		}
	},
}

var Escrows = Codec[EscrowHold]{
	Kind:    KindEscrow,
	MaxSize: MaxSize,
	encode: func(e *encoder, h EscrowHold) {
		e.uint64(h.ObligationID)
		e.uint64(h.Amount)
		e.uint64(h.CreatedAt)
	},
	decode: func(d *decoder) EscrowHold {
		return EscrowHold{
			ObligationID: d.uint64(),
			Amount:       d.uint64(),
			CreatedAt:    d.uint64(),
		}
	},
}

var Policies = Codec[CoveragePolicy]{
	Kind:    KindPolicy,
	MaxSize: MaxSize,
	encode: func(e *encoder, p CoveragePolicy) {
		e.uint64(p.ID)
		e.string(p.Holder)
		e.string(p.Category)
		e.uint64(p.CoverageAmount)
		e.uint64(p.Start)
		e.uint64(p.End)
	},
	decode: func(d *decoder) CoveragePolicy {
		return CoveragePolicy{
			ID:             d.uint64(),
			Holder:         d.string(),
			Category:       d.string(),
			CoverageAmount: d.uint64(),
			Start:          d.uint64(),
			End:            d.uint64(),
		}
	},
}

var Claims = Codec[Claim]{
	Kind:    KindClaim,
	MaxSize: MaxSize,
	encode: func(e *encoder, c Claim) {
		e.uint64(c.ID)
		e.uint64(c.PolicyID)
		e.uint64(c.ClaimAmount)
		e.uint64(c.ClaimDate)
	},
	decode: func(d *decoder) Claim {
		return Claim{
			ID:          d.uint64(),
			PolicyID:    d.uint64(),
			ClaimAmount: d.uint64(),
			ClaimDate:   d.uint64(),
		}
	},
}
