package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/ledgerkv/internal/record"
	"github.com/roach88/ledgerkv/internal/sequence"
	"github.com/roach88/ledgerkv/internal/store"
	"github.com/roach88/ledgerkv/internal/table"
)

// Segment assignments. Part of the persisted format.
const (
	SegmentCounter     store.SegmentID = 0
	SegmentObligations store.SegmentID = 1
	SegmentEscrows     store.SegmentID = 2
	SegmentPolicies    store.SegmentID = 3
	SegmentClaims      store.SegmentID = 4
)

var segmentNames = []struct {
	id   store.SegmentID
	name string
}{
	{SegmentCounter, "id_counter"},
	{SegmentObligations, "obligations"},
	{SegmentEscrows, "escrows"},
	{SegmentPolicies, "policies"},
	{SegmentClaims, "claims"},
}

// Service performs ledger operations against one store.
type Service struct {
	mu sync.Mutex

	ids         *sequence.Generator
	obligations *table.Table[record.Obligation]
	escrows     *table.Table[record.EscrowHold]
	policies    *table.Table[record.CoveragePolicy]
	claims      *table.Table[record.Claim]

	clock  Clock
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for creation timestamps.
func WithClock(c Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// New registers the ledger segments in st and returns a Service over
// them. It fails if st was created with a different segment layout.
func New(ctx context.Context, st *store.Store, opts ...Option) (*Service, error) {
	for _, seg := range segmentNames {
		if err := st.RegisterSegment(ctx, seg.id, seg.name); err != nil {
			return nil, fmt.Errorf("ledger: %w", err)
		}
	}

	s := &Service{
		ids:         sequence.New(st, SegmentCounter),
		obligations: table.New(st.Region(SegmentObligations), record.Obligations),
		escrows:     table.New(st.Region(SegmentEscrows), record.Escrows),
		policies:    table.New(st.Region(SegmentPolicies), record.Policies),
		claims:      table.New(st.Region(SegmentClaims), record.Claims),
		clock:       NewSystemClock(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// begin starts an operation. The returned context carries ctx's values
// but not its cancellation.
func (s *Service) begin(ctx context.Context) (context.Context, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return context.WithoutCancel(ctx), nil
}

func (s *Service) end() {
	s.mu.Unlock()
}

func (s *Service) fail(ctx context.Context, kind record.Kind, op string, err error) *Error {
	s.logger.ErrorContext(ctx, "ledger operation failed", "op", op, "kind", kind.String(), "error", err)
	return internal(kind, op, err)
}

// AddObligation records a new obligation.
func (s *Service) AddObligation(ctx context.Context, debtor, creditor string, amount uint64) (record.Obligation, error) {
	ctx, err := s.begin(ctx)
	if err != nil {
		return record.Obligation{}, err
	}
	defer s.end()

	o := record.Obligation{
		Debtor:   normalize(debtor),
		Creditor: normalize(creditor),
		Amount:   amount,
	}
	if err := validateObligation(o); err != nil {
		return record.Obligation{}, err
	}

	id, err := s.ids.Next(ctx)
	if err != nil {
		return record.Obligation{}, s.fail(ctx, record.KindObligation, "allocate identifier", err)
	}
	o.ID = id
	o.CreatedAt = s.clock.Now()

	if err := s.obligations.Put(ctx, o.ID, o); err != nil {
		return record.Obligation{}, s.fail(ctx, record.KindObligation, "insert obligation", err)
	}

	s.logger.InfoContext(ctx, "obligation created", "id", o.ID, "amount", o.Amount)
	return o, nil
}

// UpdateObligation replaces the debtor, creditor and amount of an
// existing obligation. The identifier and creation time are kept.
func (s *Service) UpdateObligation(ctx context.Context, id uint64, debtor, creditor string, amount uint64) (record.Obligation, error) {
	ctx, err := s.begin(ctx)
	if err != nil {
		return record.Obligation{}, err
	}
	defer s.end()

	o, ok, err := s.obligations.Get(ctx, id)
	if err != nil {
		return record.Obligation{}, s.fail(ctx, record.KindObligation, "read obligation", err)
	}
	if !ok {
		return record.Obligation{}, notFound(record.KindObligation, id,
			"couldn't update obligation with id=%d: obligation not found", id)
	}

	o.Debtor = normalize(debtor)
	o.Creditor = normalize(creditor)
	o.Amount = amount
	if err := validateObligation(o); err != nil {
		return record.Obligation{}, err
	}

	if err := s.obligations.Put(ctx, o.ID, o); err != nil {
		return record.Obligation{}, s.fail(ctx, record.KindObligation, "update obligation", err)
	}

	s.logger.InfoContext(ctx, "obligation updated", "id", o.ID, "amount", o.Amount)
	return o, nil
}

// CreateEscrow places a hold against an existing obligation. A second
// hold for the same obligation replaces the first.
func (s *Service) CreateEscrow(ctx context.Context, obligationID, amount uint64) (record.EscrowHold, error) {
	ctx, err := s.begin(ctx)
	if err != nil {
		return record.EscrowHold{}, err
	}
	defer s.end()

	h := record.EscrowHold{ObligationID: obligationID, Amount: amount}
	if err := validateEscrow(h); err != nil {
		return record.EscrowHold{}, err
	}

	if _, ok, err := s.obligations.Get(ctx, obligationID); err != nil {
		return record.EscrowHold{}, s.fail(ctx, record.KindEscrow, "read obligation", err)
	} else if !ok {
		return record.EscrowHold{}, notFound(record.KindObligation, obligationID,
			"couldn't create escrow for obligation_id=%d: obligation not found", obligationID)
	}

	// The drawn identifier is discarded; holds are keyed by obligation.
	if _, err := s.ids.Next(ctx); err != nil {
		return record.EscrowHold{}, s.fail(ctx, record.KindEscrow, "allocate identifier", err)
	}
	h.CreatedAt = s.clock.Now()

	prev, replaced, err := s.escrows.Get(ctx, obligationID)
	if err != nil {
		return record.EscrowHold{}, s.fail(ctx, record.KindEscrow, "read escrow", err)
	}
	if err := s.escrows.Put(ctx, obligationID, h); err != nil {
		return record.EscrowHold{}, s.fail(ctx, record.KindEscrow, "insert escrow", err)
	}

	if replaced {
		s.logger.WarnContext(ctx, "escrow replaced",
			"obligation_id", obligationID, "previous_amount", prev.Amount, "amount", h.Amount)
	} else {
		s.logger.InfoContext(ctx, "escrow created", "obligation_id", obligationID, "amount", h.Amount)
	}
	return h, nil
}

// PurchasePolicy records a new coverage policy.
func (s *Service) PurchasePolicy(ctx context.Context, holder, category string, coverage, start, end uint64) (record.CoveragePolicy, error) {
	ctx, err := s.begin(ctx)
	if err != nil {
		return record.CoveragePolicy{}, err
	}
	defer s.end()

	p := record.CoveragePolicy{
		Holder:         normalize(holder),
		Category:       normalize(category),
		CoverageAmount: coverage,
		Start:          start,
		End:            end,
	}
	if err := validatePolicy(p); err != nil {
		return record.CoveragePolicy{}, err
	}

	id, err := s.ids.Next(ctx)
	if err != nil {
		return record.CoveragePolicy{}, s.fail(ctx, record.KindPolicy, "allocate identifier", err)
	}
	p.ID = id

	if err := s.policies.Put(ctx, p.ID, p); err != nil {
		return record.CoveragePolicy{}, s.fail(ctx, record.KindPolicy, "insert policy", err)
	}

	s.logger.InfoContext(ctx, "policy purchased", "id", p.ID, "coverage_amount", p.CoverageAmount)
	return p, nil
}

// SubmitClaim files a claim against an existing policy. The claim gets
// its own identifier.
func (s *Service) SubmitClaim(ctx context.Context, policyID, claimAmount uint64) (record.Claim, error) {
	ctx, err := s.begin(ctx)
	if err != nil {
		return record.Claim{}, err
	}
	defer s.end()

	if _, ok, err := s.policies.Get(ctx, policyID); err != nil {
		return record.Claim{}, s.fail(ctx, record.KindClaim, "read policy", err)
	} else if !ok {
		return record.Claim{}, notFound(record.KindPolicy, policyID,
			"couldn't submit a claim for policy with id=%d: policy not found", policyID)
	}

	id, err := s.ids.Next(ctx)
	if err != nil {
		return record.Claim{}, s.fail(ctx, record.KindClaim, "allocate identifier", err)
	}
	c := record.Claim{
		ID:          id,
		PolicyID:    policyID,
		ClaimAmount: claimAmount,
		ClaimDate:   s.clock.Now(),
	}

	if err := s.claims.Put(ctx, c.ID, c); err != nil {
		return record.Claim{}, s.fail(ctx, record.KindClaim, "insert claim", err)
	}

	s.logger.InfoContext(ctx, "claim submitted", "id", c.ID, "policy_id", policyID, "claim_amount", claimAmount)
	return c, nil
}

// GetObligation returns the obligation with the given id.
func (s *Service) GetObligation(ctx context.Context, id uint64) (record.Obligation, error) {
	return get(ctx, s, s.obligations, id, "obligation with id=%d was not found")
}

// GetEscrow returns the hold placed against the given obligation.
func (s *Service) GetEscrow(ctx context.Context, obligationID uint64) (record.EscrowHold, error) {
	return get(ctx, s, s.escrows, obligationID, "escrow for obligation_id=%d was not found")
}

// GetPolicy returns the policy with the given id.
func (s *Service) GetPolicy(ctx context.Context, id uint64) (record.CoveragePolicy, error) {
	return get(ctx, s, s.policies, id, "policy with id=%d was not found")
}

// GetClaim returns the claim with the given id.
func (s *Service) GetClaim(ctx context.Context, id uint64) (record.Claim, error) {
	return get(ctx, s, s.claims, id, "claim with id=%d was not found")
}

func get[V any](ctx context.Context, s *Service, t *table.Table[V], id uint64, missing string) (V, error) {
	var zero V
	ctx, err := s.begin(ctx)
	if err != nil {
		return zero, err
	}
	defer s.end()

	v, ok, err := t.Get(ctx, id)
	if err != nil {
		return zero, s.fail(ctx, t.Kind(), "read "+t.Kind().String(), err)
	}
	if !ok {
		s.logger.DebugContext(ctx, "lookup missed", "kind", t.Kind().String(), "id", id)
		return zero, notFound(t.Kind(), id, missing, id)
	}
	return v, nil
}

// Stats summarizes the store contents.
type Stats struct {
	Counter     uint64 `json:"counter"`
	Obligations int    `json:"obligations"`
	Escrows     int    `json:"escrows"`
	Policies    int    `json:"policies"`
	Claims      int    `json:"claims"`
}

// Stats returns the counter value and the number of records per table.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	ctx, err := s.begin(ctx)
	if err != nil {
		return Stats{}, err
	}
	defer s.end()

	var st Stats
	if st.Counter, err = s.ids.Current(ctx); err != nil {
		return Stats{}, s.fail(ctx, 0, "read counter", err)
	}
	counts := []struct {
		n   *int
		len func(context.Context) (int, error)
	}{
		{&st.Obligations, s.obligations.Len},
		{&st.Escrows, s.escrows.Len},
		{&st.Policies, s.policies.Len},
		{&st.Claims, s.claims.Len},
	}
	for _, c := range counts {
		if *c.n, err = c.len(ctx); err != nil {
			return Stats{}, s.fail(ctx, 0, "count records", err)
		}
	}
	return st, nil
}

// ListObligations returns the obligations with ids in [from, to], in id
// order.
func (s *Service) ListObligations(ctx context.Context, from, to uint64) ([]record.Obligation, error) {
	return list(ctx, s, s.obligations, from, to)
}

// ListEscrows returns the holds whose obligation ids are in [from, to].
func (s *Service) ListEscrows(ctx context.Context, from, to uint64) ([]record.EscrowHold, error) {
	return list(ctx, s, s.escrows, from, to)
}

// ListPolicies returns the policies with ids in [from, to].
func (s *Service) ListPolicies(ctx context.Context, from, to uint64) ([]record.CoveragePolicy, error) {
	return list(ctx, s, s.policies, from, to)
}

// ListClaims returns the claims with ids in [from, to].
func (s *Service) ListClaims(ctx context.Context, from, to uint64) ([]record.Claim, error) {
	return list(ctx, s, s.claims, from, to)
}

func list[V any](ctx context.Context, s *Service, t *table.Table[V], from, to uint64) ([]V, error) {
	ctx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.end()

	out := []V{}
	err = t.Range(ctx, from, to, func(_ uint64, v V) error {
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, t.Kind(), "list "+t.Kind().String(), err)
	}
	return out, nil
}
