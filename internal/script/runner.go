package script

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/roach88/ledgerkv/internal/ledger"
	"github.com/roach88/ledgerkv/internal/record"
)

// Ledger is the set of operations a script can drive.
// *ledger.Service implements it.
type Ledger interface {
	AddObligation(ctx context.Context, debtor, creditor string, amount uint64) (record.Obligation, error)
	UpdateObligation(ctx context.Context, id uint64, debtor, creditor string, amount uint64) (record.Obligation, error)
	GetObligation(ctx context.Context, id uint64) (record.Obligation, error)
	CreateEscrow(ctx context.Context, obligationID, amount uint64) (record.EscrowHold, error)
	GetEscrow(ctx context.Context, obligationID uint64) (record.EscrowHold, error)
	PurchasePolicy(ctx context.Context, holder, category string, coverage, start, end uint64) (record.CoveragePolicy, error)
	GetPolicy(ctx context.Context, id uint64) (record.CoveragePolicy, error)
	SubmitClaim(ctx context.Context, policyID, claimAmount uint64) (record.Claim, error)
	GetClaim(ctx context.Context, id uint64) (record.Claim, error)
	Stats(ctx context.Context) (ledger.Stats, error)
}

// TraceEvent is the outcome of one step.
type TraceEvent struct {
	Seq     int         `json:"seq"`
	Op      string      `json:"op"`
	Args    Args        `json:"args"`
	Record  any         `json:"record,omitempty"`
	Error   ledger.Code `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Result is the outcome of a script run.
type Result struct {
	// Pass is true if every step met its expectation.
	Pass bool `json:"pass"`

	// Trace holds one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors describes each unmet expectation.
	Errors []string `json:"errors,omitempty"`

	// Stats is the ledger summary after the last step.
	Stats ledger.Stats `json:"stats"`
}

func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Run executes every step of s against l. Ledger errors are recorded in
// the trace and checked against expectations; Run itself fails only
// when the run cannot continue, such as on context cancellation.
func Run(ctx context.Context, l Ledger, s *Script) (*Result, error) {
	result := &Result{Pass: true, Trace: []TraceEvent{}}

	for i, step := range s.Steps {
		v, err := invoke(ctx, l, step)
		if err != nil && ledger.CodeOf(err) == "" {
			return nil, fmt.Errorf("steps[%d] %s: %w", i, step.Op, err)
		}

		event := TraceEvent{Seq: i + 1, Op: step.Op, Args: step.Args}
		if err != nil {
			event.Error = ledger.CodeOf(err)
			event.Message = err.Error()
		} else {
			event.Record = v
		}
		result.Trace = append(result.Trace, event)

		check(result, i, step, event)
	}

	stats, err := l.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("read stats: %w", err)
	}
	result.Stats = stats
	return result, nil
}

func invoke(ctx context.Context, l Ledger, step Step) (any, error) {
	a := step.Args
	switch step.Op {
	case OpAddObligation:
		return l.AddObligation(ctx, a.Debtor, a.Creditor, a.Amount)
	case OpUpdateObligation:
		return l.UpdateObligation(ctx, a.ID, a.Debtor, a.Creditor, a.Amount)
	case OpGetObligation:
		return l.GetObligation(ctx, a.ID)
	case OpCreateEscrow:
		return l.CreateEscrow(ctx, a.ObligationID, a.Amount)
	case OpGetEscrow:
		return l.GetEscrow(ctx, a.ObligationID)
	case OpPurchasePolicy:
		return l.PurchasePolicy(ctx, a.Holder, a.Category, a.CoverageAmount, a.Start, a.End)
	case OpGetPolicy:
		return l.GetPolicy(ctx, a.ID)
	case OpSubmitClaim:
		return l.SubmitClaim(ctx, a.PolicyID, a.ClaimAmount)
	case OpGetClaim:
		return l.GetClaim(ctx, a.ID)
	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

func check(result *Result, i int, step Step, event TraceEvent) {
	switch {
	case step.ExpectError != "":
		if event.Error != step.ExpectError {
			got := "success"
			if event.Error != "" {
				got = string(event.Error)
			}
			result.addError("steps[%d] %s: expected %s, got %s", i, step.Op, step.ExpectError, got)
		}
	case event.Error != "":
		result.addError("steps[%d] %s: unexpected error: %s", i, step.Op, event.Message)
	case step.Expect != nil:
		for _, msg := range matchFields(step.Expect, event.Record) {
			result.addError("steps[%d] %s: %s", i, step.Op, msg)
		}
	}
}

// matchFields compares expected against the JSON form of rec. Values
// are compared by their JSON encoding so that YAML ints and record
// uint64s agree.
func matchFields(expected map[string]any, rec any) []string {
	raw, err := json.Marshal(rec)
	if err != nil {
		return []string{fmt.Sprintf("marshal record: %v", err)}
	}
	var actual map[string]json.RawMessage
	if err := json.Unmarshal(raw, &actual); err != nil {
		return []string{fmt.Sprintf("unmarshal record: %v", err)}
	}

	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var msgs []string
	for _, k := range keys {
		want, err := json.Marshal(expected[k])
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("field %s: %v", k, err))
			continue
		}
		got, ok := actual[k]
		if !ok {
			msgs = append(msgs, fmt.Sprintf("field %s: not present in record", k))
			continue
		}
		if !bytes.Equal(want, got) {
			msgs = append(msgs, fmt.Sprintf("field %s: expected %s, got %s", k, want, got))
		}
	}
	return msgs
}
