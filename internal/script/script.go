package script

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ledgerkv/internal/ledger"
)

// Operation names accepted in Step.Op.
const (
	OpAddObligation    = "add_obligation"
	OpUpdateObligation = "update_obligation"
	OpGetObligation    = "get_obligation"
	OpCreateEscrow     = "create_escrow"
	OpGetEscrow        = "get_escrow"
	OpPurchasePolicy   = "purchase_policy"
	OpGetPolicy        = "get_policy"
	OpSubmitClaim      = "submit_claim"
	OpGetClaim         = "get_claim"
)

var knownOps = map[string]bool{
	OpAddObligation:    true,
	OpUpdateObligation: true,
	OpGetObligation:    true,
	OpCreateEscrow:     true,
	OpGetEscrow:        true,
	OpPurchasePolicy:   true,
	OpGetPolicy:        true,
	OpSubmitClaim:      true,
	OpGetClaim:         true,
}

// Script is a named sequence of ledger operations.
type Script struct {
	// Name identifies the script and names its golden file.
	Name string `yaml:"name"`

	// Description is free text.
	Description string `yaml:"description,omitempty"`

	// Steps run in order against one ledger.
	Steps []Step `yaml:"steps"`
}

// Step invokes one operation.
type Step struct {
	// Op is one of the Op* constants.
	Op string `yaml:"op"`

	// Args holds the operation arguments. Fields an operation does not
	// take are ignored.
	Args Args `yaml:"args"`

	// Expect lists fields the returned record must carry.
	// If nil, any successful result passes.
	Expect map[string]any `yaml:"expect,omitempty"`

	// ExpectError is the error code the step must fail with.
	ExpectError ledger.Code `yaml:"expect_error,omitempty"`
}

// Args is the union of every operation's arguments.
type Args struct {
	ID             uint64 `yaml:"id,omitempty" json:"id,omitempty"`
	ObligationID   uint64 `yaml:"obligation_id,omitempty" json:"obligation_id,omitempty"`
	PolicyID       uint64 `yaml:"policy_id,omitempty" json:"policy_id,omitempty"`
	Debtor         string `yaml:"debtor,omitempty" json:"debtor,omitempty"`
	Creditor       string `yaml:"creditor,omitempty" json:"creditor,omitempty"`
	Amount         uint64 `yaml:"amount,omitempty" json:"amount,omitempty"`
	Holder         string `yaml:"holder,omitempty" json:"holder,omitempty"`
	Category       string `yaml:"category,omitempty" json:"category,omitempty"`
	CoverageAmount uint64 `yaml:"coverage_amount,omitempty" json:"coverage_amount,omitempty"`
	Start          uint64 `yaml:"start,omitempty" json:"start,omitempty"`
	End            uint64 `yaml:"end,omitempty" json:"end,omitempty"`
	ClaimAmount    uint64 `yaml:"claim_amount,omitempty" json:"claim_amount,omitempty"`
}

// Load reads and validates the script at path.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a script. Unknown fields are rejected so that typos
// such as "expect_eror" fail loudly.
func Parse(data []byte) (*Script, error) {
	var s Script
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validate(&s); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return &s, nil
}

func validate(s *Script) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Op == "" {
			return fmt.Errorf("steps[%d]: op is required", i)
		}
		if !knownOps[step.Op] {
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
		if step.Expect != nil && step.ExpectError != "" {
			return fmt.Errorf("steps[%d]: expect and expect_error are mutually exclusive", i)
		}
		switch step.ExpectError {
		case "", ledger.CodeNotFound, ledger.CodeInvalidInput, ledger.CodeInternal:
		default:
			return fmt.Errorf("steps[%d]: unknown error code %q", i, step.ExpectError)
		}
	}
	return nil
}
