package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ledgerkv/internal/script"
)

// ApplyResult holds the outcome of every script passed to apply.
type ApplyResult struct {
	Scripts []script.Snapshot `json:"scripts"`
	Passed  int               `json:"passed"`
	Failed  int               `json:"failed"`
	Total   int               `json:"total"`
}

func (r ApplyResult) String() string {
	var b strings.Builder
	for _, s := range r.Scripts {
		if s.Pass {
			fmt.Fprintf(&b, "✓ %s (%d steps)\n", s.Script, len(s.Trace))
			continue
		}
		fmt.Fprintf(&b, "✗ %s\n", s.Script)
		for _, e := range s.Errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	fmt.Fprintf(&b, "%d passed, %d failed, %d total", r.Passed, r.Failed, r.Total)
	return b.String()
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <script.yaml>...",
		Short: "Run YAML operation scripts against the ledger",
		Long: `Run one or more YAML operation scripts against the ledger.

Scripts run in the order given, against the same database, so later
scripts see the records earlier ones created. Steps that carry expect or
expect_error are checked; unmet expectations fail the script.

Exit codes:
  0 - All scripts passed
  1 - One or more scripts failed
  2 - Command error (unreadable script, database unavailable, etc.)

Example:
  ledgerkv apply ./scripts/escrow.yaml --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(rootOpts, args, cmd)
		},
	}
}

func runApply(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	// Every script is parsed before any step runs.
	scripts := make([]*script.Script, 0, len(paths))
	for _, path := range paths {
		s, err := script.Load(path)
		if err != nil {
			return opts.fail(cmd, fmt.Errorf("%s: %w", path, err))
		}
		scripts = append(scripts, s)
	}

	ctx := commandContext(cmd)
	svc, _, closeFn, err := opts.openLedger(ctx)
	if err != nil {
		return opts.fail(cmd, err)
	}
	defer closeFn()

	result := ApplyResult{
		Scripts: make([]script.Snapshot, 0, len(scripts)),
		Total:   len(scripts),
	}
	for _, s := range scripts {
		opts.logger.Info("applying script", "script", s.Name, "steps", len(s.Steps))
		r, err := script.Run(ctx, svc, s)
		if err != nil {
			return opts.fail(cmd, fmt.Errorf("script %s: %w", s.Name, err))
		}
		result.Scripts = append(result.Scripts, script.Snapshot{Script: s.Name, Result: r})
		if r.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if err := opts.formatter(cmd).Success(result); err != nil {
		return err
	}
	if result.Failed > 0 {
		return &ExitError{
			Code:     ExitFailure,
			Message:  fmt.Sprintf("%d script(s) failed", result.Failed),
			Reported: true,
		}
	}
	return nil
}
