package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/ledgerkv/internal/ledger"
	"github.com/roach88/ledgerkv/internal/record"
)

// ClaimOptions holds flags for claim submit.
type ClaimOptions struct {
	*RootOptions
	PolicyID uint64
	Amount   uint64
}

// NewClaimCommand creates the claim command group.
func NewClaimCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claim",
		Short: "Submit and look up claims",
	}
	cmd.AddCommand(newClaimSubmitCommand(rootOpts))
	cmd.AddCommand(newClaimGetCommand(rootOpts))
	cmd.AddCommand(newClaimListCommand(rootOpts))
	return cmd
}

func newClaimSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClaimOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "File a claim against a policy",
		Long: `File a claim against an existing policy. The claim gets its own id.

Example:
  ledgerkv claim submit --policy-id 2 --amount 300`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(opts.RootOptions, cmd, func(ctx context.Context, svc *ledger.Service) (any, error) {
				c, err := svc.SubmitClaim(ctx, opts.PolicyID, opts.Amount)
				return claimView(c), err
			})
		},
	}

	cmd.Flags().Uint64Var(&opts.PolicyID, "policy-id", 0, "policy to claim against (required)")
	cmd.Flags().Uint64Var(&opts.Amount, "amount", 0, "claimed amount")
	_ = cmd.MarkFlagRequired("policy-id")

	return cmd
}

func newClaimGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <id>",
		Short:         "Show one claim",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			return runLedger(rootOpts, cmd, func(ctx context.Context, svc *ledger.Service) (any, error) {
				c, err := svc.GetClaim(ctx, id)
				return claimView(c), err
			})
		},
	}
}

func newClaimListCommand(rootOpts *RootOptions) *cobra.Command {
	r := &RangeOptions{}
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List claims by id",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(rootOpts, cmd, func(ctx context.Context, svc *ledger.Service) (any, error) {
				cs, err := svc.ListClaims(ctx, r.From, r.To)
				return views(cs, func(c record.Claim) claimView { return claimView(c) }), err
			})
		},
	}
	r.bind(cmd)
	return cmd
}
