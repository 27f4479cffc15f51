package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/ledgerkv/internal/ledger"
	"github.com/roach88/ledgerkv/internal/record"
)

// EscrowOptions holds flags for escrow create.
type EscrowOptions struct {
	*RootOptions
	ObligationID uint64
	Amount       uint64
}

// NewEscrowCommand creates the escrow command group.
func NewEscrowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "escrow",
		Short: "Place and look up escrow holds",
	}
	cmd.AddCommand(newEscrowCreateCommand(rootOpts))
	cmd.AddCommand(newEscrowGetCommand(rootOpts))
	cmd.AddCommand(newEscrowListCommand(rootOpts))
	return cmd
}

func newEscrowCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EscrowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Place a hold against an obligation",
		Long: `Place an escrow hold against an existing obligation.
A second hold for the same obligation replaces the first.

Example:
  ledgerkv escrow create --obligation-id 1 --amount 50`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(opts.RootOptions, cmd, func(ctx context.Context, svc *ledger.Service) (any, error) {
				h, err := svc.CreateEscrow(ctx, opts.ObligationID, opts.Amount)
				return escrowView(h), err
			})
		},
	}

	cmd.Flags().Uint64Var(&opts.ObligationID, "obligation-id", 0, "obligation to hold against (required)")
	cmd.Flags().Uint64Var(&opts.Amount, "amount", 0, "amount held, greater than 0 (required)")
	_ = cmd.MarkFlagRequired("obligation-id")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newEscrowGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <obligation-id>",
		Short:         "Show the hold on an obligation",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			return runLedger(rootOpts, cmd, func(ctx context.Context, svc *ledger.Service) (any, error) {
				h, err := svc.GetEscrow(ctx, id)
				return escrowView(h), err
			})
		},
	}
}

func newEscrowListCommand(rootOpts *RootOptions) *cobra.Command {
	r := &RangeOptions{}
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List escrow holds by obligation id",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(rootOpts, cmd, func(ctx context.Context, svc *ledger.Service) (any, error) {
				hs, err := svc.ListEscrows(ctx, r.From, r.To)
				return views(hs, func(h record.EscrowHold) escrowView { return escrowView(h) }), err
			})
		},
	}
	r.bind(cmd)
	return cmd
}
