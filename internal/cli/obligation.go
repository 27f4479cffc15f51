package cli

import (
	"context"
	"math"

	"github.com/spf13/cobra"

	"github.com/roach88/ledgerkv/internal/ledger"
	"github.com/roach88/ledgerkv/internal/record"
)

// ObligationOptions holds flags for the obligation subcommands.
type ObligationOptions struct {
	*RootOptions
	Debtor   string
	Creditor string
	Amount   uint64
}

// RangeOptions holds the bounds of a list subcommand.
type RangeOptions struct {
	From uint64
	To   uint64
}

func (r *RangeOptions) bind(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&r.From, "from", 0, "lowest id to list")
	cmd.Flags().Uint64Var(&r.To, "to", math.MaxUint64, "highest id to list")
}

// NewObligationCommand creates the obligation command group.
func NewObligationCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "obligation",
		Short: "Record and look up obligations",
	}
	cmd.AddCommand(newObligationAddCommand(rootOpts))
	cmd.AddCommand(newObligationUpdateCommand(rootOpts))
	cmd.AddCommand(newObligationGetCommand(rootOpts))
	cmd.AddCommand(newObligationListCommand(rootOpts))
	return cmd
}

func (o *ObligationOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Debtor, "debtor", "", "party that owes (required)")
	cmd.Flags().StringVar(&o.Creditor, "creditor", "", "party that is owed (required)")
	cmd.Flags().Uint64Var(&o.Amount, "amount", 0, "amount owed, greater than 0 (required)")
	_ = cmd.MarkFlagRequired("debtor")
	_ = cmd.MarkFlagRequired("creditor")
	_ = cmd.MarkFlagRequired("amount")
}

func newObligationAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ObligationOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new obligation",
		Long: `Record a new obligation and print it with its assigned id.

Example:
  ledgerkv obligation add --debtor alice --creditor bob --amount 100`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(opts.RootOptions, cmd, func(ctx context.Context, svc *ledger.Service) (any, error) {
				o, err := svc.AddObligation(ctx, opts.Debtor, opts.Creditor, opts.Amount)
				return obligationView(o), err
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

func newObligationUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ObligationOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace the parties and amount of an obligation",
		Long: `Replace the debtor, creditor and amount of an existing obligation.
The id and creation time are kept.

Example:
  ledgerkv obligation update 1 --debtor alice --creditor carol --amount 75`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return opts.fail(cmd, err)
			}
			return runLedger(opts.RootOptions, cmd, func(ctx context.Context, svc *ledger.Service) (any, error) {
				o, err := svc.UpdateObligation(ctx, id, opts.Debtor, opts.Creditor, opts.Amount)
				return obligationView(o), err
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

func newObligationGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <id>",
		Short:         "Show one obligation",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			return runLedger(rootOpts, cmd, func(ctx context.Context, svc *ledger.Service) (any, error) {
				o, err := svc.GetObligation(ctx, id)
				return obligationView(o), err
			})
		},
	}
}

func newObligationListCommand(rootOpts *RootOptions) *cobra.Command {
	r := &RangeOptions{}
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List obligations by id",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(rootOpts, cmd, func(ctx context.Context, svc *ledger.Service) (any, error) {
				obs, err := svc.ListObligations(ctx, r.From, r.To)
				return views(obs, func(o record.Obligation) obligationView { return obligationView(o) }), err
			})
		},
	}
	r.bind(cmd)
	return cmd
}
