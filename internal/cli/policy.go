package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/ledgerkv/internal/ledger"
	"github.com/roach88/ledgerkv/internal/record"
)

// PolicyOptions holds flags for policy purchase.
type PolicyOptions struct {
	*RootOptions
	Holder   string
	Category string
	Coverage uint64
	Start    uint64
	End      uint64
}

// NewPolicyCommand creates the policy command group.
func NewPolicyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Purchase and look up coverage policies",
	}
	cmd.AddCommand(newPolicyPurchaseCommand(rootOpts))
	cmd.AddCommand(newPolicyGetCommand(rootOpts))
	cmd.AddCommand(newPolicyListCommand(rootOpts))
	return cmd
}

func newPolicyPurchaseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PolicyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "purchase",
		Short: "Purchase a coverage policy",
		Long: `Record a new coverage policy and print it with its assigned id.

Example:
  ledgerkv policy purchase --holder carol --category wheat --coverage 1000 --start 100 --end 200`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(opts.RootOptions, cmd, func(ctx context.Context, svc *ledger.Service) (any, error) {
				p, err := svc.PurchasePolicy(ctx, opts.Holder, opts.Category, opts.Coverage, opts.Start, opts.End)
				return policyView(p), err
			})
		},
	}

	cmd.Flags().StringVar(&opts.Holder, "holder", "", "policy holder (required)")
	cmd.Flags().StringVar(&opts.Category, "category", "", "covered category (required)")
	cmd.Flags().Uint64Var(&opts.Coverage, "coverage", 0, "coverage amount, greater than 0 (required)")
	cmd.Flags().Uint64Var(&opts.Start, "start", 0, "coverage start")
	cmd.Flags().Uint64Var(&opts.End, "end", 0, "coverage end")
	_ = cmd.MarkFlagRequired("holder")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("coverage")

	return cmd
}

func newPolicyGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <id>",
		Short:         "Show one policy",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return rootOpts.fail(cmd, err)
			}
			return runLedger(rootOpts, cmd, func(ctx context.Context, svc *ledger.Service) (any, error) {
				p, err := svc.GetPolicy(ctx, id)
				return policyView(p), err
			})
		},
	}
}

func newPolicyListCommand(rootOpts *RootOptions) *cobra.Command {
	r := &RangeOptions{}
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List policies by id",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedger(rootOpts, cmd, func(ctx context.Context, svc *ledger.Service) (any, error) {
				ps, err := svc.ListPolicies(ctx, r.From, r.To)
				return views(ps, func(p record.CoveragePolicy) policyView { return policyView(p) }), err
			})
		},
	}
	r.bind(cmd)
	return cmd
}
