package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ledgerkv/internal/ledger"
	"github.com/roach88/ledgerkv/internal/store"
)

// InspectResult summarizes a database.
type InspectResult struct {
	Database string                     `json:"database"`
	Segments map[store.SegmentID]string `json:"segments"`
	ledger.Stats
}

func (r InspectResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "database:    %s\n", r.Database)
	fmt.Fprintf(&b, "counter:     %d\n", r.Counter)
	fmt.Fprintf(&b, "obligations: %d\n", r.Obligations)
	fmt.Fprintf(&b, "escrows:     %d\n", r.Escrows)
	fmt.Fprintf(&b, "policies:    %d\n", r.Policies)
	fmt.Fprintf(&b, "claims:      %d\n", r.Claims)

	ids := make([]int, 0, len(r.Segments))
	for id := range r.Segments {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	b.WriteString("segments:")
	for _, id := range ids {
		fmt.Fprintf(&b, " %d=%s", id, r.Segments[store.SegmentID(id)])
	}
	return b.String()
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Show the counter, record counts and segment layout",
		Long: `Show the identifier counter, the number of records in each table and
the segment layout of the database.

Example:
  ledgerkv inspect --db ./ledger.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, cmd)
		},
	}
}

func runInspect(opts *RootOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	svc, st, closeFn, err := opts.openLedger(ctx)
	if err != nil {
		return opts.fail(cmd, err)
	}
	defer closeFn()

	stats, err := svc.Stats(ctx)
	if err != nil {
		return opts.fail(cmd, err)
	}
	segments, err := st.Segments(ctx)
	if err != nil {
		return opts.fail(cmd, err)
	}

	return opts.formatter(cmd).Success(InspectResult{
		Database: st.Path(),
		Segments: segments,
		Stats:    stats,
	})
}
