package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/ledgerkv/internal/ledger"
	"github.com/roach88/ledgerkv/internal/store"
)

// SnapshotResult describes a written snapshot.
type SnapshotResult struct {
	Database string `json:"database"`
	Output   string `json:"output"`
	Bytes    int64  `json:"bytes"`
}

func (r SnapshotResult) String() string {
	return fmt.Sprintf("snapshot of %s written to %s (%d bytes)", r.Database, r.Output, r.Bytes)
}

// RestoreResult describes a restored database.
type RestoreResult struct {
	Database string `json:"database"`
	Input    string `json:"input"`
	ledger.Stats
}

func (r RestoreResult) String() string {
	return fmt.Sprintf("restored %s from %s: counter=%d obligations=%d escrows=%d policies=%d claims=%d",
		r.Database, r.Input, r.Counter, r.Obligations, r.Escrows, r.Policies, r.Claims)
}

// NewSnapshotCommand creates the snapshot command.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <output>",
		Short: "Write a compressed image of the database",
		Long: `Write a zstd-compressed, consistent image of the database to <output>.
The output file must not exist.

Example:
  ledgerkv snapshot --db ./ledger.db ./ledger.snap`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(rootOpts, args[0], cmd)
		},
	}
}

func runSnapshot(opts *RootOptions, output string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	_, st, closeFn, err := opts.openLedger(ctx)
	if err != nil {
		return opts.fail(cmd, err)
	}
	defer closeFn()

	f, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return opts.fail(cmd, fmt.Errorf("create snapshot: %w", err))
	}
	if err := st.Snapshot(ctx, f); err != nil {
		f.Close()
		os.Remove(output)
		return opts.fail(cmd, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return opts.fail(cmd, fmt.Errorf("sync snapshot: %w", err))
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return opts.fail(cmd, fmt.Errorf("stat snapshot: %w", err))
	}
	if err := f.Close(); err != nil {
		return opts.fail(cmd, fmt.Errorf("close snapshot: %w", err))
	}

	opts.logger.Info("snapshot written", "database", st.Path(), "output", output, "bytes", info.Size())
	return opts.formatter(cmd).Success(SnapshotResult{
		Database: st.Path(),
		Output:   output,
		Bytes:    info.Size(),
	})
}

// NewRestoreCommand creates the restore command.
func NewRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <input>",
		Short: "Recreate the database from a snapshot",
		Long: `Recreate the configured database from a snapshot written by
"ledgerkv snapshot". The database file must not exist.

Example:
  ledgerkv restore --db ./restored.db ./ledger.snap`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(rootOpts, args[0], cmd)
		},
	}
}

func runRestore(opts *RootOptions, input string, cmd *cobra.Command) error {
	f, err := os.Open(input)
	if err != nil {
		return opts.fail(cmd, fmt.Errorf("open snapshot: %w", err))
	}
	defer f.Close()

	if err := store.Restore(f, opts.config.Database); err != nil {
		return opts.fail(cmd, err)
	}
	opts.logger.Info("database restored", "database", opts.config.Database, "input", input)

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
	return opts.formatter(cmd).Success(RestoreResult{
		Database: st.Path(),
		Input:    input,
		Stats:    stats,
	})
}
