package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/ledgerkv/internal/config"
	"github.com/roach88/ledgerkv/internal/ledger"
	"github.com/roach88/ledgerkv/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string
	ConfigPath string

	// TraceIDs allows overriding the trace id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	TraceIDs TraceIDGenerator

	// Clock allows overriding the ledger clock (for testing).
	Clock ledger.Clock

	// LogWriter receives log output. Defaults to os.Stderr.
	LogWriter io.Writer

	config  config.Config
	traceID string
	logger  *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ledgerkv CLI.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOptions(&RootOptions{})
}

// NewRootCommandWithOptions creates the root command around opts.
// Tests use it to pin the trace id and clock.
func NewRootCommandWithOptions(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledgerkv",
		Short: "ledgerkv - obligations, escrow holds, policies and claims",
		Long: `A persistent ledger of obligations, escrow holds, coverage policies and claims.

All records live in one SQLite file. Obligations, policies and claims draw
their identifiers from a single counter shared by every record kind.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to CUE config file")

	// Add subcommands
	cmd.AddCommand(NewObligationCommand(opts))
	cmd.AddCommand(NewEscrowCommand(opts))
	cmd.AddCommand(NewPolicyCommand(opts))
	cmd.AddCommand(NewClaimCommand(opts))
	cmd.AddCommand(NewApplyCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewSnapshotCommand(opts))
	cmd.AddCommand(NewRestoreCommand(opts))

	return cmd
}

// setup merges the config file with flags and builds the logger.
// Flags that were set explicitly win over the file.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if cmd.Flags().Changed("db") {
		cfg.Database = o.Database
	}
	if cmd.Flags().Changed("format") {
		cfg.Format = o.Format
	}
	if !isValidFormat(cfg.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", cfg.Format, ValidFormats))
	}
	o.Format = cfg.Format
	o.config = cfg

	gen := o.TraceIDs
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	o.traceID = gen.Generate()

	level := cfg.SlogLevel()
	if o.Verbose {
		level = slog.LevelDebug
	}
	w := o.LogWriter
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	o.logger = slog.New(handler).With("trace_id", o.traceID)
	return nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:  o.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: o.Verbose,
		TraceID: o.traceID,
	}
}

// openLedger opens the configured database and the ledger over it.
// The returned func closes the database.
func (o *RootOptions) openLedger(ctx context.Context) (*ledger.Service, *store.Store, func(), error) {
	o.logger.Debug("opening database", "path", o.config.Database)
	st, err := store.Open(o.config.Database, store.WithBusyTimeout(o.config.BusyTimeoutMS))
	if err != nil {
		return nil, nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	ledgerOpts := []ledger.Option{ledger.WithLogger(o.logger)}
	if o.Clock != nil {
		ledgerOpts = append(ledgerOpts, ledger.WithClock(o.Clock))
	}
	svc, err := ledger.New(ctx, st, ledgerOpts...)
	if err != nil {
		st.Close()
		return nil, nil, nil, WrapExitError(ExitCommandError, "failed to open ledger", err)
	}

	closeFn := func() {
		if closeErr := st.Close(); closeErr != nil {
			o.logger.Error("error closing database", "error", closeErr)
		}
	}
	return svc, st, closeFn, nil
}

// runLedger opens the ledger, calls fn and writes its result.
func runLedger(opts *RootOptions, cmd *cobra.Command, fn func(context.Context, *ledger.Service) (any, error)) error {
	ctx := commandContext(cmd)
	svc, _, closeFn, err := opts.openLedger(ctx)
	if err != nil {
		return opts.fail(cmd, err)
	}
	defer closeFn()

	out, err := fn(ctx, svc)
	if err != nil {
		return opts.fail(cmd, err)
	}
	return opts.formatter(cmd).Success(out)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
