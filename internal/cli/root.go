package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/regtab/regtab/internal/editor"
	"github.com/regtab/regtab/internal/merge"
	"github.com/regtab/regtab/internal/query"
	"github.com/regtab/regtab/internal/schema"
	"github.com/regtab/regtab/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // config file path, "" for defaults
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the regtab CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

// Execute runs the CLI and returns the process exit code. Failures are
// rendered through the output formatter so --format json yields a
// structured error payload on stderr instead of a bare message.
func Execute() int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	if err := cmd.Execute(); err != nil {
		f := &OutputFormatter{Format: opts.Format, Writer: os.Stderr, Verbose: opts.Verbose}
		var details any
		if cause := errors.Unwrap(err); cause != nil {
			details = cause.Error()
		}
		_ = f.Error(ErrorCode(err), err.Error(), details)
		return GetExitCode(err)
	}
	return ExitSuccess
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regtab",
		Short: "regtab - affiliate registry tables",
		Long: "Maintain affiliate-registry record collections stored as structured-text\n" +
			"table literals, and run read-only queries and aggregations across them.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			configureLogging(opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to config file")

	// Add subcommands
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewPutCommand(opts))
	cmd.AddCommand(NewRmCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewFmtCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
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

func configureLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// env bundles everything a command needs: loaded config, schema
// registry, page store, editor, and query engine.
type env struct {
	cfg      *Config
	registry *schema.Registry
	store    store.Store
	editor   *editor.Editor
	query    *query.Engine

	closers []func() error
}

// openEnv builds the environment from config. Callers must Close.
func openEnv(opts *RootOptions) (*env, error) {
	cfg, err := LoadConfig(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	reg, err := schema.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load collection schemas", err)
	}
	cfg.applyPageOverrides(reg)

	e := &env{cfg: cfg, registry: reg, query: query.NewEngine()}

	switch cfg.Backend {
	case BackendMemory:
		e.store = store.NewMemory()
	case BackendSQLite:
		db, err := store.OpenSQLite(cfg.Database)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		e.store = db
		e.closers = append(e.closers, db.Close)
	default:
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown backend %q", cfg.Backend))
	}

	e.editor = editor.New(e.store, reg, merge.New(nil, nil), slog.Default())
	e.editor.Unconditional = cfg.UnconditionalWrites
	return e, nil
}

// Close releases backend resources.
func (e *env) Close() {
	for _, c := range e.closers {
		if err := c(); err != nil {
			slog.Error("error closing backend", "error", err)
		}
	}
}
