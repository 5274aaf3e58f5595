package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/pickaxe/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Color   bool

	// Project is the directory of CUE files declaring shapes and tables.
	Project string

	DB     string
	Driver string

	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ValidDrivers lists the SQLite drivers accepted by --driver.
var ValidDrivers = []string{store.DriverCGo, store.DriverPure}

// NewRootCommand creates the root command for the pickaxe CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "pickaxe",
		Short: "pickaxe - typed JSON queries for SQLite",
		Long: `Build, compile and run typed queries over JSON columns stored in SQLite.

Shapes and table schemas are declared in CUE; queries are serialized
query descriptions in YAML or JSON.`,
		SilenceErrors: true, // main reports errors not already printed by a command
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if !slices.Contains(ValidDrivers, opts.Driver) {
				return fmt.Errorf("invalid driver %q: must be one of %v", opts.Driver, ValidDrivers)
			}
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVar(&opts.Color, "color", true, "colorize text output")
	cmd.PersistentFlags().StringVarP(&opts.Project, "project", "p", ".", "directory of CUE shape and table declarations")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "SQLite database path (empty: in-memory)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", store.DriverCGo, "SQLite driver (sqlite3|sqlite)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewShapesCommand(opts))
	cmd.AddCommand(NewSelectCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

// newLogger logs to w, at debug level when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openStore opens the database selected by --db and --driver.
func openStore(opts *RootOptions) (*store.Store, error) {
	return store.Open(store.Config{
		Driver: opts.Driver,
		DSN:    opts.DB,
		Logger: opts.logger,
	})
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
