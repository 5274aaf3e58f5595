package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pickaxe/internal/queryir"
	"github.com/roach88/pickaxe/internal/querysql"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Inline bool
	Output string // output file path
}

// CompilationResult is the JSON payload of the compile command.
type CompilationResult struct {
	SQL         string   `json:"sql"`
	Args        []any    `json:"args"`
	Fingerprint string   `json:"fingerprint"`
	Warnings    []string `json:"warnings,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <query-file>",
		Short: "Compile a query description to SQLite SQL",
		Long: `Compile a query description (YAML or JSON) to SQLite SQL.

By default values become ? placeholders listed after the statement.
With --inline they are written into the statement, for display only.
Constructs that compile but are easy to get wrong, such as paging
without ORDER BY or unsafeSql fragments, are reported as warnings.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Inline, "inline", false, "inline values instead of using placeholders")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the SQL to this file")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	q, err := LoadQueryFile(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, loadErrorCode(err), err.Error(), nil)
	}

	result, err := compileQuery(q, opts.Inline)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeCompile, "compilation failed", err)
	}
	formatter.VerboseLog("Fingerprint: %s", result.Fingerprint)
	if formatter.Format != "json" {
		for _, w := range result.Warnings {
			formatter.Warn("%s", w)
		}
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(result.SQL+"\n"), 0644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "writing output file", err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, result.SQL)
	if !opts.Inline {
		fmt.Fprintf(formatter.Writer, "-- args: %v\n", result.Args)
	}
	if opts.Output != "" {
		formatter.Status(true, "Wrote SQL to %s", opts.Output)
	}
	return nil
}

func compileQuery(q *queryir.Query, inline bool) (*CompilationResult, error) {
	fp, err := queryir.Fingerprint(q)
	if err != nil {
		return nil, err
	}
	result := &CompilationResult{Fingerprint: fp, Warnings: queryir.Validate(q).Warnings}
	if inline {
		result.SQL, err = querysql.CompileInline(q)
		result.Args = []any{}
	} else {
		result.SQL, result.Args, err = querysql.Compile(q)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
