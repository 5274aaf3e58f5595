package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pickaxe/internal/query"
)

// explainHeader names the columns of an EXPLAIN QUERY PLAN report.
var explainHeader = []string{"id", "parent", "notused", "detail"}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "explain <query-file>",
		Short:         "Show the SQLite query plan of a query description",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runExplain(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	q, err := LoadQueryFile(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, loadErrorCode(err), err.Error(), nil)
	}

	s, err := openStore(opts)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "opening database", err)
	}
	defer s.Close()

	var rows [][]any
	err = query.New(query.WithDriver(s)).Describe(q, nil).Explain(commandContext(cmd), func(row []any) {
		rows = append(rows, row)
	})
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeExecute, "explaining query", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(rows)
	}

	header := explainHeader
	if len(rows) > 0 && len(rows[0]) != len(header) {
		header = make([]string, len(rows[0]))
		for i := range header {
			header[i] = fmt.Sprint(i + 1)
		}
	}
	return formatter.Table(header, rows)
}
