package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/pickaxe/internal/query"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <query-file>",
		Short: "Run a query description against the database",
		Long: `Compile a query description and run it against --db.

Column values are decoded by their declared types. SELECT * columns are
decoded with the shape of the matching project table, when there is one.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	return cmd
}

func runQuery(opts *QueryOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	q, err := LoadQueryFile(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, loadErrorCode(err), err.Error(), nil)
	}
	project := optionalProject(opts.RootOptions, formatter)

	s, err := openStore(opts.RootOptions)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "opening database", err)
	}
	defer s.Close()

	final := query.New(query.WithDriver(s)).Describe(q, project.RowShape(q))
	return printResults(formatter, commandContext(cmd), final)
}

// optionalProject loads --project when it holds CUE files. Commands that
// only use the project to decode results run without one.
func optionalProject(opts *RootOptions, formatter *OutputFormatter) *Project {
	if opts.Project == "" {
		return nil
	}
	p, err := LoadProject(opts.Project)
	if err != nil {
		formatter.VerboseLog("No project loaded: %v", err)
		return nil
	}
	return p
}
