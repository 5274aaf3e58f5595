package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/pickaxe/internal/pick"
	"github.com/roach88/pickaxe/internal/query"
)

// SelectOptions holds flags for the select command.
type SelectOptions struct {
	*RootOptions
	Fields []string
	Eq     []string // name=value
	Order  string
	Desc   bool
	Limit  int
	SQL    bool
}

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SelectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "select <table>",
		Short: "Query a project table through the typed builder",
		Long: `Query a table declared in the project.

The table is resolved through its project schema, so envelope tables
read their rows from the JSON column and filter on the discriminator.
Values of --eq are parsed as YAML scalars: --eq age=42 compares with a
number and --eq active=true with a boolean.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.Fields, "field", "f", nil, "properties to select (default: all)")
	cmd.Flags().StringArrayVar(&opts.Eq, "eq", nil, "filter name=value (repeatable)")
	cmd.Flags().StringVar(&opts.Order, "order", "", "property to order by")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "order descending")
	cmd.Flags().IntVar(&opts.Limit, "limit", -1, "maximum number of rows")
	cmd.Flags().BoolVar(&opts.SQL, "sql", false, "print the SQL instead of running it")

	return cmd
}

func runSelect(opts *SelectOptions, table string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	p, err := LoadProject(opts.Project)
	if err != nil {
		return formatter.Fail(ExitCommandError, loadErrorCode(err), err.Error(), nil)
	}
	_, t, err := p.Table(table)
	if err != nil {
		return formatter.Fail(ExitCommandError, loadErrorCode(err), err.Error(), nil)
	}

	filters, err := parseFilters(opts.Eq)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "parsing --eq", err)
	}

	builderOpts := []query.Option{query.WithSchema(p.Schemas(opts.logger))}
	if !opts.SQL {
		s, err := openStore(opts.RootOptions)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "opening database", err)
		}
		defer s.Close()
		builderOpts = append(builderOpts, query.WithDriver(s))
	}

	from := query.New(builderOpts...).From(table, t)
	for _, f := range filters {
		from = from.Where(func(r ...pick.Row) any { return r[0].Value(f.name).Eq(f.value) })
	}

	var sel query.SelectQuery
	if len(opts.Fields) > 0 {
		sel = from.Fields(opts.Fields...)
	} else {
		sel = from.SelectAll()
	}
	if opts.Order != "" {
		sel = sel.OrderBy(func(r ...pick.Row) []any {
			if opts.Desc {
				return []any{r[0].Value(opts.Order).Desc()}
			}
			return []any{r[0].Value(opts.Order).Asc()}
		})
	}
	if opts.Limit >= 0 {
		sel = sel.Limit(opts.Limit)
	}

	if opts.SQL {
		result, err := compileQuery(sel.Query(), false)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeCompile, "compilation failed", err)
		}
		if formatter.Format == "json" {
			return formatter.Success(result)
		}
		fmt.Fprintln(formatter.Writer, result.SQL)
		fmt.Fprintf(formatter.Writer, "-- args: %v\n", result.Args)
		return nil
	}

	return printResults(formatter, commandContext(cmd), sel.FinalQuery)
}

type filter struct {
	name  string
	value any
}

// parseFilters splits name=value pairs and parses each value as a YAML
// scalar.
func parseFilters(pairs []string) ([]filter, error) {
	filters := make([]filter, 0, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("expected name=value, got %q", pair)
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		switch value.(type) {
		case map[string]any, []any:
			return nil, fmt.Errorf("%s: value must be a scalar", name)
		}
		filters = append(filters, filter{name: name, value: value})
	}
	return filters, nil
}
