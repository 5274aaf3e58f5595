package cli

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/pickaxe/internal/shape"
	"github.com/roach88/pickaxe/internal/store"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <table> <rows-file>",
		Short: "Create a project table and insert rows from a YAML or JSON list",
		Long: `Create the physical table of a project table if needed and insert rows.

Plain tables get one column per shape property. Envelope tables get an
id, the JSON column holding the row and the discriminator column. Rows
without an id receive a random UUID.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runSeed(opts *RootOptions, table, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	p, err := LoadProject(opts.Project)
	if err != nil {
		return formatter.Fail(ExitCommandError, loadErrorCode(err), err.Error(), nil)
	}
	def, t, err := p.Table(table)
	if err != nil {
		return formatter.Fail(ExitCommandError, loadErrorCode(err), err.Error(), nil)
	}

	rows, err := readRows(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeSeedFile, "reading rows", err)
	}

	physical := def.Table
	if physical == "" {
		physical = table
	}
	columns, stored := seedLayout(def, t, rows, uuid.NewString)

	s, err := openStore(opts)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "opening database", err)
	}
	defer s.Close()

	ctx := commandContext(cmd)
	if err := s.CreateTable(ctx, physical, columns); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeExecute, "creating table", err)
	}
	if len(stored) > 0 {
		if err := s.InsertAll(ctx, physical, stored); err != nil {
			return formatter.Fail(ExitFailure, ErrCodeExecute, "inserting rows", err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(map[string]any{"table": physical, "rows": len(stored)})
	}
	formatter.Status(true, "Seeded %d row(s) into %s", len(stored), physical)
	return nil
}

func readRows(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rows, nil
}

// seedLayout returns the columns of the physical table of def and the
// rows to store in it. Rows without an id get one from newID.
func seedLayout(def TableDef, t *shape.Type, rows []map[string]any, newID func() string) ([]store.Column, []map[string]any) {
	stored := make([]map[string]any, len(rows))

	if env := def.Envelope; env != nil {
		columns := []store.Column{
			{Name: "id", Affinity: "TEXT", PrimaryKey: true},
			{Name: env.Column, Affinity: "TEXT"},
		}
		if env.Discriminator != "" {
			columns = append(columns, store.Column{Name: env.Discriminator, Affinity: store.AffinityOf(shape.Literal(env.Value))})
		}
		for i, row := range rows {
			id, _ := row["id"].(string)
			if id == "" {
				id = newID()
			}
			var doc any = row
			for j := len(env.Path) - 1; j >= 0; j-- {
				doc = map[string]any{env.Path[j]: doc}
			}
			out := map[string]any{"id": id, env.Column: doc}
			if env.Discriminator != "" {
				out[env.Discriminator] = env.Value
			}
			stored[i] = out
		}
		return columns, stored
	}

	var columns []store.Column
	_, hasID := t.Property("id")
	for _, prop := range t.Properties() {
		columns = append(columns, store.Column{
			Name:       prop.Name,
			Affinity:   store.AffinityOf(prop.Type),
			PrimaryKey: prop.Name == "id",
		})
	}
	for i, row := range rows {
		out := make(map[string]any, len(row)+1)
		for k, v := range row {
			out[k] = v
		}
		if hasID && out["id"] == nil {
			out["id"] = newID()
		}
		stored[i] = out
	}
	return columns, stored
}
