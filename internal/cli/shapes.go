package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/pickaxe/internal/shape"
)

// ShapeInfo is one shape of the shapes command JSON payload.
type ShapeInfo struct {
	Name string `json:"name"`
	Type any    `json:"type"`
}

// ShapesResult is the JSON payload of the shapes command.
type ShapesResult struct {
	Shapes []ShapeInfo          `json:"shapes"`
	Tables map[string]TableDef `json:"tables"`
}

// NewShapesCommand creates the shapes command.
func NewShapesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "shapes",
		Short:         "List the shapes and tables declared in the project",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShapes(rootOpts, cmd)
		},
	}

	return cmd
}

func runShapes(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	p, err := LoadProject(opts.Project)
	if err != nil {
		return formatter.Fail(ExitCommandError, loadErrorCode(err), err.Error(), nil)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", p.FileCount, opts.Project)

	if formatter.Format == "json" {
		result := ShapesResult{Shapes: []ShapeInfo{}, Tables: p.Tables}
		for _, s := range p.Shapes {
			result.Shapes = append(result.Shapes, ShapeInfo{Name: s.Name, Type: shape.Encode(s.Type)})
		}
		return formatter.Success(result)
	}

	formatter.Status(true, "Loaded %d shape(s), %d table(s)", len(p.Shapes), len(p.Tables))
	fmt.Fprintln(formatter.Writer)

	if len(p.Shapes) > 0 {
		fmt.Fprintln(formatter.Writer, "Shapes:")
		for _, s := range p.Shapes {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", s.Name, s.Type)
		}
		fmt.Fprintln(formatter.Writer)
	}

	if len(p.Tables) > 0 {
		fmt.Fprintln(formatter.Writer, "Tables:")
		for _, name := range slices.Sorted(maps.Keys(p.Tables)) {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", name, describeTable(name, p.Tables[name]))
		}
		fmt.Fprintln(formatter.Writer)
	}
	return nil
}

func describeTable(name string, def TableDef) string {
	physical := def.Table
	if physical == "" {
		physical = name
	}
	if def.DB != "" {
		physical = def.DB + "." + physical
	}
	out := fmt.Sprintf("%s rows in %s", def.Shape, physical)
	if env := def.Envelope; env != nil {
		out += fmt.Sprintf(", column %s", env.Column)
		for _, p := range env.Path {
			out += "." + p
		}
		if env.Discriminator != "" {
			out += fmt.Sprintf(" where %s = %v", env.Discriminator, env.Value)
		}
	}
	return out
}
