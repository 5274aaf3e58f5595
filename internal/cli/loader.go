package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/pickaxe/internal/query"
	"github.com/roach88/pickaxe/internal/queryir"
	"github.com/roach88/pickaxe/internal/shape"
)

// Project holds the shapes and tables declared in a directory of CUE files:
//
//	shapes: User: {
//		id:        string
//		firstname: string
//		mails: [...string]
//	}
//
//	tables: users: {
//		shape: "User"
//		table: "entities"
//		envelope: {column: "payload", discriminator: "entityType", value: "users"}
//	}
type Project struct {
	Shapes    []shape.Named
	Tables    map[string]TableDef
	FileCount int
}

// TableDef maps a logical table name onto its physical storage.
type TableDef struct {
	Shape    string       `json:"shape"`
	Table    string       `json:"table,omitempty"`
	DB       string       `json:"db,omitempty"`
	Alias    string       `json:"alias,omitempty"`
	Envelope *EnvelopeDef `json:"envelope,omitempty"`
}

// EnvelopeDef stores logical rows as JSON in one column of a shared
// physical table, told apart by a discriminator column.
type EnvelopeDef struct {
	Column        string   `json:"column"`
	Path          []string `json:"path,omitempty"`
	Discriminator string   `json:"discriminator,omitempty"`
	Value         any      `json:"value,omitempty"`
}

// LoadError represents an error that occurred during project loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadProject loads the CUE package in dir and extracts its shapes and
// tables. Every table must name a declared shape.
func LoadProject(dir string) (*Project, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("project directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing project directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	p := &Project{Tables: map[string]TableDef{}, FileCount: len(cueFiles)}

	if shapesVal := value.LookupPath(cue.ParsePath("shapes")); shapesVal.Exists() {
		p.Shapes, err = shape.ParseShapes(shapesVal)
		if err != nil {
			return nil, convertShapeError(err)
		}
	}

	if tablesVal := value.LookupPath(cue.ParsePath("tables")); tablesVal.Exists() {
		iter, err := tablesVal.Fields()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidTable, Message: fmt.Sprintf("iterating tables: %v", err)}
		}
		for iter.Next() {
			var def TableDef
			if err := iter.Value().Decode(&def); err != nil {
				return nil, &LoadError{
					Code:    ErrCodeInvalidTable,
					Message: fmt.Sprintf("table %s: %v", iter.Label(), err),
					Pos:     iter.Value().Pos(),
				}
			}
			if _, ok := p.Shape(def.Shape); !ok {
				return nil, &LoadError{
					Code:    ErrCodeUnknownShape,
					Message: fmt.Sprintf("table %s: unknown shape %q", iter.Label(), def.Shape),
					Pos:     iter.Value().Pos(),
				}
			}
			if def.Envelope != nil && def.Envelope.Column == "" {
				return nil, &LoadError{
					Code:    ErrCodeInvalidTable,
					Message: fmt.Sprintf("table %s: envelope needs a column", iter.Label()),
					Pos:     iter.Value().Pos(),
				}
			}
			p.Tables[iter.Label()] = def
		}
	}

	if len(p.Shapes) == 0 && len(p.Tables) == 0 {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "no shapes or tables found in project"}
	}
	return p, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// Shape returns the shape declared under name.
func (p *Project) Shape(name string) (*shape.Type, bool) {
	i := slices.IndexFunc(p.Shapes, func(n shape.Named) bool { return n.Name == name })
	if i < 0 {
		return nil, false
	}
	return p.Shapes[i].Type, true
}

// Table returns the definition and row shape of the logical table name.
func (p *Project) Table(name string) (TableDef, *shape.Type, error) {
	def, ok := p.Tables[name]
	if !ok {
		return TableDef{}, nil, &LoadError{Code: ErrCodeUnknownTable, Message: fmt.Sprintf("unknown table %q", name)}
	}
	t, _ := p.Shape(def.Shape)
	return def, t, nil
}

// Schemas returns the table schemas of the project for query.WithSchema.
// Every resolution is logged at debug level.
func (p *Project) Schemas(logger *slog.Logger) map[string]query.TableSchema {
	if logger == nil {
		logger = slog.Default()
	}
	out := make(map[string]query.TableSchema, len(p.Tables))
	for name, def := range p.Tables {
		s := query.TableSchema{
			DB:    def.DB,
			Table: def.Table,
			Alias: def.Alias,
			OnUse: func(name string) { logger.Debug("resolve table", "table", name) },
		}
		if env := def.Envelope; env != nil {
			s.Scope = query.EnvelopeScope(env.Column, env.Path...)
			if env.Discriminator != "" {
				s.ScopeCondition = query.Discriminator(env.Discriminator, env.Value)
			}
		}
		out[name] = s
	}
	return out
}

// RowShape returns the shape of the rows of the physical table read by
// q, used to decode SELECT *. It is nil when no plain table matches.
func (p *Project) RowShape(q *queryir.Query) *shape.Type {
	if p == nil || q.From.Name == "" {
		return nil
	}
	for name, def := range p.Tables {
		physical := def.Table
		if physical == "" {
			physical = name
		}
		if physical == q.From.Name && def.Envelope == nil {
			t, _ := p.Shape(def.Shape)
			return t
		}
	}
	return nil
}

// LoadQueryFile reads a query description from a YAML or JSON file.
func LoadQueryFile(path string) (*queryir.Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading query file: %v", err)}
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, &LoadError{Code: ErrCodeQueryFile, Message: fmt.Sprintf("parsing %s: %v", path, err)}
	}
	if tree == nil {
		return nil, &LoadError{Code: ErrCodeQueryFile, Message: fmt.Sprintf("empty query file %s", path)}
	}
	q, err := queryir.Decode(tree)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeQueryFile, Message: fmt.Sprintf("decoding %s: %v", path, err)}
	}
	return q, nil
}

func convertShapeError(err error) *LoadError {
	var shapeErr *shape.LoadError
	if errors.As(err, &shapeErr) {
		return &LoadError{
			Code:    ErrCodeInvalidShape,
			Message: fmt.Sprintf("%s: %s", shapeErr.Field, shapeErr.Message),
			Pos:     shapeErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeInvalidShape, Message: err.Error()}
}

// loadErrorCode returns the code of a LoadError, or ErrCodeGeneric.
func loadErrorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed

	// Project errors
	ErrCodeInvalidShape = "E101" // Shape declaration cannot be typed
	ErrCodeUnknownShape = "E102" // Table names an undeclared shape
	ErrCodeInvalidTable = "E103" // Malformed table declaration
	ErrCodeUnknownTable = "E104" // Table not declared in the project

	// Query errors
	ErrCodeQueryFile = "E201" // Query file cannot be parsed or decoded
	ErrCodeCompile   = "E202" // Query description does not compile
	ErrCodeDatabase  = "E203" // Database cannot be opened
	ErrCodeExecute   = "E204" // Statement failed
	ErrCodeSeedFile  = "E205" // Seed rows cannot be read
)
