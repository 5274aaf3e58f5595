package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/pickaxe/internal/queryir"
	"github.com/roach88/pickaxe/internal/shape"
)

const demoProject = `
package demo

shapes: {
	User: {
		id:        string
		firstname: string
		age:       number
		active:    bool
		mails: [...string]
	}
	Note: {
		title: string
		tags: [...string]
	}
}

tables: {
	users: shape: "User"
	notes: {
		shape: "Note"
		table: "entities"
		envelope: {column: "payload", discriminator: "entityType", value: "notes"}
	}
}
`

func yamlUnmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }

func writeProject(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "project.cue", content)
	return dir
}

func TestLoadProject(t *testing.T) {
	p, err := LoadProject(writeProject(t, demoProject))
	require.NoError(t, err)

	assert.Equal(t, 1, p.FileCount)
	require.Len(t, p.Shapes, 2)
	assert.Equal(t, "User", p.Shapes[0].Name)

	user, ok := p.Shape("User")
	require.True(t, ok)
	mails, ok := user.Property("mails")
	require.True(t, ok)
	assert.True(t, shape.Equal(shape.Array(shape.String), mails))

	def, t2, err := p.Table("notes")
	require.NoError(t, err)
	assert.Equal(t, "entities", def.Table)
	require.NotNil(t, def.Envelope)
	assert.Equal(t, "payload", def.Envelope.Column)
	assert.Equal(t, "notes", def.Envelope.Value)
	_, ok = t2.Property("title")
	assert.True(t, ok)

	_, _, err = p.Table("towns")
	assert.Equal(t, ErrCodeUnknownTable, loadErrorCode(err))
}

func TestProject_RowShape(t *testing.T) {
	p, err := LoadProject(writeProject(t, demoProject))
	require.NoError(t, err)

	user, _ := p.Shape("User")
	assert.Same(t, user, p.RowShape(&queryir.Query{From: queryir.Table{Name: "users"}}))
	assert.Nil(t, p.RowShape(&queryir.Query{From: queryir.Table{Name: "entities"}}))

	var none *Project
	assert.Nil(t, none.RowShape(&queryir.Query{From: queryir.Table{Name: "users"}}))
}

func TestProject_Schemas(t *testing.T) {
	p, err := LoadProject(writeProject(t, demoProject))
	require.NoError(t, err)

	schemas := p.Schemas(nil)
	require.Contains(t, schemas, "notes")
	assert.Equal(t, "entities", schemas["notes"].Table)
	assert.NotNil(t, schemas["notes"].Scope)
	assert.NotNil(t, schemas["notes"].ScopeCondition)
	assert.Nil(t, schemas["users"].Scope)
}

func TestLoadProject_Errors(t *testing.T) {
	tests := []struct {
		name     string
		dir      func(t *testing.T) string
		wantCode string
		wantText string
	}{
		{
			name:     "missing directory",
			dir:      func(t *testing.T) string { return "/nonexistent/project" },
			wantCode: ErrCodeNotFound,
			wantText: "not found",
		},
		{
			name:     "no CUE files",
			dir:      func(t *testing.T) string { return t.TempDir() },
			wantCode: ErrCodeNoFiles,
			wantText: "no CUE files found",
		},
		{
			name: "unknown shape",
			dir: func(t *testing.T) string {
				return writeProject(t, "package demo\n\ntables: users: shape: \"Person\"\n")
			},
			wantCode: ErrCodeUnknownShape,
			wantText: `unknown shape "Person"`,
		},
		{
			name: "envelope without column",
			dir: func(t *testing.T) string {
				return writeProject(t, "package demo\n\nshapes: A: {x: string}\ntables: a: {shape: \"A\", envelope: {discriminator: \"kind\"}}\n")
			},
			wantCode: ErrCodeInvalidTable,
			wantText: "envelope needs a column",
		},
		{
			name: "shape is not a struct",
			dir: func(t *testing.T) string {
				return writeProject(t, "package demo\n\nshapes: A: string\n")
			},
			wantCode: ErrCodeInvalidShape,
			wantText: "shape must be a struct",
		},
		{
			name: "empty project",
			dir: func(t *testing.T) string {
				return writeProject(t, "package demo\n\nname: \"demo\"\n")
			},
			wantCode: ErrCodeGeneric,
			wantText: "no shapes or tables",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadProject(tt.dir(t))
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, loadErrorCode(err))
			assert.Contains(t, err.Error(), tt.wantText)
		})
	}
}

func TestFindCUEFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.cue", "package demo\n")
	writeFile(t, dir, "b.txt", "not cue")

	files, err := FindCUEFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestParseFilters(t *testing.T) {
	filters, err := parseFilters([]string{"age=42", "active=true", "name=Toto", "nick="})
	require.NoError(t, err)
	assert.Equal(t, []filter{
		{name: "age", value: 42},
		{name: "active", value: true},
		{name: "name", value: "Toto"},
		{name: "nick", value: nil},
	}, filters)

	_, err = parseFilters([]string{"age"})
	assert.ErrorContains(t, err, "expected name=value")
	_, err = parseFilters([]string{"tags=[a]"})
	assert.ErrorContains(t, err, "scalar")
}
