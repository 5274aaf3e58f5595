package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pickaxe/internal/store"
	"github.com/roach88/pickaxe/internal/testutil"
)

const (
	userRows = `
- {id: u1, firstname: Toto, age: 42, active: true, mails: [toto@example.com]}
- {id: u2, firstname: Tata, age: 17, active: false, mails: []}
`
	noteRows = `
- {title: Taxes, tags: [admin, home]}
- {title: Groceries, tags: [home]}
`
)

// seededProject writes the demo project, seeds both of its tables into a
// database file and returns options pointing at them.
func seededProject(t *testing.T, format string) *RootOptions {
	t.Helper()
	dir := writeProject(t, demoProject)
	opts := &RootOptions{
		Format:  format,
		Project: dir,
		DB:      filepath.Join(t.TempDir(), "pickaxe.db"),
		Driver:  store.DriverPure,
	}

	out, err := execute(NewSeedCommand(&RootOptions{Format: "text", Project: dir, DB: opts.DB, Driver: opts.Driver}),
		"users", writeFile(t, dir, "users.yaml", userRows))
	require.NoError(t, err)
	assert.Equal(t, "✓ Seeded 2 row(s) into users\n", out)

	out, err = execute(NewSeedCommand(&RootOptions{Format: "text", Project: dir, DB: opts.DB, Driver: opts.Driver}),
		"notes", writeFile(t, dir, "notes.yaml", noteRows))
	require.NoError(t, err)
	assert.Equal(t, "✓ Seeded 2 row(s) into entities\n", out)

	return opts
}

// data decodes the payload of a successful JSON response.
func data(t *testing.T, out string) any {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status, out)
	return resp.Data
}

func TestSelect_PlainTable(t *testing.T) {
	opts := seededProject(t, "json")

	out, err := execute(NewSelectCommand(opts), "users", "--field", "firstname,mails", "--eq", "active=true")
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"firstname": "Toto", "mails": []any{"toto@example.com"}},
	}, data(t, out))
}

func TestSelect_EnvelopeTable(t *testing.T) {
	opts := seededProject(t, "json")

	out, err := execute(NewSelectCommand(opts), "notes", "--order", "title")
	require.NoError(t, err)
	assert.Equal(t, []any{
		map[string]any{"title": "Groceries", "tags": []any{"home"}},
		map[string]any{"title": "Taxes", "tags": []any{"admin", "home"}},
	}, data(t, out))

	out, err = execute(NewSelectCommand(opts), "notes", "--order", "title", "--desc", "--limit", "1", "--field", "title")
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"title": "Taxes"}}, data(t, out))
}

func TestSelect_SQL(t *testing.T) {
	opts := seededProject(t, "text")

	out, err := execute(NewSelectCommand(opts), "notes", "--sql", "--field", "title")
	require.NoError(t, err)
	assert.Equal(t, "SELECT json_extract(payload, '$.title') AS title\n"+
		"FROM entities\n"+
		"WHERE entityType IS ?\n"+
		"-- args: [notes]\n", out)
}

func TestSelect_Errors(t *testing.T) {
	opts := seededProject(t, "text")

	_, err := execute(NewSelectCommand(opts), "towns")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeUnknownTable)

	out, err := execute(NewSelectCommand(opts), "users", "--eq", "nickname=Toto")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "nickname")
}

func TestSelect_Table(t *testing.T) {
	opts := seededProject(t, "text")
	opts.Color = false

	out, err := execute(NewSelectCommand(opts), "users", "--field", "firstname,active", "--order", "firstname")
	require.NoError(t, err)
	assert.Contains(t, out, "firstname")
	assert.Contains(t, out, "Tata")
	assert.Contains(t, out, "false")
	assert.Contains(t, out, "(2 rows)")
}

func TestQuery_DecodesStarWithProjectShape(t *testing.T) {
	opts := seededProject(t, "json")
	path := writeFile(t, t.TempDir(), "toto.yaml", `
from: users
select: "*"
where:
  operator: eq
  left: {operator: field, name: id}
  right: {operator: value, value: u1}
`)

	out, err := execute(NewQueryCommand(opts), path)
	require.NoError(t, err)

	rows, ok := data(t, out).([]any)
	require.True(t, ok)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, true, row["active"])
	assert.Equal(t, []any{"toto@example.com"}, row["mails"])
	assert.Equal(t, float64(42), row["age"])
}

func TestQuery_Tuple(t *testing.T) {
	opts := seededProject(t, "json")
	path := writeFile(t, t.TempDir(), "count.yaml", `
from: users
select:
  tuple: true
  columns:
    - expr: {operator: count}
      type: number
`)

	out, err := execute(NewQueryCommand(opts), path)
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{float64(2)}}, data(t, out))
}

func TestExplain(t *testing.T) {
	opts := seededProject(t, "json")
	path := writeFile(t, t.TempDir(), "adults.yaml", adultsQuery)

	out, err := execute(NewExplainCommand(opts), path)
	require.NoError(t, err)

	rows, ok := data(t, out).([]any)
	require.True(t, ok)
	assert.NotEmpty(t, rows)
}

func TestShapes(t *testing.T) {
	dir := writeProject(t, demoProject)

	out, err := execute(NewShapesCommand(&RootOptions{Format: "text", Project: dir}))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Loaded 2 shape(s), 2 table(s)")
	assert.Contains(t, out, "users: User rows in users")
	assert.Contains(t, out, "notes: Note rows in entities, column payload where entityType = notes")

	out, err = execute(NewShapesCommand(&RootOptions{Format: "json", Project: dir}))
	require.NoError(t, err)
	payload := data(t, out).(map[string]any)
	shapes := payload["shapes"].([]any)
	require.Len(t, shapes, 2)
	assert.Equal(t, "User", shapes[0].(map[string]any)["name"])
}

func TestSeed_Errors(t *testing.T) {
	dir := writeProject(t, demoProject)
	opts := &RootOptions{Format: "text", Project: dir, DB: filepath.Join(t.TempDir(), "x.db"), Driver: store.DriverPure}

	_, err := execute(NewSeedCommand(opts), "users", filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeSeedFile)

	_, err = execute(NewSeedCommand(opts), "users", writeFile(t, dir, "bad.yaml", "{not: a list}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeSeedFile)
}

func TestSeedLayout_AssignsIDs(t *testing.T) {
	dir := writeProject(t, demoProject)
	p, err := LoadProject(dir)
	require.NoError(t, err)

	def, userShape, err := p.Table("users")
	require.NoError(t, err)
	ids := testutil.NewDeterministicIDs()
	columns, rows := seedLayout(def, userShape, []map[string]any{{"firstname": "Zaza"}, {"id": "u9"}}, ids.Next)
	require.Len(t, columns, 5)
	assert.Equal(t, store.Column{Name: "id", Affinity: "TEXT", PrimaryKey: true}, columns[0])
	assert.Equal(t, store.Column{Name: "active", Affinity: "INTEGER"}, columns[3])
	assert.Equal(t, testutil.IDAt(1), rows[0]["id"])
	assert.Equal(t, "u9", rows[1]["id"])
	assert.Equal(t, int64(1), ids.Current())

	def, noteShape, err := p.Table("notes")
	require.NoError(t, err)
	def.Envelope.Path = []string{"doc"}
	columns, rows = seedLayout(def, noteShape, []map[string]any{{"id": "n1", "title": "x"}}, ids.Next)
	assert.Equal(t, []store.Column{
		{Name: "id", Affinity: "TEXT", PrimaryKey: true},
		{Name: "payload", Affinity: "TEXT"},
		{Name: "entityType", Affinity: "TEXT"},
	}, columns)
	assert.Equal(t, map[string]any{
		"id":         "n1",
		"payload":    map[string]any{"doc": map[string]any{"id": "n1", "title": "x"}},
		"entityType": "notes",
	}, rows[0])
}
