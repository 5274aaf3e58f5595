package queryir

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/roach88/pickaxe/internal/shape"
)

// Encode converts q into a generic tree of maps, slices and scalars that
// marshals to JSON or YAML. Expressions become objects tagged with their
// "operator"; empty clauses are omitted.
//
//	{
//	  "from": {"name": "users"},
//	  "select": {"columns": [{"name": "age", "expr": {"operator": "field", "name": "age"}, "type": "number"}]},
//	  "where": {"operator": "gt", "left": {"operator": "field", "name": "age"}, "right": {"operator": "value", "value": 10}},
//	  "limit": 10
//	}
func Encode(q *Query) (map[string]any, error) {
	e := &encoder{}
	out := e.query(q)
	if e.err != nil {
		return nil, e.err
	}
	return out, nil
}

// EncodeExpr converts one expression into its tagged tree form.
func EncodeExpr(x Expr) (map[string]any, error) {
	e := &encoder{}
	out := e.expr(x)
	if e.err != nil {
		return nil, e.err
	}
	return out, nil
}

type encoder struct {
	err error
}

func (e *encoder) query(q *Query) map[string]any {
	if q == nil {
		return nil
	}
	out := map[string]any{
		"from":   e.table(q.From),
		"select": e.selection(q.Select),
	}
	if q.Explain {
		out["explain"] = true
	}
	if len(q.With) > 0 {
		with := make([]any, len(q.With))
		for i, cte := range q.With {
			with[i] = map[string]any{"name": cte.Name, "query": e.query(cte.Query)}
		}
		out["with"] = with
	}
	if q.Scope != nil {
		out["scope"] = e.expr(q.Scope)
	}
	if len(q.Joins) > 0 {
		joins := make([]any, len(q.Joins))
		for i, j := range q.Joins {
			jm := map[string]any{"operator": string(j.Operator), "table": e.table(j.Table)}
			if j.Constraint != nil {
				jm["constraint"] = e.expr(j.Constraint)
			}
			joins[i] = jm
		}
		out["joins"] = joins
	}
	if q.Distinct {
		out["distinct"] = true
	}
	if q.Where != nil {
		out["where"] = e.expr(q.Where)
	}
	if len(q.OrderBy) > 0 {
		out["orderBy"] = e.list(q.OrderBy)
	}
	if len(q.GroupBy) > 0 {
		out["groupBy"] = e.list(q.GroupBy)
	}
	if q.Limit != nil {
		out["limit"] = *q.Limit
	}
	if q.Offset != nil {
		out["offset"] = *q.Offset
	}
	return out
}

func (e *encoder) table(t Table) map[string]any {
	out := map[string]any{}
	if t.Name != "" {
		out["name"] = t.Name
	}
	if t.DB != "" {
		out["db"] = t.DB
	}
	if t.Alias != "" {
		out["alias"] = t.Alias
	}
	if t.Source != nil {
		out["source"] = e.expr(t.Source)
	}
	return out
}

func (e *encoder) selection(s Selection) any {
	if s.Star {
		return "*"
	}
	cols := make([]any, len(s.Columns))
	for i, c := range s.Columns {
		cm := map[string]any{"expr": e.expr(c.Expr)}
		if c.Name != "" {
			cm["name"] = c.Name
		}
		if c.Type != nil {
			cm["type"] = shape.Encode(c.Type)
		}
		cols[i] = cm
	}
	out := map[string]any{"columns": cols}
	if s.Tuple {
		out["tuple"] = true
	}
	if s.OneField {
		out["oneField"] = true
	}
	return out
}

func (e *encoder) list(exprs []Expr) []any {
	out := make([]any, len(exprs))
	for i, x := range exprs {
		out[i] = e.expr(x)
	}
	return out
}

func (e *encoder) expr(x Expr) map[string]any {
	if x == nil || e.err != nil {
		return nil
	}
	m := map[string]any{"operator": x.Operator()}
	set := func(key string, sub Expr) {
		if sub != nil {
			m[key] = e.expr(sub)
		}
	}
	switch n := x.(type) {
	case *Value:
		m["value"] = n.V
	case *Null, *EachValue, *EachKey:
	case *Field:
		m["name"] = n.Name
		if n.Table != "" {
			m["table"] = n.Table
		}
	case *As:
		set("value", n.Value)
		m["name"] = n.Name
	case *Get:
		set("value", n.Value)
		path := make([]any, len(n.Path))
		for i, s := range n.Path {
			if s.IsIndex {
				path[i] = s.Index
			} else {
				path[i] = s.Key
			}
		}
		m["path"] = path
	case *Not:
		set("value", n.Value)
	case *StringConcat:
		m["values"] = e.list(n.Values)
	case *StringLength:
		set("value", n.Value)
	case *Substr:
		set("value", n.Value)
		set("start", n.Start)
		set("length", n.Length)
	case *Like:
		set("value", n.Value)
		set("pattern", n.Pattern)
	case *Glob:
		set("value", n.Value)
		set("pattern", n.Pattern)
	case *Match:
		set("left", n.A)
		set("right", n.B)
	case *Eq:
		set("left", n.A)
		set("right", n.B)
	case *Neq:
		set("left", n.A)
		set("right", n.B)
	case *Gte:
		set("left", n.A)
		set("right", n.B)
	case *Gt:
		set("left", n.A)
		set("right", n.B)
	case *Lte:
		set("left", n.A)
		set("right", n.B)
	case *Lt:
		set("left", n.A)
		set("right", n.B)
	case *In:
		set("value", n.Value)
		m["list"] = e.list(n.List)
	case *And:
		m["conditions"] = e.list(n.Conditions)
	case *Or:
		m["conditions"] = e.list(n.Conditions)
	case *IfNull:
		set("left", n.A)
		set("right", n.B)
	case *If:
		set("condition", n.Condition)
		set("then", n.A)
		set("else", n.B)
	case *Case:
		whens := make([]any, len(n.Whens))
		for i, w := range n.Whens {
			wm := map[string]any{}
			if w.Condition != nil {
				wm["condition"] = e.expr(w.Condition)
			}
			if w.Value != nil {
				wm["value"] = e.expr(w.Value)
			}
			whens[i] = wm
		}
		m["whens"] = whens
		set("else", n.Else)
	case *Abs:
		set("value", n.Value)
	case *Plus:
		m["values"] = e.list(n.Values)
	case *Minus:
		m["values"] = e.list(n.Values)
	case *Length:
		set("list", n.List)
	case *Includes:
		set("list", n.List)
		set("value", n.Value)
	case *Some:
		set("list", n.List)
		set("condition", n.Condition)
	case *Each:
		set("value", n.Value)
	case *Keys:
		set("value", n.Obj)
	case *Values:
		set("value", n.Obj)
	case *Asc:
		set("value", n.Value)
	case *Desc:
		set("value", n.Value)
	case *NullsFirst:
		set("value", n.Value)
	case *NullsLast:
		set("value", n.Value)
	case *Count:
		set("field", n.Field)
		if n.Distinct {
			m["distinct"] = true
		}
	case *Avg:
		set("field", n.Field)
	case *Max:
		set("field", n.Field)
	case *Min:
		set("field", n.Field)
	case *Sum:
		set("field", n.Field)
		if n.Distinct {
			m["distinct"] = true
		}
	case *GroupArray:
		set("field", n.Field)
		set("orderBy", n.OrderBy)
	case *UnsafeSQL:
		m["sql"] = n.SQL
	case *Subquery:
		m["query"] = e.query(n.Query)
	case *Invalid:
		e.err = fmt.Errorf("encode %s: %w", x.Operator(), n.Err)
	default:
		e.err = &DecodeError{Code: CodeUnknownOperator, Message: fmt.Sprintf("unknown expression %T", x)}
	}
	return m
}

// Decode is the inverse of Encode. It accepts trees produced by
// encoding/json (float64 numbers, json.Number) and gopkg.in/yaml.v3 (int
// numbers). Integral numbers in value nodes decode as int64.
func Decode(tree map[string]any) (*Query, error) {
	d := &decoder{}
	q := d.query(tree, "query")
	if d.err != nil {
		return nil, d.err
	}
	return q, nil
}

// DecodeExpr is the inverse of EncodeExpr.
func DecodeExpr(tree any) (Expr, error) {
	d := &decoder{}
	x := d.expr(tree, "expr")
	if d.err != nil {
		return nil, d.err
	}
	return x, nil
}

type decoder struct {
	err error
}

func (d *decoder) fail(code ErrorCode, path, format string, args ...any) {
	if d.err == nil {
		d.err = &DecodeError{Code: code, Path: path, Message: fmt.Sprintf(format, args...)}
	}
}

func (d *decoder) query(tree map[string]any, path string) *Query {
	q := &Query{}
	q.Explain, _ = tree["explain"].(bool)
	q.Distinct, _ = tree["distinct"].(bool)

	if with, ok := tree["with"]; ok {
		for i, item := range asList(with) {
			p := fmt.Sprintf("%s.with[%d]", path, i)
			m, ok := item.(map[string]any)
			if !ok {
				d.fail(CodeInvalidExpression, p, "CTE must be an object")
				return nil
			}
			name, _ := m["name"].(string)
			sub, ok := m["query"].(map[string]any)
			if name == "" || !ok {
				d.fail(CodeInvalidExpression, p, "CTE needs a name and a query")
				return nil
			}
			q.With = append(q.With, CTE{Name: name, Query: d.query(sub, p+".query")})
		}
	}

	q.From = d.table(tree["from"], path+".from")
	q.Scope = d.expr(tree["scope"], path+".scope")

	for i, item := range asList(tree["joins"]) {
		p := fmt.Sprintf("%s.joins[%d]", path, i)
		m, ok := item.(map[string]any)
		if !ok {
			d.fail(CodeInvalidExpression, p, "join must be an object")
			return nil
		}
		opName, _ := m["operator"].(string)
		op := JoinOperator(opName)
		if !op.Valid() {
			d.fail(CodeBadJoinOperator, p, "Invalid join operator '%s'", opName)
			return nil
		}
		q.Joins = append(q.Joins, Join{
			Operator:   op,
			Table:      d.table(m["table"], p+".table"),
			Constraint: d.expr(m["constraint"], p+".constraint"),
		})
	}

	q.Select = d.selection(tree["select"], path+".select")
	q.Where = d.expr(tree["where"], path+".where")
	q.OrderBy = d.list(tree["orderBy"], path+".orderBy")
	q.GroupBy = d.list(tree["groupBy"], path+".groupBy")

	if v, ok := tree["limit"]; ok && v != nil {
		n, ok := toInt64(v)
		if !ok || n < 0 {
			d.fail(CodeBadLimit, path+".limit", "limit must be a non-negative integer, got %v", v)
			return nil
		}
		q.Limit = &n
	}
	if v, ok := tree["offset"]; ok && v != nil {
		n, ok := toInt64(v)
		if !ok || n < 0 {
			d.fail(CodeBadOffset, path+".offset", "offset must be a non-negative integer, got %v", v)
			return nil
		}
		q.Offset = &n
	}
	return q
}

func (d *decoder) table(v any, path string) Table {
	switch t := v.(type) {
	case string:
		return Table{Name: t}
	case map[string]any:
		out := Table{Source: d.expr(t["source"], path+".source")}
		out.Name, _ = t["name"].(string)
		out.DB, _ = t["db"].(string)
		out.Alias, _ = t["alias"].(string)
		if out.Name == "" && out.Source == nil {
			d.fail(CodeInvalidExpression, path, "table needs a name or a source")
		}
		return out
	}
	d.fail(CodeInvalidExpression, path, "table must be a name or an object, got %T", v)
	return Table{}
}

func (d *decoder) selection(v any, path string) Selection {
	switch s := v.(type) {
	case nil:
		return Selection{}
	case string:
		if s == "*" {
			return Star()
		}
	case map[string]any:
		out := Selection{}
		out.Tuple, _ = s["tuple"].(bool)
		out.OneField, _ = s["oneField"].(bool)
		for i, item := range asList(s["columns"]) {
			p := fmt.Sprintf("%s.columns[%d]", path, i)
			m, ok := item.(map[string]any)
			if !ok {
				d.fail(CodeInvalidExpression, p, "column must be an object")
				return out
			}
			col := Column{Expr: d.expr(m["expr"], p+".expr")}
			col.Name, _ = m["name"].(string)
			if tv, ok := m["type"]; ok && tv != nil {
				t, err := shape.Decode(tv)
				if err != nil {
					d.fail(CodeInvalidExpression, p+".type", "%v", err)
					return out
				}
				col.Type = t
			}
			out.Columns = append(out.Columns, col)
		}
		return out
	}
	d.fail(CodeInvalidExpression, path, "select must be \"*\" or an object, got %v", v)
	return Selection{}
}

func (d *decoder) list(v any, path string) []Expr {
	items := asList(v)
	if len(items) == 0 {
		return nil
	}
	out := make([]Expr, len(items))
	for i, item := range items {
		out[i] = d.expr(item, fmt.Sprintf("%s[%d]", path, i))
	}
	return out
}

func (d *decoder) expr(v any, path string) Expr {
	if v == nil || d.err != nil {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		d.fail(CodeInvalidExpression, path, "expression must be an object, got %T", v)
		return nil
	}
	tag, _ := m["operator"].(string)
	sub := func(key string) Expr { return d.expr(m[key], path+"."+key) }
	req := func(key string) Expr {
		x := sub(key)
		if x == nil {
			d.fail(CodeInvalidExpression, path, "'%s' needs '%s'", tag, key)
		}
		return x
	}
	subs := func(key string) []Expr { return d.list(m[key], path+"."+key) }
	str := func(key string) string { s, _ := m[key].(string); return s }
	flag := func(key string) bool { b, _ := m[key].(bool); return b }

	switch tag {
	case "value":
		val := normalizeNumber(m["value"])
		if !IsScalar(val) {
			d.fail(CodeInvalidExpression, path, "%v '%v'", ErrBadValue, m["value"])
			return nil
		}
		return &Value{V: val}
	case "null":
		return &Null{}
	case "field":
		return &Field{Table: str("table"), Name: str("name")}
	case "as":
		return &As{Value: req("value"), Name: str("name")}
	case "get":
		return &Get{Value: sub("value"), Path: d.path(m["path"], path+".path")}
	case "not":
		return &Not{Value: req("value")}
	case "stringConcat":
		return &StringConcat{Values: subs("values")}
	case "stringLength":
		return &StringLength{Value: req("value")}
	case "substr":
		return &Substr{Value: req("value"), Start: req("start"), Length: sub("length")}
	case "like":
		return &Like{Value: req("value"), Pattern: req("pattern")}
	case "glob":
		return &Glob{Value: req("value"), Pattern: req("pattern")}
	case "match":
		return &Match{A: req("left"), B: req("right")}
	case "eq":
		return &Eq{A: req("left"), B: req("right")}
	case "neq":
		return &Neq{A: req("left"), B: req("right")}
	case "gte":
		return &Gte{A: req("left"), B: req("right")}
	case "gt":
		return &Gt{A: req("left"), B: req("right")}
	case "lte":
		return &Lte{A: req("left"), B: req("right")}
	case "lt":
		return &Lt{A: req("left"), B: req("right")}
	case "in":
		return &In{Value: req("value"), List: subs("list")}
	case "and":
		return &And{Conditions: subs("conditions")}
	case "or":
		return &Or{Conditions: subs("conditions")}
	case "ifNull":
		return &IfNull{A: req("left"), B: req("right")}
	case "if":
		return &If{Condition: req("condition"), A: req("then"), B: req("else")}
	case "case":
		c := &Case{Else: sub("else")}
		for i, item := range asList(m["whens"]) {
			p := fmt.Sprintf("%s.whens[%d]", path, i)
			wm, ok := item.(map[string]any)
			if !ok {
				d.fail(CodeInvalidExpression, p, "when must be an object")
				return nil
			}
			c.Whens = append(c.Whens, When{
				Condition: d.expr(wm["condition"], p+".condition"),
				Value:     d.expr(wm["value"], p+".value"),
			})
		}
		return c
	case "abs":
		return &Abs{Value: req("value")}
	case "plus":
		return &Plus{Values: subs("values")}
	case "minus":
		return &Minus{Values: subs("values")}
	case "length":
		return &Length{List: req("list")}
	case "includes":
		return &Includes{List: req("list"), Value: req("value")}
	case "some":
		return &Some{List: req("list"), Condition: sub("condition")}
	case "each":
		return &Each{Value: req("value")}
	case "eachValue":
		return &EachValue{}
	case "eachKey":
		return &EachKey{}
	case "keys":
		return &Keys{Obj: req("value")}
	case "values":
		return &Values{Obj: req("value")}
	case "asc":
		return &Asc{Value: req("value")}
	case "desc":
		return &Desc{Value: req("value")}
	case "nullsFirst":
		return &NullsFirst{Value: req("value")}
	case "nullsLast":
		return &NullsLast{Value: req("value")}
	case "count":
		return &Count{Field: sub("field"), Distinct: flag("distinct")}
	case "avg":
		return &Avg{Field: req("field")}
	case "max":
		return &Max{Field: req("field")}
	case "min":
		return &Min{Field: req("field")}
	case "sum":
		return &Sum{Field: req("field"), Distinct: flag("distinct")}
	case "groupArray":
		return &GroupArray{Field: req("field"), OrderBy: sub("orderBy")}
	case "unsafeSql":
		return &UnsafeSQL{SQL: str("sql")}
	case "query":
		qm, ok := m["query"].(map[string]any)
		if !ok {
			d.fail(CodeInvalidExpression, path, "'query' needs 'query'")
			return nil
		}
		return &Subquery{Query: d.query(qm, path+".query")}
	}
	d.fail(CodeUnknownOperator, path, "Unknown operator '%s'", tag)
	return nil
}

func (d *decoder) path(v any, path string) []Segment {
	items := asList(v)
	out := make([]Segment, 0, len(items))
	for i, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, Key(s))
			continue
		}
		n, ok := toInt64(item)
		if !ok {
			d.fail(CodeInvalidExpression, fmt.Sprintf("%s[%d]", path, i), "path segment must be a key or an index, got %v", item)
			return nil
		}
		out = append(out, Index(int(n)))
	}
	return out
}

func asList(v any) []any {
	list, _ := v.([]any)
	return list
}

// toInt64 accepts any integral number, including float64 values with no
// fractional part as produced by encoding/json.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return toInt64(float64(n))
	case float64:
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if n != math.Trunc(n) || math.IsInf(n, 0) || n >= 1<<63 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func normalizeNumber(v any) any {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	case float64, float32, int, int8, int16, int32, uint, uint8, uint16, uint32, uint64:
		if i, ok := toInt64(n); ok {
			return i
		}
	}
	return v
}
