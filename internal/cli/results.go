package cli

import (
	"context"
	"strconv"

	"github.com/roach88/pickaxe/internal/query"
)

// printResults runs q and prints its rows: a table in text mode, a list of
// objects (or of value lists for positional projections) in JSON mode.
func printResults(formatter *OutputFormatter, ctx context.Context, q query.FinalQuery) error {
	results, err := q.All(ctx)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeExecute, "running query", err)
	}
	positional := q.Query().Select.Positional()

	if formatter.Format == "json" {
		rows := make([]any, len(results))
		for i, r := range results {
			if positional {
				rows[i] = r.Values()
			} else {
				rows[i] = r.Map()
			}
		}
		return formatter.Success(rows)
	}

	values := make([][]any, len(results))
	for i, r := range results {
		values[i] = r.Values()
	}
	return formatter.Table(resultHeader(q, results), values)
}

// resultHeader names the columns of results. Unnamed tuple columns are
// numbered from 1.
func resultHeader(q query.FinalQuery, results []query.Result) []string {
	var names []string
	if len(results) > 0 {
		names = results[0].Names()
	} else {
		for _, c := range q.Query().Select.Columns {
			names = append(names, c.Name)
		}
	}
	if len(names) == 0 {
		return []string{"*"}
	}
	header := make([]string, len(names))
	for i, n := range names {
		if n == "" {
			n = strconv.Itoa(i + 1)
		}
		header[i] = n
	}
	return header
}
