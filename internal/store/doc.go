// Package store executes compiled queries on SQLite.
//
// Store implements the Driver contract used by the query builder:
//
//	stmt, _ := s.Prepare(ctx, sql)
//	rec, _ := stmt.Bind(args...).Get(ctx)
//	recs, _ := stmt.Bind(args...).Raw(true).All(ctx)
//	for rec, err := range stmt.Bind(args...).Iterate(ctx) { ... }
//
// Both SQLite drivers are registered: "sqlite3" (mattn/go-sqlite3, cgo)
// and "sqlite" (modernc.org/sqlite, pure Go). The JSON1 functions the
// compiler emits are built into both.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - one open connection, so ":memory:" databases are shared by all calls
//
// # Writing Rows
//
// Insert and InsertAll write fixture rows. Maps and slices are stored as
// RFC 8785 canonical JSON text (see queryir.MarshalCanonical), booleans as
// 1 and 0. Tables are never created here.
package store
