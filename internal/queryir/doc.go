// Package queryir defines the expression tree and query description that
// sit between the typed builder and the SQL backend.
//
// ARCHITECTURE:
//
//	[pick / query builder] → [queryir.Query] → [querysql] → SQLite JSON1
//
// The builder never renders SQL itself. It only assembles Expr nodes and a
// Query value; the compiler owns path folding, parameter ordering and the
// dialect details.
//
// SEALED INTERFACES:
//
// Expr is a sealed interface using the marker method pattern. Only node
// types declared in this package implement it, so backends can switch
// exhaustively over the concrete nodes:
//
//	switch n := e.(type) {
//	case *Get:
//	    // fold the path
//	case *Eq:
//	    // IS / =
//	default:
//	    // unknown operator
//	}
//
// RECURSION:
//
// A Subquery node embeds a *Query, and a Query embeds Expr trees in its
// projection, filter, joins and CTEs. Both directions go through pointers
// so the recursive variant has a finite size.
//
// INTERCHANGE:
//
// Query is a plain value that survives serialization. Encode and Decode
// convert it to and from a generic tree (JSON or YAML); every expression
// becomes an object tagged with its "operator". Fingerprint hashes the
// canonical JSON of that tree.
package queryir
