// Package query assembles query descriptions with a typed, immutable
// builder and executes them through a store.Driver.
//
// STATES:
//
//	New(opts...)                        Builder
//	  .With(name, q)                    Builder (adds a CTE)
//	  .From(table, shape)               FromQuery
//	    .InnerJoin / LeftJoin / ...     FromQuery (accumulates rows)
//	    .Scope(fn)                      FromQuery (narrows the first row)
//	    .Where(fn)                      FromQuery
//	    .Field / Fields / Select /
//	     SelectTuple / SelectAll        SelectQuery
//	      .Where / OrderBy / GroupBy /
//	       Limit / Offset / Distinct    SelectQuery
//	      .Get / All / Iterate /
//	       ToObject / Explain / SQL     (FinalQuery)
//
// Every method returns a new value; the receiver is never modified, so a
// partially built query can be reused as the base of several queries.
//
// Callbacks receive one pick.Row per table in join order. Outer joins
// wrap the rows that may be missing: LeftJoin the new row, RightJoin the
// previous rows, FullJoin all of them.
//
// TABLE SCHEMAS:
//
// A TableSchema maps a logical table onto a physical one. With Scope and
// ScopeCondition one physical table can host several logical row types,
// e.g. an envelope table keyed by entityType whose payload column holds
// the entity:
//
//	schema := map[string]query.TableSchema{
//	    "users": {
//	        Table:          "entities",
//	        Scope:          query.EnvelopeScope("payload"),
//	        ScopeCondition: query.Discriminator("entityType", "users"),
//	    },
//	}
//
// RESULTS:
//
// Rows decode per column type (see MapperFor): JSON columns are parsed,
// booleans read back from 1 and 0.
package query
