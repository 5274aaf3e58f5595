// Package pick provides typed handles over query expressions.
//
// A Pick pairs a shape.Type with the queryir.Expr computing the value.
// Operators on picks build new expressions instead of evaluating
// anything, and return the pick matching the result type:
//
//	user.String("firstname").Eq("Toto")        // Bool
//	user.Array("mails").Some(func(m pick.Pick) any {
//		return pick.AsString(m).Like("%@example.com")
//	})                                          // Bool
//	user.Object("address").String("streetName") // String
//
// Make chooses the variant from the type kind. Capabilities are
// expressed as interfaces (Scalar, Ordered, Pattern, Sequence, Mapping,
// Structured) implemented by composition of the variants.
//
// Misuse never panics: asking for an unknown property or converting a
// pick to the wrong kind yields a pick whose expression is invalid, and
// compiling it reports ErrUnknownProperty or ErrKindMismatch.
package pick
