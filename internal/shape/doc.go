// Package shape provides the type descriptors that give picks and result
// decoding their structure.
//
// A descriptor is a *Type with a Kind. Scalars are shared values (String,
// Number, Boolean, DateTime, Any); compound descriptors are built with
// Array, Object, Map, Record, Option, Enum, Literal and Union.
//
// Shapes can also be declared in CUE and loaded with ParseShapes/FromCUE,
// or exchanged as generic trees with Encode/Decode.
package shape
