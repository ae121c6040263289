// Package ops loads the operation table that assigns each vertex its
// computation.
//
// # Operations
//
// An [Operation] is resolved once, when the table is loaded:
//
//   - a decimal numeral such as "3", "-2.5" or ".5" is a literal
//   - "+" is an n-ary sum (an empty sum is 0)
//   - "*" is an n-ary product (an empty product is 1)
//   - "exp" is the unary exponential
//
// Any other token is kept as [KindUnknown] with its raw text, so the
// validator can report every bad token at once instead of failing the load.
//
// # Input Formats
//
// [Load] first tries to read the whole input as one JSON object:
//
//	{"a": "+", "b": "3", "c": 4}
//
// If the input is not JSON it falls back to one "vertex:operation" pair per
// line:
//
//	a:+
//	b:3
//	c:4
//
// The line syntax stops at the first malformed line and reports its 1-based
// number through a [graph.LineError].
package ops
