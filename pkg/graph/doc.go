// Package graph provides the ordinal-arc graph that arceval evaluates, the
// line-oriented arc parser that builds it, and cycle detection over it.
//
// # Overview
//
// A computation is described as a set of arcs. Each arc (from, to, ordinal)
// records that vertex "to" is the ordinal-th argument of vertex "from":
//
//	(a,b,0),(a,c,1)
//	(c,d,0)
//
// Here a takes b and c as its first and second arguments, and c takes d.
// Vertices are not declared separately; the vertex set is the union of all
// arc endpoints.
//
// # Parsing
//
// [Parse] reads arc text line by line and stops at the first malformed line,
// returning the graph built so far together with an error that carries the
// 1-based line number (see [LineError]). [ParseFile] is the file-based
// convenience wrapper.
//
// Exact duplicate arcs are rejected by default. Pass [DuplicateKeep] in
// [ParseOptions] to accept them as independent arcs instead.
//
// # Structure
//
// [Graph.Roots] and [Graph.Leaves] expose the structural roles used by the
// validator: vertices with in-degree 0 and out-degree 0 respectively.
// [Graph.Children] returns a vertex's outgoing arcs sorted by ordinal, which
// is the argument order used by the evaluator.
//
// # Cycles
//
// [HasCycle] and [FindCycle] run a depth-first search with a visited set and a
// recursion stack. Both are iterative and keep all state local to the call.
//
// # Concurrency
//
// A Graph is not safe for concurrent modification. Once parsing has finished
// it is treated as immutable and may be read from several goroutines.
package graph
