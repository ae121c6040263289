package graph

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrInvalidVertexID is returned by [Graph.AddArc] and [Graph.AddVertex]
	// when a vertex identifier is empty.
	ErrInvalidVertexID = errors.New("vertex ID must not be empty")

	// ErrNegativeOrdinal is returned by [Graph.AddArc] when the ordinal is
	// below zero. Ordinals are argument positions and start at 0.
	ErrNegativeOrdinal = errors.New("ordinal must not be negative")

	// ErrDuplicateArc is returned by [Graph.AddArc] when the graph rejects
	// duplicates and an identical (from, to, ordinal) triple already exists.
	ErrDuplicateArc = errors.New("duplicate arc")
)

// DuplicatePolicy controls how exact duplicate arcs are handled.
type DuplicatePolicy int

const (
	// DuplicateReject makes a repeated (from, to, ordinal) triple an error.
	DuplicateReject DuplicatePolicy = iota
	// DuplicateKeep stores repeated triples as independent arcs.
	DuplicateKeep
)

// String returns the policy name used in configuration and flags.
func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateReject:
		return "reject"
	case DuplicateKeep:
		return "keep"
	}
	return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
}

// ParseDuplicatePolicy converts a policy name into a DuplicatePolicy.
// The empty string selects [DuplicateReject].
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch s {
	case "", "reject":
		return DuplicateReject, nil
	case "keep":
		return DuplicateKeep, nil
	}
	return DuplicateReject, fmt.Errorf("invalid duplicate policy: %q (must be 'reject' or 'keep')", s)
}

// Arc is a directed, ordinal-tagged edge: To is the Ordinal-th argument of From.
type Arc struct {
	From    string
	To      string
	Ordinal int
	Line    int // 1-based source line, 0 when the arc was not parsed from text
}

// key identifies an arc for duplicate detection, ignoring its source line.
type key struct {
	from, to string
	ordinal  int
}

// String formats the arc in the input syntax, e.g. "(a,b,0)".
func (a Arc) String() string {
	return fmt.Sprintf("(%s,%s,%d)", a.From, a.To, a.Ordinal)
}

// Graph is a directed graph of ordinal-tagged arcs.
//
// The zero value is not usable - use New to create a Graph.
type Graph struct {
	vertices   map[string]struct{}
	arcs       []Arc
	outgoing   map[string][]int // vertex -> indices into arcs
	incoming   map[string][]int // vertex -> indices into arcs
	seen       map[key]struct{}
	duplicates DuplicatePolicy
}

// New creates an empty graph using the given duplicate policy.
func New(policy DuplicatePolicy) *Graph {
	return &Graph{
		vertices:   make(map[string]struct{}),
		outgoing:   make(map[string][]int),
		incoming:   make(map[string][]int),
		seen:       make(map[key]struct{}),
		duplicates: policy,
	}
}

// DuplicatePolicy returns the policy the graph was created with.
func (g *Graph) DuplicatePolicy() DuplicatePolicy { return g.duplicates }

// AddVertex adds an isolated vertex. Adding an existing vertex is a no-op.
func (g *Graph) AddVertex(id string) error {
	if id == "" {
		return ErrInvalidVertexID
	}
	g.vertices[id] = struct{}{}
	return nil
}

// AddArc adds an arc and both of its endpoints.
//
// Endpoints and arc are added together, so every arc always references
// vertices present in the graph. Under [DuplicateReject] an arc identical to
// an existing one returns [ErrDuplicateArc] and leaves the graph unchanged.
func (g *Graph) AddArc(a Arc) error {
	if a.From == "" || a.To == "" {
		return ErrInvalidVertexID
	}
	if a.Ordinal < 0 {
		return ErrNegativeOrdinal
	}
	k := key{a.From, a.To, a.Ordinal}
	if _, dup := g.seen[k]; dup && g.duplicates == DuplicateReject {
		return fmt.Errorf("%w %s", ErrDuplicateArc, a)
	}
	g.seen[k] = struct{}{}

	g.vertices[a.From] = struct{}{}
	g.vertices[a.To] = struct{}{}
	idx := len(g.arcs)
	g.arcs = append(g.arcs, a)
	g.outgoing[a.From] = append(g.outgoing[a.From], idx)
	g.incoming[a.To] = append(g.incoming[a.To], idx)
	return nil
}

// WithVertices returns a copy of g that additionally contains ids as
// isolated vertices. Identifiers already present are left untouched.
// The receiver is not modified.
func (g *Graph) WithVertices(ids []string) *Graph {
	c := New(g.duplicates)
	c.arcs = slices.Clone(g.arcs)
	maps.Copy(c.vertices, g.vertices)
	maps.Copy(c.seen, g.seen)
	for v, idx := range g.outgoing {
		c.outgoing[v] = slices.Clone(idx)
	}
	for v, idx := range g.incoming {
		c.incoming[v] = slices.Clone(idx)
	}
	for _, id := range ids {
		_ = c.AddVertex(id)
	}
	return c
}

// Vertices returns all vertex IDs in lexicographic order.
func (g *Graph) Vertices() []string {
	return slices.Sorted(maps.Keys(g.vertices))
}

// Arcs returns a copy of all arcs in insertion order.
func (g *Graph) Arcs() []Arc { return slices.Clone(g.arcs) }

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int { return len(g.vertices) }

// ArcCount returns the number of arcs.
func (g *Graph) ArcCount() int { return len(g.arcs) }

// HasVertex reports whether id is a vertex of the graph.
func (g *Graph) HasVertex(id string) bool {
	_, ok := g.vertices[id]
	return ok
}

// Children returns the outgoing arcs of id sorted by ordinal ascending.
// Arcs sharing an ordinal keep their insertion order. Returns nil for a
// vertex without outgoing arcs.
func (g *Graph) Children(id string) []Arc {
	idx := g.outgoing[id]
	if len(idx) == 0 {
		return nil
	}
	out := make([]Arc, len(idx))
	for i, j := range idx {
		out[i] = g.arcs[j]
	}
	slices.SortStableFunc(out, func(a, b Arc) int { return a.Ordinal - b.Ordinal })
	return out
}

// Parents returns the IDs of vertices with an arc into id, in arc order.
func (g *Graph) Parents(id string) []string {
	idx := g.incoming[id]
	if len(idx) == 0 {
		return nil
	}
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = g.arcs[j].From
	}
	return out
}

// OutDegree returns the number of arcs leaving id.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of arcs entering id.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// Roots returns vertices with in-degree 0, in lexicographic order.
func (g *Graph) Roots() []string {
	var roots []string
	for _, v := range g.Vertices() {
		if len(g.incoming[v]) == 0 {
			roots = append(roots, v)
		}
	}
	return roots
}

// Leaves returns vertices with out-degree 0, in lexicographic order.
func (g *Graph) Leaves() []string {
	var leaves []string
	for _, v := range g.Vertices() {
		if len(g.outgoing[v]) == 0 {
			leaves = append(leaves, v)
		}
	}
	return leaves
}
