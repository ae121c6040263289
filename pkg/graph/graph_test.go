package graph

import (
	"errors"
	"slices"
	"testing"
)

func TestAddArc(t *testing.T) {
	g := New(DuplicateReject)
	if err := g.AddArc(Arc{From: "a", To: "b", Ordinal: 0}); err != nil {
		t.Fatalf("AddArc() error: %v", err)
	}
	if g.VertexCount() != 2 {
		t.Errorf("VertexCount() = %d, want 2", g.VertexCount())
	}
	if g.ArcCount() != 1 {
		t.Errorf("ArcCount() = %d, want 1", g.ArcCount())
	}
	if !g.HasVertex("a") || !g.HasVertex("b") {
		t.Error("both endpoints should be vertices")
	}
}

func TestAddArcErrors(t *testing.T) {
	tests := []struct {
		name string
		arc  Arc
		want error
	}{
		{"empty from", Arc{To: "b"}, ErrInvalidVertexID},
		{"empty to", Arc{From: "a"}, ErrInvalidVertexID},
		{"negative ordinal", Arc{From: "a", To: "b", Ordinal: -1}, ErrNegativeOrdinal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(DuplicateReject)
			if err := g.AddArc(tt.arc); !errors.Is(err, tt.want) {
				t.Errorf("AddArc(%v) error = %v, want %v", tt.arc, err, tt.want)
			}
			if g.VertexCount() != 0 {
				t.Errorf("failed AddArc should not add vertices, got %d", g.VertexCount())
			}
		})
	}
}

func TestDuplicatePolicy(t *testing.T) {
	arc := Arc{From: "a", To: "b", Ordinal: 0}

	t.Run("reject", func(t *testing.T) {
		g := New(DuplicateReject)
		_ = g.AddArc(arc)
		if err := g.AddArc(arc); !errors.Is(err, ErrDuplicateArc) {
			t.Errorf("AddArc() duplicate error = %v, want ErrDuplicateArc", err)
		}
		if g.ArcCount() != 1 {
			t.Errorf("ArcCount() = %d, want 1", g.ArcCount())
		}
	})

	t.Run("keep", func(t *testing.T) {
		g := New(DuplicateKeep)
		_ = g.AddArc(arc)
		if err := g.AddArc(arc); err != nil {
			t.Errorf("AddArc() duplicate error = %v, want nil", err)
		}
		if g.ArcCount() != 2 {
			t.Errorf("ArcCount() = %d, want 2", g.ArcCount())
		}
	})

	t.Run("different ordinal is not a duplicate", func(t *testing.T) {
		g := New(DuplicateReject)
		_ = g.AddArc(arc)
		if err := g.AddArc(Arc{From: "a", To: "b", Ordinal: 1}); err != nil {
			t.Errorf("AddArc() error = %v, want nil", err)
		}
	})
}

func TestParseDuplicatePolicy(t *testing.T) {
	tests := []struct {
		input   string
		want    DuplicatePolicy
		wantErr bool
	}{
		{"", DuplicateReject, false},
		{"reject", DuplicateReject, false},
		{"keep", DuplicateKeep, false},
		{"dedupe", DuplicateReject, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuplicatePolicy(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDuplicatePolicy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDuplicatePolicy(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !tt.wantErr && tt.input != "" && got.String() != tt.input {
				t.Errorf("String() = %q, want %q", got.String(), tt.input)
			}
		})
	}
}

func TestChildrenSortedByOrdinal(t *testing.T) {
	g := New(DuplicateReject)
	_ = g.AddArc(Arc{From: "a", To: "z", Ordinal: 2})
	_ = g.AddArc(Arc{From: "a", To: "x", Ordinal: 0})
	_ = g.AddArc(Arc{From: "a", To: "y", Ordinal: 1})

	var got []string
	for _, c := range g.Children("a") {
		got = append(got, c.To)
	}
	want := []string{"x", "y", "z"}
	if !slices.Equal(got, want) {
		t.Errorf("Children(a) = %v, want %v", got, want)
	}

	// Sorting an already-sorted child list must not change it.
	again := g.Children("a")
	if !slices.IsSortedFunc(again, func(a, b Arc) int { return a.Ordinal - b.Ordinal }) {
		t.Error("Children should be sorted by ordinal")
	}

	if g.Children("x") != nil {
		t.Error("Children of a leaf should be nil")
	}
}

func TestChildrenStableOnEqualOrdinals(t *testing.T) {
	g := New(DuplicateReject)
	_ = g.AddArc(Arc{From: "a", To: "c", Ordinal: 0})
	_ = g.AddArc(Arc{From: "a", To: "b", Ordinal: 0})

	children := g.Children("a")
	if children[0].To != "c" || children[1].To != "b" {
		t.Errorf("equal ordinals should keep insertion order, got %v", children)
	}
}

func TestRootsAndLeaves(t *testing.T) {
	// a -> b -> d, a -> c, e isolated
	g := New(DuplicateReject)
	_ = g.AddArc(Arc{From: "a", To: "b", Ordinal: 0})
	_ = g.AddArc(Arc{From: "a", To: "c", Ordinal: 1})
	_ = g.AddArc(Arc{From: "b", To: "d", Ordinal: 0})
	_ = g.AddVertex("e")

	if got, want := g.Roots(), []string{"a", "e"}; !slices.Equal(got, want) {
		t.Errorf("Roots() = %v, want %v", got, want)
	}
	if got, want := g.Leaves(), []string{"c", "d", "e"}; !slices.Equal(got, want) {
		t.Errorf("Leaves() = %v, want %v", got, want)
	}
	if g.InDegree("b") != 1 || g.OutDegree("a") != 2 {
		t.Errorf("InDegree(b) = %d, OutDegree(a) = %d", g.InDegree("b"), g.OutDegree("a"))
	}
	if got := g.Parents("d"); !slices.Equal(got, []string{"b"}) {
		t.Errorf("Parents(d) = %v, want [b]", got)
	}
}

func TestVerticesSorted(t *testing.T) {
	g := New(DuplicateReject)
	_ = g.AddArc(Arc{From: "z", To: "a", Ordinal: 0})
	_ = g.AddArc(Arc{From: "m", To: "B", Ordinal: 0})

	want := []string{"B", "a", "m", "z"}
	if got := g.Vertices(); !slices.Equal(got, want) {
		t.Errorf("Vertices() = %v, want %v", got, want)
	}
}

func TestWithVertices(t *testing.T) {
	g := New(DuplicateReject)
	_ = g.AddArc(Arc{From: "a", To: "b", Ordinal: 0})

	c := g.WithVertices([]string{"b", "x"})

	if c.VertexCount() != 3 {
		t.Errorf("copy VertexCount() = %d, want 3", c.VertexCount())
	}
	if g.VertexCount() != 2 {
		t.Errorf("original VertexCount() = %d, want 2", g.VertexCount())
	}
	if c.ArcCount() != 1 || len(c.Children("a")) != 1 {
		t.Error("copy should keep arcs and adjacency")
	}

	// The copy keeps its own duplicate index.
	if err := c.AddArc(Arc{From: "a", To: "b", Ordinal: 0}); !errors.Is(err, ErrDuplicateArc) {
		t.Errorf("copy should reject duplicates of original arcs, got %v", err)
	}
	_ = c.AddArc(Arc{From: "x", To: "a", Ordinal: 0})
	if g.HasVertex("x") || g.ArcCount() != 1 {
		t.Error("modifying the copy must not affect the original")
	}
}

func TestArcString(t *testing.T) {
	a := Arc{From: "a", To: "b", Ordinal: 3}
	if a.String() != "(a,b,3)" {
		t.Errorf("String() = %q, want %q", a.String(), "(a,b,3)")
	}
}
