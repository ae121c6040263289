package io

import (
	"strings"

	apperr "github.com/matzehuels/arceval/pkg/errors"
	"github.com/matzehuels/arceval/pkg/graph"
)

// Prefix renders g in prefix notation.
//
// Vertices are traversed depth-first, starting from every not yet visited
// vertex in lexicographic order, and the resulting terms are concatenated.
// A vertex with children renders as "v(c0,c1,...)" with children in ordinal
// order, a leaf as "v", and a child that was already visited as "child()".
//
// Prefix returns an [apperr.ErrCodeCycle] error for cyclic graphs.
func Prefix(g *graph.Graph) (string, error) {
	if cycle := graph.FindCycle(g); cycle != nil {
		return "", apperr.New(apperr.ErrCodeCycle, "graph contains a cycle (%s); prefix notation is undefined", strings.Join(cycle, " -> "))
	}

	type frame struct {
		v        string
		children []graph.Arc
		next     int
	}

	var b strings.Builder
	visited := make(map[string]bool, g.VertexCount())

	for _, start := range g.Vertices() {
		if visited[start] {
			continue
		}
		visited[start] = true
		stack := []frame{{v: start, children: g.Children(start)}}
		b.WriteString(start)
		if len(stack[0].children) > 0 {
			b.WriteByte('(')
		}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(top.children) {
				if len(top.children) > 0 {
					b.WriteByte(')')
				}
				stack = stack[:len(stack)-1]
				continue
			}
			if top.next > 0 {
				b.WriteByte(',')
			}
			c := top.children[top.next].To
			top.next++

			if visited[c] {
				b.WriteString(c)
				b.WriteString("()")
				continue
			}
			visited[c] = true
			b.WriteString(c)
			children := g.Children(c)
			if len(children) > 0 {
				b.WriteByte('(')
			}
			stack = append(stack, frame{v: c, children: children})
		}
	}
	return b.String(), nil
}
