package ops

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	apperr "github.com/matzehuels/arceval/pkg/errors"
	"github.com/matzehuels/arceval/pkg/graph"
)

// Syntax identifies which input format a table was loaded from.
type Syntax string

const (
	SyntaxJSON  Syntax = "json"
	SyntaxLines Syntax = "lines"
)

var (
	// ErrMalformedEntry is wrapped by every syntax error of the line format.
	ErrMalformedEntry = errors.New("malformed operation entry")

	// ErrDuplicateVertex is returned when a vertex is defined more than once.
	ErrDuplicateVertex = errors.New("vertex defined more than once")
)

// Entry is one table row.
type Entry struct {
	Vertex    string
	Operation Operation
	Line      int // 1-based source line, 0 for JSON documents
}

// Table maps vertices to their operations.
//
// The zero value is an empty, usable table.
type Table struct {
	entries map[string]Entry
	syntax  Syntax
}

// NewTable builds a table from a vertex -> operation map.
func NewTable(m map[string]Operation) *Table {
	t := &Table{entries: make(map[string]Entry, len(m))}
	for v, op := range m {
		t.entries[v] = Entry{Vertex: v, Operation: op}
	}
	return t
}

// Lookup returns the operation for v.
func (t *Table) Lookup(v string) (Operation, bool) {
	e, ok := t.entries[v]
	return e.Operation, ok
}

// Has reports whether v is defined.
func (t *Table) Has(v string) bool {
	_, ok := t.entries[v]
	return ok
}

// Vertices returns the defined vertices in lexicographic order.
func (t *Table) Vertices() []string {
	return slices.Sorted(maps.Keys(t.entries))
}

// Entries returns all rows ordered by vertex.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, v := range t.Vertices() {
		out = append(out, t.entries[v])
	}
	return out
}

// Len returns the number of defined vertices.
func (t *Table) Len() int { return len(t.entries) }

// Syntax returns the format the table was loaded from, or "" for tables
// built with [NewTable].
func (t *Table) Syntax() Syntax { return t.syntax }

// LoadOptions configures [Load].
type LoadOptions struct {
	// Source names the input in error messages (usually the file path).
	Source string
}

// Load reads an operation table from r.
//
// The whole input is first decoded as a JSON object. Only when that fails
// does Load parse it as "vertex:operation" lines. Errors are
// [apperr.ErrCodeParse] errors; line-format errors wrap a [*graph.LineError].
func Load(r io.Reader, opts LoadOptions) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "read operations")
	}

	if t, ok, err := loadJSON(data); ok {
		if err != nil {
			return t, apperr.Wrap(apperr.ErrCodeParse, sourceError(opts.Source, err), "invalid operation table")
		}
		return t, nil
	}
	return loadLines(data, opts.Source)
}

// LoadFile opens path and loads it with [Load]. A missing file is reported as
// an [apperr.ErrCodeFileNotFound] error.
func LoadFile(path string, opts LoadOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "operations file %s not found", path)
		}
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	if opts.Source == "" {
		opts.Source = path
	}
	return Load(f, opts)
}

func sourceError(source string, err error) error {
	if source == "" {
		return err
	}
	return fmt.Errorf("%s: %w", source, err)
}

// loadJSON decodes data as a single JSON object. ok is false when data is not
// a JSON object at all, in which case the caller falls back to line syntax.
// Once the document is recognised as an object, content problems are
// reported as errors rather than triggering the fallback.
func loadJSON(data []byte) (t *Table, ok bool, err error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, false, nil
	}

	t = &Table{entries: make(map[string]Entry), syntax: SyntaxJSON}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	if _, err := dec.Token(); err != nil {
		return t, true, err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return t, true, err
		}
		vertex := tok.(string)
		if strings.TrimSpace(vertex) == "" {
			return t, true, fmt.Errorf("%w: empty vertex", ErrMalformedEntry)
		}

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return t, true, err
		}
		var token string
		switch v := raw.(type) {
		case string:
			token = v
		case json.Number:
			token = v.String()
		default:
			return t, true, fmt.Errorf("%w: vertex %q: value must be a string or number, got %s", ErrMalformedEntry, vertex, jsonKind(raw))
		}
		if err := t.add(vertex, token, 0); err != nil {
			return t, true, err
		}
	}
	return t, true, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

// loadLines parses "vertex:operation" lines, failing at the first bad line.
func loadLines(data []byte, source string) (*Table, error) {
	t := &Table{entries: make(map[string]Entry), syntax: SyntaxLines}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		parts := strings.Split(text, ":")
		if len(parts) != 2 {
			return t, lineError(source, line, fmt.Errorf("%w %q: expected exactly one ':'", ErrMalformedEntry, text))
		}
		vertex, token := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if vertex == "" {
			return t, lineError(source, line, fmt.Errorf("%w %q: empty vertex", ErrMalformedEntry, text))
		}
		if token == "" {
			return t, lineError(source, line, fmt.Errorf("%w %q: empty operation", ErrMalformedEntry, text))
		}
		if err := t.add(vertex, token, line); err != nil {
			return t, lineError(source, line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return t, lineError(source, line+1, err)
	}
	return t, nil
}

func lineError(source string, line int, err error) error {
	return apperr.Wrap(apperr.ErrCodeParse, &graph.LineError{Source: source, Line: line, Err: err}, "invalid operation table")
}

func (t *Table) add(vertex, token string, line int) error {
	if _, dup := t.entries[vertex]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateVertex, vertex)
	}
	t.entries[vertex] = Entry{Vertex: vertex, Operation: ParseOperation(token), Line: line}
	return nil
}
