package graph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	apperr "github.com/matzehuels/arceval/pkg/errors"
)

// maxLineLength bounds a single input line. Long single-line arc lists are
// common, so this is far above bufio's 64KiB default.
const maxLineLength = 4 << 20

// ErrMalformedArc is wrapped by every syntax error reported for an arc group.
var ErrMalformedArc = errors.New("malformed arc")

// ParseOptions configures [Parse].
type ParseOptions struct {
	// Duplicates selects how exact duplicate arcs are treated.
	Duplicates DuplicatePolicy
	// Source names the input in error messages (usually the file path).
	Source string
}

// LineError reports the first malformed line of a line-oriented input.
type LineError struct {
	Source string // input name, may be empty
	Line   int    // 1-based physical line number
	Err    error
}

// Error implements the error interface.
func (e *LineError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying cause.
func (e *LineError) Unwrap() error { return e.Err }

// Parse reads arc text from r and builds a Graph.
//
// Each non-blank line holds one or more groups "(from,to,ordinal)", optionally
// separated by commas. Whitespace anywhere on the line is ignored. Line
// numbers are physical, so blank lines still advance the count.
//
// Parsing stops at the first malformed line. The returned graph then holds
// every arc from the preceding lines, and the error is an
// [apperr.ErrCodeParse] error wrapping a [*LineError].
func Parse(r io.Reader, opts ParseOptions) (*Graph, error) {
	g := New(opts.Duplicates)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		arcs, err := parseLine(text)
		if err != nil {
			return g, lineError(opts.Source, line, err)
		}
		for _, a := range arcs {
			a.Line = line
			if err := g.AddArc(a); err != nil {
				return g, lineError(opts.Source, line, err)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return g, lineError(opts.Source, line+1, err)
	}
	return g, nil
}

// ParseFile opens path and parses it with [Parse]. A missing file is reported
// as an [apperr.ErrCodeFileNotFound] error.
func ParseFile(path string, opts ParseOptions) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(opts.Duplicates), apperr.Wrap(apperr.ErrCodeFileNotFound, err, "arc file %s not found", path)
		}
		return New(opts.Duplicates), apperr.Wrap(apperr.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	if opts.Source == "" {
		opts.Source = path
	}
	return Parse(f, opts)
}

func lineError(source string, line int, err error) error {
	return apperr.Wrap(apperr.ErrCodeParse, &LineError{Source: source, Line: line, Err: err}, "invalid arc list")
}

// parseLine splits one trimmed, non-blank line into arcs.
func parseLine(s string) ([]Arc, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	var arcs []Arc
	for i := 0; i < len(s); {
		if s[i] != '(' {
			return nil, fmt.Errorf("%w: expected '(' but found %q", ErrMalformedArc, s[i:])
		}
		end := strings.IndexByte(s[i+1:], ')')
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated group %q", ErrMalformedArc, s[i:])
		}
		body := s[i+1 : i+1+end]
		if strings.ContainsRune(body, '(') {
			return nil, fmt.Errorf("%w: nested '(' in %q", ErrMalformedArc, s[i:i+2+end])
		}
		a, err := parseGroup(body)
		if err != nil {
			return nil, err
		}
		arcs = append(arcs, a)

		i += end + 2
		if i < len(s) && s[i] == ',' {
			i++
			if i == len(s) {
				return nil, fmt.Errorf("%w: trailing ','", ErrMalformedArc)
			}
		}
	}
	return arcs, nil
}

// parseGroup parses the inside of one "(from,to,ordinal)" group.
func parseGroup(body string) (Arc, error) {
	group := "(" + body + ")"
	fields := strings.Split(body, ",")
	if len(fields) != 3 {
		return Arc{}, fmt.Errorf("%w %s: expected 3 fields (from,to,ordinal), got %d", ErrMalformedArc, group, len(fields))
	}
	from, to, ord := fields[0], fields[1], fields[2]
	if from == "" || to == "" {
		return Arc{}, fmt.Errorf("%w %s: empty vertex", ErrMalformedArc, group)
	}
	if !isDigits(ord) {
		return Arc{}, fmt.Errorf("%w %s: ordinal %q is not a non-negative integer", ErrMalformedArc, group, ord)
	}
	n, err := strconv.Atoi(ord)
	if err != nil {
		return Arc{}, fmt.Errorf("%w %s: ordinal %q out of range", ErrMalformedArc, group, ord)
	}
	return Arc{From: from, To: to, Ordinal: n}, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
