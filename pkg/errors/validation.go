package errors

import (
	"strings"
	"unicode"
)

// maxVertexIDLength bounds vertex identifiers accepted from structured input.
const maxVertexIDLength = 256

// ValidateVertexID checks that id can be written back as an arc group.
//
// Vertex identifiers are opaque, case-sensitive tokens. They must be
// non-empty and must not contain whitespace, control characters or any of
// the arc delimiters "(", ")" and ",". The text parser can never produce such
// identifiers; this check guards vertices that arrive through JSON import or
// the HTTP API.
func ValidateVertexID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "vertex ID cannot be empty")
	}
	if len(id) > maxVertexIDLength {
		return New(ErrCodeInvalidInput, "vertex ID too long (max %d characters)", maxVertexIDLength)
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "vertex ID %q contains whitespace or control characters", id)
		}
	}
	if strings.ContainsAny(id, "(),") {
		return New(ErrCodeInvalidInput, "vertex ID %q contains arc delimiters", id)
	}
	return nil
}
