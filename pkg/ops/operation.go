package ops

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the resolved kind of a vertex's computation.
type Kind int

const (
	// KindUnknown marks a token that is not a valid operation.
	KindUnknown Kind = iota
	// KindLiteral is a numeric constant.
	KindLiteral
	// KindSum adds all arguments.
	KindSum
	// KindProduct multiplies all arguments.
	KindProduct
	// KindExp raises e to its single argument.
	KindExp
)

// Operator tokens accepted in operation tables.
const (
	TokenSum     = "+"
	TokenProduct = "*"
	TokenExp     = "exp"
)

var kindNames = map[Kind]string{
	KindUnknown: "unknown",
	KindLiteral: "literal",
	KindSum:     "sum",
	KindProduct: "product",
	KindExp:     "exp",
}

// String returns a lowercase name for the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Operation is the computation assigned to a vertex.
type Operation struct {
	Kind  Kind
	Value float64 // set for KindLiteral
	Raw   string  // token as written in the input
}

// Literal returns a literal operation with the given value.
func Literal(v float64) Operation {
	return Operation{Kind: KindLiteral, Value: v, Raw: strconv.FormatFloat(v, 'g', -1, 64)}
}

// Sum returns the n-ary sum operation.
func Sum() Operation { return Operation{Kind: KindSum, Raw: TokenSum} }

// Product returns the n-ary product operation.
func Product() Operation { return Operation{Kind: KindProduct, Raw: TokenProduct} }

// Exp returns the unary exponential operation.
func Exp() Operation { return Operation{Kind: KindExp, Raw: TokenExp} }

// ParseOperation resolves a raw token. Surrounding whitespace is ignored.
// Tokens that are neither operators nor decimal numerals yield KindUnknown.
func ParseOperation(token string) Operation {
	token = strings.TrimSpace(token)
	switch token {
	case TokenSum:
		return Sum()
	case TokenProduct:
		return Product()
	case TokenExp:
		return Exp()
	}
	if isDecimal(token) {
		if v, err := strconv.ParseFloat(token, 64); err == nil {
			return Operation{Kind: KindLiteral, Value: v, Raw: token}
		}
	}
	return Operation{Kind: KindUnknown, Raw: token}
}

// IsLiteral reports whether the operation is a numeric constant.
func (o Operation) IsLiteral() bool { return o.Kind == KindLiteral }

// IsOperator reports whether the operation needs arguments (sum, product or exp).
func (o Operation) IsOperator() bool {
	return o.Kind == KindSum || o.Kind == KindProduct || o.Kind == KindExp
}

// String returns the token as written in the input.
func (o Operation) String() string { return o.Raw }

// isDecimal accepts an optional leading '-', digits, and at most one '.',
// with at least one digit overall.
func isDecimal(s string) bool {
	s = strings.TrimPrefix(s, "-")
	digits, dots := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}
