package ops

import (
	"math"
	"testing"
)

func TestParseOperation(t *testing.T) {
	tests := []struct {
		token string
		kind  Kind
		value float64
	}{
		{"+", KindSum, 0},
		{"*", KindProduct, 0},
		{"exp", KindExp, 0},
		{" exp ", KindExp, 0},
		{"3", KindLiteral, 3},
		{"4.5", KindLiteral, 4.5},
		{"-2", KindLiteral, -2},
		{".5", KindLiteral, 0.5},
		{"5.", KindLiteral, 5},
		{"007", KindLiteral, 7},
		{"-", KindUnknown, 0},
		{".", KindUnknown, 0},
		{"1.2.3", KindUnknown, 0},
		{"1e3", KindUnknown, 0},
		{"+5", KindUnknown, 0},
		{"--1", KindUnknown, 0},
		{"sqrt", KindUnknown, 0},
		{"EXP", KindUnknown, 0},
		{"", KindUnknown, 0},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			op := ParseOperation(tt.token)
			if op.Kind != tt.kind {
				t.Fatalf("ParseOperation(%q).Kind = %v, want %v", tt.token, op.Kind, tt.kind)
			}
			if tt.kind == KindLiteral && math.Abs(op.Value-tt.value) > 1e-12 {
				t.Errorf("ParseOperation(%q).Value = %v, want %v", tt.token, op.Value, tt.value)
			}
		})
	}
}

func TestParseOperationKeepsRaw(t *testing.T) {
	if got := ParseOperation("sqrt").Raw; got != "sqrt" {
		t.Errorf("Raw = %q, want sqrt", got)
	}
	if got := ParseOperation(" 4.50 ").String(); got != "4.50" {
		t.Errorf("String() = %q, want 4.50", got)
	}
}

func TestOperationPredicates(t *testing.T) {
	tests := []struct {
		op       Operation
		literal  bool
		operator bool
	}{
		{Literal(1), true, false},
		{Sum(), false, true},
		{Product(), false, true},
		{Exp(), false, true},
		{ParseOperation("foo"), false, false},
	}
	for _, tt := range tests {
		if got := tt.op.IsLiteral(); got != tt.literal {
			t.Errorf("%v.IsLiteral() = %v, want %v", tt.op, got, tt.literal)
		}
		if got := tt.op.IsOperator(); got != tt.operator {
			t.Errorf("%v.IsOperator() = %v, want %v", tt.op, got, tt.operator)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindProduct.String() != "product" {
		t.Errorf("KindProduct.String() = %q", KindProduct.String())
	}
	if Kind(42).String() != "Kind(42)" {
		t.Errorf("Kind(42).String() = %q", Kind(42).String())
	}
}
