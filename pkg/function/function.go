// Package function implements the scalar arithmetic and built-in function
// kernel: NULL propagation, domain coercion, widest-type dispatch and
// overflow-checked arithmetic over the value model. Every exported operator
// follows the same pipeline: a NULL operand short-circuits to a NULL result
// before any casting or dispatch is attempted.
package function

import (
	"math"

	"github.com/marmos91/dbrt/internal/dbrterr"
	"github.com/marmos91/dbrt/pkg/value"
)

func argError(fn string) error {
	return &dbrterr.Record{
		Kind:     dbrterr.KindArithmetic,
		Code:     dbrterr.CodeFunctionArg,
		Severity: dbrterr.SeverityError,
		Message:  "function argument out of domain: " + fn,
	}
}

func overflowError(code int, op string) error {
	return &dbrterr.Record{
		Kind:     dbrterr.KindArithmetic,
		Code:     code,
		Severity: dbrterr.SeverityError,
		Message:  "arithmetic overflow in " + op,
	}
}

func zeroDivideError() error {
	return &dbrterr.Record{
		Kind:     dbrterr.KindArithmetic,
		Code:     dbrterr.CodeDivisionByZero,
		Severity: dbrterr.SeverityError,
		Message:  "division by zero",
	}
}

// widestArith ranks int < bigint < double for arithmetic dispatch; numeric
// is handled by callers as its own lane since it doesn't fit the linear
// widening order.
func widestArith(a, b value.Domain) value.Domain {
	rank := func(d value.Domain) int {
		switch d {
		case value.DomainInteger:
			return 0
		case value.DomainBigint:
			return 1
		case value.DomainDouble:
			return 2
		default:
			return -1
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}

// eitherNumeric reports whether either operand is already NUMERIC, the
// condition under which arithmetic dispatch picks the numeric lane instead
// of the int/bigint/double ladder.
func eitherNumeric(a, b value.Value) bool {
	return a.Domain == value.DomainNumeric || b.Domain == value.DomainNumeric
}

// eitherDouble reports whether either operand is DOUBLE, the condition under
// which Mod falls back to double arithmetic.
func eitherDouble(a, b value.Value) bool {
	return a.Domain == value.DomainDouble || b.Domain == value.DomainDouble
}

func checkDoubleOverflow(f float64) bool {
	return math.IsInf(f, 0) || math.IsNaN(f)
}
