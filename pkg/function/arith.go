package function

import (
	"math/big"

	"github.com/marmos91/dbrt/internal/dbrterr"
	"github.com/marmos91/dbrt/pkg/value"
)

// castForArith coerces src to dst, propagating coercion errors as-is; it is
// shared by every binary arithmetic operator's non-numeric, non-widest
// operand.
func castForArith(src value.Value, dst value.Domain, attrs value.DomainAttrs) (value.Value, error) {
	coerced, result, err := value.Coerce(src, dst, attrs)
	if err != nil || result == value.CoerceIncompatible || result == value.CoerceError {
		if err != nil {
			return value.Value{}, err
		}
		return value.Value{}, dbrterr.ErrCannotCoerce
	}
	if result == value.CoerceOverflow {
		return value.Value{}, dbrterr.ErrOverflow
	}
	return coerced, nil
}

// Add computes a+b following the NULL-propagation/cast/widest-dispatch/
// overflow-check pipeline; numeric participates via its own lane whenever
// either operand is NUMERIC.
func Add(a, b value.Value) (value.Value, error) {
	if a.IsNull || b.IsNull {
		return value.MakeNull(), nil
	}
	if eitherNumeric(a, b) {
		return numericArith(a, b, numericAdd)
	}

	dst := widestArith(a.Domain, b.Domain)
	ca, err := castForArith(a, dst, value.DomainAttrs{})
	if err != nil {
		return value.Value{}, err
	}
	cb, err := castForArith(b, dst, value.DomainAttrs{})
	if err != nil {
		return value.Value{}, err
	}

	switch dst {
	case value.DomainInteger:
		ia, _ := ca.GetInteger()
		ib, _ := cb.GetInteger()
		r, overflow := addOverflow32(ia, ib)
		if overflow {
			return value.Value{}, overflowError(dbrterr.CodeOverflowAdd, "integer add")
		}
		return value.MakeInteger(r), nil
	case value.DomainBigint:
		ia, _ := ca.GetBigint()
		ib, _ := cb.GetBigint()
		r, overflow := addOverflow64(ia, ib)
		if overflow {
			return value.Value{}, overflowError(dbrterr.CodeOverflowAdd, "bigint add")
		}
		return value.MakeBigint(r), nil
	case value.DomainDouble:
		da, _ := ca.GetDouble()
		db, _ := cb.GetDouble()
		r := da + db
		if checkDoubleOverflow(r) {
			return value.Value{}, overflowError(dbrterr.CodeOverflowAdd, "double add")
		}
		return value.MakeDouble(r), nil
	default:
		return value.Value{}, argError("add")
	}
}

// Sub computes a-b; see Add for the shared pipeline.
func Sub(a, b value.Value) (value.Value, error) {
	if a.IsNull || b.IsNull {
		return value.MakeNull(), nil
	}
	if eitherNumeric(a, b) {
		return numericArith(a, b, numericSub)
	}

	dst := widestArith(a.Domain, b.Domain)
	ca, err := castForArith(a, dst, value.DomainAttrs{})
	if err != nil {
		return value.Value{}, err
	}
	cb, err := castForArith(b, dst, value.DomainAttrs{})
	if err != nil {
		return value.Value{}, err
	}

	switch dst {
	case value.DomainInteger:
		ia, _ := ca.GetInteger()
		ib, _ := cb.GetInteger()
		r, overflow := subOverflow32(ia, ib)
		if overflow {
			return value.Value{}, overflowError(dbrterr.CodeOverflowSub, "integer subtract")
		}
		return value.MakeInteger(r), nil
	case value.DomainBigint:
		ia, _ := ca.GetBigint()
		ib, _ := cb.GetBigint()
		r, overflow := subOverflow64(ia, ib)
		if overflow {
			return value.Value{}, overflowError(dbrterr.CodeOverflowSub, "bigint subtract")
		}
		return value.MakeBigint(r), nil
	case value.DomainDouble:
		da, _ := ca.GetDouble()
		db, _ := cb.GetDouble()
		r := da - db
		if checkDoubleOverflow(r) {
			return value.Value{}, overflowError(dbrterr.CodeOverflowSub, "double subtract")
		}
		return value.MakeDouble(r), nil
	default:
		return value.Value{}, argError("subtract")
	}
}

// Mul computes a*b; see Add for the shared pipeline.
func Mul(a, b value.Value) (value.Value, error) {
	if a.IsNull || b.IsNull {
		return value.MakeNull(), nil
	}
	if eitherNumeric(a, b) {
		return numericArith(a, b, numericMul)
	}

	dst := widestArith(a.Domain, b.Domain)
	ca, err := castForArith(a, dst, value.DomainAttrs{})
	if err != nil {
		return value.Value{}, err
	}
	cb, err := castForArith(b, dst, value.DomainAttrs{})
	if err != nil {
		return value.Value{}, err
	}

	switch dst {
	case value.DomainInteger:
		ia, _ := ca.GetInteger()
		ib, _ := cb.GetInteger()
		r, overflow := mulOverflow32(ia, ib)
		if overflow {
			return value.Value{}, overflowError(dbrterr.CodeOverflowMul, "integer multiply")
		}
		return value.MakeInteger(r), nil
	case value.DomainBigint:
		ia, _ := ca.GetBigint()
		ib, _ := cb.GetBigint()
		r, overflow := mulOverflow64(ia, ib)
		if overflow {
			return value.Value{}, overflowError(dbrterr.CodeOverflowMul, "bigint multiply")
		}
		return value.MakeBigint(r), nil
	case value.DomainDouble:
		da, _ := ca.GetDouble()
		db, _ := cb.GetDouble()
		r := da * db
		if checkDoubleOverflow(r) {
			return value.Value{}, overflowError(dbrterr.CodeOverflowMul, "double multiply")
		}
		return value.MakeDouble(r), nil
	default:
		return value.Value{}, argError("multiply")
	}
}

// Div computes a/b; division by zero on int/bigint/double is explicit,
// matching the spec's distinct ZERO_DIVIDE reporting rather than folding it
// into overflow.
func Div(a, b value.Value) (value.Value, error) {
	if a.IsNull || b.IsNull {
		return value.MakeNull(), nil
	}
	if eitherNumeric(a, b) {
		return numericArith(a, b, numericDiv)
	}

	dst := widestArith(a.Domain, b.Domain)
	ca, err := castForArith(a, dst, value.DomainAttrs{})
	if err != nil {
		return value.Value{}, err
	}
	cb, err := castForArith(b, dst, value.DomainAttrs{})
	if err != nil {
		return value.Value{}, err
	}

	switch dst {
	case value.DomainInteger:
		ia, _ := ca.GetInteger()
		ib, _ := cb.GetInteger()
		if ib == 0 {
			return value.Value{}, zeroDivideError()
		}
		if ia == minInt32 && ib == -1 {
			return value.Value{}, overflowError(dbrterr.CodeOverflowDiv, "integer divide")
		}
		return value.MakeInteger(ia / ib), nil
	case value.DomainBigint:
		ia, _ := ca.GetBigint()
		ib, _ := cb.GetBigint()
		if ib == 0 {
			return value.Value{}, zeroDivideError()
		}
		if ia == minInt64 && ib == -1 {
			return value.Value{}, overflowError(dbrterr.CodeOverflowDiv, "bigint divide")
		}
		return value.MakeBigint(ia / ib), nil
	case value.DomainDouble:
		da, _ := ca.GetDouble()
		db, _ := cb.GetDouble()
		if db == 0 {
			return value.Value{}, zeroDivideError()
		}
		r := da / db
		if checkDoubleOverflow(r) {
			return value.Value{}, overflowError(dbrterr.CodeOverflowDiv, "double divide")
		}
		return value.MakeDouble(r), nil
	default:
		return value.Value{}, argError("divide")
	}
}

const (
	minInt64 = -1 << 63
	minInt32 = -1 << 31
)

// Uminus negates a, NULL-propagating and checking the single overflow case
// where the domain's minimum value has no positive counterpart.
func Uminus(a value.Value) (value.Value, error) {
	if a.IsNull {
		return value.MakeNull(), nil
	}
	switch a.Domain {
	case value.DomainInteger:
		i, _ := a.GetInteger()
		r, overflow := uminusOverflow32(i)
		if overflow {
			return value.Value{}, overflowError(dbrterr.CodeOverflowUminus, "integer negate")
		}
		return value.MakeInteger(r), nil
	case value.DomainBigint:
		i, _ := a.GetBigint()
		r, overflow := uminusOverflow64(i)
		if overflow {
			return value.Value{}, overflowError(dbrterr.CodeOverflowUminus, "bigint negate")
		}
		return value.MakeBigint(r), nil
	case value.DomainDouble:
		d, _ := a.GetDouble()
		return value.MakeDouble(-d), nil
	case value.DomainNumeric:
		n, _ := a.GetNumeric()
		return value.MakeNumeric(new(big.Int).Neg(n.Unscaled), n.Scale, a.Attrs.Precision), nil
	default:
		return value.Value{}, argError("negate")
	}
}

// numericOp is the shape shared by numericAdd/numericSub/numericMul/
// numericDiv: given both operands' numeric payloads and the wider side's
// precision, it returns the unscaled result and its scale.
type numericOp func(a, b value.Numeric, precision int) (*big.Int, int, error)

// numericArith coerces whichever operand isn't already NUMERIC, picks the
// wider precision, and applies op to build the result value.
func numericArith(a, b value.Value, op numericOp) (value.Value, error) {
	attrs := a.Attrs
	if a.Domain != value.DomainNumeric {
		attrs = b.Attrs
	}
	na, err := castForArith(a, value.DomainNumeric, attrs)
	if err != nil {
		return value.Value{}, err
	}
	nb, err := castForArith(b, value.DomainNumeric, attrs)
	if err != nil {
		return value.Value{}, err
	}

	precision := na.Attrs.Precision
	if nb.Attrs.Precision > precision {
		precision = nb.Attrs.Precision
	}

	numA, _ := na.GetNumeric()
	numB, _ := nb.GetNumeric()
	unscaled, scale, err := op(numA, numB, precision)
	if err != nil {
		return value.Value{}, err
	}
	resultPrecision := precision
	if digitCount(unscaled) > resultPrecision {
		resultPrecision = digitCount(unscaled)
	}
	return value.MakeNumeric(unscaled, scale, resultPrecision), nil
}
