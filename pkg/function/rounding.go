package function

import (
	"math"
	"math/big"

	"github.com/marmos91/dbrt/internal/dbrterr"
	"github.com/marmos91/dbrt/pkg/value"
)

// Floor rounds toward negative infinity, preserving domain: INTEGER and
// BIGINT are already integral and pass through unchanged, NUMERIC is floored
// to scale 0 and keeps its precision (raised only if the floored value has
// more digits), DOUBLE uses math.Floor.
func Floor(a value.Value) (value.Value, error) {
	return roundToward(a, math.Floor, func(n value.Numeric) *big.Int {
		return floorNumeric(n)
	})
}

// Ceil rounds toward positive infinity; see Floor.
func Ceil(a value.Value) (value.Value, error) {
	return roundToward(a, math.Ceil, func(n value.Numeric) *big.Int {
		return ceilNumeric(n)
	})
}

func floorNumeric(n value.Numeric) *big.Int {
	if n.Scale == 0 {
		return new(big.Int).Set(n.Unscaled)
	}
	div := pow10Big(n.Scale)
	q, r := new(big.Int).QuoRem(n.Unscaled, div, new(big.Int))
	if r.Sign() < 0 {
		q.Sub(q, big.NewInt(1))
	}
	return q
}

func ceilNumeric(n value.Numeric) *big.Int {
	if n.Scale == 0 {
		return new(big.Int).Set(n.Unscaled)
	}
	div := pow10Big(n.Scale)
	q, r := new(big.Int).QuoRem(n.Unscaled, div, new(big.Int))
	if r.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

func roundToward(a value.Value, doubleFn func(float64) float64, numericFn func(value.Numeric) *big.Int) (value.Value, error) {
	if a.IsNull {
		return value.MakeNull(), nil
	}
	switch a.Domain {
	case value.DomainInteger, value.DomainBigint:
		return a.Clone(), nil
	case value.DomainDouble:
		d, _ := a.GetDouble()
		return value.MakeDouble(doubleFn(d)), nil
	case value.DomainNumeric:
		n, _ := a.GetNumeric()
		whole := numericFn(n)
		precision := a.Attrs.Precision
		if digitCount(whole) > precision {
			precision = digitCount(whole)
		}
		return value.MakeNumeric(whole, 0, precision), nil
	default:
		return value.Value{}, argError("floor/ceil")
	}
}

// Abs returns the absolute value, preserving domain.
func Abs(a value.Value) (value.Value, error) {
	if a.IsNull {
		return value.MakeNull(), nil
	}
	switch a.Domain {
	case value.DomainInteger:
		i, _ := a.GetInteger()
		r, overflow := uminusOverflow32(i)
		if i < 0 {
			if overflow {
				return value.Value{}, overflowError(dbrterr.CodeOverflowUminus, "integer abs")
			}
			return value.MakeInteger(r), nil
		}
		return value.MakeInteger(i), nil
	case value.DomainBigint:
		i, _ := a.GetBigint()
		r, overflow := uminusOverflow64(i)
		if i < 0 {
			if overflow {
				return value.Value{}, overflowError(dbrterr.CodeOverflowUminus, "bigint abs")
			}
			return value.MakeBigint(r), nil
		}
		return value.MakeBigint(i), nil
	case value.DomainDouble:
		d, _ := a.GetDouble()
		return value.MakeDouble(math.Abs(d)), nil
	case value.DomainNumeric:
		n, _ := a.GetNumeric()
		return value.MakeNumeric(new(big.Int).Abs(n.Unscaled), n.Scale, a.Attrs.Precision), nil
	default:
		return value.Value{}, argError("abs")
	}
}

// Sign returns -1, 0 or 1 as an INTEGER regardless of the input's domain.
func Sign(a value.Value) (value.Value, error) {
	if a.IsNull {
		return value.MakeNull(), nil
	}
	switch a.Domain {
	case value.DomainInteger:
		i, _ := a.GetInteger()
		return value.MakeInteger(int32(sign(int64(i)))), nil
	case value.DomainBigint:
		i, _ := a.GetBigint()
		return value.MakeInteger(int32(sign(i))), nil
	case value.DomainDouble:
		d, _ := a.GetDouble()
		switch {
		case d > 0:
			return value.MakeInteger(1), nil
		case d < 0:
			return value.MakeInteger(-1), nil
		default:
			return value.MakeInteger(0), nil
		}
	case value.DomainNumeric:
		n, _ := a.GetNumeric()
		return value.MakeInteger(int32(n.Unscaled.Sign())), nil
	default:
		return value.Value{}, argError("sign")
	}
}

func sign(n int64) int64 {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

// Round performs decimal rounding to n digits after the point (n may be
// negative). NUMERIC rounds as a digit-string operation so no float64
// intermediate can introduce artefacts; INTEGER and BIGINT are returned
// unchanged for n >= 0 and take the same digit-string path for negative n;
// DOUBLE rounds in double.
func Round(a value.Value, digits int32) (value.Value, error) {
	if a.IsNull {
		return value.MakeNull(), nil
	}
	return roundOrTrunc(a, digits, roundNumeric, math.Round)
}

// Trunc is Round without the half-up adjustment.
func Trunc(a value.Value, digits int32) (value.Value, error) {
	if a.IsNull {
		return value.MakeNull(), nil
	}
	return roundOrTrunc(a, digits, truncNumeric, math.Trunc)
}

func roundOrTrunc(a value.Value, digits int32, numericFn func(value.Numeric, int) *big.Int, doubleFn func(float64) float64) (value.Value, error) {
	switch a.Domain {
	case value.DomainInteger, value.DomainBigint:
		if digits >= 0 {
			return a.Clone(), nil
		}
		return roundIntegralAtNegativeDigits(a, digits, numericFn)
	case value.DomainDouble:
		d, _ := a.GetDouble()
		scale := math.Pow10(int(digits))
		return value.MakeDouble(doubleFn(d*scale) / scale), nil
	case value.DomainNumeric:
		n, _ := a.GetNumeric()
		unscaled := numericFn(n, int(digits))
		newScale := int(digits)
		if newScale < 0 {
			unscaled.Mul(unscaled, pow10Big(-newScale))
			newScale = 0
		}
		precision := a.Attrs.Precision
		if digitCount(unscaled) > precision {
			precision = digitCount(unscaled)
		}
		return value.MakeNumeric(unscaled, newScale, precision), nil
	default:
		return value.Value{}, argError("round/trunc")
	}
}

// roundIntegralAtNegativeDigits handles round(123, -1) style calls on an
// already-integral domain by routing through the numeric digit-string path
// at scale 0, then casting back.
func roundIntegralAtNegativeDigits(a value.Value, digits int32, numericFn func(value.Numeric, int) *big.Int) (value.Value, error) {
	var unscaled *big.Int
	switch a.Domain {
	case value.DomainInteger:
		i, _ := a.GetInteger()
		unscaled = big.NewInt(int64(i))
	case value.DomainBigint:
		i, _ := a.GetBigint()
		unscaled = big.NewInt(i)
	}
	result := numericFn(value.Numeric{Unscaled: unscaled, Scale: 0}, int(digits))
	result.Mul(result, pow10Big(int(-digits)))
	if a.Domain == value.DomainInteger {
		if !result.IsInt64() || result.Int64() > math.MaxInt32 || result.Int64() < math.MinInt32 {
			return value.Value{}, overflowError(dbrterr.CodeOverflowUminus, "integer round")
		}
		return value.MakeInteger(int32(result.Int64())), nil
	}
	if !result.IsInt64() {
		return value.Value{}, overflowError(dbrterr.CodeOverflowUminus, "bigint round")
	}
	return value.MakeBigint(result.Int64()), nil
}
