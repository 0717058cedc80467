package function

import (
	"math"

	"github.com/marmos91/dbrt/internal/dbrterr"
	"github.com/marmos91/dbrt/pkg/value"
)

func toDouble(name string, a value.Value) (float64, bool, error) {
	if a.IsNull {
		return 0, true, nil
	}
	cv, err := castForArith(a, value.DomainDouble, value.DomainAttrs{})
	if err != nil {
		return 0, false, err
	}
	d, _ := cv.GetDouble()
	return d, false, nil
}

func unaryDoubleFn(name string, a value.Value, fn func(float64) (float64, error)) (value.Value, error) {
	d, isNull, err := toDouble(name, a)
	if err != nil {
		return value.Value{}, err
	}
	if isNull {
		return value.MakeNull(), nil
	}
	r, err := fn(d)
	if err != nil {
		return value.Value{}, err
	}
	if checkDoubleOverflow(r) {
		return value.Value{}, overflowError(overflowCodeFor(name), name)
	}
	return value.MakeDouble(r), nil
}

func overflowCodeFor(name string) int {
	if name == "exp" {
		return dbrterr.CodeOverflowExp
	}
	if name == "pow" {
		return dbrterr.CodeOverflowPow
	}
	return dbrterr.CodeOverflowExp
}

// Exp returns e**x, erroring when the result overflows.
func Exp(a value.Value) (value.Value, error) {
	return unaryDoubleFn("exp", a, func(x float64) (float64, error) { return math.Exp(x), nil })
}

// Sqrt returns the square root; negative operands are a domain error.
func Sqrt(a value.Value) (value.Value, error) {
	return unaryDoubleFn("sqrt", a, func(x float64) (float64, error) {
		if x < 0 {
			return 0, argError("sqrt")
		}
		return math.Sqrt(x), nil
	})
}

// Ln returns the natural logarithm; non-positive operands are a domain
// error.
func Ln(a value.Value) (value.Value, error) {
	return unaryDoubleFn("ln", a, func(x float64) (float64, error) {
		if x <= 0 {
			return 0, argError("ln")
		}
		return math.Log(x), nil
	})
}

// Log2 returns the base-2 logarithm; non-positive operands are a domain
// error.
func Log2(a value.Value) (value.Value, error) {
	return unaryDoubleFn("log2", a, func(x float64) (float64, error) {
		if x <= 0 {
			return 0, argError("log2")
		}
		return math.Log2(x), nil
	})
}

// Log10 returns the base-10 logarithm; non-positive operands are a domain
// error.
func Log10(a value.Value) (value.Value, error) {
	return unaryDoubleFn("log10", a, func(x float64) (float64, error) {
		if x <= 0 {
			return 0, argError("log10")
		}
		return math.Log10(x), nil
	})
}

// Log returns the logarithm of v in the given base; both base and v must be
// positive and base must not equal 1.
func Log(base, v value.Value) (value.Value, error) {
	if base.IsNull || v.IsNull {
		return value.MakeNull(), nil
	}
	b, _, err := toDouble("log", base)
	if err != nil {
		return value.Value{}, err
	}
	x, _, err := toDouble("log", v)
	if err != nil {
		return value.Value{}, err
	}
	if b <= 0 || b == 1 || x <= 0 {
		return value.Value{}, argError("log")
	}
	r := math.Log(x) / math.Log(b)
	if checkDoubleOverflow(r) {
		return value.Value{}, overflowError(dbrterr.CodeOverflowExp, "log")
	}
	return value.MakeDouble(r), nil
}

// Pow returns a**b. A negative base with a non-integer exponent is a domain
// error; the result is checked for overflow.
func Pow(a, b value.Value) (value.Value, error) {
	if a.IsNull || b.IsNull {
		return value.MakeNull(), nil
	}
	base, _, err := toDouble("pow", a)
	if err != nil {
		return value.Value{}, err
	}
	exp, _, err := toDouble("pow", b)
	if err != nil {
		return value.Value{}, err
	}
	if base < 0 && exp != math.Trunc(exp) {
		return value.Value{}, argError("pow")
	}
	r := math.Pow(base, exp)
	if checkDoubleOverflow(r) {
		return value.Value{}, overflowError(dbrterr.CodeOverflowPow, "pow")
	}
	return value.MakeDouble(r), nil
}

// Sin, Cos, Tan are unrestricted over the reals; Tan does not guard the
// vertical asymptote at pi/2, matching the spec's explicit non-guard.
func Sin(a value.Value) (value.Value, error) {
	return unaryDoubleFn("sin", a, func(x float64) (float64, error) { return math.Sin(x), nil })
}

func Cos(a value.Value) (value.Value, error) {
	return unaryDoubleFn("cos", a, func(x float64) (float64, error) { return math.Cos(x), nil })
}

func Tan(a value.Value) (value.Value, error) {
	return unaryDoubleFn("tan", a, func(x float64) (float64, error) { return math.Tan(x), nil })
}

// Asin requires |x| <= 1.
func Asin(a value.Value) (value.Value, error) {
	return unaryDoubleFn("asin", a, func(x float64) (float64, error) {
		if x < -1 || x > 1 {
			return 0, argError("asin")
		}
		return math.Asin(x), nil
	})
}

// Acos requires |x| <= 1.
func Acos(a value.Value) (value.Value, error) {
	return unaryDoubleFn("acos", a, func(x float64) (float64, error) {
		if x < -1 || x > 1 {
			return 0, argError("acos")
		}
		return math.Acos(x), nil
	})
}

func Atan(a value.Value) (value.Value, error) {
	return unaryDoubleFn("atan", a, func(x float64) (float64, error) { return math.Atan(x), nil })
}

func Atan2(y, x value.Value) (value.Value, error) {
	if y.IsNull || x.IsNull {
		return value.MakeNull(), nil
	}
	dy, _, err := toDouble("atan2", y)
	if err != nil {
		return value.Value{}, err
	}
	dx, _, err := toDouble("atan2", x)
	if err != nil {
		return value.Value{}, err
	}
	return value.MakeDouble(math.Atan2(dy, dx)), nil
}

// Cot returns the cotangent; cot(0) returns NULL rather than an error or
// infinity.
func Cot(a value.Value) (value.Value, error) {
	d, isNull, err := toDouble("cot", a)
	if err != nil {
		return value.Value{}, err
	}
	if isNull {
		return value.MakeNull(), nil
	}
	t := math.Tan(d)
	if t == 0 {
		return value.MakeNull(), nil
	}
	return value.MakeDouble(1 / t), nil
}
