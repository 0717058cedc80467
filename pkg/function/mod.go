package function

import (
	"math"
	"math/big"

	"github.com/marmos91/dbrt/pkg/value"
)

// Mod computes a mod b. Division by zero returns a unchanged rather than an
// error, matching the original implementation's special case. The result
// domain is numeric if either side is numeric, else double if either side
// is double, else integer/bigint matching the widest side.
func Mod(a, b value.Value) (value.Value, error) {
	if a.IsNull || b.IsNull {
		return value.MakeNull(), nil
	}

	if eitherNumeric(a, b) {
		return modNumeric(a, b)
	}
	if eitherDouble(a, b) {
		return modDouble(a, b)
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
			return value.MakeInteger(ia), nil
		}
		return value.MakeInteger(ia % ib), nil
	case value.DomainBigint:
		ia, _ := ca.GetBigint()
		ib, _ := cb.GetBigint()
		if ib == 0 {
			return value.MakeBigint(ia), nil
		}
		return value.MakeBigint(ia % ib), nil
	default:
		return value.Value{}, argError("mod")
	}
}

func modDouble(a, b value.Value) (value.Value, error) {
	da, err := castForArith(a, value.DomainDouble, value.DomainAttrs{})
	if err != nil {
		return value.Value{}, err
	}
	db, err := castForArith(b, value.DomainDouble, value.DomainAttrs{})
	if err != nil {
		return value.Value{}, err
	}
	x, _ := da.GetDouble()
	y, _ := db.GetDouble()
	if y == 0 {
		return value.MakeDouble(x), nil
	}
	return value.MakeDouble(math.Mod(x, y)), nil
}

func modNumeric(a, b value.Value) (value.Value, error) {
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
	numA, _ := na.GetNumeric()
	numB, _ := nb.GetNumeric()
	if numB.Unscaled.Sign() == 0 {
		return na.Clone(), nil
	}

	scale := numA.Scale
	if numB.Scale > scale {
		scale = numB.Scale
	}
	wa := rescaleTo(numA, scale)
	wb := rescaleTo(numB, scale)
	r := new(big.Int).Rem(wa, wb)
	precision := na.Attrs.Precision
	if digitCount(r) > precision {
		precision = digitCount(r)
	}
	return value.MakeNumeric(r, scale, precision), nil
}
