package function

import (
	"math/big"

	"github.com/marmos91/dbrt/internal/dbrterr"
	"github.com/marmos91/dbrt/pkg/value"
)

var bigTen = big.NewInt(10)

func pow10Big(n int) *big.Int {
	if n <= 0 {
		return big.NewInt(1)
	}
	return new(big.Int).Exp(bigTen, big.NewInt(int64(n)), nil)
}

// digitCount returns the number of base-10 digits in the magnitude of n.
func digitCount(n *big.Int) int {
	if n.Sign() == 0 {
		return 1
	}
	abs := new(big.Int).Abs(n)
	return len(abs.Text(10))
}

func fitsPrecision(unscaled *big.Int, precision int) bool {
	return digitCount(unscaled) <= precision
}

// rescaleTo returns n's unscaled magnitude expressed at the target scale.
func rescaleTo(n value.Numeric, scale int) *big.Int {
	if n.Scale == scale {
		return new(big.Int).Set(n.Unscaled)
	}
	if scale > n.Scale {
		return new(big.Int).Mul(n.Unscaled, pow10Big(scale-n.Scale))
	}
	q := new(big.Int)
	q.Quo(n.Unscaled, pow10Big(n.Scale-scale))
	return q
}

// numericAdd adds a and b at their common (wider) scale, checking the
// result still fits precision; on carry the caller may grow precision by
// one, matching the domain-preserving rule for numeric arithmetic.
func numericAdd(a, b value.Numeric, precision int) (*big.Int, int, error) {
	scale := a.Scale
	if b.Scale > scale {
		scale = b.Scale
	}
	sum := new(big.Int).Add(rescaleTo(a, scale), rescaleTo(b, scale))
	if !fitsPrecision(sum, precision) {
		if fitsPrecision(sum, precision+1) {
			return sum, scale, nil
		}
		return nil, scale, overflowError(dbrterr.CodeOverflowAdd, "numeric add")
	}
	return sum, scale, nil
}

func numericSub(a, b value.Numeric, precision int) (*big.Int, int, error) {
	scale := a.Scale
	if b.Scale > scale {
		scale = b.Scale
	}
	diff := new(big.Int).Sub(rescaleTo(a, scale), rescaleTo(b, scale))
	if !fitsPrecision(diff, precision) {
		if fitsPrecision(diff, precision+1) {
			return diff, scale, nil
		}
		return nil, scale, overflowError(dbrterr.CodeOverflowSub, "numeric subtract")
	}
	return diff, scale, nil
}

func numericMul(a, b value.Numeric, precision int) (*big.Int, int, error) {
	scale := a.Scale + b.Scale
	product := new(big.Int).Mul(a.Unscaled, b.Unscaled)
	if !fitsPrecision(product, precision) {
		return nil, scale, overflowError(dbrterr.CodeOverflowMul, "numeric multiply")
	}
	return product, scale, nil
}

// numericDiv divides at a fixed output scale (the wider of the two inputs'
// scales, matching the library's rounding-on-division convention) using
// big.Rat for exactness before truncating to that scale.
func numericDiv(a, b value.Numeric, precision int) (*big.Int, int, error) {
	if b.Unscaled.Sign() == 0 {
		return nil, 0, zeroDivideError()
	}
	scale := a.Scale
	if b.Scale > scale {
		scale = b.Scale
	}
	num := new(big.Rat).SetFrac(rescaleTo(a, scale+b.Scale), b.Unscaled)
	quo := new(big.Int).Quo(num.Num(), num.Denom())
	if !fitsPrecision(quo, precision) {
		return nil, scale, overflowError(dbrterr.CodeOverflowDiv, "numeric divide")
	}
	return quo, scale, nil
}

// roundNumeric performs decimal rounding as a digit-string operation: it
// rescales to n fractional digits using round-half-up on the discarded
// remainder, avoiding any float64 intermediate.
func roundNumeric(n value.Numeric, digits int) *big.Int {
	if digits >= n.Scale {
		return new(big.Int).Mul(n.Unscaled, pow10Big(digits-n.Scale))
	}
	drop := n.Scale - digits
	divisor := pow10Big(drop)
	q, r := new(big.Int).QuoRem(n.Unscaled, divisor, new(big.Int))
	half := new(big.Int).Quo(divisor, big.NewInt(2))
	absR := new(big.Int).Abs(r)
	if absR.Cmp(half) >= 0 {
		if n.Unscaled.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	return q
}

// truncNumeric is roundNumeric without the half-up adjustment.
func truncNumeric(n value.Numeric, digits int) *big.Int {
	if digits >= n.Scale {
		return new(big.Int).Mul(n.Unscaled, pow10Big(digits-n.Scale))
	}
	drop := n.Scale - digits
	q := new(big.Int).Quo(n.Unscaled, pow10Big(drop))
	return q
}
