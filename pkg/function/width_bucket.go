package function

import (
	"math/big"

	"github.com/marmos91/dbrt/pkg/value"
)

func toRat(a value.Value) (*big.Rat, bool, error) {
	if a.IsNull {
		return nil, true, nil
	}
	switch a.Domain {
	case value.DomainInteger:
		i, _ := a.GetInteger()
		return new(big.Rat).SetInt64(int64(i)), false, nil
	case value.DomainBigint:
		i, _ := a.GetBigint()
		return new(big.Rat).SetInt64(i), false, nil
	case value.DomainNumeric:
		n, _ := a.GetNumeric()
		return new(big.Rat).SetFrac(n.Unscaled, pow10Big(n.Scale)), false, nil
	default:
		cv, err := castForArith(a, value.DomainDouble, value.DomainAttrs{})
		if err != nil {
			return nil, false, err
		}
		d, _ := cv.GetDouble()
		r := new(big.Rat)
		if r.SetFloat64(d) == nil {
			return nil, false, argError("width_bucket")
		}
		return r, false, nil
	}
}

// WidthBucket assigns v to one of n equal-width buckets spanning [lo, hi),
// or (hi, lo] when lo > hi; values outside the range map to bucket 0 (below)
// or n+1 (above). The comparison is performed in exact rational arithmetic
// so an operand carried as NUMERIC or BIGINT never loses precision.
func WidthBucket(v, lo, hi, n value.Value) (value.Value, error) {
	if v.IsNull || lo.IsNull || hi.IsNull || n.IsNull {
		return value.MakeNull(), nil
	}

	nBig, _, err := toBigint(n)
	if err != nil {
		return value.Value{}, err
	}
	if nBig < 1 || nBig >= (int64(1)<<31) {
		return value.Value{}, argError("width_bucket")
	}

	vr, _, err := toRat(v)
	if err != nil {
		return value.Value{}, err
	}
	lor, _, err := toRat(lo)
	if err != nil {
		return value.Value{}, err
	}
	hir, _, err := toRat(hi)
	if err != nil {
		return value.Value{}, err
	}

	ascending := lor.Cmp(hir) < 0
	nRat := new(big.Rat).SetInt64(nBig)

	var below, above bool
	if ascending {
		below = vr.Cmp(lor) < 0
		above = vr.Cmp(hir) >= 0
	} else {
		below = vr.Cmp(lor) > 0
		above = vr.Cmp(hir) <= 0
	}
	if below {
		return value.MakeInteger(0), nil
	}
	if above {
		return value.MakeInteger(int32(nBig + 1)), nil
	}

	span := new(big.Rat).Sub(hir, lor)
	span.Abs(span)
	width := new(big.Rat).Quo(span, nRat)

	offset := new(big.Rat).Sub(vr, lor)
	offset.Abs(offset)
	bucketRat := new(big.Rat).Quo(offset, width)
	bucket := new(big.Int).Quo(bucketRat.Num(), bucketRat.Denom())
	result := bucket.Int64() + 1
	if result > nBig {
		result = nBig
	}
	return value.MakeInteger(int32(result)), nil
}
