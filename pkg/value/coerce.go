package value

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/marmos91/dbrt/internal/dbrterr"
)

// CoerceResult classifies the outcome of Coerce, consulted before arithmetic
// and before wire-packing.
type CoerceResult int

const (
	CoerceCompatible CoerceResult = iota
	CoerceOverflow
	CoerceIncompatible
	CoerceError
)

// numericRank orders domains by widening priority: int < bigint < double;
// numeric has its own lane and is handled separately by callers.
func numericRank(d Domain) int {
	switch d {
	case DomainInteger:
		return 0
	case DomainBigint:
		return 1
	case DomainDouble:
		return 2
	default:
		return -1
	}
}

// Coerce converts src to dst's domain, returning the converted value and a
// CoerceResult. Coercion from numeric to double is expected to be lossy.
func Coerce(src Value, dst Domain, attrs DomainAttrs) (Value, CoerceResult, error) {
	if src.IsNull {
		return DomainInit(dst, attrs.Precision, attrs.Scale), CoerceCompatible, nil
	}

	if src.Domain == dst {
		return src.Clone(), CoerceCompatible, nil
	}

	switch dst {
	case DomainInteger:
		return coerceToInteger(src)
	case DomainBigint:
		return coerceToBigint(src)
	case DomainDouble:
		return coerceToDouble(src)
	case DomainNumeric:
		return coerceToNumeric(src, attrs)
	case DomainVarchar:
		return coerceToVarchar(src, attrs)
	default:
		return Value{}, CoerceIncompatible, cannotCoerce(src.Domain, dst)
	}
}

func cannotCoerce(from, to Domain) error {
	return &dbrterr.Record{
		Kind:     dbrterr.KindCoercion,
		Severity: dbrterr.SeverityError,
		Message:  "cannot coerce " + from.String() + " to " + to.String(),
	}
}

func overflowOn(d Domain) error {
	return &dbrterr.Record{
		Kind:     dbrterr.KindCoercion,
		Severity: dbrterr.SeverityError,
		Message:  "data overflow on " + d.String(),
	}
}

func coerceToInteger(src Value) (Value, CoerceResult, error) {
	switch src.Domain {
	case DomainBigint:
		if src.bi > math.MaxInt32 || src.bi < math.MinInt32 {
			return Value{}, CoerceOverflow, overflowOn(DomainInteger)
		}
		return MakeInteger(int32(src.bi)), CoerceCompatible, nil
	case DomainDouble:
		if src.d > math.MaxInt32 || src.d < math.MinInt32 {
			return Value{}, CoerceOverflow, overflowOn(DomainInteger)
		}
		return MakeInteger(int32(src.d)), CoerceCompatible, nil
	case DomainNumeric:
		bi := scaledToBigInt(src.num)
		if !bi.IsInt64() || bi.Int64() > math.MaxInt32 || bi.Int64() < math.MinInt32 {
			return Value{}, CoerceOverflow, overflowOn(DomainInteger)
		}
		return MakeInteger(int32(bi.Int64())), CoerceCompatible, nil
	case DomainVarchar:
		n, ok := parseNumericString(string(src.buf))
		if !ok {
			return Value{}, CoerceIncompatible, cannotCoerce(DomainVarchar, DomainInteger)
		}
		return coerceToInteger(n)
	default:
		return Value{}, CoerceIncompatible, cannotCoerce(src.Domain, DomainInteger)
	}
}

func coerceToBigint(src Value) (Value, CoerceResult, error) {
	switch src.Domain {
	case DomainInteger:
		return MakeBigint(int64(src.i)), CoerceCompatible, nil
	case DomainDouble:
		if src.d > math.MaxInt64 || src.d < math.MinInt64 {
			return Value{}, CoerceOverflow, overflowOn(DomainBigint)
		}
		return MakeBigint(int64(src.d)), CoerceCompatible, nil
	case DomainNumeric:
		bi := scaledToBigInt(src.num)
		if !bi.IsInt64() {
			return Value{}, CoerceOverflow, overflowOn(DomainBigint)
		}
		return MakeBigint(bi.Int64()), CoerceCompatible, nil
	case DomainVarchar:
		n, ok := parseNumericString(string(src.buf))
		if !ok {
			return Value{}, CoerceIncompatible, cannotCoerce(DomainVarchar, DomainBigint)
		}
		return coerceToBigint(n)
	default:
		return Value{}, CoerceIncompatible, cannotCoerce(src.Domain, DomainBigint)
	}
}

func coerceToDouble(src Value) (Value, CoerceResult, error) {
	switch src.Domain {
	case DomainInteger:
		return MakeDouble(float64(src.i)), CoerceCompatible, nil
	case DomainBigint:
		return MakeDouble(float64(src.bi)), CoerceCompatible, nil
	case DomainNumeric:
		f, _ := new(big.Float).SetInt(src.num.Unscaled).Float64()
		scale := math.Pow10(src.num.Scale)
		return MakeDouble(f / scale), CoerceCompatible, nil
	case DomainVarchar:
		n, ok := parseNumericString(string(src.buf))
		if !ok {
			return Value{}, CoerceIncompatible, cannotCoerce(DomainVarchar, DomainDouble)
		}
		return coerceToDouble(n)
	default:
		return Value{}, CoerceIncompatible, cannotCoerce(src.Domain, DomainDouble)
	}
}

func coerceToNumeric(src Value, attrs DomainAttrs) (Value, CoerceResult, error) {
	precision, scale := clampNumericDomain(attrs.Precision, attrs.Scale)
	switch src.Domain {
	case DomainInteger:
		return MakeNumeric(big.NewInt(int64(src.i)*pow10(scale)), scale, precision), CoerceCompatible, nil
	case DomainBigint:
		return MakeNumeric(big.NewInt(src.bi*pow10(scale)), scale, precision), CoerceCompatible, nil
	case DomainDouble:
		scaled := src.d * math.Pow10(scale)
		bi, _ := big.NewFloat(scaled).Int(nil)
		return MakeNumeric(bi, scale, precision), CoerceCompatible, nil
	case DomainVarchar:
		n, ok := parseNumericString(string(src.buf))
		if !ok {
			return Value{}, CoerceIncompatible, cannotCoerce(DomainVarchar, DomainNumeric)
		}
		return coerceToNumeric(n, attrs)
	default:
		return Value{}, CoerceIncompatible, cannotCoerce(src.Domain, DomainNumeric)
	}
}

func coerceToVarchar(src Value, attrs DomainAttrs) (Value, CoerceResult, error) {
	var s string
	switch src.Domain {
	case DomainInteger:
		s = strconv.FormatInt(int64(src.i), 10)
	case DomainBigint:
		s = strconv.FormatInt(src.bi, 10)
	case DomainDouble:
		s = strconv.FormatFloat(src.d, 'g', -1, 64)
	case DomainNumeric:
		s = formatNumeric(src.num)
	default:
		return Value{}, CoerceIncompatible, cannotCoerce(src.Domain, DomainVarchar)
	}
	return MakeVarchar([]byte(s), attrs.DeclaredLen, attrs.Collation), CoerceCompatible, nil
}

// parseNumericString casts a string to the most specific numeric type that
// fits it, per the value model's string-to-number coercion rule.
func parseNumericString(s string) (Value, bool) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 32); err == nil {
		return MakeInteger(int32(i)), true
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return MakeBigint(i), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return MakeDouble(f), true
	}
	return Value{}, false
}

func pow10(n int) int64 {
	r := int64(1)
	for i := 0; i < n; i++ {
		r *= 10
	}
	return r
}

func scaledToBigInt(n Numeric) *big.Int {
	if n.Scale == 0 {
		return new(big.Int).Set(n.Unscaled)
	}
	div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Scale)), nil)
	q := new(big.Int)
	q.Quo(n.Unscaled, div)
	return q
}

func formatNumeric(n Numeric) string {
	s := n.Unscaled.String()
	if n.Scale == 0 {
		return s
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for len(s) <= n.Scale {
		s = "0" + s
	}
	cut := len(s) - n.Scale
	out := s[:cut] + "." + s[cut:]
	if neg {
		out = "-" + out
	}
	return out
}
