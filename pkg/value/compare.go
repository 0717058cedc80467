package value

import (
	"bytes"
	"math/big"
)

// CompareResult is the tri-state compare result; UNKNOWN is returned when
// either side is NULL or any element of a set is NULL.
type CompareResult int

const (
	CompareLT CompareResult = iota - 1
	CompareEQ
	CompareGT
	CompareUnknown CompareResult = 2
)

// Compare orders a against b. Same-domain comparisons are a total order;
// cross-domain comparisons implicitly coerce b to a's domain via Coerce.
func Compare(a, b Value) CompareResult {
	if a.IsNull || b.IsNull {
		return CompareUnknown
	}

	if a.Domain != b.Domain {
		coerced, result, err := Coerce(b, a.Domain, a.Attrs)
		if err != nil || result == CoerceIncompatible || result == CoerceError {
			return CompareUnknown
		}
		b = coerced
	}

	switch a.Domain {
	case DomainInteger:
		return compareOrdered(a.i, b.i)
	case DomainBigint:
		return compareOrdered(a.bi, b.bi)
	case DomainDouble:
		return compareOrdered(a.d, b.d)
	case DomainNumeric:
		return compareNumeric(a.num, b.num)
	case DomainVarchar:
		return compareBytes(a.buf, b.buf)
	case DomainVarbit:
		return compareBytes(a.buf, b.buf)
	case DomainDate:
		return compareDate(a.dt, b.dt)
	case DomainTime:
		return compareTime(a.tm, b.tm)
	case DomainDatetime:
		return compareDatetime(a.dtm, b.dtm)
	case DomainOID:
		return compareOID(a.oid, b.oid)
	case DomainSequence:
		return compareSequence(a.seq, b.seq)
	case DomainResultSet:
		return compareOrdered(a.rs, b.rs)
	default:
		return CompareUnknown
	}
}

// Equal reports whether Compare(a, b) == EQ, treating UNKNOWN as not equal.
func Equal(a, b Value) bool {
	return Compare(a, b) == CompareEQ
}

type ordered interface {
	~int32 | ~int64 | ~float64
}

func compareOrdered[T ordered](a, b T) CompareResult {
	switch {
	case a < b:
		return CompareLT
	case a > b:
		return CompareGT
	default:
		return CompareEQ
	}
}

func compareNumeric(a, b Numeric) CompareResult {
	scale := a.Scale
	if b.Scale > scale {
		scale = b.Scale
	}
	au := rescale(a, scale)
	bu := rescale(b, scale)
	switch au.Cmp(bu) {
	case -1:
		return CompareLT
	case 1:
		return CompareGT
	default:
		return CompareEQ
	}
}

func rescale(n Numeric, to int) *big.Int {
	if n.Scale == to {
		return n.Unscaled
	}
	diff := to - n.Scale
	mult := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(diff)), nil)
	return new(big.Int).Mul(n.Unscaled, mult)
}

func compareBytes(a, b []byte) CompareResult {
	switch bytes.Compare(a, b) {
	case -1:
		return CompareLT
	case 1:
		return CompareGT
	default:
		return CompareEQ
	}
}

func compareDate(a, b Date) CompareResult {
	if a.Year != b.Year {
		return compareOrdered(int32(a.Year), int32(b.Year))
	}
	if a.Month != b.Month {
		return compareOrdered(int32(a.Month), int32(b.Month))
	}
	return compareOrdered(int32(a.Day), int32(b.Day))
}

func compareTime(a, b Time) CompareResult {
	return compareOrdered(int32(timeToMS(a)), int32(timeToMS(b)))
}

func timeToMS(t Time) int {
	return ((t.Hour*60+t.Minute)*60+t.Second)*1000 + t.Millisecond
}

func compareDatetime(a, b Datetime) CompareResult {
	if r := compareDate(a.Date, b.Date); r != CompareEQ {
		return r
	}
	return compareOrdered(int32(a.MS), int32(b.MS))
}

func compareOID(a, b OID) CompareResult {
	if a.Volid != b.Volid {
		return compareOrdered(a.Volid, b.Volid)
	}
	if a.Pageid != b.Pageid {
		return compareOrdered(a.Pageid, b.Pageid)
	}
	return compareOrdered(a.Slotid, b.Slotid)
}

func compareSequence(a, b []Value) CompareResult {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i].IsNull || b[i].IsNull {
			return CompareUnknown
		}
		if r := Compare(a[i], b[i]); r != CompareEQ {
			return r
		}
	}
	for _, v := range a[n:] {
		if v.IsNull {
			return CompareUnknown
		}
	}
	for _, v := range b[n:] {
		if v.IsNull {
			return CompareUnknown
		}
	}
	return compareOrdered(int32(len(a)), int32(len(b)))
}
