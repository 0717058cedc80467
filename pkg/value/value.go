package value

import (
	"math"
	"math/big"
)

// OID identifies an object by volume/page/slot/group, the same four
// components the wire codec packs for the OID domain.
type OID struct {
	Volid   int32
	Pageid  int32
	Slotid  int32
	Groupid int32
}

// NullOID is the sentinel OID (-1,-1,-1,0) used throughout the locator
// client to mean "no object".
var NullOID = OID{Volid: -1, Pageid: -1, Slotid: -1, Groupid: 0}

func (o OID) IsNull() bool {
	return o.Volid == -1 && o.Pageid == -1 && o.Slotid == -1
}

// Date is a plain calendar date with no time-of-day component.
type Date struct {
	Year, Month, Day int
}

// Time is a time-of-day with millisecond resolution.
type Time struct {
	Hour, Minute, Second, Millisecond int
}

// Datetime pairs a Date with milliseconds since local midnight, matching the
// wire encoding's (date, time_ms) pair.
type Datetime struct {
	Date Date
	MS   int // milliseconds since midnight
}

// Numeric is a fixed-precision decimal: unscaled integer magnitude (signed)
// plus a scale, packed into a 16-byte buffer on the wire. math/big.Int
// backs the unscaled value; no ecosystem library in the retrieved pack
// implements a tagged fixed-precision decimal, so this layer is
// stdlib-only by necessity (see DESIGN.md).
type Numeric struct {
	Unscaled *big.Int
	Scale    int
}

// Value is the tagged union described by the value model: a Domain plus
// DomainAttrs plus exactly one live payload field, selected by Domain.
// Buffer-backed domains (VARCHAR, VARBIT) track NeedClear explicitly so
// Clear only releases buffers it owns.
type Value struct {
	Domain    Domain
	Attrs     DomainAttrs
	IsNull    bool
	NeedClear bool

	i   int32
	bi  int64
	d   float64
	num Numeric
	buf []byte // varchar bytes or varbit bits, MSB-first packed
	bln int    // varbit bit length
	dt  Date
	tm  Time
	dtm Datetime
	oid OID
	seq []Value
	rs  int64
}

// MakeNull returns the NULL value (I1: is-null bit set, no payload).
func MakeNull() Value {
	return Value{Domain: DomainNull, IsNull: true}
}

// MakeInteger builds a non-null INTEGER value.
func MakeInteger(v int32) Value {
	return Value{Domain: DomainInteger, i: v}
}

// MakeBigint builds a non-null BIGINT value.
func MakeBigint(v int64) Value {
	return Value{Domain: DomainBigint, bi: v}
}

// MakeDouble builds a non-null DOUBLE value.
func MakeDouble(v float64) Value {
	return Value{Domain: DomainDouble, d: v}
}

// MakeNumeric builds a non-null NUMERIC value with the given precision/scale,
// replacing out-of-range precision/scale with defaults (domain_init rule).
func MakeNumeric(unscaled *big.Int, scale, precision int) Value {
	precision, scale = clampNumericDomain(precision, scale)
	return Value{
		Domain: DomainNumeric,
		Attrs:  DomainAttrs{Precision: precision, Scale: scale},
		num:    Numeric{Unscaled: new(big.Int).Set(unscaled), Scale: scale},
	}
}

func clampNumericDomain(precision, scale int) (int, int) {
	if precision < 1 || precision > MaxNumericPrecision {
		precision = MaxNumericPrecision
	}
	if scale < 0 || scale > precision {
		scale = 0
	}
	return precision, scale
}

// MakeVarchar builds a non-null VARCHAR value. The buffer is copied so the
// Value owns it independently of the caller's slice (I4).
func MakeVarchar(s []byte, declaredLen int, collation int32) Value {
	owned := make([]byte, len(s))
	copy(owned, s)
	return Value{
		Domain:    DomainVarchar,
		Attrs:     DomainAttrs{DeclaredLen: declaredLen, Collation: collation},
		buf:       owned,
		NeedClear: true,
	}
}

// MakeVarbit builds a non-null VARBIT value with the given bit length.
func MakeVarbit(bits []byte, bitLen int) Value {
	owned := make([]byte, len(bits))
	copy(owned, bits)
	return Value{
		Domain:    DomainVarbit,
		Attrs:     DomainAttrs{DeclaredLen: bitLen},
		buf:       owned,
		bln:       bitLen,
		NeedClear: true,
	}
}

// MakeDate builds a non-null DATE value.
func MakeDate(d Date) Value { return Value{Domain: DomainDate, dt: d} }

// MakeTime builds a non-null TIME value.
func MakeTime(t Time) Value { return Value{Domain: DomainTime, tm: t} }

// MakeDatetime builds a non-null DATETIME value.
func MakeDatetime(dt Datetime) Value { return Value{Domain: DomainDatetime, dtm: dt} }

// MakeOID builds a non-null OID value.
func MakeOID(o OID) Value { return Value{Domain: DomainOID, oid: o} }

// MakeSequence builds a non-null SEQUENCE value over an ordered set of
// element values, recording each element's domain in Attrs.ElementTypes.
func MakeSequence(elems []Value) Value {
	owned := make([]Value, len(elems))
	copy(owned, elems)
	types := make([]Domain, len(elems))
	for i, e := range elems {
		types[i] = e.Domain
	}
	return Value{
		Domain:    DomainSequence,
		Attrs:     DomainAttrs{ElementTypes: types},
		seq:       owned,
		NeedClear: true,
	}
}

// MakeResultSet builds a non-null RESULTSET value wrapping an opaque handle.
func MakeResultSet(handle int64) Value {
	return Value{Domain: DomainResultSet, rs: handle}
}

// DomainInit builds a zero-payload value of the given domain, clamping
// invalid precision/scale to defaults (warning-severity, not a fault).
func DomainInit(d Domain, precision, scale int) Value {
	v := Value{Domain: d, IsNull: true}
	if d == DomainNumeric {
		v.Attrs.Precision, v.Attrs.Scale = clampNumericDomain(precision, scale)
	}
	return v
}

// DomainMin installs the domain's minimum sentinel value.
func DomainMin(d Domain, attrs DomainAttrs) Value {
	switch d {
	case DomainInteger:
		return MakeInteger(math.MinInt32)
	case DomainBigint:
		return MakeBigint(math.MinInt64)
	case DomainDouble:
		return MakeDouble(-math.MaxFloat64)
	case DomainNumeric:
		p, s := clampNumericDomain(attrs.Precision, attrs.Scale)
		return MakeNumeric(negAllNines(p), s, p)
	case DomainVarchar:
		return MakeVarchar([]byte(" "), attrs.DeclaredLen, attrs.Collation)
	case DomainDate:
		return MakeDate(Date{Year: 1, Month: 1, Day: 1})
	default:
		return DomainInit(d, attrs.Precision, attrs.Scale)
	}
}

// DomainMax installs the domain's maximum sentinel value.
func DomainMax(d Domain, attrs DomainAttrs) Value {
	switch d {
	case DomainInteger:
		return MakeInteger(math.MaxInt32)
	case DomainBigint:
		return MakeBigint(math.MaxInt64)
	case DomainDouble:
		return MakeDouble(math.MaxFloat64)
	case DomainNumeric:
		p, s := clampNumericDomain(attrs.Precision, attrs.Scale)
		return MakeNumeric(allNines(p), s, p)
	case DomainVarchar:
		// 4-byte max codepoint, per spec: U+10FFFF encoded as UTF-8.
		return MakeVarchar([]byte{0xF4, 0x8F, 0xBF, 0xBF}, attrs.DeclaredLen, attrs.Collation)
	case DomainDate:
		return MakeDate(Date{Year: 9999, Month: 12, Day: 31})
	default:
		return DomainInit(d, attrs.Precision, attrs.Scale)
	}
}

// DomainDefault installs the domain's default value (zero/empty).
func DomainDefault(d Domain, attrs DomainAttrs) Value {
	return DomainZero(d, attrs)
}

// DomainZero installs the domain's additive-identity value.
func DomainZero(d Domain, attrs DomainAttrs) Value {
	switch d {
	case DomainInteger:
		return MakeInteger(0)
	case DomainBigint:
		return MakeBigint(0)
	case DomainDouble:
		return MakeDouble(0)
	case DomainNumeric:
		p, s := clampNumericDomain(attrs.Precision, attrs.Scale)
		return MakeNumeric(big.NewInt(0), s, p)
	case DomainVarchar:
		return MakeVarchar(nil, attrs.DeclaredLen, attrs.Collation)
	default:
		return DomainInit(d, attrs.Precision, attrs.Scale)
	}
}

func allNines(precision int) *big.Int {
	s := make([]byte, precision)
	for i := range s {
		s[i] = '9'
	}
	n := new(big.Int)
	n.SetString(string(s), 10)
	return n
}

func negAllNines(precision int) *big.Int {
	return new(big.Int).Neg(allNines(precision))
}

// PreallocateOption controls whether a buffer-backed domain pre-allocates
// its declared-length buffer via ApplyPreallocate even while the value is NULL, so
// a later Put against the same slot does not realloc. original_source's
// db_value_domain_init/db_value_put pair does this unconditionally; here it
// is opt-in, matching I1's lazy-allocation default.
type PreallocateOption struct{ enabled bool }

// WithPreallocate returns an option that, applied via ApplyPreallocate,
// pre-allocates a buffer-backed domain's declared-length buffer immediately.
func WithPreallocate() PreallocateOption { return PreallocateOption{enabled: true} }

// ApplyPreallocate pre-allocates v's buffer if opt requests it and v's
// domain is buffer-backed.
func ApplyPreallocate(v Value, opt PreallocateOption) Value {
	if !opt.enabled {
		return v
	}
	switch v.Domain {
	case DomainVarchar, DomainVarbit:
		if v.buf == nil {
			v.buf = make([]byte, v.Attrs.DeclaredLen)
			v.NeedClear = true
		}
	}
	return v
}
