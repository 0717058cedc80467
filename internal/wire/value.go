package wire

import (
	"fmt"
	"math/big"

	"github.com/marmos91/dbrt/pkg/value"
)

// domainTag is the wire representation of value.Domain: a stable int32 per
// variant of the closed union, used for bind parameters and for reading
// columns of unknown domain.
type domainTag int32

const (
	tagNull domainTag = iota
	tagInteger
	tagBigint
	tagDouble
	tagNumeric
	tagVarchar
	tagVarbit
	tagDate
	tagTime
	tagDatetime
	tagOID
	tagSequence
	tagResultSet
)

func tagFor(d value.Domain) domainTag {
	switch d {
	case value.DomainNull:
		return tagNull
	case value.DomainInteger:
		return tagInteger
	case value.DomainBigint:
		return tagBigint
	case value.DomainDouble:
		return tagDouble
	case value.DomainNumeric:
		return tagNumeric
	case value.DomainVarchar:
		return tagVarchar
	case value.DomainVarbit:
		return tagVarbit
	case value.DomainDate:
		return tagDate
	case value.DomainTime:
		return tagTime
	case value.DomainDatetime:
		return tagDatetime
	case value.DomainOID:
		return tagOID
	case value.DomainSequence:
		return tagSequence
	case value.DomainResultSet:
		return tagResultSet
	default:
		return tagNull
	}
}

func domainFor(t domainTag) value.Domain {
	switch t {
	case tagInteger:
		return value.DomainInteger
	case tagBigint:
		return value.DomainBigint
	case tagDouble:
		return value.DomainDouble
	case tagNumeric:
		return value.DomainNumeric
	case tagVarchar:
		return value.DomainVarchar
	case tagVarbit:
		return value.DomainVarbit
	case tagDate:
		return value.DomainDate
	case tagTime:
		return value.DomainTime
	case tagDatetime:
		return value.DomainDatetime
	case tagOID:
		return value.DomainOID
	case tagSequence:
		return value.DomainSequence
	case tagResultSet:
		return value.DomainResultSet
	default:
		return value.DomainNull
	}
}

const numericBufSize = 16

// PackValue appends the self-describing encoding: domain tag, is-null flag,
// domain attributes where applicable, then the payload (omitted when null).
func (w *Writer) PackValue(v value.Value) error {
	w.PackInt32(int32(tagFor(v.Domain)))
	w.PackInt32(boolToInt32(v.IsNull))
	if v.IsNull {
		return nil
	}

	switch v.Domain {
	case value.DomainInteger:
		iv, _ := v.GetInteger()
		w.PackInt32(iv)
	case value.DomainBigint:
		bv, _ := v.GetBigint()
		w.PackInt64Aligned(bv)
	case value.DomainDouble:
		dv, _ := v.GetDouble()
		w.PackDoubleAligned(float64bits(dv))
	case value.DomainNumeric:
		n, _ := v.GetNumeric()
		w.PackInt32(int32(v.Attrs.Precision))
		w.PackInt32(int32(v.Attrs.Scale))
		w.PackBytesRaw(numericToBytes(n.Unscaled))
	case value.DomainVarchar:
		buf, _ := v.GetVarchar()
		w.PackInt32(int32(v.Attrs.DeclaredLen))
		w.PackInt32(v.Attrs.Collation)
		if err := w.PackStringLengthPrefixed(string(buf)); err != nil {
			return err
		}
	case value.DomainVarbit:
		buf, bitLen, _ := v.GetVarbit()
		w.PackInt32(int32(bitLen))
		if err := w.PackStringLengthPrefixed(string(buf)); err != nil {
			return err
		}
	case value.DomainDate:
		d, _ := v.GetDate()
		w.PackInt32(int32(d.Year))
		w.PackInt32(int32(d.Month))
		w.PackInt32(int32(d.Day))
	case value.DomainTime:
		t, _ := v.GetTime()
		w.PackInt32(int32(t.Hour))
		w.PackInt32(int32(t.Minute))
		w.PackInt32(int32(t.Second))
		w.PackInt32(int32(t.Millisecond))
	case value.DomainDatetime:
		dt, _ := v.GetDatetime()
		w.PackInt32(int32(dt.Date.Year))
		w.PackInt32(int32(dt.Date.Month))
		w.PackInt32(int32(dt.Date.Day))
		w.PackInt32(int32(dt.MS))
	case value.DomainOID:
		o, _ := v.GetOID()
		w.PackOID(o)
	case value.DomainSequence:
		elems, _ := v.GetSequence()
		w.PackInt32(int32(len(elems)))
		for _, e := range elems {
			if err := w.PackValue(e); err != nil {
				return err
			}
		}
	case value.DomainResultSet:
		rs, _ := v.GetResultSet()
		w.PackInt64Aligned(rs)
	default:
		return fmt.Errorf("wire: cannot pack domain %s", v.Domain)
	}
	return nil
}

// UnpackValue reads the self-describing encoding written by PackValue.
func (r *Reader) UnpackValue() (value.Value, error) {
	tagRaw, err := r.UnpackInt32()
	if err != nil {
		return value.Value{}, err
	}
	isNullRaw, err := r.UnpackInt32()
	if err != nil {
		return value.Value{}, err
	}
	d := domainFor(domainTag(tagRaw))
	if isNullRaw != 0 {
		return value.DomainInit(d, 0, 0), nil
	}

	switch d {
	case value.DomainInteger:
		iv, err := r.UnpackInt32()
		if err != nil {
			return value.Value{}, err
		}
		return value.MakeInteger(iv), nil
	case value.DomainBigint:
		bv, err := r.UnpackInt64Aligned()
		if err != nil {
			return value.Value{}, err
		}
		return value.MakeBigint(bv), nil
	case value.DomainDouble:
		bits, err := r.UnpackDoubleAligned()
		if err != nil {
			return value.Value{}, err
		}
		return value.MakeDouble(float64frombits(bits)), nil
	case value.DomainNumeric:
		precision, err := r.UnpackInt32()
		if err != nil {
			return value.Value{}, err
		}
		scale, err := r.UnpackInt32()
		if err != nil {
			return value.Value{}, err
		}
		raw, err := r.UnpackBytesRaw(numericBufSize)
		if err != nil {
			return value.Value{}, err
		}
		return value.MakeNumeric(bytesToNumeric(raw), int(scale), int(precision)), nil
	case value.DomainVarchar:
		declaredLen, err := r.UnpackInt32()
		if err != nil {
			return value.Value{}, err
		}
		collation, err := r.UnpackInt32()
		if err != nil {
			return value.Value{}, err
		}
		s, err := r.UnpackStringLengthPrefixed()
		if err != nil {
			return value.Value{}, err
		}
		return value.MakeVarchar([]byte(s), int(declaredLen), collation), nil
	case value.DomainVarbit:
		bitLen, err := r.UnpackInt32()
		if err != nil {
			return value.Value{}, err
		}
		s, err := r.UnpackStringLengthPrefixed()
		if err != nil {
			return value.Value{}, err
		}
		return value.MakeVarbit([]byte(s), int(bitLen)), nil
	case value.DomainDate:
		year, err := r.UnpackInt32()
		if err != nil {
			return value.Value{}, err
		}
		month, err := r.UnpackInt32()
		if err != nil {
			return value.Value{}, err
		}
		day, err := r.UnpackInt32()
		if err != nil {
			return value.Value{}, err
		}
		return value.MakeDate(value.Date{Year: int(year), Month: int(month), Day: int(day)}), nil
	case value.DomainTime:
		h, err := r.UnpackInt32()
		if err != nil {
			return value.Value{}, err
		}
		m, err := r.UnpackInt32()
		if err != nil {
			return value.Value{}, err
		}
		s, err := r.UnpackInt32()
		if err != nil {
			return value.Value{}, err
		}
		ms, err := r.UnpackInt32()
		if err != nil {
			return value.Value{}, err
		}
		return value.MakeTime(value.Time{Hour: int(h), Minute: int(m), Second: int(s), Millisecond: int(ms)}), nil
	case value.DomainDatetime:
		year, err := r.UnpackInt32()
		if err != nil {
			return value.Value{}, err
		}
		month, err := r.UnpackInt32()
		if err != nil {
			return value.Value{}, err
		}
		day, err := r.UnpackInt32()
		if err != nil {
			return value.Value{}, err
		}
		ms, err := r.UnpackInt32()
		if err != nil {
			return value.Value{}, err
		}
		return value.MakeDatetime(value.Datetime{
			Date: value.Date{Year: int(year), Month: int(month), Day: int(day)},
			MS:   int(ms),
		}), nil
	case value.DomainOID:
		o, err := r.UnpackOID()
		if err != nil {
			return value.Value{}, err
		}
		return value.MakeOID(o), nil
	case value.DomainSequence:
		count, err := r.UnpackInt32()
		if err != nil {
			return value.Value{}, err
		}
		elems := make([]value.Value, count)
		for i := range elems {
			e, err := r.UnpackValue()
			if err != nil {
				return value.Value{}, err
			}
			elems[i] = e
		}
		return value.MakeSequence(elems), nil
	case value.DomainResultSet:
		rs, err := r.UnpackInt64Aligned()
		if err != nil {
			return value.Value{}, err
		}
		return value.MakeResultSet(rs), nil
	default:
		return value.MakeNull(), nil
	}
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// numericToBytes serialises n into a fixed 16-byte two's-complement buffer.
func numericToBytes(n *big.Int) []byte {
	buf := make([]byte, numericBufSize)
	mod := new(big.Int).Lsh(big.NewInt(1), numericBufSize*8)
	u := new(big.Int).Mod(n, mod)
	b := u.Bytes()
	copy(buf[numericBufSize-len(b):], b)
	return buf
}

// bytesToNumeric is the inverse of numericToBytes.
func bytesToNumeric(buf []byte) *big.Int {
	u := new(big.Int).SetBytes(buf)
	signBit := new(big.Int).Rsh(u, numericBufSize*8-1)
	if signBit.Sign() == 0 {
		return u
	}
	mod := new(big.Int).Lsh(big.NewInt(1), numericBufSize*8)
	return new(big.Int).Sub(u, mod)
}
