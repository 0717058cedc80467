package value

import (
	"fmt"
	"math/big"

	"github.com/marmos91/dbrt/internal/dbrterr"
)

// domainMismatch builds and returns the "wrong accessor for this domain"
// error record.
func domainMismatch(want Domain, got Domain) error {
	return &dbrterr.Record{
		Kind:     dbrterr.KindCoercion,
		Severity: dbrterr.SeverityError,
		Message:  fmt.Sprintf("accessor for %s called on a %s value", want, got),
	}
}

// GetInteger returns the INTEGER payload. NULL is checked before the domain
// assertion, matching the accessor contract in the value model.
func (v Value) GetInteger() (int32, error) {
	if v.IsNull {
		return 0, nil
	}
	if v.Domain != DomainInteger {
		return 0, domainMismatch(DomainInteger, v.Domain)
	}
	return v.i, nil
}

func (v Value) GetBigint() (int64, error) {
	if v.IsNull {
		return 0, nil
	}
	if v.Domain != DomainBigint {
		return 0, domainMismatch(DomainBigint, v.Domain)
	}
	return v.bi, nil
}

func (v Value) GetDouble() (float64, error) {
	if v.IsNull {
		return 0, nil
	}
	if v.Domain != DomainDouble {
		return 0, domainMismatch(DomainDouble, v.Domain)
	}
	return v.d, nil
}

func (v Value) GetNumeric() (Numeric, error) {
	if v.IsNull {
		return Numeric{Unscaled: big.NewInt(0)}, nil
	}
	if v.Domain != DomainNumeric {
		return Numeric{}, domainMismatch(DomainNumeric, v.Domain)
	}
	return v.num, nil
}

// GetVarchar returns the interior buffer pointer. Callers must not retain it
// past the Value's lifetime (it may be released by Clear).
func (v Value) GetVarchar() ([]byte, error) {
	if v.IsNull {
		return nil, nil
	}
	if v.Domain != DomainVarchar {
		return nil, domainMismatch(DomainVarchar, v.Domain)
	}
	return v.buf, nil
}

func (v Value) GetVarbit() ([]byte, int, error) {
	if v.IsNull {
		return nil, 0, nil
	}
	if v.Domain != DomainVarbit {
		return nil, 0, domainMismatch(DomainVarbit, v.Domain)
	}
	return v.buf, v.bln, nil
}

func (v Value) GetDate() (Date, error) {
	if v.IsNull {
		return Date{}, nil
	}
	if v.Domain != DomainDate {
		return Date{}, domainMismatch(DomainDate, v.Domain)
	}
	return v.dt, nil
}

func (v Value) GetTime() (Time, error) {
	if v.IsNull {
		return Time{}, nil
	}
	if v.Domain != DomainTime {
		return Time{}, domainMismatch(DomainTime, v.Domain)
	}
	return v.tm, nil
}

func (v Value) GetDatetime() (Datetime, error) {
	if v.IsNull {
		return Datetime{}, nil
	}
	if v.Domain != DomainDatetime {
		return Datetime{}, domainMismatch(DomainDatetime, v.Domain)
	}
	return v.dtm, nil
}

func (v Value) GetOID() (OID, error) {
	if v.IsNull {
		return NullOID, nil
	}
	if v.Domain != DomainOID {
		return OID{}, domainMismatch(DomainOID, v.Domain)
	}
	return v.oid, nil
}

func (v Value) GetSequence() ([]Value, error) {
	if v.IsNull {
		return nil, nil
	}
	if v.Domain != DomainSequence {
		return nil, domainMismatch(DomainSequence, v.Domain)
	}
	return v.seq, nil
}

func (v Value) GetResultSet() (int64, error) {
	if v.IsNull {
		return 0, nil
	}
	if v.Domain != DomainResultSet {
		return 0, domainMismatch(DomainResultSet, v.Domain)
	}
	return v.rs, nil
}

// Clone produces a value whose heap buffers are independent of the source
// (I4): the receiver's buffer/sequence is deep-copied, everything else is a
// value copy.
func (v Value) Clone() Value {
	out := v
	if v.buf != nil {
		out.buf = make([]byte, len(v.buf))
		copy(out.buf, v.buf)
	}
	if v.num.Unscaled != nil {
		out.num.Unscaled = new(big.Int).Set(v.num.Unscaled)
	}
	if v.seq != nil {
		out.seq = make([]Value, len(v.seq))
		for i, e := range v.seq {
			out.seq[i] = e.Clone()
		}
	}
	if v.Attrs.ElementTypes != nil {
		out.Attrs.ElementTypes = append([]Domain(nil), v.Attrs.ElementTypes...)
	}
	return out
}

// Clear releases exactly the buffers NeedClear marks and resets the value to
// NULL (I4). It is safe to call on an already-cleared value.
func (v *Value) Clear() {
	if v.NeedClear {
		v.buf = nil
		v.seq = nil
	}
	v.Domain = DomainNull
	v.IsNull = true
	v.NeedClear = false
	v.Attrs = DomainAttrs{}
	v.i, v.bi, v.d, v.bln, v.rs = 0, 0, 0, 0, 0
	v.num = Numeric{}
	v.dt, v.tm, v.dtm = Date{}, Time{}, Datetime{}
	v.oid = OID{}
}
