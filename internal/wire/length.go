package wire

import "github.com/marmos91/dbrt/pkg/value"

// LengthInt32 is the packed size of an unaligned int32.
func LengthInt32() int { return IntSize }

// LengthInt64Aligned is the worst-case packed size of an aligned int64:
// up to 7 bytes of padding plus the 8-byte payload. Callers that need the
// exact size for a specific current offset should add alignPad themselves;
// this upper bound is what packed_length callers use to size a buffer
// before the offset is known.
func LengthInt64Aligned() int { return 7 + BigintAlignedSize }

// LengthOID is the packed size of an OID.
func LengthOID() int { return OIDSize }

// LengthHFID is the packed size of an HFID.
func LengthHFID() int { return HFIDSize }

// LengthBTID is the worst-case packed size of a BTID, including alignment
// padding.
func LengthBTID() int { return 7 + BTIDSize }

// LengthLSA is the worst-case packed size of an LSA.
func LengthLSA() int { return 7 + LSASize }

// LengthXASLID is the packed size of an XASL id.
func LengthXASLID() int { return XASLIDSize }

// LengthValue computes the exact packed_length of v under PackValue's
// encoding when v starts at an 8-byte-aligned offset (such as the start of
// a fresh Writer), so the caller can allocate its request buffer once.
func LengthValue(v value.Value) int {
	return lengthValueAt(v, 0)
}

// lengthValueAt is LengthValue for a value whose encoding starts at offset
// off, which decides the padding in front of each aligned field.
func lengthValueAt(v value.Value, off int) int {
	n := 2 * IntSize // tag + is-null
	if v.IsNull {
		return n
	}

	switch v.Domain {
	case value.DomainInteger:
		n += IntSize
	case value.DomainBigint:
		n += (8-(off+n)%8)%8 + BigintAlignedSize
	case value.DomainDouble:
		n += (8-(off+n)%8)%8 + BigintAlignedSize
	case value.DomainNumeric:
		n += 2*IntSize + numericBufSize
	case value.DomainVarchar:
		buf, _ := v.GetVarchar()
		n += 2*IntSize + LengthStringLengthPrefixed(string(buf))
	case value.DomainVarbit:
		buf, _, _ := v.GetVarbit()
		n += IntSize + LengthStringLengthPrefixed(string(buf))
	case value.DomainDate:
		n += 3 * IntSize
	case value.DomainTime:
		n += 4 * IntSize
	case value.DomainDatetime:
		n += 4 * IntSize
	case value.DomainOID:
		n += OIDSize
	case value.DomainSequence:
		elems, _ := v.GetSequence()
		n += IntSize
		for _, e := range elems {
			n += lengthValueAt(e, off+n)
		}
	case value.DomainResultSet:
		n += (8-(off+n)%8)%8 + BigintAlignedSize
	}
	return n
}

// LengthLockSet computes the exact packed_length of ls.
func LengthLockSet(ls LockSet) int {
	n := IntSize + len(ls.Classes)*(OIDSize+IntSize)
	n += IntSize + len(ls.Instances)*OIDSize
	n += IntSize // quit-on-error
	return n
}
