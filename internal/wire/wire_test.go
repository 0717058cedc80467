package wire

import (
	"math/big"
	"testing"

	"github.com/marmos91/dbrt/pkg/idxkey"
	"github.com/marmos91/dbrt/pkg/lock"
	"github.com/marmos91/dbrt/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpackInt32_RoundTrips(t *testing.T) {
	w := NewWriter(4)
	w.PackInt32(-42)
	r := NewReader(w.Bytes())
	got, err := r.UnpackInt32()
	require.NoError(t, err)
	assert.EqualValues(t, -42, got)
}

func TestPackInt64Aligned_PadsToEightByteBoundary(t *testing.T) {
	w := NewWriter(16)
	w.PackInt32(1) // 4 bytes written, not yet 8-aligned
	w.PackInt64Aligned(99)
	assert.Equal(t, 0, w.Len()%8)

	r := NewReader(w.Bytes())
	_, _ = r.UnpackInt32()
	got, err := r.UnpackInt64Aligned()
	require.NoError(t, err)
	assert.EqualValues(t, 99, got)
}

func TestPackStringLengthPrefixed_RoundTrips(t *testing.T) {
	w := NewWriter(32)
	require.NoError(t, w.PackStringLengthPrefixed("hello"))
	assert.Equal(t, LengthStringLengthPrefixed("hello"), w.Len())

	r := NewReader(w.Bytes())
	got, err := r.UnpackStringLengthPrefixed()
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestPackStringNullPadded_RoundTrips(t *testing.T) {
	w := NewWriter(32)
	w.PackStringNullPadded("abc")
	assert.Equal(t, LengthStringNullPadded("abc"), w.Len())

	r := NewReader(w.Bytes())
	got, err := r.UnpackStringNullPadded(3)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestPackOID_RoundTrips(t *testing.T) {
	o := value.OID{Volid: 3, Pageid: 104, Slotid: 12, Groupid: 0}
	w := NewWriter(OIDSize)
	w.PackOID(o)
	assert.Equal(t, OIDSize, w.Len())

	r := NewReader(w.Bytes())
	got, err := r.UnpackOID()
	require.NoError(t, err)
	assert.Equal(t, o, got)
}

func TestPackValue_RoundTripsEveryDomain(t *testing.T) {
	cases := []value.Value{
		value.MakeNull(),
		value.MakeInteger(42),
		value.MakeBigint(-9999999999),
		value.MakeDouble(3.14159),
		value.MakeNumeric(big.NewInt(123456), 2, 10),
		value.MakeVarchar([]byte("hello world"), 32, 0),
		value.MakeVarbit([]byte{0xFF, 0x0F}, 12),
		value.MakeDate(value.Date{Year: 2026, Month: 7, Day: 31}),
		value.MakeTime(value.Time{Hour: 13, Minute: 5, Second: 9, Millisecond: 250}),
		value.MakeDatetime(value.Datetime{Date: value.Date{Year: 2026, Month: 7, Day: 31}, MS: 1000}),
		value.MakeOID(value.OID{Volid: 1, Pageid: 2, Slotid: 3}),
		value.MakeResultSet(123456789),
	}

	for _, v := range cases {
		t.Run(v.Domain.String(), func(t *testing.T) {
			w := NewWriter(64)
			require.NoError(t, w.PackValue(v))
			assert.Equal(t, LengthValue(v), w.Len())

			r := NewReader(w.Bytes())
			got, err := r.UnpackValue()
			require.NoError(t, err)
			if v.IsNull {
				// Compare reports UNKNOWN for NULL, so check the NULL round-trip directly.
				assert.True(t, got.IsNull)
				assert.Equal(t, v.Domain, got.Domain)
				return
			}
			assert.Equal(t, value.CompareEQ, value.Compare(v, got))
		})
	}
}

func TestPackValue_Sequence(t *testing.T) {
	seq := value.MakeSequence([]value.Value{value.MakeInteger(1), value.MakeInteger(2)})
	w := NewWriter(64)
	require.NoError(t, w.PackValue(seq))

	r := NewReader(w.Bytes())
	got, err := r.UnpackValue()
	require.NoError(t, err)
	elems, err := got.GetSequence()
	require.NoError(t, err)
	assert.Len(t, elems, 2)
}

func TestPackIdxKey_RoundTrips(t *testing.T) {
	k := idxkey.New(value.MakeInteger(1), value.MakeVarchar([]byte("x"), 10, 0))
	w := NewWriter(64)
	require.NoError(t, w.PackIdxKey(k))

	r := NewReader(w.Bytes())
	got, err := r.UnpackIdxKey()
	require.NoError(t, err)
	assert.Equal(t, idxkey.Compare(k, got), value.CompareEQ)
}

func TestPackLockSet_RoundTrips(t *testing.T) {
	ls := LockSet{
		Classes: []ClassLockEntry{
			{ClassOID: value.OID{Volid: 1, Pageid: 1, Slotid: 1}, Mode: lock.ModeS},
		},
		Instances:   []value.OID{{Volid: 1, Pageid: 2, Slotid: 1}},
		QuitOnError: true,
	}
	w := NewWriter(64)
	w.PackLockSet(ls)
	assert.Equal(t, LengthLockSet(ls), w.Len())

	r := NewReader(w.Bytes())
	got, err := r.UnpackLockSet()
	require.NoError(t, err)
	assert.Equal(t, ls, got)
}

func TestNumericBuffer_RoundTripsNegativeValues(t *testing.T) {
	n := big.NewInt(-123456789)
	buf := numericToBytes(n)
	assert.Len(t, buf, numericBufSize)
	assert.Equal(t, 0, n.Cmp(bytesToNumeric(buf)))
}
