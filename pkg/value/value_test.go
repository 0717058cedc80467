package value

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeNull_SatisfiesInvariantI1(t *testing.T) {
	v := MakeNull()
	assert.True(t, v.IsNull)
	assert.Equal(t, DomainNull, v.Domain)
}

func TestMakeInteger_NotNull(t *testing.T) {
	v := MakeInteger(42)
	assert.False(t, v.IsNull)
	i, err := v.GetInteger()
	require.NoError(t, err)
	assert.EqualValues(t, 42, i)
}

func TestGetAccessor_ChecksNullBeforeDomain(t *testing.T) {
	v := MakeNull()
	v.Domain = DomainInteger
	v.IsNull = true
	i, err := v.GetInteger()
	require.NoError(t, err)
	assert.EqualValues(t, 0, i)
}

func TestGetAccessor_DomainMismatchErrors(t *testing.T) {
	v := MakeBigint(7)
	_, err := v.GetInteger()
	assert.Error(t, err)
}

func TestClone_IsIndependentOfSource(t *testing.T) {
	src := MakeVarchar([]byte("hello"), 10, 0)
	dst := src.Clone()

	buf, _ := src.GetVarchar()
	buf[0] = 'X'

	dstBuf, _ := dst.GetVarchar()
	assert.Equal(t, "hello", string(dstBuf))
}

func TestClear_ResetsToNullAndReleasesOwnedBuffers(t *testing.T) {
	v := MakeVarchar([]byte("hi"), 10, 0)
	v.Clear()
	assert.True(t, v.IsNull)
	assert.Equal(t, DomainNull, v.Domain)
	buf, err := v.GetVarchar()
	require.NoError(t, err)
	assert.Nil(t, buf)
}

func TestDomainMinMax_Integer(t *testing.T) {
	min := DomainMin(DomainInteger, DomainAttrs{})
	max := DomainMax(DomainInteger, DomainAttrs{})
	i, _ := min.GetInteger()
	assert.EqualValues(t, math.MinInt32, i)
	j, _ := max.GetInteger()
	assert.EqualValues(t, math.MaxInt32, j)
}

func TestDomainInit_ClampsInvalidNumericPrecision(t *testing.T) {
	v := DomainInit(DomainNumeric, 0, 0)
	assert.Equal(t, MaxNumericPrecision, v.Attrs.Precision)
}

func TestCoerce_IntToDouble(t *testing.T) {
	src := MakeInteger(5)
	out, result, err := Coerce(src, DomainDouble, DomainAttrs{})
	require.NoError(t, err)
	assert.Equal(t, CoerceCompatible, result)
	d, _ := out.GetDouble()
	assert.Equal(t, 5.0, d)
}

func TestCoerce_OverflowOnBigintToInt(t *testing.T) {
	src := MakeBigint(int64(math.MaxInt32) + 1)
	_, result, err := Coerce(src, DomainInteger, DomainAttrs{})
	assert.Equal(t, CoerceOverflow, result)
	assert.Error(t, err)
}

func TestCoerce_StringToMostSpecificNumericType(t *testing.T) {
	src := MakeVarchar([]byte("42"), 10, 0)
	out, result, err := Coerce(src, DomainInteger, DomainAttrs{})
	require.NoError(t, err)
	assert.Equal(t, CoerceCompatible, result)
	i, _ := out.GetInteger()
	assert.EqualValues(t, 42, i)
}

func TestCompare_NullIsUnknown(t *testing.T) {
	assert.Equal(t, CompareUnknown, Compare(MakeNull(), MakeInteger(1)))
}

func TestCompare_SameDomainTotalOrder(t *testing.T) {
	assert.Equal(t, CompareLT, Compare(MakeInteger(1), MakeInteger(2)))
	assert.Equal(t, CompareEQ, Compare(MakeInteger(2), MakeInteger(2)))
	assert.Equal(t, CompareGT, Compare(MakeInteger(3), MakeInteger(2)))
}

func TestCompare_CrossDomainCoerces(t *testing.T) {
	assert.Equal(t, CompareEQ, Compare(MakeDouble(2.0), MakeInteger(2)))
}

func TestCompare_Numeric_DifferentScales(t *testing.T) {
	a := MakeNumeric(big.NewInt(1234), 2, 10) // 12.34
	b := MakeNumeric(big.NewInt(12340), 3, 10) // 12.340
	assert.Equal(t, CompareEQ, Compare(a, b))
}

func TestCompare_Sequence_NullElementIsUnknown(t *testing.T) {
	a := MakeSequence([]Value{MakeInteger(1), MakeNull()})
	b := MakeSequence([]Value{MakeInteger(1), MakeInteger(2)})
	assert.Equal(t, CompareUnknown, Compare(a, b))
}

func TestFormatNumeric_NegativeValue(t *testing.T) {
	n := Numeric{Unscaled: big.NewInt(-123456), Scale: 2}
	assert.Equal(t, "-1234.56", formatNumeric(n))
}
