package function

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dbrt/internal/dbrterr"
	"github.com/marmos91/dbrt/pkg/value"
)

func numeric(unscaled int64, scale, precision int) value.Value {
	return value.MakeNumeric(big.NewInt(unscaled), scale, precision)
}

func TestAdd_NullPropagatesWithoutError(t *testing.T) {
	r, err := Add(value.MakeNull(), value.MakeInteger(5))
	require.NoError(t, err)
	assert.True(t, r.IsNull)
}

func TestAdd_WidensIntToDouble(t *testing.T) {
	r, err := Add(value.MakeInteger(2), value.MakeDouble(1.5))
	require.NoError(t, err)
	assert.Equal(t, value.DomainDouble, r.Domain)
	d, _ := r.GetDouble()
	assert.Equal(t, 3.5, d)
}

func TestAdd_IntegerOverflowReported(t *testing.T) {
	_, err := Add(value.MakeInteger(math.MaxInt32), value.MakeInteger(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, dbrterr.ErrOverflow)
}

func TestAdd_BigintOverflowReported(t *testing.T) {
	_, err := Add(value.MakeBigint(math.MaxInt64), value.MakeBigint(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, dbrterr.ErrOverflow)
}

func TestSub_IntegerUnderflowReported(t *testing.T) {
	_, err := Sub(value.MakeInteger(math.MinInt32), value.MakeInteger(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, dbrterr.ErrOverflow)
}

func TestMul_BigintOverflowReported(t *testing.T) {
	_, err := Mul(value.MakeBigint(math.MaxInt64), value.MakeBigint(2))
	require.Error(t, err)
	assert.ErrorIs(t, err, dbrterr.ErrOverflow)
}

func TestDiv_ByZeroIsDistinctFromOverflow(t *testing.T) {
	_, err := Div(value.MakeInteger(10), value.MakeInteger(0))
	require.Error(t, err)
	assert.ErrorIs(t, err, dbrterr.ErrDivisionByZero)
}

func TestUminus_MinInt32Overflows(t *testing.T) {
	_, err := Uminus(value.MakeInteger(math.MinInt32))
	require.Error(t, err)
	assert.ErrorIs(t, err, dbrterr.ErrOverflow)
}

func TestAdd_NumericLanePreservesPrecision(t *testing.T) {
	a := numeric(150, 1, 5) // 15.0
	b := numeric(25, 2, 5)  // 0.25
	r, err := Add(a, b)
	require.NoError(t, err)
	assert.Equal(t, value.DomainNumeric, r.Domain)
	n, err := r.GetNumeric()
	require.NoError(t, err)
	assert.Equal(t, 2, n.Scale)
	assert.Equal(t, "1525", n.Unscaled.String()) // 15.25 at scale 2
}

func TestMod_DivisorZeroReturnsDividendUnchanged(t *testing.T) {
	r, err := Mod(value.MakeInteger(7), value.MakeInteger(0))
	require.NoError(t, err)
	i, _ := r.GetInteger()
	assert.EqualValues(t, 7, i)
}

func TestMod_PicksDoubleWhenEitherSideIsDouble(t *testing.T) {
	r, err := Mod(value.MakeInteger(7), value.MakeDouble(2.5))
	require.NoError(t, err)
	assert.Equal(t, value.DomainDouble, r.Domain)
	d, _ := r.GetDouble()
	assert.InDelta(t, math.Mod(7, 2.5), d, 1e-9)
}

func TestPow_NegativeBaseNonIntegerExponentErrors(t *testing.T) {
	_, err := Pow(value.MakeDouble(-2), value.MakeDouble(0.5))
	require.Error(t, err)
	assert.ErrorIs(t, err, dbrterr.ErrFunctionArg)
}

func TestSqrt_NegativeOperandErrors(t *testing.T) {
	_, err := Sqrt(value.MakeDouble(-1))
	assert.ErrorIs(t, err, dbrterr.ErrFunctionArg)
}

func TestAsin_OutOfDomainErrors(t *testing.T) {
	_, err := Asin(value.MakeDouble(1.5))
	assert.ErrorIs(t, err, dbrterr.ErrFunctionArg)
}

func TestCot_OfZeroReturnsNull(t *testing.T) {
	r, err := Cot(value.MakeDouble(0))
	require.NoError(t, err)
	assert.True(t, r.IsNull)
}

func TestTan_DoesNotGuardHalfPi(t *testing.T) {
	_, err := Tan(value.MakeDouble(math.Pi / 2))
	require.NoError(t, err)
}

func TestWidthBucket_BelowAndAboveRangeSentinelBuckets(t *testing.T) {
	below, err := WidthBucket(value.MakeInteger(-5), value.MakeInteger(0), value.MakeInteger(10), value.MakeInteger(5))
	require.NoError(t, err)
	i, _ := below.GetInteger()
	assert.EqualValues(t, 0, i)

	above, err := WidthBucket(value.MakeInteger(100), value.MakeInteger(0), value.MakeInteger(10), value.MakeInteger(5))
	require.NoError(t, err)
	i, _ = above.GetInteger()
	assert.EqualValues(t, 6, i)
}

func TestWidthBucket_InRangeBucketsAscending(t *testing.T) {
	r, err := WidthBucket(value.MakeInteger(3), value.MakeInteger(0), value.MakeInteger(10), value.MakeInteger(5))
	require.NoError(t, err)
	i, _ := r.GetInteger()
	assert.EqualValues(t, 2, i) // buckets: [0,2)=1 [2,4)=2 ...
}

func TestWidthBucket_DescendingRangeReversesDirection(t *testing.T) {
	below, err := WidthBucket(value.MakeInteger(11), value.MakeInteger(10), value.MakeInteger(0), value.MakeInteger(5))
	require.NoError(t, err)
	i, _ := below.GetInteger()
	assert.EqualValues(t, 0, i, "above the descending range's high end maps to bucket 0")
}

func TestWidthBucket_RejectsNOutOfRange(t *testing.T) {
	_, err := WidthBucket(value.MakeInteger(1), value.MakeInteger(0), value.MakeInteger(10), value.MakeInteger(0))
	assert.ErrorIs(t, err, dbrterr.ErrFunctionArg)
}

func TestExtract_FromDateString(t *testing.T) {
	r, err := Extract(ExtractYear, value.MakeVarchar([]byte("2024-03-15"), 20, 0))
	require.NoError(t, err)
	y, _ := r.GetInteger()
	assert.EqualValues(t, 2024, y)
}

func TestExtract_TimeFieldFromDateErrors(t *testing.T) {
	_, err := Extract(ExtractHour, value.MakeDate(value.Date{Year: 2024, Month: 1, Day: 1}))
	assert.ErrorIs(t, err, dbrterr.ErrFunctionArg)
}

func TestExtract_FromDatetime(t *testing.T) {
	dt := value.Datetime{Date: value.Date{Year: 2024, Month: 6, Day: 1}, MS: (3*3600 + 4*60 + 5) * 1000}
	r, err := Extract(ExtractMinute, value.MakeDatetime(dt))
	require.NoError(t, err)
	m, _ := r.GetInteger()
	assert.EqualValues(t, 4, m)
}

func TestStrcat_CoercesAndJoins(t *testing.T) {
	r, err := Strcat(value.MakeVarchar([]byte("foo"), 10, 0), value.MakeInteger(42))
	require.NoError(t, err)
	s, _ := r.GetVarchar()
	assert.Equal(t, "foo42", string(s))
}

func TestStrcat_NullPropagates(t *testing.T) {
	r, err := Strcat(value.MakeNull(), value.MakeVarchar([]byte("x"), 1, 0))
	require.NoError(t, err)
	assert.True(t, r.IsNull)
}

func TestBitShift_OutOfRangeYieldsZero(t *testing.T) {
	r, err := BitShift(value.MakeBigint(1), value.MakeBigint(64))
	require.NoError(t, err)
	i, _ := r.GetBigint()
	assert.EqualValues(t, 0, i)
}

func TestBitShift_WithinRange(t *testing.T) {
	r, err := BitShift(value.MakeBigint(1), value.MakeBigint(4))
	require.NoError(t, err)
	i, _ := r.GetBigint()
	assert.EqualValues(t, 16, i)
}

func TestIntdiv_ByZeroIsZeroDivide(t *testing.T) {
	_, err := Intdiv(value.MakeBigint(10), value.MakeBigint(0))
	assert.ErrorIs(t, err, dbrterr.ErrDivisionByZero)
}

func TestIntdiv_NullPropagates(t *testing.T) {
	r, err := Intdiv(value.MakeNull(), value.MakeBigint(3))
	require.NoError(t, err)
	assert.True(t, r.IsNull)
}

func TestRoundNumeric_HalfUpOnDiscardedDigit(t *testing.T) {
	n := numeric(12345, 2, 6) // 123.45
	r, err := Round(n, 1)
	require.NoError(t, err)
	got, _ := r.GetNumeric()
	assert.Equal(t, "1235", got.Unscaled.String()) // 123.5
	assert.Equal(t, 1, got.Scale)
}

func TestTruncNumeric_DropsWithoutRounding(t *testing.T) {
	n := numeric(12349, 2, 6) // 123.49
	r, err := Trunc(n, 1)
	require.NoError(t, err)
	got, _ := r.GetNumeric()
	assert.Equal(t, "1234", got.Unscaled.String()) // 123.4
}

func TestFloor_NumericRoundsTowardNegativeInfinity(t *testing.T) {
	n := numeric(-150, 2, 6) // -1.50
	r, err := Floor(n)
	require.NoError(t, err)
	got, _ := r.GetNumeric()
	assert.Equal(t, "-2", got.Unscaled.String())
}

func TestCeil_NumericRoundsTowardPositiveInfinity(t *testing.T) {
	n := numeric(150, 2, 6) // 1.50
	r, err := Ceil(n)
	require.NoError(t, err)
	got, _ := r.GetNumeric()
	assert.Equal(t, "2", got.Unscaled.String())
}

func TestSign_AllThreeCases(t *testing.T) {
	neg, _ := Sign(value.MakeInteger(-5))
	zero, _ := Sign(value.MakeInteger(0))
	pos, _ := Sign(value.MakeInteger(5))
	n, _ := neg.GetInteger()
	z, _ := zero.GetInteger()
	p, _ := pos.GetInteger()
	assert.EqualValues(t, -1, n)
	assert.EqualValues(t, 0, z)
	assert.EqualValues(t, 1, p)
}
