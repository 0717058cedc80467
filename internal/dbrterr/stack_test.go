package dbrterr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStack_PushAndTop(t *testing.T) {
	s := NewStack()
	assert.Nil(t, s.Top())

	s.Push(KindQuery, CodeTupleOutOfRange, SeverityError, "cursor past last tuple")

	top := s.Top()
	require.NotNil(t, top)
	assert.Equal(t, KindQuery, top.Kind)
	assert.Equal(t, "stack_test.go", top.File)
}

func TestStack_EvictsOldestWhenFull(t *testing.T) {
	s := NewStack()
	for i := 0; i < stackDepth+3; i++ {
		s.Push(KindIO, i, SeverityWarning, "probe")
	}
	all := s.All()
	assert.Len(t, all, stackDepth)
	assert.Equal(t, stackDepth+2, all[len(all)-1].Code)
}

func TestStack_ClearEmpties(t *testing.T) {
	s := NewStack()
	s.Push(KindMemory, 1, SeverityError, "alloc failed")
	s.Clear()
	assert.Nil(t, s.Top())
	assert.False(t, s.HasError())
}

func TestStack_HasError(t *testing.T) {
	s := NewStack()
	s.Push(KindBackup, 1, SeverityWarning, "volume nearly full")
	assert.False(t, s.HasError())

	s.Push(KindBackup, CodeShortWrite, SeverityError, "short write to volume")
	assert.True(t, s.HasError())
}

func TestWithStack_RoundTripsThroughContext(t *testing.T) {
	ctx, s := WithStack(context.Background())
	s.Push(KindTransaction, CodeDeadlock, SeverityFatal, "deadlock detected")

	got := StackFromContext(ctx)
	require.NotNil(t, got)
	assert.Equal(t, s, got)
}

func TestTranslate_MapsCoercionToSentinel(t *testing.T) {
	s := NewStack()
	s.Push(KindCoercion, 0, SeverityError, "cannot coerce varchar to bigint")

	err := Translate(s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCannotCoerce))
}

func TestTranslate_MapsArithmeticCodes(t *testing.T) {
	s := NewStack()
	s.Push(KindArithmetic, CodeDivisionByZero, SeverityError, "divide by zero")
	assert.True(t, errors.Is(Translate(s), ErrDivisionByZero))

	s2 := NewStack()
	s2.Push(KindArithmetic, 0, SeverityError, "overflow")
	assert.True(t, errors.Is(Translate(s2), ErrOverflow))
}

func TestTranslate_NilWhenBelowErrorSeverity(t *testing.T) {
	s := NewStack()
	s.Push(KindIO, 0, SeverityWarning, "retrying connection")
	assert.Nil(t, Translate(s))
}

func TestWireError_ErrorIncludesTopRecordMessage(t *testing.T) {
	s := NewStack()
	s.Push(KindQuery, CodeTupleOutOfRange, SeverityError, "cursor past last tuple")

	err := Translate(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cursor past last tuple")
}
