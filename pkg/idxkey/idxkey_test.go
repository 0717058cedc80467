package idxkey

import (
	"testing"

	"github.com/marmos91/dbrt/pkg/value"
	"github.com/stretchr/testify/assert"
)

func TestKey_IsNullWhenEmpty(t *testing.T) {
	k := New()
	assert.True(t, k.IsNull())
}

func TestKey_HasNullDetectsNullElement(t *testing.T) {
	k := New(value.MakeInteger(1), value.MakeNull())
	assert.True(t, k.HasNull())
}

func TestKey_CloneIsIndependent(t *testing.T) {
	k := New(value.MakeVarchar([]byte("a"), 10, 0))
	clone := k.Clone()

	buf, _ := k.Elements[0].GetVarchar()
	buf[0] = 'z'

	cloneBuf, _ := clone.Elements[0].GetVarchar()
	assert.Equal(t, "a", string(cloneBuf))
}

func TestCompare_ShortCircuitsOnUnknown(t *testing.T) {
	a := New(value.MakeInteger(1), value.MakeNull())
	b := New(value.MakeInteger(1), value.MakeInteger(2))
	assert.Equal(t, value.CompareUnknown, Compare(a, b))
}

func TestCompare_LengthBreaksTies(t *testing.T) {
	a := New(value.MakeInteger(1))
	b := New(value.MakeInteger(1), value.MakeInteger(2))
	assert.Equal(t, value.CompareLT, Compare(a, b))
}

func TestSingleVarchar_BuildsSingleComponentKey(t *testing.T) {
	k := SingleVarchar([]byte("abc"), 10, 0)
	assert.Len(t, k.Elements, 1)
	assert.Equal(t, value.DomainVarchar, k.Elements[0].Domain)
}
