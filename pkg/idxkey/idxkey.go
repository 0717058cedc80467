// Package idxkey implements the index key: an ordered sequence of 0..MAX
// values used as a B-tree search key and as the single-VARCHAR key shape
// btree_find_unique requires.
package idxkey

import "github.com/marmos91/dbrt/pkg/value"

// Key is an ordered sequence of values. Is-null iff len(Elements) == 0.
type Key struct {
	Elements []value.Value
}

// New builds a Key from the given elements, copying the slice so later
// mutation of the caller's slice does not alias the Key.
func New(elements ...value.Value) Key {
	owned := make([]value.Value, len(elements))
	copy(owned, elements)
	return Key{Elements: owned}
}

// IsNull reports whether the key has zero elements.
func (k Key) IsNull() bool {
	return len(k.Elements) == 0
}

// HasNull reports whether any element of the key is NULL.
func (k Key) HasNull() bool {
	for _, e := range k.Elements {
		if e.IsNull {
			return true
		}
	}
	return false
}

// Clone performs an element-wise clone (I4 extended to sequences of
// values).
func (k Key) Clone() Key {
	out := Key{Elements: make([]value.Value, len(k.Elements))}
	for i, e := range k.Elements {
		out.Elements[i] = e.Clone()
	}
	return out
}

// Clear element-wise clears every component and truncates the key.
func (k *Key) Clear() {
	for i := range k.Elements {
		k.Elements[i].Clear()
	}
	k.Elements = nil
}

// Compare orders two keys component-wise, short-circuiting to UNKNOWN the
// moment a component compares UNKNOWN (NULL propagation through the key).
func Compare(a, b Key) value.CompareResult {
	n := len(a.Elements)
	if len(b.Elements) < n {
		n = len(b.Elements)
	}
	for i := 0; i < n; i++ {
		r := value.Compare(a.Elements[i], b.Elements[i])
		if r == value.CompareUnknown {
			return value.CompareUnknown
		}
		if r != value.CompareEQ {
			return r
		}
	}
	switch {
	case len(a.Elements) < len(b.Elements):
		return value.CompareLT
	case len(a.Elements) > len(b.Elements):
		return value.CompareGT
	default:
		return value.CompareEQ
	}
}

// SingleVarchar builds the single-component VARCHAR key shape required by
// btree_find_unique's contract.
func SingleVarchar(s []byte, declaredLen int, collation int32) Key {
	return New(value.MakeVarchar(s, declaredLen, collation))
}
