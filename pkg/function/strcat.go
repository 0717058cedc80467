package function

import (
	"golang.org/x/text/unicode/norm"

	"github.com/marmos91/dbrt/pkg/value"
)

// Strcat concatenates a and b, coercing both to VARCHAR first. The
// concatenated bytes are passed through Unicode NFC normalization before
// the result collation is attached, so the comparator behind compare.go
// sees byte-identical representations of the same grapheme cluster
// regardless of which side a combining-character sequence came from.
func Strcat(a, b value.Value) (value.Value, error) {
	if a.IsNull || b.IsNull {
		return value.MakeNull(), nil
	}

	ca, err := castForArith(a, value.DomainVarchar, a.Attrs)
	if err != nil {
		return value.Value{}, err
	}
	cb, err := castForArith(b, value.DomainVarchar, b.Attrs)
	if err != nil {
		return value.Value{}, err
	}

	sa, _ := ca.GetVarchar()
	sb, _ := cb.GetVarchar()
	joined := norm.NFC.String(string(sa) + string(sb))

	declaredLen := ca.Attrs.DeclaredLen + cb.Attrs.DeclaredLen
	return value.MakeVarchar([]byte(joined), declaredLen, ca.Attrs.Collation), nil
}
