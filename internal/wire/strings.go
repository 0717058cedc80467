package wire

import (
	"bytes"
	"fmt"

	xdr "github.com/rasky/go-xdr/xdr2"
)

// Strings have two encodings on this wire:
//
//   - length-prefixed: int32 length; bytes[length]; zero-pad to 4 bytes.
//     This is byte-for-byte RFC 4506 section 4.11 variable-length opaque
//     encoding, so it is delegated to go-xdr instead of hand-rolled.
//   - null-padded stream: bytes[length]; one zero byte; pad to 4 bytes.
//     go-xdr has no notion of this shape, so it stays hand-rolled below.

// PackStringLengthPrefixed appends s using the length-prefixed encoding.
func (w *Writer) PackStringLengthPrefixed(s string) error {
	var tmp bytes.Buffer
	if _, err := xdr.Marshal(&tmp, s); err != nil {
		return fmt.Errorf("wire: marshal length-prefixed string: %w", err)
	}
	w.buf.Write(tmp.Bytes())
	return nil
}

// LengthStringLengthPrefixed returns the packed size of s under the
// length-prefixed encoding, usable as packed_length before allocation.
func LengthStringLengthPrefixed(s string) int {
	return IntSize + len(s) + padLen4(len(s))
}

// UnpackStringLengthPrefixed reads a length-prefixed string.
func (r *Reader) UnpackStringLengthPrefixed() (string, error) {
	var s string
	n, err := xdr.Unmarshal(bytes.NewReader(r.buf[r.pos:]), &s)
	if err != nil {
		return "", fmt.Errorf("wire: unmarshal length-prefixed string: %w", err)
	}
	r.pos += n
	return s, nil
}

// PackStringNullPadded appends s using the null-padded stream encoding used
// for user-text and plan-text buffers.
func (w *Writer) PackStringNullPadded(s string) {
	w.buf.WriteString(s)
	w.buf.WriteByte(0)
	total := len(s) + 1
	if pad := padLen4(total); pad > 0 {
		var zeros [4]byte
		w.buf.Write(zeros[:pad])
	}
}

// LengthStringNullPadded returns the packed size of s under the null-padded
// stream encoding.
func LengthStringNullPadded(s string) int {
	total := len(s) + 1
	return total + padLen4(total)
}

// UnpackStringNullPadded reads a null-padded stream string of the given
// unpadded content length (the caller must know this length in advance;
// unlike the length-prefixed form it is not self-describing).
func (r *Reader) UnpackStringNullPadded(contentLen int) (string, error) {
	total := contentLen + 1
	if err := r.need(total); err != nil {
		return "", err
	}
	s := string(r.buf[r.pos : r.pos+contentLen])
	r.pos += total
	if pad := padLen4(total); pad > 0 {
		if err := r.need(pad); err != nil {
			return "", err
		}
		r.pos += pad
	}
	return s, nil
}
