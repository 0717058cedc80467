// Package wire implements the packed binary wire codec: a closed set of
// atoms and composites with a canonical big-endian byte layout, 8-byte
// alignment for 64-bit/LSA/aligned scalars, and two string encodings. Every
// encoding exposes a (pack, unpack, packed_length) triple so a caller can
// size its request buffer with one allocation.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Fixed sizes used throughout the codec.
const (
	IntSize           = 4 // OR_INT_SIZE
	BigintAlignedSize = 8 // OR_BIGINT_ALIGNED_SIZE, after alignment padding
	OIDSize           = 16
	HFIDSize          = 12
	BTIDSize          = 12 // aligned
	LSASize           = 12 // aligned
	XASLIDSize        = 16
)

// Writer appends packed encodings to a growing buffer in canonical
// big-endian byte order.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns a Writer with capacity pre-sized via packed_length, so
// the request buffer is allocated exactly once.
func NewWriter(capacityHint int) *Writer {
	w := &Writer{}
	w.buf.Grow(capacityHint)
	return w
}

// Bytes returns the packed buffer built so far.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

// alignTo8 pads the buffer with zero bytes until its length is a multiple of
// 8, the alignment rule applied before any 64-bit integer, LSA or other
// aligned scalar.
func (w *Writer) alignTo8() {
	pad := (8 - (w.buf.Len() % 8)) % 8
	if pad > 0 {
		var zeros [8]byte
		w.buf.Write(zeros[:pad])
	}
}

// PackInt32 appends a big-endian int32, unaligned.
func (w *Writer) PackInt32(v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	w.buf.Write(b[:])
}

// PackInt64Aligned pads to an 8-byte boundary, then appends a big-endian
// int64 (OR_BIGINT_ALIGNED_SIZE).
func (w *Writer) PackInt64Aligned(v int64) {
	w.alignTo8()
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	w.buf.Write(b[:])
}

// PackDoubleAligned packs an IEEE-754 double using the same 8-byte
// alignment as bigint.
func (w *Writer) PackDoubleAligned(bits uint64) {
	w.alignTo8()
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], bits)
	w.buf.Write(b[:])
}

// PackBytesRaw appends raw bytes with no length prefix or padding.
func (w *Writer) PackBytesRaw(b []byte) {
	w.buf.Write(b)
}

// Reader consumes packed encodings from a fixed buffer in canonical
// big-endian byte order, tracking position like a typed cursor.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential unpacking.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the number of unconsumed bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Pos returns the current read offset.
func (r *Reader) Pos() int { return r.pos }

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return fmt.Errorf("wire: short read, need %d have %d", n, r.Remaining())
	}
	return nil
}

func (r *Reader) alignTo8() error {
	pad := (8 - (r.pos % 8)) % 8
	if pad == 0 {
		return nil
	}
	if err := r.need(pad); err != nil {
		return err
	}
	r.pos += pad
	return nil
}

// UnpackInt32 reads an unaligned big-endian int32.
func (r *Reader) UnpackInt32() (int32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := int32(binary.BigEndian.Uint32(r.buf[r.pos:]))
	r.pos += 4
	return v, nil
}

// UnpackInt64Aligned skips alignment padding then reads a big-endian int64.
func (r *Reader) UnpackInt64Aligned() (int64, error) {
	if err := r.alignTo8(); err != nil {
		return 0, err
	}
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := int64(binary.BigEndian.Uint64(r.buf[r.pos:]))
	r.pos += 8
	return v, nil
}

// UnpackDoubleAligned skips alignment padding then reads the raw IEEE-754
// bit pattern.
func (r *Reader) UnpackDoubleAligned() (uint64, error) {
	if err := r.alignTo8(); err != nil {
		return 0, err
	}
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// UnpackBytesRaw reads n raw bytes with no length prefix or padding.
func (r *Reader) UnpackBytesRaw(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// padLen4 returns the zero-pad length needed to round n up to a multiple of
// 4, the alignment used by both string encodings.
func padLen4(n int) int {
	return (4 - (n % 4)) % 4
}
