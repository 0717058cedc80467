// Package lzo implements a safe (bounds-checked) LZO1X decompressor, the
// default of the compression codecs pkg/backup can decode pages with.
// There is no maintained pure-Go LZO1X implementation in the module's
// dependency graph, so this is a from-scratch port of the lzo1x_decompress
// instruction format rather than a cgo binding, keeping the module
// single-binary and cross-compilable.
package lzo

import "errors"

var (
	// ErrInputOverrun is returned when the compressed stream ends before a
	// literal run or match it announced has been fully consumed.
	ErrInputOverrun = errors.New("lzo: input overrun")
	// ErrOutputOverrun is returned when decoding would write past the
	// caller-declared output length, meaning unzip_nbytes understated what
	// the stream actually holds.
	ErrOutputOverrun = errors.New("lzo: output overrun")
	// ErrLookbehindOverrun is returned when a match's back-reference points
	// before the start of the output, meaning the compressed stream is
	// corrupt.
	ErrLookbehindOverrun = errors.New("lzo: invalid back-reference")
)

// decoder walks an LZO1X instruction stream, alternating literal runs
// (raw bytes copied straight from src) and matches (back-references into
// the output already produced).
type decoder struct {
	src    []byte
	dst    []byte
	ip, op int
}

func (d *decoder) readByte() (int, error) {
	if d.ip >= len(d.src) {
		return 0, ErrInputOverrun
	}
	b := int(d.src[d.ip])
	d.ip++
	return b, nil
}

// extendLength consumes zero bytes as 255-unit continuations, the way
// LZO1X's variable-length run encoding works, stopping at the first
// non-zero byte and adding its value.
func (d *decoder) extendLength(base int) (int, error) {
	length := base
	for {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		if b == 0 {
			length += 255
			continue
		}
		return length + b, nil
	}
}

func (d *decoder) literal(length int) error {
	if d.op+length > len(d.dst) {
		return ErrOutputOverrun
	}
	if d.ip+length > len(d.src) {
		return ErrInputOverrun
	}
	copy(d.dst[d.op:d.op+length], d.src[d.ip:d.ip+length])
	d.op += length
	d.ip += length
	return nil
}

func (d *decoder) match(distance, length int) error {
	start := d.op - distance
	if start < 0 {
		return ErrLookbehindOverrun
	}
	if d.op+length > len(d.dst) {
		return ErrOutputOverrun
	}
	// Matches may overlap with the region they read from (distance smaller
	// than length), so the copy must proceed byte by byte.
	for i := 0; i < length; i++ {
		d.dst[d.op+i] = d.dst[start+i]
	}
	d.op += length
	return nil
}

// Decompress1X decompresses src (an LZO1X stream) into a freshly allocated
// buffer of exactly dstLen bytes, or returns an error if src is malformed,
// too short, or does not produce exactly dstLen bytes.
func Decompress1X(src []byte, dstLen int) ([]byte, error) {
	d := &decoder{src: src, dst: make([]byte, dstLen)}

	if len(src) == 0 {
		if dstLen != 0 {
			return nil, ErrOutputOverrun
		}
		return d.dst, nil
	}

	t, err := d.readByte()
	if err != nil {
		return nil, err
	}

	// A first byte above 17 opens the stream with a literal run whose
	// length needs no further encoding (used when the first instruction
	// would otherwise collide with the reserved 0..17 range).
	if t > 17 {
		if err := d.literal(t - 17); err != nil {
			return nil, err
		}
		if t, err = d.readByte(); err != nil {
			return nil, err
		}
	}

	for {
		switch {
		case t >= 64:
			// Short match: 3-bit length, 11-bit distance split across the
			// instruction byte and one trailing byte.
			length := (t >> 5) + 1
			lo, err := d.readByte()
			if err != nil {
				return nil, err
			}
			distance := (((t >> 2) & 7 << 8) | lo) + 1
			if err := d.match(distance, length); err != nil {
				return nil, err
			}
		case t >= 32:
			// Medium match: 5-bit length (extendable), 14-bit distance.
			length := t & 31
			if length == 0 {
				if length, err = d.extendLength(31); err != nil {
					return nil, err
				}
			}
			length += 2
			lo, err := d.readByte()
			if err != nil {
				return nil, err
			}
			hi, err := d.readByte()
			if err != nil {
				return nil, err
			}
			distance := ((hi << 6) | (lo >> 2)) + 1
			if err := d.match(distance, length); err != nil {
				return nil, err
			}
		case t >= 16:
			// Long match: 3-bit length (extendable), 15-bit distance with
			// an extra high bit taken from the instruction byte. A decoded
			// distance of exactly zero is the end-of-stream marker.
			length := t & 7
			if length == 0 {
				if length, err = d.extendLength(7); err != nil {
					return nil, err
				}
			}
			length += 2
			hiBit := (t & 8) << 11
			lo, err := d.readByte()
			if err != nil {
				return nil, err
			}
			hi, err := d.readByte()
			if err != nil {
				return nil, err
			}
			distance := hiBit | (hi << 6) | (lo >> 2)
			if distance == 0 {
				if d.op != dstLen {
					return nil, ErrOutputOverrun
				}
				return d.dst, nil
			}
			if err := d.match(distance+16384, length); err != nil {
				return nil, err
			}
		default:
			// Short literal run (0..15): length is the low nibble plus 3
			// or, when zero, 15 plus an extended run.
			length := t
			if length == 0 {
				if length, err = d.extendLength(0); err != nil {
					return nil, err
				}
				length += 15
			} else {
				length += 3
			}
			if err := d.literal(length); err != nil {
				return nil, err
			}
		}

		if d.ip >= len(d.src) {
			if d.op == dstLen {
				return d.dst, nil
			}
			return nil, ErrInputOverrun
		}
		if t, err = d.readByte(); err != nil {
			return nil, err
		}
	}
}
