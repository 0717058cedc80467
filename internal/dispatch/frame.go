package dispatch

import (
	"encoding/binary"
	"fmt"
	"io"
)

// writeFrame writes a length-prefixed frame: a big-endian uint32 byte count
// followed by body. Every request and reply on the connection is one frame.
func writeFrame(w io.Writer, body []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("dispatch: write frame length: %w", err)
	}
	if len(body) == 0 {
		return nil
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("dispatch: write frame body: %w", err)
	}
	return nil
}

// readFrame reads one length-prefixed frame written by writeFrame.
func readFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("dispatch: read frame length: %w", err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n == 0 {
		return nil, nil
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("dispatch: read frame body: %w", err)
	}
	return body, nil
}

// encodeRequest packs opcode, the request buffer count, and each buffer
// with its own length prefix.
func encodeRequest(op Opcode, reqBufs [][]byte) []byte {
	n := 8 // opcode + count
	for _, b := range reqBufs {
		n += 4 + len(b)
	}
	out := make([]byte, n)
	binary.BigEndian.PutUint32(out[0:4], uint32(op))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(reqBufs)))
	off := 8
	for _, b := range reqBufs {
		binary.BigEndian.PutUint32(out[off:off+4], uint32(len(b)))
		off += 4
		copy(out[off:], b)
		off += len(b)
	}
	return out
}

// decodeReply reads a ReplyHeader.RC, the declared buffer count and each
// buffer's own length prefix, the inverse of a server-side encoder matching
// encodeRequest's shape.
func decodeReply(body []byte) (*Packet, error) {
	if len(body) < 8 {
		return nil, fmt.Errorf("dispatch: reply shorter than header")
	}
	rc := int32(binary.BigEndian.Uint32(body[0:4]))
	nBufs := binary.BigEndian.Uint32(body[4:8])
	off := 8

	sizes := make([]int32, 0, nBufs)
	buffers := make([][]byte, 0, nBufs)
	for i := uint32(0); i < nBufs; i++ {
		if off+4 > len(body) {
			return nil, fmt.Errorf("dispatch: truncated reply at buffer %d", i)
		}
		size := binary.BigEndian.Uint32(body[off : off+4])
		off += 4
		if off+int(size) > len(body) {
			return nil, fmt.Errorf("dispatch: truncated reply body at buffer %d", i)
		}
		buffers = append(buffers, body[off:off+int(size)])
		sizes = append(sizes, int32(size))
		off += int(size)
	}

	return NewPacket(ReplyHeader{RC: rc, Sizes: sizes}, buffers), nil
}

// encodeReply is the server-side counterpart used only by tests to build a
// fake reply frame.
func encodeReply(rc int32, buffers [][]byte) []byte {
	n := 8
	for _, b := range buffers {
		n += 4 + len(b)
	}
	out := make([]byte, n)
	binary.BigEndian.PutUint32(out[0:4], uint32(rc))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(buffers)))
	off := 8
	for _, b := range buffers {
		binary.BigEndian.PutUint32(out[off:off+4], uint32(len(b)))
		off += 4
		copy(out[off:], b)
		off += len(b)
	}
	return out
}
