package dispatch

import "fmt"

// ReplyHeader is the fixed leading structure of every reply: a return code
// followed by the declared size of each variable reply buffer that
// follows it on the wire. RC == 0 is success; any other value is consumed
// in full before Dispatch returns it to the caller, per the error
// propagation rule (a reply header is never left half-read).
type ReplyHeader struct {
	RC    int32
	Sizes []int32
}

// Packet is the received reply: a header plus the variable buffers it
// declared. GetBuffer is the only way callers reach into it, mirroring the
// original get_buffer(packet, index, declared_size, take_ownership) so a
// buffer can be claimed exactly once.
type Packet struct {
	Header  ReplyHeader
	buffers [][]byte
	claimed []bool
}

// NewPacket wraps header and buffers into a Packet ready for GetBuffer
// calls.
func NewPacket(header ReplyHeader, buffers [][]byte) *Packet {
	return &Packet{
		Header:  header,
		buffers: buffers,
		claimed: make([]bool, len(buffers)),
	}
}

// NumBuffers returns the number of reply buffers the packet carries.
func (p *Packet) NumBuffers() int { return len(p.buffers) }

// GetBuffer returns the buffer at index. declaredSize, if >= 0, must match
// the buffer's actual length or ErrCorruptWireData-shaped mismatch is
// returned. When takeOwnership is true the slot is marked claimed and a
// second call against the same index fails; when false the caller gets a
// read-only view and the slot remains available.
func (p *Packet) GetBuffer(index int, declaredSize int, takeOwnership bool) ([]byte, error) {
	if index < 0 || index >= len(p.buffers) {
		return nil, fmt.Errorf("dispatch: buffer index %d out of range [0,%d)", index, len(p.buffers))
	}
	if takeOwnership && p.claimed[index] {
		return nil, fmt.Errorf("dispatch: buffer index %d already claimed", index)
	}
	buf := p.buffers[index]
	if declaredSize >= 0 && len(buf) != declaredSize {
		return nil, fmt.Errorf("dispatch: buffer index %d size mismatch: declared %d, got %d", index, declaredSize, len(buf))
	}
	if takeOwnership {
		p.claimed[index] = true
	}
	return buf, nil
}
