package dbclient

import (
	"context"
	"encoding/binary"
	"net"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dbrt/internal/dispatch"
	"github.com/marmos91/dbrt/internal/wire"
	"github.com/marmos91/dbrt/pkg/lock"
	"github.com/marmos91/dbrt/pkg/value"
)

// pipeConn adapts a net.Conn half to io.ReadWriteCloser.
type pipeConn struct {
	net.Conn
}

// fakeFrame/fakeReply mirror internal/dispatch's unexported wire framing so
// this package's tests can drive a fake server without reaching across the
// package boundary.
func writeFakeFrame(w net.Conn, body []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(body)))
	_, _ = w.Write(lenBuf[:])
	if len(body) > 0 {
		_, _ = w.Write(body)
	}
}

func readFakeFrame(r net.Conn) []byte {
	var lenBuf [4]byte
	if _, err := readFull(r, lenBuf[:]); err != nil {
		return nil
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n == 0 {
		return nil
	}
	body := make([]byte, n)
	if _, err := readFull(r, body); err != nil {
		return nil
	}
	return body
}

func readFull(r net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func encodeFakeReply(rc int32, buffers [][]byte) []byte {
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

func newTestConnection(t *testing.T) (*Connection, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	d := dispatch.NewDispatcher(pipeConn{client}, "test-server:1523", dispatch.NewMetrics(prometheus.NewRegistry()))
	c := WrapDispatcher(d, "test-server:1523")
	t.Cleanup(func() { _ = client.Close(); _ = server.Close() })
	return c, server
}

func TestLocatorFetch_ReconstructsCopyArea(t *testing.T) {
	c, server := newTestConnection(t)

	classOID := value.OID{Volid: 1, Pageid: 2, Slotid: 3}
	oid := value.OID{Volid: 1, Pageid: 5, Slotid: 1}
	descs := []CopyAreaDescriptor{{OID: oid, Operation: 1}}
	descBuf := packDescriptorTable(descs)
	content := []byte("row-bytes")

	go func() {
		_ = readFakeFrame(server)
		header := wire.NewWriter(4 * wire.IntSize)
		header.PackInt32(1)
		header.PackInt32(int32(len(descBuf)))
		header.PackInt32(int32(len(content)))
		header.PackInt32(1)
		writeFakeFrame(server, encodeFakeReply(0, [][]byte{header.Bytes(), descBuf, content}))
	}()

	area, err := c.LocatorFetch(context.Background(), oid, lock.ModeS, classOID, false)
	require.NoError(t, err)
	require.NotNil(t, area)
	assert.Equal(t, "row-bytes", string(area.Content))
	require.Len(t, area.Descriptors, 1)
	assert.Equal(t, oid, area.Descriptors[0].OID)
}

func TestLocatorFetch_ServerFailureReturnsNilCopyAreaNoError(t *testing.T) {
	c, server := newTestConnection(t)

	go func() {
		_ = readFakeFrame(server)
		writeFakeFrame(server, encodeFakeReply(-224, nil))
	}()

	area, err := c.LocatorFetch(context.Background(), value.OID{}, lock.ModeS, value.OID{}, false)
	require.NoError(t, err)
	assert.Nil(t, area)
}

func TestLocatorFetchLockSet_ShipsFullPayloadOnlyOnFirstCall(t *testing.T) {
	c, server := newTestConnection(t)

	var gotFullPayloads []bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2; i++ {
			body := readFakeFrame(server)
			// skip the opcode, buffer count and first buffer length ahead of
			// the buffer; the wire.LockSet shape differs from a bare count
			// pair, so a buffer that round-trips through UnpackLockSet is "full".
			_, err := wire.NewReader(body[12:]).UnpackLockSet()
			gotFullPayloads = append(gotFullPayloads, err == nil)
			reply := wire.NewWriter(wire.LengthLockSet(wire.LockSet{}))
			reply.PackLockSet(wire.LockSet{})
			writeFakeFrame(server, encodeFakeReply(0, [][]byte{reply.Bytes()}))
		}
	}()

	ls := wire.LockSet{}
	_, err := c.LocatorFetchLockSet(context.Background(), ls)
	require.NoError(t, err)
	assert.False(t, c.firstFetchLocksetCall)

	_, err = c.LocatorFetchLockSet(context.Background(), ls)
	require.NoError(t, err)
	<-done

	require.Len(t, gotFullPayloads, 2)
	assert.True(t, gotFullPayloads[0], "first call should ship the full lockset")
	assert.False(t, gotFullPayloads[1], "later calls should ship only the header")
}

func TestTranServerCommit_ShortCircuitsWhenNotActive(t *testing.T) {
	c, server := newTestConnection(t)
	c.tranState = TranCommitted

	state, err := c.TranServerCommit(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, TranCommitted, state)

	_ = server.Close()
}

func TestTranServerCommit_FlipsToResetOnServerRequest(t *testing.T) {
	c, server := newTestConnection(t)

	go func() {
		_ = readFakeFrame(server)
		w := wire.NewWriter(8)
		w.PackInt32(int32(TranCommitted))
		w.PackInt32(1)
		writeFakeFrame(server, encodeFakeReply(0, [][]byte{w.Bytes()}))
	}()

	state, err := c.TranServerCommit(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, TranCommitted, state)
	assert.Equal(t, StatusReset, c.status)
}

func TestTranServerAbort_UpdatesState(t *testing.T) {
	c, server := newTestConnection(t)

	go func() {
		_ = readFakeFrame(server)
		w := wire.NewWriter(4)
		w.PackInt32(int32(TranAborted))
		writeFakeFrame(server, encodeFakeReply(0, [][]byte{w.Bytes()}))
	}()

	state, err := c.TranServerAbort(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TranAborted, state)
}

func TestCSessionFindOrCreateSession_MintsIDWhenServerReturnsEmpty(t *testing.T) {
	c, server := newTestConnection(t)

	go func() {
		_ = readFakeFrame(server)
		w := wire.NewWriter(4)
		_ = w.PackStringLengthPrefixed("")
		writeFakeFrame(server, encodeFakeReply(0, [][]byte{w.Bytes()}))
	}()

	id, err := c.CSessionFindOrCreateSession(context.Background(), []byte("signing-key"), "bob", "host1", "prog")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NotEmpty(t, c.sessionKey)

	claims, err := VerifySessionKey([]byte("signing-key"), c.sessionKey)
	require.NoError(t, err)
	assert.Equal(t, "bob", claims.User)
}

func TestCSessionFindOrCreateSession_AdoptsServerIssuedSession(t *testing.T) {
	c, server := newTestConnection(t)

	go func() {
		_ = readFakeFrame(server)
		w := wire.NewWriter(4)
		_ = w.PackStringLengthPrefixed("server-session-id")
		_ = w.PackStringLengthPrefixed("server-session-key")
		writeFakeFrame(server, encodeFakeReply(0, [][]byte{w.Bytes()}))
	}()

	id, err := c.CSessionFindOrCreateSession(context.Background(), []byte("k"), "bob", "host1", "prog")
	require.NoError(t, err)
	assert.Equal(t, "server-session-id", id)
	assert.Equal(t, "server-session-key", c.sessionKey)
}

func TestObtainServerParameters_DecodesAndValidates(t *testing.T) {
	c, server := newTestConnection(t)

	go func() {
		_ = readFakeFrame(server)
		w := wire.NewWriter(64)
		w.PackInt32(1)
		_ = w.PackStringLengthPrefixed("MaxConnections")
		_ = w.PackStringLengthPrefixed("42")
		writeFakeFrame(server, encodeFakeReply(0, [][]byte{w.Bytes()}))
	}()

	var dst struct {
		MaxConnections string `mapstructure:"MaxConnections" validate:"required"`
	}
	status, err := c.ObtainServerParameters(context.Background(), []string{"MaxConnections"}, &dst)
	require.NoError(t, err)
	assert.Equal(t, SysprmOK, status)
	assert.Equal(t, "42", dst.MaxConnections)
}

func TestLogtbGetPackTranTable_UnpacksRows(t *testing.T) {
	c, server := newTestConnection(t)

	go func() {
		_ = readFakeFrame(server)
		w := wire.NewWriter(64)
		w.PackInt32(1)
		w.PackInt32(7)
		_ = w.PackStringLengthPrefixed("alice")
		_ = w.PackStringLengthPrefixed("host1")
		_ = w.PackStringLengthPrefixed("csql")
		writeFakeFrame(server, encodeFakeReply(0, [][]byte{w.Bytes()}))
	}()

	rows, err := c.LogtbGetPackTranTable(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 7, rows[0].TranIndex)
	assert.Equal(t, "alice", rows[0].User)
	assert.Empty(t, rows[0].QueryExec)
}
