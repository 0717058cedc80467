package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/marmos91/dbrt/internal/dbrterr"
	"github.com/marmos91/dbrt/internal/logger"
	"github.com/marmos91/dbrt/internal/telemetry"
)

// Dispatcher is the request dispatcher described for the locator/query/tran
// client: one-shot request/reply, split send/recv for large lockset
// payloads, and stream receive for dump commands, all driven by the
// declarative opcode Table.
type Dispatcher struct {
	conn       io.ReadWriteCloser
	serverAddr string
	metrics    *Metrics

	mu      sync.Mutex // serializes each call's frame I/O on one connection; not held between SendMsg and RecvMsg
	pending bool       // a SendMsg has fired without a matching RecvMsg yet
}

// NewDispatcher wraps conn, a connection to one server, already established
// by the caller (pkg/dbclient owns connect/reconnect policy).
func NewDispatcher(conn io.ReadWriteCloser, serverAddr string, metrics *Metrics) *Dispatcher {
	return &Dispatcher{conn: conn, serverAddr: serverAddr, metrics: metrics}
}

// Close closes the underlying connection.
func (d *Dispatcher) Close() error {
	return d.conn.Close()
}

// Dispatch performs a one-shot request/reply: it sends op with reqBufs, then
// blocks for the reply and returns it as a Packet. Any I/O failure pushes an
// IO-kind Record onto the stack carried in ctx (if present) and translates
// to ErrConnectionLost.
func (d *Dispatcher) Dispatch(ctx context.Context, op Opcode, reqBufs [][]byte) (*Packet, error) {
	start := time.Now()
	shape := Table[op]
	name := op.String()
	if shape != nil {
		name = shape.Name
	}

	ctx, span := telemetry.StartDispatchSpan(ctx, name, telemetry.ServerAddr(d.serverAddr))
	defer span.End()

	logger.DebugCtx(ctx, "dispatching request", logger.Opcode(name), logger.ServerAddr(d.serverAddr))

	d.mu.Lock()
	defer d.mu.Unlock()

	reqBody := encodeRequest(op, reqBufs)
	if err := writeFrame(d.conn, reqBody); err != nil {
		d.recordIOFailure(ctx, "write request")
		d.recordMetric(name, "io_error", start, len(reqBody), 0)
		telemetry.RecordError(ctx, err)
		return nil, dbrterr.ErrConnectionLost
	}

	replyBody, err := readFrame(d.conn)
	if err != nil {
		d.recordIOFailure(ctx, "read reply")
		d.recordMetric(name, "io_error", start, len(reqBody), 0)
		telemetry.RecordError(ctx, err)
		return nil, dbrterr.ErrConnectionLost
	}

	pkt, err := decodeReply(replyBody)
	if err != nil {
		d.recordIOFailure(ctx, "decode reply")
		d.recordMetric(name, "corrupt", start, len(reqBody), len(replyBody))
		telemetry.RecordError(ctx, err)
		return nil, dbrterr.ErrCorruptWireData
	}

	telemetry.SetAttributes(ctx, telemetry.ReqBytes(len(reqBody)), telemetry.ReplyBytes(len(replyBody)), telemetry.ErrorCode(pkt.Header.RC))
	status := "ok"
	if pkt.Header.RC != 0 {
		status = "server_error"
	}
	d.recordMetric(name, status, start, len(reqBody), len(replyBody))

	logger.DebugCtx(ctx, "dispatch complete",
		logger.Opcode(name), slog.Int(logger.KeyReqBytes, len(reqBody)), slog.Int(logger.KeyReplyBytes, len(replyBody)))

	return pkt, nil
}

// SendMsg starts a split request/reply exchange: it writes the request frame
// and returns, without blocking for the reply. Used for very large packed
// lockset/lockhint calls, where the caller may want to do other work before
// consuming the reply. Only one SendMsg may be outstanding per Dispatcher at
// a time; RecvMsg must be called before the next SendMsg.
func (d *Dispatcher) SendMsg(ctx context.Context, op Opcode, reqBufs [][]byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending {
		return fmt.Errorf("dispatch: SendMsg called while a previous exchange is still pending RecvMsg")
	}

	name := op.String()
	if shape := Table[op]; shape != nil {
		name = shape.Name
	}
	logger.DebugCtx(ctx, "sending split request", logger.Opcode(name))

	reqBody := encodeRequest(op, reqBufs)
	if err := writeFrame(d.conn, reqBody); err != nil {
		d.recordIOFailure(ctx, "write split request")
		return dbrterr.ErrConnectionLost
	}
	d.pending = true
	return nil
}

// RecvMsg blocks for the reply to a prior SendMsg.
func (d *Dispatcher) RecvMsg(ctx context.Context) (*Packet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.pending {
		return nil, fmt.Errorf("dispatch: RecvMsg called with no outstanding SendMsg")
	}
	d.pending = false

	replyBody, err := readFrame(d.conn)
	if err != nil {
		d.recordIOFailure(ctx, "read split reply")
		return nil, dbrterr.ErrConnectionLost
	}
	pkt, err := decodeReply(replyBody)
	if err != nil {
		d.recordIOFailure(ctx, "decode split reply")
		return nil, dbrterr.ErrCorruptWireData
	}
	return pkt, nil
}

// RecvStream sends op as a request, then forwards the reply body verbatim
// to w without buffering it into a Packet, used for dump commands
// (lock/stat/param/plan dump, backup volume transfer) that stream an
// unbounded amount of data. It returns the number of bytes forwarded.
func (d *Dispatcher) RecvStream(ctx context.Context, op Opcode, reqBufs [][]byte, w io.Writer) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	name := op.String()
	if shape := Table[op]; shape != nil {
		name = shape.Name
	}

	ctx, span := telemetry.StartDispatchSpan(ctx, name, telemetry.ServerAddr(d.serverAddr))
	defer span.End()

	reqBody := encodeRequest(op, reqBufs)
	if err := writeFrame(d.conn, reqBody); err != nil {
		d.recordIOFailure(ctx, "write stream request")
		telemetry.RecordError(ctx, err)
		return 0, dbrterr.ErrConnectionLost
	}

	body, err := readFrame(d.conn)
	if err != nil {
		d.recordIOFailure(ctx, "read stream frame")
		telemetry.RecordError(ctx, err)
		return 0, dbrterr.ErrConnectionLost
	}

	n, err := w.Write(body)
	if err != nil {
		return int64(n), fmt.Errorf("dispatch: forward stream to writer: %w", err)
	}
	d.metrics.RecordRoundTrip(name, "ok", 0, len(reqBody), len(body))
	return int64(n), nil
}

func (d *Dispatcher) recordIOFailure(ctx context.Context, what string) {
	stack := dbrterr.StackFromContext(ctx)
	if stack == nil {
		return
	}
	stack.Push(dbrterr.KindIO, 0, dbrterr.SeverityFatal, fmt.Sprintf("dispatch: %s to %s failed", what, d.serverAddr))
}

func (d *Dispatcher) recordMetric(opcode, status string, start time.Time, reqBytes, replyBytes int) {
	if d.metrics == nil {
		return
	}
	d.metrics.RecordRoundTrip(opcode, status, time.Since(start).Seconds(), reqBytes, replyBytes)
}
