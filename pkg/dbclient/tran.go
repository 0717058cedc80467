package dbclient

import (
	"context"

	"github.com/marmos91/dbrt/internal/dispatch"
	"github.com/marmos91/dbrt/internal/wire"
)

// TranState mirrors the server's TRAN_STATE enum as far as the client needs
// to branch on it.
type TranState int

const (
	TranActive TranState = iota
	TranCommitted
	TranAborted
	TranUnknown
)

func (s TranState) String() string {
	switch s {
	case TranActive:
		return "ACTIVE"
	case TranCommitted:
		return "COMMITTED"
	case TranAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// TranServerCommit commits the current transaction. If the client record
// already shows the server outside a transaction, it short-circuits to the
// local committed state without a round trip. On replication-aware servers
// that asked for reset-on-commit, the connection status flips to RESET so
// the next API call reconnects to an active server.
func (c *Connection) TranServerCommit(ctx context.Context, retainLock bool) (TranState, error) {
	if c.tranState != TranActive {
		return c.tranState, nil
	}

	w := wire.NewWriter(4)
	w.PackInt32(boolToInt32(retainLock))
	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpTranServerCommit, [][]byte{w.Bytes()})
	if err != nil {
		return c.tranState, err
	}

	r := wire.NewReader(mustBuffer(pkt, 0))
	stateRaw, _ := r.UnpackInt32()
	resetRequested, _ := r.UnpackInt32()
	c.tranState = TranState(stateRaw)
	if resetRequested != 0 {
		c.status = StatusReset
	}
	return c.tranState, nil
}

// TranServerAbort aborts the current transaction, short-circuiting the same
// way TranServerCommit does.
func (c *Connection) TranServerAbort(ctx context.Context) (TranState, error) {
	if c.tranState != TranActive {
		return c.tranState, nil
	}
	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpTranServerAbort, nil)
	if err != nil {
		return c.tranState, err
	}
	r := wire.NewReader(mustBuffer(pkt, 0))
	stateRaw, _ := r.UnpackInt32()
	c.tranState = TranState(stateRaw)
	return c.tranState, nil
}

// TranServerSavepoint creates a named savepoint and returns its LSA.
func (c *Connection) TranServerSavepoint(ctx context.Context, name string) (wire.LSA, error) {
	w := wire.NewWriter(64)
	if err := w.PackStringLengthPrefixed(name); err != nil {
		return wire.NullLSA, err
	}
	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpTranServerSavepoint, [][]byte{w.Bytes()})
	if err != nil {
		return wire.NullLSA, err
	}
	if pkt.Header.RC != 0 {
		return wire.NullLSA, rcError("tran_server_savepoint", pkt.Header.RC)
	}
	buf, err := pkt.GetBuffer(0, -1, false)
	if err != nil {
		return wire.NullLSA, err
	}
	return wire.NewReader(buf).UnpackLSA()
}

// TranServerPartialAbort rolls back to a named savepoint, returning the new
// transaction state and the LSA rolled back to.
func (c *Connection) TranServerPartialAbort(ctx context.Context, savepointName string) (TranState, wire.LSA, error) {
	w := wire.NewWriter(64)
	if err := w.PackStringLengthPrefixed(savepointName); err != nil {
		return c.tranState, wire.NullLSA, err
	}
	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpTranServerPartialAbort, [][]byte{w.Bytes()})
	if err != nil {
		return c.tranState, wire.NullLSA, err
	}
	r := wire.NewReader(mustBuffer(pkt, 0))
	stateRaw, _ := r.UnpackInt32()
	lsa, err := r.UnpackLSA()
	if err != nil {
		return c.tranState, wire.NullLSA, err
	}
	c.tranState = TranState(stateRaw)
	return c.tranState, lsa, nil
}

// LogResetWaitMsecs changes the server-side lock wait timeout for this
// transaction.
func (c *Connection) LogResetWaitMsecs(ctx context.Context, ms int32) error {
	w := wire.NewWriter(4)
	w.PackInt32(ms)
	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpLogResetWaitMsecs, [][]byte{w.Bytes()})
	if err != nil {
		return err
	}
	if pkt.Header.RC != 0 {
		return rcError("log_reset_wait_msecs", pkt.Header.RC)
	}
	return nil
}

// LogCheckpoint forces a checkpoint; fails against a standalone server.
func (c *Connection) LogCheckpoint(ctx context.Context) error {
	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpLogCheckpoint, nil)
	if err != nil {
		return err
	}
	if pkt.Header.RC != 0 {
		return rcError("log_checkpoint", pkt.Header.RC)
	}
	return nil
}

// LogSetSuppressReplOnTransaction toggles replication suppression for the
// current transaction.
func (c *Connection) LogSetSuppressReplOnTransaction(ctx context.Context, set bool) error {
	w := wire.NewWriter(4)
	w.PackInt32(boolToInt32(set))
	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpLogSetSuppressRepl, [][]byte{w.Bytes()})
	if err != nil {
		return err
	}
	if pkt.Header.RC != 0 {
		return rcError("log_set_suppress_repl_on_transaction", pkt.Header.RC)
	}
	return nil
}

func mustBuffer(pkt *dispatch.Packet, index int) []byte {
	buf, err := pkt.GetBuffer(index, -1, false)
	if err != nil {
		return nil
	}
	return buf
}
