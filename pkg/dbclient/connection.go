// Package dbclient implements the locator, heap, btree and transaction
// client: one Connection per server, wrapping an internal/dispatch.Dispatcher
// with the request shapes each opcode needs.
package dbclient

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/marmos91/dbrt/internal/dispatch"
	"github.com/marmos91/dbrt/internal/logger"
)

// DialTimeout bounds establishing the TCP connection in Dial; it does not
// apply to later reads and writes on the connection.
const DialTimeout = 10 * time.Second

// Status is the client-visible connection state.
type Status int

const (
	StatusActive Status = iota
	StatusReset          // server asked for reconnect-on-commit; next call must redial
	StatusDead
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusReset:
		return "RESET"
	case StatusDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}

// Connection is one client-to-server session: a dispatcher plus the
// transaction/session/lockset state that spans many opcodes.
type Connection struct {
	dispatcher *dispatch.Dispatcher
	serverAddr string
	metrics    *dispatch.Metrics

	status    Status
	tranIndex int32
	tranState TranState

	sessionID  string
	sessionKey string

	// first_fetch_*_call: the first locator_fetch_lockset/lockhint call on
	// this connection ships the full payload; every later call on the
	// connection ships only a header, and nothing resets the flags.
	firstFetchLocksetCall  bool
	firstFetchLockhintCall bool
}

// Dial opens a fresh TCP connection to addr and wraps it in a Connection.
// There is no connection pooling or retry here, matching the teacher's
// fresh-connection-per-call policy for its one outbound RPC client.
func Dial(ctx context.Context, addr string, metrics *dispatch.Metrics) (*Connection, error) {
	dialCtx, cancel := context.WithTimeout(ctx, DialTimeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dbclient: dial %s: %w", addr, err)
	}
	logger.InfoCtx(ctx, "connected to server", logger.ServerAddr(addr))

	return &Connection{
		dispatcher:             dispatch.NewDispatcher(conn, addr, metrics),
		serverAddr:             addr,
		metrics:                metrics,
		status:                 StatusActive,
		tranState:              TranActive,
		firstFetchLocksetCall:  true,
		firstFetchLockhintCall: true,
	}, nil
}

// WrapDispatcher builds a Connection over an already-established dispatcher,
// used by tests and by callers that own connection setup themselves.
func WrapDispatcher(d *dispatch.Dispatcher, serverAddr string) *Connection {
	return &Connection{
		dispatcher:             d,
		serverAddr:             serverAddr,
		status:                 StatusActive,
		tranState:              TranActive,
		firstFetchLocksetCall:  true,
		firstFetchLockhintCall: true,
	}
}

// Close releases the underlying connection.
func (c *Connection) Close() error {
	c.status = StatusDead
	return c.dispatcher.Close()
}

// Status reports the client-visible connection state.
func (c *Connection) Status() Status { return c.status }

// TranIndex returns the transaction index assigned by the server.
func (c *Connection) TranIndex() int32 { return c.tranIndex }

// Dispatcher returns the connection's underlying request dispatcher, for
// callers that drive a secondary protocol over the same wire — the backup
// driver (pkg/backup) is the only one today.
func (c *Connection) Dispatcher() *dispatch.Dispatcher { return c.dispatcher }

// Snapshot is a point-in-time, read-only view of a Connection's live state,
// for diagnostic surfaces like pkg/adminapi that must not hold the
// connection's internal lock-free invariants hostage to an HTTP handler.
type Snapshot struct {
	ServerAddr string
	Status     Status
	TranIndex  int32
	TranState  TranState
	SessionID  string
}

// Snapshot returns the connection's current state.
func (c *Connection) Snapshot() Snapshot {
	return Snapshot{
		ServerAddr: c.serverAddr,
		Status:     c.status,
		TranIndex:  c.tranIndex,
		TranState:  c.tranState,
		SessionID:  c.sessionID,
	}
}
