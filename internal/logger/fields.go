package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging across the dispatcher,
// locator/query/tran client, query-result cursors, and backup driver.
const (
	// Distributed tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// Dispatch (C3)
	KeyOpcode     = "opcode"
	KeyServerAddr = "server_addr"
	KeyReqBytes   = "req_bytes"
	KeyReplyBytes = "reply_bytes"
	KeyErrorCode  = "error_code"
	KeyAttempt    = "attempt"

	// Locator/query/tran client (C4)
	KeySessionID = "session_id"
	KeyTranIndex = "tran_index"
	KeyTranState = "tran_state"
	KeyOID       = "oid"
	KeyClassOID  = "class_oid"
	KeyLockMode  = "lock_mode"
	KeyHFID      = "hfid"
	KeyBTID      = "btid"

	// Query result & cursor (C5)
	KeyQueryID     = "query_id"
	KeyCursorPos   = "cursor_pos"
	KeyTupleCount  = "tuple_count"
	KeyResultType  = "result_type"
	KeyHoldable    = "holdable"
	KeyTableActive = "table_active"

	// Value/coercion (C1/C6)
	KeyDomain   = "domain"
	KeyFunction = "function"

	// Backup driver (C8)
	KeyBackupPath   = "backup_path"
	KeyVolumeName   = "volume_name"
	KeyBytesWritten = "bytes_written"
	KeyCompression  = "compression"
	KeyMakeSlave    = "make_slave"

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeySource     = "source"
)

// Opcode returns a slog.Attr for a dispatched opcode name.
func Opcode(name string) slog.Attr {
	return slog.String(KeyOpcode, name)
}

// ServerAddr returns a slog.Attr for the remote server address.
func ServerAddr(addr string) slog.Attr {
	return slog.String(KeyServerAddr, addr)
}

// SessionID returns a slog.Attr for a session identifier.
func SessionID(id string) slog.Attr {
	return slog.String(KeySessionID, id)
}

// TranIndex returns a slog.Attr for a transaction index.
func TranIndex(idx int32) slog.Attr {
	return slog.Int(KeyTranIndex, int(idx))
}

// QueryID returns a slog.Attr for a query id.
func QueryID(id int64) slog.Attr {
	return slog.Int64(KeyQueryID, id)
}

// OID returns a slog.Attr formatted as vol|page|slot.
func OID(volid, pageid, slotid int32) slog.Attr {
	return slog.String(KeyOID, fmt.Sprintf("%d|%d|%d", volid, pageid, slotid))
}

// Error returns a slog.Attr for an error value.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// DurationMs returns a slog.Attr for an operation duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}
