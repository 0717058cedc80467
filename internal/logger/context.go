package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds request-scoped logging context for one dispatch call,
// one transaction, or one backup session.
type LogContext struct {
	TraceID    string    // OpenTelemetry trace ID
	SpanID     string    // OpenTelemetry span ID
	Opcode     string    // NET_SERVER_* opcode name being dispatched
	ServerAddr string    // remote server address (host:port)
	SessionID  string    // client session identifier
	TranIndex  int32     // transaction index on the server connection
	QueryID    int64     // active query id, if any
	StartTime  time.Time // for duration calculation
}

// WithContext returns a new context carrying the given LogContext.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from ctx, or nil if absent.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for a connection to serverAddr.
func NewLogContext(serverAddr string) *LogContext {
	return &LogContext{
		ServerAddr: serverAddr,
		StartTime:  time.Now(),
	}
}

// Clone creates a copy of the LogContext.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithOpcode returns a copy with the opcode set.
func (lc *LogContext) WithOpcode(opcode string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Opcode = opcode
	}
	return clone
}

// WithSession returns a copy with the session id set.
func (lc *LogContext) WithSession(sessionID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.SessionID = sessionID
	}
	return clone
}

// WithTran returns a copy with the transaction index set.
func (lc *LogContext) WithTran(tranIndex int32) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TranIndex = tranIndex
	}
	return clone
}

// WithQuery returns a copy with the query id set.
func (lc *LogContext) WithQuery(queryID int64) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.QueryID = queryID
	}
	return clone
}

// WithTrace returns a copy with trace info set.
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
