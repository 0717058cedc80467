package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys, namespaced the way the pack's protocol adapters namespace
// theirs: one prefix per component.
const (
	AttrOpcode       = "dbrt.opcode"
	AttrServerAddr   = "dbrt.server_addr"
	AttrReqBytes     = "dbrt.req_bytes"
	AttrReplyBytes   = "dbrt.reply_bytes"
	AttrErrorCode    = "dbrt.error_code"
	AttrSessionID    = "dbrt.session_id"
	AttrTranIndex    = "dbrt.tran_index"
	AttrQueryID      = "dbrt.query_id"
	AttrBackupPath   = "dbrt.backup_path"
	AttrVolumeName   = "dbrt.volume_name"
	AttrBytesWritten = "dbrt.bytes_written"
)

// Span names, one per dispatch call and one per higher-level client
// operation, following the pack's "<component>.<operation>" convention.
const (
	SpanDispatch = "dispatch.call"
	SpanLocator  = "client.locator"
	SpanQuery    = "client.query"
	SpanTran     = "client.tran"
	SpanBackup   = "backup.session"
)

func Opcode(name string) attribute.KeyValue     { return attribute.String(AttrOpcode, name) }
func ServerAddr(addr string) attribute.KeyValue { return attribute.String(AttrServerAddr, addr) }
func ReqBytes(n int) attribute.KeyValue         { return attribute.Int(AttrReqBytes, n) }
func ReplyBytes(n int) attribute.KeyValue       { return attribute.Int(AttrReplyBytes, n) }
func ErrorCode(code int32) attribute.KeyValue   { return attribute.Int64(AttrErrorCode, int64(code)) }
func SessionID(id string) attribute.KeyValue    { return attribute.String(AttrSessionID, id) }
func TranIndex(idx int32) attribute.KeyValue    { return attribute.Int64(AttrTranIndex, int64(idx)) }
func QueryID(id int64) attribute.KeyValue       { return attribute.Int64(AttrQueryID, id) }

// StartDispatchSpan starts a span for one Dispatch or RecvStream round trip.
func StartDispatchSpan(ctx context.Context, opcode string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{Opcode(opcode)}, attrs...)
	return StartSpan(ctx, SpanDispatch, trace.WithAttributes(allAttrs...))
}
