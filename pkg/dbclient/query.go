package dbclient

import (
	"context"

	"github.com/marmos91/dbrt/internal/dispatch"
	"github.com/marmos91/dbrt/internal/wire"
	"github.com/marmos91/dbrt/pkg/value"
)

// ListFileID is the client-side reconstruction of a QFILE_LIST_ID: the
// query id that owns it, the first list-file page returned inline with
// execute_query, and the plan text when the caller asked for it. Further
// pages are fetched lazily through QfileGetListFilePage.
type ListFileID struct {
	QueryID   int64
	FirstPage []byte
	PlanText  []byte
}

// PrepareQuery packs the SQL hash text, plan text and user text
// (null-padded) plus the user oid, ships the xasl stream as a second
// buffer, and returns the xasl id the server resolved (NullXASLID on a
// cache miss) plus an optional packed node header.
func (c *Connection) PrepareQuery(ctx context.Context, hashText, planText, userText string, userOID value.OID, xaslStream []byte) (wire.XASLID, []byte, error) {
	header := wire.NewWriter(wire.LengthStringNullPadded(hashText) + wire.LengthStringNullPadded(planText) + wire.LengthStringNullPadded(userText) + wire.OIDSize + wire.IntSize)
	header.PackStringNullPadded(hashText)
	header.PackStringNullPadded(planText)
	header.PackStringNullPadded(userText)
	header.PackOID(userOID)
	header.PackInt32(int32(len(xaslStream)))

	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpQmgrPrepareQuery, [][]byte{header.Bytes(), xaslStream})
	if err != nil {
		return wire.NullXASLID, nil, err
	}
	if pkt.Header.RC != 0 {
		return wire.NullXASLID, nil, rcError("qmgr_prepare_query", pkt.Header.RC)
	}

	metaBuf, err := pkt.GetBuffer(0, -1, false)
	if err != nil {
		return wire.NullXASLID, nil, err
	}
	r := wire.NewReader(metaBuf)
	xaslID, err := r.UnpackXASLID()
	if err != nil {
		return wire.NullXASLID, nil, err
	}
	nodeHeaderSize, err := r.UnpackInt32()
	if err != nil {
		return wire.NullXASLID, nil, err
	}
	if nodeHeaderSize == 0 {
		return xaslID, nil, nil
	}

	nodeHeader, err := pkt.GetBuffer(1, int(nodeHeaderSize), true)
	if err != nil {
		return xaslID, nil, err
	}
	return xaslID, nodeHeader, nil
}

// ExecuteQuery packs bind values into one contiguous self-describing
// buffer, packs the shard key into its own buffer (or a zero-length one),
// and reconstructs the query id, status flag and attached first list-file
// page from the reply. The server-request-kind the reply leads with must
// be END (qmgrExecuteEndOfRequest); any other value is a protocol error.
func (c *Connection) ExecuteQuery(ctx context.Context, xaslID wire.XASLID, bindValues []value.Value, flag, timeoutMsecs, shardGroupID int32, shardKey []byte) (*ListFileID, int32, error) {
	header := wire.NewWriter(wire.XASLIDSize + 3*wire.IntSize + wire.IntSize)
	header.PackXASLID(xaslID)
	header.PackInt32(flag)
	header.PackInt32(timeoutMsecs)
	header.PackInt32(shardGroupID)
	header.PackInt32(int32(len(bindValues)))
	for _, v := range bindValues {
		if err := header.PackValue(v); err != nil {
			return nil, 0, err
		}
	}

	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpQmgrExecuteQuery, [][]byte{header.Bytes(), shardKey})
	if err != nil {
		return nil, 0, err
	}
	if pkt.Header.RC != 0 {
		return nil, 0, rcError("qmgr_execute_query", pkt.Header.RC)
	}

	metaBuf, err := pkt.GetBuffer(0, -1, false)
	if err != nil {
		return nil, 0, err
	}
	r := wire.NewReader(metaBuf)

	requestKind, err := r.UnpackInt32()
	if err != nil {
		return nil, 0, err
	}
	if requestKind != qmgrExecuteEndOfRequest {
		return nil, 0, rcError("qmgr_execute_query: unexpected server-request-kind", requestKind)
	}
	firstPageSize, err := r.UnpackInt32()
	if err != nil {
		return nil, 0, err
	}
	planSize, err := r.UnpackInt32()
	if err != nil {
		return nil, 0, err
	}
	queryID, err := r.UnpackInt64Aligned()
	if err != nil {
		return nil, 0, err
	}
	statusFlag, err := r.UnpackInt32()
	if err != nil {
		return nil, 0, err
	}

	list := &ListFileID{QueryID: queryID}
	if firstPageSize > 0 {
		page, err := pkt.GetBuffer(1, int(firstPageSize), true)
		if err != nil {
			return nil, 0, err
		}
		list.FirstPage = make([]byte, len(page))
		copy(list.FirstPage, page)
	}
	if planSize > 0 {
		plan, err := pkt.GetBuffer(2, int(planSize), true)
		if err != nil {
			return nil, 0, err
		}
		list.PlanText = make([]byte, len(plan))
		copy(list.PlanText, plan)
	}
	return list, statusFlag, nil
}

// qmgrExecuteEndOfRequest is the only server-request-kind this client
// accepts from qmgr_execute_query; any streamed intermediate kind would
// mean the server expects more round trips this client doesn't implement.
const qmgrExecuteEndOfRequest int32 = 1

// QfileGetListFilePage lazily fetches one list-file page beyond the one
// attached to execute_query's reply.
func (c *Connection) QfileGetListFilePage(ctx context.Context, queryID int64, volid, pageid int32) ([]byte, error) {
	w := wire.NewWriter(wire.BigintAlignedSize + 2*wire.IntSize)
	w.PackInt64Aligned(queryID)
	w.PackInt32(volid)
	w.PackInt32(pageid)

	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpQfileGetListFilePage, [][]byte{w.Bytes()})
	if err != nil {
		return nil, err
	}
	if pkt.Header.RC != 0 {
		return nil, rcError("qfile_get_list_file_page", pkt.Header.RC)
	}
	buf, err := pkt.GetBuffer(0, -1, true)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, nil
}

// QmgrEndQuery releases server-side query state.
func (c *Connection) QmgrEndQuery(ctx context.Context, queryID int64) error {
	w := wire.NewWriter(wire.BigintAlignedSize)
	w.PackInt64Aligned(queryID)
	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpQmgrEndQuery, [][]byte{w.Bytes()})
	if err != nil {
		return err
	}
	if pkt.Header.RC != 0 {
		return rcError("qmgr_end_query", pkt.Header.RC)
	}
	return nil
}

// QmgrDropQueryPlan invalidates the plan cache entry identified by sql text,
// user oid and xasl id.
func (c *Connection) QmgrDropQueryPlan(ctx context.Context, sql string, userOID value.OID, xaslID wire.XASLID) error {
	w := wire.NewWriter(wire.LengthStringLengthPrefixed(sql) + wire.OIDSize + wire.XASLIDSize)
	if err := w.PackStringLengthPrefixed(sql); err != nil {
		return err
	}
	w.PackOID(userOID)
	w.PackXASLID(xaslID)

	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpQmgrDropQueryPlan, [][]byte{w.Bytes()})
	if err != nil {
		return err
	}
	if pkt.Header.RC != 0 {
		return rcError("qmgr_drop_query_plan", pkt.Header.RC)
	}
	return nil
}

// QmgrDropAllQueryPlans flushes the whole server-side plan cache.
func (c *Connection) QmgrDropAllQueryPlans(ctx context.Context) error {
	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpQmgrDropAllQueryPlans, nil)
	if err != nil {
		return err
	}
	if pkt.Header.RC != 0 {
		return rcError("qmgr_drop_all_query_plans", pkt.Header.RC)
	}
	return nil
}
