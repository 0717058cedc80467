package dbclient

import (
	"context"

	"github.com/marmos91/dbrt/internal/dispatch"
	"github.com/marmos91/dbrt/internal/wire"
	"github.com/marmos91/dbrt/pkg/value"
)

// StatsGetStatisticsFromServer fetches the packed class statistics blob for
// classOID, opaque to the client beyond its byte length.
func (c *Connection) StatsGetStatisticsFromServer(ctx context.Context, classOID value.OID) ([]byte, error) {
	w := wire.NewWriter(wire.OIDSize)
	w.PackOID(classOID)
	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpStatsGetStatistics, [][]byte{w.Bytes()})
	if err != nil {
		return nil, err
	}
	if pkt.Header.RC != 0 {
		return nil, rcError("stats_get_statistics_from_server", pkt.Header.RC)
	}
	buf, err := pkt.GetBuffer(0, -1, true)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, nil
}

// StatsUpdateStatistics requests the server recompute statistics for
// classOID.
func (c *Connection) StatsUpdateStatistics(ctx context.Context, classOID value.OID, withFullscan bool) error {
	w := wire.NewWriter(wire.OIDSize + 4)
	w.PackOID(classOID)
	w.PackInt32(boolToInt32(withFullscan))
	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpStatsUpdateStatistics, [][]byte{w.Bytes()})
	if err != nil {
		return err
	}
	if pkt.Header.RC != 0 {
		return rcError("stats_update_statistics", pkt.Header.RC)
	}
	return nil
}

// MntServerCopyStats fetches the per-connection monitoring counters.
func (c *Connection) MntServerCopyStats(ctx context.Context) ([]byte, error) {
	return c.dispatchRawBlob(ctx, dispatch.OpMntCopyStats)
}

// MntServerGlobalStats fetches the server-wide monitoring counters.
func (c *Connection) MntServerGlobalStats(ctx context.Context) ([]byte, error) {
	return c.dispatchRawBlob(ctx, dispatch.OpMntGlobalStats)
}

func (c *Connection) dispatchRawBlob(ctx context.Context, op dispatch.Opcode) ([]byte, error) {
	pkt, err := c.dispatcher.Dispatch(ctx, op, nil)
	if err != nil {
		return nil, err
	}
	if pkt.Header.RC != 0 {
		return nil, rcError(op.String(), pkt.Header.RC)
	}
	buf, err := pkt.GetBuffer(0, -1, true)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, nil
}

// TranTableEntry is one row of the packed transaction table returned by
// LogtbGetPackTranTable.
type TranTableEntry struct {
	TranIndex int32
	User      string
	Host      string
	Program   string
	QueryExec string // only populated when includeQueryExecInfo is set
}

// LogtbGetPackTranTable receives the packed transaction table and unpacks it
// into a TRANS_INFO-equivalent slice, skipping the query-exec column when
// includeQueryExecInfo is false. Per-row strings are only allocated for rows
// that parse cleanly; a parse failure partway through stops and returns
// what was decoded so far plus the error.
func (c *Connection) LogtbGetPackTranTable(ctx context.Context, includeQueryExecInfo bool) ([]TranTableEntry, error) {
	w := wire.NewWriter(4)
	w.PackInt32(boolToInt32(includeQueryExecInfo))
	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpLogTbGetPackTranTable, [][]byte{w.Bytes()})
	if err != nil {
		return nil, err
	}
	if pkt.Header.RC != 0 {
		return nil, rcError("logtb_get_pack_tran_table", pkt.Header.RC)
	}

	buf, err := pkt.GetBuffer(0, -1, true)
	if err != nil {
		return nil, err
	}
	r := wire.NewReader(buf)
	count, err := r.UnpackInt32()
	if err != nil {
		return nil, err
	}

	entries := make([]TranTableEntry, 0, count)
	for i := int32(0); i < count; i++ {
		var e TranTableEntry
		if e.TranIndex, err = r.UnpackInt32(); err != nil {
			return entries, err
		}
		if e.User, err = r.UnpackStringLengthPrefixed(); err != nil {
			return entries, err
		}
		if e.Host, err = r.UnpackStringLengthPrefixed(); err != nil {
			return entries, err
		}
		if e.Program, err = r.UnpackStringLengthPrefixed(); err != nil {
			return entries, err
		}
		if includeQueryExecInfo {
			if e.QueryExec, err = r.UnpackStringLengthPrefixed(); err != nil {
				return entries, err
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}
