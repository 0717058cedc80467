package dbclient

import (
	"context"

	"github.com/marmos91/dbrt/internal/dispatch"
	"github.com/marmos91/dbrt/internal/wire"
	"github.com/marmos91/dbrt/pkg/idxkey"
	"github.com/marmos91/dbrt/pkg/value"
)

// BtreeStatus is the small status enum shared by the btree opcodes.
type BtreeStatus int

const (
	BtreeOK BtreeStatus = iota
	BtreeNotFound
	BtreeError
)

func btreeStatusFromRC(rc int32) BtreeStatus {
	switch rc {
	case 0:
		return BtreeOK
	case -1:
		return BtreeNotFound
	default:
		return BtreeError
	}
}

// BtreeAddIndex creates an index over attrTypes (one domain per indexed
// attribute) on classOID/attrID. On failure btid is guaranteed null (vfid
// null, root pageid NULL_PAGEID), matching the C original's contract.
func (c *Connection) BtreeAddIndex(ctx context.Context, classOID value.OID, attrID int32, attrTypes []value.Domain) (wire.BTID, error) {
	w := wire.NewWriter(64)
	w.PackOID(classOID)
	w.PackInt32(attrID)
	w.PackInt32(int32(len(attrTypes)))
	for _, t := range attrTypes {
		w.PackInt32(int32(t))
	}

	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpBtreeAddIndex, [][]byte{w.Bytes()})
	if err != nil {
		return wire.NullBTID, err
	}
	if pkt.Header.RC != 0 {
		return wire.NullBTID, nil
	}
	buf, err := pkt.GetBuffer(0, wire.BTIDSize, false)
	if err != nil {
		return wire.NullBTID, err
	}
	return wire.NewReader(buf).UnpackBTID()
}

// BtreeFindUnique looks up key (a single-component idxkey over VARCHAR) in
// btid under classOID.
func (c *Connection) BtreeFindUnique(ctx context.Context, classOID value.OID, btid wire.BTID, key idxkey.Key) (value.OID, BtreeStatus, error) {
	w := wire.NewWriter(64)
	w.PackOID(classOID)
	w.PackBTID(btid)
	if err := w.PackIdxKey(key); err != nil {
		return value.OID{}, BtreeError, err
	}

	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpBtreeFindUnique, [][]byte{w.Bytes()})
	if err != nil {
		return value.OID{}, BtreeError, err
	}
	if pkt.Header.RC != 0 {
		return value.OID{}, btreeStatusFromRC(pkt.Header.RC), nil
	}
	buf, err := pkt.GetBuffer(0, wire.OIDSize, false)
	if err != nil {
		return value.OID{}, BtreeError, err
	}
	oid, err := wire.NewReader(buf).UnpackOID()
	if err != nil {
		return value.OID{}, BtreeError, err
	}
	return oid, BtreeOK, nil
}

// BtreeLoadData bulk-loads key/oid pairs into btid.
func (c *Connection) BtreeLoadData(ctx context.Context, btid wire.BTID, entries []idxkey.Key, oids []value.OID) (BtreeStatus, error) {
	w := wire.NewWriter(128)
	w.PackBTID(btid)
	w.PackInt32(int32(len(entries)))
	for i, k := range entries {
		if err := w.PackIdxKey(k); err != nil {
			return BtreeError, err
		}
		w.PackOID(oids[i])
	}
	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpBtreeLoadData, [][]byte{w.Bytes()})
	if err != nil {
		return BtreeError, err
	}
	return btreeStatusFromRC(pkt.Header.RC), nil
}

// BtreeDeleteIndex drops an index.
func (c *Connection) BtreeDeleteIndex(ctx context.Context, btid wire.BTID) (BtreeStatus, error) {
	w := wire.NewWriter(wire.BTIDSize + 8)
	w.PackBTID(btid)
	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpBtreeDeleteIndex, [][]byte{w.Bytes()})
	if err != nil {
		return BtreeError, err
	}
	return btreeStatusFromRC(pkt.Header.RC), nil
}
