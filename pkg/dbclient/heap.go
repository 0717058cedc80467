package dbclient

import (
	"context"

	"github.com/marmos91/dbrt/internal/dispatch"
	"github.com/marmos91/dbrt/internal/wire"
	"github.com/marmos91/dbrt/pkg/value"
)

// HeapCreate creates a heap file for classOID and returns the populated
// HFID, or a null HFID on failure.
func (c *Connection) HeapCreate(ctx context.Context, classOID value.OID) (wire.HFID, error) {
	w := wire.NewWriter(wire.OIDSize)
	w.PackOID(classOID)

	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpHeapCreate, [][]byte{w.Bytes()})
	if err != nil {
		return wire.NullHFID, err
	}
	if pkt.Header.RC != 0 {
		return wire.NullHFID, nil
	}
	buf, err := pkt.GetBuffer(0, wire.HFIDSize, false)
	if err != nil {
		return wire.NullHFID, err
	}
	return wire.NewReader(buf).UnpackHFID()
}

// HeapDestroy destroys the heap file named by hfid.
func (c *Connection) HeapDestroy(ctx context.Context, hfid wire.HFID) error {
	w := wire.NewWriter(wire.HFIDSize)
	w.PackHFID(hfid)
	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpHeapDestroy, [][]byte{w.Bytes()})
	if err != nil {
		return err
	}
	if pkt.Header.RC != 0 {
		return rcError("heap_destroy", pkt.Header.RC)
	}
	return nil
}
