package dbclient

import (
	"context"
	"fmt"

	"github.com/marmos91/dbrt/internal/dispatch"
	"github.com/marmos91/dbrt/internal/wire"
	"github.com/marmos91/dbrt/pkg/lock"
	"github.com/marmos91/dbrt/pkg/value"
)

// LocatorStatus is the small status enum shared by the class-name and
// oid-assignment opcodes.
type LocatorStatus int

const (
	LocatorOK LocatorStatus = iota
	LocatorError
	LocatorNotFound
)

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// LocatorFetch packs (oid, lock, class_oid, prefetch), dispatches
// locator_fetch, and reconstructs the copy area the reply describes. A
// failed fetch (success == 0 in the reply header) returns a nil CopyArea
// with no error, matching the C original's null-copy-area-on-failure
// contract; a nil error with a nil CopyArea is the "not found" case.
func (c *Connection) LocatorFetch(ctx context.Context, oid value.OID, lockMode lock.Mode, classOID value.OID, prefetch bool) (*CopyArea, error) {
	w := wire.NewWriter(wire.OIDSize*2 + 8)
	w.PackOID(oid)
	w.PackInt32(int32(lockMode))
	w.PackOID(classOID)
	w.PackInt32(boolToInt32(prefetch))

	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpLocatorFetch, [][]byte{w.Bytes()})
	if err != nil {
		return nil, err
	}
	if pkt.Header.RC != 0 {
		return nil, nil
	}

	header, err := pkt.GetBuffer(0, 4*wire.IntSize, false)
	if err != nil {
		return nil, err
	}
	r := wire.NewReader(header)
	numObjects, err := r.UnpackInt32()
	if err != nil {
		return nil, err
	}
	descSize, err := r.UnpackInt32()
	if err != nil {
		return nil, err
	}
	contentSize, err := r.UnpackInt32()
	if err != nil {
		return nil, err
	}
	success, err := r.UnpackInt32()
	if err != nil {
		return nil, err
	}
	if success == 0 {
		return nil, nil
	}

	descBuf, err := pkt.GetBuffer(1, int(descSize), true)
	if err != nil {
		return nil, err
	}
	contentBuf, err := pkt.GetBuffer(2, int(contentSize), true)
	if err != nil {
		return nil, err
	}

	descs, err := unpackDescriptorTable(descBuf, int(numObjects))
	if err != nil {
		return nil, err
	}
	content := make([]byte, len(contentBuf))
	copy(content, contentBuf)

	return &CopyArea{Descriptors: descs, Content: content}, nil
}

// locatorForce is the shared body of LocatorForce and LocatorReplForce: both
// extract num_objects and sizes from the caller's copy area and split it
// into descriptor and content request buffers.
func (c *Connection) locatorForce(ctx context.Context, op dispatch.Opcode, area *CopyArea) error {
	header := wire.NewWriter(4 * wire.IntSize)
	descBuf := packDescriptorTable(area.Descriptors)
	header.PackInt32(int32(len(area.Descriptors)))
	header.PackInt32(int32(len(descBuf)))
	header.PackInt32(int32(len(area.Content)))
	header.PackInt32(0)

	pkt, err := c.dispatcher.Dispatch(ctx, op, [][]byte{header.Bytes(), descBuf, area.Content})
	if err != nil {
		return err
	}
	if pkt.Header.RC != 0 {
		return fmt.Errorf("dbclient: locator force failed, rc=%d", pkt.Header.RC)
	}
	return nil
}

// LocatorForce sends a client-built copy area to the server to apply.
func (c *Connection) LocatorForce(ctx context.Context, area *CopyArea) error {
	return c.locatorForce(ctx, dispatch.OpLocatorForce, area)
}

// LocatorReplForce is LocatorForce's replication-aware counterpart: it sends
// the copy area under the replication opcode and, like LocatorForce, reads
// no reply copy area back.
func (c *Connection) LocatorReplForce(ctx context.Context, area *CopyArea) error {
	return c.locatorForce(ctx, dispatch.OpLocatorReplForce, area)
}

// LocatorFetchLockSet dispatches locator_fetch_lockset. The first call on a
// Connection ships the full lockset; later calls send only a header,
// tracked via firstFetchLocksetCall per spec.md 4.4.
func (c *Connection) LocatorFetchLockSet(ctx context.Context, ls wire.LockSet) (wire.LockSet, error) {
	w := wire.NewWriter(wire.LengthLockSet(ls))
	if c.firstFetchLocksetCall {
		w.PackLockSet(ls)
	} else {
		w.PackInt32(int32(len(ls.Classes)))
		w.PackInt32(int32(len(ls.Instances)))
	}

	if err := c.dispatcher.SendMsg(ctx, dispatch.OpLocatorFetchLockSet, [][]byte{w.Bytes()}); err != nil {
		return wire.LockSet{}, err
	}
	c.firstFetchLocksetCall = false

	pkt, err := c.dispatcher.RecvMsg(ctx)
	if err != nil {
		return wire.LockSet{}, err
	}
	if pkt.Header.RC != 0 {
		return wire.LockSet{}, fmt.Errorf("dbclient: locator_fetch_lockset failed, rc=%d", pkt.Header.RC)
	}

	buf, err := pkt.GetBuffer(0, -1, true)
	if err != nil {
		return wire.LockSet{}, err
	}
	return wire.NewReader(buf).UnpackLockSet()
}

// LocatorFetchLockHintClasses mirrors LocatorFetchLockSet for the class-only
// lock hint table.
func (c *Connection) LocatorFetchLockHintClasses(ctx context.Context, lh wire.LockHint) (wire.LockHint, error) {
	w := wire.NewWriter(64)
	if c.firstFetchLockhintCall {
		w.PackLockHint(lh)
	} else {
		w.PackInt32(int32(len(lh.Classes)))
	}

	if err := c.dispatcher.SendMsg(ctx, dispatch.OpLocatorFetchLockHintClasses, [][]byte{w.Bytes()}); err != nil {
		return wire.LockHint{}, err
	}
	c.firstFetchLockhintCall = false

	pkt, err := c.dispatcher.RecvMsg(ctx)
	if err != nil {
		return wire.LockHint{}, err
	}
	if pkt.Header.RC != 0 {
		return wire.LockHint{}, fmt.Errorf("dbclient: locator_fetch_lockhint_classes failed, rc=%d", pkt.Header.RC)
	}
	buf, err := pkt.GetBuffer(0, -1, true)
	if err != nil {
		return wire.LockHint{}, err
	}
	return wire.NewReader(buf).UnpackLockHint()
}

// LocatorFindClassOID resolves a class name to its OID.
func (c *Connection) LocatorFindClassOID(ctx context.Context, className string) (value.OID, LocatorStatus, error) {
	w := wire.NewWriter(wire.LengthStringLengthPrefixed(className))
	if err := w.PackStringLengthPrefixed(className); err != nil {
		return value.OID{}, LocatorError, err
	}
	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpLocatorFindClassOID, [][]byte{w.Bytes()})
	if err != nil {
		return value.OID{}, LocatorError, err
	}
	return decodeOIDStatusReply(pkt)
}

// LocatorReserveClassNames reserves a set of class names ahead of CREATE.
func (c *Connection) LocatorReserveClassNames(ctx context.Context, names []string) (LocatorStatus, error) {
	return c.dispatchNameListStatus(ctx, dispatch.OpLocatorReserveClassNames, names)
}

// LocatorDeleteClassName removes a reserved/committed class name.
func (c *Connection) LocatorDeleteClassName(ctx context.Context, name string) (LocatorStatus, error) {
	return c.dispatchNameListStatus(ctx, dispatch.OpLocatorDeleteClassName, []string{name})
}

// LocatorRenameClassName renames a class.
func (c *Connection) LocatorRenameClassName(ctx context.Context, oldName, newName string) (LocatorStatus, error) {
	return c.dispatchNameListStatus(ctx, dispatch.OpLocatorRenameClassName, []string{oldName, newName})
}

// LocatorAssignOID assigns a permanent OID to a reserved class name.
func (c *Connection) LocatorAssignOID(ctx context.Context, className string, classOID value.OID) (value.OID, LocatorStatus, error) {
	w := wire.NewWriter(64)
	if err := w.PackStringLengthPrefixed(className); err != nil {
		return value.OID{}, LocatorError, err
	}
	w.PackOID(classOID)
	pkt, err := c.dispatcher.Dispatch(ctx, dispatch.OpLocatorAssignOID, [][]byte{w.Bytes()})
	if err != nil {
		return value.OID{}, LocatorError, err
	}
	return decodeOIDStatusReply(pkt)
}

func (c *Connection) dispatchNameListStatus(ctx context.Context, op dispatch.Opcode, names []string) (LocatorStatus, error) {
	w := wire.NewWriter(64)
	w.PackInt32(int32(len(names)))
	for _, n := range names {
		if err := w.PackStringLengthPrefixed(n); err != nil {
			return LocatorError, err
		}
	}
	pkt, err := c.dispatcher.Dispatch(ctx, op, [][]byte{w.Bytes()})
	if err != nil {
		return LocatorError, err
	}
	return statusFromRC(pkt.Header.RC), nil
}

func decodeOIDStatusReply(pkt *dispatch.Packet) (value.OID, LocatorStatus, error) {
	if pkt.Header.RC != 0 {
		return value.OID{}, statusFromRC(pkt.Header.RC), nil
	}
	buf, err := pkt.GetBuffer(0, wire.OIDSize, false)
	if err != nil {
		return value.OID{}, LocatorError, err
	}
	oid, err := wire.NewReader(buf).UnpackOID()
	if err != nil {
		return value.OID{}, LocatorError, err
	}
	return oid, LocatorOK, nil
}

func statusFromRC(rc int32) LocatorStatus {
	switch rc {
	case 0:
		return LocatorOK
	case -1:
		return LocatorNotFound
	default:
		return LocatorError
	}
}
