package dbclient

import (
	"github.com/marmos91/dbrt/internal/wire"
	"github.com/marmos91/dbrt/pkg/value"
)

// CopyAreaDescriptor is one fixed-width row of a copy area's descriptor
// table: which object, which heap file, and where its bytes sit in the
// content blob that follows the table.
type CopyAreaDescriptor struct {
	OID       value.OID
	HFID      wire.HFID
	Offset    int32
	Length    int32
	Operation int32
}

const copyAreaDescriptorSize = wire.OIDSize + wire.HFIDSize + 3*wire.IntSize

// CopyArea is the locator_fetch/force payload: a descriptor table and the
// content blob it indexes into, reconstructed as one contiguous region the
// way the server serialises it (spec.md 4.4).
type CopyArea struct {
	Descriptors []CopyAreaDescriptor
	Content     []byte
}

func packDescriptorTable(descs []CopyAreaDescriptor) []byte {
	w := wire.NewWriter(len(descs) * copyAreaDescriptorSize)
	for _, d := range descs {
		w.PackOID(d.OID)
		w.PackHFID(d.HFID)
		w.PackInt32(d.Offset)
		w.PackInt32(d.Length)
		w.PackInt32(d.Operation)
	}
	return w.Bytes()
}

func unpackDescriptorTable(buf []byte, numObjects int) ([]CopyAreaDescriptor, error) {
	r := wire.NewReader(buf)
	descs := make([]CopyAreaDescriptor, numObjects)
	for i := range descs {
		oid, err := r.UnpackOID()
		if err != nil {
			return nil, err
		}
		hfid, err := r.UnpackHFID()
		if err != nil {
			return nil, err
		}
		offset, err := r.UnpackInt32()
		if err != nil {
			return nil, err
		}
		length, err := r.UnpackInt32()
		if err != nil {
			return nil, err
		}
		op, err := r.UnpackInt32()
		if err != nil {
			return nil, err
		}
		descs[i] = CopyAreaDescriptor{OID: oid, HFID: hfid, Offset: offset, Length: length, Operation: op}
	}
	return descs, nil
}
