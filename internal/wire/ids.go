package wire

import "github.com/marmos91/dbrt/pkg/value"

// HFID identifies a heap file by volume id and first-page pageid.
type HFID struct {
	Volid  int32
	Pageid int32
	Fileid int32
}

// BTID identifies a B-tree by volume file id and root page id, aligned on
// the wire (BTIDSize = 12, after alignment).
type BTID struct {
	Vfid   int32
	Root   int32
	Unused int32
}

// LSA is a log sequence address (page, offset), aligned on the wire
// (LSASize = 12).
type LSA struct {
	Pageid int64
	Offset int32
}

// NullLSA is the sentinel used before a backup session's header LSA is
// known.
var NullLSA = LSA{Pageid: -1, Offset: -1}

// XASLID is the server-side handle for a compiled execution tree, 16 bytes
// on the wire.
type XASLID struct {
	FileID  int32
	Volid   int32
	Pageid  int32
	TimeSec int32
}

// IsNull reports whether xid is the cache-miss sentinel (FileID, Volid and
// Pageid all -1; TimeSec is not checked).
func (x XASLID) IsNull() bool {
	return x.FileID == -1 && x.Volid == -1 && x.Pageid == -1
}

// NullXASLID is returned by qmgr_prepare_query on a cache miss.
var NullXASLID = XASLID{FileID: -1, Volid: -1, Pageid: -1, TimeSec: -1}

// PackOID appends the 16-byte (volid, pageid, slotid, groupid) encoding.
func (w *Writer) PackOID(o value.OID) {
	w.PackInt32(o.Volid)
	w.PackInt32(o.Pageid)
	w.PackInt32(o.Slotid)
	w.PackInt32(o.Groupid)
}

// UnpackOID reads the 16-byte OID encoding.
func (r *Reader) UnpackOID() (value.OID, error) {
	var o value.OID
	var err error
	if o.Volid, err = r.UnpackInt32(); err != nil {
		return o, err
	}
	if o.Pageid, err = r.UnpackInt32(); err != nil {
		return o, err
	}
	if o.Slotid, err = r.UnpackInt32(); err != nil {
		return o, err
	}
	if o.Groupid, err = r.UnpackInt32(); err != nil {
		return o, err
	}
	return o, nil
}

// PackHFID appends the 12-byte heap file identifier encoding.
func (w *Writer) PackHFID(h HFID) {
	w.PackInt32(h.Volid)
	w.PackInt32(h.Pageid)
	w.PackInt32(h.Fileid)
}

// UnpackHFID reads the 12-byte HFID encoding.
func (r *Reader) UnpackHFID() (HFID, error) {
	var h HFID
	var err error
	if h.Volid, err = r.UnpackInt32(); err != nil {
		return h, err
	}
	if h.Pageid, err = r.UnpackInt32(); err != nil {
		return h, err
	}
	if h.Fileid, err = r.UnpackInt32(); err != nil {
		return h, err
	}
	return h, nil
}

// NullHFID is the sentinel returned by heap_create on failure (all fields
// -1).
var NullHFID = HFID{Volid: -1, Pageid: -1, Fileid: -1}

// PackBTID appends the aligned 12-byte B-tree identifier encoding.
func (w *Writer) PackBTID(b BTID) {
	w.alignTo8()
	w.PackInt32(b.Vfid)
	w.PackInt32(b.Root)
	w.PackInt32(b.Unused)
}

// UnpackBTID reads the aligned 12-byte BTID encoding.
func (r *Reader) UnpackBTID() (BTID, error) {
	if err := r.alignTo8(); err != nil {
		return BTID{}, err
	}
	var b BTID
	var err error
	if b.Vfid, err = r.UnpackInt32(); err != nil {
		return b, err
	}
	if b.Root, err = r.UnpackInt32(); err != nil {
		return b, err
	}
	if b.Unused, err = r.UnpackInt32(); err != nil {
		return b, err
	}
	return b, nil
}

// NullBTID mirrors NullHFID: vfid null, root pageid = NULL_PAGEID.
var NullBTID = BTID{Vfid: -1, Root: -1}

// PackLSA appends the aligned 12-byte log sequence address encoding.
func (w *Writer) PackLSA(l LSA) {
	w.PackInt64Aligned(l.Pageid)
	w.PackInt32(l.Offset)
}

// UnpackLSA reads the aligned 12-byte LSA encoding.
func (r *Reader) UnpackLSA() (LSA, error) {
	var l LSA
	var err error
	if l.Pageid, err = r.UnpackInt64Aligned(); err != nil {
		return l, err
	}
	if l.Offset, err = r.UnpackInt32(); err != nil {
		return l, err
	}
	return l, nil
}

// PackXASLID appends the 16-byte XASL id encoding.
func (w *Writer) PackXASLID(x XASLID) {
	w.PackInt32(x.FileID)
	w.PackInt32(x.Volid)
	w.PackInt32(x.Pageid)
	w.PackInt32(x.TimeSec)
}

// UnpackXASLID reads the 16-byte XASL id encoding.
func (r *Reader) UnpackXASLID() (XASLID, error) {
	var x XASLID
	var err error
	if x.FileID, err = r.UnpackInt32(); err != nil {
		return x, err
	}
	if x.Volid, err = r.UnpackInt32(); err != nil {
		return x, err
	}
	if x.Pageid, err = r.UnpackInt32(); err != nil {
		return x, err
	}
	if x.TimeSec, err = r.UnpackInt32(); err != nil {
		return x, err
	}
	return x, nil
}
