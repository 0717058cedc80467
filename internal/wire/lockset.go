package wire

import (
	"github.com/marmos91/dbrt/pkg/lock"
	"github.com/marmos91/dbrt/pkg/value"
)

// ClassLockEntry pairs a class OID with the lock mode the client guesses it
// will need, one row of the lockset/lockhint class table.
type ClassLockEntry struct {
	ClassOID value.OID
	Mode     lock.Mode
}

// LockSet is the serialisable request object packed once per call: a table
// of class OIDs and guessed modes followed by a table of instance OIDs and
// a quit-on-error flag. first_fetch_*_call governs whether this is shipped
// in full on a given call; see pkg/dbclient.
type LockSet struct {
	Classes     []ClassLockEntry
	Instances   []value.OID
	QuitOnError bool
}

// PackLockSet appends the class table, the instance table, then the
// quit-on-error flag.
func (w *Writer) PackLockSet(ls LockSet) {
	w.PackInt32(int32(len(ls.Classes)))
	for _, c := range ls.Classes {
		w.PackOID(c.ClassOID)
		w.PackInt32(int32(c.Mode))
	}

	w.PackInt32(int32(len(ls.Instances)))
	for _, o := range ls.Instances {
		w.PackOID(o)
	}

	w.PackInt32(boolToInt32(ls.QuitOnError))
}

// UnpackLockSet reads the encoding written by PackLockSet.
func (r *Reader) UnpackLockSet() (LockSet, error) {
	var ls LockSet

	classCount, err := r.UnpackInt32()
	if err != nil {
		return ls, err
	}
	ls.Classes = make([]ClassLockEntry, classCount)
	for i := range ls.Classes {
		oid, err := r.UnpackOID()
		if err != nil {
			return ls, err
		}
		modeRaw, err := r.UnpackInt32()
		if err != nil {
			return ls, err
		}
		ls.Classes[i] = ClassLockEntry{ClassOID: oid, Mode: lock.Mode(modeRaw)}
	}

	instCount, err := r.UnpackInt32()
	if err != nil {
		return ls, err
	}
	ls.Instances = make([]value.OID, instCount)
	for i := range ls.Instances {
		oid, err := r.UnpackOID()
		if err != nil {
			return ls, err
		}
		ls.Instances[i] = oid
	}

	quitRaw, err := r.UnpackInt32()
	if err != nil {
		return ls, err
	}
	ls.QuitOnError = quitRaw != 0
	return ls, nil
}

// LockHint is the companion structure for locator_fetch_lockhint_classes:
// only the class table is meaningful, guessed modes come from the catalog
// rather than from held transaction locks.
type LockHint struct {
	Classes     []ClassLockEntry
	QuitOnError bool
}

// PackLockHint appends the class table followed by the quit-on-error flag.
func (w *Writer) PackLockHint(lh LockHint) {
	w.PackInt32(int32(len(lh.Classes)))
	for _, c := range lh.Classes {
		w.PackOID(c.ClassOID)
		w.PackInt32(int32(c.Mode))
	}
	w.PackInt32(boolToInt32(lh.QuitOnError))
}

// UnpackLockHint reads the encoding written by PackLockHint.
func (r *Reader) UnpackLockHint() (LockHint, error) {
	var lh LockHint
	count, err := r.UnpackInt32()
	if err != nil {
		return lh, err
	}
	lh.Classes = make([]ClassLockEntry, count)
	for i := range lh.Classes {
		oid, err := r.UnpackOID()
		if err != nil {
			return lh, err
		}
		modeRaw, err := r.UnpackInt32()
		if err != nil {
			return lh, err
		}
		lh.Classes[i] = ClassLockEntry{ClassOID: oid, Mode: lock.Mode(modeRaw)}
	}
	quitRaw, err := r.UnpackInt32()
	if err != nil {
		return lh, err
	}
	lh.QuitOnError = quitRaw != 0
	return lh, nil
}
