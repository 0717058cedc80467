package backup

import (
	"time"

	"github.com/marmos91/dbrt/internal/wire"
)

const (
	bkBackupMagic        = "CUBRID_BACKUP"
	bkBackupHeaderIOSize = 4096 // the header occupies one full IO page so the first framed page starts at this offset
	bkBackupPageOverhead = 24   // per-page framing: iopageid (8, aligned) + compressed length (4) + checksum (4) + padding
	fullLevelExp         = 1    // full-level backups frame each page individually (exponent 0 would merge pages)
	dbNameFieldSize      = 64
)

// FramedPageSize is the on-disk size of one framed backup page for the
// given server IO page size.
func FramedPageSize(ioPageSize int32) int32 {
	return ioPageSize*fullLevelExp + bkBackupPageOverhead
}

// packHeader serializes h into a pad-sized buffer, returning alongside it
// the byte offsets of BackuptimeLSA and EndTime so Finish can patch them
// back in later without re-deriving the layout by hand (the writer's 8-byte
// alignment padding shifts those offsets around fields earlier in the
// struct, so the offsets are measured off the same Writer that did the
// packing rather than hardcoded).
func packHeader(h *Header, pad int) (buf []byte, lsaOffset, endTimeOffset int64) {
	w := wire.NewWriter(pad)

	magic := make([]byte, 16)
	copy(magic, bkBackupMagic)
	w.PackBytesRaw(magic)

	w.PackInt32(h.DBVersion)
	w.PackInt32(h.HeaderVersion)
	w.PackInt64Aligned(h.DBCreationTime.Unix())
	w.PackInt64Aligned(h.StartTime.Unix())

	name := make([]byte, dbNameFieldSize)
	copy(name, h.DBName)
	w.PackBytesRaw(name)

	w.PackInt32(h.ServerIOPageSize)
	w.PackLSA(h.CheckpointLSA)
	w.PackInt32(h.BackupIOPageSize)
	w.PackInt32(boolToInt32(h.FirstArvNeeded))
	w.PackInt64Aligned(h.NextCheckpointAt)
	w.PackInt32(h.NumPermVols)

	lsaOffset = alignedOffset(int64(w.Len()))
	w.PackLSA(h.BackuptimeLSA)

	endTimeOffset = alignedOffset(int64(w.Len()))
	w.PackInt64Aligned(h.EndTime.Unix())

	buf = w.Bytes()
	if len(buf) < pad {
		out := make([]byte, pad)
		copy(out, buf)
		buf = out
	}
	return buf, lsaOffset, endTimeOffset
}

// alignedOffset mirrors Writer.alignTo8's padding rule, so an offset
// measured before an aligned field matches where that field's data (not its
// leading pad) actually starts.
func alignedOffset(pos int64) int64 {
	pad := (8 - (pos % 8)) % 8
	return pos + pad
}

func unpackHeader(buf []byte) (*Header, error) {
	r := wire.NewReader(buf)
	h := &Header{}

	magic, err := r.UnpackBytesRaw(16)
	if err != nil {
		return nil, err
	}
	h.Magic = string(magic)

	if h.DBVersion, err = r.UnpackInt32(); err != nil {
		return nil, err
	}
	if h.HeaderVersion, err = r.UnpackInt32(); err != nil {
		return nil, err
	}
	creation, err := r.UnpackInt64Aligned()
	if err != nil {
		return nil, err
	}
	h.DBCreationTime = time.Unix(creation, 0)
	start, err := r.UnpackInt64Aligned()
	if err != nil {
		return nil, err
	}
	h.StartTime = time.Unix(start, 0)

	name, err := r.UnpackBytesRaw(dbNameFieldSize)
	if err != nil {
		return nil, err
	}
	h.DBName = trimNullPadding(name)

	if h.ServerIOPageSize, err = r.UnpackInt32(); err != nil {
		return nil, err
	}
	if h.CheckpointLSA, err = r.UnpackLSA(); err != nil {
		return nil, err
	}
	if h.BackupIOPageSize, err = r.UnpackInt32(); err != nil {
		return nil, err
	}
	arv, err := r.UnpackInt32()
	if err != nil {
		return nil, err
	}
	h.FirstArvNeeded = arv != 0
	if h.NextCheckpointAt, err = r.UnpackInt64Aligned(); err != nil {
		return nil, err
	}
	if h.NumPermVols, err = r.UnpackInt32(); err != nil {
		return nil, err
	}
	if h.BackuptimeLSA, err = r.UnpackLSA(); err != nil {
		return nil, err
	}
	endTime, err := r.UnpackInt64Aligned()
	if err != nil {
		return nil, err
	}
	h.EndTime = time.Unix(endTime, 0)

	return h, nil
}

func trimNullPadding(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
