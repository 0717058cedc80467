package backup

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// checkFreeSpace reports an error if the filesystem holding path's directory
// has fewer than neededPages worth of free space, counting each page as
// bkBackupHeaderIOSize bytes.
func checkFreeSpace(path string, neededPages int64) error {
	var st unix.Statfs_t
	if err := unix.Statfs(filepath.Dir(path), &st); err != nil {
		return err
	}
	freeBytes := uint64(st.Bavail) * uint64(st.Bsize)
	if freeBytes < uint64(neededPages)*uint64(bkBackupHeaderIOSize) {
		return errors.New("backup: destination filesystem does not have enough free space")
	}
	return nil
}

// retryingWriteAt writes buf to f at offset, retrying on EINTR and EAGAIN and looping
// until every byte is written or a non-retryable error (including ENOSPC)
// surfaces.
func retryingWriteAt(f *os.File, buf []byte, offset int64) error {
	for len(buf) > 0 {
		n, err := f.WriteAt(buf, offset)
		if n > 0 {
			buf = buf[n:]
			offset += int64(n)
		}
		if err != nil {
			if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
				continue
			}
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
	}
	return nil
}

func isENXIO(err error) bool {
	return errors.Is(err, unix.ENXIO)
}

func isENOSPC(err error) bool {
	return errors.Is(err, unix.ENOSPC)
}
