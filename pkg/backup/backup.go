// Package backup implements the streaming backup driver: a client-driven
// conversation that pulls one database's permanent volumes, temporary
// volumes, and log volumes across the wire into a single backup file (or,
// in make-slave mode, one file per server volume) while patching the final
// checkpoint LSA and end time back into the header once the transfer
// completes.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/marmos91/dbrt/internal/dbrterr"
	"github.com/marmos91/dbrt/internal/dispatch"
	"github.com/marmos91/dbrt/internal/wire"
)

// MinimumFreePagesFullLevel is the minimum free space, in IO pages, a
// regular-file backup destination must have before the driver will open it.
const MinimumFreePagesFullLevel = 4

const endPageID = -2 // sentinel iopageid written as the last page of a non-slave backup

// Header is the in-memory form of BK_BACKUP_HEADER: everything the client
// learns at Prepare time, plus the two fields (BackuptimeLSA, EndTime) that
// stay at their sentinel value until Finish patches them in.
type Header struct {
	Magic             string
	DBVersion         int32
	HeaderVersion     int32
	DBCreationTime    time.Time
	StartTime         time.Time
	DBName            string
	ServerIOPageSize  int32
	CheckpointLSA     wire.LSA
	BackupIOPageSize  int32
	FirstArvNeeded    bool
	NextCheckpointAt  int64
	NumPermVols       int32
	BackuptimeLSA     wire.LSA
	EndTime           time.Time
}

// Options are the parameters the client sends at Prepare time.
type Options struct {
	NumThreads     int32
	DoCompress     bool
	SleepMsecs     int32
	MakeSlave      bool
	ForceOverwrite bool
	Destination    string

	// DataDir and LogDir are only consulted in MakeSlave mode: each server
	// volume is written to its own file under one of these directories
	// instead of being framed into the single Destination file.
	DataDir string
	LogDir  string

	// CompressionType names the pageCodec a compressed page is decoded
	// with: "lzo1x" (the default), "s2", or "zstd". Its wire code is sent
	// even when DoCompress is false, and any page whose wire length differs
	// from its unzipped length is decoded with it.
	CompressionType string
}

// Session drives one backup from Prepare through Finish or Abort. It is not
// safe for concurrent use: the backup driver is sequential per connection,
// matching the client's single-threaded scheduling model.
type Session struct {
	dispatcher *dispatch.Dispatcher
	opts       Options
	header     Header

	file        *os.File // the single backup file (non-slave mode)
	slaveFiles  map[string]*os.File
	headerPath  string
	voltotalio  int64
	onProgress  func(tick int)
	progressAcc int64
	opened      bool

	lsaOffset     int64 // BackuptimeLSA's offset within the written header, set by WriteHeader
	endTimeOffset int64

	currentVolFile   *os.File // the volume file open between a VOL_START and its VOL_END, make-slave mode only
	currentVolName   string
	currentVolOffset int64 // write cursor into the destination file for non-slave mode
	currentOp        dispatch.Opcode

	codec   pageCodec
	metrics *Metrics
}

// SetMetrics installs the Prometheus metrics collector for this session.
// A nil metrics collector (the default) disables collection with zero
// overhead, the way dispatch.Metrics and queryresult.Metrics do.
func (s *Session) SetMetrics(m *Metrics) {
	s.metrics = m
}

// NewSession builds a Session bound to dispatcher, ready for Prepare.
func NewSession(dispatcher *dispatch.Dispatcher, opts Options) *Session {
	return &Session{
		dispatcher: dispatcher,
		opts:       opts,
		slaveFiles: make(map[string]*os.File),
	}
}

// OnProgress installs a callback invoked every time the driver advances its
// 25-tick progress bar, used by a verbose CLI stream.
func (s *Session) OnProgress(fn func(tick int)) {
	s.onProgress = fn
}

// Prepare sends the backup request parameters and receives the server's
// BK_BACKUP_HEADER. BackuptimeLSA and EndTime remain at their null sentinels
// until Finish.
func (s *Session) Prepare(ctx context.Context) (*Header, error) {
	w := wire.NewWriter(32)
	w.PackInt32(s.opts.NumThreads)
	w.PackInt32(boolToInt32(s.opts.DoCompress))
	w.PackInt32(s.opts.SleepMsecs)
	w.PackInt32(boolToInt32(s.opts.MakeSlave))

	pkt, err := s.dispatcher.Dispatch(ctx, dispatch.OpBackupPrepare, [][]byte{w.Bytes()})
	if err != nil {
		return nil, err
	}
	if pkt.Header.RC != 0 {
		return nil, fmt.Errorf("backup: prepare failed, rc=%d", pkt.Header.RC)
	}

	buf, err := pkt.GetBuffer(0, -1, false)
	if err != nil {
		return nil, err
	}
	h, err := unpackHeader(buf)
	if err != nil {
		return nil, err
	}
	h.StartTime = time.Now()
	h.BackuptimeLSA = wire.NullLSA
	s.header = *h
	s.metrics.sessionStarted()
	return &s.header, nil
}

// OpenVolume opens the destination, enforcing the overwrite and free-space
// rules; for a FIFO destination it opens non-blocking and retries on ENXIO.
func (s *Session) OpenVolume(ctx context.Context) error {
	dest := s.opts.Destination

	if info, err := os.Stat(dest); err == nil {
		if info.Mode()&os.ModeNamedPipe != 0 {
			return s.openFIFO(ctx, dest)
		}
		if !s.opts.ForceOverwrite {
			return fmt.Errorf("backup: destination %s already exists", dest)
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("backup: create destination directory: %w", err)
	}

	if err := checkFreeSpace(dest, s.requiredFreePages()); err != nil {
		return s.abortErr(dbrterr.CodeFormatOutOfSpace, err)
	}

	f, err := os.OpenFile(dest, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("backup: open destination: %w", err)
	}
	s.file = f
	s.headerPath = dest
	s.opened = true
	return nil
}

func (s *Session) openFIFO(ctx context.Context, path string) error {
	const retryInterval = 100 * time.Millisecond
	for {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_NONBLOCK, 0)
		if err == nil {
			s.file = f
			s.headerPath = path
			s.opened = true
			return nil
		}
		if !os.IsNotExist(err) && !isENXIO(err) {
			return fmt.Errorf("backup: open fifo: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

func (s *Session) requiredFreePages() int64 {
	framedPage := FramedPageSize(s.header.BackupIOPageSize)
	total := int64(bkBackupHeaderIOSize) + 4*int64(framedPage)
	pageSize := int64(s.header.ServerIOPageSize)
	if pageSize == 0 {
		pageSize = int64(s.header.BackupIOPageSize)
	}
	if pageSize == 0 {
		return MinimumFreePagesFullLevel
	}
	return (total + pageSize - 1) / pageSize
}

// WriteHeader writes the current in-memory header to the start of the
// backup file, retry-looping on EINTR/EAGAIN. ENOSPC is reported as
// WriteOutOfSpace.
func (s *Session) WriteHeader() error {
	buf, lsaOffset, endTimeOffset := packHeader(&s.header, bkBackupHeaderIOSize)
	s.lsaOffset = lsaOffset
	s.endTimeOffset = endTimeOffset
	if err := retryingWriteAt(s.file, buf, 0); err != nil {
		if isENOSPC(err) {
			return s.abortErr(dbrterr.CodeWriteOutOfSpace, err)
		}
		return err
	}
	s.currentVolOffset = int64(bkBackupHeaderIOSize)
	return nil
}

// Finish writes the sentinel end page (unless make-slave), flushes, and
// patches the final LSA/end time back into the already-written header.
func (s *Session) Finish(endLSA wire.LSA, endTime time.Time) error {
	defer s.closeCodec()
	s.header.BackuptimeLSA = endLSA
	s.header.EndTime = endTime

	if !s.opts.MakeSlave {
		if err := s.writeEndPageSentinel(); err != nil {
			return err
		}
		if err := s.file.Sync(); err != nil {
			return fmt.Errorf("backup: sync before header patch: %w", err)
		}
		if err := s.patchHeader(s.file); err != nil {
			s.metrics.sessionEnded("error", time.Since(s.header.StartTime).Seconds())
			return err
		}
		s.metrics.sessionEnded("success", time.Since(s.header.StartTime).Seconds())
		return nil
	}

	first, ok := s.firstSlaveFile()
	if !ok {
		s.metrics.sessionEnded("error", time.Since(s.header.StartTime).Seconds())
		return fmt.Errorf("backup: make-slave finish with no volume files written")
	}
	if err := s.patchHeader(first); err != nil {
		s.metrics.sessionEnded("error", time.Since(s.header.StartTime).Seconds())
		return err
	}
	s.metrics.sessionEnded("success", time.Since(s.header.StartTime).Seconds())
	return nil
}

func (s *Session) writeEndPageSentinel() error {
	w := wire.NewWriter(8)
	w.PackInt64Aligned(endPageID)
	end, err := s.file.Seek(0, os.SEEK_END)
	if err != nil {
		return fmt.Errorf("backup: seek to end: %w", err)
	}
	if err := retryingWriteAt(s.file, w.Bytes(), end); err != nil {
		if isENOSPC(err) {
			return s.abortErr(dbrterr.CodeWriteOutOfSpace, err)
		}
		return err
	}
	return nil
}

func (s *Session) patchHeader(f *os.File) error {
	lsaBuf := wire.NewWriter(12)
	lsaBuf.PackLSA(s.header.BackuptimeLSA)
	if err := retryingWriteAt(f, lsaBuf.Bytes(), s.lsaOffset); err != nil {
		return err
	}

	timeBuf := wire.NewWriter(8)
	timeBuf.PackInt64Aligned(s.header.EndTime.Unix())
	if err := retryingWriteAt(f, timeBuf.Bytes(), s.endTimeOffset); err != nil {
		return err
	}

	return f.Close()
}

func (s *Session) firstSlaveFile() (*os.File, bool) {
	for _, f := range s.slaveFiles {
		return f, true
	}
	return nil, false
}

// Abort unlinks the backup volume(s), closes descriptors, and releases the
// session after any error encountered once volume creation has begun.
func (s *Session) Abort() error {
	var firstErr error
	if s.file != nil {
		_ = s.file.Close()
		if s.opened {
			if err := os.Remove(s.headerPath); err != nil && !os.IsNotExist(err) {
				firstErr = err
			}
		}
		s.file = nil
	}
	for path, f := range s.slaveFiles {
		_ = f.Close()
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	s.slaveFiles = make(map[string]*os.File)
	s.opened = false
	return firstErr
}

func (s *Session) abortErr(code int, cause error) error {
	s.closeCodec()
	_ = s.Abort()
	if !s.header.StartTime.IsZero() {
		s.metrics.sessionEnded("error", time.Since(s.header.StartTime).Seconds())
	}
	return &dbrterr.Record{
		Kind:     dbrterr.KindBackup,
		Code:     code,
		Severity: dbrterr.SeverityError,
		Message:  cause.Error(),
	}
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
