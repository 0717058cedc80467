package backup

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/marmos91/dbrt/internal/dbrterr"
	"github.com/marmos91/dbrt/internal/dispatch"
	"github.com/marmos91/dbrt/internal/logger"
	"github.com/marmos91/dbrt/internal/wire"
)

// packetType is the application-level sub-packet type layered on top of
// one BACKUP_VOLUME / BACKUP_LOG_VOLUME reply frame. The dispatcher hands
// the driver the entire volume transfer as one opaque blob (RecvStream
// forwards a single reply frame verbatim); the driver walks that blob as a
// sequence of these sub-packets itself.
type packetType int32

const (
	packetData          packetType = iota // raw or compressed page, the default/unnamed type
	packetVolStart                        // begins a new volume, payload carries its name and header page
	packetVolEnd                          // closes the current volume
	packetVolsBackupEnd                   // exits the loop for a BACKUP_VOLUME conversation
	packetLogsBackupEnd                   // exits the loop for a BACKUP_LOG_VOLUME conversation
)

const volNameFieldSize = 32

// StreamVolumes drives the open-ended per-volume-set conversation: it sends
// op (OpBackupVolume for data, OpBackupLogVolume for log) and then parses
// the single reply blob as a sequence of VOL_START/data/VOL_END packets
// terminated by VOLS_BACKUP_END or LOGS_BACKUP_END, which carries the final
// checkpoint LSA and end time recorded into the in-memory header.
func (s *Session) StreamVolumes(ctx context.Context, op dispatch.Opcode) error {
	s.currentOp = op

	w := wire.NewWriter(8)
	w.PackInt32(boolToInt32(s.opts.DoCompress))
	w.PackInt32(codecID(s.opts.CompressionType))

	var blob bytes.Buffer
	if _, err := s.dispatcher.RecvStream(ctx, op, [][]byte{w.Bytes()}, &blob); err != nil {
		return fmt.Errorf("backup: stream volumes: %w", err)
	}

	r := wire.NewReader(blob.Bytes())
	for r.Remaining() > 0 {
		typ, err := r.UnpackInt32()
		if err != nil {
			return err
		}
		wireLen, err := r.UnpackInt32()
		if err != nil {
			return err
		}
		unzipLen, err := r.UnpackInt32()
		if err != nil {
			return err
		}
		payload, err := r.UnpackBytesRaw(int(wireLen))
		if err != nil {
			return err
		}

		switch packetType(typ) {
		case packetVolStart:
			if err := s.handleVolStart(payload, op); err != nil {
				return err
			}
		case packetVolEnd:
			if err := s.handleVolEnd(); err != nil {
				return err
			}
		case packetVolsBackupEnd, packetLogsBackupEnd:
			return s.handleBackupEnd(payload)
		default:
			if err := s.handleDataPacket(payload, int(unzipLen)); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("backup: stream ended without a BACKUP_END packet")
}

func (s *Session) handleVolStart(payload []byte, op dispatch.Opcode) error {
	pr := wire.NewReader(payload)
	nameBuf, err := pr.UnpackBytesRaw(volNameFieldSize)
	if err != nil {
		return fmt.Errorf("backup: malformed VOL_START packet: %w", err)
	}
	name := trimNullPadding(nameBuf)
	header := payload[volNameFieldSize:]

	if !s.opts.MakeSlave {
		s.currentVolName = name
		return s.writeFramedPage(header)
	}

	dir := s.opts.DataDir
	if op == dispatch.OpBackupLogVolume {
		dir = s.opts.LogDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("backup: create slave volume directory: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("backup: open slave volume %s: %w", name, err)
	}
	s.currentVolFile = f
	s.currentVolName = name
	s.slaveFiles[path] = f
	return s.writeSlaveVolumeHeader(header)
}

func (s *Session) handleVolEnd() error {
	if s.opts.MakeSlave && s.currentVolFile != nil {
		if err := s.currentVolFile.Sync(); err != nil {
			return fmt.Errorf("backup: sync slave volume %s: %w", s.currentVolName, err)
		}
	}
	logger.Debug("backup volume closed", "volume", s.currentVolName, "voltotalio", s.voltotalio)
	s.metrics.recordVolume(volumeKind(s.currentOp), "success")
	s.currentVolFile = nil
	s.currentVolName = ""
	return nil
}

func volumeKind(op dispatch.Opcode) string {
	if op == dispatch.OpBackupLogVolume {
		return "log"
	}
	return "data"
}

func (s *Session) handleDataPacket(payload []byte, unzipLen int) error {
	if int32(unzipLen) > s.header.BackupIOPageSize {
		return s.abortErr(dbrterr.CodeDatasizeMismatch,
			fmt.Errorf("page of %d bytes exceeds session IO size %d", unzipLen, s.header.BackupIOPageSize))
	}

	page := payload
	if len(payload) != unzipLen {
		codec, err := s.ensureCodec()
		if err != nil {
			return s.abortErr(dbrterr.CodeDecompressFail, err)
		}
		decompressed, err := codec.decompress(payload, unzipLen)
		if err != nil {
			return s.abortErr(dbrterr.CodeDecompressFail, err)
		}
		page = decompressed
	}

	if s.opts.MakeSlave {
		return s.writeSlavePage(page)
	}
	return s.writeFramedPage(page)
}

// writeFramedPage appends a framed page to the single destination file and
// advances the driver's running write cursor; used in non-slave mode for
// both the VOL_START header page and ordinary data pages.
func (s *Session) writeFramedPage(page []byte) error {
	if err := retryingWriteAt(s.file, page, s.currentVolOffset); err != nil {
		if isENOSPC(err) {
			return s.abortErr(dbrterr.CodeWriteOutOfSpace, err)
		}
		return err
	}
	s.currentVolOffset += int64(len(page))
	s.bumpProgress(len(page))
	return nil
}

// writeSlavePage strips no further framing: the server already sends the
// bare page for a make-slave transfer, so it is written as-is at the
// current offset of the open per-volume file.
func (s *Session) writeSlavePage(page []byte) error {
	pos, err := s.currentVolFile.Seek(0, os.SEEK_CUR)
	if err != nil {
		return fmt.Errorf("backup: seek slave volume %s: %w", s.currentVolName, err)
	}
	if err := retryingWriteAt(s.currentVolFile, page, pos); err != nil {
		if isENOSPC(err) {
			return s.abortErr(dbrterr.CodeWriteOutOfSpace, err)
		}
		return err
	}
	if _, err := s.currentVolFile.Seek(int64(len(page)), os.SEEK_CUR); err != nil {
		return fmt.Errorf("backup: advance slave volume %s: %w", s.currentVolName, err)
	}
	s.bumpProgress(len(page))
	return nil
}

func (s *Session) writeSlaveVolumeHeader(header []byte) error {
	if err := retryingWriteAt(s.currentVolFile, header, 0); err != nil {
		if isENOSPC(err) {
			return s.abortErr(dbrterr.CodeWriteOutOfSpace, err)
		}
		return err
	}
	if _, err := s.currentVolFile.Seek(int64(len(header)), os.SEEK_SET); err != nil {
		return fmt.Errorf("backup: seek past slave volume header: %w", err)
	}
	return nil
}

func (s *Session) handleBackupEnd(payload []byte) error {
	pr := wire.NewReader(payload)
	lsa, err := pr.UnpackLSA()
	if err != nil {
		return fmt.Errorf("backup: malformed BACKUP_END packet: %w", err)
	}
	endUnix, err := pr.UnpackInt64Aligned()
	if err != nil {
		return fmt.Errorf("backup: malformed BACKUP_END packet: %w", err)
	}
	if lsa == wire.NullLSA || endUnix <= 0 {
		return fmt.Errorf("backup: BACKUP_END carried a null lsa or end time")
	}
	logger.Debug("backup stream complete", "lsa_pageid", lsa.Pageid, "lsa_offset", lsa.Offset, "voltotalio", s.voltotalio)
	return s.Finish(lsa, time.Unix(endUnix, 0))
}

// bumpProgress advances voltotalio and, every time the running total
// crosses another 4% (1/25th) of the declared backup size, invokes the
// verbose progress callback with the next tick number.
func (s *Session) bumpProgress(n int) {
	s.metrics.recordBytes(n)
	s.voltotalio += int64(n)
	s.progressAcc += int64(n)

	total := int64(s.header.NumPermVols) * int64(FramedPageSize(s.header.BackupIOPageSize))
	if total <= 0 || s.onProgress == nil {
		return
	}
	unit := total / 25
	if unit <= 0 {
		return
	}
	for s.progressAcc >= unit {
		s.progressAcc -= unit
		tick := int(25 * s.voltotalio / total)
		if tick > 25 {
			tick = 25
		}
		s.onProgress(tick)
	}
}
