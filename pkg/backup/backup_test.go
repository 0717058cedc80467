package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marmos91/dbrt/internal/wire"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	s := NewSession(nil, opts)
	s.header = *sampleHeader()
	return s
}

func TestOpenVolume_RefusesExistingDestinationWithoutForce(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "backup.vol")
	require.NoError(t, os.WriteFile(dest, []byte("existing"), 0644))

	s := newTestSession(t, Options{Destination: dest, ForceOverwrite: false})
	err := s.OpenVolume(context.Background())
	require.Error(t, err)
}

func TestOpenVolume_OverwritesWhenForced(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "backup.vol")
	require.NoError(t, os.WriteFile(dest, []byte("stale"), 0644))

	s := newTestSession(t, Options{Destination: dest, ForceOverwrite: true})
	err := s.OpenVolume(context.Background())
	require.NoError(t, err)
	require.True(t, s.opened)
	require.NoError(t, s.file.Close())
}

func TestOpenVolume_CreatesParentDirectories(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "nested", "deep", "backup.vol")

	s := newTestSession(t, Options{Destination: dest})
	require.NoError(t, s.OpenVolume(context.Background()))
	require.FileExists(t, dest)
	require.NoError(t, s.file.Close())
}

func TestWriteHeaderAndFinish_PatchesLSAAndEndTime(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "backup.vol")

	s := newTestSession(t, Options{Destination: dest})
	require.NoError(t, s.OpenVolume(context.Background()))
	require.NoError(t, s.WriteHeader())

	finalLSA := wire.LSA{Pageid: 555, Offset: 3}
	finalEnd := time.Unix(1_700_002_000, 0)
	require.NoError(t, s.Finish(finalLSA, finalEnd))

	buf, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(buf), bkBackupHeaderIOSize)

	got, err := unpackHeader(buf[:bkBackupHeaderIOSize])
	require.NoError(t, err)
	require.Equal(t, finalLSA, got.BackuptimeLSA)
	require.Equal(t, finalEnd.Unix(), got.EndTime.Unix())
}

func TestAbort_RemovesUnfinishedDestination(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "backup.vol")

	s := newTestSession(t, Options{Destination: dest})
	require.NoError(t, s.OpenVolume(context.Background()))
	require.NoError(t, s.WriteHeader())

	require.NoError(t, s.Abort())
	require.NoFileExists(t, dest)
}

func TestAbort_RemovesSlaveFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vol001")
	f, err := os.Create(path)
	require.NoError(t, err)

	s := newTestSession(t, Options{MakeSlave: true})
	s.slaveFiles[path] = f

	require.NoError(t, s.Abort())
	require.NoFileExists(t, path)
}

func TestRequiredFreePages_UsesServerPageSizeWhenAvailable(t *testing.T) {
	s := newTestSession(t, Options{})
	s.header.ServerIOPageSize = 16384
	s.header.BackupIOPageSize = 16384

	pages := s.requiredFreePages()
	require.Greater(t, pages, int64(0))
}

func TestRequiredFreePages_FallsBackToMinimumWhenPageSizeUnknown(t *testing.T) {
	s := newTestSession(t, Options{})
	s.header.ServerIOPageSize = 0
	s.header.BackupIOPageSize = 0

	require.Equal(t, int64(MinimumFreePagesFullLevel), s.requiredFreePages())
}

func TestBoolToInt32(t *testing.T) {
	require.Equal(t, int32(1), boolToInt32(true))
	require.Equal(t, int32(0), boolToInt32(false))
}
