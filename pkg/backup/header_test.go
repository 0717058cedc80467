package backup

import (
	"testing"
	"time"

	"github.com/marmos91/dbrt/internal/wire"
	"github.com/stretchr/testify/require"
)

func sampleHeader() *Header {
	return &Header{
		Magic:            bkBackupMagic,
		DBVersion:        3,
		HeaderVersion:    1,
		DBCreationTime:   time.Unix(1_700_000_000, 0),
		StartTime:        time.Unix(1_700_000_100, 0),
		DBName:           "testdb",
		ServerIOPageSize: 16384,
		CheckpointLSA:    wire.LSA{Pageid: 42, Offset: 128},
		BackupIOPageSize: 16384,
		FirstArvNeeded:   true,
		NextCheckpointAt: 99,
		NumPermVols:      3,
		BackuptimeLSA:    wire.NullLSA,
		EndTime:          time.Time{},
	}
}

func TestPackUnpackHeader_RoundTrips(t *testing.T) {
	h := sampleHeader()
	buf, _, _ := packHeader(h, bkBackupHeaderIOSize)
	require.Len(t, buf, bkBackupHeaderIOSize)

	got, err := unpackHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h.DBVersion, got.DBVersion)
	require.Equal(t, h.HeaderVersion, got.HeaderVersion)
	require.Equal(t, h.DBCreationTime.Unix(), got.DBCreationTime.Unix())
	require.Equal(t, h.StartTime.Unix(), got.StartTime.Unix())
	require.Equal(t, h.DBName, got.DBName)
	require.Equal(t, h.ServerIOPageSize, got.ServerIOPageSize)
	require.Equal(t, h.CheckpointLSA, got.CheckpointLSA)
	require.Equal(t, h.BackupIOPageSize, got.BackupIOPageSize)
	require.Equal(t, h.FirstArvNeeded, got.FirstArvNeeded)
	require.Equal(t, h.NextCheckpointAt, got.NextCheckpointAt)
	require.Equal(t, h.NumPermVols, got.NumPermVols)
	require.Equal(t, h.BackuptimeLSA, got.BackuptimeLSA)
}

func TestPackHeader_PatchOffsetsLandOnBackuptimeLSAAndEndTime(t *testing.T) {
	h := sampleHeader()
	buf, lsaOffset, endTimeOffset := packHeader(h, bkBackupHeaderIOSize)

	finalLSA := wire.LSA{Pageid: 777, Offset: 9}
	finalEnd := time.Unix(1_700_001_000, 0)

	lw := wire.NewWriter(12)
	lw.PackLSA(finalLSA)
	copy(buf[lsaOffset:], lw.Bytes())

	tw := wire.NewWriter(8)
	tw.PackInt64Aligned(finalEnd.Unix())
	copy(buf[endTimeOffset:], tw.Bytes())

	got, err := unpackHeader(buf)
	require.NoError(t, err)
	require.Equal(t, finalLSA, got.BackuptimeLSA)
	require.Equal(t, finalEnd.Unix(), got.EndTime.Unix())
}

func TestFramedPageSize_AddsOverhead(t *testing.T) {
	require.Equal(t, int32(16384+bkBackupPageOverhead), FramedPageSize(16384))
}

func TestTrimNullPadding_StopsAtFirstZero(t *testing.T) {
	b := []byte("abc\x00\x00\x00\x00")
	require.Equal(t, "abc", trimNullPadding(b))
}

func TestTrimNullPadding_NoTrailingZeros(t *testing.T) {
	b := []byte("abcd")
	require.Equal(t, "abcd", trimNullPadding(b))
}
