package backup

import (
	"testing"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

func TestCodecForName_DefaultsToLZO1X(t *testing.T) {
	c, err := codecForName("")
	require.NoError(t, err)
	require.IsType(t, lzo1xCodec{}, c)
}

func TestCodecForName_UnknownNameErrors(t *testing.T) {
	_, err := codecForName("brotli")
	require.Error(t, err)
}

func TestCodecForName_S2RoundTrips(t *testing.T) {
	page := []byte("a backup page worth compressing, repeated, repeated, repeated")
	compressed := s2.Encode(nil, page)

	c, err := codecForName("s2")
	require.NoError(t, err)
	out, err := c.decompress(compressed, len(page))
	require.NoError(t, err)
	require.Equal(t, page, out)
}

func TestCodecForName_ZstdRoundTrips(t *testing.T) {
	page := []byte("a backup page worth compressing, repeated, repeated, repeated")
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := enc.EncodeAll(page, nil)
	require.NoError(t, enc.Close())

	c, err := codecForName("zstd")
	require.NoError(t, err)
	defer c.(*zstdCodec).close()

	out, err := c.decompress(compressed, len(page))
	require.NoError(t, err)
	require.Equal(t, page, out)
}

func TestCodecID_MatchesCodecForName(t *testing.T) {
	require.Equal(t, codecIDLZO1X, codecID(""))
	require.Equal(t, codecIDLZO1X, codecID("lzo1x"))
	require.Equal(t, codecIDS2, codecID("s2"))
	require.Equal(t, codecIDZstd, codecID("zstd"))
}

func TestSession_EnsureCodec_CachesResolvedCodec(t *testing.T) {
	s := NewSession(nil, Options{CompressionType: "s2"})
	c1, err := s.ensureCodec()
	require.NoError(t, err)
	c2, err := s.ensureCodec()
	require.NoError(t, err)
	require.Same(t, c1, c2)
}
