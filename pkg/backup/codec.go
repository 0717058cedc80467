package backup

import (
	"fmt"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"

	"github.com/marmos91/dbrt/pkg/backup/lzo"
)

// pageCodec decompresses one backup page. Options.CompressionType names one
// of these (the backup header carries no compression field); LZO1X is the
// long-standing default, S2 and zstd are additional choices for a lower
// CPU/ratio tradeoff.
type pageCodec interface {
	decompress(payload []byte, unzipLen int) ([]byte, error)
}

type lzo1xCodec struct{}

func (lzo1xCodec) decompress(payload []byte, unzipLen int) ([]byte, error) {
	return lzo.Decompress1X(payload, unzipLen)
}

type s2Codec struct{}

func (s2Codec) decompress(payload []byte, unzipLen int) ([]byte, error) {
	n, err := s2.DecodedLen(payload)
	if err != nil {
		return nil, fmt.Errorf("backup: s2 decoded length: %w", err)
	}
	dst := make([]byte, n)
	return s2.Decode(dst, payload)
}

// zstdCodec wraps a reusable zstd.Decoder: a Session is single-threaded per
// connection, so one decoder can be kept live for the lifetime of the
// stream instead of spun up per page.
type zstdCodec struct {
	dec *zstd.Decoder
}

func newZstdCodec() (*zstdCodec, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("backup: create zstd decoder: %w", err)
	}
	return &zstdCodec{dec: dec}, nil
}

func (c *zstdCodec) decompress(payload []byte, unzipLen int) ([]byte, error) {
	return c.dec.DecodeAll(payload, make([]byte, 0, unzipLen))
}

func (c *zstdCodec) close() {
	c.dec.Close()
}

// Wire codes for the compression type sent alongside the DoCompress flag
// at StreamVolumes time, letting the server pick the matching encoder.
const (
	codecIDLZO1X int32 = iota
	codecIDS2
	codecIDZstd
)

// codecID returns the wire code for a compression type name. Every name other
// than "s2" and "zstd" maps to LZO1X, including names codecForName rejects.
func codecID(name string) int32 {
	switch name {
	case "s2":
		return codecIDS2
	case "zstd":
		return codecIDZstd
	default:
		return codecIDLZO1X
	}
}

// ensureCodec resolves and caches s.codec from s.opts.CompressionType on
// first use, so a make-slave transfer that never sees a compressed page
// never pays for a decoder.
func (s *Session) ensureCodec() (pageCodec, error) {
	if s.codec != nil {
		return s.codec, nil
	}
	codec, err := codecForName(s.opts.CompressionType)
	if err != nil {
		return nil, err
	}
	s.codec = codec
	return codec, nil
}

// closeCodec releases a zstd decoder's resources, if one was opened.
func (s *Session) closeCodec() {
	if z, ok := s.codec.(*zstdCodec); ok {
		z.close()
	}
}

// codecForName resolves Options.CompressionType to a pageCodec.
// An empty name defaults to lzo1x, the driver's long-standing behavior
// before the codec registry existed.
func codecForName(name string) (pageCodec, error) {
	switch name {
	case "", "lzo1x":
		return lzo1xCodec{}, nil
	case "s2":
		return s2Codec{}, nil
	case "zstd":
		return newZstdCodec()
	default:
		return nil, fmt.Errorf("backup: unknown compression type %q", name)
	}
}
