package lzo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecompress1X_EmptyStreamEmptyOutput(t *testing.T) {
	out, err := Decompress1X(nil, 0)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestDecompress1X_EmptyStreamNonzeroOutputErrors(t *testing.T) {
	_, err := Decompress1X(nil, 4)
	require.ErrorIs(t, err, ErrOutputOverrun)
}

func TestDecompress1X_PlainLiteralRun(t *testing.T) {
	// A single >17 literal-run instruction followed by its bytes, then the
	// long-match end-of-stream marker (distance field decodes to zero).
	payload := []byte("hello world, backup page")
	src := append([]byte{byte(len(payload) + 17)}, payload...)
	src = append(src, 0x11, 0x00, 0x00)

	out, err := Decompress1X(src, len(payload))
	require.NoError(t, err)
	require.Equal(t, payload, out)
}

func TestDecompress1X_TruncatedLiteralOverruns(t *testing.T) {
	src := []byte{byte(5 + 17), 'a', 'b'} // announces 5 literal bytes, only 2 present
	_, err := Decompress1X(src, 5)
	require.ErrorIs(t, err, ErrInputOverrun)
}

func TestDecompress1X_DeclaredLengthMismatchErrors(t *testing.T) {
	payload := []byte("abcdef")
	src := append([]byte{byte(len(payload) + 17)}, payload...)
	src = append(src, 0x11, 0x00, 0x00)

	_, err := Decompress1X(src, len(payload)+1)
	require.Error(t, err)
}
