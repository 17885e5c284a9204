package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ignitedb/vlog/pkg/errors"
)

func TestFileHeaderRoundTrip(t *testing.T) {
	buf := WriteFileHeader(V1)
	require.Len(t, buf, headerSize)

	v, ok, err := ParseFileHeader(buf)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, V1, v)
}

func TestFileHeaderWrongMagic(t *testing.T) {
	// Mirrors the literal scenario from spec.md §8: a buffer that isn't a
	// VLG header at all decodes to "nothing", not an error.
	_, ok, err := ParseFileHeader([]byte("FJX\x00\x01"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileHeaderUnknownVersion(t *testing.T) {
	buf := WriteFileHeader(V1)
	putUint16(buf[3:5], 0xFFFF)

	_, ok, err := ParseFileHeader(buf)
	require.Error(t, err)
	require.False(t, ok)
	require.True(t, errors.IsManifestError(err))
	require.Equal(t, errors.ErrorCodeInvalidVersion, errors.GetErrorCode(err))
}

func TestFileHeaderTooShort(t *testing.T) {
	v, ok, err := ParseFileHeader([]byte("VL"))
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, Version(0), v)
}
