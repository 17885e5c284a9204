package codec

import (
	"bytes"
	"io"
	"testing"

	"github.com/google/gofuzz"
	"github.com/stretchr/testify/require"

	"github.com/ignitedb/vlog/pkg/errors"
	"github.com/ignitedb/vlog/pkg/options"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, c := range []options.Compression{options.CompressionNone, options.CompressionLZ4, options.CompressionDeflate} {
		c := c
		t.Run(c.String(), func(t *testing.T) {
			key := []byte("c")
			value := bytes.Repeat([]byte("c"), 1000)

			encoded, effective, err := Encode(key, value, c, 0)
			require.NoError(t, err)
			require.Equal(t, c, effective)

			gotKey, gotValue, n, err := Decode(bytes.NewReader(encoded))
			require.NoError(t, err)
			require.Equal(t, len(encoded), n)
			require.Equal(t, key, gotKey)
			require.Equal(t, value, gotValue)
		})
	}
}

func TestEncodeBelowThresholdSkipsCompression(t *testing.T) {
	encoded, effective, err := Encode([]byte("k"), []byte("v"), options.CompressionLZ4, 128)
	require.NoError(t, err)
	require.Equal(t, options.CompressionNone, effective)

	_, value, _, err := Decode(bytes.NewReader(encoded))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), value)
}

func TestEncodeRejectsEmptyKey(t *testing.T) {
	_, _, err := Encode(nil, []byte("v"), options.CompressionNone, 0)
	require.Error(t, err)
	require.True(t, errors.IsCodecError(err))
}

func TestEncodeAllowsEmptyValue(t *testing.T) {
	encoded, _, err := Encode([]byte("k"), nil, options.CompressionNone, 0)
	require.NoError(t, err)

	key, value, _, err := Decode(bytes.NewReader(encoded))
	require.NoError(t, err)
	require.Equal(t, []byte("k"), key)
	require.Empty(t, value)
}

func TestDecodeCleanEOFBetweenRecords(t *testing.T) {
	_, _, n, err := Decode(bytes.NewReader(nil))
	require.ErrorIs(t, err, io.EOF)
	require.Zero(t, n)
}

func TestDecodeTruncatedMidRecordIsInvalidTrailer(t *testing.T) {
	encoded, _, err := Encode([]byte("k"), []byte("value"), options.CompressionNone, 0)
	require.NoError(t, err)

	truncated := encoded[:len(encoded)-2]
	_, _, _, err = Decode(bytes.NewReader(truncated))
	require.Error(t, err)
	require.True(t, errors.IsCodecError(err))
	require.Equal(t, errors.ErrorCodeInvalidTrailer, errors.GetErrorCode(err))
}

func TestDecodeUnknownCompressionTag(t *testing.T) {
	encoded, _, err := Encode([]byte("k"), []byte("v"), options.CompressionNone, 0)
	require.NoError(t, err)
	encoded[7] = 99 // corrupt the compression byte.

	_, _, _, err = Decode(bytes.NewReader(encoded))
	require.Error(t, err)
	require.True(t, errors.IsCodecError(err))
	require.Equal(t, errors.ErrorCodeInvalidTag, errors.GetErrorCode(err))
}

func TestDecodeChecksumMismatch(t *testing.T) {
	encoded, _, err := Encode([]byte("k"), []byte("value"), options.CompressionNone, 0)
	require.NoError(t, err)
	encoded[0] ^= 0xFF // flip the checksum byte.

	_, _, _, err = Decode(bytes.NewReader(encoded))
	require.Error(t, err)
	require.True(t, errors.IsCodecError(err))
	require.Equal(t, errors.ErrorCodeChecksumMismatch, errors.GetErrorCode(err))
}

// TestEncodeDecodeFuzzRoundTrip exercises invariant 4 from spec.md §8: for
// every compression tag, decoding an encoded (key, value) pair always
// yields the original pair back, byte for byte, over randomized inputs.
func TestEncodeDecodeFuzzRoundTrip(t *testing.T) {
	fz := fuzz.New().NilChance(0).NumElements(0, 4096)

	for _, c := range []options.Compression{options.CompressionNone, options.CompressionLZ4, options.CompressionDeflate} {
		for i := 0; i < 50; i++ {
			var key, value []byte
			fz.Fuzz(&key)
			fz.Fuzz(&value)
			if len(key) == 0 {
				key = []byte{0}
			}
			if len(key) > MaxKeyLen {
				key = key[:MaxKeyLen]
			}

			encoded, _, err := Encode(key, value, c, 0)
			require.NoError(t, err)

			gotKey, gotValue, _, err := Decode(bytes.NewReader(encoded))
			require.NoError(t, err)
			require.Equal(t, key, gotKey)
			require.Equal(t, value, gotValue)
		}
	}
}
