// Package codec implements the blob record wire format: the 8-byte header,
// the key/value payload that follows it, and the pluggable compression
// codecs a record's compression tag selects between.
package codec

import (
	"bytes"
	stdErrors "errors"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/flate"
	"github.com/pierrec/lz4/v4"

	"github.com/ignitedb/vlog/pkg/errors"
	"github.com/ignitedb/vlog/pkg/options"
)

var errUnknownCompression = stdErrors.New("codec: unknown compression tag")

// recordHeaderSize is the fixed 8-byte blob record header: tag(u8) |
// key_len(u16 be) | value_len_compressed(u32 be) | compression(u8).
const recordHeaderSize = 8

// MaxKeyLen is the largest key this format can represent, bounded by the
// u16 key_len field.
const MaxKeyLen = 1<<16 - 1

// Encode renders one blob record for (key, value) using compression when
// len(value) is at or above threshold, falling back to CompressionNone for
// smaller values regardless of the requested codec. It returns the encoded
// record plus the *effective* compression tag actually used, which may
// differ from the caller's requested setting.
func Encode(key, value []byte, compression options.Compression, threshold uint32) ([]byte, options.Compression, error) {
	if len(key) == 0 {
		return nil, 0, errors.NewCodecError(
			nil, errors.ErrorCodeInvalidInput, "blob key must not be empty",
		).WithStage("encode")
	}
	if len(key) > MaxKeyLen {
		return nil, 0, errors.NewCodecError(
			nil, errors.ErrorCodeInvalidHeader, "blob key exceeds maximum length",
		).WithStage("encode").WithDetail("keyLen", len(key)).WithDetail("max", MaxKeyLen)
	}

	effective := compression
	if uint32(len(value)) < threshold {
		effective = options.CompressionNone
	}

	compressed, err := compress(effective, value)
	if err != nil {
		return nil, 0, errors.NewCodecError(
			err, errors.ErrorCodeCompressFailed, "failed to compress value",
		).WithStage("compress").WithTag(uint8(effective)).WithKey(string(key))
	}

	if uint64(len(compressed)) > 1<<32-1 {
		return nil, 0, errors.NewCodecError(
			nil, errors.ErrorCodeInvalidHeader, "compressed value exceeds maximum length",
		).WithStage("encode").WithDetail("compressedLen", len(compressed))
	}

	checksum := uint8(xxhash.Sum64(value))

	buf := make([]byte, recordHeaderSize+len(key)+len(compressed))
	buf[0] = checksum
	putUint16(buf[1:3], uint16(len(key)))
	putUint32(buf[3:7], uint32(len(compressed)))
	buf[7] = uint8(effective)
	copy(buf[recordHeaderSize:], key)
	copy(buf[recordHeaderSize+len(key):], compressed)

	return buf, effective, nil
}

// Decode reads one blob record from r, returning the decoded key, the
// decompressed value, and the total number of bytes consumed from r.
//
// A clean end of the record stream -- zero bytes read attempting the next
// header -- is reported as io.EOF with n == 0. Any other short read (a
// record that starts but doesn't finish) is a CodecError with
// ErrorCodeInvalidTrailer, since the stream ended inside a record rather
// than between them. Genuine I/O failures (not EOF) are surfaced as
// StorageError with ErrorCodeHeaderReadFailure (header) or
// ErrorCodePayloadReadFailure (key or value).
func Decode(r io.Reader) (key []byte, value []byte, n int, err error) {
	header := make([]byte, recordHeaderSize)
	hn, err := io.ReadFull(r, header)
	if err != nil {
		if err == io.EOF && hn == 0 {
			return nil, nil, 0, io.EOF
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, nil, hn, errors.NewCodecError(
				err, errors.ErrorCodeInvalidTrailer, "blob record header truncated",
			).WithStage("decode")
		}
		return nil, nil, hn, errors.NewStorageError(err, errors.ErrorCodeHeaderReadFailure, "failed to read blob record header")
	}

	tag := header[0]
	keyLen := getUint16(header[1:3])
	valueLen := getUint32(header[3:7])
	compression := options.Compression(header[7])

	if compression > options.CompressionDeflate {
		return nil, nil, hn, errors.NewCodecError(
			nil, errors.ErrorCodeInvalidTag, "unrecognized compression tag",
		).WithStage("decode").WithTag(header[7])
	}

	total := hn

	keyBuf := make([]byte, keyLen)
	kn, err := io.ReadFull(r, keyBuf)
	total += kn
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, nil, total, errors.NewCodecError(
				err, errors.ErrorCodeInvalidTrailer, "blob record key truncated",
			).WithStage("decode")
		}
		return nil, nil, total, errors.NewStorageError(
			err, errors.ErrorCodePayloadReadFailure, "failed to read blob record key",
		).WithOffset(uint64(total))
	}

	compressedValue := make([]byte, valueLen)
	vn, err := io.ReadFull(r, compressedValue)
	total += vn
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, nil, total, errors.NewCodecError(
				err, errors.ErrorCodeInvalidTrailer, "blob record value truncated",
			).WithStage("decode").WithKey(string(keyBuf))
		}
		return nil, nil, total, errors.NewStorageError(
			err, errors.ErrorCodePayloadReadFailure, "failed to read blob record value",
		).WithOffset(uint64(total))
	}

	decompressed, err := decompress(compression, compressedValue)
	if err != nil {
		return nil, nil, total, errors.NewCodecError(
			err, errors.ErrorCodeDecompressFailed, "failed to decompress value",
		).WithStage("decompress").WithTag(header[7]).WithKey(string(keyBuf))
	}

	if uint8(xxhash.Sum64(decompressed)) != tag {
		return nil, nil, total, errors.NewCodecError(
			nil, errors.ErrorCodeChecksumMismatch, "value checksum mismatch",
		).WithStage("decode").WithKey(string(keyBuf))
	}

	return keyBuf, decompressed, total, nil
}

// compress encodes value with the codec selected by c. CompressionNone is a
// passthrough copy so callers always own the returned slice independently
// of value.
func compress(c options.Compression, value []byte) ([]byte, error) {
	switch c {
	case options.CompressionNone:
		out := make([]byte, len(value))
		copy(out, value)
		return out, nil

	case options.CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(value); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case options.CompressionDeflate:
		var buf bytes.Buffer
		w, err := flate.NewWriter(&buf, flate.DefaultCompression)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(value); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	default:
		return nil, errUnknownCompression
	}
}

// decompress reverses compress. Because the on-disk header only stores the
// *compressed* length, both codecs here are streaming decoders that don't
// need to know the decompressed size ahead of time -- that's the reason
// this package reaches for lz4's frame API rather than its block API.
func decompress(c options.Compression, compressed []byte) ([]byte, error) {
	switch c {
	case options.CompressionNone:
		out := make([]byte, len(compressed))
		copy(out, compressed)
		return out, nil

	case options.CompressionLZ4:
		r := lz4.NewReader(bytes.NewReader(compressed))
		return io.ReadAll(r)

	case options.CompressionDeflate:
		r := flate.NewReader(bytes.NewReader(compressed))
		defer r.Close()
		return io.ReadAll(r)

	default:
		return nil, errUnknownCompression
	}
}
