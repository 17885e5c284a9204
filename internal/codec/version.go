package codec

import "github.com/ignitedb/vlog/pkg/errors"

// magicBytes is the 3-byte prefix every segment file and the marker file
// begin with. "VLG" -- value log.
var magicBytes = [3]byte{'V', 'L', 'G'}

// Version identifies the on-disk format of a segment or marker file header.
type Version uint16

const (
	// V1 is the only format version this build understands.
	V1 Version = 1
)

// headerSize is the fixed length, in bytes, of a file header: 3 magic bytes
// followed by a big-endian u16 version.
const headerSize = 5

// WriteFileHeader renders the 5-byte file header for v.
func WriteFileHeader(v Version) []byte {
	buf := make([]byte, headerSize)
	copy(buf[0:3], magicBytes[:])
	putUint16(buf[3:5], uint16(v))
	return buf
}

// ParseFileHeader reads and validates a 5-byte file header. It returns
// false (no error) when the magic bytes don't match -- that is the literal
// "decode garbage, get nothing" case this format has always allowed, since
// a non-VLG file is simply not one of ours rather than a corrupted one of
// ours. A recognized magic with an unknown version is an InvalidVersion
// failure, since that does indicate a file this build cannot safely read.
func ParseFileHeader(buf []byte) (Version, bool, error) {
	if len(buf) < headerSize {
		return 0, false, nil
	}

	if buf[0] != magicBytes[0] || buf[1] != magicBytes[1] || buf[2] != magicBytes[2] {
		return 0, false, nil
	}

	v := Version(getUint16(buf[3:5]))
	if v != V1 {
		return 0, false, errors.NewManifestError(
			nil, errors.ErrorCodeInvalidVersion, "unrecognized file format version",
		).WithOperation("parse_header").WithDetail("version", uint16(v))
	}

	return v, true, nil
}
