package segment

import (
	"io"
	"os"

	"github.com/ignitedb/vlog/internal/codec"
	"github.com/ignitedb/vlog/pkg/errors"
)

// Reader iterates the blob records of a single sealed segment file,
// forward-only, starting just past the 5-byte file header. It is not
// restartable from an arbitrary offset -- random point reads go through
// ReadValueAt, not through a Reader.
type Reader struct {
	file   *os.File
	offset uint64
}

// NewReader opens path and validates its file header.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, path)
	}

	header := make([]byte, 5)
	if _, err := io.ReadFull(file, header); err != nil {
		file.Close()
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errors.NewCodecError(
				err, errors.ErrorCodeInvalidHeader, "segment file header truncated",
			).WithStage("decode")
		}
		return nil, errors.NewStorageError(
			err, errors.ErrorCodeHeaderReadFailure, "failed to read segment file header",
		).WithPath(path)
	}

	if _, ok, err := codec.ParseFileHeader(header); err != nil {
		file.Close()
		return nil, err
	} else if !ok {
		file.Close()
		return nil, errors.NewCodecError(
			nil, errors.ErrorCodeInvalidHeader, "segment file magic mismatch",
		).WithStage("decode").WithKey(path)
	}

	return &Reader{file: file, offset: uint64(len(header))}, nil
}

// Next decodes the next blob record. It returns io.EOF once the stream
// ends cleanly between records; any other error is the decode failure
// codec.Decode reported (a record truncated mid-way, an unknown
// compression tag, a checksum mismatch, a failed decompress, or an I/O
// error).
func (r *Reader) Next() (key, value []byte, offset uint64, err error) {
	offset = r.offset

	key, value, n, err := codec.Decode(r.file)
	if err != nil {
		return nil, nil, 0, err
	}

	r.offset += uint64(n)
	return key, value, offset, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}

// ReadValueAt opens the segment file at path, seeks to offset, decodes one
// blob record, and returns its decoded value. This is the point-read path
// Accessor.Get uses; unlike Reader it does not require sequential access.
func ReadValueAt(path string, offset uint64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, path)
	}
	defer file.Close()

	if _, err := file.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to seek segment file").
			WithPath(path).WithOffset(offset)
	}

	_, value, _, err := codec.Decode(file)
	if err != nil {
		return nil, err
	}

	return value, nil
}
