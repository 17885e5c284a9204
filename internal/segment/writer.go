package segment

import (
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/ignitedb/vlog/internal/codec"
	"github.com/ignitedb/vlog/pkg/errors"
	"github.com/ignitedb/vlog/pkg/options"
)

// Writer appends blob records to a single segment file. A Writer owns
// exactly one file and is never shared between goroutines: the value log
// serializes writers at the MultiWriter level.
type Writer struct {
	id   uint64
	path string
	file *os.File
	log  *zap.SugaredLogger

	compression options.Compression
	threshold   uint32

	offset                 uint64
	itemCount              uint64
	writtenBlobBytes       uint64
	uncompressedBytes      uint64

	finished bool
}

// NewWriter creates `<folder>/<id>` and writes its 5-byte file header. The
// returned Writer's Offset always starts at headerSize bytes.
func NewWriter(folder string, id uint64, compression options.Compression, threshold uint32, log *zap.SugaredLogger) (*Writer, error) {
	path := filepath.Join(folder, strconv.FormatUint(id, 10))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, strconv.FormatUint(id, 10))
	}

	header := codec.WriteFileHeader(codec.V1)
	if _, err := file.Write(header); err != nil {
		file.Close()
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to write segment file header").
			WithSegmentID(id).WithPath(path)
	}

	log.Debugw("opened new segment writer", "segmentId", id, "path", path)

	return &Writer{
		id:          id,
		path:        path,
		file:        file,
		log:         log,
		compression: compression,
		threshold:   threshold,
		offset:      uint64(len(header)),
	}, nil
}

// ID returns the segment id this writer is appending to.
func (w *Writer) ID() uint64 { return w.id }

// Offset returns the byte offset the next Write call will occupy. Callers
// must query it *before* calling Write so they can record the resulting
// handle in the index ahead of the write actually landing.
func (w *Writer) Offset(key []byte) uint64 { return w.offset }

// Size returns the writer's current on-disk size, including the file
// header -- this is what MultiWriter compares against the rollover
// threshold after every write.
func (w *Writer) Size() uint64 { return w.offset }

// Write encodes and appends one blob record.
func (w *Writer) Write(key, value []byte) error {
	encoded, _, err := codec.Encode(key, value, w.compression, w.threshold)
	if err != nil {
		return err
	}

	if _, err := w.file.Write(encoded); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to write blob record").
			WithSegmentID(w.id).WithPath(w.path).WithOffset(w.offset)
	}

	w.offset += uint64(len(encoded))
	w.itemCount++
	w.writtenBlobBytes += uint64(len(encoded))
	w.uncompressedBytes += uint64(len(value))

	return nil
}

// Finish flushes and fsyncs the segment file and returns its descriptor.
// A writer with zero items is discarded (the file is removed) rather than
// persisted, per this format's rule that empty segments never exist in the
// manifest.
func (w *Writer) Finish() (*Segment, error) {
	if w.finished {
		return nil, nil
	}
	w.finished = true

	if w.itemCount == 0 {
		w.file.Close()
		os.Remove(w.path)
		w.log.Debugw("discarded empty segment writer", "segmentId", w.id)
		return nil, nil
	}

	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return nil, errors.ClassifySyncError(err, strconv.FormatUint(w.id, 10), w.path, int64(w.offset))
	}

	if err := w.file.Close(); err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to close segment file").
			WithSegmentID(w.id).WithPath(w.path)
	}

	w.log.Debugw(
		"sealed segment",
		"segmentId", w.id,
		"itemCount", w.itemCount,
		"writtenBlobBytes", w.writtenBlobBytes,
		"uncompressedBytes", w.uncompressedBytes,
	)

	return New(w.id, w.path, Stats{
		ItemCount:              w.itemCount,
		TotalBytes:              w.writtenBlobBytes,
		TotalUncompressedBytes: w.uncompressedBytes,
	}), nil
}
