// Package compaction implements the value log's rollover (GC copy)
// operation: rewriting still-live blobs out of a set of source segments
// into fresh ones, while coordinating with the external index so that a
// handle is never left dangling.
package compaction

import (
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/ignitedb/vlog/internal/contracts"
	"github.com/ignitedb/vlog/internal/manifest"
	"github.com/ignitedb/vlog/internal/segment"
	"github.com/ignitedb/vlog/pkg/options"
)

// Executor runs rollover passes against a Manifest.
type Executor struct {
	manifest       *manifest.Manifest
	segmentsFolder string
	segmentSize    uint64
	compression    options.Compression
	threshold      uint32
	log            *zap.SugaredLogger
}

// New constructs an Executor. New segments it writes during rollover use
// the same size/compression configuration as ordinary writes.
func New(m *manifest.Manifest, segmentsFolder string, segmentSize uint64, compression options.Compression, threshold uint32, log *zap.SugaredLogger) *Executor {
	return &Executor{
		manifest:       m,
		segmentsFolder: segmentsFolder,
		segmentSize:    segmentSize,
		compression:    compression,
		threshold:      threshold,
		log:            log,
	}
}

// Rollover scans sourceIDs in id order, rewrites every blob still live
// according to reader into fresh segments, registers those segments with
// the manifest, and finally commits the new handles via writer.Finish.
//
// Source segments are never dropped here: a successful rollover leaves
// them registered but with a full set of stale blobs, reclaimed by the
// next ScanForStats + DropStaleSegments pass. A failed writer.Finish is
// surfaced to the caller, but by the time that failure is observed the new
// segments are already registered -- nothing is lost; whichever side the
// index no longer references is marked stale by a subsequent ScanForStats
// and reclaimed by DropStaleSegments.
func (e *Executor) Rollover(sourceIDs []uint64, reader contracts.IndexReader, writer contracts.IndexWriter) error {
	ids := append([]uint64(nil), sourceIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	mw, err := segment.NewMultiWriter(e.segmentsFolder, e.segmentSize, e.compression, e.threshold, e.manifest.Allocator(), e.log)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := e.copyLiveBlobs(id, mw, reader, writer); err != nil {
			return err
		}
	}

	// Register before Finish: a crash between these two calls leaves the
	// new segments registered but the index still pointing at the old
	// handles, which is recoverable garbage, not corruption.
	if err := e.manifest.Register(mw); err != nil {
		return err
	}

	if err := writer.Finish(); err != nil {
		e.log.Warnw("rollover index finish failed; new segments registered as reclaimable garbage", "error", err)
		return err
	}

	return nil
}

// copyLiveBlobs scans sourceID's blob sequence and rewrites every blob
// that reader still resolves back to (sourceID, its original offset).
func (e *Executor) copyLiveBlobs(sourceID uint64, mw *segment.MultiWriter, reader contracts.IndexReader, writer contracts.IndexWriter) error {
	seg, ok := e.manifest.GetSegment(sourceID)
	if !ok {
		return nil
	}

	r, err := segment.NewReader(seg.Path)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		key, value, offset, err := r.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}

		handle, ok, err := reader.Get(key)
		if err != nil {
			return err
		}
		if !ok || handle.SegmentID != sourceID || handle.Offset != offset {
			continue // stale: index has since moved on or dropped this key.
		}

		newHandle := mw.Handle(key)
		if err := writer.InsertIndirection(key, newHandle, uint64(len(value))); err != nil {
			return err
		}
		if err := mw.Write(key, value); err != nil {
			return err
		}
	}

	return nil
}
