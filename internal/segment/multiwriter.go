package segment

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ignitedb/vlog/internal/contracts"
	"github.com/ignitedb/vlog/pkg/options"
)

// IDAllocator hands out segment ids from a single process-wide monotonic
// counter, seeded on recovery to max(existing_ids)+1. It is safe to share
// between concurrently-open MultiWriters.
type IDAllocator struct {
	next atomic.Uint64
}

// NewIDAllocator seeds the allocator so the first call to Next returns
// seed.
func NewIDAllocator(seed uint64) *IDAllocator {
	a := &IDAllocator{}
	a.next.Store(seed)
	return a
}

// Next returns a fresh, never-before-issued segment id.
func (a *IDAllocator) Next() uint64 {
	return a.next.Add(1) - 1
}

// MultiWriter owns a current Writer plus the list of already-sealed
// segments it has rolled past. Write forwards to the current writer; once
// that writer's on-disk size meets or exceeds the configured target, it is
// sealed and a fresh writer with a newly allocated id replaces it.
//
// A MultiWriter is not safe for concurrent use -- the value log serializes
// writers by construction (spec Non-goal: concurrent writers sharing one
// segment).
type MultiWriter struct {
	folder      string
	targetSize  uint64
	compression options.Compression
	threshold   uint32
	ids         *IDAllocator
	log         *zap.SugaredLogger

	current *Writer
	sealed  []*Segment
}

// NewMultiWriter allocates the first segment id and opens its writer.
func NewMultiWriter(folder string, targetSize uint64, compression options.Compression, threshold uint32, ids *IDAllocator, log *zap.SugaredLogger) (*MultiWriter, error) {
	mw := &MultiWriter{
		folder:      folder,
		targetSize:  targetSize,
		compression: compression,
		threshold:   threshold,
		ids:         ids,
		log:         log,
	}

	w, err := NewWriter(folder, ids.Next(), compression, threshold, log)
	if err != nil {
		return nil, err
	}
	mw.current = w

	return mw, nil
}

// Handle returns the ValueHandle the next Write(key, ...) call will
// produce. Callers must obtain it before calling Write so the index can be
// updated no later than the write that makes it valid, per the rollover
// ordering invariant.
func (mw *MultiWriter) Handle(key []byte) contracts.ValueHandle {
	return contracts.ValueHandle{SegmentID: mw.current.ID(), Offset: mw.current.Offset(key)}
}

// Write appends (key, value) to the current segment, rolling over to a
// fresh segment afterward if the size threshold has been met.
func (mw *MultiWriter) Write(key, value []byte) error {
	if err := mw.current.Write(key, value); err != nil {
		return err
	}

	if mw.current.Size() >= mw.targetSize {
		if err := mw.roll(); err != nil {
			return err
		}
	}

	return nil
}

// roll seals the current writer (appending it to sealed when non-empty)
// and installs a fresh one with a newly allocated id.
func (mw *MultiWriter) roll() error {
	sealedSegment, err := mw.current.Finish()
	if err != nil {
		return err
	}
	if sealedSegment != nil {
		mw.sealed = append(mw.sealed, sealedSegment)
	}

	w, err := NewWriter(mw.folder, mw.ids.Next(), mw.compression, mw.threshold, mw.log)
	if err != nil {
		return err
	}
	mw.current = w

	return nil
}

// Finish seals the current writer and returns every segment this
// MultiWriter has sealed over its lifetime, excluding any writer that
// turned out to be empty.
func (mw *MultiWriter) Finish() ([]*Segment, error) {
	sealedSegment, err := mw.current.Finish()
	if err != nil {
		return nil, err
	}
	if sealedSegment != nil {
		mw.sealed = append(mw.sealed, sealedSegment)
	}

	return mw.sealed, nil
}
