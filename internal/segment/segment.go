// Package segment implements the value log's on-disk segment files: the
// single-segment writer and reader, the size-based multi-segment writer
// that rolls over between them, and the in-memory Segment descriptor the
// manifest tracks.
package segment

import "sync/atomic"

// Stats holds the counters fixed at seal time for a finished segment. The
// two counters the GC scanner mutates afterward live on Segment itself.
type Stats struct {
	ItemCount              uint64
	TotalBytes              uint64
	TotalUncompressedBytes uint64
}

// Segment is the in-memory descriptor of a sealed segment file: its id,
// its path, and its live/stale statistics. ItemCount, TotalBytes and
// TotalUncompressedBytes are fixed at construction and never change;
// StaleItems/StaleBytes grow monotonically as later GC scans observe
// overwritten or deleted keys.
//
// A *Segment is logically shared between the manifest and any in-flight
// reader: callers clone the pointer out of the manifest's map under a
// shared lock and release the lock before doing file I/O, per the
// design notes this mirrors.
type Segment struct {
	ID   uint64
	Path string

	itemCount              uint64
	totalBytes              uint64
	totalUncompressedBytes uint64

	staleItems atomic.Uint64
	staleBytes atomic.Uint64
}

// New constructs a Segment descriptor with fixed stats. Used both by
// MultiWriter.Finish (fresh stats from a just-sealed writer) and by the
// manifest during recovery (zero stats -- recovered segments don't carry
// their seal-time counters across a restart; ScanForStats is how staleness
// gets re-established afterward).
func New(id uint64, path string, stats Stats) *Segment {
	return &Segment{
		ID:                     id,
		Path:                   path,
		itemCount:              stats.ItemCount,
		totalBytes:              stats.TotalBytes,
		totalUncompressedBytes: stats.TotalUncompressedBytes,
	}
}

// ItemCount returns the number of blob records sealed into this segment.
func (s *Segment) ItemCount() uint64 { return s.itemCount }

// TotalBytes returns the on-disk byte size of the segment's blob records
// (not counting the file header).
func (s *Segment) TotalBytes() uint64 { return s.totalBytes }

// TotalUncompressedBytes returns the sum of pre-compression value lengths
// sealed into this segment.
func (s *Segment) TotalUncompressedBytes() uint64 { return s.totalUncompressedBytes }

// StaleItems returns the number of blob records in this segment the last
// ScanForStats pass found no longer referenced by the index.
func (s *Segment) StaleItems() uint64 { return s.staleItems.Load() }

// StaleBytes returns the number of uncompressed value bytes in this
// segment the last ScanForStats pass found no longer referenced.
func (s *Segment) StaleBytes() uint64 { return s.staleBytes.Load() }

// SetStaleCounters overwrites the stale counters atomically. Used by
// ScanForStats once it has computed live totals for this segment: the new
// stale count is total minus live.
func (s *Segment) SetStaleCounters(items, bytes uint64) {
	s.staleItems.Store(items)
	s.staleBytes.Store(bytes)
}

// IsFullyStale reports whether every uncompressed byte sealed into this
// segment has since been marked stale. A segment with zero uncompressed
// bytes is never fully stale -- there was nothing live to begin with, so
// treating it as GC-eligible would be vacuous.
func (s *Segment) IsFullyStale() bool {
	return s.totalUncompressedBytes > 0 && s.staleBytes.Load() == s.totalUncompressedBytes
}
