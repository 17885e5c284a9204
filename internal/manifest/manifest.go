// Package manifest implements the value log's crash-safe segment registry:
// the durable, atomically-rewritten list of which segment ids currently
// make up the log, plus the in-memory stats each registered Segment
// carries for GC accounting.
package manifest

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sync"

	stdErrors "errors"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ignitedb/vlog/internal/contracts"
	"github.com/ignitedb/vlog/internal/segment"
	"github.com/ignitedb/vlog/pkg/errors"
	"github.com/ignitedb/vlog/pkg/filesys"
	"github.com/ignitedb/vlog/pkg/seginfo"
)

// FileName is the manifest's filename relative to the value log's data
// directory.
const FileName = "vlog_manifest"

// Manifest is the durable registry of live segment ids. A single
// readers-writer lock guards its in-memory segment map; Register,
// DropSegments and ScanForStats take the write lock for the duration of
// their mutation, including any manifest disk rewrite.
type Manifest struct {
	path           string
	segmentsFolder string
	log            *zap.SugaredLogger

	mu       sync.RWMutex
	segments map[uint64]*segment.Segment

	ids *segment.IDAllocator
}

// CreateNew writes an empty manifest to dataDir and returns a fresh,
// empty Manifest. Used the first time a value log is opened in a given
// directory.
func CreateNew(dataDir, segmentsDirName string, log *zap.SugaredLogger) (*Manifest, error) {
	path := filepath.Join(dataDir, FileName)

	m := &Manifest{
		path:           path,
		segmentsFolder: filepath.Join(dataDir, segmentsDirName),
		log:            log,
		segments:       make(map[uint64]*segment.Segment),
		ids:            segment.NewIDAllocator(0),
	}

	if err := writeToDisk(path, nil); err != nil {
		return nil, err
	}

	log.Infow("created new manifest", "path", path)
	return m, nil
}

// Recover reads the manifest file, reconstructs a Segment descriptor for
// every registered id, and sweeps any segment directory that is not
// registered -- an "unfinished segment" left behind by a writer that
// crashed before ValueLog.Register ran.
//
// Recovered segments carry zero stats: this format does not persist the
// seal-time item/byte counters anywhere outside the writer that produced
// them, so a subsequent ScanForStats pass is what re-establishes staleness
// (and, implicitly, that every byte in a recovered segment reads as
// "unaccounted for" until that pass runs).
func Recover(dataDir, segmentsDirName string, log *zap.SugaredLogger) (*Manifest, error) {
	path := filepath.Join(dataDir, FileName)
	segmentsFolder := filepath.Join(dataDir, segmentsDirName)

	ids, err := loadIDsFromDisk(path)
	if err != nil {
		return nil, err
	}

	registered := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		registered[id] = struct{}{}
	}

	if err := seginfo.SweepUnregistered(segmentsFolder, registered); err != nil {
		return nil, errors.NewManifestError(err, errors.ErrorCodeRecoveryFailed, "failed to sweep unregistered segments").
			WithOperation("recover").WithPath(segmentsFolder)
	}

	segments := make(map[uint64]*segment.Segment, len(ids))
	var maxID uint64
	for _, id := range ids {
		segments[id] = segment.New(id, seginfo.SegmentPath(dataDir, segmentsDirName, id), segment.Stats{})
		if id >= maxID {
			maxID = id + 1
		}
	}

	log.Infow("recovered manifest", "path", path, "segmentCount", len(segments))

	return &Manifest{
		path:           path,
		segmentsFolder: segmentsFolder,
		log:            log,
		segments:       segments,
		ids:            segment.NewIDAllocator(maxID),
	}, nil
}

// Allocator returns the segment id allocator seeded by this manifest's
// recovery (or freshly created for a brand-new manifest). Every
// MultiWriter the value log opens draws ids from it.
func (m *Manifest) Allocator() *segment.IDAllocator { return m.ids }

// SegmentsFolder returns the absolute path of the directory holding
// segment files.
func (m *Manifest) SegmentsFolder() string { return m.segmentsFolder }

// Register finishes writer and installs every segment it sealed into the
// live set under a single write-lock critical section, then rewrites the
// manifest atomically. A writer that sealed nothing (no items were ever
// written to it) contributes no new segments.
func (m *Manifest) Register(writer *segment.MultiWriter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sealed, err := writer.Finish()
	if err != nil {
		return err
	}

	for _, seg := range sealed {
		m.segments[seg.ID] = seg
		m.log.Debugw(
			"registered segment",
			"segmentId", seg.ID,
			"itemCount", seg.ItemCount(),
			"uncompressedBytes", seg.TotalUncompressedBytes(),
		)
	}

	return writeToDisk(m.path, m.idsLocked())
}

// DropSegments removes ids from the live set and rewrites the manifest.
// Callers are responsible for unlinking the corresponding segment
// directories after this returns successfully.
func (m *Manifest) DropSegments(ids []uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.segments, id)
	}

	return writeToDisk(m.path, m.idsLocked())
}

// GetSegment returns the segment registered under id, if any.
func (m *Manifest) GetSegment(id uint64) (*segment.Segment, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seg, ok := m.segments[id]
	return seg, ok
}

// ListSegmentIDs returns every currently-registered segment id.
func (m *Manifest) ListSegmentIDs() []uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.idsLocked()
}

// ListSegments returns every currently-registered segment descriptor.
func (m *Manifest) ListSegments() []*segment.Segment {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*segment.Segment, 0, len(m.segments))
	for _, seg := range m.segments {
		out = append(out, seg)
	}
	return out
}

// Len returns the number of registered segments.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.segments)
}

// DiskSpaceUsed returns the sum of on-disk blob bytes across every
// registered segment.
func (m *Manifest) DiskSpaceUsed() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total uint64
	for _, seg := range m.segments {
		total += seg.TotalBytes()
	}
	return total
}

// StaleRatio returns Σstale_bytes / Σtotal_uncompressed_bytes, computed
// under a single snapshot of the segment map, 0 when the denominator is
// zero.
func (m *Manifest) StaleRatio() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var used, stale uint64
	for _, seg := range m.segments {
		used += seg.TotalUncompressedBytes()
		stale += seg.StaleBytes()
	}
	if used == 0 {
		return 0
	}
	return float64(stale) / float64(used)
}

// SpaceAmp returns Σtotal_uncompressed_bytes / (Σtotal_uncompressed_bytes −
// Σstale_bytes), computed under a single snapshot, 0 when either the used
// or the alive denominator is zero.
func (m *Manifest) SpaceAmp() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var used, stale uint64
	for _, seg := range m.segments {
		used += seg.TotalUncompressedBytes()
		stale += seg.StaleBytes()
	}
	if used == 0 {
		return 0
	}

	alive := used - stale
	if alive == 0 {
		return 0
	}

	return float64(used) / float64(alive)
}

// ScanForStats re-synchronizes every registered segment's staleness
// against reader: it resets stale counters to zero, scans each segment's
// full blob sequence, counts the bytes/items still pointed at by reader,
// and sets the stale counters to total-minus-live. Concurrent invocations
// of ScanForStats are not supported; callers must serialize them (the
// write lock taken here only protects against concurrent Register/
// DropSegments, not against a second concurrent scan).
func (m *Manifest) ScanForStats(reader contracts.IndexReader) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs error
	for id, seg := range m.segments {
		seg.SetStaleCounters(0, 0)
		liveItems, liveBytes, err := scanLiveness(seg, id, reader)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		staleItems := seg.ItemCount() - liveItems
		staleBytes := seg.TotalUncompressedBytes() - liveBytes
		seg.SetStaleCounters(staleItems, staleBytes)
	}

	return errs
}

// RefreshStats recomputes staleness for a single segment without
// requiring a full ScanForStats pass.
func (m *Manifest) RefreshStats(id uint64, reader contracts.IndexReader) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	seg, ok := m.segments[id]
	if !ok {
		return errors.NewManifestError(nil, errors.ErrorCodeManifestCorrupted, "unknown segment").
			WithOperation("refresh_stats").WithDetail("segmentId", id)
	}

	liveItems, liveBytes, err := scanLiveness(seg, id, reader)
	if err != nil {
		return err
	}

	seg.SetStaleCounters(seg.ItemCount()-liveItems, seg.TotalUncompressedBytes()-liveBytes)
	return nil
}

// scanLiveness opens seg's file and counts, across every blob record, how
// many items/bytes are still the handle the index returns for their key.
func scanLiveness(seg *segment.Segment, id uint64, reader contracts.IndexReader) (liveItems, liveBytes uint64, err error) {
	r, err := segment.NewReader(seg.Path)
	if err != nil {
		return 0, 0, err
	}
	defer r.Close()

	for {
		key, value, offset, err := r.Next()
		if err != nil {
			if isCleanEOF(err) {
				break
			}
			return 0, 0, errors.NewStorageError(err, errors.ErrorCodeSegmentCorrupted, "segment corrupted during stats scan").
				WithSegmentID(id).WithPath(seg.Path)
		}

		handle, ok, err := reader.Get(key)
		if err != nil {
			return 0, 0, err
		}
		if ok && handle.SegmentID == id && handle.Offset == offset {
			liveItems++
			liveBytes += uint64(len(value))
		}
	}

	return liveItems, liveBytes, nil
}

// idsLocked returns the registered ids. Callers must already hold m.mu.
func (m *Manifest) idsLocked() []uint64 {
	ids := make([]uint64, 0, len(m.segments))
	for id := range m.segments {
		ids = append(ids, id)
	}
	return ids
}

func loadIDsFromDisk(path string) ([]uint64, error) {
	data, err := filesys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewManifestError(err, errors.ErrorCodeIO, "manifest file missing").
				WithOperation("recover").WithPath(path)
		}
		return nil, errors.NewManifestError(err, errors.ErrorCodeIO, "failed to read manifest file").
			WithOperation("recover").WithPath(path)
	}

	if len(data) < 8 {
		return nil, errors.NewManifestError(nil, errors.ErrorCodeManifestCorrupted, "manifest file too short").
			WithOperation("recover").WithPath(path)
	}

	count := binary.BigEndian.Uint64(data[0:8])
	want := 8 + int(count)*8
	if len(data) != want {
		return nil, errors.NewManifestError(nil, errors.ErrorCodeManifestCorrupted, "manifest file length mismatch").
			WithOperation("recover").WithPath(path).WithDetail("declaredCount", count)
	}

	ids := make([]uint64, count)
	for i := range ids {
		offset := 8 + i*8
		ids[i] = binary.BigEndian.Uint64(data[offset : offset+8])
	}

	return ids, nil
}

func writeToDisk(path string, ids []uint64) error {
	buf := make([]byte, 8+len(ids)*8)
	binary.BigEndian.PutUint64(buf[0:8], uint64(len(ids)))
	for i, id := range ids {
		offset := 8 + i*8
		binary.BigEndian.PutUint64(buf[offset:offset+8], id)
	}

	if err := filesys.AtomicWriteFile(path, 0644, buf); err != nil {
		return errors.NewManifestError(err, errors.ErrorCodeIO, "failed to rewrite manifest").
			WithOperation("write_to_disk").WithPath(path)
	}

	return nil
}

func isCleanEOF(err error) bool {
	return stdErrors.Is(err, io.EOF)
}
