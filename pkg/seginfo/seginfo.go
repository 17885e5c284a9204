// Package seginfo provides utilities for naming, listing, and sweeping
// segment files in the value log's segments directory.
//
// Unlike a timestamped write-ahead log, a value log segment's filename is
// nothing more than its numeric id: "segments/<id>". The manifest, not the
// filename, is the source of truth for which ids are live; seginfo only
// helps translate between the two during recovery.
package seginfo

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// SegmentPath returns the on-disk path for a segment id given the value
// log's data directory and its configured segments subdirectory.
func SegmentPath(dataDir, segmentDir string, id uint64) string {
	return filepath.Join(dataDir, segmentDir, strconv.FormatUint(id, 10))
}

// ListSegmentIDs scans segmentsFolder and returns the ids of every entry
// whose name parses as an unsigned integer. Entries that don't parse are
// ignored by this function -- callers that care about foreign files should
// inspect the directory listing themselves.
func ListSegmentIDs(segmentsFolder string) ([]uint64, error) {
	entries, err := os.ReadDir(segmentsFolder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read segments directory %s: %w", segmentsFolder, err)
	}

	ids := make([]uint64, 0, len(entries))
	for _, entry := range entries {
		id, err := strconv.ParseUint(entry.Name(), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// SweepUnregistered removes every entry under segmentsFolder whose id is not
// present in registered. This implements the "unfinished segment" sweep: a
// segment file can exist on disk because its writer crashed before
// ValueLog.Register ran, and since no manifest entry points to it, it is
// garbage by definition.
func SweepUnregistered(segmentsFolder string, registered map[uint64]struct{}) error {
	ids, err := ListSegmentIDs(segmentsFolder)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if _, ok := registered[id]; ok {
			continue
		}

		path := filepath.Join(segmentsFolder, strconv.FormatUint(id, 10))
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove unregistered segment %d at %s: %w", id, path, err)
		}
	}

	return nil
}
