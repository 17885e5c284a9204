// Package accessor implements the value log's point-read path: resolving a
// ValueHandle to the blob it references.
package accessor

import (
	"go.uber.org/zap"

	"github.com/ignitedb/vlog/internal/contracts"
	"github.com/ignitedb/vlog/internal/manifest"
	"github.com/ignitedb/vlog/internal/segment"
)

// Accessor resolves ValueHandles against a Manifest.
type Accessor struct {
	manifest *manifest.Manifest
	log      *zap.SugaredLogger
}

// New constructs an Accessor reading through m.
func New(m *manifest.Manifest, log *zap.SugaredLogger) *Accessor {
	return &Accessor{manifest: m, log: log}
}

// Get resolves handle to its decoded value. A nil, false result means the
// segment the handle references is no longer registered -- the segment is
// gone, which is distinct from "no value at this key"; that distinction
// belongs to the index, not here. Any decode failure (bad header, bad tag,
// checksum mismatch, failed decompress) is surfaced as an error, since it
// indicates corruption rather than an absent value.
func (a *Accessor) Get(handle contracts.ValueHandle) ([]byte, bool, error) {
	seg, ok := a.manifest.GetSegment(handle.SegmentID)
	if !ok {
		return nil, false, nil
	}

	value, err := segment.ReadValueAt(seg.Path, handle.Offset)
	if err != nil {
		return nil, false, err
	}

	return value, true, nil
}
