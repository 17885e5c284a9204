// Package valuelog implements the public facade described by this
// codebase's value log: open/recovery, the write and read paths, and the
// GC accounting + rollover operations that keep disk usage bounded.
package valuelog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ignitedb/vlog/internal/accessor"
	"github.com/ignitedb/vlog/internal/compaction"
	"github.com/ignitedb/vlog/internal/contracts"
	"github.com/ignitedb/vlog/internal/manifest"
	"github.com/ignitedb/vlog/internal/segment"
	"github.com/ignitedb/vlog/pkg/errors"
	"github.com/ignitedb/vlog/pkg/filesys"
	"github.com/ignitedb/vlog/pkg/options"
)

// Config encapsulates the parameters required to open a ValueLog.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// ValueLog is the public facade orchestrating the segment manifest, the
// write and read paths, and GC accounting/rollover.
type ValueLog struct {
	dataDir        string
	segmentsFolder string
	opts           *options.Options
	log            *zap.SugaredLogger

	manifest  *manifest.Manifest
	accessor  *accessor.Accessor
	compactor *compaction.Executor
	metrics   *Metrics
}

// Open opens (or, on first use, initializes) a value log rooted at
// config.Options.DataDir. First-time vs recovery is detected by the
// presence of the ".vlog" marker file: absent means first-time (the marker
// and an empty manifest are written); present means recovery (the marker
// is validated and the manifest is reconstructed from disk, sweeping any
// unregistered segment directories).
func Open(ctx context.Context, config *Config) (*ValueLog, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, fmt.Errorf("invalid configuration")
	}

	opts := config.Options
	log := config.Logger
	dataDir := opts.DataDir
	segmentsFolder := filepath.Join(dataDir, opts.SegmentOptions.Directory)

	log.Infow("opening value log", "dataDir", dataDir, "segmentsDir", segmentsFolder)

	if err := filesys.CreateDir(dataDir, 0755, true); err != nil {
		return nil, errors.ClassifyDirectoryCreationError(err, dataDir)
	}
	if err := filesys.CreateDir(segmentsFolder, 0755, true); err != nil {
		return nil, errors.ClassifyDirectoryCreationError(err, segmentsFolder)
	}

	exists, err := markerExists(dataDir)
	if err != nil {
		return nil, err
	}

	var m *manifest.Manifest
	if !exists {
		log.Infow("no marker file found, initializing fresh value log", "dataDir", dataDir)
		if err := writeMarker(dataDir); err != nil {
			return nil, err
		}
		m, err = manifest.CreateNew(dataDir, opts.SegmentOptions.Directory, log)
		if err != nil {
			return nil, err
		}
	} else {
		log.Infow("marker file found, recovering value log", "dataDir", dataDir)
		if err := validateMarker(dataDir); err != nil {
			return nil, err
		}
		m, err = manifest.Recover(dataDir, opts.SegmentOptions.Directory, log)
		if err != nil {
			return nil, err
		}
	}

	vl := &ValueLog{
		dataDir:        dataDir,
		segmentsFolder: segmentsFolder,
		opts:           opts,
		log:            log,
		manifest:       m,
		accessor:       accessor.New(m, log),
		compactor: compaction.New(
			m, segmentsFolder,
			opts.SegmentOptions.Size, opts.SegmentOptions.Compression, opts.SegmentOptions.CompressionThreshold,
			log,
		),
	}
	vl.metrics = NewMetrics(m)

	log.Infow("value log opened", "dataDir", dataDir, "segmentCount", m.Len())
	_ = ctx // reserved for future cancellation-aware I/O; every call here is local disk access today.

	return vl, nil
}

// GetWriter returns a fresh MultiWriter rolling over at the configured
// segment size. Callers own the writer's lifecycle: write to it, then pass
// it to Register.
func (vl *ValueLog) GetWriter() (*segment.MultiWriter, error) {
	return segment.NewMultiWriter(
		vl.segmentsFolder,
		vl.opts.SegmentOptions.Size,
		vl.opts.SegmentOptions.Compression,
		vl.opts.SegmentOptions.CompressionThreshold,
		vl.manifest.Allocator(),
		vl.log,
	)
}

// Register finishes writer and atomically installs every segment it
// sealed into the manifest. Handles obtained from writer only become
// observable to Get once Register returns successfully.
func (vl *ValueLog) Register(writer *segment.MultiWriter) error {
	return vl.manifest.Register(writer)
}

// Get resolves handle to its decoded value.
func (vl *ValueLog) Get(handle contracts.ValueHandle) ([]byte, bool, error) {
	return vl.accessor.Get(handle)
}

// ScanForStats re-synchronizes every segment's staleness against reader.
// This is how the enclosing system re-establishes GC accounting after an
// index compaction or bulk delete.
func (vl *ValueLog) ScanForStats(reader contracts.IndexReader) error {
	return vl.manifest.ScanForStats(reader)
}

// RefreshStats recomputes staleness for a single segment without a full
// ScanForStats pass.
func (vl *ValueLog) RefreshStats(segmentID uint64, reader contracts.IndexReader) error {
	return vl.manifest.RefreshStats(segmentID, reader)
}

// Rollover rewrites still-live blobs out of sourceIDs into fresh segments,
// coordinating with reader/writer per the rollover protocol.
func (vl *ValueLog) Rollover(sourceIDs []uint64, reader contracts.IndexReader, writer contracts.IndexWriter) error {
	return vl.compactor.Rollover(sourceIDs, reader, writer)
}

// DropStaleSegments drops and unlinks every segment whose stale ratio has
// reached 1.0 -- every uncompressed byte it ever held has since been
// marked stale by a ScanForStats pass.
func (vl *ValueLog) DropStaleSegments() error {
	var dead []uint64
	for _, seg := range vl.manifest.ListSegments() {
		if seg.IsFullyStale() {
			dead = append(dead, seg.ID)
		}
	}
	if len(dead) == 0 {
		return nil
	}

	paths := make([]string, 0, len(dead))
	for _, id := range dead {
		if seg, ok := vl.manifest.GetSegment(id); ok {
			paths = append(paths, seg.Path)
		}
	}

	if err := vl.manifest.DropSegments(dead); err != nil {
		return err
	}

	var unlinkErrs error
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			unlinkErrs = multierr.Append(unlinkErrs, err)
		}
	}

	vl.log.Infow("dropped stale segments", "count", len(dead))
	return unlinkErrs
}

// Metrics returns the prometheus.Collector exposing this value log's GC
// accounting. Callers register it with their own registry.
func (vl *ValueLog) Metrics() *Metrics { return vl.metrics }

// SegmentCount returns the number of segments currently registered.
func (vl *ValueLog) SegmentCount() int { return vl.manifest.Len() }

// StaleRatio returns the manifest's current
// Σstale_bytes/Σtotal_uncompressed_bytes.
func (vl *ValueLog) StaleRatio() float64 { return vl.manifest.StaleRatio() }

// SpaceAmp returns the manifest's current space amplification.
func (vl *ValueLog) SpaceAmp() float64 { return vl.manifest.SpaceAmp() }
