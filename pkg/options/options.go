// Package options provides data structures and functions for configuring
// the value log. It defines the parameters that control segment rotation,
// blob compression, and where on disk the log's files live, following the
// same functional-options shape used throughout this codebase's ancestor.
package options

import (
	"strings"

	"github.com/ignitedb/vlog/pkg/errors"
)

// Compression identifies which codec a MultiWriter uses to encode new blob
// values. The zero value is None.
type Compression uint8

const (
	// CompressionNone stores values verbatim.
	CompressionNone Compression = iota

	// CompressionLZ4 compresses values with the LZ4 frame codec, favoring
	// speed over ratio.
	CompressionLZ4

	// CompressionDeflate compresses values with DEFLATE, favoring ratio over
	// speed.
	CompressionDeflate
)

// String renders the compression setting for logging.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionDeflate:
		return "deflate"
	default:
		return "unknown"
	}
}

// SegmentOptions defines configurable parameters for segment files written
// by a MultiWriter.
type SegmentOptions struct {
	// Size is the rollover threshold: once a write brings a segment's
	// on-disk size to Size or beyond, the MultiWriter seals it and rolls
	// over to a fresh segment id, so a sealed segment can exceed Size by
	// its last record.
	//
	//  - Default: 1GB
	//  - Maximum: 4GB
	//  - Minimum: 1MB
	Size uint64 `json:"maxSegmentSize"`

	// Directory names the subdirectory of DataDir that holds segment files.
	//
	// Default: "segments"
	Directory string `json:"directory"`

	// Compression selects the codec new blob values are encoded with.
	//
	// Default: CompressionNone
	Compression Compression `json:"compression"`

	// CompressionThreshold is the minimum uncompressed value size, in bytes,
	// below which a value is stored verbatim even when Compression selects a
	// real codec. Small values rarely compress well enough to be worth the
	// CPU, and the per-record overhead of a codec frame can make them larger.
	//
	// Default: 128
	CompressionThreshold uint32 `json:"compressionThreshold"`
}

// Options defines the configuration parameters for a ValueLog instance. It
// provides control over segment rotation and compression behavior; it does
// not parse flags or environment variables -- that belongs to the enclosing
// application, not this package.
type Options struct {
	// DataDir specifies the base path where the value log's marker file,
	// manifest, and segments directory live.
	//
	// Default: "/var/lib/vlog"
	DataDir string `json:"dataDir"`

	// SegmentOptions configures segment rotation, directory placement, and
	// compression.
	SegmentOptions *SegmentOptions `json:"segmentOptions"`
}

// Validate reports whether o is a complete, internally consistent
// configuration. It is called by ignite.NewInstance as the final check
// after every OptionFunc has applied, since an Options is not required to
// be built exclusively through OptionFuncs (a caller may also construct one
// as a literal). valuelog.Open does not call it.
func (o *Options) Validate() error {
	if o == nil {
		return errors.NewRequiredFieldError("options")
	}
	if strings.TrimSpace(o.DataDir) == "" {
		return errors.NewRequiredFieldError("dataDir")
	}
	if o.SegmentOptions == nil {
		return errors.NewRequiredFieldError("segmentOptions")
	}
	if strings.TrimSpace(o.SegmentOptions.Directory) == "" {
		return errors.NewRequiredFieldError("segmentOptions.directory")
	}
	if o.SegmentOptions.Size < MinSegmentSize || o.SegmentOptions.Size > MaxSegmentSize {
		return errors.NewFieldRangeError("segmentOptions.size", o.SegmentOptions.Size, MinSegmentSize, MaxSegmentSize)
	}
	if o.SegmentOptions.Compression > CompressionDeflate {
		return errors.NewFieldFormatError("segmentOptions.compression", o.SegmentOptions.Compression, "one of none|lz4|deflate")
	}
	if uint64(o.SegmentOptions.CompressionThreshold) > o.SegmentOptions.Size {
		return errors.NewFieldRangeError("segmentOptions.compressionThreshold", o.SegmentOptions.CompressionThreshold, 0, o.SegmentOptions.Size)
	}
	return nil
}

// OptionFunc is a function type that modifies the value log's configuration,
// rejecting the mutation with a *errors.ValidationError rather than
// silently clamping or ignoring an out-of-range value.
type OptionFunc func(*Options) error

// WithDefaultOptions applies the package's default configuration values.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) error {
		opts := NewDefaultOptions()
		o.DataDir = opts.DataDir
		o.SegmentOptions = opts.SegmentOptions
		return nil
	}
}

// WithDataDir sets the primary data directory for the value log.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) error {
		directory = strings.TrimSpace(directory)
		if directory == "" {
			return errors.NewRequiredFieldError("dataDir")
		}
		o.DataDir = directory
		return nil
	}
}

// WithSegmentDir sets the directory (relative to DataDir) that stores
// segment files.
func WithSegmentDir(directory string) OptionFunc {
	return func(o *Options) error {
		directory = strings.TrimSpace(directory)
		if directory == "" {
			return errors.NewRequiredFieldError("segmentOptions.directory")
		}
		o.SegmentOptions.Directory = directory
		return nil
	}
}

// WithSegmentSize sets the rollover threshold for segment files. size must
// fall within [MinSegmentSize, MaxSegmentSize]; an out-of-range value is
// rejected with a *errors.ValidationError rather than silently clamped.
func WithSegmentSize(size uint64) OptionFunc {
	return func(o *Options) error {
		if size < MinSegmentSize || size > MaxSegmentSize {
			return errors.NewFieldRangeError("segmentSize", size, MinSegmentSize, MaxSegmentSize)
		}
		o.SegmentOptions.Size = size
		return nil
	}
}

// WithCompression selects the codec used for new blob values.
func WithCompression(c Compression) OptionFunc {
	return func(o *Options) error {
		if c > CompressionDeflate {
			return errors.NewFieldFormatError("compression", c, "one of none|lz4|deflate")
		}
		o.SegmentOptions.Compression = c
		return nil
	}
}

// WithCompressionThreshold sets the minimum uncompressed value size that is
// eligible for compression. threshold must not exceed the configured
// segment size -- a threshold larger than a whole segment can never be
// reached -- and is rejected with a *errors.ValidationError otherwise.
func WithCompressionThreshold(threshold uint32) OptionFunc {
	return func(o *Options) error {
		if uint64(threshold) > o.SegmentOptions.Size {
			return errors.NewFieldRangeError("compressionThreshold", threshold, 0, o.SegmentOptions.Size)
		}
		o.SegmentOptions.CompressionThreshold = threshold
		return nil
	}
}
