package options

const (
	// DefaultDataDir specifies the default base directory where the value log
	// will store its marker file, manifest, and segments.
	DefaultDataDir = "/var/lib/vlog"

	// MinSegmentSize is the minimum allowed size for a segment file in bytes (1MB).
	MinSegmentSize uint64 = 1 * 1024 * 1024

	// MaxSegmentSize is the maximum allowed size for a segment file in bytes (4GB).
	MaxSegmentSize uint64 = 4 * 1024 * 1024 * 1024

	// DefaultSegmentSize is the default rollover threshold for a segment file
	// in bytes (1GB).
	DefaultSegmentSize uint64 = 1 * 1024 * 1024 * 1024

	// DefaultSegmentDirectory is the default subdirectory (relative to
	// DataDir) where segment files are stored.
	DefaultSegmentDirectory = "segments"

	// DefaultCompressionThreshold is the default minimum uncompressed value
	// size, in bytes, eligible for compression.
	DefaultCompressionThreshold uint32 = 128
)

// defaultOptions holds the default configuration settings for a ValueLog.
var defaultOptions = Options{
	DataDir: DefaultDataDir,
	SegmentOptions: &SegmentOptions{
		Size:                 DefaultSegmentSize,
		Directory:            DefaultSegmentDirectory,
		Compression:          CompressionNone,
		CompressionThreshold: DefaultCompressionThreshold,
	},
}

// NewDefaultOptions returns a fresh copy of the default configuration. The
// returned Options owns its own SegmentOptions so callers may mutate it
// without aliasing package-level state.
func NewDefaultOptions() Options {
	opts := defaultOptions
	segOpts := *defaultOptions.SegmentOptions
	opts.SegmentOptions = &segOpts
	return opts
}
