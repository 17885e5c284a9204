package valuelog

import (
	"path/filepath"

	"github.com/ignitedb/vlog/internal/codec"
	"github.com/ignitedb/vlog/pkg/errors"
	"github.com/ignitedb/vlog/pkg/filesys"
)

// markerFileName is the value log's first-time-vs-recovery sentinel: a
// directory that doesn't have one yet is a fresh value log; one that does
// is being recovered.
const markerFileName = ".vlog"

func markerPath(dataDir string) string {
	return filepath.Join(dataDir, markerFileName)
}

// markerExists reports whether dataDir already has a marker file.
func markerExists(dataDir string) (bool, error) {
	path := markerPath(dataDir)
	exists, err := filesys.Exists(path)
	if err != nil {
		return false, errors.NewManifestError(err, errors.ErrorCodeIO, "failed to stat marker file").
			WithOperation("open").WithPath(path)
	}
	return exists, nil
}

// writeMarker writes a fresh marker file recording the current format
// version.
func writeMarker(dataDir string) error {
	header := codec.WriteFileHeader(codec.V1)
	path := markerPath(dataDir)
	if err := filesys.AtomicWriteFile(path, 0644, header); err != nil {
		return errors.NewManifestError(err, errors.ErrorCodeIO, "failed to write marker file").
			WithOperation("open").WithPath(path)
	}
	return nil
}

// validateMarker reads and parses the existing marker file, failing with
// InvalidVersion if it records an unknown format version.
func validateMarker(dataDir string) error {
	path := markerPath(dataDir)

	data, err := filesys.ReadFile(path)
	if err != nil {
		return errors.NewManifestError(err, errors.ErrorCodeIO, "failed to read marker file").
			WithOperation("open").WithPath(path)
	}

	_, ok, err := codec.ParseFileHeader(data)
	if err != nil {
		// Recognized magic, unknown version.
		return err
	}
	if !ok {
		return errors.NewManifestError(nil, errors.ErrorCodeInvalidHeader, "marker file magic mismatch").
			WithOperation("open").WithPath(path)
	}

	return nil
}
