// Package filesys provides the small set of file system primitives this
// codebase's durability story is built on: directory creation, existence
// checks, whole-file reads, and the atomic rewrite protocol the manifest
// and marker file depend on.
package filesys

import (
	"errors"
	"os"
	"path/filepath"
)

var (
	ErrIsNotDir = errors.New("path isn't a directory")
)

// CreateDir creates a directory at the specified path with the given permissions.
//
// If the directory already exists:
//   - If 'force' is true, it proceeds without error.
//   - If 'force' is false, it returns an error.
//
// It also returns an error if the existing path is a file (not a directory).
func CreateDir(dirPath string, permission os.FileMode, force bool) error {
	// Get file information for the given path.
	stat, err := os.Stat(dirPath)
	// If 'force' is false and the path exists
	// return an error (indicating the directory already exists).
	if !force {
		if err == nil {
			return os.ErrExist
		}
		if !os.IsNotExist(err) {
			return err
		}
	}

	// If the path exists and it's not a directory, return an error.
	if stat != nil && !stat.IsDir() {
		return ErrIsNotDir
	}

	// Create all necessary parent directories if they don't exist, with the specified permissions.
	if err := os.MkdirAll(dirPath, permission); err != nil {
		return err
	}

	// Change the permissions of the newly created directory to 0755 (rwxr-xr-x).
	return os.Chmod(dirPath, 0755)
}

// Exists checks if a file or directory at the given `file` path exists.
// It returns true if the file/directory exists, false if it does not,
// and an error if there's any other issue checking its status.
func Exists(file string) (bool, error) {
	_, err := os.Stat(file)
	if err == nil {
		return true, nil // Path exists.
	}
	// If the error indicates that the file does not exist, return false.
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// AtomicWriteFile rewrites filePath so that readers never observe a partial
// write: contents are written to a temp file in the same directory, fsynced,
// then renamed over filePath. Writing the temp file in the same directory as
// the destination ensures the rename is same-filesystem and therefore atomic.
//
// On platforms where opening the freshly renamed file to fsync it fails (the
// Windows case carried over from this package's reference implementation),
// that second fsync is skipped rather than treated as an error -- the
// temp-file fsync already made the write durable.
func AtomicWriteFile(filePath string, permission os.FileMode, contents []byte) error {
	dir := filepath.Dir(filePath)

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(contents); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, permission); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if f, err := os.Open(filePath); err == nil {
		_ = f.Sync()
		f.Close()
	}

	return nil
}

// ReadFile reads the entire content of the file at `filePath` into a byte slice.
// It returns the file content and any error encountered.
func ReadFile(filePath string) ([]byte, error) {
	contents, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return contents, err
}
