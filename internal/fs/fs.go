// Package fs provides the file system abstraction the generator writes through.
// Creation calls fail closed: neither Mkdir nor CreateFile ever replaces a path
// that already exists, which keeps a racing writer from being clobbered.
package fs

import (
	"errors"
	"fmt"
	"os"
)

// FS defines the file system operations needed to materialize a scaffold.
// Implementations can provide real file system access or in-memory
// mocking for testing.
type FS interface {
	// CreateFile creates path exclusively and writes data to it. It fails
	// with an error satisfying errors.Is(err, os.ErrExist) if path exists.
	CreateFile(path string, data []byte, perm os.FileMode) error

	// Mkdir creates a single directory. The parent must already exist and
	// path itself must not.
	Mkdir(path string, perm os.FileMode) error

	// Lstat returns file info for path without following symlinks.
	Lstat(path string) (os.FileInfo, error)

	// Remove removes a file or an empty directory.
	Remove(path string) error
}

// RealFS implements FS using the actual operating system.
type RealFS struct{}

// CreateFile writes data to a newly created file. A file left incomplete by a
// failed write or close is removed before the error is returned.
func (r *RealFS) CreateFile(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}

	_, writeErr := f.Write(data)
	closeErr := f.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		return discardPartial(path, err)
	}
	return nil
}

// discardPartial removes an incomplete file and reports a failed removal
// alongside err, since the caller's rollback no longer knows about path.
func discardPartial(path string, err error) error {
	if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		return errors.Join(err, fmt.Errorf("removing partial file %s: %w", path, rmErr))
	}
	return err
}

func (r *RealFS) Mkdir(path string, perm os.FileMode) error {
	return os.Mkdir(path, perm)
}

func (r *RealFS) Lstat(path string) (os.FileInfo, error) {
	return os.Lstat(path)
}

func (r *RealFS) Remove(path string) error {
	return os.Remove(path)
}

// Default is the default RealFS instance for convenience.
var Default = &RealFS{}
