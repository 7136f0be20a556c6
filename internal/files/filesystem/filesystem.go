package filesystem

import (
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
type FileInfo = fs.FileInfo

// FileSystem is the set of operations the pipeline performs on local paths.
// Missing paths are reported with errors matching fs.ErrNotExist.
type FileSystem interface {
	// Stat returns file information for the given path.
	Stat(path string) (FileInfo, error)

	// ReadDir returns the entries directly under path, sorted by name.
	ReadDir(path string) ([]FileInfo, error)

	// ReadFile reads a specific file at the given path.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to path, replacing existing content.
	// The parent directory must exist.
	WriteFile(path string, data []byte) error

	// MkdirAll creates path and any missing parents.
	MkdirAll(path string) error

	// RemoveAll removes path and everything under it. A missing path is not an error.
	RemoveAll(path string) error
}
