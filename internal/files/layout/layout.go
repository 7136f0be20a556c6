package layout

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/vvka-141/pg2duck/internal/files/filesystem"
	"github.com/vvka-141/pg2duck/pkg/pg2duck"
)

// TableDir is a table directory discovered under the input root.
type TableDir struct {
	Table pg2duck.TableRef
	Path  string
}

// DirName returns the directory name used for ref.
func DirName(ref pg2duck.TableRef) string {
	return ref.Schema + pg2duck.TableDirSeparator + ref.Name
}

// TablePath returns the directory holding ref's Parquet files under root.
func TablePath(root string, ref pg2duck.TableRef) string {
	return filepath.Join(root, DirName(ref))
}

// ParseTableDirName splits a <schema>.<table> directory name. Names with no
// separator, more than one separator, or an empty side are rejected.
func ParseTableDirName(name string) (pg2duck.TableRef, error) {
	if strings.Count(name, pg2duck.TableDirSeparator) != 1 {
		return pg2duck.TableRef{}, fmt.Errorf("%w: %q must contain exactly one %q",
			pg2duck.ErrInvalidTableDirectory, name, pg2duck.TableDirSeparator)
	}

	schema, table, _ := strings.Cut(name, pg2duck.TableDirSeparator)
	if schema == "" || table == "" {
		return pg2duck.TableRef{}, fmt.Errorf("%w: %q has an empty schema or table name",
			pg2duck.ErrInvalidTableDirectory, name)
	}

	return pg2duck.TableRef{Schema: schema, Name: table}, nil
}

// ScanTableDirectories lists the table directories directly under root in
// listing order. Non-directory entries are ignored. Every directory name is
// validated before anything is returned, so a single bad name fails the
// whole scan.
func ScanTableDirectories(fsys filesystem.FileSystem, root string) ([]TableDir, error) {
	info, err := fsys.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: input directory %s: %v", pg2duck.ErrInvalidConfig, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: input path %s is not a directory", pg2duck.ErrInvalidConfig, root)
	}

	entries, err := fsys.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list input directory %s: %w", root, err)
	}

	var dirs []TableDir
	var invalid []error
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		ref, err := ParseTableDirName(entry.Name())
		if err != nil {
			invalid = append(invalid, err)
			continue
		}
		dirs = append(dirs, TableDir{Table: ref, Path: filepath.Join(root, entry.Name())})
	}

	if len(invalid) > 0 {
		return nil, errors.Join(invalid...)
	}
	return dirs, nil
}

// IsEmptyDir reports whether path is an existing directory with no entries.
// A missing path yields (false, fs.ErrNotExist).
func IsEmptyDir(fsys filesystem.FileSystem, path string) (bool, error) {
	entries, err := fsys.ReadDir(path)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

// PrepareOutputDirectory makes sure path is an empty directory, creating it
// when missing.
func PrepareOutputDirectory(fsys filesystem.FileSystem, path string) error {
	info, err := fsys.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := fsys.MkdirAll(path); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", path, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check output directory %s: %w", path, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s", pg2duck.ErrOutputNotDirectory, path)
	}

	empty, err := IsEmptyDir(fsys, path)
	if err != nil {
		return fmt.Errorf("failed to check output directory %s: %w", path, err)
	}
	if !empty {
		return fmt.Errorf("%w: %s\n\nRemove its contents or choose a different output_directory", pg2duck.ErrOutputNotEmpty, path)
	}
	return nil
}

// WriteResultFile writes a single line to path, creating parent directories.
func WriteResultFile(fsys filesystem.FileSystem, path, line string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir); err != nil {
			return fmt.Errorf("failed to create result directory %s: %w", dir, err)
		}
	}
	if err := fsys.WriteFile(path, []byte(line+"\n")); err != nil {
		return fmt.Errorf("failed to write result file %s: %w", path, err)
	}
	return nil
}
