package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory entries
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.isDir }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

type memoryEntry struct {
	content []byte
	info    *memoryFileInfo
}

// MemoryFileSystem implements FileSystem for in-memory testing.
// Paths are normalized to forward slashes; relative paths resolve against root.
type MemoryFileSystem struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	root    string
}

// NewMemoryFileSystem creates a new in-memory filesystem rooted at root.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	root = path.Clean(filepath.ToSlash(root))

	mfs := &MemoryFileSystem{
		entries: make(map[string]*memoryEntry),
		root:    root,
	}
	mfs.entries[root] = newDirEntry(root)
	if root != "/" {
		mfs.ensureParents(root)
	}
	return mfs
}

func newDirEntry(p string) *memoryEntry {
	return &memoryEntry{info: &memoryFileInfo{
		name:    path.Base(p),
		mode:    0o755 | fs.ModeDir,
		modTime: time.Now(),
		isDir:   true,
	}}
}

func (mfs *MemoryFileSystem) resolve(p string) string {
	p = filepath.ToSlash(p)
	if p == "" || p == "." {
		return mfs.root
	}
	if !path.IsAbs(p) {
		p = path.Join(mfs.root, p)
	}
	return path.Clean(p)
}

// ensureParents creates directory entries for every ancestor of p.
func (mfs *MemoryFileSystem) ensureParents(p string) {
	for dir := path.Dir(p); ; dir = path.Dir(dir) {
		if _, ok := mfs.entries[dir]; !ok {
			mfs.entries[dir] = newDirEntry(dir)
		}
		if dir == "/" || dir == "." {
			return
		}
	}
}

// AddFile adds a file, creating missing parent directories.
func (mfs *MemoryFileSystem) AddFile(filePath string, content string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.putFile(mfs.resolve(filePath), []byte(content))
}

// AddDir adds a directory, creating missing parents.
func (mfs *MemoryFileSystem) AddDir(dirPath string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.putDir(mfs.resolve(dirPath))
}

func (mfs *MemoryFileSystem) putFile(abs string, data []byte) {
	mfs.entries[abs] = &memoryEntry{
		content: append([]byte(nil), data...),
		info: &memoryFileInfo{
			name:    path.Base(abs),
			size:    int64(len(data)),
			mode:    0o644,
			modTime: time.Now(),
		},
	}
	mfs.ensureParents(abs)
}

func (mfs *MemoryFileSystem) putDir(abs string) {
	if _, ok := mfs.entries[abs]; !ok {
		mfs.entries[abs] = newDirEntry(abs)
	}
	mfs.ensureParents(abs)
}

// Exists reports whether p has an entry.
func (mfs *MemoryFileSystem) Exists(p string) bool {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	_, ok := mfs.entries[mfs.resolve(p)]
	return ok
}

func notExist(op, p string) error {
	return &fs.PathError{Op: op, Path: p, Err: fs.ErrNotExist}
}

// Stat implements FileSystem.Stat
func (mfs *MemoryFileSystem) Stat(statPath string) (FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	e, ok := mfs.entries[mfs.resolve(statPath)]
	if !ok {
		return nil, notExist("stat", statPath)
	}
	return e.info, nil
}

// ReadDir implements FileSystem.ReadDir
func (mfs *MemoryFileSystem) ReadDir(dirPath string) ([]FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	abs := mfs.resolve(dirPath)
	e, ok := mfs.entries[abs]
	if !ok {
		return nil, fmt.Errorf("failed to read directory: %w", notExist("readdir", dirPath))
	}
	if !e.info.isDir {
		return nil, fmt.Errorf("path is not a directory: %s", dirPath)
	}

	var result []FileInfo
	for p, child := range mfs.entries {
		if p != abs && path.Dir(p) == abs {
			result = append(result, child.info)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result, nil
}

// ReadFile implements FileSystem.ReadFile
func (mfs *MemoryFileSystem) ReadFile(filePath string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	e, ok := mfs.entries[mfs.resolve(filePath)]
	if !ok {
		return nil, notExist("open", filePath)
	}
	if e.info.isDir {
		return nil, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	return append([]byte(nil), e.content...), nil
}

// WriteFile implements FileSystem.WriteFile
func (mfs *MemoryFileSystem) WriteFile(filePath string, data []byte) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	abs := mfs.resolve(filePath)
	parent, ok := mfs.entries[path.Dir(abs)]
	if !ok {
		return notExist("open", filePath)
	}
	if !parent.info.isDir {
		return fmt.Errorf("parent is not a directory: %s", path.Dir(filePath))
	}
	if e, ok := mfs.entries[abs]; ok && e.info.isDir {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	mfs.putFile(abs, data)
	return nil
}

// MkdirAll implements FileSystem.MkdirAll
func (mfs *MemoryFileSystem) MkdirAll(dirPath string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	abs := mfs.resolve(dirPath)
	for p := abs; ; p = path.Dir(p) {
		if e, ok := mfs.entries[p]; ok && !e.info.isDir {
			return fmt.Errorf("path is not a directory: %s", p)
		}
		if p == "/" || p == "." {
			break
		}
	}
	mfs.putDir(abs)
	return nil
}

// RemoveAll implements FileSystem.RemoveAll
func (mfs *MemoryFileSystem) RemoveAll(dirPath string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	abs := mfs.resolve(dirPath)
	for p := range mfs.entries {
		if p == abs || strings.HasPrefix(p, strings.TrimSuffix(abs, "/")+"/") {
			delete(mfs.entries, p)
		}
	}
	return nil
}
