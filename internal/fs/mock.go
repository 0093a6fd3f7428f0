package fs

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockFileInfo implements os.FileInfo for mock files.
type MockFileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
	isDir   bool
}

func (m *MockFileInfo) Name() string       { return m.name }
func (m *MockFileInfo) Size() int64        { return m.size }
func (m *MockFileInfo) Mode() os.FileMode  { return m.mode }
func (m *MockFileInfo) ModTime() time.Time { return m.modTime }
func (m *MockFileInfo) IsDir() bool        { return m.isDir }
func (m *MockFileInfo) Sys() interface{}   { return nil }

// Op names an FS method for fault injection.
type Op string

const (
	OpCreateFile Op = "create"
	OpMkdir      Op = "mkdir"
	OpLstat      Op = "lstat"
	OpRemove     Op = "remove"
)

// MockFS implements FS using an in-memory file system for testing.
// Unlike the host file system it has no implicit parents: Mkdir and
// CreateFile require the parent directory to have been added or created.
type MockFS struct {
	mu     sync.RWMutex
	files  map[string][]byte
	perms  map[string]os.FileMode
	dirs   map[string]bool
	faults map[faultKey]error
	calls  []string
}

type faultKey struct {
	op   Op
	path string
}

// NewMockFS creates a new MockFS containing only the root directories "/" and ".".
func NewMockFS() *MockFS {
	return &MockFS{
		files:  make(map[string][]byte),
		perms:  make(map[string]os.FileMode),
		dirs:   map[string]bool{"/": true, ".": true},
		faults: make(map[faultKey]error),
	}
}

// FailOn makes every subsequent op on path return err.
func (m *MockFS) FailOn(op Op, path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults[faultKey{op: op, path: filepath.Clean(path)}] = err
}

func (m *MockFS) fault(op Op, cleanPath string) error {
	m.calls = append(m.calls, string(op)+" "+cleanPath)
	return m.faults[faultKey{op: op, path: cleanPath}]
}

// ReadFile returns a copy of a file's contents so tests can inspect what was
// written. It is not part of FS and is neither recorded nor fault-injected.
func (m *MockFS) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, &os.PathError{Op: "read", Path: path, Err: os.ErrNotExist}
	}
	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

func (m *MockFS) CreateFile(path string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cleanPath := filepath.Clean(path)
	if err := m.fault(OpCreateFile, cleanPath); err != nil {
		return &os.PathError{Op: "open", Path: path, Err: err}
	}
	if m.existsLocked(cleanPath) {
		return &os.PathError{Op: "open", Path: path, Err: os.ErrExist}
	}
	if !m.dirs[filepath.Dir(cleanPath)] {
		return &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}

	m.files[cleanPath] = make([]byte, len(data))
	copy(m.files[cleanPath], data)
	m.perms[cleanPath] = perm
	return nil
}

func (m *MockFS) Mkdir(path string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cleanPath := filepath.Clean(path)
	if err := m.fault(OpMkdir, cleanPath); err != nil {
		return &os.PathError{Op: "mkdir", Path: path, Err: err}
	}
	if m.existsLocked(cleanPath) {
		return &os.PathError{Op: "mkdir", Path: path, Err: os.ErrExist}
	}
	if !m.dirs[filepath.Dir(cleanPath)] {
		return &os.PathError{Op: "mkdir", Path: path, Err: os.ErrNotExist}
	}
	m.dirs[cleanPath] = true
	return nil
}

func (m *MockFS) Lstat(path string) (os.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cleanPath := filepath.Clean(path)
	if err := m.fault(OpLstat, cleanPath); err != nil {
		return nil, &os.PathError{Op: "lstat", Path: path, Err: err}
	}

	if data, ok := m.files[cleanPath]; ok {
		perm := m.perms[cleanPath]
		if perm == 0 {
			perm = 0644
		}
		return &MockFileInfo{
			name:    filepath.Base(cleanPath),
			size:    int64(len(data)),
			mode:    perm,
			modTime: time.Now(),
		}, nil
	}

	if m.dirs[cleanPath] {
		return &MockFileInfo{
			name:    filepath.Base(cleanPath),
			mode:    0755 | os.ModeDir,
			modTime: time.Now(),
			isDir:   true,
		}, nil
	}

	return nil, &os.PathError{Op: "lstat", Path: path, Err: os.ErrNotExist}
}

// Remove deletes a file or an empty directory.
func (m *MockFS) Remove(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cleanPath := filepath.Clean(path)
	if err := m.fault(OpRemove, cleanPath); err != nil {
		return &os.PathError{Op: "remove", Path: path, Err: err}
	}

	if _, ok := m.files[cleanPath]; ok {
		delete(m.files, cleanPath)
		delete(m.perms, cleanPath)
		return nil
	}
	if m.dirs[cleanPath] {
		if m.hasChildrenLocked(cleanPath) {
			return &os.PathError{Op: "remove", Path: path, Err: os.ErrInvalid}
		}
		delete(m.dirs, cleanPath)
		return nil
	}
	return &os.PathError{Op: "remove", Path: path, Err: os.ErrNotExist}
}

func (m *MockFS) existsLocked(cleanPath string) bool {
	_, isFile := m.files[cleanPath]
	return isFile || m.dirs[cleanPath]
}

func (m *MockFS) hasChildrenLocked(dir string) bool {
	prefix := dir + string(filepath.Separator)
	for p := range m.files {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	for p := range m.dirs {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// AddFile adds a file with content to the mock FS for testing.
func (m *MockFS) AddFile(path string, content []byte, perm os.FileMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cleanPath := filepath.Clean(path)
	m.files[cleanPath] = make([]byte, len(content))
	copy(m.files[cleanPath], content)
	m.perms[cleanPath] = perm
}

// AddDir adds a directory to the mock FS for testing.
func (m *MockFS) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[filepath.Clean(path)] = true
}

// FileExists checks if a file exists in the mock FS.
func (m *MockFS) FileExists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[filepath.Clean(path)]
	return ok
}

// DirExists checks if a directory exists in the mock FS.
func (m *MockFS) DirExists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[filepath.Clean(path)]
}

// Paths returns every file and directory in the mock FS, sorted.
func (m *MockFS) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.files)+len(m.dirs))
	for p := range m.files {
		paths = append(paths, p)
	}
	for p := range m.dirs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Calls returns the recorded operations as "op path" strings, in call order.
func (m *MockFS) Calls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.calls...)
}
