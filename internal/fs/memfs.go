package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// MemFS is an in-memory FS. Directories are registered with AddDir, symlinks
// and plain files with AddSymlink and AddFile. Removals are recorded in order.
type MemFS struct {
	mu        sync.Mutex
	nodes     map[string]DirEntry // full path -> entry
	removed   []string
	removeErr map[string]error
	listErr   map[string]error
}

func NewMemFS() *MemFS {
	return &MemFS{
		nodes:     map[string]DirEntry{},
		removeErr: map[string]error{},
		listErr:   map[string]error{},
	}
}

// AddDir registers path and all of its parents as directories.
func (m *MemFS) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for p := filepath.Clean(path); ; p = filepath.Dir(p) {
		m.nodes[p] = DirEntry{Name: filepath.Base(p), IsDir: true}
		if parent := filepath.Dir(p); parent == p {
			return
		}
	}
}

// AddFile registers a regular file.
func (m *MemFS) AddFile(path string) {
	m.AddDir(filepath.Dir(path))
	m.mu.Lock()
	defer m.mu.Unlock()
	p := filepath.Clean(path)
	m.nodes[p] = DirEntry{Name: filepath.Base(p)}
}

// AddSymlink registers a symlink; toDir tells whether its target is a directory.
func (m *MemFS) AddSymlink(path string, toDir bool) {
	m.AddDir(filepath.Dir(path))
	m.mu.Lock()
	defer m.mu.Unlock()
	p := filepath.Clean(path)
	m.nodes[p] = DirEntry{Name: filepath.Base(p), IsDir: toDir, IsSymlink: true}
}

// FailList makes ReadDir(path) return err.
func (m *MemFS) FailList(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr[filepath.Clean(path)] = err
}

// FailRemove makes RemoveAll(path) return err.
func (m *MemFS) FailRemove(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeErr[filepath.Clean(path)] = err
}

func (m *MemFS) ReadDir(path string) ([]DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := filepath.Clean(path)
	if err, ok := m.listErr[dir]; ok {
		return nil, err
	}
	node, ok := m.nodes[dir]
	if !ok || !node.IsDir || node.IsSymlink {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}

	var out []DirEntry
	for p, ent := range m.nodes {
		if p != dir && filepath.Dir(p) == dir {
			out = append(out, ent)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemFS) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := filepath.Clean(path)
	if err, ok := m.removeErr[p]; ok {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	prefix := p + string(filepath.Separator)
	for k := range m.nodes {
		if k == p || strings.HasPrefix(k, prefix) {
			delete(m.nodes, k)
		}
	}
	m.removed = append(m.removed, p)
	return nil
}

// Removed returns the paths passed to RemoveAll, in call order.
func (m *MemFS) Removed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.removed...)
}

// Exists reports whether path is still present.
func (m *MemFS) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.nodes[filepath.Clean(path)]
	return ok
}
