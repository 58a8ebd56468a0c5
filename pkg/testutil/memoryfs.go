package testutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"
)

const maxLinkDepth = 40

// MemoryFS implements types.FS with in-memory storage. Symlinks are followed
// through intermediate path components the way the OS does, so a link whose
// destination disappears is observable as broken.
type MemoryFS struct {
	mu    sync.RWMutex
	nodes map[string]*memNode

	// Error injection, keyed by op and cleaned path
	failures map[string]error
}

type memNode struct {
	mode    fs.FileMode
	content []byte
	dest    string
	modTime time.Time
}

func (n *memNode) isDir() bool  { return n.mode.IsDir() }
func (n *memNode) isLink() bool { return n.mode&fs.ModeSymlink != 0 }

// NewMemoryFS creates a new in-memory filesystem containing only "/".
func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		nodes: map[string]*memNode{
			"/": {mode: fs.ModeDir | 0755, modTime: time.Now()},
		},
		failures: make(map[string]error),
	}
}

// FailOn makes op on path return err. Op is one of "stat", "lstat",
// "readfile", "writefile", "mkdir", "symlink", "readlink", "remove",
// "readdir", "rename", or "*" for every operation.
func (m *MemoryFS) FailOn(op, path string, err error) *MemoryFS {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op+"\x00"+clean(path)] = err
	return m
}

func (m *MemoryFS) injected(op, path string) error {
	p := clean(path)
	if err, ok := m.failures[op+"\x00"+p]; ok {
		return &fs.PathError{Op: op, Path: path, Err: err}
	}
	if err, ok := m.failures["*\x00"+p]; ok {
		return &fs.PathError{Op: op, Path: path, Err: err}
	}
	return nil
}

func clean(p string) string {
	if !filepath.IsAbs(p) {
		p = "/" + p
	}
	return filepath.Clean(p)
}

// resolve walks p component by component, following symlinks on every
// intermediate component and on the last one when followLast is set.
func (m *MemoryFS) resolve(p string, followLast bool, depth int) (string, *memNode, error) {
	if depth > maxLinkDepth {
		return "", nil, syscall.ELOOP
	}
	p = clean(p)
	if p == "/" {
		return p, m.nodes["/"], nil
	}

	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	cur := "/"
	for i, part := range parts {
		next := filepath.Join(cur, part)
		node, ok := m.nodes[next]
		if !ok {
			return next, nil, fs.ErrNotExist
		}
		last := i == len(parts)-1
		if node.isLink() && (!last || followLast) {
			dest := node.dest
			if !filepath.IsAbs(dest) {
				dest = filepath.Join(cur, dest)
			}
			rest := append([]string{dest}, parts[i+1:]...)
			return m.resolve(filepath.Join(rest...), followLast, depth+1)
		}
		if !last && !node.isDir() {
			return next, nil, syscall.ENOTDIR
		}
		cur = next
	}
	return cur, m.nodes[cur], nil
}

// createPath resolves the parent of name and returns the real path where
// name would live.
func (m *MemoryFS) createPath(name string) (string, error) {
	parent, node, err := m.resolve(filepath.Dir(clean(name)), true, 0)
	if err != nil {
		return "", err
	}
	if !node.isDir() {
		return "", syscall.ENOTDIR
	}
	return filepath.Join(parent, filepath.Base(clean(name))), nil
}

func (m *MemoryFS) children(dir string) []string {
	var out []string
	for p := range m.nodes {
		if p != "/" && filepath.Dir(p) == dir {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Stat returns file info, following symlinks
func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injected("stat", name); err != nil {
		return nil, err
	}
	_, node, err := m.resolve(name, true, 0)
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	return newFileInfo(filepath.Base(clean(name)), node), nil
}

// Lstat returns file info without following a final symlink
func (m *MemoryFS) Lstat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injected("lstat", name); err != nil {
		return nil, err
	}
	_, node, err := m.resolve(name, false, 0)
	if err != nil {
		return nil, &fs.PathError{Op: "lstat", Path: name, Err: err}
	}
	return newFileInfo(filepath.Base(clean(name)), node), nil
}

// ReadFile reads the entire file content
func (m *MemoryFS) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injected("readfile", name); err != nil {
		return nil, err
	}
	_, node, err := m.resolve(name, true, 0)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	if node.isDir() {
		return nil, &fs.PathError{Op: "read", Path: name, Err: syscall.EISDIR}
	}
	content := make([]byte, len(node.content))
	copy(content, node.content)
	return content, nil
}

// WriteFile writes data to a file, creating it if necessary. Parent
// directories must exist.
func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected("writefile", name); err != nil {
		return err
	}
	target, node, err := m.resolve(name, true, 0)
	if err == nil && node.isDir() {
		return &fs.PathError{Op: "open", Path: name, Err: syscall.EISDIR}
	}
	if err != nil {
		if target, err = m.createPath(name); err != nil {
			return &fs.PathError{Op: "open", Path: name, Err: err}
		}
	}
	content := make([]byte, len(data))
	copy(content, data)
	m.nodes[target] = &memNode{mode: perm.Perm(), content: content, modTime: time.Now()}
	return nil
}

// MkdirAll creates a directory and all necessary parents
func (m *MemoryFS) MkdirAll(path string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected("mkdir", path); err != nil {
		return err
	}
	return m.mkdirAll(clean(path), perm)
}

func (m *MemoryFS) mkdirAll(p string, perm fs.FileMode) error {
	_, node, err := m.resolve(p, true, 0)
	if err == nil {
		if !node.isDir() {
			return &fs.PathError{Op: "mkdir", Path: p, Err: syscall.ENOTDIR}
		}
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return &fs.PathError{Op: "mkdir", Path: p, Err: err}
	}
	if _, lnode, lerr := m.resolve(p, false, 0); lerr == nil && lnode.isLink() {
		// dangling link in the way
		return &fs.PathError{Op: "mkdir", Path: p, Err: fs.ErrExist}
	}
	if err := m.mkdirAll(filepath.Dir(p), perm); err != nil {
		return err
	}
	target, err := m.createPath(p)
	if err != nil {
		return &fs.PathError{Op: "mkdir", Path: p, Err: err}
	}
	m.nodes[target] = &memNode{mode: fs.ModeDir | perm.Perm(), modTime: time.Now()}
	return nil
}

// Symlink creates newname as a symbolic link to oldname
func (m *MemoryFS) Symlink(oldname, newname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected("symlink", newname); err != nil {
		return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: errors.Unwrap(err)}
	}
	if _, _, err := m.resolve(newname, false, 0); err == nil {
		return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: fs.ErrExist}
	}
	target, err := m.createPath(newname)
	if err != nil {
		return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: err}
	}
	m.nodes[target] = &memNode{mode: fs.ModeSymlink | 0777, dest: oldname, modTime: time.Now()}
	return nil
}

// Readlink returns the destination of a symbolic link
func (m *MemoryFS) Readlink(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injected("readlink", name); err != nil {
		return "", err
	}
	_, node, err := m.resolve(name, false, 0)
	if err != nil {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: err}
	}
	if !node.isLink() {
		return "", &fs.PathError{Op: "readlink", Path: name, Err: syscall.EINVAL}
	}
	return node.dest, nil
}

// Remove removes a file, symlink or empty directory
func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected("remove", name); err != nil {
		return err
	}
	p, node, err := m.resolve(name, false, 0)
	if err != nil {
		return &fs.PathError{Op: "remove", Path: name, Err: err}
	}
	if node.isDir() && len(m.children(p)) > 0 {
		return &fs.PathError{Op: "remove", Path: name, Err: syscall.ENOTEMPTY}
	}
	delete(m.nodes, p)
	return nil
}

// RemoveAll removes a path and any children it contains
func (m *MemoryFS) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected("remove", path); err != nil {
		return err
	}
	p, _, err := m.resolve(path, false, 0)
	if err != nil {
		return nil
	}
	for k := range m.nodes {
		if k == p || strings.HasPrefix(k, p+"/") {
			delete(m.nodes, k)
		}
	}
	return nil
}

// Rename moves oldpath, and everything below it, to newpath
func (m *MemoryFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.injected("rename", oldpath); err != nil {
		return err
	}
	src, _, err := m.resolve(oldpath, false, 0)
	if err != nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: err}
	}
	dst, err := m.createPath(newpath)
	if err != nil {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: err}
	}
	moved := make(map[string]*memNode)
	for k, n := range m.nodes {
		if k == src || strings.HasPrefix(k, src+"/") {
			moved[dst+strings.TrimPrefix(k, src)] = n
			delete(m.nodes, k)
		}
	}
	for k, n := range moved {
		m.nodes[k] = n
	}
	return nil
}

// ReadDir reads a directory and returns its entries sorted by name
func (m *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.injected("readdir", name); err != nil {
		return nil, err
	}
	p, node, err := m.resolve(name, true, 0)
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}
	if !node.isDir() {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: syscall.ENOTDIR}
	}
	var entries []fs.DirEntry
	for _, child := range m.children(p) {
		entries = append(entries, fs.FileInfoToDirEntry(newFileInfo(filepath.Base(child), m.nodes[child])))
	}
	return entries, nil
}

// fileInfo implements fs.FileInfo
type fileInfo struct {
	name string
	node *memNode
}

func newFileInfo(name string, node *memNode) *fileInfo {
	return &fileInfo{name: name, node: node}
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return int64(len(fi.node.content)) }
func (fi *fileInfo) Mode() fs.FileMode  { return fi.node.mode }
func (fi *fileInfo) ModTime() time.Time { return fi.node.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.node.isDir() }
func (fi *fileInfo) Sys() interface{}   { return nil }
