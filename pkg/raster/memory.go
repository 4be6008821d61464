package raster

import (
	"image"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/gridprep/pkg/errors"
)

// Memory is an in-memory Store. Saving into a directory that was not
// created with EnsureDir fails, like it would on disk.
type Memory struct {
	mu     sync.RWMutex
	dirs   map[string]bool
	images map[string]image.Image
	files  map[string][]byte

	// SaveHook, if set, runs before every Save. A non-nil return fails
	// the save with IMAGE_PERSIST.
	SaveHook func(path string) error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		dirs:   map[string]bool{".": true, "/": true},
		images: make(map[string]image.Image),
		files:  make(map[string][]byte),
	}
}

// Put stores img at path and creates its parent directories.
func (m *Memory) Put(path string, img image.Image) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.mkdirLocked(filepath.Dir(path))
	m.images[path] = img
}

// Get returns the image stored at path.
func (m *Memory) Get(path string) (image.Image, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	img, ok := m.images[filepath.Clean(path)]
	return img, ok
}

// Files returns the sorted paths of all stored images under dir,
// at any depth.
func (m *Memory) Files(dir string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	prefix := filepath.Clean(dir) + string(filepath.Separator)
	var out []string
	for p := range m.images {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}

// List returns matching image names stored directly in dir.
func (m *Memory) List(dir, ext string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	dir = filepath.Clean(dir)
	if !m.dirs[dir] {
		return nil, errors.New(errors.ErrCodeMissingPath, "directory %s does not exist", dir)
	}
	var names []string
	for p := range m.images {
		if filepath.Dir(p) == dir && matchesExt(filepath.Base(p), ext) {
			names = append(names, filepath.Base(p))
		}
	}
	slices.Sort(names)
	return names, nil
}

// Exists reports whether path is a stored image or directory.
func (m *Memory) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path = filepath.Clean(path)
	_, isImage := m.images[path]
	_, isFile := m.files[path]
	return isImage || isFile || m.dirs[path]
}

// EnsureDir records path and its parents as directories.
func (m *Memory) EnsureDir(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirLocked(filepath.Clean(path))
	return nil
}

// Load returns the image stored at path.
func (m *Memory) Load(path string) (image.Image, error) {
	img, ok := m.Get(path)
	if !ok {
		return nil, errors.New(errors.ErrCodeImageLoad, "load %s: no such image", path)
	}
	return img, nil
}

// Save stores img at path. The parent directory must exist.
func (m *Memory) Save(path string, img image.Image) error {
	if m.SaveHook != nil {
		if err := m.SaveHook(path); err != nil {
			return errors.Wrap(errors.ErrCodeImagePersist, err, "save %s", path)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	if !m.dirs[filepath.Dir(path)] {
		return errors.New(errors.ErrCodeImagePersist, "save %s: directory does not exist", path)
	}
	m.images[path] = img
	return nil
}

// ReadFile returns the contents written to path.
func (m *Memory) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[filepath.Clean(path)]
	if !ok {
		return nil, errors.New(errors.ErrCodeMissingPath, "file %s does not exist", path)
	}
	return slices.Clone(data), nil
}

// WriteFile stores a copy of data at path. The parent directory must exist.
func (m *Memory) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	if !m.dirs[filepath.Dir(path)] {
		return errors.New(errors.ErrCodeImagePersist, "write %s: directory does not exist", path)
	}
	m.files[path] = slices.Clone(data)
	return nil
}

func (m *Memory) mkdirLocked(dir string) {
	for {
		m.dirs[dir] = true
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// Ensure Memory implements Store.
var _ Store = (*Memory)(nil)
