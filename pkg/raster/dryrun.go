package raster

import (
	"image"
	"sync/atomic"
)

// DryRun reads through to a base Store and discards every write. It counts
// what would have been written.
type DryRun struct {
	Base Store

	dirs   atomic.Int64
	images atomic.Int64
	files  atomic.Int64
}

// NewDryRun wraps base.
func NewDryRun(base Store) *DryRun {
	return &DryRun{Base: base}
}

func (d *DryRun) List(dir, ext string) ([]string, error) { return d.Base.List(dir, ext) }
func (d *DryRun) Exists(path string) bool                { return d.Base.Exists(path) }
func (d *DryRun) Load(path string) (image.Image, error)  { return d.Base.Load(path) }
func (d *DryRun) ReadFile(path string) ([]byte, error)   { return d.Base.ReadFile(path) }

// EnsureDir records the directory without creating it.
func (d *DryRun) EnsureDir(string) error {
	d.dirs.Add(1)
	return nil
}

// Save counts the image without encoding it.
func (d *DryRun) Save(string, image.Image) error {
	d.images.Add(1)
	return nil
}

// WriteFile counts the file without writing it.
func (d *DryRun) WriteFile(string, []byte) error {
	d.files.Add(1)
	return nil
}

// Counts returns the number of directories, images, and files that would
// have been written.
func (d *DryRun) Counts() (dirs, images, files int) {
	return int(d.dirs.Load()), int(d.images.Load()), int(d.files.Load())
}

// Ensure DryRun implements Store.
var _ Store = (*DryRun)(nil)
