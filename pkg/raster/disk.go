package raster

import (
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/gridprep/pkg/errors"
)

// Disk is a Store on the local filesystem. The zero value is ready to use.
type Disk struct{}

// NewDisk returns a filesystem store.
func NewDisk() *Disk { return &Disk{} }

// List returns matching file names in dir. Subdirectories and names that
// are only an extension are skipped.
func (d *Disk) List(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeMissingPath, err, "directory %s does not exist", dir)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageLoad, err, "read directory %s", dir)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if matchesExt(e.Name(), ext) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// matchesExt reports whether name has extension ext and a non-empty stem.
func matchesExt(name, ext string) bool {
	got := filepath.Ext(name)
	return len(got) < len(name) && strings.EqualFold(got, ext)
}

// Exists reports whether path exists.
func (d *Disk) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDir creates path with mode 0755.
func (d *Disk) EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeImagePersist, err, "create directory %s", path)
	}
	return nil
}

// Load decodes the image at path. EXIF orientation is ignored so pixels
// stay co-registered with their masks.
func (d *Disk) Load(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageLoad, err, "load %s", path)
	}
	return img, nil
}

// Save encodes img to path.
func (d *Disk) Save(path string, img image.Image) error {
	if err := imaging.Save(img, path); err != nil {
		return errors.Wrap(errors.ErrCodeImagePersist, err, "save %s", path)
	}
	return nil
}

// ReadFile reads path.
func (d *Disk) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeMissingPath, err, "file %s does not exist", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeImageLoad, err, "read %s", path)
	}
	return data, nil
}

// WriteFile writes data to path with mode 0644.
func (d *Disk) WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeImagePersist, err, "write %s", path)
	}
	return nil
}

// Ensure Disk implements Store.
var _ Store = (*Disk)(nil)
