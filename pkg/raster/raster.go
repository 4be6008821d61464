// Package raster provides the image I/O and transformation capabilities the
// dataset pipeline consumes.
//
// The pipeline never touches the filesystem or an image library directly.
// It talks to two interfaces:
//
//   - [Store]: list, load, and save images and create directories
//   - [Transformer]: rotate, resize, and contrast-enhance images
//
// Implementations:
//
//   - [Disk]: the local filesystem, decoding with disintegration/imaging
//   - [Memory]: an in-memory store for tests
//   - [DryRun]: reads through to another Store and discards writes
//   - [Imaging]: pure-Go transforms on disintegration/imaging
//   - OpenCV: transforms on gocv, built with -tags opencv
//
// [DefaultTransformer] returns OpenCV when built with the opencv tag and
// [Imaging] otherwise.
package raster

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/matzehuels/gridprep/pkg/errors"
)

// Store reads and writes images and side files and manages output
// directories.
// Implementations must be safe for concurrent use.
type Store interface {
	// List returns the base names of the files directly in dir whose
	// extension matches ext (case-insensitive), sorted by name.
	List(dir, ext string) ([]string, error)

	// Exists reports whether path names an existing file or directory.
	Exists(path string) bool

	// EnsureDir creates path and any missing parents.
	EnsureDir(path string) error

	// Load decodes the image at path.
	Load(path string) (image.Image, error)

	// Save encodes img to path. The format follows the extension.
	Save(path string, img image.Image) error

	// ReadFile returns the raw contents of a non-image file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes raw contents to a non-image file.
	WriteFile(path string, data []byte) error
}

// Transformer applies geometric and photometric transforms.
type Transformer interface {
	// Rotate turns img counter-clockwise by angle degrees about its center.
	// The result has the same dimensions as img.
	Rotate(img image.Image, angle int) (image.Image, error)

	// Resize scales img to w × h.
	Resize(img image.Image, w, h int) (image.Image, error)

	// EnhanceContrast returns a contrast-enhanced copy of img.
	EnhanceContrast(img image.Image) (image.Image, error)
}

// LoadGray loads the image at path from s and converts it to gray.
func LoadGray(s Store, path string) (*image.Gray, error) {
	img, err := s.Load(path)
	if err != nil {
		return nil, err
	}
	return ToGray(img), nil
}

// ToGray returns img as *image.Gray with its origin at (0, 0). Gray images
// already at the origin are returned as is.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Bounds().Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Side returns the side length of a square image.
func Side(img image.Image) (int, error) {
	b := img.Bounds()
	if b.Dx() != b.Dy() {
		return 0, errors.New(errors.ErrCodeNonSquareImage, "image is %dx%d, want a square", b.Dx(), b.Dy())
	}
	return b.Dx(), nil
}

// Uniform returns a w × h gray image filled with v.
func Uniform(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Gray{Y: v}), image.Point{}, draw.Src)
	return img
}
