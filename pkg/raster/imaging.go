package raster

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/gridprep/pkg/errors"
)

// DefaultContrast is the contrast adjustment, in percent, applied by
// Imaging.EnhanceContrast when Contrast is zero.
const DefaultContrast = 20.0

// Imaging is a Transformer on disintegration/imaging.
//
// Quarter turns are exact pixel permutations. Other angles are rendered on
// an enlarged canvas and cropped back around the center, so corners that
// rotate in from outside the source are black.
type Imaging struct {
	// Contrast is the contrast change in percent, in (-100, 100].
	Contrast float64
}

// Rotate turns img counter-clockwise by angle degrees.
func (t Imaging) Rotate(img image.Image, angle int) (image.Image, error) {
	b := img.Bounds()
	switch normalizeAngle(angle) {
	case 0:
		return imaging.Clone(img), nil
	case 90:
		return imaging.Rotate90(img), nil
	case 180:
		return imaging.Rotate180(img), nil
	case 270:
		return imaging.Rotate270(img), nil
	}
	rotated := imaging.Rotate(img, float64(angle), color.Black)
	return imaging.CropCenter(rotated, b.Dx(), b.Dy()), nil
}

// Resize scales img with bilinear interpolation.
func (t Imaging) Resize(img image.Image, w, h int) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "resize target %dx%d must be positive", w, h)
	}
	return imaging.Resize(img, w, h, imaging.Linear), nil
}

// EnhanceContrast adjusts the contrast of img by t.Contrast percent.
func (t Imaging) EnhanceContrast(img image.Image) (image.Image, error) {
	pct := t.Contrast
	if pct == 0 {
		pct = DefaultContrast
	}
	return imaging.AdjustContrast(img, pct), nil
}

func normalizeAngle(angle int) int {
	a := angle % 360
	if a < 0 {
		a += 360
	}
	return a
}

// Ensure Imaging implements Transformer.
var _ Transformer = Imaging{}
