//go:build opencv

package raster

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/matzehuels/gridprep/pkg/errors"
)

// DefaultTransformer returns the OpenCV transformer.
func DefaultTransformer() Transformer {
	return OpenCV{}
}

// OpenCV is a Transformer on gocv. Rotation uses an affine warp about the
// image center and contrast enhancement runs CLAHE on every channel.
type OpenCV struct {
	// ClipLimit is the CLAHE clip limit. Zero means 2.0.
	ClipLimit float64
}

// Rotate warps img counter-clockwise by angle degrees, keeping its size.
func (t OpenCV) Rotate(img image.Image, angle int) (image.Image, error) {
	src, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	center := image.Pt(src.Cols()/2, src.Rows()/2)
	rot := gocv.GetRotationMatrix2D(center, float64(angle), 1.0)
	defer rot.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.WarpAffine(src, &dst, rot, image.Pt(src.Cols(), src.Rows()))
	return fromMat(dst)
}

// Resize scales img with bilinear interpolation.
func (t OpenCV) Resize(img image.Image, w, h int) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "resize target %dx%d must be positive", w, h)
	}
	src, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Resize(src, &dst, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)
	return fromMat(dst)
}

// EnhanceContrast applies CLAHE to each color channel.
func (t OpenCV) EnhanceContrast(img image.Image) (image.Image, error) {
	clip := t.ClipLimit
	if clip == 0 {
		clip = 2.0
	}

	src, err := toMat(img)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	clahe := gocv.NewCLAHEWithParams(clip, image.Pt(8, 8))
	defer clahe.Close()

	channels := gocv.Split(src)
	for i := range channels {
		out := gocv.NewMat()
		clahe.Apply(channels[i], &out)
		channels[i].Close()
		channels[i] = out
	}
	defer func() {
		for _, c := range channels {
			c.Close()
		}
	}()

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Merge(channels, &dst)
	return fromMat(dst)
}

func toMat(img image.Image) (gocv.Mat, error) {
	if g, ok := img.(*image.Gray); ok {
		m, err := gocv.ImageGrayToMatGray(g)
		if err != nil {
			return gocv.Mat{}, errors.Wrap(errors.ErrCodeInternal, err, "convert gray image")
		}
		return m, nil
	}
	m, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, errors.Wrap(errors.ErrCodeInternal, err, "convert image")
	}
	return m, nil
}

func fromMat(m gocv.Mat) (image.Image, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "convert matrix")
	}
	return img, nil
}

// Ensure OpenCV implements Transformer.
var _ Transformer = OpenCV{}
