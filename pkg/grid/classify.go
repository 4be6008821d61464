package grid

import (
	"image"

	"github.com/matzehuels/gridprep/pkg/errors"
)

// Classify marks every cell of a g × g grid that contains at least one mask
// pixel above Threshold. Pixel (i, k) belongs to cell (i/cell, k/cell) with
// cell = side/g.
//
// The mask must be square and its side divisible by g.
func Classify(mask *image.Gray, g int) (*Occupancy, error) {
	side, err := squareSide(mask)
	if err != nil {
		return nil, err
	}
	if err := errors.ValidateGridFit(side, g); err != nil {
		return nil, err
	}

	cell := side / g
	occ := NewOccupancy(g)
	b := mask.Bounds()
	for i := 0; i < side; i++ {
		off := mask.PixOffset(b.Min.X, b.Min.Y+i)
		row := mask.Pix[off : off+side]
		for k, v := range row {
			if v > Threshold {
				occ.Set(i/cell, k/cell)
			}
		}
	}
	return occ, nil
}

// Expand paints every pixel of a side × side mask whose cell is marked in
// occ. It uses the same cell geometry as Classify.
func Expand(occ *Occupancy, side, g int) (*image.Gray, error) {
	if err := errors.ValidateGridFit(side, g); err != nil {
		return nil, err
	}
	if occ.Size() != g {
		return nil, errors.New(errors.ErrCodeGridSize, "occupancy has %d cells per side, want %d", occ.Size(), g)
	}

	cell := side / g
	out := image.NewGray(image.Rect(0, 0, side, side))
	for i := 0; i < side; i++ {
		row := out.Pix[i*out.Stride : i*out.Stride+side]
		for k := range row {
			if occ.Marked(i/cell, k/cell) {
				row[k] = Marked
			}
		}
	}
	return out, nil
}

// GroundTruth returns the full-resolution grid ground truth of mask for grid
// size g: Expand(Classify(mask, g), side, g).
func GroundTruth(mask *image.Gray, g int) (*image.Gray, error) {
	occ, err := Classify(mask, g)
	if err != nil {
		return nil, err
	}
	return Expand(occ, mask.Bounds().Dx(), g)
}

func squareSide(img image.Image) (int, error) {
	b := img.Bounds()
	if b.Dx() != b.Dy() {
		return 0, errors.New(errors.ErrCodeNonSquareImage, "mask is %dx%d, want a square", b.Dx(), b.Dy())
	}
	if b.Dx() == 0 {
		return 0, errors.New(errors.ErrCodeNonSquareImage, "mask is empty")
	}
	return b.Dx(), nil
}
