package grid

import (
	"image"

	"github.com/matzehuels/gridprep/pkg/errors"
)

// EncodingFilename is the file name of a grid encoding inside each
// <g>x<g>grids directory.
const EncodingFilename = "grid_encoding.png"

// Encoding returns the size × size checkerboard for grid size g. Pixel
// (i, k) is Marked when the row cell i/cell and column cell k/cell have
// different parity, so cell (0, 0) is always background.
//
// The result depends only on size and g.
func Encoding(size, g int) (*image.Gray, error) {
	if g <= 0 || g > size {
		return nil, errors.New(errors.ErrCodeGridSize, "grid size %d does not fit image side %d", g, size)
	}

	cell := size / g
	enc := image.NewGray(image.Rect(0, 0, size, size))
	for i := 0; i < size; i++ {
		row := enc.Pix[i*enc.Stride : i*enc.Stride+size]
		for k := range row {
			if (i/cell)%2 != (k/cell)%2 {
				row[k] = Marked
			}
		}
	}
	return enc, nil
}
