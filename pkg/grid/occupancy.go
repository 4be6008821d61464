package grid

import (
	"image"
	"image/color"
	"strings"
)

const (
	// Threshold is the largest mask value still treated as background.
	Threshold = 127

	// Marked is the value written for foreground pixels and encoding cells.
	Marked = 255
)

// MarkedGray is Marked as a color.
var MarkedGray = color.Gray{Y: Marked}

// Occupancy is a square grid of marked cells. Row and column indices run
// from 0 to Size()-1, row first.
type Occupancy struct {
	size  int
	cells []bool
}

// NewOccupancy returns an empty size × size grid.
func NewOccupancy(size int) *Occupancy {
	return &Occupancy{size: size, cells: make([]bool, size*size)}
}

// Size returns the number of cells per side.
func (o *Occupancy) Size() int { return o.size }

// Marked reports whether cell (row, col) is marked.
func (o *Occupancy) Marked(row, col int) bool {
	return o.cells[row*o.size+col]
}

// Set marks cell (row, col).
func (o *Occupancy) Set(row, col int) {
	o.cells[row*o.size+col] = true
}

// Count returns the number of marked cells.
func (o *Occupancy) Count() int {
	n := 0
	for _, c := range o.cells {
		if c {
			n++
		}
	}
	return n
}

// Image renders the grid as a Size() × Size() gray image, one pixel per
// cell. This is the small form of the grid ground truth.
func (o *Occupancy) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, o.size, o.size))
	for i, c := range o.cells {
		if c {
			img.Pix[(i/o.size)*img.Stride+i%o.size] = Marked
		}
	}
	return img
}

// String draws the grid with '#' for marked and '.' for empty cells.
func (o *Occupancy) String() string {
	var b strings.Builder
	for r := 0; r < o.size; r++ {
		for c := 0; c < o.size; c++ {
			if o.Marked(r, c) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		if r < o.size-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
