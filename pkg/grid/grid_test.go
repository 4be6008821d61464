package grid

import (
	"image"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/gridprep/pkg/errors"
)

func newMask(side int, points ...[3]int) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, side, side))
	for _, p := range points {
		m.Pix[p[0]*m.Stride+p[1]] = uint8(p[2])
	}
	return m
}

func randomMask(side int, seed uint64) *image.Gray {
	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	m := image.NewGray(image.Rect(0, 0, side, side))
	for i := range m.Pix {
		if rng.IntN(10) == 0 {
			m.Pix[i] = uint8(rng.IntN(256))
		}
	}
	return m
}

func TestClassifySinglePixel(t *testing.T) {
	// Pixel (2, 4) of an 8x8 mask lies in cell (1, 2) of a 4x4 grid.
	mask := newMask(8, [3]int{2, 4, 200})

	occ, err := Classify(mask, 4)
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	if occ.Count() != 1 {
		t.Errorf("Count() = %d, want 1\n%s", occ.Count(), occ)
	}
	if !occ.Marked(1, 2) {
		t.Errorf("cell (1,2) not marked\n%s", occ)
	}
}

func TestClassifyThreshold(t *testing.T) {
	tests := []struct {
		name  string
		value int
		want  int
	}{
		{"zero", 0, 0},
		{"at threshold", 127, 0},
		{"above threshold", 128, 1},
		{"full", 255, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occ, err := Classify(newMask(4, [3]int{3, 3, tt.value}), 2)
			if err != nil {
				t.Fatalf("Classify() error: %v", err)
			}
			if got := occ.Count(); got != tt.want {
				t.Errorf("Count() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClassifyCellBoundaries(t *testing.T) {
	// One pixel in the last row and column of each cell edge.
	mask := newMask(8, [3]int{1, 1, 255}, [3]int{2, 0, 255}, [3]int{7, 7, 255})

	occ, err := Classify(mask, 4)
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}

	want := "#...\n" +
		"#...\n" +
		"....\n" +
		"...#"
	if diff := cmp.Diff(want, occ.String()); diff != "" {
		t.Errorf("Classify() mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifySubImage(t *testing.T) {
	// A sub-image has a non-zero origin; indices are relative to it.
	full := image.NewGray(image.Rect(0, 0, 12, 12))
	full.Pix[5*full.Stride+9] = 255 // (row 5, col 9) in full coords
	sub := full.SubImage(image.Rect(4, 4, 12, 12)).(*image.Gray)

	occ, err := Classify(sub, 2)
	if err != nil {
		t.Fatalf("Classify() error: %v", err)
	}
	// Relative pixel (1, 5) is in cell (0, 1).
	if occ.Count() != 1 || !occ.Marked(0, 1) {
		t.Errorf("Classify(sub) =\n%s\nwant only (0,1)", occ)
	}
}

func TestClassifyErrors(t *testing.T) {
	tests := []struct {
		name string
		mask *image.Gray
		g    int
		code errors.Code
	}{
		{"non-square", image.NewGray(image.Rect(0, 0, 8, 4)), 2, errors.ErrCodeNonSquareImage},
		{"empty", image.NewGray(image.Rect(0, 0, 0, 0)), 2, errors.ErrCodeNonSquareImage},
		{"not divisible", newMask(10), 4, errors.ErrCodeGridSize},
		{"grid larger than side", newMask(4), 8, errors.ErrCodeGridSize},
		{"zero grid", newMask(4), 0, errors.ErrCodeGridSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(tt.mask, tt.g)
			if !errors.Is(err, tt.code) {
				t.Errorf("Classify() error = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestExpand(t *testing.T) {
	occ := NewOccupancy(2)
	occ.Set(0, 1)

	out, err := Expand(occ, 4, 2)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}

	want := []uint8{
		0, 0, 255, 255,
		0, 0, 255, 255,
		0, 0, 0, 0,
		0, 0, 0, 0,
	}
	if diff := cmp.Diff(want, out.Pix); diff != "" {
		t.Errorf("Expand() mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandSizeMismatch(t *testing.T) {
	_, err := Expand(NewOccupancy(2), 8, 4)
	if !errors.Is(err, errors.ErrCodeGridSize) {
		t.Errorf("Expand() error = %v, want GRID_SIZE", err)
	}
}

func TestGroundTruthIdempotent(t *testing.T) {
	for _, g := range []int{1, 2, 4, 8, 16, 32} {
		for seed := uint64(1); seed <= 5; seed++ {
			mask := randomMask(32, seed)

			first, err := GroundTruth(mask, g)
			if err != nil {
				t.Fatalf("GroundTruth(g=%d) error: %v", g, err)
			}
			second, err := GroundTruth(first, g)
			if err != nil {
				t.Fatalf("GroundTruth(g=%d) second pass error: %v", g, err)
			}
			if diff := cmp.Diff(first.Pix, second.Pix); diff != "" {
				t.Errorf("g=%d seed=%d: second pass changed output", g, seed)
			}
		}
	}
}

func TestGroundTruthCoversMask(t *testing.T) {
	mask := randomMask(16, 7)
	gt, err := GroundTruth(mask, 4)
	if err != nil {
		t.Fatalf("GroundTruth() error: %v", err)
	}
	for i, v := range mask.Pix {
		if v > Threshold && gt.Pix[i] != Marked {
			t.Fatalf("pixel %d is foreground in mask but not in ground truth", i)
		}
	}
}

func TestOccupancyImage(t *testing.T) {
	occ := NewOccupancy(3)
	occ.Set(2, 0)
	occ.Set(1, 1)

	img := occ.Image()
	if got := img.Bounds(); got != image.Rect(0, 0, 3, 3) {
		t.Fatalf("Image().Bounds() = %v, want 3x3", got)
	}
	want := []uint8{
		0, 0, 0,
		0, 255, 0,
		255, 0, 0,
	}
	if diff := cmp.Diff(want, img.Pix); diff != "" {
		t.Errorf("Image() mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodingParity(t *testing.T) {
	enc, err := Encoding(16, 4)
	if err != nil {
		t.Fatalf("Encoding() error: %v", err)
	}

	at := func(i, k int) uint8 { return enc.Pix[i*enc.Stride+k] }

	// Cell (0,0) covers pixels 0-3 x 0-3 and is off.
	for i := 0; i < 4; i++ {
		for k := 0; k < 4; k++ {
			if at(i, k) != 0 {
				t.Fatalf("pixel (%d,%d) = %d, want 0", i, k, at(i, k))
			}
		}
	}
	// Cell (0,1) covers pixels 0-3 x 4-7 and is on.
	for i := 0; i < 4; i++ {
		for k := 4; k < 8; k++ {
			if at(i, k) != Marked {
				t.Fatalf("pixel (%d,%d) = %d, want %d", i, k, at(i, k), Marked)
			}
		}
	}
	// Diagonal cell (1,1) is off again.
	if at(5, 5) != 0 {
		t.Errorf("pixel (5,5) = %d, want 0", at(5, 5))
	}
}

func TestEncodingDeterministic(t *testing.T) {
	a, err := Encoding(64, 8)
	if err != nil {
		t.Fatalf("Encoding() error: %v", err)
	}
	b, _ := Encoding(64, 8)
	if diff := cmp.Diff(a.Pix, b.Pix); diff != "" {
		t.Error("Encoding() is not deterministic")
	}
}

func TestEncodingErrors(t *testing.T) {
	for _, g := range []int{0, -1, 17} {
		if _, err := Encoding(16, g); !errors.Is(err, errors.ErrCodeGridSize) {
			t.Errorf("Encoding(16, %d) error = %v, want GRID_SIZE", g, err)
		}
	}
}
