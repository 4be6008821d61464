package raster

import (
	stderrors "errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/gridprep/pkg/errors"
)

// marker returns a side × side gray image with one bright pixel at (x, y).
func marker(side, x, y int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, side, side))
	img.SetGray(x, y, color.Gray{Y: 255})
	return img
}

func brightPixel(t *testing.T, img image.Image) image.Point {
	t.Helper()
	g := ToGray(img)
	var found []image.Point
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if g.GrayAt(x, y).Y > 127 {
				found = append(found, image.Pt(x, y))
			}
		}
	}
	if len(found) != 1 {
		t.Fatalf("found %d bright pixels, want 1", len(found))
	}
	return found[0]
}

func TestImagingRotateQuarterTurns(t *testing.T) {
	// Pixel at x=1, y=0 in a 4x4 image, rotated counter-clockwise.
	tests := []struct {
		angle int
		want  image.Point
	}{
		{0, image.Pt(1, 0)},
		{90, image.Pt(0, 2)},
		{180, image.Pt(2, 3)},
		{270, image.Pt(3, 1)},
		{360, image.Pt(1, 0)},
		{-90, image.Pt(3, 1)},
	}

	for _, tt := range tests {
		rotated, err := Imaging{}.Rotate(marker(4, 1, 0), tt.angle)
		if err != nil {
			t.Fatalf("Rotate(%d) error: %v", tt.angle, err)
		}
		if got := rotated.Bounds().Size(); got != image.Pt(4, 4) {
			t.Errorf("Rotate(%d) size = %v, want 4x4", tt.angle, got)
		}
		if got := brightPixel(t, rotated); got != tt.want {
			t.Errorf("Rotate(%d) bright pixel = %v, want %v", tt.angle, got, tt.want)
		}
	}
}

func TestImagingRotateArbitraryKeepsSize(t *testing.T) {
	rotated, err := Imaging{}.Rotate(Uniform(10, 10, 200), 45)
	if err != nil {
		t.Fatalf("Rotate(45) error: %v", err)
	}
	if got := rotated.Bounds().Size(); got != image.Pt(10, 10) {
		t.Errorf("Rotate(45) size = %v, want 10x10", got)
	}
}

func TestImagingResize(t *testing.T) {
	out, err := Imaging{}.Resize(Uniform(8, 4, 100), 4, 2)
	if err != nil {
		t.Fatalf("Resize() error: %v", err)
	}
	if got := out.Bounds().Size(); got != image.Pt(4, 2) {
		t.Errorf("Resize() size = %v, want 4x2", got)
	}

	if _, err := (Imaging{}).Resize(Uniform(8, 8, 0), 0, 4); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Resize(0, 4) error = %v, want INVALID_INPUT", err)
	}
}

func TestImagingEnhanceContrast(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.Pix[0], img.Pix[1] = 100, 160

	out, err := Imaging{Contrast: 50}.EnhanceContrast(img)
	if err != nil {
		t.Fatalf("EnhanceContrast() error: %v", err)
	}
	g := ToGray(out)
	if spread := int(g.Pix[1]) - int(g.Pix[0]); spread <= 60 {
		t.Errorf("contrast spread = %d, want > 60", spread)
	}
}

func TestToGray(t *testing.T) {
	rgba := image.NewNRGBA(image.Rect(2, 2, 4, 4))
	rgba.Set(3, 3, color.NRGBA{R: 200, G: 200, B: 200, A: 255})

	g := ToGray(rgba)
	if g.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("ToGray() bounds = %v, want origin-based 2x2", g.Bounds())
	}
	if got := g.GrayAt(1, 1).Y; got != 200 {
		t.Errorf("ToGray() pixel = %d, want 200", got)
	}

	orig := image.NewGray(image.Rect(0, 0, 2, 2))
	if ToGray(orig) != orig {
		t.Error("ToGray() should return origin-based gray images unchanged")
	}
}

func TestSide(t *testing.T) {
	if side, err := Side(Uniform(6, 6, 0)); err != nil || side != 6 {
		t.Errorf("Side(6x6) = %d, %v, want 6, nil", side, err)
	}
	if _, err := Side(Uniform(6, 5, 0)); !errors.Is(err, errors.ErrCodeNonSquareImage) {
		t.Errorf("Side(6x5) error = %v, want NON_SQUARE_IMAGE", err)
	}
}

func TestMemoryStore(t *testing.T) {
	m := NewMemory()
	m.Put("/data/images/b.png", Uniform(2, 2, 1))
	m.Put("/data/images/a.PNG", Uniform(2, 2, 2))
	m.Put("/data/images/c.jpg", Uniform(2, 2, 3))
	m.Put("/data/images/sub/d.png", Uniform(2, 2, 4))
	m.Put("/data/images/.png", Uniform(2, 2, 5))

	names, err := m.List("/data/images", ".png")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if diff := cmp.Diff([]string{"a.PNG", "b.png"}, names); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	if _, err := m.List("/nope", ".png"); !errors.Is(err, errors.ErrCodeMissingPath) {
		t.Errorf("List(missing) error = %v, want MISSING_PATH", err)
	}

	if !m.Exists("/data") || !m.Exists("/data/images/b.png") || m.Exists("/data/x.png") {
		t.Error("Exists() returned wrong results")
	}

	if err := m.Save("/out/imgs/0.png", Uniform(1, 1, 0)); !errors.Is(err, errors.ErrCodeImagePersist) {
		t.Errorf("Save() without directory error = %v, want IMAGE_PERSIST", err)
	}
	if err := m.EnsureDir("/out/imgs"); err != nil {
		t.Fatalf("EnsureDir() error: %v", err)
	}
	if err := m.Save("/out/imgs/0.png", Uniform(1, 1, 0)); err != nil {
		t.Errorf("Save() error: %v", err)
	}
	if got := m.Files("/out"); len(got) != 1 {
		t.Errorf("Files(/out) = %v, want 1 file", got)
	}

	if _, err := m.Load("/missing.png"); !errors.Is(err, errors.ErrCodeImageLoad) {
		t.Errorf("Load(missing) error = %v, want IMAGE_LOAD", err)
	}
}

func TestMemorySaveHook(t *testing.T) {
	m := NewMemory()
	_ = m.EnsureDir("/out")
	m.SaveHook = func(path string) error {
		if filepath.Base(path) == "bad.png" {
			return stderrors.New("injected")
		}
		return nil
	}

	if err := m.Save("/out/good.png", Uniform(1, 1, 0)); err != nil {
		t.Errorf("Save(good) error: %v", err)
	}
	if err := m.Save("/out/bad.png", Uniform(1, 1, 0)); !errors.Is(err, errors.ErrCodeImagePersist) {
		t.Errorf("Save(bad) error = %v, want IMAGE_PERSIST", err)
	}
}

func TestDiskRoundTrip(t *testing.T) {
	d := NewDisk()
	dir := filepath.Join(t.TempDir(), "masks")

	if err := d.EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() error: %v", err)
	}
	src := marker(8, 5, 2)
	path := filepath.Join(dir, "m.png")
	if err := d.Save(path, src); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.png"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".png"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	names, err := d.List(dir, ".png")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if diff := cmp.Diff([]string{"m.png"}, names); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}

	got, err := LoadGray(d, path)
	if err != nil {
		t.Fatalf("LoadGray() error: %v", err)
	}
	if diff := cmp.Diff(src.Pix, got.Pix); diff != "" {
		t.Errorf("round trip changed pixels (-want +got):\n%s", diff)
	}
}

func TestDiskErrors(t *testing.T) {
	d := NewDisk()
	dir := t.TempDir()

	if _, err := d.List(filepath.Join(dir, "missing"), ".png"); !errors.Is(err, errors.ErrCodeMissingPath) {
		t.Errorf("List(missing) error = %v, want MISSING_PATH", err)
	}
	if _, err := d.Load(filepath.Join(dir, "missing.png")); !errors.Is(err, errors.ErrCodeImageLoad) {
		t.Errorf("Load(missing) error = %v, want IMAGE_LOAD", err)
	}
	if err := d.Save(filepath.Join(dir, "no", "such", "dir.png"), Uniform(1, 1, 0)); !errors.Is(err, errors.ErrCodeImagePersist) {
		t.Errorf("Save(no dir) error = %v, want IMAGE_PERSIST", err)
	}
	if d.Exists(filepath.Join(dir, "missing")) {
		t.Error("Exists(missing) = true")
	}
}

func TestFileRoundTrip(t *testing.T) {
	stores := map[string]Store{
		"memory": NewMemory(),
		"disk":   NewDisk(),
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			if err := s.EnsureDir(dir); err != nil {
				t.Fatalf("EnsureDir() error: %v", err)
			}
			path := filepath.Join(dir, "splits.toml")
			if err := s.WriteFile(path, []byte("seed = 1\n")); err != nil {
				t.Fatalf("WriteFile() error: %v", err)
			}
			got, err := s.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() error: %v", err)
			}
			if string(got) != "seed = 1\n" {
				t.Errorf("ReadFile() = %q, want %q", got, "seed = 1\n")
			}
			if !s.Exists(path) {
				t.Error("Exists() = false after WriteFile")
			}
			if _, err := s.ReadFile(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeMissingPath) {
				t.Errorf("ReadFile(missing) error = %v, want MISSING_PATH", err)
			}
		})
	}
}

func TestDryRun(t *testing.T) {
	base := NewMemory()
	base.Put("in/a.png", Uniform(2, 2, 0))
	d := NewDryRun(base)

	names, err := d.List("in", ".png")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if diff := cmp.Diff([]string{"a.png"}, names); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
	if _, err := d.Load("in/a.png"); err != nil {
		t.Errorf("Load() error: %v", err)
	}

	if err := d.EnsureDir("out/x"); err != nil {
		t.Fatal(err)
	}
	if err := d.Save("out/x/1.png", Uniform(2, 2, 0)); err != nil {
		t.Fatal(err)
	}
	if err := d.WriteFile("out/m.toml", []byte("x")); err != nil {
		t.Fatal(err)
	}

	dirs, images, files := d.Counts()
	if dirs != 1 || images != 1 || files != 1 {
		t.Errorf("Counts() = %d, %d, %d, want 1, 1, 1", dirs, images, files)
	}
	if base.Exists("out") {
		t.Error("dry run wrote to the base store")
	}
}
