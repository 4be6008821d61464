package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/matzehuels/gridprep/pkg/grid"
)

// Layout computes output paths under a dataset root.
type Layout struct {
	Root string
}

// ImagesDir returns <root>/<partition>/imgs.
func (l Layout) ImagesDir(partition string) string {
	return filepath.Join(l.Root, partition, "imgs")
}

// MasksDir returns <root>/<partition>/masks.
func (l Layout) MasksDir(partition string) string {
	return filepath.Join(l.Root, partition, "masks")
}

// GridDir returns <root>/<partition>/<g>x<g>grids.
func (l Layout) GridDir(partition string, g int) string {
	return filepath.Join(l.Root, partition, fmt.Sprintf("%dx%dgrids", g, g))
}

// EncodingPath returns the grid encoding file of grid size g.
func (l Layout) EncodingPath(partition string, g int) string {
	return filepath.Join(l.GridDir(partition, g), grid.EncodingFilename)
}

// ManifestPath returns <root>/splits.toml.
func (l Layout) ManifestPath() string {
	return filepath.Join(l.Root, ManifestFilename)
}

// Dirs returns every directory a partition writes into.
func (l Layout) Dirs(partition string, gridSizes []int) []string {
	dirs := []string{l.ImagesDir(partition), l.MasksDir(partition)}
	for _, g := range gridSizes {
		gd := l.GridDir(partition, g)
		dirs = append(dirs, filepath.Join(gd, "imgs"), filepath.Join(gd, "masks"))
	}
	return dirs
}

// UnitPaths returns the image and mask paths of u, generic directories
// first, then the grid-size directories.
func (l Layout) UnitPaths(u Unit) (images, masks [2]string) {
	name := fmt.Sprintf("%d%s", u.Index, OutputExtension)
	gd := l.GridDir(u.Partition, u.GridSize)
	images = [2]string{
		filepath.Join(l.ImagesDir(u.Partition), name),
		filepath.Join(gd, "imgs", name),
	}
	masks = [2]string{
		filepath.Join(l.MasksDir(u.Partition), name),
		filepath.Join(gd, "masks", name),
	}
	return images, masks
}
