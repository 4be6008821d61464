package errors

import (
	"math"
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateFraction checks that a split fraction lies in [0, 1).
// name identifies the option in the error message (e.g. "test fraction").
func ValidateFraction(name string, f float64) error {
	if math.IsNaN(f) || f < 0 || f >= 1 {
		return New(ErrCodeInvalidInput, "%s must be in [0, 1), got %v", name, f)
	}
	return nil
}

// ValidateGridSizes checks that at least one grid size is given and that
// every grid size is positive and unique. Order is preserved by callers and
// is not checked here.
func ValidateGridSizes(sizes []int) error {
	if len(sizes) == 0 {
		return New(ErrCodeGridSize, "at least one grid size is required")
	}
	seen := make(map[int]bool, len(sizes))
	for _, g := range sizes {
		if g <= 0 {
			return New(ErrCodeGridSize, "grid size must be positive, got %d", g)
		}
		if seen[g] {
			return New(ErrCodeGridSize, "duplicate grid size %d", g)
		}
		seen[g] = true
	}
	return nil
}

// ValidateGridFit checks that grid size g splits an image of the given side
// into whole cells. A remainder would map trailing pixels outside the grid.
func ValidateGridFit(side, g int) error {
	if g <= 0 {
		return New(ErrCodeGridSize, "grid size must be positive, got %d", g)
	}
	if g > side {
		return New(ErrCodeGridSize, "grid size %d exceeds image side %d", g, side)
	}
	if side%g != 0 {
		return New(ErrCodeGridSize, "image side %d is not divisible by grid size %d", side, g)
	}
	return nil
}

// ValidateExtension checks a source file extension such as ".png".
// The leading dot is required so it compares equal to filepath.Ext.
func ValidateExtension(ext string) error {
	if len(ext) < 2 || !strings.HasPrefix(ext, ".") {
		return New(ErrCodeInvalidInput, "extension must start with a dot, got %q", ext)
	}
	if strings.ContainsAny(ext[1:], "./\\") {
		return New(ErrCodeInvalidInput, "extension contains invalid characters: %q", ext)
	}
	return nil
}

// ValidateSampleName validates a sample file name found during discovery.
// Sample names are joined onto both the image and the mask directory, so
// they must be plain base names.
func ValidateSampleName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "sample name cannot be empty")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "sample name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "sample name cannot contain path separators: %q", name)
	}
	if name == "." || name == ".." {
		return New(ErrCodeInvalidInput, "invalid sample name: %q", name)
	}
	if strings.TrimSuffix(name, filepath.Ext(name)) == "" {
		return New(ErrCodeInvalidInput, "sample name has no stem: %q", name)
	}

	return nil
}
