// Package pipeline turns a folder of images and binary masks into a
// grid-augmented segmentation dataset.
//
// # Architecture
//
// A run goes through four stages:
//
//  1. Discover: list the sample images under Options.ImageDir
//  2. Probe: read the first image to learn the common square side
//  3. Partition: split samples into train/test or train/val/test
//  4. Emit: for every partition, write one grid encoding per grid size and
//     fan each sample out over rotations × grid sizes
//
// Failures in the first three stages, and unreadable or malformed samples,
// abort the run. A file that fails to save is logged and counted, and the
// run continues.
//
// # Output
//
// Each emitted unit gets a partition-local index n and is written to
//
//	<root>/<partition>/imgs/<n>.png
//	<root>/<partition>/masks/<n>.png
//	<root>/<partition>/<g>x<g>grids/imgs/<n>.png
//	<root>/<partition>/<g>x<g>grids/masks/<n>.png
//
// next to <root>/<partition>/<g>x<g>grids/grid_encoding.png. The partition
// membership is recorded in <root>/splits.toml.
//
// # Usage
//
//	runner := pipeline.NewRunner(raster.NewDisk(), raster.DefaultTransformer(), logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    DatasetRoot:  "Kvasir-SEG/",
//	    ImageDir:     "Kvasir-SEG/images_resized",
//	    MaskDir:      "Kvasir-SEG/masks_resized",
//	    GridSizes:    []int{2, 4, 8, 16},
//	    TestFraction: 0.2,
//	})
package pipeline

import (
	"io"
	"math"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridprep/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultExtension is the source image extension.
	DefaultExtension = ".png"

	// OutputExtension is the extension of every file the pipeline writes.
	OutputExtension = ".png"

	// ManifestFilename is the split manifest written under the dataset root.
	ManifestFilename = "splits.toml"
)

// DefaultGridSizes are the grid sizes used when none are configured.
var DefaultGridSizes = []int{2, 4, 8, 16}

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options configures one dataset run. It can be decoded from a TOML
// config file.
type Options struct {
	DatasetRoot   string  `toml:"root"`
	ImageDir      string  `toml:"images"`
	MaskDir       string  `toml:"masks"`
	GridSizes     []int   `toml:"grids"`
	ValFraction   float64 `toml:"val"`  // fraction of the post-test remainder
	TestFraction  float64 `toml:"test"` // fraction of all samples
	RotateAugment bool    `toml:"rotate"`
	Extension     string  `toml:"ext"`

	// Seed drives the shuffle. Zero draws a fresh seed, which is
	// reported in the Result and the manifest.
	Seed uint64 `toml:"seed"`

	// SplitFile, if set, names a manifest from an earlier run whose
	// partitions are reused instead of shuffling.
	SplitFile string `toml:"splits"`

	// Workers is the number of samples processed concurrently.
	Workers int `toml:"workers"`

	// Runtime options (not serialized)
	Logger *log.Logger `toml:"-"`

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.DatasetRoot == "" {
		return errors.New(errors.ErrCodeInvalidInput, "dataset root is required")
	}
	if o.ImageDir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "image directory is required")
	}
	if o.MaskDir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "mask directory is required")
	}
	if err := errors.ValidateGridSizes(o.GridSizes); err != nil {
		return err
	}
	if err := errors.ValidateFraction("validation fraction", o.ValFraction); err != nil {
		return err
	}
	if err := errors.ValidateFraction("test fraction", o.TestFraction); err != nil {
		return err
	}
	if o.Seed > math.MaxInt64 {
		return errors.New(errors.ErrCodeInvalidInput, "seed must not exceed %d", int64(math.MaxInt64))
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "workers must not be negative")
	}

	if o.Extension == "" {
		o.Extension = DefaultExtension
	}
	if err := errors.ValidateExtension(o.Extension); err != nil {
		return err
	}
	if o.Workers == 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result summarizes a finished run.
type Result struct {
	RunID      string
	Seed       uint64
	ImageSide  int
	Samples    int
	Partitions []PartitionStats
	Duration   time.Duration

	// ManifestWritten is false when splits.toml could not be saved.
	ManifestWritten bool
}

// PartitionStats describes the output of one partition.
type PartitionStats struct {
	Name      string
	Samples   int
	Rotations []int
	Units     int // planned units: samples × rotations × grid sizes
	Written   int // units whose files were all saved
	Failures  int // files that failed to save, encodings included
	Duration  time.Duration
}

// Units returns the number of planned units across all partitions.
func (r *Result) Units() int {
	n := 0
	for _, p := range r.Partitions {
		n += p.Units
	}
	return n
}

// Failures returns the number of files that failed to save.
func (r *Result) Failures() int {
	n := 0
	for _, p := range r.Partitions {
		n += p.Failures
	}
	return n
}

// Partition returns the stats of the named partition.
func (r *Result) Partition(name string) (PartitionStats, bool) {
	for _, p := range r.Partitions {
		if p.Name == name {
			return p, true
		}
	}
	return PartitionStats{}, false
}
