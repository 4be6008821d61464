// Package pkg provides the core libraries for gridprep dataset preparation.
//
// # Overview
//
// Gridprep turns polyp-style segmentation datasets (square images with binary
// masks) into train/val/test partitions where every sample also carries
// coarse g × g grid ground truths. The pkg directory is organized into:
//
//  1. [grid] - Occupancy classification, mask expansion, grid encodings
//  2. [split] - Seeded train/val/test partitioning
//  3. [raster] - Image storage and transforms (disk, memory, imaging, OpenCV)
//  4. [pipeline] - Orchestration (discover → probe → partition → emit)
//  5. [errors] - Structured error codes shared by all packages
//  6. [observability] - Hooks for metrics and tracing
//
// # Architecture
//
// The typical data flow through gridprep:
//
//	images/ + masks/
//	         ↓
//	    [pipeline] Resize (optional)
//	         ↓
//	    [split] package (partition samples)
//	         ↓
//	    [raster] rotate → [grid] GroundTruth
//	         ↓
//	    <root>/<partition>/... PNG output
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/gridprep/pkg/pipeline"
//	    "github.com/matzehuels/gridprep/pkg/raster"
//	)
//
//	runner := pipeline.NewRunner(raster.NewDisk(), nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    DatasetRoot:  "Kvasir-SEG",
//	    ImageDir:     "Kvasir-SEG/images_resized",
//	    MaskDir:      "Kvasir-SEG/masks_resized",
//	    GridSizes:    []int{2, 4, 8, 16},
//	    TestFraction: 0.2,
//	})
//
// [grid]: github.com/matzehuels/gridprep/pkg/grid
// [split]: github.com/matzehuels/gridprep/pkg/split
// [raster]: github.com/matzehuels/gridprep/pkg/raster
// [pipeline]: github.com/matzehuels/gridprep/pkg/pipeline
// [errors]: github.com/matzehuels/gridprep/pkg/errors
// [observability]: github.com/matzehuels/gridprep/pkg/observability
package pkg
