// Package grid derives grid ground truth from binary segmentation masks.
//
// # Overview
//
// A grid-based segmentation model does not predict pixels. It predicts which
// cells of a g × g overlay contain any foreground. This package converts
// between the two representations:
//
//   - [Classify]: full-resolution mask → g × g [Occupancy]
//   - [Expand]: [Occupancy] → full-resolution mask with whole cells marked
//   - [GroundTruth]: Classify followed by Expand
//   - [Encoding]: the checkerboard image that tells the model where the
//     cells of a grid size are
//
// Masks are *image.Gray. A pixel is foreground when its value is above
// [Threshold]; outputs use [Marked] for foreground and 0 for background.
//
// # Cell Geometry
//
// All functions use the same cell length, side / g. The side must be
// divisible by g: a remainder would leave trailing pixels whose cell index
// falls outside the grid, so such configurations are rejected with a
// GRID_SIZE error instead of being clamped.
//
// # Round Trip
//
// GroundTruth is a lossy coarsening, but it is idempotent:
//
//	gt, _ := grid.GroundTruth(mask, 8)
//	again, _ := grid.GroundTruth(gt, 8)
//	// again and gt are pixel-identical
package grid
