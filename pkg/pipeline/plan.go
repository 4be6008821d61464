package pipeline

import (
	"iter"

	"github.com/matzehuels/gridprep/pkg/split"
)

// RotationAngles are the counter-clockwise rotations applied to training
// samples when rotation augmentation is enabled.
var RotationAngles = []int{0, 90, 180, 270}

// Rotations returns the rotation set for a partition. Only the train
// partition is augmented.
func Rotations(partition string, augment bool) []int {
	if partition == split.Train && augment {
		return RotationAngles
	}
	return []int{0}
}

// Unit is one (sample, rotation, grid size) combination and the output
// index its files are written under.
type Unit struct {
	Partition   string
	Sample      string
	SampleIndex int
	Angle       int
	GridSize    int
	Index       int
}

// Plan enumerates the units of one partition. Samples are visited in
// order; within a sample rotation is the outer loop and grid size the inner
// one. Indices are fixed by position, so units can be processed in any
// order or in parallel without sharing a counter.
type Plan struct {
	Partition string
	Samples   []string
	Rotations []int
	GridSizes []int
}

// PerSample returns the number of units each sample produces.
func (p Plan) PerSample() int {
	return len(p.Rotations) * len(p.GridSizes)
}

// Len returns the total number of units.
func (p Plan) Len() int {
	return len(p.Samples) * p.PerSample()
}

// SampleUnits yields the units of sample i.
func (p Plan) SampleUnits(i int) iter.Seq[Unit] {
	return func(yield func(Unit) bool) {
		base := i * p.PerSample()
		for r, angle := range p.Rotations {
			for g, size := range p.GridSizes {
				u := Unit{
					Partition:   p.Partition,
					Sample:      p.Samples[i],
					SampleIndex: i,
					Angle:       angle,
					GridSize:    size,
					Index:       base + r*len(p.GridSizes) + g,
				}
				if !yield(u) {
					return
				}
			}
		}
	}
}

// Units yields every unit of the plan in index order.
func (p Plan) Units() iter.Seq[Unit] {
	return func(yield func(Unit) bool) {
		for i := range p.Samples {
			for u := range p.SampleUnits(i) {
				if !yield(u) {
					return
				}
			}
		}
	}
}
