// Package split partitions a dataset into train, validation, and test sets.
//
// Membership is random but size-controlled: the test set always holds
// floor(test × n) samples and the validation set floor(val × remainder).
// Randomness comes from an injected *rand.Rand so runs can be replayed with
// a seed.
package split

import (
	crand "crypto/rand"
	"encoding/binary"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/gridprep/pkg/errors"
)

// Partition names.
const (
	Train = "train"
	Val   = "val"
	Test  = "test"
)

// Partition is a named subset of sample identifiers.
type Partition struct {
	Name    string
	Samples []string
}

// Result holds the partitions of one split, in the order
// [train, test] or [train, val, test].
type Result struct {
	Partitions []Partition
}

// Names returns the partition names in order.
func (r Result) Names() []string {
	names := make([]string, len(r.Partitions))
	for i, p := range r.Partitions {
		names[i] = p.Name
	}
	return names
}

// Get returns the samples of the named partition.
func (r Result) Get(name string) ([]string, bool) {
	for _, p := range r.Partitions {
		if p.Name == name {
			return p.Samples, true
		}
	}
	return nil, false
}

// Len returns the total number of samples across all partitions.
func (r Result) Len() int {
	n := 0
	for _, p := range r.Partitions {
		n += len(p.Samples)
	}
	return n
}

// NewRand returns a PCG-backed generator for seed. A zero seed draws a
// fresh seed from the operating system, so every run shuffles differently.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = RandomSeed()
	}
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// RandomSeed returns a seed in [1, 2^63) from crypto/rand. Seeds stay
// within int64 so they survive a round trip through TOML.
func RandomSeed() uint64 {
	var b [8]byte
	for {
		_, _ = crand.Read(b[:])
		if s := binary.LittleEndian.Uint64(b[:]) >> 1; s != 0 {
			return s
		}
	}
}

// Split partitions ids. testFrac and valFrac must be in [0, 1).
//
// The test set takes floor(testFrac × len(ids)) samples. When valFrac is 0
// the result is [train, test]. Otherwise the remaining samples are split
// again and the validation set takes floor(valFrac × remainder), giving
// [train, val, test].
//
// ids is not modified.
func Split(ids []string, valFrac, testFrac float64, rng *rand.Rand) (Result, error) {
	if err := errors.ValidateFraction("validation fraction", valFrac); err != nil {
		return Result{}, err
	}
	if err := errors.ValidateFraction("test fraction", testFrac); err != nil {
		return Result{}, err
	}

	testSize := int(math.Floor(testFrac * float64(len(ids))))
	trainAndVal, test, err := TrainTestSplit(ids, testSize, rng)
	if err != nil {
		return Result{}, err
	}

	var res Result
	if valFrac == 0 {
		res.Partitions = []Partition{
			{Name: Train, Samples: trainAndVal},
			{Name: Test, Samples: test},
		}
	} else {
		valSize := int(math.Floor(valFrac * float64(len(trainAndVal))))
		train, val, err := TrainTestSplit(trainAndVal, valSize, rng)
		if err != nil {
			return Result{}, err
		}
		res.Partitions = []Partition{
			{Name: Train, Samples: train},
			{Name: Val, Samples: val},
			{Name: Test, Samples: test},
		}
	}

	if res.Len() != len(ids) {
		return Result{}, errors.New(errors.ErrCodePartitionSize,
			"partitions hold %d samples, want %d", res.Len(), len(ids))
	}
	return res, nil
}

// TrainTestSplit shuffles a copy of data and cuts off the first testSize
// elements as the test set. A testSize of 0 returns all of data as train
// without consuming randomness.
func TrainTestSplit(data []string, testSize int, rng *rand.Rand) (train, test []string, err error) {
	if testSize < 0 || testSize > len(data) {
		return nil, nil, errors.New(errors.ErrCodePartitionSize,
			"test size %d out of range for %d samples", testSize, len(data))
	}
	if testSize == 0 {
		return slices.Clone(data), []string{}, nil
	}

	shuffled := slices.Clone(data)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	test = shuffled[:testSize:testSize]
	train = shuffled[testSize:]
	if len(test) != testSize || len(train)+len(test) != len(data) {
		return nil, nil, errors.New(errors.ErrCodePartitionSize,
			"could not retrieve %d test samples from %d", testSize, len(data))
	}
	return train, test, nil
}
