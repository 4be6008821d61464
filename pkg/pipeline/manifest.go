package pipeline

import (
	"bytes"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gridprep/pkg/buildinfo"
	"github.com/matzehuels/gridprep/pkg/errors"
	"github.com/matzehuels/gridprep/pkg/split"
)

// Manifest records how a run partitioned its samples. It is written to
// <root>/splits.toml and can be fed back through Options.SplitFile.
type Manifest struct {
	RunID        string              `toml:"run_id"`
	Version      string              `toml:"version"`
	Created      time.Time           `toml:"created"`
	Seed         int64               `toml:"seed"`
	ValFraction  float64             `toml:"val_fraction"`
	TestFraction float64             `toml:"test_fraction"`
	GridSizes    []int               `toml:"grid_sizes"`
	ImageSide    int                 `toml:"image_side"`
	Rotate       bool                `toml:"rotate"`
	Partitions   []ManifestPartition `toml:"partition"`
}

// ManifestPartition is one partition of a Manifest.
type ManifestPartition struct {
	Name    string   `toml:"name"`
	Samples []string `toml:"samples"`
}

// newManifest describes a run. Seeds are below 2^63 after option
// validation, so the int64 conversion is lossless.
func newManifest(res *Result, opts Options, parts split.Result) Manifest {
	m := Manifest{
		RunID:        res.RunID,
		Version:      buildinfo.Version,
		Created:      time.Now().UTC().Truncate(time.Second),
		Seed:         int64(res.Seed),
		ValFraction:  opts.ValFraction,
		TestFraction: opts.TestFraction,
		GridSizes:    opts.GridSizes,
		ImageSide:    res.ImageSide,
		Rotate:       opts.RotateAugment,
	}
	for _, p := range parts.Partitions {
		m.Partitions = append(m.Partitions, ManifestPartition{Name: p.Name, Samples: p.Samples})
	}
	return m
}

// Encode renders the manifest as TOML.
func (m Manifest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode manifest")
	}
	return buf.Bytes(), nil
}

// DecodeManifest parses a manifest written by Encode.
func DecodeManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode manifest")
	}
	return &m, nil
}

// Split converts the manifest back into partitions, checking that they
// cover samples exactly once. The partitions must be train and test, plus
// an optional val, each listed once.
func (m *Manifest) Split(samples []string) (split.Result, error) {
	var res split.Result
	names := make(map[string]bool, len(m.Partitions))
	seen := make(map[string]bool, len(samples))
	for _, p := range m.Partitions {
		switch p.Name {
		case split.Train, split.Val, split.Test:
		default:
			return split.Result{}, errors.New(errors.ErrCodeInvalidConfig, "unknown partition %q in manifest", p.Name)
		}
		if names[p.Name] {
			return split.Result{}, errors.New(errors.ErrCodeInvalidConfig, "partition %q is listed twice in manifest", p.Name)
		}
		names[p.Name] = true
		for _, s := range p.Samples {
			if seen[s] {
				return split.Result{}, errors.New(errors.ErrCodePartitionSize, "sample %s appears twice in manifest", s)
			}
			seen[s] = true
		}
		res.Partitions = append(res.Partitions, split.Partition{Name: p.Name, Samples: slices.Clone(p.Samples)})
	}
	if !names[split.Train] || !names[split.Test] {
		return split.Result{}, errors.New(errors.ErrCodeInvalidConfig,
			"manifest must list train and test partitions, got %s", strings.Join(res.Names(), ", "))
	}

	if len(seen) != len(samples) {
		return split.Result{}, errors.New(errors.ErrCodePartitionSize,
			"manifest lists %d samples, dataset has %d", len(seen), len(samples))
	}
	for _, s := range samples {
		if !seen[s] {
			return split.Result{}, errors.New(errors.ErrCodePartitionSize, "sample %s is missing from manifest", s)
		}
	}
	return res, nil
}
