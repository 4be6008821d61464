package cli

import (
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridprep/pkg/errors"
	"github.com/matzehuels/gridprep/pkg/pipeline"
)

// loadConfig decodes a TOML run config. Unknown keys are rejected.
func loadConfig(path string) (pipeline.Options, toml.MetaData, error) {
	var opts pipeline.Options
	md, err := toml.DecodeFile(path, &opts)
	if err != nil {
		return pipeline.Options{}, md, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return pipeline.Options{}, md, errors.New(errors.ErrCodeInvalidConfig,
			"unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return opts, md, nil
}

// configFields maps generate flags to their config keys and copies the
// config value into the options.
var configFields = []struct {
	flag, key string
	apply     func(dst *pipeline.Options, src pipeline.Options)
}{
	{"root", "root", func(d *pipeline.Options, s pipeline.Options) { d.DatasetRoot = s.DatasetRoot }},
	{"images", "images", func(d *pipeline.Options, s pipeline.Options) { d.ImageDir = s.ImageDir }},
	{"masks", "masks", func(d *pipeline.Options, s pipeline.Options) { d.MaskDir = s.MaskDir }},
	{"grids", "grids", func(d *pipeline.Options, s pipeline.Options) { d.GridSizes = s.GridSizes }},
	{"val", "val", func(d *pipeline.Options, s pipeline.Options) { d.ValFraction = s.ValFraction }},
	{"test", "test", func(d *pipeline.Options, s pipeline.Options) { d.TestFraction = s.TestFraction }},
	{"rotate", "rotate", func(d *pipeline.Options, s pipeline.Options) { d.RotateAugment = s.RotateAugment }},
	{"ext", "ext", func(d *pipeline.Options, s pipeline.Options) { d.Extension = s.Extension }},
	{"seed", "seed", func(d *pipeline.Options, s pipeline.Options) { d.Seed = s.Seed }},
	{"splits", "splits", func(d *pipeline.Options, s pipeline.Options) { d.SplitFile = s.SplitFile }},
	{"workers", "workers", func(d *pipeline.Options, s pipeline.Options) { d.Workers = s.Workers }},
}

// mergeConfig copies values defined in the config file into opts, except
// for flags given explicitly on the command line.
func mergeConfig(cmd *cobra.Command, opts *pipeline.Options, file pipeline.Options, md toml.MetaData) {
	for _, f := range configFields {
		if cmd.Flags().Changed(f.flag) || !md.IsDefined(f.key) {
			continue
		}
		f.apply(opts, file)
	}
}

// setInputDefaults points image and mask directories at the output of the
// resize command when they are not configured.
func setInputDefaults(opts *pipeline.Options) {
	if opts.ImageDir == "" && opts.DatasetRoot != "" {
		opts.ImageDir = filepath.Join(opts.DatasetRoot, pipeline.ResizedImagesDir)
	}
	if opts.MaskDir == "" && opts.DatasetRoot != "" {
		opts.MaskDir = filepath.Join(opts.DatasetRoot, pipeline.ResizedMasksDir)
	}
}
