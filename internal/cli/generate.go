package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridprep/pkg/errors"
	"github.com/matzehuels/gridprep/pkg/pipeline"
)

// generateCommand creates the generate command that builds a dataset.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		configPath string
		dryRun     bool
	)
	opts := pipeline.Options{
		GridSizes:    slices.Clone(pipeline.DefaultGridSizes),
		TestFraction: defaultTestFraction,
		Extension:    pipeline.DefaultExtension,
	}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Split samples and write grid-augmented images and masks",
		Long: `Generate a grid-augmented segmentation dataset.

Samples are read from --images and --masks (default: <root>/images_resized
and <root>/masks_resized, as written by 'resize'). They are shuffled into
train, optional val, and test partitions, and every sample is written to

  <root>/<partition>/imgs/<n>.png
  <root>/<partition>/masks/<n>.png
  <root>/<partition>/<g>x<g>grids/{imgs,masks}/<n>.png

once per grid size, where the grid mask marks every cell of the g x g grid
that overlaps the object. With --rotate, training samples are also written
rotated by 90, 180, and 270 degrees.

The split is recorded in <root>/splits.toml and can be replayed with --splits.
Values from --config are used unless the matching flag is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				file, md, err := loadConfig(configPath)
				if err != nil {
					return err
				}
				mergeConfig(cmd, &opts, file, md)
			}
			setInputDefaults(&opts)
			return c.runGenerate(cmd.Context(), opts, dryRun)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "TOML file with generate options")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "read inputs and report what would be written")

	cmd.Flags().StringVar(&opts.DatasetRoot, "root", "", "dataset root to write partitions into")
	cmd.Flags().StringVar(&opts.ImageDir, "images", "", "directory of square source images (default: <root>/images_resized)")
	cmd.Flags().StringVar(&opts.MaskDir, "masks", "", "directory of masks with matching names (default: <root>/masks_resized)")
	cmd.Flags().IntSliceVar(&opts.GridSizes, "grids", opts.GridSizes, "grid sizes, each must divide the image side")
	cmd.Flags().Float64Var(&opts.ValFraction, "val", 0, "validation share of the samples left after the test split")
	cmd.Flags().Float64Var(&opts.TestFraction, "test", opts.TestFraction, "test share of all samples")
	cmd.Flags().BoolVar(&opts.RotateAugment, "rotate", false, "add 90/180/270 degree rotations of training samples")
	cmd.Flags().StringVar(&opts.Extension, "ext", opts.Extension, "source image extension")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "shuffle seed (0 picks one and records it)")
	cmd.Flags().StringVar(&opts.SplitFile, "splits", "", "reuse the partitions of an earlier splits.toml")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "samples processed in parallel (default: number of CPUs)")

	return cmd
}

// runGenerate executes a dataset run and prints a summary.
func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, dryRun bool) error {
	if opts.DatasetRoot == "" {
		return errors.New(errors.ErrCodeInvalidInput, "--root is required")
	}

	runner, dry := c.newRunner(dryRun)
	opts.Logger = c.Logger
	prog := newProgress(c.Logger)

	spinner := c.newSpinnerWithContext(ctx, "Generating dataset...")
	spinner.Start()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Generation failed")
		return fmt.Errorf("generate: %w", err)
	}
	spinner.Stop()

	prog.done(fmt.Sprintf("Generated %d units", res.Units()))

	if dryRun {
		dirs, images, files := dry.Counts()
		printSuccess("Dry run complete")
		printDetail("would create %d directories, %d images, %d files", dirs, images, files)
	} else {
		printSuccess("Dataset ready")
		printFile(opts.DatasetRoot)
	}
	printKeyValue("Run", res.RunID)
	printKeyValue("Seed", fmt.Sprint(res.Seed))
	printKeyValue("Image side", fmt.Sprint(res.ImageSide))
	for _, p := range res.Partitions {
		printPartition(p)
	}

	if n := res.Failures(); n > 0 {
		printWarning("%d files could not be written, see log for paths", n)
	}
	if !res.ManifestWritten {
		printWarning("split manifest was not written")
	}
	if !dryRun && opts.SplitFile == "" {
		printNewline()
		printNextStep("Replay this split", fmt.Sprintf("%s generate --root %s --splits %s", appName, opts.DatasetRoot,
			pipeline.Layout{Root: opts.DatasetRoot}.ManifestPath()))
	}
	return nil
}

// formatRotations renders rotation angles as "0°, 90°".
func formatRotations(angles []int) string {
	parts := make([]string, len(angles))
	for i, a := range angles {
		parts[i] = fmt.Sprintf("%d°", a)
	}
	return strings.Join(parts, ", ")
}
