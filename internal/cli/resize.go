package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridprep/pkg/pipeline"
)

// resizeCommand creates the resize command that prepares raw datasets.
func (c *CLI) resizeCommand() *cobra.Command {
	side := defaultResizeSide
	opts := pipeline.ResizeOptions{
		Extension: defaultRawExtension,
	}

	cmd := &cobra.Command{
		Use:   "resize [dir]",
		Short: "Resize raw images and masks to a common size",
		Long: `Resize raw images and masks to a common size.

Reads <dir>/images/*<ext> and <dir>/masks/*<ext>, scales them to
--width x --height (default: --size square), and writes PNGs to
<dir>/images_resized and <dir>/masks_resized, ready for 'generate'.

With --contrast, images (never masks) are contrast-enhanced after resizing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.SourceDir = args[0]
			if !cmd.Flags().Changed("width") {
				opts.Width = side
			}
			if !cmd.Flags().Changed("height") {
				opts.Height = side
			}
			return c.runResize(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntVar(&side, "size", side, "side length of square output images")
	cmd.Flags().IntVar(&opts.Width, "width", 0, "output width (overrides --size)")
	cmd.Flags().IntVar(&opts.Height, "height", 0, "output height (overrides --size)")
	cmd.Flags().StringVar(&opts.Extension, "ext", opts.Extension, "raw image extension")
	cmd.Flags().BoolVar(&opts.Contrast, "contrast", false, "enhance image contrast")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "files processed in parallel (default: number of CPUs)")

	return cmd
}

// runResize resizes a raw dataset and prints a summary.
func (c *CLI) runResize(ctx context.Context, opts pipeline.ResizeOptions) error {
	runner, _ := c.newRunner(false)
	opts.Logger = c.Logger

	spinner := c.newSpinnerWithContext(ctx, fmt.Sprintf("Resizing %s...", opts.SourceDir))
	spinner.Start()

	res, err := runner.Resize(ctx, opts)
	if err != nil {
		spinner.StopWithError("Resize failed")
		return fmt.Errorf("resize: %w", err)
	}
	spinner.Stop()

	printSuccess("Resized %d images and %d masks to %dx%d", res.Images, res.Masks, opts.Width, opts.Height)
	printFile(filepath.Join(opts.SourceDir, pipeline.ResizedImagesDir))
	printFile(filepath.Join(opts.SourceDir, pipeline.ResizedMasksDir))
	if res.Failures > 0 {
		printWarning("%d files could not be resized, see log for details", res.Failures)
	}
	printNewline()
	printNextStep("Generate", fmt.Sprintf("%s generate --root %s", appName, opts.SourceDir))
	return nil
}
