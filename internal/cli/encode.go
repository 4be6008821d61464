package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridprep/pkg/errors"
	"github.com/matzehuels/gridprep/pkg/grid"
	"github.com/matzehuels/gridprep/pkg/raster"
)

// encodeCommand creates the encode command that writes one grid encoding.
func (c *CLI) encodeCommand() *cobra.Command {
	var (
		size   int
		g      int
		output string
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Write a grid encoding image",
		Long: `Write a grid encoding image.

The encoding is a --size x --size gray image split into a --grid x --grid
checkerboard whose top-left cell is black.
It is the same image 'generate' writes as grid_encoding.png.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEncode(size, g, output)
		},
	}

	cmd.Flags().IntVar(&size, "size", defaultResizeSide, "side length in pixels")
	cmd.Flags().IntVar(&g, "grid", 4, "number of cells per side")
	cmd.Flags().StringVarP(&output, "output", "o", grid.EncodingFilename, "output file")

	return cmd
}

// runEncode renders the encoding and saves it.
func (c *CLI) runEncode(size, g int, output string) error {
	if err := errors.ValidateGridFit(size, g); err != nil {
		return err
	}
	img, err := grid.Encoding(size, g)
	if err != nil {
		return err
	}
	if err := raster.NewDisk().Save(output, img); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	c.Logger.Debug("wrote encoding", "size", size, "grid", g, "path", output)

	printSuccess("Wrote %dx%d encoding", g, g)
	printFile(output)
	return nil
}
