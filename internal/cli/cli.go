package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridprep/pkg/buildinfo"
	"github.com/matzehuels/gridprep/pkg/pipeline"
	"github.com/matzehuels/gridprep/pkg/raster"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "gridprep"

	// defaultResizeSide is the side length raw images are resized to.
	defaultResizeSide = 128

	// defaultRawExtension is the extension of raw Kvasir-SEG images.
	defaultRawExtension = ".jpg"

	// defaultTestFraction is the share of samples held out for testing.
	defaultTestFraction = 0.2
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Gridprep builds grid-augmented segmentation datasets",
		Long: `Gridprep turns a folder of square images and binary masks into a
segmentation dataset split into train, validation, and test partitions.

Every sample is written together with coarse grid ground truths: the mask is
divided into g x g cells and each cell is marked if any of its pixels is.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.resizeCommand())
	root.AddCommand(c.encodeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. A dry run reads from
// disk and discards every write.
func (c *CLI) newRunner(dryRun bool) (*pipeline.Runner, *raster.DryRun) {
	var (
		store raster.Store = raster.NewDisk()
		dry   *raster.DryRun
	)
	if dryRun {
		dry = raster.NewDryRun(store)
		store = dry
	}
	return pipeline.NewRunner(store, raster.DefaultTransformer(), c.Logger), dry
}
