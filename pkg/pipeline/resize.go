package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gridprep/pkg/errors"
	"github.com/matzehuels/gridprep/pkg/raster"
)

// Source and destination directory names used by Resize.
const (
	SourceImagesDir  = "images"
	SourceMasksDir   = "masks"
	ResizedImagesDir = "images_resized"
	ResizedMasksDir  = "masks_resized"
)

// ResizeOptions configures a resize pass over a raw dataset.
type ResizeOptions struct {
	// SourceDir holds images/ and masks/. Output goes to
	// images_resized/ and masks_resized/ next to them.
	SourceDir string `toml:"source"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Extension string `toml:"ext"`

	// Contrast enhances the images, never the masks.
	Contrast bool `toml:"contrast"`

	Workers int         `toml:"workers"`
	Logger  *log.Logger `toml:"-"`
}

func (o *ResizeOptions) validate() error {
	if o.SourceDir == "" {
		return errors.New(errors.ErrCodeInvalidInput, "source directory is required")
	}
	if o.Width <= 0 || o.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "target size %dx%d must be positive", o.Width, o.Height)
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "workers must not be negative")
	}
	if o.Extension == "" {
		o.Extension = DefaultExtension
	}
	if err := errors.ValidateExtension(o.Extension); err != nil {
		return err
	}
	if o.Workers == 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ResizeResult summarizes a resize pass.
type ResizeResult struct {
	Images   int // images written
	Masks    int // masks written
	Failures int // files that could not be read, transformed, or saved
	Duration time.Duration
}

// Resize scales every image and mask under opts.SourceDir to the target
// size and writes them as PNG. A missing source directory aborts the pass;
// failures on single files are logged and counted.
func (r *Runner) Resize(ctx context.Context, opts ResizeOptions) (*ResizeResult, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	start := time.Now()
	jobs := []struct {
		src, dst string
		mask     bool
	}{
		{filepath.Join(opts.SourceDir, SourceImagesDir), filepath.Join(opts.SourceDir, ResizedImagesDir), false},
		{filepath.Join(opts.SourceDir, SourceMasksDir), filepath.Join(opts.SourceDir, ResizedMasksDir), true},
	}

	res := &ResizeResult{}
	for _, job := range jobs {
		if !r.Store.Exists(job.src) {
			return nil, errors.New(errors.ErrCodeMissingPath, "source directory %s does not exist", job.src)
		}
		if err := r.Store.EnsureDir(job.dst); err != nil {
			return nil, fmt.Errorf("prepare directories: %w", err)
		}
	}

	for _, job := range jobs {
		names, err := r.Store.List(job.src, opts.Extension)
		if err != nil {
			return nil, err
		}
		opts.Logger.Info("resizing", "dir", job.src, "files", len(names), "width", opts.Width, "height", opts.Height)

		written, failed, err := r.resizeDir(ctx, opts, job.src, job.dst, job.mask, names)
		if err != nil {
			return nil, err
		}
		if job.mask {
			res.Masks = written
		} else {
			res.Images = written
		}
		res.Failures += failed
	}

	res.Duration = time.Since(start)
	opts.Logger.Info("resize done",
		"images", res.Images,
		"masks", res.Masks,
		"failures", res.Failures,
		"duration", res.Duration.Round(time.Millisecond))
	return res, nil
}

func (r *Runner) resizeDir(ctx context.Context, opts ResizeOptions, src, dst string, mask bool, names []string) (written, failed int, err error) {
	outcomes := make([]bool, len(names))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(opts.Workers)
	for i, name := range names {
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out := filepath.Join(dst, strings.TrimSuffix(name, filepath.Ext(name))+OutputExtension)
			if err := r.resizeFile(opts, filepath.Join(src, name), out, mask); err != nil {
				opts.Logger.Error("resize failed", "file", name, "err", err)
				return nil
			}
			outcomes[i] = true
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return 0, 0, err
	}

	for _, ok := range outcomes {
		if ok {
			written++
		} else {
			failed++
		}
	}
	return written, failed, nil
}

func (r *Runner) resizeFile(opts ResizeOptions, src, dst string, mask bool) error {
	img, err := r.Store.Load(src)
	if err != nil {
		return err
	}
	if mask {
		img = raster.ToGray(img)
	}

	img, err = r.Transformer.Resize(img, opts.Width, opts.Height)
	if err != nil {
		return err
	}
	if mask {
		// Interpolation blurs edges; the pipeline thresholds them later.
		img = raster.ToGray(img)
	} else if opts.Contrast {
		if img, err = r.Transformer.EnhanceContrast(img); err != nil {
			return err
		}
	}
	return r.Store.Save(dst, img)
}
