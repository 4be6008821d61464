package pipeline

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/gridprep/pkg/errors"
	"github.com/matzehuels/gridprep/pkg/grid"
	"github.com/matzehuels/gridprep/pkg/observability"
	"github.com/matzehuels/gridprep/pkg/raster"
	"github.com/matzehuels/gridprep/pkg/split"
)

// Runner executes dataset runs against a Store and a Transformer.
//
// The Runner keeps no state between runs. Multiple goroutines can use the
// same Runner with different options as long as their output roots differ.
type Runner struct {
	Store       raster.Store
	Transformer raster.Transformer
	Logger      *log.Logger
}

// NewRunner creates a runner.
// If store is nil, the local filesystem is used.
// If transformer is nil, raster.DefaultTransformer is used.
func NewRunner(store raster.Store, transformer raster.Transformer, logger *log.Logger) *Runner {
	if store == nil {
		store = raster.NewDisk()
	}
	if transformer == nil {
		transformer = raster.DefaultTransformer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:       store,
		Transformer: transformer,
		Logger:      logger,
	}
}

// Execute runs discovery, probing, partitioning, and emission.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	start := time.Now()
	result := &Result{
		RunID: uuid.NewString(),
		Seed:  opts.Seed,
	}
	if result.Seed == 0 {
		result.Seed = split.RandomSeed()
	}

	hooks := observability.Pipeline()
	hooks.OnRunStart(ctx, result.RunID)

	err := r.execute(ctx, opts, result)
	result.Duration = time.Since(start)
	hooks.OnRunComplete(ctx, result.RunID, result.Duration, err)
	if err != nil {
		return nil, err
	}

	opts.Logger.Info("dataset ready",
		"run", result.RunID,
		"units", result.Units(),
		"failures", result.Failures(),
		"duration", result.Duration.Round(time.Millisecond))
	return result, nil
}

func (r *Runner) execute(ctx context.Context, opts Options, result *Result) error {
	logger := opts.Logger

	// Stage 1: Discover
	samples, err := r.Discover(opts)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}
	result.Samples = len(samples)
	logger.Info("discovered samples", "count", len(samples), "dir", opts.ImageDir)

	// Stage 2: Probe
	side, err := r.Probe(opts, samples[0])
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	result.ImageSide = side
	logger.Debug("probed image side", "side", side, "sample", samples[0])

	// Stage 3: Partition
	parts, source, err := r.partition(opts, samples, result.Seed)
	if err != nil {
		return fmt.Errorf("partition: %w", err)
	}
	for _, p := range parts.Partitions {
		logger.Info("partitioned", "partition", p.Name, "samples", len(p.Samples))
	}
	m := newManifest(result, opts, parts)
	if source != nil {
		m.Seed = source.Seed
		m.ValFraction = source.ValFraction
		m.TestFraction = source.TestFraction
		result.Seed = uint64(source.Seed)
	}
	result.ManifestWritten, err = r.writeManifest(ctx, opts, m)
	if err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	// Stage 4: Emit
	for _, p := range parts.Partitions {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats, err := r.emitPartition(ctx, opts, side, p)
		result.Partitions = append(result.Partitions, stats)
		if err != nil {
			return fmt.Errorf("partition %s: %w", p.Name, err)
		}
	}
	return nil
}

// Discover lists the sample names in opts.ImageDir.
func (r *Runner) Discover(opts Options) ([]string, error) {
	if !r.Store.Exists(opts.ImageDir) {
		return nil, errors.New(errors.ErrCodeMissingPath, "image directory %s does not exist", opts.ImageDir)
	}
	if !r.Store.Exists(opts.MaskDir) {
		return nil, errors.New(errors.ErrCodeMissingPath, "mask directory %s does not exist", opts.MaskDir)
	}

	samples, err := r.Store.List(opts.ImageDir, opts.Extension)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyDataset, "no %s images in %s", opts.Extension, opts.ImageDir)
	}
	for _, s := range samples {
		if err := errors.ValidateSampleName(s); err != nil {
			return nil, err
		}
	}
	return samples, nil
}

// Probe loads one sample image and returns its side length after checking
// that every grid size fits it.
func (r *Runner) Probe(opts Options, sample string) (int, error) {
	img, err := r.Store.Load(filepath.Join(opts.ImageDir, sample))
	if err != nil {
		return 0, err
	}
	side, err := raster.Side(img)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", sample, err)
	}
	for _, g := range opts.GridSizes {
		if err := errors.ValidateGridFit(side, g); err != nil {
			return 0, err
		}
	}
	return side, nil
}

// partition splits samples with the seeded generator, or replays the split
// from opts.SplitFile. A replayed manifest is returned so the new manifest
// can record the seed and fractions that produced it.
func (r *Runner) partition(opts Options, samples []string, seed uint64) (split.Result, *Manifest, error) {
	if opts.SplitFile == "" {
		parts, err := split.Split(samples, opts.ValFraction, opts.TestFraction, split.NewRand(seed))
		return parts, nil, err
	}

	data, err := r.Store.ReadFile(opts.SplitFile)
	if err != nil {
		return split.Result{}, nil, err
	}
	m, err := DecodeManifest(data)
	if err != nil {
		return split.Result{}, nil, err
	}
	opts.Logger.Info("reusing split", "file", opts.SplitFile, "run", m.RunID, "seed", m.Seed)
	parts, err := m.Split(samples)
	if err != nil {
		return split.Result{}, nil, err
	}
	return parts, m, nil
}

// writeManifest saves the split manifest. Persist failures are logged and
// reported as false; any other error aborts the run.
func (r *Runner) writeManifest(ctx context.Context, opts Options, m Manifest) (bool, error) {
	path := Layout{Root: opts.DatasetRoot}.ManifestPath()
	data, err := m.Encode()
	if err == nil {
		err = r.Store.EnsureDir(opts.DatasetRoot)
	}
	if err == nil {
		err = r.Store.WriteFile(path, data)
	}
	if errors.IsFatal(err) {
		return false, err
	}
	if err != nil {
		opts.Logger.Error("write manifest", "path", path, "err", err)
		observability.Pipeline().OnPersistError(ctx, path, err)
		return false, nil
	}
	return true, nil
}

// emitPartition writes the grid encodings and all units of one partition.
func (r *Runner) emitPartition(ctx context.Context, opts Options, side int, p split.Partition) (PartitionStats, error) {
	start := time.Now()
	hooks := observability.Pipeline()
	layout := Layout{Root: opts.DatasetRoot}
	plan := Plan{
		Partition: p.Name,
		Samples:   p.Samples,
		Rotations: Rotations(p.Name, opts.RotateAugment),
		GridSizes: opts.GridSizes,
	}
	stats := PartitionStats{
		Name:      p.Name,
		Samples:   len(p.Samples),
		Rotations: plan.Rotations,
		Units:     plan.Len(),
	}

	hooks.OnPartitionStart(ctx, p.Name, len(p.Samples))
	opts.Logger.Info("emitting partition",
		"partition", p.Name,
		"samples", len(p.Samples),
		"rotations", plan.Rotations,
		"units", plan.Len())

	em := &emitter{
		runner: r,
		opts:   opts,
		layout: layout,
		plan:   plan,
		side:   side,
	}
	err := em.run(ctx)

	stats.Written = int(em.written.Load())
	stats.Failures = int(em.failures.Load())
	stats.Duration = time.Since(start)
	hooks.OnPartitionComplete(ctx, p.Name, stats.Written, stats.Duration, err)
	return stats, err
}

// emitter holds the per-partition state shared by worker goroutines.
type emitter struct {
	runner *Runner
	opts   Options
	layout Layout
	plan   Plan
	side   int

	written  atomic.Int64
	failures atomic.Int64
}

func (e *emitter) run(ctx context.Context) error {
	for _, dir := range e.layout.Dirs(e.plan.Partition, e.plan.GridSizes) {
		if err := e.runner.Store.EnsureDir(dir); err != nil {
			return fmt.Errorf("prepare directories: %w", err)
		}
	}

	for _, g := range e.plan.GridSizes {
		enc, err := grid.Encoding(e.side, g)
		if err != nil {
			return err
		}
		if _, err := e.save(ctx, e.layout.EncodingPath(e.plan.Partition, g), enc); err != nil {
			return err
		}
	}

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(e.opts.Workers)
	for i := range e.plan.Samples {
		if gctx.Err() != nil {
			break
		}
		group.Go(func() error {
			return e.emitSample(gctx, i)
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// emitSample loads one sample and writes all of its units.
func (e *emitter) emitSample(ctx context.Context, i int) error {
	name := e.plan.Samples[i]
	img, mask, err := e.load(name)
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}

	var (
		angle       = -1
		rotatedImg  image.Image
		rotatedMask *image.Gray
	)
	for u := range e.plan.SampleUnits(i) {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Rotation is the outer loop, so each angle is computed once.
		if u.Angle != angle {
			rotatedImg, err = e.runner.Transformer.Rotate(img, u.Angle)
			if err != nil {
				return fmt.Errorf("rotate %s by %d: %w", name, u.Angle, err)
			}
			m, err := e.runner.Transformer.Rotate(mask, u.Angle)
			if err != nil {
				return fmt.Errorf("rotate mask %s by %d: %w", name, u.Angle, err)
			}
			rotatedMask = raster.ToGray(m)
			angle = u.Angle
		}

		gt, err := grid.GroundTruth(rotatedMask, u.GridSize)
		if err != nil {
			return fmt.Errorf("ground truth %s at %dx%d: %w", name, u.GridSize, u.GridSize, err)
		}

		images, masks := e.layout.UnitPaths(u)
		ok := true
		for _, p := range images {
			saved, err := e.save(ctx, p, rotatedImg)
			if err != nil {
				return err
			}
			ok = saved && ok
		}
		for _, p := range masks {
			saved, err := e.save(ctx, p, gt)
			if err != nil {
				return err
			}
			ok = saved && ok
		}
		if ok {
			e.written.Add(1)
		}
		observability.Pipeline().OnUnitComplete(ctx, u.Partition, u.Index, ok)
	}

	e.opts.Logger.Debug("emitted sample",
		"partition", e.plan.Partition,
		"sample", name,
		"units", e.plan.PerSample())
	return nil
}

// load reads a sample image and its mask and checks their geometry.
func (e *emitter) load(name string) (image.Image, *image.Gray, error) {
	store := e.runner.Store
	img, err := store.Load(filepath.Join(e.opts.ImageDir, name))
	if err != nil {
		return nil, nil, err
	}
	mask, err := raster.LoadGray(store, filepath.Join(e.opts.MaskDir, name))
	if err != nil {
		return nil, nil, err
	}

	side, err := raster.Side(img)
	if err != nil {
		return nil, nil, err
	}
	if side != e.side {
		return nil, nil, errors.New(errors.ErrCodeSizeMismatch,
			"image side %d differs from dataset side %d", side, e.side)
	}
	if mb := mask.Bounds(); mb.Dx() != side || mb.Dy() != side {
		return nil, nil, errors.New(errors.ErrCodeSizeMismatch,
			"mask is %dx%d, image is %dx%d", mb.Dx(), mb.Dy(), side, side)
	}
	return img, mask, nil
}

// save writes one file. Persist failures are logged and counted; any
// other error is returned and aborts the partition.
func (e *emitter) save(ctx context.Context, path string, img image.Image) (bool, error) {
	err := e.runner.Store.Save(path, img)
	if errors.IsFatal(err) {
		return false, fmt.Errorf("save %s: %w", path, err)
	}
	if err != nil {
		e.failures.Add(1)
		e.opts.Logger.Error("persist failed", "path", path, "err", err)
		observability.Pipeline().OnPersistError(ctx, path, err)
		return false, nil
	}
	return true, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
