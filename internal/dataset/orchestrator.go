package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/signalsfoundry/spectrum-dataset/core"
	"github.com/signalsfoundry/spectrum-dataset/internal/logging"
	"github.com/signalsfoundry/spectrum-dataset/internal/observability"
	"github.com/signalsfoundry/spectrum-dataset/model"
	"github.com/signalsfoundry/spectrum-dataset/timectrl"
)

// Config is a fully resolved generation run.
type Config struct {
	Samples int
	Workers int

	// OutputDir holds the shards while workers run. DatasetDir receives the
	// merged file and defaults to OutputDir.
	OutputDir   string
	DatasetDir  string
	ShardPrefix string

	// Engine is the template every worker copies; its Model is cloned per
	// worker.
	Engine  core.Engine
	Shape   core.Shape
	Sensors []*model.SpectrumSensor
	Params  SampleParams

	// CacheOutputPath receives the union of worker path loss caches when the
	// model implements core.CacheSource. Empty disables persistence.
	CacheOutputPath string

	// Seed seeds the per-worker random sources. Zero seeds from the clock.
	Seed int64

	// Progress receives worker progress bars. Nil disables them.
	Progress io.Writer
}

// Summary reports the outcome of a run.
type Summary struct {
	RunID       string
	Requested   int
	Written     int
	Failed      int
	Workers     []WorkerResult
	Telemetry   core.Telemetry
	CacheSize   int
	DatasetPath string
	Duration    time.Duration
}

// PathLossRecorder receives aggregated propagation model statistics.
type PathLossRecorder interface {
	RecordLookups(fetches, executions int64, perExecution time.Duration)
	SetCacheEntries(n int)
}

// Orchestrator partitions a run across workers, runs them concurrently and
// merges their shards into one dataset file.
type Orchestrator struct {
	cfg      Config
	log      logging.Logger
	metrics  MetricsRecorder
	pathLoss PathLossRecorder
	clock    timectrl.Clock
}

// OrchestratorOption customises Orchestrator construction.
type OrchestratorOption func(*Orchestrator)

// WithMetrics attaches a recorder for sample and worker metrics.
func WithMetrics(m MetricsRecorder) OrchestratorOption {
	return func(o *Orchestrator) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithPathLossMetrics attaches a recorder for aggregated model telemetry.
func WithPathLossMetrics(p PathLossRecorder) OrchestratorOption {
	return func(o *Orchestrator) {
		if p != nil {
			o.pathLoss = p
		}
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c timectrl.Clock) OrchestratorOption {
	return func(o *Orchestrator) {
		if c != nil {
			o.clock = c
		}
	}
}

// NewOrchestrator validates cfg and returns an orchestrator for it. Errors
// wrap ErrSetup.
func NewOrchestrator(cfg Config, log logging.Logger, opts ...OrchestratorOption) (*Orchestrator, error) {
	if log == nil {
		log = logging.Noop()
	}
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("%w: workers must be positive, got %d", ErrSetup, cfg.Workers)
	}
	if cfg.Samples < 0 {
		return nil, fmt.Errorf("%w: samples must not be negative, got %d", ErrSetup, cfg.Samples)
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("%w: output directory is required", ErrSetup)
	}
	if cfg.Engine.Model == nil {
		return nil, fmt.Errorf("%w: propagation model is required", ErrSetup)
	}
	if cfg.Shape == nil {
		return nil, fmt.Errorf("%w: field shape is required", ErrSetup)
	}
	if cfg.Params.MinTX < 0 || cfg.Params.MaxTX < cfg.Params.MinTX {
		return nil, fmt.Errorf("%w: invalid transmitter range [%d, %d]", ErrSetup, cfg.Params.MinTX, cfg.Params.MaxTX)
	}
	if cfg.DatasetDir == "" {
		cfg.DatasetDir = cfg.OutputDir
	}
	if cfg.ShardPrefix == "" {
		cfg.ShardPrefix = DefaultShardPrefix
	}

	o := &Orchestrator{
		cfg:      cfg,
		log:      log,
		metrics:  noopMetrics{},
		pathLoss: noopPathLoss{},
		clock:    timectrl.SystemClock{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run generates the dataset. A worker that fails to open or write its shard
// does not stop the others; its error is returned after the remaining shards
// are merged. Merge problems that leave shards on disk (ErrNoShards,
// ErrMergeDestination) are logged as warnings and Summary.DatasetPath stays
// empty.
func (o *Orchestrator) Run(ctx context.Context) (sum Summary, err error) {
	ctx, log := logging.WithRunLogger(ctx, o.log)
	runID := logging.RunIDFromContext(ctx)
	ctx, span := observability.StartSpan(ctx, "dataset.run",
		attribute.Int("samples", o.cfg.Samples),
		attribute.Int("workers", o.cfg.Workers),
		attribute.String("model", o.cfg.Engine.Model.Descriptor()),
	)
	defer func() { observability.EndSpan(span, err) }()

	start := o.clock.Now()
	sum = Summary{RunID: runID, Requested: o.cfg.Samples}

	if err := os.MkdirAll(o.cfg.OutputDir, 0o755); err != nil {
		return sum, fmt.Errorf("%w: create output directory: %w", ErrSetup, err)
	}

	shares, err := Partition(o.cfg.Samples, o.cfg.Workers)
	if err != nil {
		return sum, err
	}

	log.Info(ctx, "generation started",
		logging.Int("samples", o.cfg.Samples),
		logging.Int("workers", o.cfg.Workers),
		logging.String("model", o.cfg.Engine.Model.Descriptor()),
		logging.String("shape", o.cfg.Shape.Name()),
	)

	workers := o.buildWorkers(runID, shares, start)
	results := make([]WorkerResult, len(workers))

	var g errgroup.Group
	for i, w := range workers {
		g.Go(func() error {
			res, err := w.Run(ctx)
			results[i] = res
			return err
		})
	}
	workerErr := g.Wait()
	if workerErr != nil {
		log.Error(ctx, "worker failed", logging.Err(workerErr))
	}

	sum.Workers = results
	for _, r := range results {
		sum.Written += r.Written
		sum.Failed += r.Failed
	}

	o.reportTelemetry(ctx, log, &sum)
	o.persistCache(ctx, log, workers, &sum)

	mergeErr := o.merge(ctx, log, runID, start, &sum)

	sum.Duration = timectrl.Since(o.clock, start)
	log.Info(ctx, "generation finished",
		logging.Int("written", sum.Written),
		logging.Int("failed", sum.Failed),
		logging.String("dataset", sum.DatasetPath),
		logging.String("duration", formatHMS(sum.Duration)),
	)

	return sum, errors.Join(workerErr, mergeErr)
}

// buildWorkers gives every worker its own copy of the model, shape, sensors
// and random source. Workers log through the run logger on the context
// passed to Worker.Run.
func (o *Orchestrator) buildWorkers(runID string, shares []int, start time.Time) []*Worker {
	seed := o.cfg.Seed
	if seed == 0 {
		seed = start.UnixNano()
	}
	seeds := rand.New(rand.NewSource(seed))

	var progress io.Writer
	if o.cfg.Progress != nil {
		progress = &syncWriter{w: o.cfg.Progress}
	}

	workers := make([]*Worker, len(shares))
	for i, n := range shares {
		engine := o.cfg.Engine
		engine.Model = o.cfg.Engine.Model.Clone()
		workers[i] = &Worker{
			ID:          i,
			SampleCount: n,
			ShardPath:   filepath.Join(o.cfg.OutputDir, ShardName(o.cfg.ShardPrefix, runID, i)),
			Engine:      &engine,
			Shape:       o.cfg.Shape.Clone(),
			Sensors:     model.CloneSensors(o.cfg.Sensors),
			Params:      o.cfg.Params,
			Rand:        rand.New(rand.NewSource(seeds.Int63())),
			Metrics:     o.metrics,
			Clock:       o.clock,
			Progress:    progress,
		}
	}
	return workers
}

func (o *Orchestrator) reportTelemetry(ctx context.Context, log logging.Logger, sum *Summary) {
	var total core.Telemetry
	reported := false
	for _, r := range sum.Workers {
		if r.HasTelemetry {
			total = total.Add(r.Telemetry)
			reported = true
		}
	}
	if !reported {
		return
	}
	sum.Telemetry = total
	o.pathLoss.RecordLookups(total.Fetches, total.Executions, total.PerExecution())

	hitRatio := 0.0
	if lookups := total.Fetches + total.Executions; lookups > 0 {
		hitRatio = float64(total.Fetches) / float64(lookups)
	}
	log.Info(ctx, "path loss telemetry",
		logging.Int64("fetches", total.Fetches),
		logging.Duration("per_fetch", total.PerFetch()),
		logging.Int64("executions", total.Executions),
		logging.Duration("per_execution", total.PerExecution()),
		logging.Float64("cache_hit_ratio", hitRatio),
	)
}

// persistCache unions the worker caches and saves them. Failure only costs
// future runs their warm cache, so it is logged rather than returned.
func (o *Orchestrator) persistCache(ctx context.Context, log logging.Logger, workers []*Worker, sum *Summary) {
	merged := make(map[string]float64)
	cached := false
	for _, w := range workers {
		src, ok := w.Engine.Model.(core.CacheSource)
		if !ok {
			continue
		}
		cached = true
		for k, v := range src.CacheEntries() {
			merged[k] = v
		}
	}
	if !cached {
		return
	}
	sum.CacheSize = len(merged)
	o.pathLoss.SetCacheEntries(len(merged))
	if o.cfg.CacheOutputPath == "" {
		return
	}
	if err := core.SavePathLossCache(o.cfg.CacheOutputPath, merged); err != nil {
		log.Warn(ctx, "saving path loss cache failed", logging.String("path", o.cfg.CacheOutputPath), logging.Err(err))
		return
	}
	log.Info(ctx, "path loss cache saved", logging.String("path", o.cfg.CacheOutputPath), logging.Int("entries", len(merged)))
}

func (o *Orchestrator) merge(ctx context.Context, log logging.Logger, runID string, start time.Time, sum *Summary) error {
	name := DatasetName{
		Samples:         o.cfg.Samples,
		MinTX:           o.cfg.Params.MinTX,
		MaxTX:           o.cfg.Params.MaxTX,
		Sensors:         len(o.cfg.Sensors),
		Shape:           o.cfg.Shape.Name(),
		ModelDescriptor: o.cfg.Engine.Model.Descriptor(),
		CreatedAt:       start,
	}
	dest := filepath.Join(o.cfg.DatasetDir, name.FileName())

	res, err := MergeShards(ctx, log, o.cfg.OutputDir, shardPrefix(o.cfg.ShardPrefix, runID)+"_", dest)
	switch {
	case errors.Is(err, ErrNoShards), errors.Is(err, ErrMergeDestination):
		log.Warn(ctx, "merge skipped; shards left in place", logging.String("dir", o.cfg.OutputDir), logging.Err(err))
		return nil
	case err != nil:
		return fmt.Errorf("merge dataset: %w", err)
	}

	sum.DatasetPath = res.Path
	o.metrics.SetDatasetSamples(res.Lines)
	log.Info(ctx, "dataset written", logging.String("path", res.Path), logging.Int("shards", res.Shards), logging.Int("lines", res.Lines))
	return nil
}

type noopPathLoss struct{}

func (noopPathLoss) RecordLookups(int64, int64, time.Duration) {}
func (noopPathLoss) SetCacheEntries(int)                       {}
