package dataset

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/spectrum-dataset/core"
	"github.com/signalsfoundry/spectrum-dataset/internal/logging"
	"github.com/signalsfoundry/spectrum-dataset/internal/observability"
	"github.com/signalsfoundry/spectrum-dataset/model"
	"github.com/signalsfoundry/spectrum-dataset/timectrl"
)

// SampleParams controls how each random scenario is built.
type SampleParams struct {
	// MinTX and MaxTX bound the transmitter count, drawn uniformly per sample.
	MinTX int
	MaxTX int

	// TXHeight is the antenna height (metres) of every transmitter.
	TXHeight float64

	// ChangingSensors relocates the sensors for every sample, reusing the
	// height, cost and std of the first sensor of the layout.
	ChangingSensors bool

	// Power assigns transmit powers. Nil means PalettePolicy over
	// DefaultPalette.
	Power PowerPolicy
}

// MetricsRecorder receives per-sample and per-run generation metrics.
type MetricsRecorder interface {
	ObserveSample(worker int, d time.Duration, err error)
	WorkerStarted()
	WorkerFinished()
	SetDatasetSamples(n int)
}

// WorkerResult is what a worker hands back to the orchestrator at join time.
type WorkerResult struct {
	ID        int
	ShardPath string

	Requested int
	Written   int
	Failed    int

	// Telemetry is the worker model's lookup counters; HasTelemetry is false
	// when the model does not implement core.TelemetrySource.
	Telemetry    core.Telemetry
	HasTelemetry bool

	Duration time.Duration
}

// Worker generates SampleCount scenarios into its own shard file. A worker
// owns every mutable object it touches (engine model, shape, sensors, rng),
// so many workers can run in parallel without locks.
type Worker struct {
	ID          int
	SampleCount int
	ShardPath   string

	Engine  *core.Engine
	Shape   core.Shape
	Sensors []*model.SpectrumSensor
	Params  SampleParams
	Rand    *rand.Rand

	// Log is the base logger. Nil means the logger carried by the context
	// passed to Run.
	Log      logging.Logger
	Metrics  MetricsRecorder
	Clock    timectrl.Clock
	Progress io.Writer
}

// Run generates every sample, writing one record per line. Per-sample
// failures, panics included, are logged and counted in WorkerResult.Failed;
// Written + Failed always equals SampleCount when Run returns without error.
// An error is returned only when the shard cannot be opened, written or
// flushed; it wraps ErrSetup or ErrShardIO.
func (w *Worker) Run(ctx context.Context) (res WorkerResult, err error) {
	ctx, log := logging.WithWorkerLogger(ctx, w.Log, w.ID)
	ctx, span := observability.StartSpan(ctx, "dataset.worker", attribute.Int("samples", w.SampleCount))
	defer func() { observability.EndSpan(span, err) }()

	metrics := w.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}
	metrics.WorkerStarted()
	defer metrics.WorkerFinished()

	clock := w.Clock
	if clock == nil {
		clock = timectrl.SystemClock{}
	}
	start := clock.Now()

	res = WorkerResult{ID: w.ID, ShardPath: w.ShardPath, Requested: w.SampleCount}

	if w.Engine == nil || w.Engine.Model == nil || w.Shape == nil {
		return res, fmt.Errorf("%w: worker %d: engine, model and shape are required", ErrSetup, w.ID)
	}
	if w.Rand == nil {
		w.Rand = rand.New(rand.NewSource(start.UnixNano()))
	}

	shard, err := openShard(w.ShardPath)
	if err != nil {
		log.Error(ctx, "open shard failed", logging.String("path", w.ShardPath), logging.Err(err))
		return res, fmt.Errorf("%w: worker %d: open shard: %w", ErrSetup, w.ID, err)
	}

	log.Debug(ctx, "worker started", logging.Int("samples", w.SampleCount), logging.String("shard", w.ShardPath))

	bar := newProgressBar(w.Progress, w.SampleCount)
	for i := 1; i <= w.SampleCount; i++ {
		sampleStart := clock.Now()
		line, sampleErr := w.safeSample(i)
		if sampleErr == nil {
			if werr := shard.WriteLine(line); werr != nil {
				_ = shard.Close()
				log.Error(ctx, "shard write failed", logging.String("path", w.ShardPath), logging.Err(werr))
				return res, fmt.Errorf("%w: worker %d: write shard: %w", ErrShardIO, w.ID, werr)
			}
			res.Written++
		} else {
			res.Failed++
			log.Warn(ctx, "sample skipped", logging.Int("sample", i), logging.Err(sampleErr))
		}
		metrics.ObserveSample(w.ID, timectrl.Since(clock, sampleStart), sampleErr)
		bar.Update(i, timectrl.Since(clock, start))
	}

	if cerr := shard.Close(); cerr != nil {
		log.Error(ctx, "shard flush failed", logging.String("path", w.ShardPath), logging.Err(cerr))
		return res, fmt.Errorf("%w: worker %d: %w", ErrShardIO, w.ID, cerr)
	}

	if src, ok := w.Engine.Model.(core.TelemetrySource); ok {
		res.Telemetry = src.Telemetry()
		res.HasTelemetry = true
	}
	res.Duration = timectrl.Since(clock, start)

	log.Info(ctx, "worker finished",
		logging.Int("written", res.Written),
		logging.Int("failed", res.Failed),
		logging.Duration("duration", res.Duration),
	)
	return res, nil
}

// safeSample builds and scores one scenario, converting errors and panics
// into a *SampleError.
func (w *Worker) safeSample(index int) (line string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &SampleError{Worker: w.ID, Sample: index, Err: fmt.Errorf("%w: %v", ErrSamplePanic, rec)}
		}
	}()
	line, err = w.sample()
	if err != nil {
		return "", &SampleError{Worker: w.ID, Sample: index, Err: err}
	}
	return line, nil
}

func (w *Worker) sample() (string, error) {
	p := w.Params
	if p.MaxTX < p.MinTX || p.MinTX < 0 {
		return "", fmt.Errorf("invalid transmitter range [%d, %d]", p.MinTX, p.MaxTX)
	}
	n := p.MinTX + w.Rand.Intn(p.MaxTX-p.MinTX+1)

	points, err := w.Shape.Points(n)
	if err != nil {
		return "", fmt.Errorf("place transmitters: %w", err)
	}
	policy := p.Power
	if policy == nil {
		policy = PalettePolicy{Palette: DefaultPalette}
	}
	powers, err := policy.Powers(w.Rand, n)
	if err != nil {
		return "", fmt.Errorf("assign powers: %w", err)
	}

	txs := make([]*model.TX, n)
	for i := range txs {
		txs[i] = &model.TX{
			Element: model.Element{Location: points[i], Height: p.TXHeight},
			Power:   powers[i],
		}
	}

	sensors := w.Sensors
	if p.ChangingSensors {
		if sensors, err = w.relocateSensors(); err != nil {
			return "", err
		}
	}

	return w.Engine.Score(&core.Scenario{TXs: txs, Sensors: sensors})
}

// relocateSensors draws a fresh layout of the same size, copying height,
// cost and std from the first template sensor.
func (w *Worker) relocateSensors() ([]*model.SpectrumSensor, error) {
	if len(w.Sensors) == 0 {
		return nil, nil
	}
	points, err := w.Shape.Points(len(w.Sensors))
	if err != nil {
		return nil, fmt.Errorf("place sensors: %w", err)
	}
	tmpl := w.Sensors[0]
	out := make([]*model.SpectrumSensor, len(points))
	for i, pt := range points {
		out[i] = model.NewSpectrumSensor(
			model.Element{Location: pt, Height: tmpl.RX.Element.Height},
			tmpl.Cost,
			tmpl.Std,
		)
	}
	return out, nil
}

type noopMetrics struct{}

func (noopMetrics) ObserveSample(int, time.Duration, error) {}
func (noopMetrics) WorkerStarted()                          {}
func (noopMetrics) WorkerFinished()                         {}
func (noopMetrics) SetDatasetSamples(int)                   {}
