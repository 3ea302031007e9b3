package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/signalsfoundry/spectrum-dataset/core"
	"github.com/signalsfoundry/spectrum-dataset/internal/config"
	"github.com/signalsfoundry/spectrum-dataset/internal/dataset"
	"github.com/signalsfoundry/spectrum-dataset/internal/logging"
	"github.com/signalsfoundry/spectrum-dataset/internal/observability"
	"github.com/signalsfoundry/spectrum-dataset/model"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML run configuration (defaults to $CONFIG_FILE)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error(ctx, "failed to load configuration", logging.Err(err))
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	generatorMetrics, err := observability.NewGeneratorCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		os.Exit(1)
	}
	pathLossMetrics, err := observability.NewPathLossCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise path loss collector", logging.Err(err))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(cfg.MetricsAddr, generatorMetrics, log)

	var progress io.Writer
	if cfg.Progress {
		progress = os.Stdout
	}
	runCfg, err := buildRunConfig(cfg, progress, log)
	if err != nil {
		log.Error(ctx, "failed to prepare run", logging.Err(err))
		os.Exit(1)
	}

	orch, err := dataset.NewOrchestrator(runCfg, log,
		dataset.WithMetrics(generatorMetrics),
		dataset.WithPathLossMetrics(pathLossMetrics),
	)
	if err != nil {
		log.Error(ctx, "invalid run configuration", logging.Err(err))
		os.Exit(1)
	}

	sum, runErr := orch.Run(ctx)
	if progress != nil {
		fmt.Fprintln(progress)
	}

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = metricsSrv.Shutdown(shutdownCtx)
		cancel()
	}

	if runErr != nil {
		log.Error(ctx, "generation failed", logging.String("run_id", sum.RunID), logging.Err(runErr))
		observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)
		os.Exit(1)
	}
	log.Info(ctx, "generation complete",
		logging.String("run_id", sum.RunID),
		logging.String("dataset", sum.DatasetPath),
		logging.Int("written", sum.Written),
		logging.Int("failed", sum.Failed),
	)
}

func serveMetrics(addr string, collector *observability.GeneratorCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

// buildRunConfig turns a validated configuration into an orchestrator run.
func buildRunConfig(cfg config.Config, progress io.Writer, log logging.Logger) (dataset.Config, error) {
	shape := buildShape(cfg)

	propagation, err := buildModel(cfg, log)
	if err != nil {
		return dataset.Config{}, err
	}
	sensors, err := buildSensors(cfg, shape)
	if err != nil {
		return dataset.Config{}, err
	}
	policy, err := buildPowerPolicy(cfg.Power)
	if err != nil {
		return dataset.Config{}, err
	}

	return dataset.Config{
		Samples:     cfg.Samples,
		Workers:     cfg.Workers,
		OutputDir:   cfg.Output.Dir,
		DatasetDir:  cfg.Output.DatasetDir,
		ShardPrefix: cfg.Output.ShardPrefix,
		Engine: core.Engine{
			Model:               propagation,
			CellSize:            cfg.CellSize,
			EmitSensorLocations: cfg.EmitSensorLocations,
			NoiseFloor:          cfg.NoiseFloor,
			Selector:            buildSelector(cfg.Selector),
		},
		Shape:   shape,
		Sensors: sensors,
		Params: dataset.SampleParams{
			MinTX:           cfg.MinTX,
			MaxTX:           cfg.MaxTX,
			TXHeight:        cfg.TXHeight,
			ChangingSensors: cfg.ChangingSensors,
			Power:           policy,
		},
		CacheOutputPath: cfg.Model.CacheOutputPath,
		Seed:            cfg.Seed,
		Progress:        progress,
	}, nil
}

func buildShape(cfg config.Config) core.Shape {
	f := cfg.Field
	if f.Shape == "rectangle" {
		if cfg.Seed != 0 {
			return core.NewRectangleWithSeed(f.Width, f.Height, cfg.Seed)
		}
		return core.NewRectangle(f.Width, f.Height)
	}
	if cfg.Seed != 0 {
		return core.NewSquareWithSeed(f.Width, cfg.Seed)
	}
	return core.NewSquare(f.Width)
}

func buildModel(cfg config.Config, log logging.Logger) (core.PropagationModel, error) {
	m := cfg.Model
	switch m.Kind {
	case "log_distance":
		if m.NoiseStd > 0 {
			seed := cfg.Seed
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			return core.NewNoisyLogDistance(m.Alpha, m.NoiseStd, seed), nil
		}
		return core.NewLogDistance(m.Alpha), nil
	case "free_space":
		return &core.FreeSpace{FrequencyGHz: m.FrequencyGHz}, nil
	case "terrain":
		cache, err := loadCache(m.CachePath, log)
		if err != nil {
			return nil, err
		}
		var runner core.TerrainRunner
		if m.TerrainBinary != "" {
			runner = &core.CommandRunner{
				Binary:  m.TerrainBinary,
				Args:    m.TerrainArgs,
				Dir:     m.TerrainDir,
				Timeout: m.TerrainTimeout,
			}
		}
		return core.NewTerrain(runner, cache), nil
	default:
		return nil, fmt.Errorf("unknown model kind %q", m.Kind)
	}
}

// loadCache reads a previously persisted path loss cache. A missing file
// starts the run cold.
func loadCache(path string, log logging.Logger) (map[string]float64, error) {
	if path == "" {
		return nil, nil
	}
	cache, err := core.LoadPathLossCache(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Info(context.Background(), "no path loss cache found; starting cold", logging.String("path", path))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load path loss cache: %w", err)
	}
	log.Info(context.Background(), "path loss cache loaded", logging.String("path", path), logging.Int("entries", len(cache)))
	return cache, nil
}

// buildSensors loads the layout for the configured field and sensor count,
// or draws one from the shape when no layout directory is configured.
func buildSensors(cfg config.Config, shape core.Shape) ([]*model.SpectrumSensor, error) {
	s := cfg.Sensors
	if s.Dir != "" {
		return core.LoadSensorsFile(
			core.SensorLayoutPath(s.Dir, shape.Name(), s.Count),
			core.SensorDefaults{Height: s.Height, Cost: s.Cost, Std: s.Std},
		)
	}
	points, err := shape.Points(s.Count)
	if err != nil {
		return nil, fmt.Errorf("place sensors: %w", err)
	}
	sensors := make([]*model.SpectrumSensor, len(points))
	for i, pt := range points {
		sensors[i] = model.NewSpectrumSensor(model.Element{Location: pt, Height: s.Height}, s.Cost, s.Std)
	}
	return sensors, nil
}

func buildSelector(name string) core.TXSelector {
	if name == "most_isolated" {
		return core.MostIsolatedTX
	}
	return core.StrongestTX
}

func buildPowerPolicy(p config.PowerConfig) (dataset.PowerPolicy, error) {
	switch p.Policy {
	case "palette":
		return dataset.PalettePolicy{Palette: p.Palette}, nil
	case "indexed":
		return dataset.IndexedPalettePolicy{Palette: p.Palette}, nil
	case "uniform":
		return dataset.UniformPolicy{Min: p.Min, Max: p.Max}, nil
	default:
		return nil, fmt.Errorf("unknown power policy %q", p.Policy)
	}
}
