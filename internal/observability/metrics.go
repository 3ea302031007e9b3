package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GeneratorCollector bundles Prometheus metrics for dataset generation runs
// and exposes them over HTTP.
type GeneratorCollector struct {
	gatherer prometheus.Gatherer

	SamplesWritten *prometheus.CounterVec
	SamplesFailed  *prometheus.CounterVec
	SampleDuration *prometheus.HistogramVec

	ActiveWorkers  prometheus.Gauge
	DatasetSamples prometheus.Gauge
}

// NewGeneratorCollector registers generation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewGeneratorCollector(reg prometheus.Registerer) (*GeneratorCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	written := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dataset_samples_written_total",
		Help: "Total number of records written to shard files, labeled by worker.",
	}, []string{"worker"})
	written, err := registerCounterVec(reg, written, "dataset_samples_written_total")
	if err != nil {
		return nil, err
	}

	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dataset_samples_failed_total",
		Help: "Total number of samples skipped after an error or panic, labeled by worker.",
	}, []string{"worker"})
	failed, err = registerCounterVec(reg, failed, "dataset_samples_failed_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dataset_sample_duration_seconds",
		Help:    "Time to build, score and write one sample.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	}, []string{"worker"})
	durations, err = registerHistogramVec(reg, durations, "dataset_sample_duration_seconds")
	if err != nil {
		return nil, err
	}

	active, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dataset_active_workers",
		Help: "Number of sample generation workers currently running.",
	}), "dataset_active_workers")
	if err != nil {
		return nil, err
	}
	size, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dataset_samples",
		Help: "Number of records in the most recently merged dataset.",
	}), "dataset_samples")
	if err != nil {
		return nil, err
	}

	return &GeneratorCollector{
		gatherer:       gatherer,
		SamplesWritten: written,
		SamplesFailed:  failed,
		SampleDuration: durations,
		ActiveWorkers:  active,
		DatasetSamples: size,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *GeneratorCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ObserveSample records the outcome and duration of one sample.
func (c *GeneratorCollector) ObserveSample(worker int, d time.Duration, err error) {
	if c == nil {
		return
	}
	label := strconv.Itoa(worker)
	if err != nil {
		if c.SamplesFailed != nil {
			c.SamplesFailed.WithLabelValues(label).Inc()
		}
	} else if c.SamplesWritten != nil {
		c.SamplesWritten.WithLabelValues(label).Inc()
	}
	if c.SampleDuration != nil {
		c.SampleDuration.WithLabelValues(label).Observe(d.Seconds())
	}
}

// WorkerStarted increments the active worker gauge.
func (c *GeneratorCollector) WorkerStarted() {
	if c == nil || c.ActiveWorkers == nil {
		return
	}
	c.ActiveWorkers.Inc()
}

// WorkerFinished decrements the active worker gauge.
func (c *GeneratorCollector) WorkerFinished() {
	if c == nil || c.ActiveWorkers == nil {
		return
	}
	c.ActiveWorkers.Dec()
}

// SetDatasetSamples records the size of the merged dataset.
func (c *GeneratorCollector) SetDatasetSamples(n int) {
	if c == nil || c.DatasetSamples == nil {
		return
	}
	c.DatasetSamples.Set(float64(n))
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
