package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PathLossCollector exposes propagation model lookup metrics aggregated from
// worker telemetry at the end of a run.
type PathLossCollector struct {
	CacheFetches      prometheus.Counter
	Executions        prometheus.Counter
	ExecutionDuration prometheus.Histogram
	CacheEntries      prometheus.Gauge
	CacheHitRatio     prometheus.Gauge
}

// NewPathLossCollector registers path loss metrics against the provided registerer.
func NewPathLossCollector(reg prometheus.Registerer) (*PathLossCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	fetches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pathloss_cache_fetches_total",
		Help: "Path loss lookups answered from the model cache.",
	})
	fetches, err := registerCounter(reg, fetches, "pathloss_cache_fetches_total")
	if err != nil {
		return nil, err
	}

	executions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pathloss_executions_total",
		Help: "Path loss lookups that required an external computation.",
	})
	executions, err = registerCounter(reg, executions, "pathloss_executions_total")
	if err != nil {
		return nil, err
	}

	execHistogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pathloss_execution_duration_seconds",
		Help:    "Mean duration of external path loss computations, observed once per run.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})
	execHistogram, err = registerHistogram(reg, execHistogram, "pathloss_execution_duration_seconds")
	if err != nil {
		return nil, err
	}

	entries := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pathloss_cache_entries",
		Help: "Number of entries in the persisted path loss cache.",
	})
	entries, err = registerGauge(reg, entries, "pathloss_cache_entries")
	if err != nil {
		return nil, err
	}

	ratio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pathloss_cache_hit_ratio",
		Help: "Share of path loss lookups served from the cache during the last run.",
	})
	ratio, err = registerGauge(reg, ratio, "pathloss_cache_hit_ratio")
	if err != nil {
		return nil, err
	}

	return &PathLossCollector{
		CacheFetches:      fetches,
		Executions:        executions,
		ExecutionDuration: execHistogram,
		CacheEntries:      entries,
		CacheHitRatio:     ratio,
	}, nil
}

// RecordLookups adds a run's aggregated lookup counts and mean execution
// time.
func (c *PathLossCollector) RecordLookups(fetches, executions int64, perExecution time.Duration) {
	if c == nil {
		return
	}
	if c.CacheFetches != nil && fetches > 0 {
		c.CacheFetches.Add(float64(fetches))
	}
	if c.Executions != nil && executions > 0 {
		c.Executions.Add(float64(executions))
	}
	if c.ExecutionDuration != nil && executions > 0 {
		c.ExecutionDuration.Observe(perExecution.Seconds())
	}
	if c.CacheHitRatio != nil && fetches+executions > 0 {
		c.SetCacheHitRatio(float64(fetches) / float64(fetches+executions))
	}
}

// SetCacheEntries updates the persisted cache size gauge.
func (c *PathLossCollector) SetCacheEntries(n int) {
	if c == nil || c.CacheEntries == nil {
		return
	}
	c.CacheEntries.Set(float64(n))
}

// SetCacheHitRatio sets the cache hit ratio, clamped to [0, 1].
func (c *PathLossCollector) SetCacheHitRatio(ratio float64) {
	if c == nil || c.CacheHitRatio == nil {
		return
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	c.CacheHitRatio.Set(ratio)
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
