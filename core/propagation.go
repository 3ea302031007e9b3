package core

import (
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/spectrum-dataset/model"
)

// PropagationModel produces the path loss (dB) between a transmitting and a
// receiving element. Locations are already scaled to metres by the caller.
//
// Self-loss contract: the engine injects the noise floor as a virtual emitter
// co-located with each sensor, so PathLoss(e, e) is part of the model's
// behaviour. Every model in this package returns exactly 0 at zero distance.
type PropagationModel interface {
	PathLoss(tx, rx model.Element) (float64, error)
	// Descriptor names the model and its parameters for dataset file names,
	// e.g. "log_alpha2.0_noisy_std1.0".
	Descriptor() string
	// Clone returns an independent copy. Models carrying caches or random
	// sources must not share mutable state with the copy.
	Clone() PropagationModel
}

// TelemetrySource is implemented by models that count lookups.
type TelemetrySource interface {
	Telemetry() Telemetry
}

// CacheSource is implemented by models whose cache should be persisted once
// a run completes.
type CacheSource interface {
	CacheEntries() map[string]float64
}

// Telemetry counts cache fetches and external executions of a model.
type Telemetry struct {
	Fetches    int64
	FetchTime  time.Duration
	Executions int64
	ExecTime   time.Duration
}

// Add returns the field-wise sum of t and o.
func (t Telemetry) Add(o Telemetry) Telemetry {
	return Telemetry{
		Fetches:    t.Fetches + o.Fetches,
		FetchTime:  t.FetchTime + o.FetchTime,
		Executions: t.Executions + o.Executions,
		ExecTime:   t.ExecTime + o.ExecTime,
	}
}

// PerFetch is the mean duration of one cache fetch, 0 without fetches.
func (t Telemetry) PerFetch() time.Duration {
	if t.Fetches == 0 {
		return 0
	}
	return t.FetchTime / time.Duration(t.Fetches)
}

// PerExecution is the mean duration of one external execution, 0 without
// executions.
func (t Telemetry) PerExecution() time.Duration {
	if t.Executions == 0 {
		return 0
	}
	return t.ExecTime / time.Duration(t.Executions)
}

// formatDecimal prints v the way the dataset tooling always has: shortest
// representation, but always with a fractional part ("2" -> "2.0").
func formatDecimal(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".nI") {
		s += ".0"
	}
	return s
}
