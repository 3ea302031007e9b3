package core

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/spectrum-dataset/model"
)

// TerrainRunner computes a terrain-aware path loss for one tx/rx pair, usually
// by calling out to an external propagation tool.
type TerrainRunner interface {
	Loss(ctx context.Context, tx, rx model.Element) (float64, error)
}

// CommandRunner runs an external binary once per lookup. The binary receives
// the fixed Args followed by tx x, y, height and rx x, y, height (metres) and
// must print the loss in dB as the last whitespace-separated token on stdout.
type CommandRunner struct {
	Binary  string
	Args    []string
	Dir     string
	Timeout time.Duration
}

// Loss implements TerrainRunner.
func (r *CommandRunner) Loss(ctx context.Context, tx, rx model.Element) (float64, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, r.Args...),
		ftoa(tx.Location.X), ftoa(tx.Location.Y), ftoa(tx.Height),
		ftoa(rx.Location.X), ftoa(rx.Location.Y), ftoa(rx.Height),
	)
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Dir = r.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("terrain command %s: %w (stderr: %s)", r.Binary, err, strings.TrimSpace(stderr.String()))
	}

	fields := strings.Fields(stdout.String())
	if len(fields) == 0 {
		return 0, fmt.Errorf("terrain command %s: empty output", r.Binary)
	}
	loss, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return 0, fmt.Errorf("terrain command %s: parse loss: %w", r.Binary, err)
	}
	return loss, nil
}

// Terrain is a terrain-database backed model. Losses are memoised per element
// pair; misses go to the runner. Each instance owns its cache and counters,
// so clones handed to parallel workers never contend.
type Terrain struct {
	runner    TerrainRunner
	cache     map[string]float64
	telemetry Telemetry
	now       func() time.Time
}

// NewTerrain builds a model around runner, seeded with a copy of cache
// (which may be nil).
func NewTerrain(runner TerrainRunner, cache map[string]float64) *Terrain {
	t := &Terrain{
		runner: runner,
		cache:  make(map[string]float64, len(cache)),
		now:    time.Now,
	}
	for k, v := range cache {
		t.cache[k] = v
	}
	return t
}

// PathLoss implements PropagationModel. Co-located elements are lossless and
// never reach the runner.
func (t *Terrain) PathLoss(tx, rx model.Element) (float64, error) {
	if tx == rx {
		return 0, nil
	}

	key := terrainKey(tx, rx)
	start := t.now()
	if loss, ok := t.cache[key]; ok {
		t.telemetry.Fetches++
		t.telemetry.FetchTime += t.now().Sub(start)
		return loss, nil
	}

	if t.runner == nil {
		return 0, fmt.Errorf("terrain: no cached loss for %s and no runner configured", key)
	}
	loss, err := t.runner.Loss(context.Background(), tx, rx)
	if err != nil {
		return 0, err
	}
	t.telemetry.Executions++
	t.telemetry.ExecTime += t.now().Sub(start)
	t.cache[key] = loss
	return loss, nil
}

// Descriptor implements PropagationModel.
func (t *Terrain) Descriptor() string { return "terrain" }

// Clone implements PropagationModel. The copy starts with the current cache
// contents and zeroed telemetry.
func (t *Terrain) Clone() PropagationModel {
	cp := NewTerrain(t.runner, t.cache)
	cp.now = t.now
	return cp
}

// Telemetry implements TelemetrySource.
func (t *Terrain) Telemetry() Telemetry { return t.telemetry }

// CacheEntries implements CacheSource. The returned map is a copy.
func (t *Terrain) CacheEntries() map[string]float64 {
	out := make(map[string]float64, len(t.cache))
	for k, v := range t.cache {
		out[k] = v
	}
	return out
}

func terrainKey(tx, rx model.Element) string {
	return strings.Join([]string{
		ftoa(tx.Location.X), ftoa(tx.Location.Y), ftoa(tx.Height),
		ftoa(rx.Location.X), ftoa(rx.Location.Y), ftoa(rx.Height),
	}, "_")
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
