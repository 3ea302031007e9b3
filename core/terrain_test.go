package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/signalsfoundry/spectrum-dataset/model"
)

type fakeTerrainRunner struct {
	loss  float64
	err   error
	calls int
}

func (r *fakeTerrainRunner) Loss(_ context.Context, _, _ model.Element) (float64, error) {
	r.calls++
	return r.loss, r.err
}

// steppingClock advances by step on every call.
func steppingClock(step time.Duration) func() time.Time {
	t := time.Unix(0, 0)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func TestTerrain_MissThenHit(t *testing.T) {
	runner := &fakeTerrainRunner{loss: 77}
	m := NewTerrain(runner, nil)
	m.now = steppingClock(time.Millisecond)

	a, b := elemAt(1, 2), elemAt(3, 4)
	for i := 0; i < 3; i++ {
		loss, err := m.PathLoss(a, b)
		if err != nil {
			t.Fatalf("PathLoss: %v", err)
		}
		if loss != 77 {
			t.Fatalf("loss = %v", loss)
		}
	}

	if runner.calls != 1 {
		t.Fatalf("runner called %d times, want 1", runner.calls)
	}
	tel := m.Telemetry()
	if tel.Executions != 1 || tel.Fetches != 2 {
		t.Fatalf("telemetry = %+v", tel)
	}
	if tel.ExecTime != time.Millisecond || tel.FetchTime != 2*time.Millisecond {
		t.Fatalf("telemetry times = %+v", tel)
	}
}

func TestTerrain_SeededCacheAvoidsRunner(t *testing.T) {
	a, b := elemAt(0, 0), elemAt(10, 0)
	seed := map[string]float64{terrainKey(a, b): 55}
	m := NewTerrain(nil, seed)

	loss, err := m.PathLoss(a, b)
	if err != nil {
		t.Fatalf("PathLoss: %v", err)
	}
	if loss != 55 {
		t.Fatalf("loss = %v, want cached 55", loss)
	}

	if _, err := m.PathLoss(b, a); err == nil {
		t.Fatalf("expected error for uncached pair without runner")
	}

	seed["other"] = 1
	if _, ok := m.CacheEntries()["other"]; ok {
		t.Fatalf("terrain cache aliases the seed map")
	}
}

func TestTerrain_RunnerErrorNotCached(t *testing.T) {
	boom := errors.New("tool crashed")
	runner := &fakeTerrainRunner{err: boom}
	m := NewTerrain(runner, nil)

	if _, err := m.PathLoss(elemAt(0, 0), elemAt(1, 1)); !errors.Is(err, boom) {
		t.Fatalf("expected runner error, got %v", err)
	}
	if len(m.CacheEntries()) != 0 {
		t.Fatalf("failed lookup was cached")
	}
	if m.Telemetry().Executions != 0 {
		t.Fatalf("failed lookup counted as execution")
	}
}

func TestTerrain_CloneIsIndependent(t *testing.T) {
	runner := &fakeTerrainRunner{loss: 10}
	parent := NewTerrain(runner, nil)
	if _, err := parent.PathLoss(elemAt(0, 0), elemAt(5, 5)); err != nil {
		t.Fatalf("PathLoss: %v", err)
	}

	clone := parent.Clone().(*Terrain)
	if clone.Telemetry() != (Telemetry{}) {
		t.Fatalf("clone telemetry not reset: %+v", clone.Telemetry())
	}
	if len(clone.CacheEntries()) != 1 {
		t.Fatalf("clone did not inherit cache")
	}

	if _, err := clone.PathLoss(elemAt(9, 9), elemAt(5, 5)); err != nil {
		t.Fatalf("PathLoss: %v", err)
	}
	if len(parent.CacheEntries()) != 1 {
		t.Fatalf("clone lookup leaked into parent cache")
	}
	if len(clone.CacheEntries()) != 2 {
		t.Fatalf("clone cache = %d entries, want 2", len(clone.CacheEntries()))
	}
}

func TestTerrainKey(t *testing.T) {
	a := model.Element{Location: model.Point{X: 1.5, Y: 2}, Height: 30}
	b := model.Element{Location: model.Point{X: 3, Y: 4}, Height: 15}
	if got := terrainKey(a, b); got != "1.5_2_30_3_4_15" {
		t.Fatalf("terrainKey = %q", got)
	}
}
