package core

import (
	"math"
	"testing"
	"time"

	"github.com/signalsfoundry/spectrum-dataset/model"
)

func elemAt(x, y float64) model.Element {
	return model.Element{Location: model.Point{X: x, Y: y}, Height: 10}
}

func TestBundledModels_ZeroSelfLoss(t *testing.T) {
	models := []PropagationModel{
		NewLogDistance(3),
		NewNoisyLogDistance(2, 4, 1),
		&FreeSpace{FrequencyGHz: 5},
		NewTerrain(nil, nil),
	}
	e := elemAt(12, 34)
	for _, m := range models {
		loss, err := m.PathLoss(e, e)
		if err != nil {
			t.Fatalf("%s: self loss: %v", m.Descriptor(), err)
		}
		if loss != 0 {
			t.Fatalf("%s: self loss = %v, want 0", m.Descriptor(), loss)
		}
	}
}

func TestLogDistance_PathLoss(t *testing.T) {
	m := NewLogDistance(3)
	loss, err := m.PathLoss(elemAt(0, 0), elemAt(1000, 0))
	if err != nil {
		t.Fatalf("PathLoss: %v", err)
	}
	if math.Abs(loss-90) > 1e-9 {
		t.Fatalf("loss at 1 km = %v, want 90", loss)
	}

	// sub-metre distances clamp to the reference distance
	loss, _ = m.PathLoss(elemAt(0, 0), elemAt(0.2, 0))
	if loss != 0 {
		t.Fatalf("loss below reference distance = %v, want 0", loss)
	}
}

func TestLogDistance_DescriptorAndClone(t *testing.T) {
	if got := NewLogDistance(2).Descriptor(); got != "log_alpha2.0" {
		t.Fatalf("descriptor = %q", got)
	}
	noisy := NewNoisyLogDistance(2.5, 1, 42)
	if got := noisy.Descriptor(); got != "log_alpha2.5_noisy_std1.0" {
		t.Fatalf("descriptor = %q", got)
	}

	clone := noisy.Clone().(*LogDistance)
	if clone.rng == noisy.rng {
		t.Fatalf("clone shares random source")
	}
	if clone.Alpha != noisy.Alpha || clone.Std != noisy.Std {
		t.Fatalf("clone parameters differ: %+v", clone)
	}
}

func TestFreeSpace_PathLoss(t *testing.T) {
	m := &FreeSpace{FrequencyGHz: 1}
	loss, err := m.PathLoss(elemAt(0, 0), elemAt(1000, 0))
	if err != nil {
		t.Fatalf("PathLoss: %v", err)
	}
	if math.Abs(loss-92.45) > 1e-9 {
		t.Fatalf("FSPL at 1 km / 1 GHz = %v, want 92.45", loss)
	}

	near, _ := m.PathLoss(elemAt(0, 0), elemAt(10, 0))
	far, _ := m.PathLoss(elemAt(0, 0), elemAt(100, 0))
	if math.Abs(far-near-20) > 1e-9 {
		t.Fatalf("10x distance should add 20 dB, got %v", far-near)
	}
	if got := m.Descriptor(); got != "fspl_1.0GHz" {
		t.Fatalf("descriptor = %q", got)
	}
}

func TestTelemetry_AddAndMeans(t *testing.T) {
	a := Telemetry{Fetches: 2, FetchTime: 4 * time.Millisecond, Executions: 1, ExecTime: time.Second}
	b := Telemetry{Fetches: 2, FetchTime: 4 * time.Millisecond, Executions: 3, ExecTime: 3 * time.Second}
	sum := a.Add(b)

	if sum.Fetches != 4 || sum.Executions != 4 {
		t.Fatalf("sum counts = %+v", sum)
	}
	if sum.PerFetch() != 2*time.Millisecond {
		t.Fatalf("PerFetch = %v", sum.PerFetch())
	}
	if sum.PerExecution() != time.Second {
		t.Fatalf("PerExecution = %v", sum.PerExecution())
	}
	if (Telemetry{}).PerFetch() != 0 || (Telemetry{}).PerExecution() != 0 {
		t.Fatalf("empty telemetry should report zero means")
	}
}

func TestFormatDecimal(t *testing.T) {
	cases := map[float64]string{
		2:     "2.0",
		2.5:   "2.5",
		-1000: "-1000.0",
		0.125: "0.125",
	}
	for in, want := range cases {
		if got := formatDecimal(in); got != want {
			t.Fatalf("formatDecimal(%v) = %q, want %q", in, got, want)
		}
	}
}
