package dataset

import (
	"bufio"
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/signalsfoundry/spectrum-dataset/core"
	"github.com/signalsfoundry/spectrum-dataset/model"
)

// failingModel errors on every lookup between distinct elements.
type failingModel struct{}

func (failingModel) PathLoss(tx, rx model.Element) (float64, error) {
	if tx == rx {
		return 0, nil
	}
	return 0, errors.New("no coverage")
}
func (failingModel) Descriptor() string             { return "failing" }
func (m failingModel) Clone() core.PropagationModel { return m }

// panickingModel panics on every lookup between distinct elements.
type panickingModel struct{}

func (panickingModel) PathLoss(tx, rx model.Element) (float64, error) {
	if tx == rx {
		return 0, nil
	}
	panic("corrupt terrain tile")
}
func (panickingModel) Descriptor() string             { return "panicking" }
func (m panickingModel) Clone() core.PropagationModel { return m }

// constRunner answers every terrain lookup with the same loss.
type constRunner struct{ loss float64 }

func (r constRunner) Loss(context.Context, model.Element, model.Element) (float64, error) {
	return r.loss, nil
}

// countingMetrics is a MetricsRecorder safe for concurrent workers.
type countingMetrics struct {
	mu       sync.Mutex
	written  int
	failed   int
	started  int
	finished int
	dataset  int
}

func (m *countingMetrics) ObserveSample(_ int, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.failed++
	} else {
		m.written++
	}
}

func (m *countingMetrics) WorkerStarted() {
	m.mu.Lock()
	m.started++
	m.mu.Unlock()
}

func (m *countingMetrics) WorkerFinished() {
	m.mu.Lock()
	m.finished++
	m.mu.Unlock()
}

func (m *countingMetrics) SetDatasetSamples(n int) {
	m.mu.Lock()
	m.dataset = n
	m.mu.Unlock()
}

func sensorLayout(n int) []*model.SpectrumSensor {
	sensors := make([]*model.SpectrumSensor, n)
	for i := range sensors {
		sensors[i] = model.NewSpectrumSensor(
			model.Element{Location: model.Point{X: float64(i), Y: float64(2 * i)}, Height: 15},
			1, 1,
		)
	}
	return sensors
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return lines
}
