package core

import (
	"math"
	"math/rand"
	"time"

	"github.com/signalsfoundry/spectrum-dataset/model"
)

// LogDistance is the log-distance path loss model with a 1 m reference
// distance:
//
//	PL(d) = 10 * Alpha * log10(max(d, 1))
//
// When Std > 0 a zero-mean Gaussian shadowing term with that standard
// deviation (dB) is added to every non-zero-distance lookup.
type LogDistance struct {
	Alpha float64
	Std   float64

	rng *rand.Rand
}

// NewLogDistance returns a noiseless model.
func NewLogDistance(alpha float64) *LogDistance {
	return &LogDistance{Alpha: alpha}
}

// NewNoisyLogDistance returns a model with Gaussian shadowing.
func NewNoisyLogDistance(alpha, std float64, seed int64) *LogDistance {
	return &LogDistance{Alpha: alpha, Std: std, rng: rand.New(rand.NewSource(seed))}
}

// PathLoss implements PropagationModel.
func (m *LogDistance) PathLoss(tx, rx model.Element) (float64, error) {
	d := tx.Location.DistanceTo(rx.Location)
	if d == 0 {
		return 0, nil
	}
	if d < 1 {
		d = 1
	}
	loss := 10 * m.Alpha * math.Log10(d)
	if m.Std > 0 {
		if m.rng == nil {
			m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		loss += m.rng.NormFloat64() * m.Std
	}
	return loss, nil
}

// Descriptor implements PropagationModel.
func (m *LogDistance) Descriptor() string {
	s := "log_alpha" + formatDecimal(m.Alpha)
	if m.Std > 0 {
		s += "_noisy_std" + formatDecimal(m.Std)
	}
	return s
}

// Clone implements PropagationModel.
func (m *LogDistance) Clone() PropagationModel {
	cp := &LogDistance{Alpha: m.Alpha, Std: m.Std}
	if m.rng != nil {
		cp.rng = rand.New(rand.NewSource(m.rng.Int63()))
	}
	return cp
}
