package model

import "math"

// TX is a transmitter placed in the field. A Power of negative infinity marks
// an inactive transmitter that contributes nothing to any receiver.
type TX struct {
	Element Element
	Power   float64 // dB
}

// Active reports whether the transmitter contributes any power.
func (t *TX) Active() bool {
	return !math.IsInf(t.Power, -1)
}

// RX is a receiver whose ReceivedPower (dB) is recomputed for every scenario.
type RX struct {
	Element       Element
	ReceivedPower float64
}

// NewRX returns a receiver at e with no signal.
func NewRX(e Element) *RX {
	return &RX{Element: e, ReceivedPower: math.Inf(-1)}
}

// SpectrumSensor wraps a receiver with the labelling metadata written next to
// a dataset. Cost and Std are carried through untouched by the power engine.
type SpectrumSensor struct {
	RX   *RX
	Cost float64
	Std  float64
}

// NewSpectrumSensor constructs a sensor at e.
func NewSpectrumSensor(e Element, cost, std float64) *SpectrumSensor {
	return &SpectrumSensor{RX: NewRX(e), Cost: cost, Std: std}
}

// Clone returns a deep copy; the copy owns its own receiver.
func (s *SpectrumSensor) Clone() *SpectrumSensor {
	if s == nil {
		return nil
	}
	cp := *s
	if s.RX != nil {
		rx := *s.RX
		cp.RX = &rx
	}
	return &cp
}

// CloneSensors deep-copies a sensor layout.
func CloneSensors(sensors []*SpectrumSensor) []*SpectrumSensor {
	out := make([]*SpectrumSensor, len(sensors))
	for i, s := range sensors {
		out[i] = s.Clone()
	}
	return out
}
