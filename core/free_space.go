package core

import (
	"math"

	"github.com/signalsfoundry/spectrum-dataset/model"
)

// FreeSpace is the free-space path loss model at a single carrier frequency.
type FreeSpace struct {
	FrequencyGHz float64
}

// PathLoss implements PropagationModel. Distances below one metre are
// clamped to one metre; zero distance is lossless.
func (m *FreeSpace) PathLoss(tx, rx model.Element) (float64, error) {
	d := tx.Location.DistanceTo(rx.Location)
	if d == 0 {
		return 0, nil
	}
	distanceKm := math.Max(d, 1) / 1000

	fGHz := m.FrequencyGHz
	if fGHz <= 0 {
		fGHz = 2.4 // ISM band default
	}

	// Free-space path loss in dB: 92.45 + 20 log10(d_km) + 20 log10(f_GHz)
	return 92.45 + 20*math.Log10(distanceKm) + 20*math.Log10(fGHz), nil
}

// Descriptor implements PropagationModel.
func (m *FreeSpace) Descriptor() string {
	return "fspl_" + formatDecimal(m.FrequencyGHz) + "GHz"
}

// Clone implements PropagationModel.
func (m *FreeSpace) Clone() PropagationModel {
	cp := *m
	return &cp
}
