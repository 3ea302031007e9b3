package dataset

import (
	"fmt"
	"math/rand"
)

// DefaultPalette is the discrete set of transmit powers (dB) used when no
// policy is configured.
var DefaultPalette = []float64{-15, -10, -5, 0}

// PowerPolicy assigns transmit powers to the transmitters of one sample.
// Implementations must be safe to share between workers; all randomness
// comes from the worker-owned rng.
type PowerPolicy interface {
	Powers(rng *rand.Rand, n int) ([]float64, error)
}

// PalettePolicy draws each transmitter's power uniformly from Palette.
type PalettePolicy struct {
	Palette []float64
}

// Powers implements PowerPolicy.
func (p PalettePolicy) Powers(rng *rand.Rand, n int) ([]float64, error) {
	if len(p.Palette) == 0 {
		return nil, fmt.Errorf("palette policy: empty palette")
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = p.Palette[rng.Intn(len(p.Palette))]
	}
	return out, nil
}

// IndexedPalettePolicy gives transmitter i the power Palette[i]. Samples with
// more transmitters than palette entries fail.
type IndexedPalettePolicy struct {
	Palette []float64
}

// Powers implements PowerPolicy.
func (p IndexedPalettePolicy) Powers(_ *rand.Rand, n int) ([]float64, error) {
	if n > len(p.Palette) {
		return nil, fmt.Errorf("indexed palette policy: %d transmitters but only %d palette entries", n, len(p.Palette))
	}
	return append([]float64(nil), p.Palette[:n]...), nil
}

// UniformPolicy draws each power uniformly from [Min, Max].
type UniformPolicy struct {
	Min float64
	Max float64
}

// Powers implements PowerPolicy.
func (p UniformPolicy) Powers(rng *rand.Rand, n int) ([]float64, error) {
	if p.Max < p.Min {
		return nil, fmt.Errorf("uniform policy: max %v below min %v", p.Max, p.Min)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = p.Min + rng.Float64()*(p.Max-p.Min)
	}
	return out, nil
}
