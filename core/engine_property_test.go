package core

import (
	"math"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/signalsfoundry/spectrum-dataset/model"
)

func randomScenario(rng *rand.Rand, txCount, sensorCount int) ([]*model.TX, []*model.SpectrumSensor) {
	txs := make([]*model.TX, txCount)
	for i := range txs {
		power := -30 + rng.Float64()*30
		if rng.Intn(5) == 0 {
			power = math.Inf(-1)
		}
		txs[i] = txAt(float64(rng.Intn(100)), float64(rng.Intn(100)), power)
	}
	sensors := make([]*model.SpectrumSensor, sensorCount)
	for i := range sensors {
		sensors[i] = sensorAt(float64(rng.Intn(100)), float64(rng.Intn(100)))
	}
	return txs, sensors
}

func TestEngineInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("received power does not depend on transmitter order", prop.ForAll(
		func(seed int64, txCount int) bool {
			rng := rand.New(rand.NewSource(seed))
			txs, sensors := randomScenario(rng, txCount, 4)
			eng := &Engine{Model: NewLogDistance(3), CellSize: 10, NoiseFloor: -90}

			if err := eng.ComputeReceivedPower(&Scenario{TXs: txs, Sensors: sensors}); err != nil {
				return false
			}
			first := make([]float64, len(sensors))
			for i, ss := range sensors {
				first[i] = ss.RX.ReceivedPower
			}

			shuffled := append([]*model.TX{}, txs...)
			rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
			if err := eng.ComputeReceivedPower(&Scenario{TXs: shuffled, Sensors: sensors}); err != nil {
				return false
			}
			for i, ss := range sensors {
				if math.Abs(ss.RX.ReceivedPower-first[i]) > 1e-9 {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 12),
	))

	properties.Property("inactive transmitters never change received power", prop.ForAll(
		func(seed int64, txCount int) bool {
			rng := rand.New(rand.NewSource(seed))
			txs, sensors := randomScenario(rng, txCount, 3)
			eng := &Engine{Model: NewLogDistance(2), CellSize: 1, NoiseFloor: -100}

			if err := eng.ComputeReceivedPower(&Scenario{TXs: txs, Sensors: sensors}); err != nil {
				return false
			}
			before := make([]float64, len(sensors))
			for i, ss := range sensors {
				before[i] = ss.RX.ReceivedPower
			}

			withSilent := append(append([]*model.TX{}, txs...), txAt(50, 50, math.Inf(-1)))
			if err := eng.ComputeReceivedPower(&Scenario{TXs: withSilent, Sensors: sensors}); err != nil {
				return false
			}
			for i, ss := range sensors {
				if ss.RX.ReceivedPower != before[i] {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 8),
	))

	properties.Property("power addition is commutative", prop.ForAll(
		func(a, b float64) bool {
			return AddPowersDB(a, b) == AddPowersDB(b, a)
		},
		gen.Float64Range(-150, 30),
		gen.Float64Range(-150, 30),
	))

	properties.Property("adding power never lowers the level", prop.ForAll(
		func(a, b float64) bool {
			sum := AddPowersDB(a, b)
			return sum >= math.Max(a, b)-1e-12
		},
		gen.Float64Range(-150, 30),
		gen.Float64Range(-150, 30),
	))

	properties.TestingRun(t)
}
