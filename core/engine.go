package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/spectrum-dataset/model"
)

// Scenario is one randomly generated set of transmitters and sensors. It is
// built, scored into exactly one record, and discarded.
type Scenario struct {
	TXs     []*model.TX
	Sensors []*model.SpectrumSensor
}

// Engine aggregates transmitter contributions into sensor received power and
// serialises scored scenarios.
type Engine struct {
	Model PropagationModel

	// CellSize converts grid coordinates to metres before path loss lookups.
	CellSize float64

	// EmitSensorLocations adds the sensor count and per-sensor coordinates
	// to every record.
	EmitSensorLocations bool

	// NoiseFloor is the ambient power (dB) present at every sensor.
	NoiseFloor float64

	// Selector picks the labelled transmitter block. Nil means StrongestTX.
	Selector TXSelector
}

// ComputeReceivedPower resets every sensor and recomputes its received power
// as the dB value of the linear sum of the noise floor and all active
// transmitter contributions. Summation order does not change the result
// mathematically; floating point rounding may differ in the last bits.
func (e *Engine) ComputeReceivedPower(sc *Scenario) error {
	if sc == nil {
		return nil
	}
	if e.Model == nil {
		return fmt.Errorf("engine: no propagation model")
	}

	for _, ss := range sc.Sensors {
		ss.RX.ReceivedPower = math.Inf(-1)
	}

	for _, ss := range sc.Sensors {
		rx := ss.RX
		at := rx.Element.Mul(e.CellSize)

		// Ambient noise: a virtual emitter at the sensor's own location.
		selfLoss, err := e.Model.PathLoss(at, at)
		if err != nil {
			return fmt.Errorf("engine: noise self-loss: %w", err)
		}
		rx.ReceivedPower = AddPowersDB(rx.ReceivedPower, e.NoiseFloor-selfLoss)

		for _, tx := range sc.TXs {
			if !tx.Active() {
				continue
			}
			loss, err := e.Model.PathLoss(tx.Element.Mul(e.CellSize), at)
			if err != nil {
				return fmt.Errorf("engine: path loss: %w", err)
			}
			rx.ReceivedPower = AddPowersDB(rx.ReceivedPower, tx.Power-loss)
		}
	}
	return nil
}

// Score computes received power and returns the scenario's record.
func (e *Engine) Score(sc *Scenario) (string, error) {
	if err := e.ComputeReceivedPower(sc); err != nil {
		return "", err
	}
	return e.Record(sc), nil
}
