package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/signalsfoundry/spectrum-dataset/model"
)

// Selection is the labelled transmitter written after the sensor block.
type Selection struct {
	X, Y  float64
	Power float64
}

// TXSelector chooses the labelled transmitter of a scenario.
type TXSelector func(txs []*model.TX, cellSize, noiseFloor float64) Selection

// StrongestTX selects the transmitter with the highest power; ties go to the
// first one. Without transmitters it labels the origin at the noise floor.
func StrongestTX(txs []*model.TX, _ float64, noiseFloor float64) Selection {
	if len(txs) == 0 {
		return Selection{X: 0, Y: 0, Power: noiseFloor}
	}
	best := txs[0]
	for _, tx := range txs[1:] {
		if tx.Power > best.Power {
			best = tx
		}
	}
	return selectionOf(best)
}

// MostIsolatedTX selects the transmitter whose nearest neighbour (distance
// scaled by cellSize) is farthest away; ties go to the first one. A lone
// transmitter wins trivially. Without transmitters it emits the sentinel
// (-1000, -1000) at the noise floor.
func MostIsolatedTX(txs []*model.TX, cellSize, noiseFloor float64) Selection {
	if len(txs) == 0 {
		return Selection{X: -1000, Y: -1000, Power: noiseFloor}
	}

	bestIdx := 0
	bestDist := math.Inf(-1)
	for i, a := range txs {
		nearest := math.Inf(1)
		pa := a.Element.Location.Mul(cellSize)
		for j, b := range txs {
			if i == j {
				continue
			}
			if d := pa.DistanceTo(b.Element.Location.Mul(cellSize)); d < nearest {
				nearest = d
			}
		}
		if nearest > bestDist {
			bestIdx, bestDist = i, nearest
		}
	}
	return selectionOf(txs[bestIdx])
}

func selectionOf(tx *model.TX) Selection {
	return Selection{X: tx.Element.Location.X, Y: tx.Element.Location.Y, Power: tx.Power}
}

// Record serialises a scored scenario as one comma-separated line:
//
//	[sensorCount,](x,y,)*power{,...},selX,selY,selPower,txCount{,x,y,power}
//
// Sensor powers that are exactly -Inf are written as "-inf".
func (e *Engine) Record(sc *Scenario) string {
	fields := make([]string, 0, 3*len(sc.Sensors)+3*len(sc.TXs)+5)

	if e.EmitSensorLocations {
		fields = append(fields, strconv.Itoa(len(sc.Sensors)))
	}
	for _, ss := range sc.Sensors {
		if e.EmitSensorLocations {
			loc := ss.RX.Element.Location
			fields = append(fields, formatDecimal(loc.X), formatDecimal(loc.Y))
		}
		fields = append(fields, formatPower(ss.RX.ReceivedPower))
	}

	selector := e.Selector
	if selector == nil {
		selector = StrongestTX
	}
	sel := selector(sc.TXs, e.CellSize, e.NoiseFloor)
	fields = append(fields,
		strconv.FormatFloat(sel.X, 'f', 1, 64),
		strconv.FormatFloat(sel.Y, 'f', 1, 64),
		formatPower(sel.Power),
	)

	fields = append(fields, strconv.Itoa(len(sc.TXs)))
	for _, tx := range sc.TXs {
		loc := tx.Element.Location
		fields = append(fields, formatDecimal(loc.X), formatDecimal(loc.Y), formatPower(tx.Power))
	}

	return strings.Join(fields, ",")
}

func formatPower(p float64) string {
	if math.IsInf(p, -1) {
		return "-inf"
	}
	return strconv.FormatFloat(p, 'f', 3, 64)
}
