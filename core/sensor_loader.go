package core

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/signalsfoundry/spectrum-dataset/model"
)

// SensorDefaults fills the optional columns of a sensor layout file.
type SensorDefaults struct {
	Height float64
	Cost   float64
	Std    float64
}

// SensorLayoutPath returns the conventional location of a layout file:
// <dir>/<shape>/<count>/sensors.txt.
func SensorLayoutPath(dir, shapeName string, count int) string {
	return filepath.Join(dir, shapeName, strconv.Itoa(count), "sensors.txt")
}

// LoadSensors parses one sensor per line:
//
//	x y [height [cost [std]]]
//
// Fields may be separated by whitespace or commas. Blank lines and lines
// starting with '#' are ignored. Missing trailing columns take their value
// from defaults.
func LoadSensors(r io.Reader, defaults SensorDefaults) ([]*model.SpectrumSensor, error) {
	var sensors []*model.SpectrumSensor

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		if len(fields) < 2 || len(fields) > 5 {
			return nil, fmt.Errorf("LoadSensors: line %d: expected 2 to 5 fields, got %d", lineNo, len(fields))
		}

		vals := []float64{0, 0, defaults.Height, defaults.Cost, defaults.Std}
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("LoadSensors: line %d: field %d: %w", lineNo, i+1, err)
			}
			vals[i] = v
		}

		sensors = append(sensors, model.NewSpectrumSensor(
			model.Element{Location: model.Point{X: vals[0], Y: vals[1]}, Height: vals[2]},
			vals[3],
			vals[4],
		))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("LoadSensors: read failed: %w", err)
	}
	return sensors, nil
}

// LoadSensorsFile opens path and parses it with LoadSensors.
func LoadSensorsFile(path string, defaults SensorDefaults) ([]*model.SpectrumSensor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sensor layout %q: %w", path, err)
	}
	defer f.Close()
	return LoadSensors(f, defaults)
}
