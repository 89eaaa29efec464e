// Package config loads the per-machine constants polarsketch needs but
// cannot derive from the artwork itself: canvas and plotter-base
// dimensions, and the firmware calibration table. Loaded from TOML,
// the way noisetorch-ng loads its own config.toml.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/inkmachine/polarsketch/firmware"
)

// Machine holds the constants a single physical plotter needs: canvas
// size, the footprint of the plotter's base, and the calibration table
// sent to the firmware on CALIBRATE.
type Machine struct {
	CanvasWidthMM  float64 `toml:"canvas_width_mm"`
	CanvasHeightMM float64 `toml:"canvas_height_mm"`

	// BaseWidthMM and BaseHeightMM describe the physical footprint of
	// the plotter's own base, centered on the canvas's bottom edge. The
	// firmware consumer checks that it fits inside the canvas before
	// homing; the toolpath generator does not use it.
	BaseWidthMM  float64 `toml:"base_width_mm"`
	BaseHeightMM float64 `toml:"base_height_mm"`

	Calibration firmware.Calibration `toml:"calibration"`
	BaudRate    int                  `toml:"baud_rate"`
}

// BaseRect returns the plotter base's no-go rectangle in canvas
// coordinates, centered horizontally on the canvas and sitting flush
// against its bottom edge.
func (m Machine) BaseRect() (minX, minY, maxX, maxY float64) {
	cx := m.CanvasWidthMM / 2
	return cx - m.BaseWidthMM/2, 0, cx + m.BaseWidthMM/2, m.BaseHeightMM
}

func defaultMachine() Machine {
	return Machine{
		CanvasWidthMM:  420,
		CanvasHeightMM: 297,
		BaseWidthMM:    120,
		BaseHeightMM:   40,
		BaudRate:       115200,
		Calibration: firmware.Calibration{
			TravelableSteps: 0,
			StepsPerMM:      1,
			MinAmplitude:    0,
			MaxAmplitude:    4000,
			MaxAngle:        4000,
			MaxEncoder:      4000,
		},
	}
}

// Load decodes a Machine from the TOML file at path, filling in
// defaultMachine's values for anything the file omits. A missing file
// yields defaultMachine unchanged.
func Load(path string) (Machine, error) {
	m := defaultMachine()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return m, nil
	}
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return Machine{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return m, nil
}

// Save encodes m as TOML and writes it to path.
func Save(path string, m Machine) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(&m); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
