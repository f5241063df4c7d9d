// Package telemetry provides performance tracking and the particle position
// trace written during a run.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/chemotaxis/config"
)

// PositionRecord is one row of positions.csv.
type PositionRecord struct {
	Tick int32   `csv:"tick"`
	ID   string  `csv:"id"`
	Kind string  `csv:"kind"`
	X    float64 `csv:"x"`
	Y    float64 `csv:"y"`
	VX   float64 `csv:"vx"`
	VY   float64 `csv:"vy"`
}

// OutputManager handles run output: the positions trace and a config snapshot.
type OutputManager struct {
	dir           string
	positionsFile *os.File

	// Track if headers have been written
	positionsHeaderWritten bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "positions.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating positions.csv: %w", err)
	}

	return &OutputManager{dir: dir, positionsFile: f}, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WritePositions appends position records to positions.csv.
func (om *OutputManager) WritePositions(records []PositionRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}

	if !om.positionsHeaderWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, om.positionsFile); err != nil {
			return fmt.Errorf("writing positions: %w", err)
		}
		om.positionsHeaderWritten = true
		return nil
	}

	// Subsequent writes skip headers
	if err := gocsv.MarshalWithoutHeaders(records, om.positionsFile); err != nil {
		return fmt.Errorf("writing positions: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes the output files.
func (om *OutputManager) Close() error {
	if om == nil || om.positionsFile == nil {
		return nil
	}
	err := om.positionsFile.Close()
	om.positionsFile = nil
	return err
}
