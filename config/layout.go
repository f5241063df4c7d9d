package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
)

// Placement pins one particle to a starting position.
// Zero Intensity or ResponseRate fall back to the configured values.
type Placement struct {
	Kind         string  `csv:"kind"` // "emitter" or "seeker"
	X            float64 `csv:"x"`
	Y            float64 `csv:"y"`
	Intensity    float64 `csv:"intensity"`
	ResponseRate float64 `csv:"response_rate"`
}

// LoadLayout reads particle placements from a CSV file.
func LoadLayout(path string) ([]Placement, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening layout file: %w", err)
	}
	defer f.Close()

	var placements []Placement
	if err := gocsv.UnmarshalFile(f, &placements); err != nil {
		return nil, fmt.Errorf("parsing layout file: %w", err)
	}
	for i := range placements {
		p := &placements[i]
		p.Kind = strings.ToLower(strings.TrimSpace(p.Kind))
		if p.Kind != "emitter" && p.Kind != "seeker" {
			return nil, fmt.Errorf("layout row %d: unknown kind %q", i+1, p.Kind)
		}
	}
	return placements, nil
}
