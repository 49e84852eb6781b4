package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/viagens-moz/intercity/internal/domain/route"
	"github.com/viagens-moz/intercity/internal/service/pricing"
)

// FareEntry is one explicit fare in the routes file
type FareEntry struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Price int    `yaml:"price"`
}

// RoutesFile is the on-disk layout of the route line and fare schedule
type RoutesFile struct {
	Stops []string    `yaml:"stops"`
	Fares []FareEntry `yaml:"fares"`
}

// Routes is the validated line and fare table the service runs with
type Routes struct {
	Line  route.Line
	Fares pricing.FareTable
}

// DefaultRoutes returns the built-in corridor and reference fares
func DefaultRoutes() *Routes {
	return &Routes{
		Line:  route.DefaultLine(),
		Fares: pricing.DefaultFareTable(),
	}
}

// LoadRoutes reads the route line and fares from a YAML file.
// An empty path returns DefaultRoutes.
func LoadRoutes(path string) (*Routes, error) {
	if path == "" {
		return DefaultRoutes(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading routes file: %w", err)
	}
	return ParseRoutes(data)
}

// ParseRoutes decodes and validates a routes document. When the document
// lists no stops the built-in corridor is used, and when it lists no fares
// every pair is priced by interpolation.
func ParseRoutes(data []byte) (*Routes, error) {
	var f RoutesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding routes file: %w", err)
	}

	line := route.DefaultLine()
	if len(f.Stops) > 0 {
		line = make(route.Line, 0, len(f.Stops))
		for _, name := range f.Stops {
			line = append(line, route.Normalize(name))
		}
	}
	if err := line.Validate(); err != nil {
		return nil, fmt.Errorf("invalid route line: %w", err)
	}

	fares := make(pricing.FareTable)
	for i, entry := range f.Fares {
		seg := route.Segment{Start: route.Normalize(entry.From), End: route.Normalize(entry.To)}
		if err := seg.Validate(line); err != nil {
			return nil, fmt.Errorf("fare %d: %w", i, err)
		}
		if entry.Price <= 0 {
			return nil, fmt.Errorf("fare %d: price must be positive", i)
		}
		fares.Set(seg.Start, seg.End, entry.Price)
	}

	return &Routes{Line: line, Fares: fares}, nil
}
