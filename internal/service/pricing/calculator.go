package pricing

import (
	"math"

	"github.com/viagens-moz/intercity/internal/domain/route"
)

// FareTable holds explicit fares (MZN) per origin and destination
type FareTable map[route.Location]map[route.Location]int

// Set records the fare for a single direction
func (t FareTable) Set(origin, destination route.Location, fare int) {
	row, ok := t[origin]
	if !ok {
		row = make(map[route.Location]int)
		t[origin] = row
	}
	row[destination] = fare
}

// Lookup returns the explicit fare for the pair, if any.
// Zero or negative entries are treated as absent.
func (t FareTable) Lookup(origin, destination route.Location) (int, bool) {
	fare, ok := t[origin][destination]
	if !ok || fare <= 0 {
		return 0, false
	}
	return fare, true
}

// Len returns the number of explicit pairs
func (t FareTable) Len() int {
	n := 0
	for _, row := range t {
		n += len(row)
	}
	return n
}

// DefaultFareTable returns the reference schedule, anchored on both termini
func DefaultFareTable() FareTable {
	t := make(FareTable)
	fromMaputo := map[route.Location]int{
		"MACIA": 300, "XAI-XAI": 500, "CHÓKWÈ": 600, "CHIBUTO": 650, "MANJACAZE": 700,
		"ZAVALA": 750, "INHARRIME": 800, "MAXIXE": 900, "HOMOÍNE": 950, "PANDA": 1000,
		"MASSINGA": 1100, "VILANCULOS": 1200,
	}
	fromVilanculos := map[route.Location]int{
		"MASSINGA": 1100, "PANDA": 1000, "HOMOÍNE": 950, "MAXIXE": 900, "INHARRIME": 800,
		"ZAVALA": 750, "MANJACAZE": 700, "CHIBUTO": 650, "CHÓKWÈ": 600, "XAI-XAI": 500,
		"MACIA": 300, "MAPUTO": 1200,
	}
	for dest, fare := range fromMaputo {
		t.Set("MAPUTO", dest, fare)
	}
	for dest, fare := range fromVilanculos {
		t.Set("VILANCULOS", dest, fare)
	}
	return t
}

// Config holds the interpolation constants for pairs missing from the table
type Config struct {
	BaseFare int
	StepFare int
}

// DefaultConfig returns the reference schedule constants
func DefaultConfig() Config {
	return Config{BaseFare: 300, StepFare: 75}
}

// Service handles fare calculation over the route line
type Service struct {
	line   route.Line
	table  FareTable
	config Config
}

// NewService creates a new pricing service
func NewService(line route.Line, table FareTable, config Config) *Service {
	if table == nil {
		table = make(FareTable)
	}
	return &Service{
		line:   line,
		table:  table,
		config: config,
	}
}

// Price returns the per-seat fare from origin to destination.
// ok is false when the fare cannot be resolved.
func (s *Service) Price(origin, destination route.Location) (fare int, ok bool) {
	if fare, ok := s.table.Lookup(origin, destination); ok {
		return fare, true
	}

	steps, ok := s.line.Distance(origin, destination)
	if !ok {
		return 0, false
	}
	return s.config.BaseFare + s.config.StepFare*steps, true
}

// Quote returns the fare for a number of seats (or parcel units).
// ok is false when the total does not fit in an int.
func (s *Service) Quote(origin, destination route.Location, seats int) (int, bool) {
	if seats < 1 {
		return 0, false
	}
	fare, ok := s.Price(origin, destination)
	if !ok || fare <= 0 || seats > math.MaxInt/fare {
		return 0, false
	}
	return fare * seats, true
}

// Line returns the route line prices are computed over
func (s *Service) Line() route.Line {
	return s.line
}
