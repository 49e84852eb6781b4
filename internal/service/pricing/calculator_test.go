package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viagens-moz/intercity/internal/domain/route"
)

// getTestService returns the reference schedule
func getTestService() *Service {
	return NewService(route.DefaultLine(), DefaultFareTable(), DefaultConfig())
}

// TestPrice_TableTakesPrecedence tests explicit table entries win
func TestPrice_TableTakesPrecedence(t *testing.T) {
	service := getTestService()

	tests := []struct {
		name        string
		origin      route.Location
		destination route.Location
		expected    int
	}{
		{name: "Maputo to Macia", origin: "MAPUTO", destination: "MACIA", expected: 300},
		{name: "Maputo to Xai-Xai", origin: "MAPUTO", destination: "XAI-XAI", expected: 500}, // formula gives 450
		{name: "Maputo to Vilanculos", origin: "MAPUTO", destination: "VILANCULOS", expected: 1200},
		{name: "Vilanculos to Massinga", origin: "VILANCULOS", destination: "MASSINGA", expected: 1100}, // formula gives 375
		{name: "Vilanculos to Maputo", origin: "VILANCULOS", destination: "MAPUTO", expected: 1200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fare, ok := service.Price(tt.origin, tt.destination)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, fare)
		})
	}
}

// TestPrice_EveryTableEntryIsReturnedExactly checks table precedence over the whole table
func TestPrice_EveryTableEntryIsReturnedExactly(t *testing.T) {
	table := DefaultFareTable()
	service := NewService(route.DefaultLine(), table, DefaultConfig())

	for origin, row := range table {
		for destination, expected := range row {
			fare, ok := service.Price(origin, destination)
			assert.True(t, ok)
			assert.Equal(t, expected, fare, "%s -> %s", origin, destination)
		}
	}
	assert.Equal(t, 24, table.Len())
}

// TestPrice_InterpolationFallback tests pairs absent from the table
func TestPrice_InterpolationFallback(t *testing.T) {
	service := getTestService()
	line := route.DefaultLine()
	table := DefaultFareTable()

	for i, origin := range line {
		for j, destination := range line {
			if _, explicit := table.Lookup(origin, destination); explicit {
				continue
			}
			steps := j - i
			if steps < 0 {
				steps = -steps
			}

			fare, ok := service.Price(origin, destination)
			assert.True(t, ok)
			assert.Equal(t, 300+75*steps, fare, "%s -> %s", origin, destination)
		}
	}
}

func TestPrice_IntermediatePairs(t *testing.T) {
	service := getTestService()

	fare, ok := service.Price("MACIA", "MAXIXE")
	assert.True(t, ok)
	assert.Equal(t, 825, fare) // 300 + 75*7

	fare, ok = service.Price("XAI-XAI", "MAPUTO")
	assert.True(t, ok)
	assert.Equal(t, 450, fare, "Reverse of an anchor row is not in the table")
}

// TestPrice_SameStop tests the zero-step edge of the formula
func TestPrice_SameStop(t *testing.T) {
	service := getTestService()

	fare, ok := service.Price("MAXIXE", "MAXIXE")
	assert.True(t, ok)
	assert.Equal(t, 300, fare)
}

// TestPrice_UnknownLocation tests unresolvable fares
func TestPrice_UnknownLocation(t *testing.T) {
	service := getTestService()

	_, ok := service.Price("Unknown", "MAPUTO")
	assert.False(t, ok)

	_, ok = service.Price("MAPUTO", "BEIRA")
	assert.False(t, ok)

	_, ok = service.Price("", "")
	assert.False(t, ok)
}

func TestPrice_NonPositiveTableEntryFallsThrough(t *testing.T) {
	table := make(FareTable)
	table.Set("MAPUTO", "MACIA", 0)
	service := NewService(route.DefaultLine(), table, DefaultConfig())

	fare, ok := service.Price("MAPUTO", "MACIA")
	assert.True(t, ok)
	assert.Equal(t, 375, fare)
}

func TestPrice_NilTable(t *testing.T) {
	service := NewService(route.Line{"A", "B", "C"}, nil, Config{BaseFare: 10, StepFare: 5})

	fare, ok := service.Price("C", "A")
	assert.True(t, ok)
	assert.Equal(t, 20, fare)
}

// TestQuote_MultipliesBySeats tests seat multiplication
func TestQuote_MultipliesBySeats(t *testing.T) {
	service := getTestService()

	fare, ok := service.Quote("MAPUTO", "MAXIXE", 3)
	assert.True(t, ok)
	assert.Equal(t, 2700, fare)

	_, ok = service.Quote("MAPUTO", "MAXIXE", 0)
	assert.False(t, ok)

	_, ok = service.Quote("BEIRA", "MAXIXE", 2)
	assert.False(t, ok)
}

// TestQuote_RejectsOverflow tests totals that would wrap around
func TestQuote_RejectsOverflow(t *testing.T) {
	service := getTestService()

	total, ok := service.Quote("MAPUTO", "VILANCULOS", math.MaxInt/1200+1)
	assert.False(t, ok)
	assert.Zero(t, total)

	total, ok = service.Quote("MAPUTO", "VILANCULOS", math.MaxInt/1200)
	assert.True(t, ok)
	assert.Positive(t, total)
}

// BenchmarkPrice benchmarks fare lookup with interpolation
func BenchmarkPrice(b *testing.B) {
	service := getTestService()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		service.Price("MACIA", "MASSINGA")
	}
}
