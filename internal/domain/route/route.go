package route

import (
	"errors"
	"fmt"
	"strings"
)

// NotFound is returned by IndexOf for locations that are not on the line
const NotFound = -1

var (
	ErrEmptyLine       = errors.New("route line has no stops")
	ErrBlankStop       = errors.New("route line has a blank stop name")
	ErrDuplicateStop   = errors.New("route line has duplicated stop")
	ErrUnknownLocation = errors.New("location is not on the route line")
	ErrEmptySegment    = errors.New("segment start and end are the same stop")
)

// Location is a named stop on the route line
type Location string

// Normalize trims and upper-cases a user supplied stop name
func Normalize(name string) Location {
	return Location(strings.ToUpper(strings.TrimSpace(name)))
}

// Direction represents travel direction along the line's index order
type Direction string

const (
	Northbound Direction = "northbound"
	Southbound Direction = "southbound"
)

// Line is the fixed, totally ordered sequence of serviceable stops.
// Index order runs from the southern terminus to the northern one.
type Line []Location

// DefaultLine returns the Maputo - Vilanculos corridor
func DefaultLine() Line {
	return Line{
		"MAPUTO", "MACIA", "XAI-XAI", "CHÓKWÈ", "CHIBUTO", "MANJACAZE",
		"ZAVALA", "INHARRIME", "MAXIXE", "HOMOÍNE", "PANDA", "MASSINGA", "VILANCULOS",
	}
}

// IndexOf returns the zero-based position of loc, or NotFound
func (l Line) IndexOf(loc Location) int {
	for i, stop := range l {
		if stop == loc {
			return i
		}
	}
	return NotFound
}

// Contains reports whether loc is a stop on the line
func (l Line) Contains(loc Location) bool {
	return l.IndexOf(loc) != NotFound
}

// Stops returns a copy of the line so callers cannot mutate it
func (l Line) Stops() []Location {
	out := make([]Location, len(l))
	copy(out, l)
	return out
}

// Validate checks the line is usable as startup configuration
func (l Line) Validate() error {
	if len(l) == 0 {
		return ErrEmptyLine
	}
	seen := make(map[Location]struct{}, len(l))
	for _, stop := range l {
		if stop == "" {
			return ErrBlankStop
		}
		if _, ok := seen[stop]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateStop, stop)
		}
		seen[stop] = struct{}{}
	}
	return nil
}

// Distance is the number of line steps between two stops.
// ok is false when either stop is unknown.
func (l Line) Distance(a, b Location) (steps int, ok bool) {
	ai, bi := l.IndexOf(a), l.IndexOf(b)
	if ai == NotFound || bi == NotFound {
		return 0, false
	}
	if bi > ai {
		return bi - ai, true
	}
	return ai - bi, true
}

// DirectionOf derives the direction of travel from start to end.
// Equal indices are reported as Southbound, as the line order gives no
// other answer; callers reject zero-length intervals separately.
func (l Line) DirectionOf(start, end Location) Direction {
	if l.IndexOf(start) < l.IndexOf(end) {
		return Northbound
	}
	return Southbound
}

// Segment is a directed stretch of the line a driver traverses
type Segment struct {
	Start Location `json:"start" yaml:"start"`
	End   Location `json:"end" yaml:"end"`
	Time  string   `json:"time,omitempty" yaml:"time,omitempty"`
}

// IsZero reports whether the segment was never declared
func (s Segment) IsZero() bool {
	return s.Start == "" && s.End == ""
}

// Validate checks both endpoints are on the line and distinct
func (s Segment) Validate(l Line) error {
	if !l.Contains(s.Start) {
		return fmt.Errorf("%w: %q", ErrUnknownLocation, s.Start)
	}
	if !l.Contains(s.End) {
		return fmt.Errorf("%w: %q", ErrUnknownLocation, s.End)
	}
	if s.Start == s.End {
		return ErrEmptySegment
	}
	return nil
}
