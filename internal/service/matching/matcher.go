package matching

import (
	"github.com/viagens-moz/intercity/internal/domain/driver"
	"github.com/viagens-moz/intercity/internal/domain/route"
)

// TripRequest is a seat booking to be served on a specific date
type TripRequest struct {
	Origin      route.Location
	Destination route.Location
	Date        string
}

// PackageRequest is a parcel to be carried on any date
type PackageRequest struct {
	Origin      route.Location
	Destination route.Location
}

// Matcher filters a roster snapshot down to the drivers able to serve a
// request. It holds no state besides the immutable route line and is safe
// for concurrent use.
type Matcher struct {
	line route.Line
}

// NewMatcher creates a matcher over the given route line
func NewMatcher(line route.Line) *Matcher {
	return &Matcher{line: line}
}

// MatchForTrip keeps approved drivers available on the requested date whose
// segment for that date covers the trip. Input order is preserved.
func (m *Matcher) MatchForTrip(drivers []*driver.Driver, req TripRequest) []*driver.Driver {
	matched := make([]*driver.Driver, 0, len(drivers))
	for _, d := range drivers {
		if d == nil || !d.IsApproved || !d.IsAvailableOn(req.Date) {
			continue
		}
		seg, ok := d.SegmentFor(req.Date)
		if !ok {
			continue
		}
		if Covers(m.line, seg, req.Origin, req.Destination) {
			matched = append(matched, d)
		}
	}
	return matched
}

// MatchForPackage keeps approved drivers for whom at least one declared
// segment, on any date, covers the parcel route.
func (m *Matcher) MatchForPackage(drivers []*driver.Driver, req PackageRequest) []*driver.Driver {
	matched := make([]*driver.Driver, 0, len(drivers))
	for _, d := range drivers {
		if d == nil || !d.IsApproved {
			continue
		}
		for _, seg := range d.Segments() {
			if Covers(m.line, seg, req.Origin, req.Destination) {
				matched = append(matched, d)
				break
			}
		}
	}
	return matched
}
