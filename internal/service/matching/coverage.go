package matching

import (
	"github.com/viagens-moz/intercity/internal/domain/route"
)

// Covers reports whether a driver running seg can carry a request from
// origin to destination: both must travel the same way along the line and
// the request interval must lie within the segment, bounds inclusive.
// Unknown stops and zero-length intervals never match.
func Covers(line route.Line, seg route.Segment, origin, destination route.Location) bool {
	start := line.IndexOf(seg.Start)
	end := line.IndexOf(seg.End)
	if start == route.NotFound || end == route.NotFound || start == end {
		return false
	}

	from := line.IndexOf(origin)
	to := line.IndexOf(destination)
	if from == route.NotFound || to == route.NotFound || from == to {
		return false
	}

	driverNorthbound := start < end
	requestNorthbound := from < to
	if driverNorthbound != requestNorthbound {
		return false
	}

	if driverNorthbound {
		return from >= start && to <= end
	}
	return from <= start && to >= end
}
