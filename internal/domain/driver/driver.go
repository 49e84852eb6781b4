package driver

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/viagens-moz/intercity/internal/domain/route"
)

// DateLayout is the calendar date format used for availability
const DateLayout = "2006-01-02"

// Driver represents a registered driver and the schedule they declared.
// A driver either runs a single default route on every available date
// (RouteStart/RouteEnd) or declares a segment per date in DayRoutes.
type Driver struct {
	ID             uuid.UUID                `json:"id"`
	Name           string                   `json:"name"`
	Email          string                   `json:"email"`
	Phone          string                   `json:"phone"`
	VehicleNumber  string                   `json:"vehicle_number,omitempty"`
	VehicleModel   string                   `json:"vehicle_model,omitempty"`
	VehicleColor   string                   `json:"vehicle_color,omitempty"`
	AvailableSeats int                      `json:"available_seats"`
	IsApproved     bool                     `json:"is_approved"`
	IsPriority     bool                     `json:"is_priority"`
	AvailableDates []string                 `json:"available_dates"`
	RouteStart     route.Location           `json:"route_start,omitempty"`
	RouteEnd       route.Location           `json:"route_end,omitempty"`
	DayRoutes      map[string]route.Segment `json:"day_routes,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

// New creates an unapproved driver with no schedule
func New(name, email, phone string) *Driver {
	now := time.Now().UTC()
	return &Driver{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		DayRoutes: make(map[string]route.Segment),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsValid validates the driver entity
func (d *Driver) IsValid() error {
	if d.Name == "" {
		return ErrInvalidDriverName
	}
	if d.Phone == "" {
		return ErrInvalidDriverPhone
	}
	if d.AvailableSeats < 0 {
		return ErrInvalidSeats
	}
	return nil
}

// IsAvailableOn reports whether date is in the driver's agenda
func (d *Driver) IsAvailableOn(date string) bool {
	return slices.Contains(d.AvailableDates, date)
}

// DefaultRoute returns the legacy single route, if one was set
func (d *Driver) DefaultRoute() (route.Segment, bool) {
	if d.RouteStart == "" || d.RouteEnd == "" {
		return route.Segment{}, false
	}
	return route.Segment{Start: d.RouteStart, End: d.RouteEnd}, true
}

// SegmentFor returns the segment the driver runs on date. Drivers who
// declare per-day routes run nothing on dates without one; the default
// route only serves drivers with no day routes at all.
func (d *Driver) SegmentFor(date string) (route.Segment, bool) {
	if len(d.DayRoutes) > 0 {
		seg, ok := d.DayRoutes[date]
		if !ok || seg.IsZero() {
			return route.Segment{}, false
		}
		return seg, true
	}
	return d.DefaultRoute()
}

// Segments returns every segment the driver declared across all dates,
// ordered by date.
func (d *Driver) Segments() []route.Segment {
	dates := make([]string, 0, len(d.AvailableDates)+len(d.DayRoutes))
	dates = append(dates, d.AvailableDates...)
	for date := range d.DayRoutes {
		if !slices.Contains(dates, date) {
			dates = append(dates, date)
		}
	}
	slices.Sort(dates)

	segments := make([]route.Segment, 0, len(dates))
	for _, date := range dates {
		if seg, ok := d.SegmentFor(date); ok {
			segments = append(segments, seg)
		}
	}
	return segments
}

// AddDate puts date in the agenda, optionally with the segment run that day
func (d *Driver) AddDate(date string, seg *route.Segment) error {
	if err := ValidateDate(date); err != nil {
		return err
	}
	if !d.IsAvailableOn(date) {
		d.AvailableDates = append(d.AvailableDates, date)
		slices.Sort(d.AvailableDates)
	}
	if seg != nil {
		if d.DayRoutes == nil {
			d.DayRoutes = make(map[string]route.Segment)
		}
		d.DayRoutes[date] = *seg
	}
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// RemoveDate drops date and its day route from the agenda
func (d *Driver) RemoveDate(date string) {
	d.AvailableDates = slices.DeleteFunc(d.AvailableDates, func(v string) bool { return v == date })
	delete(d.DayRoutes, date)
	d.UpdatedAt = time.Now().UTC()
}

// SetDefaultRoute sets the legacy single route
func (d *Driver) SetDefaultRoute(start, end route.Location) {
	d.RouteStart = start
	d.RouteEnd = end
	d.UpdatedAt = time.Now().UTC()
}

// SetApproval updates the approval flag
func (d *Driver) SetApproval(approved bool) {
	d.IsApproved = approved
	d.UpdatedAt = time.Now().UTC()
}

// SetPriority updates the priority flag
func (d *Driver) SetPriority(priority bool) {
	d.IsPriority = priority
	d.UpdatedAt = time.Now().UTC()
}

// ValidateDate checks date is a YYYY-MM-DD calendar date
func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return ErrInvalidDate
	}
	return nil
}
