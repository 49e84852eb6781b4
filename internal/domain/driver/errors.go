package driver

import "errors"

var (
	ErrDriverNotFound     = errors.New("driver not found")
	ErrInvalidDriverName  = errors.New("invalid driver name")
	ErrInvalidDriverPhone = errors.New("invalid driver phone")
	ErrInvalidSeats       = errors.New("invalid available seats")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
	ErrDriverNotApproved  = errors.New("driver is not approved")
	ErrDriverNotEligible  = errors.New("driver does not cover the requested route")
)
