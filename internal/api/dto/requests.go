package dto

// CreateTripRequest represents a passenger's seat booking
type CreateTripRequest struct {
	PassengerID    string `json:"passenger_id"`
	PassengerName  string `json:"passenger_name" binding:"required"`
	PassengerPhone string `json:"passenger_phone" binding:"required"`
	Origin         string `json:"origin" binding:"required"`
	Destination    string `json:"destination" binding:"required"`
	Date           string `json:"date" binding:"required"`
	Seats          int    `json:"seats" binding:"required,min=1,max=15"`
	PaymentMethod  string `json:"payment_method" binding:"required,oneof=MPESA EMOLA"`
}

// CreateParcelRequest represents a sender's delivery request
type CreateParcelRequest struct {
	SenderID    string `json:"sender_id"`
	SenderName  string `json:"sender_name" binding:"required"`
	SenderPhone string `json:"sender_phone" binding:"required"`
	Origin      string `json:"origin" binding:"required"`
	Destination string `json:"destination" binding:"required"`
	Size        string `json:"size" binding:"required,oneof=SMALL MEDIUM LARGE"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// RegisterDriverRequest represents a driver sign-up
type RegisterDriverRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"omitempty,email"`
	Phone          string `json:"phone" binding:"required"`
	VehicleNumber  string `json:"vehicle_number"`
	VehicleModel   string `json:"vehicle_model"`
	VehicleColor   string `json:"vehicle_color"`
	AvailableSeats int    `json:"available_seats" binding:"min=0"`
}

// SegmentRequest is a directed stretch of the line
type SegmentRequest struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
	Time  string `json:"time"`
}

// AddDateRequest puts a date in the driver's agenda. Route is optional:
// without it the driver's default route applies.
type AddDateRequest struct {
	Date  string          `json:"date" binding:"required"`
	Route *SegmentRequest `json:"route"`
}

// FlagRequest toggles an admin flag (approval or priority)
type FlagRequest struct {
	Value *bool `json:"value" binding:"required"`
}

// AssignDriverRequest binds a driver to a trip
type AssignDriverRequest struct {
	DriverID string `json:"driver_id" binding:"required"`
}

// QuoteParcelRequest binds a driver and a negotiated price to a parcel
type QuoteParcelRequest struct {
	DriverID string `json:"driver_id" binding:"required"`
	Price    int    `json:"price" binding:"required,min=1"`
}
