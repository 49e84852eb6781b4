package dto

import "github.com/viagens-moz/intercity/internal/domain/driver"

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// StopsResponse lists the route line in order
type StopsResponse struct {
	Stops []string `json:"stops"`
}

// FareResponse is a price lookup result
type FareResponse struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Seats       int    `json:"seats"`
	PerSeat     int    `json:"per_seat"`
	Total       int    `json:"total"`
}

// CandidateResponse is a driver offered to the admin for assignment
type CandidateResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	VehicleNumber  string `json:"vehicle_number,omitempty"`
	VehicleModel   string `json:"vehicle_model,omitempty"`
	AvailableSeats int    `json:"available_seats"`
	IsPriority     bool   `json:"is_priority"`
}

// CandidatesResponse keeps the ranked order of the candidates
type CandidatesResponse struct {
	Count      int                 `json:"count"`
	Candidates []CandidateResponse `json:"candidates"`
}

// NewCandidatesResponse converts ranked drivers preserving their order
func NewCandidatesResponse(drivers []*driver.Driver) CandidatesResponse {
	out := CandidatesResponse{Count: len(drivers), Candidates: make([]CandidateResponse, 0, len(drivers))}
	for _, d := range drivers {
		out.Candidates = append(out.Candidates, CandidateResponse{
			ID:             d.ID.String(),
			Name:           d.Name,
			Phone:          d.Phone,
			VehicleNumber:  d.VehicleNumber,
			VehicleModel:   d.VehicleModel,
			AvailableSeats: d.AvailableSeats,
			IsPriority:     d.IsPriority,
		})
	}
	return out
}
