package websocket

// Event types pushed to connected dashboards
const (
	EventTripBooked       = "trip_booked"
	EventTripAssigned     = "trip_assigned"
	EventTripCompleted    = "trip_completed"
	EventTripCancelled    = "trip_cancelled"
	EventParcelRequested  = "parcel_requested"
	EventParcelQuoted     = "parcel_quoted"
	EventParcelStatus     = "parcel_status"
	EventPaymentConfirmed = "payment_confirmed"
	EventRosterUpdated    = "roster_updated"
)

// Publish fans an event out to every admin dashboard and to the clients
// following entityID. An empty entityID only reaches admins.
func (h *Hub) Publish(eventType, entityID string, data interface{}) {
	msg := Message{Type: eventType, Data: data}
	h.BroadcastToType(UserTypeAdmin, msg)
	if entityID != "" {
		h.BroadcastToEntity(entityID, msg)
	}
}
