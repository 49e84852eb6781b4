package monitoring

import (
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// Config holds New Relic configuration
type Config struct {
	LicenseKey string
	AppName    string
	Enabled    bool
	LogLevel   string
}

// NewRelicApp wraps the New Relic application
type NewRelicApp struct {
	*newrelic.Application
	enabled bool
}

// New creates a new New Relic application
func New(cfg Config) (*NewRelicApp, error) {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		return Disabled(), nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(true),
		newrelic.ConfigDistributedTracerEnabled(true),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create New Relic application: %w", err)
	}

	return &NewRelicApp{app, true}, nil
}

// Disabled returns a no-op application
func Disabled() *NewRelicApp {
	return &NewRelicApp{nil, false}
}

// StartTransaction starts a new transaction
func (nr *NewRelicApp) StartTransaction(name string) *newrelic.Transaction {
	if !nr.IsEnabled() {
		return nil
	}
	return nr.Application.StartTransaction(name)
}

// RecordCustomEvent records a custom event
func (nr *NewRelicApp) RecordCustomEvent(eventType string, params map[string]interface{}) {
	if !nr.IsEnabled() {
		return
	}
	nr.Application.RecordCustomEvent(eventType, params)
}

// RecordCustomMetric records a custom metric
func (nr *NewRelicApp) RecordCustomMetric(name string, value float64) {
	if !nr.IsEnabled() {
		return
	}
	nr.Application.RecordCustomMetric(name, value)
}

// Shutdown gracefully shuts down the New Relic application
func (nr *NewRelicApp) Shutdown(timeout time.Duration) {
	if !nr.IsEnabled() {
		return
	}
	nr.Application.Shutdown(timeout)
}

// Custom metric helpers

// RecordMatchingLatency records driver matching latency
func (nr *NewRelicApp) RecordMatchingLatency(kind string, latencyMs float64) {
	nr.RecordCustomMetric(fmt.Sprintf("custom/matching/%s/latency_ms", kind), latencyMs)
}

// RecordCandidates records how many drivers survived matching
func (nr *NewRelicApp) RecordCandidates(kind string, count int) {
	nr.RecordCustomMetric(fmt.Sprintf("custom/matching/%s/candidates", kind), float64(count))
}

// RecordTripBooked records a seat booking
func (nr *NewRelicApp) RecordTripBooked(origin, destination string, seats, price int) {
	nr.RecordCustomEvent("TripBooked", map[string]interface{}{
		"origin":      origin,
		"destination": destination,
		"seats":       seats,
		"price":       price,
		"timestamp":   time.Now().Unix(),
	})
}

// RecordParcelRequested records a parcel request
func (nr *NewRelicApp) RecordParcelRequested(origin, destination, size string) {
	nr.RecordCustomEvent("ParcelRequested", map[string]interface{}{
		"origin":      origin,
		"destination": destination,
		"size":        size,
	})
}

// RecordAssignment records a driver being bound to a trip or parcel
func (nr *NewRelicApp) RecordAssignment(kind, entityID, driverID string) {
	nr.RecordCustomEvent("DriverAssigned", map[string]interface{}{
		"kind":      kind,
		"entity_id": entityID,
		"driver_id": driverID,
	})
}

// RecordPaymentConfirmed records an admin payment confirmation
func (nr *NewRelicApp) RecordPaymentConfirmed(kind string, amount int) {
	nr.RecordCustomEvent("PaymentConfirmed", map[string]interface{}{
		"kind":   kind,
		"amount": amount,
	})
}

// RecordDatabasePoolStats records database connection pool statistics
func (nr *NewRelicApp) RecordDatabasePoolStats(stats map[string]interface{}) {
	if open, ok := stats["open_connections"].(int); ok {
		nr.RecordCustomMetric("custom/db/open_connections", float64(open))
	}
	if inUse, ok := stats["in_use"].(int); ok {
		nr.RecordCustomMetric("custom/db/in_use_connections", float64(inUse))
	}
	if idle, ok := stats["idle"].(int); ok {
		nr.RecordCustomMetric("custom/db/idle_connections", float64(idle))
	}
	if waits, ok := stats["wait_count"].(int64); ok {
		nr.RecordCustomMetric("custom/db/wait_count", float64(waits))
	}
	if waitMs, ok := stats["wait_ms"].(int64); ok {
		nr.RecordCustomMetric("custom/db/wait_ms", float64(waitMs))
	}
}

// RecordRedisPoolStats records Redis pool statistics
func (nr *NewRelicApp) RecordRedisPoolStats(stats map[string]interface{}) {
	if hits, ok := stats["hits"].(uint32); ok {
		nr.RecordCustomMetric("custom/redis/cache_hits", float64(hits))
	}
	if misses, ok := stats["misses"].(uint32); ok {
		nr.RecordCustomMetric("custom/redis/cache_misses", float64(misses))
	}
	if timeouts, ok := stats["timeouts"].(uint32); ok {
		nr.RecordCustomMetric("custom/redis/timeouts", float64(timeouts))
	}
}

// IsEnabled returns whether New Relic is enabled
func (nr *NewRelicApp) IsEnabled() bool {
	return nr != nil && nr.enabled && nr.Application != nil
}
