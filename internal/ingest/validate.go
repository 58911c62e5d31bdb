package ingest

import "github.com/beaconlabs/beacon/internal/models"

const maxFieldLen = 100

// Validate checks a raw tracking event before any enrichment or write.
// Rules are applied in order; the first failure wins. It never panics
// for any JSON-shaped input.
func Validate(ev *models.TrackingEvent) *ValidationError {
	if ev == nil || ev.Event == "" {
		return newValidationError("Missing required field: event")
	}
	if ev.UserID == "" {
		return newValidationError("Missing required field: userId")
	}
	if len(ev.Event) > maxFieldLen {
		return newValidationError("Invalid event name")
	}
	if len(ev.UserID) > maxFieldLen {
		return newValidationError("Invalid userId")
	}
	return nil
}
