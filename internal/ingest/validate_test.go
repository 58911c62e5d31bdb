package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beaconlabs/beacon/internal/models"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   models.TrackingEvent
		wantErr string
	}{
		{
			name:    "missing event",
			event:   models.TrackingEvent{UserID: "u1"},
			wantErr: "Missing required field: event",
		},
		{
			name:    "missing userId",
			event:   models.TrackingEvent{Event: "page_viewed"},
			wantErr: "Missing required field: userId",
		},
		{
			name:    "event too long",
			event:   models.TrackingEvent{Event: strings.Repeat("a", 101), UserID: "u1"},
			wantErr: "Invalid event name",
		},
		{
			name:    "userId too long",
			event:   models.TrackingEvent{Event: "page_viewed", UserID: strings.Repeat("u", 101)},
			wantErr: "Invalid userId",
		},
		{
			name:  "valid minimal event",
			event: models.TrackingEvent{Event: "page_viewed", UserID: "u1"},
		},
		{
			name:  "boundary lengths accepted",
			event: models.TrackingEvent{Event: strings.Repeat("a", 100), UserID: strings.Repeat("u", 100)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.event)
			if tt.wantErr == "" {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tt.wantErr, err.Message)
		})
	}
}

func TestValidateOrderOfRules(t *testing.T) {
	// Both required fields missing: the event rule fires first.
	err := Validate(&models.TrackingEvent{})
	require.NotNil(t, err)
	assert.Equal(t, "Missing required field: event", err.Message)
}

func TestValidateNilEvent(t *testing.T) {
	err := Validate(nil)
	require.NotNil(t, err)
	assert.Equal(t, "Missing required field: event", err.Message)
}
