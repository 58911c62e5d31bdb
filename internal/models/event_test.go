package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackingEventUnmarshalKnownFields(t *testing.T) {
	var ev TrackingEvent
	require.NoError(t, json.Unmarshal([]byte(`{
		"event": "purchase_completed",
		"userId": "u1",
		"studioId": "studio-1",
		"amount": 9.99,
		"paymentMethod": "card",
		"timestamp": 1705320000000
	}`), &ev))

	assert.Equal(t, "purchase_completed", ev.Event)
	assert.Equal(t, "u1", ev.UserID)
	assert.Equal(t, "studio-1", ev.StudioID)
	assert.Equal(t, 9.99, ev.Amount)
	assert.Equal(t, "card", ev.PaymentMethod)
	assert.Equal(t, int64(1705320000000), ev.Timestamp)
	assert.Nil(t, ev.Extra)
}

func TestTrackingEventUnmarshalExtraFields(t *testing.T) {
	var ev TrackingEvent
	require.NoError(t, json.Unmarshal([]byte(`{
		"event": "login",
		"userId": "u1",
		"abTestGroup": "variant-b",
		"appVersion": "2.4.1",
		"nested": {"k": 1}
	}`), &ev))

	assert.Equal(t, "login", ev.Event)
	require.NotNil(t, ev.Extra)
	assert.Equal(t, "variant-b", ev.Extra["abTestGroup"])
	assert.Equal(t, "2.4.1", ev.Extra["appVersion"])
	assert.Equal(t, map[string]any{"k": float64(1)}, ev.Extra["nested"])

	_, hasKnown := ev.Extra["event"]
	assert.False(t, hasKnown, "typed fields never leak into Extra")
}

func TestTrackingEventMarshalMergesExtra(t *testing.T) {
	ev := TrackingEvent{
		Event:  "login",
		UserID: "u1",
		Extra:  map[string]any{"appVersion": "2.4.1"},
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "login", raw["event"])
	assert.Equal(t, "u1", raw["userId"])
	assert.Equal(t, "2.4.1", raw["appVersion"])
}

func TestTrackingEventRoundTripPreservesExtra(t *testing.T) {
	in := []byte(`{"event":"login","userId":"u1","customTag":"x"}`)

	var ev TrackingEvent
	require.NoError(t, json.Unmarshal(in, &ev))

	out, err := json.Marshal(ev)
	require.NoError(t, err)

	var ev2 TrackingEvent
	require.NoError(t, json.Unmarshal(out, &ev2))
	assert.Equal(t, ev.Event, ev2.Event)
	assert.Equal(t, ev.Extra, ev2.Extra)
}

func TestTrackingEventMarshalExtraNeverShadowsTyped(t *testing.T) {
	// An Extra key colliding with a typed field must not overwrite it.
	ev := TrackingEvent{
		Event: "login", UserID: "u1",
		Extra: map[string]any{"userId": "spoofed"},
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "u1", raw["userId"])
}

func TestTrackingEventUnmarshalInvalid(t *testing.T) {
	var ev TrackingEvent
	assert.Error(t, json.Unmarshal([]byte(`{"event": 42}`), &ev))
	assert.Error(t, json.Unmarshal([]byte(`not json`), &ev))
}

func TestSchemaForLayouts(t *testing.T) {
	assert.Equal(t, DatasetRevenue, SchemaFor(DatasetRevenue).Dataset)
	assert.Equal(t, DatasetContent, SchemaFor(DatasetContent).Dataset)
	assert.Equal(t, DatasetUserBehavior, SchemaFor(DatasetUserBehavior).Dataset)

	// Every layout indexes by studio and stamps a timestamp double.
	for _, d := range []Dataset{DatasetRevenue, DatasetContent, DatasetUserBehavior} {
		schema := SchemaFor(d)
		assert.Equal(t, []string{"studio_id"}, schema.Indexes, "dataset %s", d)
		assert.Contains(t, schema.Doubles, "timestamp", "dataset %s", d)
	}
}
