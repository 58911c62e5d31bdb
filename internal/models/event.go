package models

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// TrackingEvent is the raw payload accepted by the tracking endpoints.
// Known fields are typed; anything else the client sends is preserved
// in Extra so shapers and downstream consumers never lose data.
type TrackingEvent struct {
	Event     string `json:"event"`
	UserID    string `json:"userId"`
	StudioID  string `json:"studioId,omitempty"`
	SessionID string `json:"sessionId,omitempty"`

	// Content identifiers
	ContentID   string `json:"contentId,omitempty"`
	ChapterID   string `json:"chapterId,omitempty"`
	FlickID     string `json:"flickId,omitempty"`
	SeriesID    string `json:"seriesId,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Quality     string `json:"quality,omitempty"`

	// Revenue fields
	PaymentMethod string  `json:"paymentMethod,omitempty"`
	Currency      string  `json:"currency,omitempty"`
	Amount        float64 `json:"amount,omitempty"`
	Coins         float64 `json:"coins,omitempty"`
	Tax           float64 `json:"tax,omitempty"`
	Fee           float64 `json:"fee,omitempty"`

	// Content engagement fields
	PageNumber      float64 `json:"pageNumber,omitempty"`
	TotalPages      float64 `json:"totalPages,omitempty"`
	WatchTime       float64 `json:"watchTime,omitempty"`
	Duration        float64 `json:"duration,omitempty"`
	ReadingTime     float64 `json:"readingTime,omitempty"`
	BufferingTime   float64 `json:"bufferingTime,omitempty"`
	ScrollDepth     float64 `json:"scrollDepth,omitempty"`
	Bitrate         float64 `json:"bitrate,omitempty"`
	CompletionRate  float64 `json:"completionRate,omitempty"`
	EngagementScore float64 `json:"engagementScore,omitempty"`

	// Behavior fields
	Referrer string  `json:"referrer,omitempty"`
	Source   string  `json:"source,omitempty"`
	Medium   string  `json:"medium,omitempty"`
	Value    float64 `json:"value,omitempty"`
	Score    float64 `json:"score,omitempty"`

	// Client-supplied timestamp in epoch milliseconds.
	Timestamp int64 `json:"timestamp,omitempty"`

	// Extra carries fields not covered by the struct above.
	Extra map[string]any `json:"-"`
}

// trackingEventAlias avoids UnmarshalJSON recursion.
type trackingEventAlias TrackingEvent

var (
	knownFieldsOnce sync.Once
	knownFields     map[string]struct{}
)

func knownEventFields() map[string]struct{} {
	knownFieldsOnce.Do(func() {
		knownFields = make(map[string]struct{})
		t := reflect.TypeOf(TrackingEvent{})
		for i := 0; i < t.NumField(); i++ {
			tag := t.Field(i).Tag.Get("json")
			if tag == "" || tag == "-" {
				continue
			}
			name := strings.Split(tag, ",")[0]
			knownFields[name] = struct{}{}
		}
	})
	return knownFields
}

// UnmarshalJSON decodes known fields into the struct and keeps the
// remainder of the object in Extra.
func (e *TrackingEvent) UnmarshalJSON(data []byte) error {
	var alias trackingEventAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for name := range knownEventFields() {
		delete(raw, name)
	}

	*e = TrackingEvent(alias)
	if len(raw) > 0 {
		e.Extra = raw
	}
	return nil
}

// MarshalJSON folds Extra back into the object.
func (e TrackingEvent) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(trackingEventAlias(e))
	if err != nil {
		return nil, err
	}
	if len(e.Extra) == 0 {
		return base, nil
	}

	var merged map[string]any
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range e.Extra {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// GeoContext holds request-derived geolocation fields as supplied by the
// reverse proxy (or a MaxMind fallback). Values are raw strings; the
// enricher applies sentinels and numeric parsing.
type GeoContext struct {
	Country   string
	City      string
	Region    string
	Timezone  string
	Latitude  string
	Longitude string
	ASN       string
	Colo      string
}

// RequestMeta holds transport-level metadata attached to an event.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// EnrichedEvent is a TrackingEvent merged with geo and request metadata
// plus a canonical timestamp. Built once per event, immutable after.
type EnrichedEvent struct {
	TrackingEvent

	// Canonical epoch-millisecond timestamp, always positive.
	TimestampMS int64

	Country   string
	City      string
	Region    string
	Timezone  string
	Latitude  float64
	Longitude float64
	ASN       int
	Colo      string

	IP        string
	UserAgent string
}
