package ingest

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/beaconlabs/beacon/internal/metrics"
	"github.com/beaconlabs/beacon/internal/models"
)

// DefaultMaxBatchSize bounds a single batch submission.
const DefaultMaxBatchSize = 100

// DatasetWriter is the write side of the analytical store.
type DatasetWriter interface {
	WriteDataPoint(ctx context.Context, dataset models.Dataset, rec models.DatasetRecord) error
}

// Dispatcher runs the validate -> enrich -> classify -> shape -> write
// pipeline for single and batched submissions.
type Dispatcher struct {
	writer   DatasetWriter
	logger   *zap.Logger
	metrics  *metrics.Metrics
	maxBatch int
}

// NewDispatcher creates an ingestion dispatcher. maxBatch <= 0 selects
// DefaultMaxBatchSize.
func NewDispatcher(writer DatasetWriter, logger *zap.Logger, m *metrics.Metrics, maxBatch int) *Dispatcher {
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatchSize
	}
	return &Dispatcher{
		writer:   writer,
		logger:   logger,
		metrics:  m,
		maxBatch: maxBatch,
	}
}

// TrackResult acknowledges a successful ingestion.
type TrackResult struct {
	Event     string `json:"event"`
	Timestamp int64  `json:"timestamp"`
	Country   string `json:"country"`
	City      string `json:"city"`
	Timezone  string `json:"timezone"`
}

// BatchItemResult reports the outcome of one event within a batch.
type BatchItemResult struct {
	Index   int    `json:"index"`
	Event   string `json:"event,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BatchResult aggregates a batch submission.
type BatchResult struct {
	Total      int               `json:"total"`
	Successful int               `json:"successful"`
	Failed     int               `json:"failed"`
	Results    []BatchItemResult `json:"results"`
}

// Track ingests a single event. Validation failures return a
// *ValidationError before any write; a write failure returns a
// *DependencyError.
func (d *Dispatcher) Track(ctx context.Context, ev models.TrackingEvent, geo models.GeoContext, meta models.RequestMeta) (*TrackResult, error) {
	if verr := Validate(&ev); verr != nil {
		if d.metrics != nil {
			d.metrics.EventsRejected.WithLabelValues("validation").Inc()
		}
		return nil, verr
	}

	enriched := Enrich(ev, geo, meta)
	dataset := Classify(enriched.Event)
	record := Shape(dataset, enriched)

	if err := d.writer.WriteDataPoint(ctx, dataset, record); err != nil {
		d.logger.Error("dataset write failed",
			zap.String("event", enriched.Event),
			zap.String("studio_id", enriched.StudioID),
			zap.String("dataset", dataset.String()),
			zap.Int64("timestamp", enriched.TimestampMS),
			zap.Error(err),
		)
		if d.metrics != nil {
			d.metrics.EventsRejected.WithLabelValues("write").Inc()
		}
		return nil, &DependencyError{Op: "dataset write", Cause: err}
	}

	if d.metrics != nil {
		d.metrics.EventsIngested.WithLabelValues(dataset.String()).Inc()
	}

	d.logger.Debug("event tracked",
		zap.String("event", enriched.Event),
		zap.String("studio_id", enriched.StudioID),
		zap.String("dataset", dataset.String()),
	)

	return &TrackResult{
		Event:     enriched.Event,
		Timestamp: enriched.TimestampMS,
		Country:   enriched.Country,
		City:      enriched.City,
		Timezone:  enriched.Timezone,
	}, nil
}

// TrackBatch ingests up to maxBatch events. The batch itself is
// rejected up front when empty or oversized; after that each item is
// processed independently, so one bad event never blocks the others.
func (d *Dispatcher) TrackBatch(ctx context.Context, events []models.TrackingEvent, geo models.GeoContext, meta models.RequestMeta) (*BatchResult, error) {
	if len(events) == 0 {
		return nil, newValidationError("events must be a non-empty array")
	}
	if len(events) > d.maxBatch {
		return nil, newValidationError("batch size exceeds maximum of %d", d.maxBatch)
	}

	result := &BatchResult{
		Total:   len(events),
		Results: make([]BatchItemResult, 0, len(events)),
	}

	for i, ev := range events {
		item := BatchItemResult{Index: i, Event: ev.Event}

		if _, err := d.Track(ctx, ev, geo, meta); err != nil {
			item.Success = false
			item.Error = publicError(err)
			result.Failed++
		} else {
			item.Success = true
			result.Successful++
		}

		result.Results = append(result.Results, item)
	}

	if d.metrics != nil {
		d.metrics.BatchSize.Observe(float64(len(events)))
	}

	return result, nil
}

// publicError maps pipeline errors to caller-safe messages: validation
// messages pass through, collaborator causes do not.
func publicError(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return "failed to store event"
}
