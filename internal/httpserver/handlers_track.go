package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/beaconlabs/beacon/internal/geo"
	"github.com/beaconlabs/beacon/internal/ingest"
	"github.com/beaconlabs/beacon/internal/models"
)

// trackResponse is the acknowledgment body for a single tracked event.
type trackResponse struct {
	Success   bool          `json:"success"`
	Tracked   string        `json:"tracked"`
	Timestamp int64         `json:"timestamp"`
	Enriched  trackEnriched `json:"enriched"`
}

type trackEnriched struct {
	Country  string `json:"country"`
	City     string `json:"city"`
	Timezone string `json:"timezone"`
}

// batchRequest is the body of POST /track/batch.
type batchRequest struct {
	Events []models.TrackingEvent `json:"events"`
}

type batchResponse struct {
	Success bool `json:"success"`
	*ingest.BatchResult
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", "", http.StatusMethodNotAllowed)
		return
	}

	var ev models.TrackingEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		s.errorResponse(w, "invalid json", err.Error(), http.StatusBadRequest)
		return
	}

	geoCtx, meta := s.requestContext(r)

	result, err := s.dispatcher.Track(r.Context(), ev, geoCtx, meta)
	if err != nil {
		s.trackError(w, err)
		return
	}

	s.jsonResponse(w, trackResponse{
		Success:   true,
		Tracked:   result.Event,
		Timestamp: result.Timestamp,
		Enriched: trackEnriched{
			Country:  result.Country,
			City:     result.City,
			Timezone: result.Timezone,
		},
	})
}

func (s *Server) handleTrackBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", "", http.StatusMethodNotAllowed)
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, "invalid json", err.Error(), http.StatusBadRequest)
		return
	}

	geoCtx, meta := s.requestContext(r)

	result, err := s.dispatcher.TrackBatch(r.Context(), req.Events, geoCtx, meta)
	if err != nil {
		s.trackError(w, err)
		return
	}

	s.jsonResponse(w, batchResponse{Success: result.Failed == 0, BatchResult: result})
}

// requestContext assembles the geo and transport metadata for an
// inbound tracking request.
func (s *Server) requestContext(r *http.Request) (models.GeoContext, models.RequestMeta) {
	geoCtx := geo.FromHeaders(r.Header)
	meta := geo.RequestMeta(r)
	if s.geoFill != nil {
		geoCtx = s.geoFill.Fill(geoCtx, meta.IP)
	}
	return geoCtx, meta
}

// trackError maps pipeline errors onto the HTTP error taxonomy.
func (s *Server) trackError(w http.ResponseWriter, err error) {
	var verr *ingest.ValidationError
	if errors.As(err, &verr) {
		s.errorResponse(w, "validation failed", verr.Message, http.StatusBadRequest)
		return
	}

	var derr *ingest.DependencyError
	if errors.As(err, &derr) {
		s.logger.Error("ingestion dependency failure", zap.Error(derr))
		s.errorResponse(w, "failed to track event", derr.Op, http.StatusInternalServerError)
		return
	}

	s.logger.Error("unexpected ingestion error", zap.Error(err))
	s.errorResponse(w, "internal error", "", http.StatusInternalServerError)
}
