package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/beaconlabs/beacon/internal/analytics"
	"github.com/beaconlabs/beacon/internal/cache"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	studioID, ok := s.pathParam(w, r, "/api/stats/")
	if !ok {
		return
	}

	days := analytics.ClampDays(queryInt(r, "days"))
	key := cache.Key("stats", studioID, days)

	var stats analytics.StudioStats
	_, err := s.cache.GetOrCompute(r.Context(), "stats", key, s.config.Cache.StatsTTL, &stats, func() error {
		out, err := s.analytics.StudioOverview(r.Context(), studioID, days)
		if err != nil {
			return err
		}
		stats = *out
		return nil
	})
	if err != nil {
		s.logger.Error("failed to build studio stats",
			zap.String("studio_id", studioID), zap.Error(err))
		s.errorResponse(w, "failed to get stats", "", http.StatusInternalServerError)
		return
	}

	s.jsonResponse(w, stats)
}

func (s *Server) handleRealtime(w http.ResponseWriter, r *http.Request) {
	studioID, ok := s.pathParam(w, r, "/api/realtime/")
	if !ok {
		return
	}

	minutes := analytics.ClampMinutes(queryInt(r, "minutes"))
	key := cache.Key("realtime", studioID, minutes)

	var stats analytics.RealtimeStats
	_, err := s.cache.GetOrCompute(r.Context(), "realtime", key, s.config.Cache.RealtimeTTL, &stats, func() error {
		out, err := s.analytics.Realtime(r.Context(), studioID, minutes)
		if err != nil {
			return err
		}
		stats = *out
		return nil
	})
	if err != nil {
		s.logger.Error("failed to build realtime stats",
			zap.String("studio_id", studioID), zap.Error(err))
		s.errorResponse(w, "failed to get realtime stats", "", http.StatusInternalServerError)
		return
	}

	s.jsonResponse(w, stats)
}

func (s *Server) handleRevenue(w http.ResponseWriter, r *http.Request) {
	studioID, ok := s.pathParam(w, r, "/api/revenue/")
	if !ok {
		return
	}

	days := analytics.ClampDays(queryInt(r, "days"))
	key := cache.Key("revenue", studioID, days)

	var stats analytics.RevenueStats
	_, err := s.cache.GetOrCompute(r.Context(), "revenue", key, s.config.Cache.StatsTTL, &stats, func() error {
		out, err := s.analytics.RevenueStats(r.Context(), studioID, days)
		if err != nil {
			return err
		}
		stats = *out
		return nil
	})
	if err != nil {
		s.logger.Error("failed to build revenue stats",
			zap.String("studio_id", studioID), zap.Error(err))
		s.errorResponse(w, "failed to get revenue stats", "", http.StatusInternalServerError)
		return
	}

	s.jsonResponse(w, stats)
}

func (s *Server) handleContentPerformance(w http.ResponseWriter, r *http.Request) {
	rest, ok := s.pathParam(w, r, "/api/content/")
	if !ok {
		return
	}

	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		s.errorResponse(w, "not found", r.URL.Path, http.StatusNotFound)
		return
	}
	studioID, contentID := parts[0], parts[1]

	days := analytics.ClampDays(queryInt(r, "days"))
	key := cache.Key("content", studioID, contentID, days)

	var perf analytics.ContentPerformance
	_, err := s.cache.GetOrCompute(r.Context(), "content", key, s.config.Cache.StatsTTL, &perf, func() error {
		out, err := s.analytics.ContentPerformance(r.Context(), studioID, contentID, days)
		if err != nil {
			return err
		}
		perf = *out
		return nil
	})
	if err != nil {
		s.logger.Error("failed to build content performance",
			zap.String("studio_id", studioID),
			zap.String("content_id", contentID),
			zap.Error(err))
		s.errorResponse(w, "failed to get content performance", "", http.StatusInternalServerError)
		return
	}

	s.jsonResponse(w, perf)
}

// pathParam enforces GET and extracts the trailing path parameter.
func (s *Server) pathParam(w http.ResponseWriter, r *http.Request, prefix string) (string, bool) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", "", http.StatusMethodNotAllowed)
		return "", false
	}

	param := strings.TrimPrefix(r.URL.Path, prefix)
	if param == "" || param == r.URL.Path {
		s.errorResponse(w, "not found", r.URL.Path, http.StatusNotFound)
		return "", false
	}
	return param, true
}

func queryInt(r *http.Request, name string) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
