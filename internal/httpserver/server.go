package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/beaconlabs/beacon/internal/analytics"
	"github.com/beaconlabs/beacon/internal/cache"
	"github.com/beaconlabs/beacon/internal/config"
	"github.com/beaconlabs/beacon/internal/geo"
	"github.com/beaconlabs/beacon/internal/ingest"
	"github.com/beaconlabs/beacon/internal/metrics"
	"github.com/beaconlabs/beacon/internal/middleware"
	"github.com/beaconlabs/beacon/internal/storage"
)

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	Store   storage.DatasetStore
	Redis   *redis.Client
	Geo     *geo.MaxMindProvider
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Server wraps the HTTP handlers over the ingestion and analytics
// services.
type Server struct {
	dispatcher *ingest.Dispatcher
	analytics  *analytics.Service
	cache      *cache.Gate
	geoFill    *geo.MaxMindProvider
	logger     *zap.Logger
	config     *config.Config
	metrics    *metrics.Metrics
}

// NewServer constructs a new http.Handler with all routes registered.
func NewServer(deps *Dependencies) http.Handler {
	s := &Server{
		dispatcher: ingest.NewDispatcher(deps.Store, deps.Logger, deps.Metrics, deps.Config.Ingest.MaxBatchSize),
		analytics:  analytics.NewService(deps.Store, deps.Logger, deps.Metrics),
		cache:      cache.NewGate(deps.Redis, deps.Logger, deps.Metrics),
		geoFill:    deps.Geo,
		logger:     deps.Logger,
		config:     deps.Config,
		metrics:    deps.Metrics,
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	if deps.Config.Metrics.Enabled {
		mux.Handle(deps.Config.Metrics.Path, metrics.Handler())
	}

	// Ingestion
	mux.HandleFunc("/track", s.handleTrack)
	mux.HandleFunc("/track/batch", s.handleTrackBatch)

	// Aggregates
	mux.HandleFunc("/api/stats/", s.handleStats)
	mux.HandleFunc("/api/realtime/", s.handleRealtime)
	mux.HandleFunc("/api/revenue/", s.handleRevenue)
	mux.HandleFunc("/api/content/", s.handleContentPerformance)

	// Everything else is a JSON 404
	mux.HandleFunc("/", s.handleNotFound)

	// Middleware chain, outermost first
	var handler http.Handler = mux
	handler = middleware.NewAuthMiddleware(deps.Config.Auth, deps.Logger).Handler(handler)
	if deps.Config.RateLimit.Enabled {
		handler = middleware.NewRateLimitMiddleware(deps.Config.RateLimit, deps.Logger, deps.Metrics).Handler(handler)
	}
	handler = middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics).Handler(handler)
	handler = middleware.NewRecoveryMiddleware(deps.Logger).Handler(handler)

	return handler
}

// ---- Health Check ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.errorResponse(w, "not found", r.URL.Path, http.StatusNotFound)
}

// ---- Helper Methods ----

func (s *Server) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    int    `json:"code"`
}

func (s *Server) errorResponse(w http.ResponseWriter, message, details string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorBody{Error: message, Details: details, Code: code})
}
