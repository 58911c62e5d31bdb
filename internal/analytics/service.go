package analytics

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/beaconlabs/beacon/internal/metrics"
	"github.com/beaconlabs/beacon/internal/storage"
)

// Window bounds for caller-supplied query parameters.
const (
	DefaultDays    = 7
	MaxDays        = 365
	DefaultMinutes = 5
	MaxMinutes     = 60
)

// Service issues analytical queries against the event datasets and
// folds the row sets into grouped summaries.
type Service struct {
	store   storage.DatasetQuerier
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewService creates an analytics service over a dataset querier.
func NewService(store storage.DatasetQuerier, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, logger: logger, metrics: m}
}

// ClampDays normalizes a caller-supplied day window.
func ClampDays(days int) int {
	if days <= 0 {
		return DefaultDays
	}
	if days > MaxDays {
		return MaxDays
	}
	return days
}

// ClampMinutes normalizes a caller-supplied minute window.
func ClampMinutes(minutes int) int {
	if minutes <= 0 {
		return DefaultMinutes
	}
	if minutes > MaxMinutes {
		return MaxMinutes
	}
	return minutes
}

// StudioStats is the combined overview served by /api/stats.
type StudioStats struct {
	StudioID     string        `json:"studioId"`
	Days         int           `json:"days"`
	Content      []ContentStat `json:"content"`
	Revenue      *RevenueStats `json:"revenue"`
	Demographics *Demographics `json:"demographics"`
	GeneratedAt  time.Time     `json:"generatedAt"`
}

// StudioOverview combines the content, revenue and demographics
// aggregates for one studio. The three queries are independent and run
// concurrently; a failed branch is logged and degrades to its
// zero-valued summary instead of corrupting or aborting the others.
func (s *Service) StudioOverview(ctx context.Context, studioID string, days int) (*StudioStats, error) {
	days = ClampDays(days)

	out := &StudioStats{
		StudioID:    studioID,
		Days:        days,
		GeneratedAt: time.Now().UTC(),
	}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		content, err := s.ContentStats(ctx, studioID, days)
		if err != nil {
			s.logger.Warn("content stats degraded to empty",
				zap.String("studio_id", studioID), zap.Error(err))
			content = []ContentStat{}
		}
		out.Content = content
	}()

	go func() {
		defer wg.Done()
		revenue, err := s.RevenueStats(ctx, studioID, days)
		if err != nil {
			s.logger.Warn("revenue stats degraded to zero",
				zap.String("studio_id", studioID), zap.Error(err))
			revenue = emptyRevenueStats()
		}
		out.Revenue = revenue
	}()

	go func() {
		defer wg.Done()
		demo, err := s.Demographics(ctx, studioID, days)
		if err != nil {
			s.logger.Warn("demographics degraded to empty",
				zap.String("studio_id", studioID), zap.Error(err))
			demo = &Demographics{ByLocation: []LocationStat{}}
		}
		out.Demographics = demo
	}()

	wg.Wait()
	return out, nil
}

// query wraps the store call with latency/error metrics per aggregate.
func (s *Service) query(ctx context.Context, aggregate, q string, args ...any) ([]storage.Row, error) {
	start := time.Now()
	rows, err := s.store.Query(ctx, q, args...)
	if s.metrics != nil {
		s.metrics.ObserveQuery(aggregate, start)
		if err != nil {
			s.metrics.QueryErrors.WithLabelValues(aggregate).Inc()
		}
	}
	return rows, err
}

func sinceDays(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -days)
}

func sinceMinutes(minutes int) time.Time {
	return time.Now().UTC().Add(-time.Duration(minutes) * time.Minute)
}
