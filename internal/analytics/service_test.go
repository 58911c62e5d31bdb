package analytics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/beaconlabs/beacon/internal/storage"
)

// fakeQuerier routes canned rows by the table named in the query text.
type fakeQuerier struct {
	rows map[string][]storage.Row
	errs map[string]error
}

func (f *fakeQuerier) Query(_ context.Context, query string, _ ...any) ([]storage.Row, error) {
	for table, err := range f.errs {
		if strings.Contains(query, table) {
			return nil, err
		}
	}
	for table, rows := range f.rows {
		if strings.Contains(query, table) {
			return rows, nil
		}
	}
	return []storage.Row{}, nil
}

func newTestService(q storage.DatasetQuerier) *Service {
	return NewService(q, zap.NewNop(), nil)
}

func TestClampDays(t *testing.T) {
	assert.Equal(t, DefaultDays, ClampDays(0))
	assert.Equal(t, DefaultDays, ClampDays(-3))
	assert.Equal(t, 1, ClampDays(1))
	assert.Equal(t, 30, ClampDays(30))
	assert.Equal(t, MaxDays, ClampDays(MaxDays))
	assert.Equal(t, MaxDays, ClampDays(MaxDays+1))
	assert.Equal(t, MaxDays, ClampDays(10000))
}

func TestClampMinutes(t *testing.T) {
	assert.Equal(t, DefaultMinutes, ClampMinutes(0))
	assert.Equal(t, DefaultMinutes, ClampMinutes(-1))
	assert.Equal(t, 1, ClampMinutes(1))
	assert.Equal(t, MaxMinutes, ClampMinutes(MaxMinutes))
	assert.Equal(t, MaxMinutes, ClampMinutes(61))
}

func TestStudioOverviewCombinesAggregates(t *testing.T) {
	svc := newTestService(&fakeQuerier{rows: map[string][]storage.Row{
		"content_events": {
			{"event": "chapter_opened", "content_id": "ch_1", "user_id": "u1", "content_type": "manga", "time_spent": 10.0, "completion_rate": 80.0},
		},
		"revenue_events": {
			{"event": "purchase_completed", "country": "US", "method": "card", "amount": 9.99, "coins": 0.0, "ts": float64(day1Noon)},
		},
		"user_behavior_events": {
			{"user_id": "u1", "country": "US", "city": "Austin"},
		},
	}})

	stats, err := svc.StudioOverview(context.Background(), "studio-1", 0)

	require.NoError(t, err)
	assert.Equal(t, "studio-1", stats.StudioID)
	assert.Equal(t, DefaultDays, stats.Days)
	assert.False(t, stats.GeneratedAt.IsZero())

	require.Len(t, stats.Content, 1)
	assert.Equal(t, "chapter_opened", stats.Content[0].Event)

	require.NotNil(t, stats.Revenue)
	assert.Equal(t, 9.99, stats.Revenue.TotalRevenue)

	require.NotNil(t, stats.Demographics)
	require.Len(t, stats.Demographics.ByLocation, 1)
}

func TestStudioOverviewDegradesFailedBranch(t *testing.T) {
	svc := newTestService(&fakeQuerier{
		rows: map[string][]storage.Row{
			"user_behavior_events": {
				{"user_id": "u1", "country": "DE", "city": "Berlin"},
			},
		},
		errs: map[string]error{
			"revenue_events": errors.New("query timeout"),
		},
	})

	stats, err := svc.StudioOverview(context.Background(), "studio-1", 7)

	require.NoError(t, err, "one failed branch must not fail the overview")

	require.NotNil(t, stats.Revenue)
	assert.Equal(t, 0.0, stats.Revenue.TotalRevenue)
	assert.Empty(t, stats.Revenue.ByCountry)

	assert.NotNil(t, stats.Content)
	require.Len(t, stats.Demographics.ByLocation, 1)
}

func TestRealtimeMergesBothDatasets(t *testing.T) {
	svc := newTestService(&fakeQuerier{rows: map[string][]storage.Row{
		"content_events": {
			{"content_id": "ch_1", "user_id": "u1", "country": "US", "city": "Austin"},
		},
		"user_behavior_events": {
			{"content_id": "", "user_id": "u2", "country": "US", "city": "Austin"},
		},
	}})

	stats, err := svc.Realtime(context.Background(), "studio-1", 0)

	require.NoError(t, err)
	assert.Equal(t, DefaultMinutes, stats.WindowMinutes)
	assert.Equal(t, int64(2), stats.ActiveUsers)
	assert.Equal(t, int64(2), stats.TotalEvents)
	require.Len(t, stats.TopContent, 1)
	assert.Equal(t, "ch_1", stats.TopContent[0].ContentID)
}

func TestRealtimePropagatesQueryError(t *testing.T) {
	svc := newTestService(&fakeQuerier{errs: map[string]error{
		"content_events": errors.New("connection lost"),
	}})

	_, err := svc.Realtime(context.Background(), "studio-1", 5)
	assert.Error(t, err)
}

func TestContentPerformanceStampsRequest(t *testing.T) {
	svc := newTestService(&fakeQuerier{rows: map[string][]storage.Row{
		"content_events": {
			{"event": "chapter_opened", "user_id": "u1", "time_spent": 30.0, "ts": float64(day1Noon)},
		},
	}})

	out, err := svc.ContentPerformance(context.Background(), "studio-1", "ch_1", 400)

	require.NoError(t, err)
	assert.Equal(t, "studio-1", out.StudioID)
	assert.Equal(t, "ch_1", out.ContentID)
	assert.Equal(t, MaxDays, out.Days)
	require.Len(t, out.Timeline, 1)
}
