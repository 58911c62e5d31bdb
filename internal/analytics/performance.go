package analytics

import (
	"context"
	"sort"
	"strings"

	"github.com/beaconlabs/beacon/internal/storage"
)

// ContentDay is one day in a content performance timeline.
type ContentDay struct {
	Date           string  `json:"date"`
	Views          int64   `json:"views"`
	UniqueUsers    int64   `json:"uniqueUsers"`
	Completions    int64   `json:"completions"`
	CompletionRate float64 `json:"completionRate"`
	AvgTimeSpent   float64 `json:"avgTimeSpent"`
}

// ContentPerformance is the per-content daily timeline served by
// /api/content.
type ContentPerformance struct {
	StudioID  string       `json:"studioId"`
	ContentID string       `json:"contentId"`
	Days      int          `json:"days"`
	Timeline  []ContentDay `json:"timeline"`
}

const contentPerformanceQuery = `
SELECT
  blob1 AS event,
  blob3 AS user_id,
  double3 AS time_spent,
  double7 AS ts
FROM content_events
WHERE index1 = ? AND blob2 = ? AND event_time >= ?`

// ContentPerformance builds the daily performance timeline for one
// piece of content within one studio.
func (s *Service) ContentPerformance(ctx context.Context, studioID, contentID string, days int) (*ContentPerformance, error) {
	days = ClampDays(days)

	rows, err := s.query(ctx, "content_performance", contentPerformanceQuery, studioID, contentID, sinceDays(days))
	if err != nil {
		return nil, err
	}

	out := foldContentPerformance(rows)
	out.StudioID = studioID
	out.ContentID = contentID
	out.Days = days
	return out, nil
}

type contentDayAccum struct {
	day       ContentDay
	users     map[string]struct{}
	timeSpent float64
}

func foldContentPerformance(rows []storage.Row) *ContentPerformance {
	groups := make(map[string]*contentDayAccum)

	for _, r := range rows {
		date := utcDay(rowInt(r, "ts"))

		acc, ok := groups[date]
		if !ok {
			acc = &contentDayAccum{
				day:   ContentDay{Date: date},
				users: make(map[string]struct{}),
			}
			groups[date] = acc
		}

		acc.day.Views++
		if user := rowString(r, "user_id"); user != "" {
			acc.users[user] = struct{}{}
		}
		if strings.Contains(strings.ToLower(rowString(r, "event")), "completed") {
			acc.day.Completions++
		}
		acc.timeSpent += rowFloat(r, "time_spent")
	}

	timeline := make([]ContentDay, 0, len(groups))
	for _, acc := range groups {
		acc.day.UniqueUsers = int64(len(acc.users))
		acc.day.CompletionRate = round2(safeDiv(float64(acc.day.Completions), float64(acc.day.Views)) * 100)
		acc.day.AvgTimeSpent = round2(safeDiv(acc.timeSpent, float64(acc.day.Views)))
		timeline = append(timeline, acc.day)
	}

	sort.Slice(timeline, func(i, j int) bool {
		return timeline[i].Date < timeline[j].Date
	})

	return &ContentPerformance{Timeline: timeline}
}
