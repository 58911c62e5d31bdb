package analytics

import (
	"context"
	"sort"

	"github.com/beaconlabs/beacon/internal/storage"
)

// ContentStat summarizes one (event, content, type) group.
type ContentStat struct {
	Event          string  `json:"event"`
	ContentID      string  `json:"contentId"`
	ContentType    string  `json:"contentType"`
	Events         int64   `json:"events"`
	UniqueUsers    int64   `json:"uniqueUsers"`
	AvgCompletion  float64 `json:"avgCompletion"`
	TotalTimeSpent float64 `json:"totalTimeSpent"`
}

const contentStatsQuery = `
SELECT
  blob1 AS event,
  blob2 AS content_id,
  blob3 AS user_id,
  blob6 AS content_type,
  double3 AS time_spent,
  double5 AS completion_rate
FROM content_events
WHERE index1 = ? AND event_time >= ?`

// ContentStats groups the studio's content events by event type,
// content id and content type.
func (s *Service) ContentStats(ctx context.Context, studioID string, days int) ([]ContentStat, error) {
	rows, err := s.query(ctx, "content_stats", contentStatsQuery, studioID, sinceDays(ClampDays(days)))
	if err != nil {
		return nil, err
	}
	return foldContentStats(rows), nil
}

type contentAccum struct {
	stat          ContentStat
	users         map[string]struct{}
	completionSum float64
}

func foldContentStats(rows []storage.Row) []ContentStat {
	groups := make(map[string]*contentAccum)

	for _, r := range rows {
		event := rowString(r, "event")
		contentID := rowString(r, "content_id")
		contentType := rowString(r, "content_type")
		key := event + "\x00" + contentID + "\x00" + contentType

		acc, ok := groups[key]
		if !ok {
			acc = &contentAccum{
				stat: ContentStat{
					Event:       event,
					ContentID:   contentID,
					ContentType: contentType,
				},
				users: make(map[string]struct{}),
			}
			groups[key] = acc
		}

		acc.stat.Events++
		if user := rowString(r, "user_id"); user != "" {
			acc.users[user] = struct{}{}
		}
		acc.stat.TotalTimeSpent += rowFloat(r, "time_spent")
		acc.completionSum += rowFloat(r, "completion_rate")
	}

	out := make([]ContentStat, 0, len(groups))
	for _, acc := range groups {
		acc.stat.UniqueUsers = int64(len(acc.users))
		acc.stat.AvgCompletion = round2(safeDiv(acc.completionSum, float64(acc.stat.Events)))
		out = append(out, acc.stat)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Events != out[j].Events {
			return out[i].Events > out[j].Events
		}
		if out[i].ContentID != out[j].ContentID {
			return out[i].ContentID < out[j].ContentID
		}
		return out[i].Event < out[j].Event
	})
	return out
}
