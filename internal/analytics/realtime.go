package analytics

import (
	"context"
	"sort"
	"strings"

	"github.com/beaconlabs/beacon/internal/storage"
)

const (
	realtimeLocationLimit = 20
	realtimeContentLimit  = 10
)

// ContentActivity summarizes active audience on one piece of content.
type ContentActivity struct {
	ContentID   string `json:"contentId"`
	ContentType string `json:"contentType"`
	Users       int64  `json:"users"`
}

// RealtimeStats is the near-real-time activity view over a trailing
// window.
type RealtimeStats struct {
	WindowMinutes   int               `json:"windowMinutes"`
	ActiveUsers     int64             `json:"activeUsers"`
	TotalEvents     int64             `json:"totalEvents"`
	EventsPerMinute float64           `json:"eventsPerMinute"`
	ByLocation      []LocationStat    `json:"byLocation"`
	TopContent      []ContentActivity `json:"topContent"`
}

const realtimeContentQuery = `
SELECT
  blob2 AS content_id,
  blob3 AS user_id,
  blob4 AS country,
  blob5 AS city
FROM content_events
WHERE index1 = ? AND event_time >= ?`

const realtimeBehaviorQuery = `
SELECT
  '' AS content_id,
  blob2 AS user_id,
  blob4 AS country,
  blob5 AS city
FROM user_behavior_events
WHERE index1 = ? AND event_time >= ?`

// Realtime reports activity for the trailing window (default 5
// minutes) across the content and behavior datasets.
func (s *Service) Realtime(ctx context.Context, studioID string, minutes int) (*RealtimeStats, error) {
	minutes = ClampMinutes(minutes)
	since := sinceMinutes(minutes)

	contentRows, err := s.query(ctx, "realtime", realtimeContentQuery, studioID, since)
	if err != nil {
		return nil, err
	}
	behaviorRows, err := s.query(ctx, "realtime", realtimeBehaviorQuery, studioID, since)
	if err != nil {
		return nil, err
	}

	return foldRealtime(append(contentRows, behaviorRows...), minutes), nil
}

func foldRealtime(rows []storage.Row, minutes int) *RealtimeStats {
	stats := &RealtimeStats{
		WindowMinutes: minutes,
		ByLocation:    []LocationStat{},
		TopContent:    []ContentActivity{},
	}

	users := make(map[string]struct{})
	locations := make(map[string]*locationAccum)
	contentUsers := make(map[string]map[string]struct{})

	for _, r := range rows {
		stats.TotalEvents++

		user := rowString(r, "user_id")
		if user != "" {
			users[user] = struct{}{}
		}

		country := rowString(r, "country")
		city := rowString(r, "city")
		key := country + "\x00" + city
		acc, ok := locations[key]
		if !ok {
			acc = &locationAccum{
				stat:  LocationStat{Country: country, City: city},
				users: make(map[string]struct{}),
			}
			locations[key] = acc
		}
		acc.stat.Events++
		if user != "" {
			acc.users[user] = struct{}{}
		}

		if contentID := rowString(r, "content_id"); contentID != "" {
			set, ok := contentUsers[contentID]
			if !ok {
				set = make(map[string]struct{})
				contentUsers[contentID] = set
			}
			if user != "" {
				set[user] = struct{}{}
			}
		}
	}

	stats.ActiveUsers = int64(len(users))
	stats.EventsPerMinute = round2(safeDiv(float64(stats.TotalEvents), float64(minutes)))

	for _, acc := range locations {
		acc.stat.Users = int64(len(acc.users))
		stats.ByLocation = append(stats.ByLocation, acc.stat)
	}
	sort.Slice(stats.ByLocation, func(i, j int) bool {
		if stats.ByLocation[i].Events != stats.ByLocation[j].Events {
			return stats.ByLocation[i].Events > stats.ByLocation[j].Events
		}
		if stats.ByLocation[i].Country != stats.ByLocation[j].Country {
			return stats.ByLocation[i].Country < stats.ByLocation[j].Country
		}
		return stats.ByLocation[i].City < stats.ByLocation[j].City
	})
	if len(stats.ByLocation) > realtimeLocationLimit {
		stats.ByLocation = stats.ByLocation[:realtimeLocationLimit]
	}

	for contentID, set := range contentUsers {
		stats.TopContent = append(stats.TopContent, ContentActivity{
			ContentID:   contentID,
			ContentType: contentTypeFromID(contentID),
			Users:       int64(len(set)),
		})
	}
	sort.Slice(stats.TopContent, func(i, j int) bool {
		if stats.TopContent[i].Users != stats.TopContent[j].Users {
			return stats.TopContent[i].Users > stats.TopContent[j].Users
		}
		return stats.TopContent[i].ContentID < stats.TopContent[j].ContentID
	})
	if len(stats.TopContent) > realtimeContentLimit {
		stats.TopContent = stats.TopContent[:realtimeContentLimit]
	}

	return stats
}

// contentTypeFromID infers a coarse content type from the identifier
// prefix convention used by the client apps.
func contentTypeFromID(id string) string {
	lower := strings.ToLower(id)
	switch {
	case strings.HasPrefix(lower, "flick"):
		return "flick"
	case strings.HasPrefix(lower, "ep"):
		return "episode"
	case strings.HasPrefix(lower, "ch"):
		return "chapter"
	default:
		return "content"
	}
}
