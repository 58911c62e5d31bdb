package analytics

import (
	"context"
	"sort"

	"github.com/beaconlabs/beacon/internal/storage"
)

const demographicsLimit = 50

// LocationStat summarizes activity for one (country, city) pair.
type LocationStat struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Users   int64  `json:"users"`
	Events  int64  `json:"events"`
}

// Demographics is the location breakdown served by /api/stats.
type Demographics struct {
	ByLocation []LocationStat `json:"byLocation"`
}

const demographicsQuery = `
SELECT
  blob2 AS user_id,
  blob4 AS country,
  blob5 AS city
FROM user_behavior_events
WHERE index1 = ? AND event_time >= ?`

// Demographics groups the studio's audience by country and city.
func (s *Service) Demographics(ctx context.Context, studioID string, days int) (*Demographics, error) {
	rows, err := s.query(ctx, "demographics", demographicsQuery, studioID, sinceDays(ClampDays(days)))
	if err != nil {
		return nil, err
	}
	return foldDemographics(rows), nil
}

type locationAccum struct {
	stat  LocationStat
	users map[string]struct{}
}

func foldDemographics(rows []storage.Row) *Demographics {
	groups := make(map[string]*locationAccum)

	for _, r := range rows {
		country := rowString(r, "country")
		city := rowString(r, "city")
		key := country + "\x00" + city

		acc, ok := groups[key]
		if !ok {
			acc = &locationAccum{
				stat:  LocationStat{Country: country, City: city},
				users: make(map[string]struct{}),
			}
			groups[key] = acc
		}

		acc.stat.Events++
		if user := rowString(r, "user_id"); user != "" {
			acc.users[user] = struct{}{}
		}
	}

	out := make([]LocationStat, 0, len(groups))
	for _, acc := range groups {
		acc.stat.Users = int64(len(acc.users))
		out = append(out, acc.stat)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Users != out[j].Users {
			return out[i].Users > out[j].Users
		}
		if out[i].Country != out[j].Country {
			return out[i].Country < out[j].Country
		}
		return out[i].City < out[j].City
	})

	if len(out) > demographicsLimit {
		out = out[:demographicsLimit]
	}
	return &Demographics{ByLocation: out}
}
