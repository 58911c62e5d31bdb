package analytics

import (
	"context"
	"sort"

	"github.com/beaconlabs/beacon/internal/storage"
)

// RevenueStats is the revenue summary with its three breakdowns.
type RevenueStats struct {
	TotalRevenue   float64          `json:"totalRevenue"`
	TotalCoins     float64          `json:"totalCoins"`
	Transactions   int64            `json:"transactions"`
	AvgTransaction float64          `json:"avgTransaction"`
	ByDay          []DayRevenue     `json:"byDay"`
	ByCountry      []CountryRevenue `json:"byCountry"`
	ByMethod       []MethodRevenue  `json:"byMethod"`
}

// DayRevenue groups revenue by UTC calendar day.
type DayRevenue struct {
	Date         string  `json:"date"`
	Revenue      float64 `json:"revenue"`
	Coins        float64 `json:"coins"`
	Transactions int64   `json:"transactions"`
}

// CountryRevenue groups revenue by country.
type CountryRevenue struct {
	Country        string  `json:"country"`
	Revenue        float64 `json:"revenue"`
	Transactions   int64   `json:"transactions"`
	AvgTransaction float64 `json:"avgTransaction"`
}

// MethodRevenue groups revenue by payment method.
type MethodRevenue struct {
	Method       string  `json:"method"`
	Revenue      float64 `json:"revenue"`
	Transactions int64   `json:"transactions"`
	Percentage   float64 `json:"percentage"`
}

const revenueStatsQuery = `
SELECT
  blob1 AS event,
  blob4 AS country,
  blob6 AS method,
  double1 AS amount,
  double2 AS coins,
  double5 AS ts
FROM revenue_events
WHERE index1 = ? AND event_time >= ?`

// RevenueStats sums revenue for a studio and breaks it down by day,
// country and payment method.
func (s *Service) RevenueStats(ctx context.Context, studioID string, days int) (*RevenueStats, error) {
	rows, err := s.query(ctx, "revenue_stats", revenueStatsQuery, studioID, sinceDays(ClampDays(days)))
	if err != nil {
		return nil, err
	}
	return foldRevenueStats(rows), nil
}

func emptyRevenueStats() *RevenueStats {
	return &RevenueStats{
		ByDay:     []DayRevenue{},
		ByCountry: []CountryRevenue{},
		ByMethod:  []MethodRevenue{},
	}
}

func foldRevenueStats(rows []storage.Row) *RevenueStats {
	stats := emptyRevenueStats()

	byDay := make(map[string]*DayRevenue)
	byCountry := make(map[string]*CountryRevenue)
	byMethod := make(map[string]*MethodRevenue)

	for _, r := range rows {
		amount := rowFloat(r, "amount")
		coins := rowFloat(r, "coins")
		country := rowString(r, "country")
		method := rowString(r, "method")
		day := utcDay(rowInt(r, "ts"))

		stats.TotalRevenue += amount
		stats.TotalCoins += coins
		stats.Transactions++

		d, ok := byDay[day]
		if !ok {
			d = &DayRevenue{Date: day}
			byDay[day] = d
		}
		d.Revenue += amount
		d.Coins += coins
		d.Transactions++

		c, ok := byCountry[country]
		if !ok {
			c = &CountryRevenue{Country: country}
			byCountry[country] = c
		}
		c.Revenue += amount
		c.Transactions++

		m, ok := byMethod[method]
		if !ok {
			m = &MethodRevenue{Method: method}
			byMethod[method] = m
		}
		m.Revenue += amount
		m.Transactions++
	}

	stats.AvgTransaction = round2(safeDiv(stats.TotalRevenue, float64(stats.Transactions)))

	for _, d := range byDay {
		stats.ByDay = append(stats.ByDay, *d)
	}
	sort.Slice(stats.ByDay, func(i, j int) bool {
		return stats.ByDay[i].Date < stats.ByDay[j].Date
	})

	for _, c := range byCountry {
		c.AvgTransaction = round2(safeDiv(c.Revenue, float64(c.Transactions)))
		stats.ByCountry = append(stats.ByCountry, *c)
	}
	sort.Slice(stats.ByCountry, func(i, j int) bool {
		if stats.ByCountry[i].Revenue != stats.ByCountry[j].Revenue {
			return stats.ByCountry[i].Revenue > stats.ByCountry[j].Revenue
		}
		return stats.ByCountry[i].Country < stats.ByCountry[j].Country
	})

	for _, m := range byMethod {
		m.Percentage = round2(safeDiv(m.Revenue, stats.TotalRevenue) * 100)
		stats.ByMethod = append(stats.ByMethod, *m)
	}
	sort.Slice(stats.ByMethod, func(i, j int) bool {
		if stats.ByMethod[i].Revenue != stats.ByMethod[j].Revenue {
			return stats.ByMethod[i].Revenue > stats.ByMethod[j].Revenue
		}
		return stats.ByMethod[i].Method < stats.ByMethod[j].Method
	})

	return stats
}
