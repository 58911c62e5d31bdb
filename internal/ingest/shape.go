package ingest

import "github.com/beaconlabs/beacon/internal/models"

// Shape maps an enriched event into the positional record layout of its
// dataset. Field count and position are fixed per dataset (see the
// schema descriptors in models); missing source fields shape to "" or 0,
// never to a hole in the tuple.
func Shape(dataset models.Dataset, ev models.EnrichedEvent) models.DatasetRecord {
	switch dataset {
	case models.DatasetRevenue:
		return shapeRevenue(ev)
	case models.DatasetContent:
		return shapeContent(ev)
	default:
		return shapeBehavior(ev)
	}
}

func shapeRevenue(ev models.EnrichedEvent) models.DatasetRecord {
	currency := ev.Currency
	if currency == "" {
		currency = "USD"
	}

	return models.DatasetRecord{
		Blobs: []string{
			ev.Event,
			ev.StudioID,
			ev.UserID,
			ev.Country,
			ev.City,
			ev.PaymentMethod,
			currency,
			ev.ContentID,
		},
		Doubles: []float64{
			ev.Amount,
			ev.Coins,
			ev.Tax,
			ev.Fee,
			float64(ev.TimestampMS),
			ev.Latitude,
			ev.Longitude,
		},
		Indexes: []string{ev.StudioID},
	}
}

func shapeContent(ev models.EnrichedEvent) models.DatasetRecord {
	// Reading events carry contentId, chapter events chapterId, flick
	// events flickId; first non-empty wins.
	contentID := firstNonEmpty(ev.ContentID, ev.ChapterID, ev.FlickID)

	return models.DatasetRecord{
		Blobs: []string{
			ev.Event,
			contentID,
			ev.UserID,
			ev.Country,
			ev.City,
			ev.ContentType,
			ev.SeriesID,
			ev.Quality,
		},
		Doubles: []float64{
			firstNonZero(ev.PageNumber, ev.WatchTime),
			firstNonZero(ev.TotalPages, ev.Duration),
			firstNonZero(ev.ReadingTime, ev.BufferingTime),
			firstNonZero(ev.ScrollDepth, ev.Bitrate),
			ev.CompletionRate,
			ev.EngagementScore,
			float64(ev.TimestampMS),
		},
		Indexes: []string{ev.StudioID},
	}
}

func shapeBehavior(ev models.EnrichedEvent) models.DatasetRecord {
	value := ev.Value
	if value == 0 {
		value = 1
	}

	index := ev.StudioID
	if index == "" {
		index = "global"
	}

	return models.DatasetRecord{
		Blobs: []string{
			ev.Event,
			ev.UserID,
			ev.SessionID,
			ev.Country,
			ev.City,
			ev.Referrer,
			ev.Source,
			ev.Medium,
		},
		Doubles: []float64{
			value,
			ev.Duration,
			ev.Score,
			float64(ev.TimestampMS),
		},
		Indexes: []string{index},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
