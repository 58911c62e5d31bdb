package ingest

import (
	"strconv"
	"time"

	"github.com/beaconlabs/beacon/internal/models"
)

// Geo sentinels applied when the request carried no resolved location.
const (
	unknownCountry  = "XX"
	unknownCity     = "Unknown"
	unknownRegion   = "Unknown"
	defaultTimezone = "UTC"
	unknownColo     = "Unknown"
	unknownValue    = "unknown"
)

// Enrich merges a validated event with request-derived geo and
// transport metadata and stamps a canonical timestamp. Pure function of
// its inputs; all original event fields are preserved.
func Enrich(ev models.TrackingEvent, geo models.GeoContext, meta models.RequestMeta) models.EnrichedEvent {
	out := models.EnrichedEvent{TrackingEvent: ev}

	out.TimestampMS = ev.Timestamp
	if out.TimestampMS <= 0 {
		out.TimestampMS = time.Now().UnixMilli()
	}

	if out.StudioID == "" {
		out.StudioID = unknownValue
	}

	out.Country = orDefault(geo.Country, unknownCountry)
	out.City = orDefault(geo.City, unknownCity)
	out.Region = orDefault(geo.Region, unknownRegion)
	out.Timezone = orDefault(geo.Timezone, defaultTimezone)
	out.Colo = orDefault(geo.Colo, unknownColo)
	out.Latitude = parseCoord(geo.Latitude)
	out.Longitude = parseCoord(geo.Longitude)
	out.ASN = parseASN(geo.ASN)

	out.IP = orDefault(meta.IP, unknownValue)
	out.UserAgent = orDefault(meta.UserAgent, unknownValue)

	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// parseCoord parses a latitude/longitude string; anything unparsable
// becomes 0, never NaN.
func parseCoord(v string) float64 {
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != f {
		return 0
	}
	return f
}

func parseASN(v string) int {
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
