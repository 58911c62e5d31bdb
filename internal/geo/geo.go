// Package geo resolves request geolocation. The primary source is the
// reverse proxy, which attaches already-resolved fields as headers; a
// MaxMind database can optionally fill the gaps by IP.
package geo

import (
	"net"
	"net/http"
	"strings"

	"github.com/beaconlabs/beacon/internal/models"
)

// FromHeaders builds a GeoContext from reverse-proxy headers. Missing
// headers leave fields empty; the enricher applies sentinels.
func FromHeaders(h http.Header) models.GeoContext {
	return models.GeoContext{
		Country:   firstHeader(h, "CF-IPCountry", "X-Geo-Country"),
		City:      firstHeader(h, "CF-IPCity", "X-Geo-City"),
		Region:    firstHeader(h, "X-Geo-Region"),
		Timezone:  firstHeader(h, "CF-Timezone", "X-Geo-Timezone"),
		Latitude:  firstHeader(h, "CF-IPLatitude", "X-Geo-Latitude"),
		Longitude: firstHeader(h, "CF-IPLongitude", "X-Geo-Longitude"),
		ASN:       firstHeader(h, "X-Geo-ASN"),
		Colo:      firstHeader(h, "CF-Ray-Colo", "X-Geo-Colo"),
	}
}

func firstHeader(h http.Header, names ...string) string {
	for _, name := range names {
		if v := h.Get(name); v != "" {
			return v
		}
	}
	return ""
}

// ClientIP extracts the originating client IP from proxy headers,
// falling back to the connection's remote address.
func ClientIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RequestMeta extracts transport metadata for enrichment.
func RequestMeta(r *http.Request) models.RequestMeta {
	return models.RequestMeta{
		IP:        ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}
