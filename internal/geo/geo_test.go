package geo

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/beaconlabs/beacon/internal/models"
)

func TestFromHeadersCloudflare(t *testing.T) {
	h := http.Header{}
	h.Set("CF-IPCountry", "US")
	h.Set("CF-IPCity", "Austin")
	h.Set("CF-Timezone", "America/Chicago")
	h.Set("CF-IPLatitude", "30.27")
	h.Set("CF-IPLongitude", "-97.74")
	h.Set("CF-Ray-Colo", "DFW")

	geo := FromHeaders(h)

	assert.Equal(t, models.GeoContext{
		Country:   "US",
		City:      "Austin",
		Timezone:  "America/Chicago",
		Latitude:  "30.27",
		Longitude: "-97.74",
		Colo:      "DFW",
	}, geo)
}

func TestFromHeadersGenericFallback(t *testing.T) {
	h := http.Header{}
	h.Set("X-Geo-Country", "JP")
	h.Set("X-Geo-City", "Tokyo")
	h.Set("X-Geo-Region", "Kanto")
	h.Set("X-Geo-ASN", "2516")

	geo := FromHeaders(h)

	assert.Equal(t, "JP", geo.Country)
	assert.Equal(t, "Tokyo", geo.City)
	assert.Equal(t, "Kanto", geo.Region)
	assert.Equal(t, "2516", geo.ASN)
}

func TestFromHeadersCloudflareWins(t *testing.T) {
	h := http.Header{}
	h.Set("CF-IPCountry", "US")
	h.Set("X-Geo-Country", "JP")

	assert.Equal(t, "US", FromHeaders(h).Country)
}

func TestFromHeadersEmpty(t *testing.T) {
	assert.Equal(t, models.GeoContext{}, FromHeaders(http.Header{}))
}

func TestClientIPPrecedence(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{
			name:    "cf connecting ip wins",
			headers: map[string]string{"CF-Connecting-IP": "1.1.1.1", "X-Forwarded-For": "2.2.2.2", "X-Real-IP": "3.3.3.3"},
			remote:  "4.4.4.4:1234",
			want:    "1.1.1.1",
		},
		{
			name:    "first forwarded hop",
			headers: map[string]string{"X-Forwarded-For": "2.2.2.2, 10.0.0.1, 10.0.0.2"},
			remote:  "4.4.4.4:1234",
			want:    "2.2.2.2",
		},
		{
			name:    "real ip",
			headers: map[string]string{"X-Real-IP": "3.3.3.3"},
			remote:  "4.4.4.4:1234",
			want:    "3.3.3.3",
		},
		{
			name:   "remote addr host",
			remote: "4.4.4.4:1234",
			want:   "4.4.4.4",
		},
		{
			name:   "remote addr without port",
			remote: "4.4.4.4",
			want:   "4.4.4.4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}

func TestMaxMindFillNilProvider(t *testing.T) {
	var p *MaxMindProvider
	base := models.GeoContext{Country: "", City: ""}
	assert.Equal(t, base, p.Fill(base, "8.8.8.8"))
	assert.NoError(t, p.Close())
}

func TestMaxMindFillSkipsResolvedContext(t *testing.T) {
	// A header-resolved country short-circuits before any lookup, so
	// even a provider without a database behind it must not be touched.
	p := &MaxMindProvider{}
	base := models.GeoContext{Country: "US", City: "Austin"}
	assert.Equal(t, base, p.Fill(base, "8.8.8.8"))
}

func TestRequestMeta(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/track", nil)
	r.RemoteAddr = "9.9.9.9:5555"
	r.Header.Set("User-Agent", "beacon-sdk/1.0")

	meta := RequestMeta(r)

	assert.Equal(t, "9.9.9.9", meta.IP)
	assert.Equal(t, "beacon-sdk/1.0", meta.UserAgent)
}
