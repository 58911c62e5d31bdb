package geo

import (
	"fmt"
	"net"
	"strconv"

	"github.com/oschwald/geoip2-golang"

	"github.com/beaconlabs/beacon/internal/models"
)

// MaxMindProvider fills in geo fields by IP using a MaxMind GeoLite2
// database, for requests the reverse proxy did not annotate.
type MaxMindProvider struct {
	reader *geoip2.Reader
}

// NewMaxMindProvider opens a GeoLite2 City database.
func NewMaxMindProvider(dbPath string) (*MaxMindProvider, error) {
	reader, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoIP database: %w", err)
	}
	return &MaxMindProvider{reader: reader}, nil
}

// Lookup resolves an IP to a GeoContext. Unresolvable IPs return an
// error and the caller keeps the empty context.
func (m *MaxMindProvider) Lookup(ip string) (models.GeoContext, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return models.GeoContext{}, fmt.Errorf("invalid IP address: %s", ip)
	}

	record, err := m.reader.City(parsed)
	if err != nil {
		return models.GeoContext{}, err
	}

	ctx := models.GeoContext{
		Country:   record.Country.IsoCode,
		City:      record.City.Names["en"],
		Timezone:  record.Location.TimeZone,
		Latitude:  strconv.FormatFloat(record.Location.Latitude, 'f', -1, 64),
		Longitude: strconv.FormatFloat(record.Location.Longitude, 'f', -1, 64),
	}
	if len(record.Subdivisions) > 0 {
		ctx.Region = record.Subdivisions[0].Names["en"]
	}
	return ctx, nil
}

// Fill copies resolved fields into a header-derived context wherever
// the proxy left them empty.
func (m *MaxMindProvider) Fill(base models.GeoContext, ip string) models.GeoContext {
	if m == nil || base.Country != "" {
		return base
	}
	resolved, err := m.Lookup(ip)
	if err != nil {
		return base
	}
	if base.Country == "" {
		base.Country = resolved.Country
	}
	if base.City == "" {
		base.City = resolved.City
	}
	if base.Region == "" {
		base.Region = resolved.Region
	}
	if base.Timezone == "" {
		base.Timezone = resolved.Timezone
	}
	if base.Latitude == "" {
		base.Latitude = resolved.Latitude
	}
	if base.Longitude == "" {
		base.Longitude = resolved.Longitude
	}
	return base
}

// Close closes the GeoIP database.
func (m *MaxMindProvider) Close() error {
	if m != nil && m.reader != nil {
		return m.reader.Close()
	}
	return nil
}
