package clanalytics

import (
	"fmt"
	"net/netip"

	"github.com/oschwald/geoip2-golang/v2"
)

// GeoIP résout le pays d'une adresse avec une base MaxMind (GeoLite2-Country)
type GeoIP struct {
	reader *geoip2.Reader
}

func OpenGeoIP(path string) (*GeoIP, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ouverture base geoip %s: %w", path, err)
	}
	return &GeoIP{reader: reader}, nil
}

func (g *GeoIP) Country(address string) string {
	ip, err := netip.ParseAddr(address)
	if err != nil || !ip.IsValid() || ip.IsLoopback() || ip.IsPrivate() {
		return ""
	}

	record, err := g.reader.Country(ip.Unmap())
	if err != nil || record == nil {
		return ""
	}
	return record.Country.ISOCode
}

func (g *GeoIP) Close() error {
	return g.reader.Close()
}
