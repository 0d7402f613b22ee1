package model

import (
	"net"
	"strings"
)

// Location is either an explicit "lat,lon" pair or the address of the client
// the search is made for.
type Location struct {
	LatLon   string
	ClientIP string
}

// Query returns the location string sent to the events provider. A loopback
// client without coordinates is resolved to fallback.
func (l Location) Query(fallback string) string {
	if latLon := strings.TrimSpace(l.LatLon); latLon != "" {
		return latLon
	}

	ip := net.ParseIP(strings.TrimSpace(l.ClientIP))
	if ip == nil || ip.IsLoopback() {
		return fallback
	}

	return ip.String()
}
