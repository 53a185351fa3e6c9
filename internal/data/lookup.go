// Package data provides the geolocation database behind the country
// resolver: an IP-to-country lookup over a MaxMind MMDB file, plus the
// machinery to download and hot-swap that file.
package data

import "net"

// CountryLookup defines the interface for IP-to-country lookups.
type CountryLookup interface {
	// LookupCountry returns the ISO-3166 country code for the given IP
	// address, or an empty code when the database does not know the
	// address. Returns an error if the lookup fails or no database is
	// loaded.
	LookupCountry(ip net.IP) (string, error)

	// Close releases any resources held by the lookup implementation.
	Close() error
}
