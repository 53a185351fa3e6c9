package policy

import (
	"net"
	"net/netip"
	"sync"

	"github.com/TomasB/geoblock/internal/data"
)

// Resolver maps destination addresses to ISO country codes, memoizing every
// result for the lifetime of the process. A failed lookup is cached as the
// empty string so the database is never queried twice for the same address.
//
// The cache is never evicted; interception runs are short-lived and the
// address cardinality is bounded by the monitored port window.
type Resolver struct {
	lookup data.CountryLookup

	mu    sync.Mutex
	cache map[netip.Addr]string
}

// NewResolver creates a resolver over the given lookup. lookup may be nil,
// in which case every address resolves as unknown.
func NewResolver(lookup data.CountryLookup) *Resolver {
	return &Resolver{
		lookup: lookup,
		cache:  make(map[netip.Addr]string),
	}
}

// Resolve returns the ISO country code for addr, or the empty string when the
// country is unknown. Lookup failures are absorbed, never returned.
func (r *Resolver) Resolve(addr netip.Addr) string {
	if !addr.IsValid() {
		return ""
	}
	addr = addr.Unmap()

	r.mu.Lock()
	defer r.mu.Unlock()

	if code, ok := r.cache[addr]; ok {
		return code
	}

	code := ""
	if r.lookup != nil {
		if c, err := r.lookup.LookupCountry(net.IP(addr.AsSlice())); err == nil {
			code = c
		}
	}
	r.cache[addr] = code
	return code
}

// CacheSize returns the number of addresses resolved so far.
func (r *Resolver) CacheSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}
