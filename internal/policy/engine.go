package policy

import (
	"net/netip"
	"strings"
)

// Action is the verdict for a single packet.
type Action int

const (
	// Allow re-injects the packet so it continues to its destination.
	Allow Action = iota
	// Drop discards the packet.
	Drop
)

// String returns the lower-case name of the action.
func (a Action) String() string {
	if a == Drop {
		return "drop"
	}
	return "allow"
}

// Decision is the outcome of evaluating one packet.
type Decision struct {
	Action  Action
	Reason  string
	Country string // resolved ISO code, empty when unknown or not looked up
}

// Engine composes the local-address check, the port window, and the country
// resolver into a single per-packet decision.
type Engine struct {
	blocked  map[string]struct{}
	window   PortWindow
	resolver *Resolver
}

// NewEngine builds an engine blocking the given ISO country codes. Codes are
// matched case-insensitively.
func NewEngine(blocked []string, window PortWindow, resolver *Resolver) *Engine {
	set := make(map[string]struct{}, len(blocked))
	for _, cc := range blocked {
		set[strings.ToUpper(cc)] = struct{}{}
	}
	return &Engine{blocked: set, window: window, resolver: resolver}
}

// Decide evaluates a destination. Local and out-of-window traffic is allowed
// before the country lookup runs; that is the overwhelming majority of
// packets and the lookup is the only real cost here.
//
// An unknown country allows the packet through: the filter fails open when
// the geolocation database cannot answer.
func (e *Engine) Decide(dst netip.Addr, port uint16, hasPort bool) Decision {
	if IsLocal(dst) {
		return Decision{Action: Allow, Reason: "local"}
	}
	if !e.window.Contains(port, hasPort) {
		return Decision{Action: Allow, Reason: "out of monitored range"}
	}

	country := e.resolver.Resolve(dst)
	if country != "" {
		if _, ok := e.blocked[strings.ToUpper(country)]; ok {
			return Decision{Action: Drop, Reason: "blocked country " + country, Country: country}
		}
		return Decision{Action: Allow, Reason: "allowed country " + country, Country: country}
	}
	return Decision{Action: Allow, Reason: "allowed country unknown"}
}

// Blocked returns the configured blocked-country codes, upper-cased.
func (e *Engine) Blocked() []string {
	out := make([]string, 0, len(e.blocked))
	for cc := range e.blocked {
		out = append(out, cc)
	}
	return out
}

// Window returns the monitored port window.
func (e *Engine) Window() PortWindow {
	return e.window
}

// Resolver returns the country resolver the engine consults.
func (e *Engine) Resolver() *Resolver {
	return e.resolver
}
