package policy

import (
	"net/netip"
	"testing"
)

func TestIsLocal(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want bool
	}{
		{name: "private 192.168", addr: "192.168.1.5", want: true},
		{name: "private 10", addr: "10.0.0.1", want: true},
		{name: "private 172.16", addr: "172.16.44.2", want: true},
		{name: "loopback v4", addr: "127.0.0.1", want: true},
		{name: "link-local v4", addr: "169.254.10.20", want: true},
		{name: "loopback v6", addr: "::1", want: true},
		{name: "link-local v6", addr: "fe80::1", want: true},
		{name: "unique local v6", addr: "fd12:3456::1", want: true},
		{name: "public v4", addr: "8.8.8.8", want: false},
		{name: "public v4 documentation", addr: "203.0.113.10", want: false},
		{name: "public v6", addr: "2001:4860:4860::8888", want: false},
		{name: "mapped private", addr: "::ffff:192.168.1.5", want: true},
		{name: "mapped public", addr: "::ffff:8.8.8.8", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr := netip.MustParseAddr(tt.addr)
			if got := IsLocal(addr); got != tt.want {
				t.Errorf("IsLocal(%s) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}

func TestIsLocal_InvalidAddress(t *testing.T) {
	if IsLocal(netip.Addr{}) {
		t.Error("expected invalid address to be non-local")
	}
}
