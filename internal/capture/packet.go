// Package capture acquires outbound IP packets from the kernel and lets the
// caller re-inject or drop them one at a time.
package capture

import (
	"errors"
	"net/netip"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"
)

// ErrClosed is returned by Receive after the handle has been closed.
var ErrClosed = errors.New("capture: handle closed")

// Handle is a live packet-interception session.
type Handle interface {
	// Receive blocks until the next outbound packet is intercepted. It
	// returns ErrClosed once the handle has been closed.
	Receive() (*Packet, error)

	// Send re-injects a packet so it continues to its destination. A
	// received packet that is never sent is dropped.
	Send(*Packet) error

	// Close releases the handle and unblocks a pending Receive. It is safe
	// to call from any goroutine and more than once.
	Close() error
}

// Packet is one intercepted outbound IP packet.
type Packet struct {
	id uint32

	Raw      []byte
	DstAddr  netip.Addr
	DstPort  uint16
	HasPort  bool
	Protocol string
}

// decodeDestination fills the destination fields from the raw IP packet.
// A packet that fails to decode keeps the zero values; the policy layer
// treats an invalid address as non-local and unresolvable.
func decodeDestination(raw []byte, pkt *Packet) {
	if len(raw) == 0 {
		return
	}

	var first gopacket.LayerType
	switch raw[0] >> 4 {
	case 4:
		first = layers.LayerTypeIPv4
	case 6:
		first = layers.LayerTypeIPv6
	default:
		return
	}

	decoded := gopacket.NewPacket(raw, first, gopacket.NoCopy)

	switch ip := decoded.NetworkLayer().(type) {
	case *layers.IPv4:
		if addr, ok := netip.AddrFromSlice(ip.DstIP); ok {
			pkt.DstAddr = addr.Unmap()
		}
	case *layers.IPv6:
		if addr, ok := netip.AddrFromSlice(ip.DstIP); ok {
			pkt.DstAddr = addr
		}
	default:
		return
	}

	switch t := decoded.TransportLayer().(type) {
	case *layers.TCP:
		pkt.DstPort = uint16(t.DstPort)
		pkt.HasPort = true
		pkt.Protocol = "tcp"
	case *layers.UDP:
		pkt.DstPort = uint16(t.DstPort)
		pkt.HasPort = true
		pkt.Protocol = "udp"
	}
}
