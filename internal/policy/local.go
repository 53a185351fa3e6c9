// Package policy decides, per outbound packet, whether the packet may leave
// the host based on its destination address and port.
package policy

import "net/netip"

// IsLocal reports whether addr is a private, loopback, or link-local address.
// Traffic to such addresses is never filtered. An invalid address is not
// considered local.
func IsLocal(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()
	return addr.IsPrivate() ||
		addr.IsLoopback() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast()
}
