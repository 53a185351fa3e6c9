//go:build !linux

// Package netfilter programs the kernel to steer outbound IP traffic into
// the NFQUEUE the filter reads from.
package netfilter

import "fmt"

// Redirect is a stub on non-Linux systems.
type Redirect struct{}

// InstallRedirect returns an error on non-Linux systems.
func InstallRedirect(queueNum uint16) (*Redirect, error) {
	return nil, fmt.Errorf("nftables redirection is only supported on Linux")
}

// Remove is a no-op on non-Linux systems.
func (r *Redirect) Remove() error { return nil }
