//go:build !linux

package capture

import "fmt"

// OpenQueue is only implemented on Linux, where outbound packets are
// diverted through NFQUEUE.
func OpenQueue(num uint16) (Handle, error) {
	return nil, fmt.Errorf("packet interception is only supported on Linux")
}
