// Package filter runs the interception loop: it pulls outbound packets from
// a capture handle, applies the policy engine, and re-injects the packets
// that are allowed to leave.
package filter

import (
	"sync"
	"sync/atomic"

	"github.com/TomasB/geoblock/internal/capture"
)

// RunState is the state shared between the interception loop and the
// shutdown path: a stop flag plus a reference to the currently open capture
// handle. The handle slot is non-nil only while the loop holds an open
// handle and is cleared before the loop returns, on every exit path.
type RunState struct {
	running atomic.Bool

	mu     sync.Mutex
	handle capture.Handle
}

// NewRunState returns a state with the running flag set.
func NewRunState() *RunState {
	s := &RunState{}
	s.running.Store(true)
	return s
}

// Running reports whether a stop has not yet been requested.
func (s *RunState) Running() bool {
	return s.running.Load()
}

// Stop flips the stop flag and force-closes the published handle, which
// unblocks a receive in progress. Close errors are swallowed; stopping must
// not fail. Stop is the only writer of the stop flag.
func (s *RunState) Stop() {
	s.running.Store(false)

	s.mu.Lock()
	h := s.handle
	s.mu.Unlock()

	if h != nil {
		_ = h.Close()
	}
}

// publish records the open handle so Stop can reach it.
func (s *RunState) publish(h capture.Handle) {
	s.mu.Lock()
	s.handle = h
	s.mu.Unlock()
}

// clear removes the handle reference.
func (s *RunState) clear() {
	s.mu.Lock()
	s.handle = nil
	s.mu.Unlock()
}
