package policy

import "fmt"

// PortWindow is the range of destination ports the filter monitors. The lower
// bound is exclusive and the upper bound inclusive: a packet to port Min
// itself passes through unfiltered, a packet to port Max is monitored.
type PortWindow struct {
	Min uint16 // exclusive
	Max uint16 // inclusive
}

// NewPortWindow validates the bounds and returns the window.
func NewPortWindow(min, max uint16) (PortWindow, error) {
	if min >= max {
		return PortWindow{}, fmt.Errorf("invalid port window: min %d must be below max %d", min, max)
	}
	return PortWindow{Min: min, Max: max}, nil
}

// Contains reports whether a destination port falls inside the monitored
// window. hasPort is false for packets without a transport port (e.g. ICMP);
// those are always outside the window.
func (w PortWindow) Contains(port uint16, hasPort bool) bool {
	return hasPort && port > w.Min && port <= w.Max
}

// String renders the window in interval notation.
func (w PortWindow) String() string {
	return fmt.Sprintf("(%d, %d]", w.Min, w.Max)
}
