package filter

import (
	"sync"
	"time"
)

// Record is one packet decision retained for the status API.
type Record struct {
	Time     time.Time `json:"time"`
	Address  string    `json:"address"`
	Port     uint16    `json:"port"`
	Protocol string    `json:"protocol,omitempty"`
	Action   string    `json:"action"`
	Reason   string    `json:"reason"`
	Country  string    `json:"country,omitempty"`
}

// Journal is a fixed-capacity ring of recent decisions, written by the
// interception loop and read by the status API.
type Journal struct {
	mu   sync.Mutex
	buf  []Record
	next int
	full bool
}

// NewJournal creates a journal retaining up to capacity records.
func NewJournal(capacity int) *Journal {
	if capacity <= 0 {
		capacity = 128
	}
	return &Journal{buf: make([]Record, capacity)}
}

// Add appends a record, evicting the oldest when the ring is full.
func (j *Journal) Add(r Record) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.buf[j.next] = r
	j.next++
	if j.next == len(j.buf) {
		j.next = 0
		j.full = true
	}
}

// Recent returns the retained records, newest first.
func (j *Journal) Recent() []Record {
	j.mu.Lock()
	defer j.mu.Unlock()

	n := j.next
	if j.full {
		n = len(j.buf)
	}
	out := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		idx := j.next - 1 - i
		if idx < 0 {
			idx += len(j.buf)
		}
		out = append(out, j.buf[idx])
	}
	return out
}
