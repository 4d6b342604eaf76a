package queue

import "time"

// NewWithClock lets tests control admission timestamps.
func NewWithClock(capacity int, now func() time.Time) *Queue {
	q := New(capacity)
	q.now = now
	return q
}
