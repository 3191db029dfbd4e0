// internal/domain/broadcast/cycle.go
package broadcast

import "time"

// CycleResult summarises one full pass over all destinations.
type CycleResult struct {
	Cycle     int // Starts at 1
	Successes int
	Total     int
	Elapsed   time.Duration
}

// Failed returns the number of destinations that did not receive the message.
func (r CycleResult) Failed() int {
	return r.Total - r.Successes
}
