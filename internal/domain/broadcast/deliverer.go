package broadcast

import "context"

// Deliverer sends one message to one destination, retrying as its policy allows.
// It reports only whether the message eventually went through.
type Deliverer interface {
	Send(ctx context.Context, message, destination string) bool
}

// CycleReporter receives the summary of every completed cycle.
type CycleReporter interface {
	ReportCycle(result CycleResult)
}
