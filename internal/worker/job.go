package worker

import "time"

// Trigger asks the worker for one sweep.
type Trigger struct {
	Reason string // "schedule", "watch", "startup", "signal"
	At     time.Time
}
