package domain

import "time"

// StatsSnapshot is a point-in-time copy of the engine's running counters,
// flushed to persistence on a periodic tick and once at shutdown.
type StatsSnapshot struct {
	TakenAt  time.Time
	Counters map[string]int64
}
