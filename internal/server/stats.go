package server

import (
	"sync/atomic"
	"time"
)

// Stats tracks server-wide counters. All fields are safe for
// concurrent updates from connection goroutines.
type Stats struct {
	startedAt time.Time

	SessionsStarted atomic.Int64
	SessionsClosed  atomic.Int64
	MessagesIn      atomic.Int64
	MessagesOut     atomic.Int64
	ActionsApplied  atomic.Int64
	RoundsPlayed    atomic.Int64
	Errors          atomic.Int64
}

// NewStats creates a stats tracker starting now.
func NewStats() *Stats {
	return &Stats{startedAt: time.Now()}
}

// StatsSnapshot is the JSON shape served on /stats.
type StatsSnapshot struct {
	UptimeSeconds   int64 `json:"uptimeSeconds"`
	SessionsActive  int64 `json:"sessionsActive"`
	SessionsStarted int64 `json:"sessionsStarted"`
	SessionsClosed  int64 `json:"sessionsClosed"`
	MessagesIn      int64 `json:"messagesIn"`
	MessagesOut     int64 `json:"messagesOut"`
	ActionsApplied  int64 `json:"actionsApplied"`
	RoundsPlayed    int64 `json:"roundsPlayed"`
	Errors          int64 `json:"errors"`
}

// Snapshot returns a point-in-time copy of the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	started := s.SessionsStarted.Load()
	closed := s.SessionsClosed.Load()

	return StatsSnapshot{
		UptimeSeconds:   int64(time.Since(s.startedAt).Seconds()),
		SessionsActive:  started - closed,
		SessionsStarted: started,
		SessionsClosed:  closed,
		MessagesIn:      s.MessagesIn.Load(),
		MessagesOut:     s.MessagesOut.Load(),
		ActionsApplied:  s.ActionsApplied.Load(),
		RoundsPlayed:    s.RoundsPlayed.Load(),
		Errors:          s.Errors.Load(),
	}
}
