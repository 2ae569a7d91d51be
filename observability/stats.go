// Package observability aggregates runtime counters for health reporting.
package observability

import "sync/atomic"

// Stats collects board-wide counters. All fields are atomic so sessions can
// bump them from their own goroutines without coordination.
type Stats struct {
	ConnectionsTotal atomic.Uint64
	SessionsActive   atomic.Int64
	MessagesPosted   atomic.Uint64
	BroadcastLines   atomic.Uint64
	DroppedLines     atomic.Uint64
}

// Snapshot is a point-in-time copy used by the health worker.
type Snapshot struct {
	ConnectionsTotal uint64
	SessionsActive   int64
	MessagesPosted   uint64
	BroadcastLines   uint64
	DroppedLines     uint64
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		ConnectionsTotal: s.ConnectionsTotal.Load(),
		SessionsActive:   s.SessionsActive.Load(),
		MessagesPosted:   s.MessagesPosted.Load(),
		BroadcastLines:   s.BroadcastLines.Load(),
		DroppedLines:     s.DroppedLines.Load(),
	}
}
