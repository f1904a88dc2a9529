package models

import (
	"time"
)

// EventPhase marks where in its lifecycle an operation event was emitted.
type EventPhase string

const (
	EventStarted   EventPhase = "started"
	EventProgress  EventPhase = "progress"
	EventCompleted EventPhase = "completed"
	EventFailed    EventPhase = "failed"
)

// SyncEvent is a fire-and-forget notification about a sync or maintenance
// operation. No acknowledgment is expected from the sink.
type SyncEvent struct {
	ID        string     `json:"id"`
	Operation string     `json:"operation"`
	Phase     EventPhase `json:"phase"`
	Message   string     `json:"message,omitempty"`
	At        time.Time  `json:"at"`
}
