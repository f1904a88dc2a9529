package models

import (
	"time"
)

// TMIndexStatus classifies a TM's on-disk search index relative to its
// central entry set.
type TMIndexStatus string

const (
	TMIndexCurrent      TMIndexStatus = "current"
	TMIndexStale        TMIndexStatus = "stale"
	TMIndexNeverIndexed TMIndexStatus = "never_indexed"
)

// Queue priorities: lower values are serviced first. Login-time housekeeping
// must never jump ahead of a sync the user asked for.
const (
	PriorityManual     = 10
	PriorityBackground = 50
)

// SyncQueueItem is one pending re-index job. A tm_id appears in the queue at
// most once and never while the same tm_id is in progress.
type SyncQueueItem struct {
	TMID     int64     `json:"tm_id"`
	UserID   int64     `json:"user_id"`
	Priority int       `json:"priority"`
	QueuedAt time.Time `json:"queued_at"`
	Reason   string    `json:"reason"`
}

// StaleTMInfo is the result of classifying one TM.
type StaleTMInfo struct {
	TMID              int64         `json:"tm_id"`
	TMName            string        `json:"tm_name"`
	IndexedAt         *time.Time    `json:"indexed_at,omitempty"`
	UpdatedAt         *time.Time    `json:"updated_at,omitempty"`
	EntryCount        int           `json:"entry_count"`
	IndexedEntryCount int           `json:"indexed_entry_count"`
	PendingChanges    int           `json:"pending_changes"`
	Status            TMIndexStatus `json:"status"`
}
