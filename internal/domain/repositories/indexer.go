package repositories

import (
	"context"

	"linguasync/internal/domain/models"
)

// IndexStats is what the re-indexing collaborator reports back; the counts
// are used only for logging.
type IndexStats struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// Indexer is the external collaborator that rebuilds one TM's search index.
// The call blocks until the index is written; the maintenance manager keeps
// the tm_id in-progress for the duration.
type Indexer interface {
	SyncIndex(ctx context.Context, tmID int64) (IndexStats, error)
}

// Notifier is a fire-and-forget sink for operation lifecycle events.
// Implementations must not block the calling sync operation.
type Notifier interface {
	Notify(event models.SyncEvent)
}
