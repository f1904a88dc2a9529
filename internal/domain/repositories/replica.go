package repositories

import (
	"context"

	"linguasync/internal/domain/models"
)

// MergeStats counts the outcome of one batch row merge.
type MergeStats struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
}

// ReplicaStore is the adapter over the single-user embedded store used for
// offline editing. Saves are idempotent upserts keyed by server id, so any
// sync step can be safely re-run.
type ReplicaStore interface {
	// Hierarchy saves (central -> replica)
	SavePlatform(ctx context.Context, p models.ReplicaPlatform) error
	SaveProject(ctx context.Context, p models.ReplicaProject) error
	SaveFolder(ctx context.Context, f models.ReplicaFolder) error
	SaveFile(ctx context.Context, f models.ReplicaFile) error

	// MergeRowsBatch merges incoming central rows for the file identified by
	// its server id, applying models.DecideMerge per row.
	MergeRowsBatch(ctx context.Context, rows []models.ReplicaRow, fileServerID int64) (MergeStats, error)

	// LocalRowServerIDs returns the set of server ids present locally for a
	// file, used for tombstone reconciliation.
	LocalRowServerIDs(ctx context.Context, fileServerID int64) (map[int64]struct{}, error)

	// DeleteRowByServerID removes a replica row whose central counterpart is gone
	DeleteRowByServerID(ctx context.Context, serverID int64) error

	// ModifiedRows returns dirty rows for a file (promoted or not)
	ModifiedRows(ctx context.Context, fileServerID int64) ([]models.ReplicaRow, error)

	// MarkRowSynced clears the dirty flag after a successful central commit
	MarkRowSynced(ctx context.Context, localID int64) error

	// TM counterparts. SaveTM returns the TM's local id so downloaded
	// entries can be attached to it.
	SaveTM(ctx context.Context, tm models.ReplicaTM) (int64, error)
	MergeTMEntry(ctx context.Context, entry models.ReplicaTMEntry) error
	ModifiedTMEntries(ctx context.Context, tmLocalID int64) ([]models.ReplicaTMEntry, error)
	MarkTMEntrySynced(ctx context.Context, localID int64) error

	// Promotion reads (local-only -> central)
	LocalFile(ctx context.Context, localID int64) (*models.ReplicaFile, error)
	RowsForFile(ctx context.Context, fileLocalID int64) ([]models.ReplicaRow, error)
	LocalTM(ctx context.Context, localID int64) (*models.ReplicaTM, error)
	TMEntriesForTM(ctx context.Context, tmLocalID int64) ([]models.ReplicaTMEntry, error)
}
