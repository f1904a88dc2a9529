// Package indexer provides the built-in re-index collaborator used by CLI
// runs: it mirrors a TM's entries into the replica store and records what it
// indexed in the per-TM metadata file that staleness detection reads back.
// Deployments with a dedicated index builder plug that in instead.
package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"linguasync/internal/domain/repositories"
	"linguasync/internal/indexmeta"
)

// TMSyncer is the slice of the sync service the indexer needs.
type TMSyncer interface {
	SyncTMToOffline(ctx context.Context, tmID int64) (int, error)
}

// Local implements repositories.Indexer over the replica store.
type Local struct {
	syncer  TMSyncer
	tms     repositories.TMRepository
	metaDir string
	logger  *slog.Logger
}

// NewLocal creates a local indexer writing metadata under metaDir.
func NewLocal(syncer TMSyncer, tms repositories.TMRepository, metaDir string, logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.Default()
	}
	return &Local{syncer: syncer, tms: tms, metaDir: metaDir, logger: logger}
}

// SyncIndex mirrors the TM into the replica, then writes the metadata file.
// The recorded entry count comes from a fresh central count so the next
// staleness check compares like with like.
func (l *Local) SyncIndex(ctx context.Context, tmID int64) (repositories.IndexStats, error) {
	var stats repositories.IndexStats

	merged, err := l.syncer.SyncTMToOffline(ctx, tmID)
	if err != nil {
		return stats, err
	}
	stats.Inserted = merged

	count, err := l.tms.CountEntries(ctx, tmID)
	if err != nil {
		return stats, fmt.Errorf("count entries for tm %d: %w", tmID, err)
	}

	if err := l.writeMetadata(tmID, count); err != nil {
		return stats, err
	}

	l.logger.Debug("index metadata written", "tm_id", tmID, "entry_count", count)
	return stats, nil
}

func (l *Local) writeMetadata(tmID int64, entryCount int) error {
	now := time.Now().UTC()
	meta := indexmeta.Metadata{SyncedAt: &now, EntryCount: entryCount}

	path := indexmeta.NewReader(l.metaDir).Path(tmID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index dir for tm %d: %w", tmID, err)
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write index metadata for tm %d: %w", tmID, err)
	}
	return nil
}
