// Package maintenance keeps TM search indexes from drifting silently out of
// date: a staleness detector compares each TM's on-disk index metadata with
// the central store, and a lock-protected queue feeds stale TMs to the
// external re-index collaborator.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"

	"linguasync/internal/domain/models"
	"linguasync/internal/domain/repositories"
	"linguasync/internal/indexmeta"
)

// StalenessDetector classifies TMs as current, stale, or never indexed.
// Classification is recomputed fresh on every check; the only persisted
// state it consults is the index builder's own metadata file.
type StalenessDetector struct {
	tms    repositories.TMRepository
	meta   *indexmeta.Reader
	logger *slog.Logger
}

// NewStalenessDetector creates a detector over the given TM repository and
// metadata directory reader.
func NewStalenessDetector(tms repositories.TMRepository, meta *indexmeta.Reader, logger *slog.Logger) *StalenessDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &StalenessDetector{tms: tms, meta: meta, logger: logger}
}

// Classify applies the staleness rules to one TM, first match wins:
//
//  1. no index metadata            -> never_indexed
//  2. indexed before last update   -> stale
//  3. live count != indexed count  -> stale
//  4. otherwise                    -> current
func (d *StalenessDetector) Classify(ctx context.Context, tm *models.TranslationMemory) (models.StaleTMInfo, error) {
	info := models.StaleTMInfo{
		TMID:   tm.ID,
		TMName: tm.Name,
	}
	if !tm.UpdatedAt.IsZero() {
		updatedAt := tm.UpdatedAt
		info.UpdatedAt = &updatedAt
	}

	liveCount, err := d.tms.CountEntries(ctx, tm.ID)
	if err != nil {
		return info, fmt.Errorf("count entries for tm %d: %w", tm.ID, err)
	}
	info.EntryCount = liveCount

	meta, err := d.meta.Read(tm.ID)
	if err != nil {
		return info, err
	}

	if meta == nil {
		info.Status = models.TMIndexNeverIndexed
		info.PendingChanges = liveCount
		return info, nil
	}

	info.IndexedAt = meta.EffectiveTime()
	info.IndexedEntryCount = meta.EntryCount

	if info.IndexedAt != nil && info.IndexedAt.Before(tm.UpdatedAt) {
		info.Status = models.TMIndexStale
		info.PendingChanges = max(1, abs(liveCount-meta.EntryCount))
		return info, nil
	}

	// Count mismatch catches indexes whose metadata timestamp lies.
	if liveCount != meta.EntryCount {
		info.Status = models.TMIndexStale
		info.PendingChanges = abs(liveCount - meta.EntryCount)
		return info, nil
	}

	info.Status = models.TMIndexCurrent
	return info, nil
}

// FindStaleTMs classifies every TM (or an explicit subset by id) and returns
// only the stale and never-indexed ones.
func (d *StalenessDetector) FindStaleTMs(ctx context.Context, tmIDs ...int64) ([]models.StaleTMInfo, error) {
	var tms []models.TranslationMemory

	if len(tmIDs) > 0 {
		for _, id := range tmIDs {
			tm, err := d.tms.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			tms = append(tms, *tm)
		}
	} else {
		all, err := d.tms.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		tms = all
	}

	var stale []models.StaleTMInfo
	for i := range tms {
		info, err := d.Classify(ctx, &tms[i])
		if err != nil {
			return nil, err
		}
		if info.Status == models.TMIndexCurrent {
			continue
		}
		stale = append(stale, info)
	}
	return stale, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
