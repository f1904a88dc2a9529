package sync

import (
	"context"
	"fmt"
	"time"

	"linguasync/internal/domain/models"
)

// PushFileChangesToServer sends dirty replica rows for a file back to the
// central store. Rows without a server id are skipped - a local-only file
// must be promoted before its rows can be pushed. The dirty flag is cleared
// only after the central write succeeds, so a failed push retries cleanly.
func (s *Service) PushFileChangesToServer(ctx context.Context, fileID int64) (int, error) {
	dirty, err := s.replica.ModifiedRows(ctx, fileID)
	if err != nil {
		return 0, fmt.Errorf("list modified rows: %w", err)
	}

	pushed := 0
	for _, row := range dirty {
		serverID, ok := row.Ref.ServerID()
		if !ok {
			continue
		}
		if err := s.rows.UpdateTranslation(ctx, serverID, row.Target, row.Status, row.Memo); err != nil {
			return pushed, fmt.Errorf("push row %d: %w", serverID, err)
		}
		if err := s.replica.MarkRowSynced(ctx, row.LocalID); err != nil {
			return pushed, fmt.Errorf("mark row %d synced: %w", row.LocalID, err)
		}
		pushed++
	}

	if pushed > 0 {
		s.logger.Info("pushed file changes", "file_id", fileID, "rows", pushed)
	}
	return pushed, nil
}

// PushTMChangesToServer sends dirty TM entries up. Entries with a server id
// update their central counterpart; entries without one are inserted as new
// central entries (implicit promotion). The TM's entry count is recomputed
// from a fresh central count afterwards.
func (s *Service) PushTMChangesToServer(ctx context.Context, localTMID, serverTMID int64) (int, error) {
	tm, err := s.tms.Get(ctx, serverTMID)
	if err != nil {
		return 0, err
	}

	dirty, err := s.replica.ModifiedTMEntries(ctx, localTMID)
	if err != nil {
		return 0, fmt.Errorf("list modified tm entries: %w", err)
	}

	pushed := 0
	for _, entry := range dirty {
		if serverID, ok := entry.Ref.ServerID(); ok {
			if err := s.tmEntries.UpdateTranslation(ctx, serverID, entry.TargetText); err != nil {
				return pushed, fmt.Errorf("push tm entry %d: %w", serverID, err)
			}
		} else {
			sourceHash := entry.SourceHash
			if sourceHash == "" {
				sourceHash = models.HashSourceText(entry.SourceText)
			}
			now := time.Now().UTC()
			central := &models.TMEntry{
				TMID:       serverTMID,
				SourceText: entry.SourceText,
				TargetText: entry.TargetText,
				SourceHash: sourceHash,
				CreatedAt:  now,
				UpdatedAt:  now,
				CreatedBy:  tm.OwnerID,
				ChangeDate: &now,
			}
			if err := s.tmEntries.Insert(ctx, central); err != nil {
				return pushed, fmt.Errorf("insert tm entry: %w", err)
			}
		}
		if err := s.replica.MarkTMEntrySynced(ctx, entry.LocalID); err != nil {
			return pushed, fmt.Errorf("mark tm entry %d synced: %w", entry.LocalID, err)
		}
		pushed++
	}

	// entry_count must track the live entry set after any push.
	count, err := s.tms.CountEntries(ctx, serverTMID)
	if err != nil {
		return pushed, fmt.Errorf("count tm entries: %w", err)
	}
	if err := s.tms.UpdateEntryCount(ctx, serverTMID, count); err != nil {
		return pushed, fmt.Errorf("update tm entry count: %w", err)
	}

	if pushed > 0 {
		s.logger.Info("pushed tm changes", "tm_id", serverTMID, "entries", pushed, "entry_count", count)
	}
	return pushed, nil
}
