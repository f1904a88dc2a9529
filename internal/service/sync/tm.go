package sync

import (
	"context"
	"fmt"

	"linguasync/internal/domain/models"
	"linguasync/internal/mapper"
)

// SyncTMToOffline downloads a TM and merges its entries into the replica.
// Dirty local entries are left untouched by the merge; PushTMChangesToServer
// reconciles them afterwards, mirroring the file path. Returns the number of
// entries merged.
func (s *Service) SyncTMToOffline(ctx context.Context, tmID int64) (int, error) {
	s.emit("sync_tm", models.EventStarted, fmt.Sprintf("tm %d", tmID))

	tm, err := s.tms.Get(ctx, tmID)
	if err != nil {
		s.emit("sync_tm", models.EventFailed, err.Error())
		return 0, err
	}

	localTMID, err := s.replica.SaveTM(ctx, mapper.TMToReplica(tm))
	if err != nil {
		s.emit("sync_tm", models.EventFailed, err.Error())
		return 0, fmt.Errorf("save tm %d: %w", tmID, err)
	}

	entries, err := s.tmEntries.ListByTM(ctx, tmID)
	if err != nil {
		s.emit("sync_tm", models.EventFailed, err.Error())
		return 0, fmt.Errorf("list central tm entries: %w", err)
	}

	merged := 0
	for i := range entries {
		entry := mapper.TMEntryToReplica(&entries[i])
		entry.TMLocalID = localTMID
		if err := s.replica.MergeTMEntry(ctx, entry); err != nil {
			s.emit("sync_tm", models.EventFailed, err.Error())
			return merged, fmt.Errorf("merge tm entry %d: %w", entries[i].ID, err)
		}
		merged++
	}

	if _, err := s.PushTMChangesToServer(ctx, localTMID, tmID); err != nil {
		s.emit("sync_tm", models.EventFailed, err.Error())
		return merged, err
	}

	s.logger.Info("tm synced", "tm_id", tmID, "entries", merged)
	s.emit("sync_tm", models.EventCompleted, fmt.Sprintf("tm %d", tmID))
	return merged, nil
}
