package sync

import (
	"context"
	"fmt"

	"linguasync/internal/domain/models"
	"linguasync/internal/mapper"
)

// SyncFolderHierarchy writes a folder and all of its ancestors into the
// replica, root-most ancestor first, so a child's parent always exists
// locally before the child does. Idempotent.
func (s *Service) SyncFolderHierarchy(ctx context.Context, folder *models.Folder) error {
	if folder == nil {
		return nil
	}
	if folder.ParentID != nil {
		parent, err := s.folders.GetByID(ctx, *folder.ParentID)
		if err != nil {
			return fmt.Errorf("resolve parent folder: %w", err)
		}
		if err := s.SyncFolderHierarchy(ctx, parent); err != nil {
			return err
		}
	}
	if err := s.replica.SaveFolder(ctx, mapper.FolderToReplica(folder)); err != nil {
		return fmt.Errorf("save folder %d: %w", folder.ID, err)
	}
	return nil
}

// syncFilePath makes the file's entire placement chain present in the
// replica: project, platform, folder chain, then the file itself. The
// central store is authoritative for placement.
func (s *Service) syncFilePath(ctx context.Context, file *models.File) error {
	project, err := s.projects.GetByID(ctx, file.ProjectID)
	if err != nil {
		return fmt.Errorf("resolve project: %w", err)
	}
	if err := s.replica.SaveProject(ctx, mapper.ProjectToReplica(project)); err != nil {
		return fmt.Errorf("save project %d: %w", project.ID, err)
	}

	platform, err := s.platforms.GetByID(ctx, project.PlatformID)
	if err != nil {
		return fmt.Errorf("resolve platform: %w", err)
	}
	if err := s.replica.SavePlatform(ctx, mapper.PlatformToReplica(platform)); err != nil {
		return fmt.Errorf("save platform %d: %w", platform.ID, err)
	}

	if file.FolderID != nil {
		folder, err := s.folders.GetByID(ctx, *file.FolderID)
		if err != nil {
			return fmt.Errorf("resolve folder: %w", err)
		}
		if err := s.SyncFolderHierarchy(ctx, folder); err != nil {
			return err
		}
	}

	if err := s.replica.SaveFile(ctx, mapper.FileToReplica(file)); err != nil {
		return fmt.Errorf("save file %d: %w", file.ID, err)
	}
	return nil
}

// SyncFileToOffline downloads one file and merges its rows into the replica.
// A missing central parent aborts the call; replica writes made by the steps
// before the failure stay put, and re-running the call picks up where it
// left off.
func (s *Service) SyncFileToOffline(ctx context.Context, fileID int64) (RowSyncStats, error) {
	var stats RowSyncStats

	s.emit("sync_file", models.EventStarted, fmt.Sprintf("file %d", fileID))

	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		s.emit("sync_file", models.EventFailed, err.Error())
		return stats, err
	}

	if err := s.syncFilePath(ctx, file); err != nil {
		s.emit("sync_file", models.EventFailed, err.Error())
		return stats, err
	}

	centralRows, err := s.rows.ListByFile(ctx, fileID)
	if err != nil {
		s.emit("sync_file", models.EventFailed, err.Error())
		return stats, fmt.Errorf("list central rows: %w", err)
	}

	localServerIDs, err := s.replica.LocalRowServerIDs(ctx, fileID)
	if err != nil {
		s.emit("sync_file", models.EventFailed, err.Error())
		return stats, fmt.Errorf("list local server ids: %w", err)
	}

	merge, err := s.replica.MergeRowsBatch(ctx, mapper.RowsToReplica(centralRows), fileID)
	if err != nil {
		s.emit("sync_file", models.EventFailed, err.Error())
		return stats, fmt.Errorf("merge rows: %w", err)
	}
	stats.Inserted = merge.Inserted
	stats.Updated = merge.Updated
	stats.Skipped = merge.Skipped

	// Tombstone reconciliation: local rows whose central counterpart is gone.
	centralIDs := make(map[int64]struct{}, len(centralRows))
	for _, r := range centralRows {
		centralIDs[r.ID] = struct{}{}
	}
	for serverID := range localServerIDs {
		if _, ok := centralIDs[serverID]; ok {
			continue
		}
		if err := s.replica.DeleteRowByServerID(ctx, serverID); err != nil {
			s.emit("sync_file", models.EventFailed, err.Error())
			return stats, fmt.Errorf("delete stale row %d: %w", serverID, err)
		}
		stats.Deleted++
	}

	// Rows the merge kept because they are locally newer go back up now.
	pushed, err := s.PushFileChangesToServer(ctx, fileID)
	if err != nil {
		s.emit("sync_file", models.EventFailed, err.Error())
		return stats, err
	}
	stats.Pushed = pushed

	s.logger.Info("file synced",
		"file_id", fileID,
		"inserted", stats.Inserted,
		"updated", stats.Updated,
		"skipped", stats.Skipped,
		"deleted", stats.Deleted,
		"pushed", stats.Pushed,
	)
	s.emit("sync_file", models.EventCompleted, fmt.Sprintf("file %d", fileID))

	return stats, nil
}

// SyncFolderToOffline syncs a folder's path once, then every file and child
// folder underneath it.
func (s *Service) SyncFolderToOffline(ctx context.Context, folderID int64) (TreeSyncStats, error) {
	var stats TreeSyncStats

	folder, err := s.folders.GetByID(ctx, folderID)
	if err != nil {
		return stats, err
	}

	project, err := s.projects.GetByID(ctx, folder.ProjectID)
	if err != nil {
		return stats, fmt.Errorf("resolve project: %w", err)
	}
	if err := s.replica.SaveProject(ctx, mapper.ProjectToReplica(project)); err != nil {
		return stats, fmt.Errorf("save project %d: %w", project.ID, err)
	}

	platform, err := s.platforms.GetByID(ctx, project.PlatformID)
	if err != nil {
		return stats, fmt.Errorf("resolve platform: %w", err)
	}
	if err := s.replica.SavePlatform(ctx, mapper.PlatformToReplica(platform)); err != nil {
		return stats, fmt.Errorf("save platform %d: %w", platform.ID, err)
	}

	if err := s.SyncFolderHierarchy(ctx, folder); err != nil {
		return stats, err
	}

	return s.syncFolderSubtree(ctx, folder)
}

// syncFolderSubtree recursively syncs everything under an already-synced
// folder.
func (s *Service) syncFolderSubtree(ctx context.Context, folder *models.Folder) (TreeSyncStats, error) {
	var stats TreeSyncStats

	files, err := s.files.ListByFolder(ctx, folder.ProjectID, &folder.ID)
	if err != nil {
		return stats, fmt.Errorf("list files in folder %d: %w", folder.ID, err)
	}
	for _, f := range files {
		rowStats, err := s.SyncFileToOffline(ctx, f.ID)
		if err != nil {
			return stats, err
		}
		stats.FilesSynced++
		stats.TotalRows += rowStats.Inserted + rowStats.Updated + rowStats.Skipped
	}

	children, err := s.folders.ListByParent(ctx, folder.ProjectID, &folder.ID)
	if err != nil {
		return stats, fmt.Errorf("list child folders of %d: %w", folder.ID, err)
	}
	for i := range children {
		child := &children[i]
		if err := s.replica.SaveFolder(ctx, mapper.FolderToReplica(child)); err != nil {
			return stats, fmt.Errorf("save folder %d: %w", child.ID, err)
		}
		stats.FoldersSynced++
		sub, err := s.syncFolderSubtree(ctx, child)
		if err != nil {
			return stats, err
		}
		stats.add(sub)
	}

	return stats, nil
}

// SyncProjectToOffline syncs a project's path, then its root-level files and
// its entire folder tree.
func (s *Service) SyncProjectToOffline(ctx context.Context, projectID int64) (TreeSyncStats, error) {
	var stats TreeSyncStats

	s.emit("sync_project", models.EventStarted, fmt.Sprintf("project %d", projectID))

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		s.emit("sync_project", models.EventFailed, err.Error())
		return stats, err
	}
	if err := s.replica.SaveProject(ctx, mapper.ProjectToReplica(project)); err != nil {
		return stats, fmt.Errorf("save project %d: %w", project.ID, err)
	}

	platform, err := s.platforms.GetByID(ctx, project.PlatformID)
	if err != nil {
		s.emit("sync_project", models.EventFailed, err.Error())
		return stats, fmt.Errorf("resolve platform: %w", err)
	}
	if err := s.replica.SavePlatform(ctx, mapper.PlatformToReplica(platform)); err != nil {
		return stats, fmt.Errorf("save platform %d: %w", platform.ID, err)
	}

	// Root-level files (no folder)
	rootFiles, err := s.files.ListByFolder(ctx, projectID, nil)
	if err != nil {
		return stats, fmt.Errorf("list root files: %w", err)
	}
	for _, f := range rootFiles {
		rowStats, err := s.SyncFileToOffline(ctx, f.ID)
		if err != nil {
			s.emit("sync_project", models.EventFailed, err.Error())
			return stats, err
		}
		stats.FilesSynced++
		stats.TotalRows += rowStats.Inserted + rowStats.Updated + rowStats.Skipped
	}

	// Root-level folders and their subtrees
	rootFolders, err := s.folders.ListByParent(ctx, projectID, nil)
	if err != nil {
		return stats, fmt.Errorf("list root folders: %w", err)
	}
	for i := range rootFolders {
		folder := &rootFolders[i]
		if err := s.replica.SaveFolder(ctx, mapper.FolderToReplica(folder)); err != nil {
			return stats, fmt.Errorf("save folder %d: %w", folder.ID, err)
		}
		stats.FoldersSynced++
		sub, err := s.syncFolderSubtree(ctx, folder)
		if err != nil {
			s.emit("sync_project", models.EventFailed, err.Error())
			return stats, err
		}
		stats.add(sub)
	}

	s.emit("sync_project", models.EventCompleted, fmt.Sprintf("project %d", projectID))
	return stats, nil
}

// SyncPlatformToOffline syncs a platform and every project under it.
func (s *Service) SyncPlatformToOffline(ctx context.Context, platformID int64) (TreeSyncStats, error) {
	var stats TreeSyncStats

	s.emit("sync_platform", models.EventStarted, fmt.Sprintf("platform %d", platformID))

	platform, err := s.platforms.GetByID(ctx, platformID)
	if err != nil {
		s.emit("sync_platform", models.EventFailed, err.Error())
		return stats, err
	}
	if err := s.replica.SavePlatform(ctx, mapper.PlatformToReplica(platform)); err != nil {
		return stats, fmt.Errorf("save platform %d: %w", platform.ID, err)
	}

	projects, err := s.projects.ListByPlatform(ctx, platformID)
	if err != nil {
		return stats, fmt.Errorf("list projects: %w", err)
	}
	for _, p := range projects {
		sub, err := s.SyncProjectToOffline(ctx, p.ID)
		if err != nil {
			s.emit("sync_platform", models.EventFailed, err.Error())
			return stats, err
		}
		stats.ProjectsSynced++
		stats.add(sub)
	}

	s.emit("sync_platform", models.EventCompleted, fmt.Sprintf("platform %d", platformID))
	return stats, nil
}
