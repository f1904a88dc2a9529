package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"linguasync/internal/domain"
	"linguasync/internal/domain/models"
)

// SavePlatform upserts a platform by server id.
func (s *Store) SavePlatform(ctx context.Context, p models.ReplicaPlatform) error {
	q := s.sq.Insert("platforms").
		Columns("server_id", "name", "description", "is_restricted", "created_at", "updated_at", "synced_at").
		Values(refValue(p.Ref), p.Name, p.Description, p.IsRestricted, p.CreatedAt, p.UpdatedAt, nowText()).
		Suffix(`ON CONFLICT(server_id) DO UPDATE SET
            name=excluded.name, description=excluded.description,
            is_restricted=excluded.is_restricted, created_at=excluded.created_at,
            updated_at=excluded.updated_at, synced_at=excluded.synced_at`)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build save platform: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("save platform: %w", err)
	}
	return nil
}

// SaveProject upserts a project by server id.
func (s *Store) SaveProject(ctx context.Context, p models.ReplicaProject) error {
	q := s.sq.Insert("projects").
		Columns("server_id", "name", "description", "platform_server_id", "is_restricted",
			"created_at", "updated_at", "synced_at").
		Values(refValue(p.Ref), p.Name, p.Description, p.PlatformServerID, p.IsRestricted,
			p.CreatedAt, p.UpdatedAt, nowText()).
		Suffix(`ON CONFLICT(server_id) DO UPDATE SET
            name=excluded.name, description=excluded.description,
            platform_server_id=excluded.platform_server_id,
            is_restricted=excluded.is_restricted, created_at=excluded.created_at,
            updated_at=excluded.updated_at, synced_at=excluded.synced_at`)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build save project: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

// SaveFolder upserts a folder by server id. The caller is responsible for
// saving ancestors first so parent_server_id always resolves locally.
func (s *Store) SaveFolder(ctx context.Context, f models.ReplicaFolder) error {
	q := s.sq.Insert("folders").
		Columns("server_id", "name", "project_server_id", "parent_server_id", "created_at", "synced_at").
		Values(refValue(f.Ref), f.Name, f.ProjectServerID, f.ParentServerID, f.CreatedAt, nowText()).
		Suffix(`ON CONFLICT(server_id) DO UPDATE SET
            name=excluded.name, project_server_id=excluded.project_server_id,
            parent_server_id=excluded.parent_server_id, created_at=excluded.created_at,
            synced_at=excluded.synced_at`)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build save folder: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("save folder: %w", err)
	}
	return nil
}

// SaveFile upserts file metadata by server id. Central placement wins: a
// locally-moved synced file snaps back to the central project/folder.
func (s *Store) SaveFile(ctx context.Context, f models.ReplicaFile) error {
	q := s.sq.Insert("files").
		Columns("server_id", "name", "original_filename", "format", "row_count",
			"source_language", "target_language", "project_server_id", "folder_server_id",
			"extra_data", "created_at", "updated_at", "synced_at").
		Values(refValue(f.Ref), f.Name, f.OriginalFilename, f.Format, f.RowCount,
			f.SourceLanguage, f.TargetLanguage, f.ProjectServerID, f.FolderServerID,
			f.ExtraData, f.CreatedAt, f.UpdatedAt, nowText()).
		Suffix(`ON CONFLICT(server_id) DO UPDATE SET
            name=excluded.name, original_filename=excluded.original_filename,
            format=excluded.format, row_count=excluded.row_count,
            source_language=excluded.source_language, target_language=excluded.target_language,
            project_server_id=excluded.project_server_id, folder_server_id=excluded.folder_server_id,
            extra_data=excluded.extra_data, created_at=excluded.created_at,
            updated_at=excluded.updated_at, synced_at=excluded.synced_at`)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build save file: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("save file: %w", err)
	}
	return nil
}

// fileLocalID resolves a file's local id from its server id.
func (s *Store) fileLocalID(ctx context.Context, fileServerID int64) (int64, error) {
	var localID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT local_id FROM files WHERE server_id = ?`, fileServerID).Scan(&localID)
	if err == sql.ErrNoRows {
		return 0, &domain.NotFoundError{ResourceType: "file", ResourceID: fileServerID}
	}
	if err != nil {
		return 0, fmt.Errorf("resolve file local id: %w", err)
	}
	return localID, nil
}

// LocalFile returns a local file by its local id.
func (s *Store) LocalFile(ctx context.Context, localID int64) (*models.ReplicaFile, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT local_id, server_id, name, original_filename, format, row_count,
               source_language, target_language, project_server_id, folder_server_id,
               extra_data, created_at, updated_at, dirty, synced_at
        FROM files WHERE local_id = ?`, localID)

	var f models.ReplicaFile
	var serverID, projectID, folderID sql.NullInt64
	var extraData []byte
	var createdAt, updatedAt, syncedAt sql.NullString
	err := row.Scan(&f.LocalID, &serverID, &f.Name, &f.OriginalFilename, &f.Format,
		&f.RowCount, &f.SourceLanguage, &f.TargetLanguage, &projectID, &folderID,
		&extraData, &createdAt, &updatedAt, &f.Dirty, &syncedAt)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{ResourceType: "file", ResourceID: localID}
	}
	if err != nil {
		return nil, fmt.Errorf("get local file: %w", err)
	}

	f.Ref = refFromNull(serverID)
	if projectID.Valid {
		f.ProjectServerID = projectID.Int64
	}
	f.FolderServerID = int64Ptr(folderID)
	f.ExtraData = extraData
	f.CreatedAt = textPtr(createdAt)
	f.UpdatedAt = textPtr(updatedAt)
	f.SyncedAt = textPtr(syncedAt)
	return &f, nil
}
