package sync

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"linguasync/internal/domain"
	"linguasync/internal/domain/models"
)

// PromoteFileRequest names the destination for a local-only file.
type PromoteFileRequest struct {
	LocalFileID int64  `json:"local_file_id"`
	ProjectID   int64  `json:"project_id"`
	FolderID    *int64 `json:"folder_id,omitempty"`
	UserID      int64  `json:"user_id"`
}

func (r PromoteFileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.LocalFileID, validation.Required),
		validation.Field(&r.ProjectID, validation.Required),
		validation.Field(&r.UserID, validation.Required),
	)
}

// PromoteFileResult reports one file promotion.
type PromoteFileResult struct {
	NewFileID  int64 `json:"new_file_id"`
	RowsSynced int   `json:"rows_synced"`
}

// PromoteTMResult reports one TM promotion.
type PromoteTMResult struct {
	NewTMID       int64 `json:"new_tm_id"`
	EntriesSynced int   `json:"entries_synced"`
}

// SyncFileToCentral promotes a local-only file into a first-class central
// file at the given destination. Strictly insert-only: it never mutates an
// existing central file, so a retry after a half-failure is always safe (at
// worst it creates a duplicate for the caller to clean up).
func (s *Service) SyncFileToCentral(ctx context.Context, req PromoteFileRequest) (*PromoteFileResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	localFile, err := s.replica.LocalFile(ctx, req.LocalFileID)
	if err != nil {
		return nil, err
	}
	if localFile.Ref.Synced() {
		return nil, fmt.Errorf("%w: file %d is already promoted", domain.ErrValidation, req.LocalFileID)
	}

	// Destination must exist before anything is written.
	if _, err := s.projects.GetByID(ctx, req.ProjectID); err != nil {
		return nil, err
	}
	if req.FolderID != nil {
		folder, err := s.folders.GetByID(ctx, *req.FolderID)
		if err != nil {
			return nil, err
		}
		if folder.ProjectID != req.ProjectID {
			return nil, fmt.Errorf("%w: folder %d belongs to project %d, not %d",
				domain.ErrValidation, folder.ID, folder.ProjectID, req.ProjectID)
		}
	}

	localRows, err := s.replica.RowsForFile(ctx, req.LocalFileID)
	if err != nil {
		return nil, fmt.Errorf("read local rows: %w", err)
	}

	now := time.Now().UTC()
	file := &models.File{
		Name:             localFile.Name,
		OriginalFilename: localFile.OriginalFilename,
		Format:           localFile.Format,
		RowCount:         len(localRows),
		SourceLanguage:   localFile.SourceLanguage,
		TargetLanguage:   localFile.TargetLanguage,
		ProjectID:        req.ProjectID,
		FolderID:         req.FolderID,
		ExtraData:        localFile.ExtraData,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	centralRows := make([]models.Row, len(localRows))
	for i, lr := range localRows {
		centralRows[i] = models.Row{
			RowNum:    lr.RowNum,
			StringID:  lr.StringID,
			Source:    lr.Source,
			Target:    lr.Target,
			Memo:      lr.Memo,
			Status:    lr.Status,
			ExtraData: lr.ExtraData,
			UpdatedAt: parseTimeText(lr.UpdatedAt),
		}
	}

	s.emit("promote_file", models.EventStarted, localFile.Name)

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.files.Create(txCtx, file); err != nil {
			return err
		}
		return s.rows.BulkInsert(txCtx, file.ID, centralRows)
	})
	if err != nil {
		s.emit("promote_file", models.EventFailed, err.Error())
		return nil, err
	}

	s.logger.Info("file promoted",
		"local_file_id", req.LocalFileID,
		"new_file_id", file.ID,
		"rows", len(centralRows),
		"user_id", req.UserID,
	)
	s.emit("promote_file", models.EventCompleted, localFile.Name)

	return &PromoteFileResult{NewFileID: file.ID, RowsSynced: len(centralRows)}, nil
}

// SyncTMToCentral promotes a local-only TM. The new central TM starts in
// status pending until the index builder picks it up; each entry gets a
// content hash over its source text for later exact-match lookup.
func (s *Service) SyncTMToCentral(ctx context.Context, localTMID, userID int64) (*PromoteTMResult, error) {
	if localTMID == 0 || userID == 0 {
		return nil, fmt.Errorf("%w: local tm id and user id are required", domain.ErrValidation)
	}

	localTM, err := s.replica.LocalTM(ctx, localTMID)
	if err != nil {
		return nil, err
	}
	if localTM.Ref.Synced() {
		return nil, fmt.Errorf("%w: tm %d is already promoted", domain.ErrValidation, localTMID)
	}

	localEntries, err := s.replica.TMEntriesForTM(ctx, localTMID)
	if err != nil {
		return nil, fmt.Errorf("read local tm entries: %w", err)
	}

	now := time.Now().UTC()
	tm := &models.TranslationMemory{
		Name:        localTM.Name,
		Description: localTM.Description,
		OwnerID:     userID,
		SourceLang:  localTM.SourceLang,
		TargetLang:  localTM.TargetLang,
		EntryCount:  len(localEntries),
		Status:      models.TMStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	centralEntries := make([]models.TMEntry, len(localEntries))
	for i, le := range localEntries {
		sourceHash := le.SourceHash
		if sourceHash == "" {
			sourceHash = models.HashSourceText(le.SourceText)
		}
		centralEntries[i] = models.TMEntry{
			SourceText: le.SourceText,
			TargetText: le.TargetText,
			SourceHash: sourceHash,
			CreatedAt:  now,
			UpdatedAt:  now,
			CreatedBy:  userID,
			ChangeDate: &now,
		}
	}

	s.emit("promote_tm", models.EventStarted, localTM.Name)

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.tms.Create(txCtx, tm); err != nil {
			return err
		}
		return s.tmEntries.BulkInsert(txCtx, tm.ID, centralEntries)
	})
	if err != nil {
		s.emit("promote_tm", models.EventFailed, err.Error())
		return nil, err
	}

	s.logger.Info("tm promoted",
		"local_tm_id", localTMID,
		"new_tm_id", tm.ID,
		"entries", len(centralEntries),
		"user_id", userID,
	)
	s.emit("promote_tm", models.EventCompleted, localTM.Name)

	return &PromoteTMResult{NewTMID: tm.ID, EntriesSynced: len(centralEntries)}, nil
}
