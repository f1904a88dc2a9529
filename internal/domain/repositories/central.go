package repositories

import (
	"context"

	"linguasync/internal/domain/models"
)

// Central store adapter interfaces. The central store is the multi-user
// system of record; the sync core reads hierarchy and rows from it and
// writes back pushed edits and promoted local-only entities.

// PlatformRepository defines central reads over platforms
type PlatformRepository interface {
	// GetByID retrieves a platform by id
	GetByID(ctx context.Context, id int64) (*models.Platform, error)
}

// ProjectRepository defines central reads over projects
type ProjectRepository interface {
	// GetByID retrieves a project by id
	GetByID(ctx context.Context, id int64) (*models.Project, error)

	// ListByPlatform lists all projects under a platform
	ListByPlatform(ctx context.Context, platformID int64) ([]models.Project, error)
}

// FolderRepository defines central reads over folders
type FolderRepository interface {
	// GetByID retrieves a folder by id
	GetByID(ctx context.Context, id int64) (*models.Folder, error)

	// ListByParent lists folders under a parent (nil parent = project root)
	ListByParent(ctx context.Context, projectID int64, parentID *int64) ([]models.Folder, error)
}

// FileRepository defines central operations over files
type FileRepository interface {
	// GetByID retrieves a file by id
	GetByID(ctx context.Context, id int64) (*models.File, error)

	// ListByFolder lists files in a folder (nil folder = project root)
	ListByFolder(ctx context.Context, projectID int64, folderID *int64) ([]models.File, error)

	// Create inserts a new file and fills in its assigned id
	Create(ctx context.Context, file *models.File) error
}

// RowRepository defines central operations over rows
type RowRepository interface {
	// ListByFile returns all rows of a file ordered by row_num
	ListByFile(ctx context.Context, fileID int64) ([]models.Row, error)

	// UpdateTranslation writes back the editable fields of one row
	UpdateTranslation(ctx context.Context, rowID int64, target, status, memo string) error

	// BulkInsert inserts rows for a file, preserving row_num order
	BulkInsert(ctx context.Context, fileID int64, rows []models.Row) error
}

// TMEntryRepository defines central operations over TM entries
type TMEntryRepository interface {
	// ListByTM returns all entries of a TM
	ListByTM(ctx context.Context, tmID int64) ([]models.TMEntry, error)

	// UpdateTranslation writes back the target text of one entry
	UpdateTranslation(ctx context.Context, entryID int64, target string) error

	// Insert inserts a single entry and fills in its assigned id
	Insert(ctx context.Context, entry *models.TMEntry) error

	// BulkInsert inserts entries for a TM
	BulkInsert(ctx context.Context, tmID int64, entries []models.TMEntry) error
}
