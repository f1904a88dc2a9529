package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"linguasync/internal/domain"
	"linguasync/internal/domain/models"
	"linguasync/internal/domain/repositories"
)

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *RepositoryConfig) repositories.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetByID retrieves a file by id
func (r *PostgresFileRepository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	query := fmt.Sprintf(`
		SELECT id, name, original_filename, format, row_count, source_language,
		       target_language, project_id, folder_id, extra_data, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Files)

	var f models.File
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&f.ID,
		&f.Name,
		&f.OriginalFilename,
		&f.Format,
		&f.RowCount,
		&f.SourceLanguage,
		&f.TargetLanguage,
		&f.ProjectID,
		&f.FolderID,
		&f.ExtraData,
		&f.CreatedAt,
		&f.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{ResourceType: "file", ResourceID: id}
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return &f, nil
}

// ListByFolder lists files in a folder (nil folder = project root)
func (r *PostgresFileRepository) ListByFolder(ctx context.Context, projectID int64, folderID *int64) ([]models.File, error) {
	var query string
	var args []interface{}

	if folderID == nil {
		query = fmt.Sprintf(`
			SELECT id, name, original_filename, format, row_count, source_language,
			       target_language, project_id, folder_id, extra_data, created_at, updated_at
			FROM %s
			WHERE project_id = $1 AND folder_id IS NULL
			ORDER BY name ASC
		`, r.tables.Files)
		args = []interface{}{projectID}
	} else {
		query = fmt.Sprintf(`
			SELECT id, name, original_filename, format, row_count, source_language,
			       target_language, project_id, folder_id, extra_data, created_at, updated_at
			FROM %s
			WHERE project_id = $1 AND folder_id = $2
			ORDER BY name ASC
		`, r.tables.Files)
		args = []interface{}{projectID, *folderID}
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files by folder: %w", err)
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		var f models.File
		err := rows.Scan(
			&f.ID,
			&f.Name,
			&f.OriginalFilename,
			&f.Format,
			&f.RowCount,
			&f.SourceLanguage,
			&f.TargetLanguage,
			&f.ProjectID,
			&f.FolderID,
			&f.ExtraData,
			&f.CreatedAt,
			&f.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	if files == nil {
		files = []models.File{}
	}

	return files, nil
}

// Create inserts a new file and fills in its assigned id
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, original_filename, format, row_count, source_language,
		                target_language, project_id, folder_id, extra_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`, r.tables.Files)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		file.Name,
		file.OriginalFilename,
		file.Format,
		file.RowCount,
		file.SourceLanguage,
		file.TargetLanguage,
		file.ProjectID,
		file.FolderID,
		file.ExtraData,
		file.CreatedAt,
		file.UpdatedAt,
	).Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return &domain.NotFoundError{ResourceType: "project", ResourceID: file.ProjectID}
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}
