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

// PostgresPlatformRepository implements the PlatformRepository interface
type PostgresPlatformRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewPlatformRepository creates a new platform repository
func NewPlatformRepository(config *RepositoryConfig) repositories.PlatformRepository {
	return &PostgresPlatformRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetByID retrieves a platform by id
func (r *PostgresPlatformRepository) GetByID(ctx context.Context, id int64) (*models.Platform, error) {
	query := fmt.Sprintf(`
		SELECT id, name, description, is_restricted, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Platforms)

	var p models.Platform
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.IsRestricted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{ResourceType: "platform", ResourceID: id}
		}
		return nil, fmt.Errorf("get platform: %w", err)
	}

	return &p, nil
}

// PostgresProjectRepository implements the ProjectRepository interface
type PostgresProjectRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(config *RepositoryConfig) repositories.ProjectRepository {
	return &PostgresProjectRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetByID retrieves a project by id
func (r *PostgresProjectRepository) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	query := fmt.Sprintf(`
		SELECT id, name, description, platform_id, is_restricted, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Projects)

	var p models.Project
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.PlatformID,
		&p.IsRestricted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{ResourceType: "project", ResourceID: id}
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	return &p, nil
}

// ListByPlatform lists all projects under a platform
func (r *PostgresProjectRepository) ListByPlatform(ctx context.Context, platformID int64) ([]models.Project, error) {
	query := fmt.Sprintf(`
		SELECT id, name, description, platform_id, is_restricted, created_at, updated_at
		FROM %s
		WHERE platform_id = $1
		ORDER BY name ASC
	`, r.tables.Projects)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, platformID)
	if err != nil {
		return nil, fmt.Errorf("list projects by platform: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.PlatformID,
			&p.IsRestricted,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	if projects == nil {
		projects = []models.Project{}
	}

	return projects, nil
}

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetByID retrieves a folder by id
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, name, project_id, parent_id, created_at
		FROM %s
		WHERE id = $1
	`, r.tables.Folders)

	var f models.Folder
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&f.ID,
		&f.Name,
		&f.ProjectID,
		&f.ParentID,
		&f.CreatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{ResourceType: "folder", ResourceID: id}
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &f, nil
}

// ListByParent lists folders under a parent (nil parent = project root)
func (r *PostgresFolderRepository) ListByParent(ctx context.Context, projectID int64, parentID *int64) ([]models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT id, name, project_id, parent_id, created_at
			FROM %s
			WHERE project_id = $1 AND parent_id IS NULL
			ORDER BY name ASC
		`, r.tables.Folders)
		args = []interface{}{projectID}
	} else {
		query = fmt.Sprintf(`
			SELECT id, name, project_id, parent_id, created_at
			FROM %s
			WHERE project_id = $1 AND parent_id = $2
			ORDER BY name ASC
		`, r.tables.Folders)
		args = []interface{}{projectID, *parentID}
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders by parent: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var f models.Folder
		err := rows.Scan(
			&f.ID,
			&f.Name,
			&f.ProjectID,
			&f.ParentID,
			&f.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	if folders == nil {
		folders = []models.Folder{}
	}

	return folders, nil
}
