package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"linguasync/internal/domain"
	"linguasync/internal/domain/models"
	"linguasync/internal/domain/repositories"
)

// PostgresTMRepository implements the CentralTMRepository interface
type PostgresTMRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewTMRepository creates a new TM repository
func NewTMRepository(config *RepositoryConfig) repositories.CentralTMRepository {
	return &PostgresTMRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Get retrieves one TM
func (r *PostgresTMRepository) Get(ctx context.Context, tmID int64) (*models.TranslationMemory, error) {
	query := fmt.Sprintf(`
		SELECT id, name, description, owner_id, source_lang, target_lang,
		       entry_count, status, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.TMs)

	var tm models.TranslationMemory
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, tmID).Scan(
		&tm.ID,
		&tm.Name,
		&tm.Description,
		&tm.OwnerID,
		&tm.SourceLang,
		&tm.TargetLang,
		&tm.EntryCount,
		&tm.Status,
		&tm.CreatedAt,
		&tm.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{ResourceType: "tm", ResourceID: tmID}
		}
		return nil, fmt.Errorf("get tm: %w", err)
	}

	return &tm, nil
}

// GetAll lists every TM in the central store
func (r *PostgresTMRepository) GetAll(ctx context.Context) ([]models.TranslationMemory, error) {
	query := fmt.Sprintf(`
		SELECT id, name, description, owner_id, source_lang, target_lang,
		       entry_count, status, created_at, updated_at
		FROM %s
		ORDER BY name ASC
	`, r.tables.TMs)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tms: %w", err)
	}
	defer rows.Close()

	var tms []models.TranslationMemory
	for rows.Next() {
		var tm models.TranslationMemory
		err := rows.Scan(
			&tm.ID,
			&tm.Name,
			&tm.Description,
			&tm.OwnerID,
			&tm.SourceLang,
			&tm.TargetLang,
			&tm.EntryCount,
			&tm.Status,
			&tm.CreatedAt,
			&tm.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan tm: %w", err)
		}
		tms = append(tms, tm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tms: %w", err)
	}

	if tms == nil {
		tms = []models.TranslationMemory{}
	}

	return tms, nil
}

// CountEntries returns the live entry count for a TM
func (r *PostgresTMRepository) CountEntries(ctx context.Context, tmID int64) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE tm_id = $1`, r.tables.TMEntries)

	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, tmID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tm entries: %w", err)
	}

	return count, nil
}

// Create inserts a new TM and fills in its assigned id
func (r *PostgresTMRepository) Create(ctx context.Context, tm *models.TranslationMemory) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, description, owner_id, source_lang, target_lang,
		                entry_count, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, r.tables.TMs)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		tm.Name,
		tm.Description,
		tm.OwnerID,
		tm.SourceLang,
		tm.TargetLang,
		tm.EntryCount,
		tm.Status,
		tm.CreatedAt,
		tm.UpdatedAt,
	).Scan(&tm.ID, &tm.CreatedAt, &tm.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("tm %q already exists", tm.Name),
				ResourceType: "tm",
			}
		}
		return fmt.Errorf("create tm: %w", err)
	}

	return nil
}

// UpdateEntryCount persists a freshly recomputed entry count
func (r *PostgresTMRepository) UpdateEntryCount(ctx context.Context, tmID int64, count int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET entry_count = $1, updated_at = $2
		WHERE id = $3
	`, r.tables.TMs)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, count, time.Now().UTC(), tmID)
	if err != nil {
		return fmt.Errorf("update tm entry count: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{ResourceType: "tm", ResourceID: tmID}
	}

	return nil
}
