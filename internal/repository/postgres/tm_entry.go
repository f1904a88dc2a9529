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

// PostgresTMEntryRepository implements the TMEntryRepository interface
type PostgresTMEntryRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewTMEntryRepository creates a new TM entry repository
func NewTMEntryRepository(config *RepositoryConfig) repositories.TMEntryRepository {
	return &PostgresTMEntryRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// ListByTM returns all entries of a TM
func (r *PostgresTMEntryRepository) ListByTM(ctx context.Context, tmID int64) ([]models.TMEntry, error) {
	query := fmt.Sprintf(`
		SELECT id, tm_id, source_text, target_text, source_hash,
		       created_at, updated_at, created_by, change_date
		FROM %s
		WHERE tm_id = $1
		ORDER BY id ASC
	`, r.tables.TMEntries)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, tmID)
	if err != nil {
		return nil, fmt.Errorf("list tm entries: %w", err)
	}
	defer rows.Close()

	var entries []models.TMEntry
	for rows.Next() {
		var e models.TMEntry
		err := rows.Scan(
			&e.ID,
			&e.TMID,
			&e.SourceText,
			&e.TargetText,
			&e.SourceHash,
			&e.CreatedAt,
			&e.UpdatedAt,
			&e.CreatedBy,
			&e.ChangeDate,
		)
		if err != nil {
			return nil, fmt.Errorf("scan tm entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tm entries: %w", err)
	}

	if entries == nil {
		entries = []models.TMEntry{}
	}

	return entries, nil
}

// UpdateTranslation writes back the target text of one entry
func (r *PostgresTMEntryRepository) UpdateTranslation(ctx context.Context, entryID int64, target string) error {
	now := time.Now().UTC()
	query := fmt.Sprintf(`
		UPDATE %s
		SET target_text = $1, updated_at = $2, change_date = $2
		WHERE id = $3
	`, r.tables.TMEntries)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, target, now, entryID)
	if err != nil {
		return fmt.Errorf("update tm entry: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{ResourceType: "tm_entry", ResourceID: entryID}
	}

	return nil
}

// Insert inserts a single entry and fills in its assigned id
func (r *PostgresTMEntryRepository) Insert(ctx context.Context, entry *models.TMEntry) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (tm_id, source_text, target_text, source_hash,
		                created_at, updated_at, created_by, change_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.TMEntries)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		entry.TMID,
		entry.SourceText,
		entry.TargetText,
		entry.SourceHash,
		entry.CreatedAt,
		entry.UpdatedAt,
		entry.CreatedBy,
		entry.ChangeDate,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return &domain.NotFoundError{ResourceType: "tm", ResourceID: entry.TMID}
		}
		return fmt.Errorf("insert tm entry: %w", err)
	}

	return nil
}

// BulkInsert inserts entries for a TM
func (r *PostgresTMEntryRepository) BulkInsert(ctx context.Context, tmID int64, entries []models.TMEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (tm_id, source_text, target_text, source_hash,
		                created_at, updated_at, created_by, change_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, r.tables.TMEntries)

	executor := GetExecutor(ctx, r.pool)
	for i, entry := range entries {
		_, err := executor.Exec(ctx, query,
			tmID,
			entry.SourceText,
			entry.TargetText,
			entry.SourceHash,
			entry.CreatedAt,
			entry.UpdatedAt,
			entry.CreatedBy,
			entry.ChangeDate,
		)
		if err != nil {
			if IsPgForeignKeyError(err) {
				return &domain.NotFoundError{ResourceType: "tm", ResourceID: tmID}
			}
			return fmt.Errorf("insert tm entry %d: %w", i, err)
		}
	}

	return nil
}
