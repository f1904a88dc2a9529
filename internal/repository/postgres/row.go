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

// PostgresRowRepository implements the RowRepository interface
type PostgresRowRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewRowRepository creates a new row repository
func NewRowRepository(config *RepositoryConfig) repositories.RowRepository {
	return &PostgresRowRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// ListByFile returns all rows of a file ordered by row_num
func (r *PostgresRowRepository) ListByFile(ctx context.Context, fileID int64) ([]models.Row, error) {
	query := fmt.Sprintf(`
		SELECT id, file_id, row_num, string_id, source, target, memo, status, extra_data, updated_at
		FROM %s
		WHERE file_id = $1
		ORDER BY row_num ASC
	`, r.tables.Rows)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, fileID)
	if err != nil {
		return nil, fmt.Errorf("list rows by file: %w", err)
	}
	defer rows.Close()

	var result []models.Row
	for rows.Next() {
		var row models.Row
		err := rows.Scan(
			&row.ID,
			&row.FileID,
			&row.RowNum,
			&row.StringID,
			&row.Source,
			&row.Target,
			&row.Memo,
			&row.Status,
			&row.ExtraData,
			&row.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	if result == nil {
		result = []models.Row{}
	}

	return result, nil
}

// UpdateTranslation writes back the editable fields of one row
func (r *PostgresRowRepository) UpdateTranslation(ctx context.Context, rowID int64, target, status, memo string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET target = $1, status = $2, memo = $3, updated_at = $4
		WHERE id = $5
	`, r.tables.Rows)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, target, status, memo, time.Now().UTC(), rowID)
	if err != nil {
		return fmt.Errorf("update row translation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.NotFoundError{ResourceType: "row", ResourceID: rowID}
	}

	return nil
}

// BulkInsert inserts rows for a file, preserving row_num order
func (r *PostgresRowRepository) BulkInsert(ctx context.Context, fileID int64, rows []models.Row) error {
	if len(rows) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (file_id, row_num, string_id, source, target, memo, status, extra_data, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.Rows)

	executor := GetExecutor(ctx, r.pool)
	for _, row := range rows {
		updatedAt := row.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now().UTC()
		}
		_, err := executor.Exec(ctx, query,
			fileID,
			row.RowNum,
			row.StringID,
			row.Source,
			row.Target,
			row.Memo,
			row.Status,
			row.ExtraData,
			updatedAt,
		)
		if err != nil {
			if IsPgDuplicateError(err) {
				return &domain.ConflictError{
					Message:      fmt.Sprintf("row %d already exists in file %d", row.RowNum, fileID),
					ResourceType: "row",
				}
			}
			return fmt.Errorf("insert row %d: %w", row.RowNum, err)
		}
	}

	return nil
}
