package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"linguasync/internal/domain"
	"linguasync/internal/domain/models"
	"linguasync/internal/domain/repositories"
)

// TMRepo exposes the replica's TMs through the same read contract the
// central store offers, so the maintenance manager can be pointed at either
// store at construction time.
type TMRepo struct {
	db *sql.DB
}

// NewTMRepo creates a replica-backed TM repository.
func NewTMRepo(db *sql.DB) repositories.TMRepository {
	return &TMRepo{db: db}
}

// Get retrieves one TM by its server id.
func (r *TMRepo) Get(ctx context.Context, tmID int64) (*models.TranslationMemory, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT server_id, name, description, owner_id, source_lang, target_lang,
               entry_count, status, created_at, updated_at
        FROM tms WHERE server_id = ?`, tmID)

	tm, err := scanTM(row)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{ResourceType: "tm", ResourceID: tmID}
	}
	if err != nil {
		return nil, fmt.Errorf("get tm: %w", err)
	}
	return tm, nil
}

// GetAll lists every synced TM in the replica.
func (r *TMRepo) GetAll(ctx context.Context) ([]models.TranslationMemory, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT server_id, name, description, owner_id, source_lang, target_lang,
               entry_count, status, created_at, updated_at
        FROM tms WHERE server_id IS NOT NULL ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tms: %w", err)
	}
	defer rows.Close()

	var tms []models.TranslationMemory
	for rows.Next() {
		tm, err := scanTM(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tm: %w", err)
		}
		tms = append(tms, *tm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tms: %w", err)
	}
	if tms == nil {
		tms = []models.TranslationMemory{}
	}
	return tms, nil
}

// CountEntries returns the live entry count for a TM identified by server id.
func (r *TMRepo) CountEntries(ctx context.Context, tmID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
        SELECT COUNT(*) FROM tm_entries e
        JOIN tms t ON t.local_id = e.tm_local_id
        WHERE t.server_id = ?`, tmID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tm entries: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTM(s rowScanner) (*models.TranslationMemory, error) {
	var tm models.TranslationMemory
	var description, createdAt, updatedAt sql.NullString
	err := s.Scan(&tm.ID, &tm.Name, &description, &tm.OwnerID, &tm.SourceLang,
		&tm.TargetLang, &tm.EntryCount, &tm.Status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		tm.Description = &description.String
	}
	tm.CreatedAt = parseTimeText(createdAt)
	tm.UpdatedAt = parseTimeText(updatedAt)
	return &tm, nil
}

func parseTimeText(n sql.NullString) time.Time {
	if !n.Valid {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, n.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
