package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"linguasync/internal/domain"
	"linguasync/internal/domain/models"
)

// SaveTM upserts a TM by server id and returns its local id.
func (s *Store) SaveTM(ctx context.Context, tm models.ReplicaTM) (int64, error) {
	q := s.sq.Insert("tms").
		Columns("server_id", "name", "description", "owner_id", "source_lang", "target_lang",
			"entry_count", "status", "created_at", "updated_at", "synced_at").
		Values(refValue(tm.Ref), tm.Name, tm.Description, tm.OwnerID, tm.SourceLang,
			tm.TargetLang, tm.EntryCount, tm.Status, tm.CreatedAt, tm.UpdatedAt, nowText()).
		Suffix(`ON CONFLICT(server_id) DO UPDATE SET
            name=excluded.name, description=excluded.description, owner_id=excluded.owner_id,
            source_lang=excluded.source_lang, target_lang=excluded.target_lang,
            entry_count=excluded.entry_count, status=excluded.status,
            created_at=excluded.created_at, updated_at=excluded.updated_at,
            synced_at=excluded.synced_at`)
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build save tm: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return 0, fmt.Errorf("save tm: %w", err)
	}

	var localID int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT local_id FROM tms WHERE server_id = ?`, refValue(tm.Ref)).Scan(&localID); err != nil {
		return 0, fmt.Errorf("resolve local tm id: %w", err)
	}
	return localID, nil
}

// MergeTMEntry upserts one entry. Dirty local entries are left alone so
// offline edits survive a download; the push half reconciles them later.
func (s *Store) MergeTMEntry(ctx context.Context, entry models.ReplicaTMEntry) error {
	serverID, synced := entry.Ref.ServerID()
	if synced {
		var localID int64
		var dirty bool
		err := s.db.QueryRowContext(ctx,
			`SELECT local_id, dirty FROM tm_entries WHERE server_id = ?`, serverID).
			Scan(&localID, &dirty)
		if err == nil {
			if dirty {
				return nil
			}
			q := s.sq.Update("tm_entries").
				Set("source_text", entry.SourceText).
				Set("target_text", entry.TargetText).
				Set("source_hash", entry.SourceHash).
				Set("updated_at", entry.UpdatedAt).
				Set("synced_at", nowText()).
				Where(sq.Eq{"local_id": localID})
			sqlStr, args, qerr := q.ToSql()
			if qerr != nil {
				return fmt.Errorf("build update tm entry: %w", qerr)
			}
			if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
				return fmt.Errorf("update tm entry: %w", err)
			}
			return nil
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("lookup tm entry: %w", err)
		}
	}

	q := s.sq.Insert("tm_entries").
		Columns("server_id", "tm_local_id", "source_text", "target_text", "source_hash",
			"created_at", "updated_at", "dirty", "synced_at").
		Values(refValue(entry.Ref), entry.TMLocalID, entry.SourceText, entry.TargetText,
			entry.SourceHash, entry.CreatedAt, entry.UpdatedAt, boolToInt(entry.Dirty), nowText())
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert tm entry: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert tm entry: %w", err)
	}
	return nil
}

// ModifiedTMEntries returns dirty entries for a local TM.
func (s *Store) ModifiedTMEntries(ctx context.Context, tmLocalID int64) ([]models.ReplicaTMEntry, error) {
	return s.queryTMEntries(ctx, sq.Eq{"tm_local_id": tmLocalID, "dirty": 1})
}

// MarkTMEntrySynced clears the dirty flag after a successful central commit.
func (s *Store) MarkTMEntrySynced(ctx context.Context, localID int64) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE tm_entries SET dirty = 0, synced_at = ? WHERE local_id = ?`, nowText(), localID); err != nil {
		return fmt.Errorf("mark tm entry synced: %w", err)
	}
	return nil
}

// LocalTM returns a local TM by its local id.
func (s *Store) LocalTM(ctx context.Context, localID int64) (*models.ReplicaTM, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT local_id, server_id, name, description, owner_id, source_lang, target_lang,
               entry_count, status, created_at, updated_at, synced_at
        FROM tms WHERE local_id = ?`, localID)

	var tm models.ReplicaTM
	var serverID sql.NullInt64
	var description, createdAt, updatedAt, syncedAt sql.NullString
	err := row.Scan(&tm.LocalID, &serverID, &tm.Name, &description, &tm.OwnerID,
		&tm.SourceLang, &tm.TargetLang, &tm.EntryCount, &tm.Status,
		&createdAt, &updatedAt, &syncedAt)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{ResourceType: "tm", ResourceID: localID}
	}
	if err != nil {
		return nil, fmt.Errorf("get local tm: %w", err)
	}

	tm.Ref = refFromNull(serverID)
	tm.Description = textPtr(description)
	tm.CreatedAt = textPtr(createdAt)
	tm.UpdatedAt = textPtr(updatedAt)
	tm.SyncedAt = textPtr(syncedAt)
	return &tm, nil
}

// TMEntriesForTM returns all entries of a local TM, used by promotion.
func (s *Store) TMEntriesForTM(ctx context.Context, tmLocalID int64) ([]models.ReplicaTMEntry, error) {
	return s.queryTMEntries(ctx, sq.Eq{"tm_local_id": tmLocalID})
}

func (s *Store) queryTMEntries(ctx context.Context, pred interface{}) ([]models.ReplicaTMEntry, error) {
	q := s.sq.Select("local_id", "server_id", "tm_local_id", "source_text", "target_text",
		"source_hash", "created_at", "updated_at", "dirty", "synced_at").
		From("tm_entries").
		Where(pred).
		OrderBy("local_id ASC")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build tm entry query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query tm entries: %w", err)
	}
	defer rows.Close()

	var out []models.ReplicaTMEntry
	for rows.Next() {
		var e models.ReplicaTMEntry
		var serverID sql.NullInt64
		var createdAt, updatedAt, syncedAt sql.NullString
		if err := rows.Scan(&e.LocalID, &serverID, &e.TMLocalID, &e.SourceText, &e.TargetText,
			&e.SourceHash, &createdAt, &updatedAt, &e.Dirty, &syncedAt); err != nil {
			return nil, fmt.Errorf("scan tm entry: %w", err)
		}
		e.Ref = refFromNull(serverID)
		e.CreatedAt = textPtr(createdAt)
		e.UpdatedAt = textPtr(updatedAt)
		e.SyncedAt = textPtr(syncedAt)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tm entries: %w", err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
