package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"linguasync/internal/domain/models"
	"linguasync/internal/domain/repositories"
)

// MergeRowsBatch merges incoming central rows against the replica's copies
// for one file, applying models.DecideMerge per row. Rows the policy keeps
// (dirty, locally newer) stay dirty so the push half can send them up.
func (s *Store) MergeRowsBatch(ctx context.Context, rows []models.ReplicaRow, fileServerID int64) (repositories.MergeStats, error) {
	var stats repositories.MergeStats

	fileLocalID, err := s.fileLocalID(ctx, fileServerID)
	if err != nil {
		return stats, err
	}

	existing, err := s.rowsByServerID(ctx, fileLocalID)
	if err != nil {
		return stats, err
	}

	for _, incoming := range rows {
		serverID, ok := incoming.Ref.ServerID()
		if !ok {
			// Central rows always carry their own id; skip malformed input.
			stats.Skipped++
			continue
		}

		local := existing[serverID]
		switch models.DecideMerge(local, incoming) {
		case models.MergeInsert:
			if err := s.insertRow(ctx, fileLocalID, incoming); err != nil {
				return stats, err
			}
			stats.Inserted++
		case models.MergeOverwrite:
			if err := s.overwriteRow(ctx, local.LocalID, incoming); err != nil {
				return stats, err
			}
			stats.Updated++
		case models.MergeSkip, models.MergeKeepLocal:
			stats.Skipped++
		}
	}

	return stats, nil
}

func (s *Store) rowsByServerID(ctx context.Context, fileLocalID int64) (map[int64]*models.ReplicaRow, error) {
	rows, err := s.queryRows(ctx, sq.Eq{"file_local_id": fileLocalID})
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*models.ReplicaRow, len(rows))
	for i := range rows {
		if id, ok := rows[i].Ref.ServerID(); ok {
			out[id] = &rows[i]
		}
	}
	return out, nil
}

func (s *Store) insertRow(ctx context.Context, fileLocalID int64, r models.ReplicaRow) error {
	q := s.sq.Insert("rows").
		Columns("server_id", "file_local_id", "row_num", "string_id", "source", "target",
			"memo", "status", "extra_data", "updated_at", "dirty", "synced_at").
		Values(refValue(r.Ref), fileLocalID, r.RowNum, r.StringID, r.Source, r.Target,
			r.Memo, r.Status, r.ExtraData, r.UpdatedAt, 0, nowText())
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert row: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert row: %w", err)
	}
	return nil
}

// overwriteRow replaces the local copy with the central version and clears
// the dirty flag; a discarded local edit is not recoverable here.
func (s *Store) overwriteRow(ctx context.Context, localID int64, r models.ReplicaRow) error {
	q := s.sq.Update("rows").
		Set("row_num", r.RowNum).
		Set("string_id", r.StringID).
		Set("source", r.Source).
		Set("target", r.Target).
		Set("memo", r.Memo).
		Set("status", r.Status).
		Set("extra_data", r.ExtraData).
		Set("updated_at", r.UpdatedAt).
		Set("dirty", 0).
		Set("synced_at", nowText()).
		Where(sq.Eq{"local_id": localID})
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build overwrite row: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("overwrite row: %w", err)
	}
	return nil
}

// LocalRowServerIDs returns the server ids present locally for a file.
func (s *Store) LocalRowServerIDs(ctx context.Context, fileServerID int64) (map[int64]struct{}, error) {
	fileLocalID, err := s.fileLocalID(ctx, fileServerID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT server_id FROM rows WHERE file_local_id = ? AND server_id IS NOT NULL`, fileLocalID)
	if err != nil {
		return nil, fmt.Errorf("list local row server ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan server id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate server ids: %w", err)
	}
	return ids, nil
}

// DeleteRowByServerID removes a replica row whose central counterpart is gone.
func (s *Store) DeleteRowByServerID(ctx context.Context, serverID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM rows WHERE server_id = ?`, serverID); err != nil {
		return fmt.Errorf("delete row by server id: %w", err)
	}
	return nil
}

// ModifiedRows returns dirty rows for a file.
func (s *Store) ModifiedRows(ctx context.Context, fileServerID int64) ([]models.ReplicaRow, error) {
	fileLocalID, err := s.fileLocalID(ctx, fileServerID)
	if err != nil {
		return nil, err
	}
	return s.queryRows(ctx, sq.Eq{"file_local_id": fileLocalID, "dirty": 1})
}

// MarkRowSynced clears the dirty flag after a successful central commit.
func (s *Store) MarkRowSynced(ctx context.Context, localID int64) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE rows SET dirty = 0, synced_at = ? WHERE local_id = ?`, nowText(), localID); err != nil {
		return fmt.Errorf("mark row synced: %w", err)
	}
	return nil
}

// RowsForFile returns all rows of a local file ordered by row_num, used by
// promotion.
func (s *Store) RowsForFile(ctx context.Context, fileLocalID int64) ([]models.ReplicaRow, error) {
	return s.queryRows(ctx, sq.Eq{"file_local_id": fileLocalID})
}

func (s *Store) queryRows(ctx context.Context, pred interface{}) ([]models.ReplicaRow, error) {
	q := s.sq.Select("local_id", "server_id", "row_num", "string_id", "source", "target",
		"memo", "status", "extra_data", "updated_at", "dirty", "synced_at").
		From("rows").
		Where(pred).
		OrderBy("row_num ASC")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build row query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	var out []models.ReplicaRow
	for rows.Next() {
		var r models.ReplicaRow
		var serverID sql.NullInt64
		var extraData []byte
		var updatedAt, syncedAt sql.NullString
		if err := rows.Scan(&r.LocalID, &serverID, &r.RowNum, &r.StringID, &r.Source,
			&r.Target, &r.Memo, &r.Status, &extraData, &updatedAt, &r.Dirty, &syncedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Ref = refFromNull(serverID)
		r.ExtraData = extraData
		r.UpdatedAt = textPtr(updatedAt)
		r.SyncedAt = textPtr(syncedAt)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}
