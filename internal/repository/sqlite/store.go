// Package sqlite implements the local replica store over an embedded
// single-user database. All saves are idempotent upserts keyed by server id,
// which is what makes every sync step safely re-runnable.
package sqlite

import (
	"database/sql"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"linguasync/internal/domain/models"
	"linguasync/internal/domain/repositories"
)

// Store implements repositories.ReplicaStore.
type Store struct {
	db     *sql.DB
	sq     sq.StatementBuilderType
	logger *slog.Logger
}

// NewStore wraps an initialized replica database.
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		sq:     sq.StatementBuilder.PlaceholderFormat(sq.Question),
		logger: logger,
	}
}

var _ repositories.ReplicaStore = (*Store)(nil)

func nowText() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// refValue converts a ServerRef to a nullable column value.
func refValue(r models.ServerRef) interface{} {
	if id, ok := r.ServerID(); ok {
		return id
	}
	return nil
}

// refFromNull rebuilds a ServerRef from a nullable server_id column.
func refFromNull(n sql.NullInt64) models.ServerRef {
	if n.Valid {
		return models.SyncedRef(n.Int64)
	}
	return models.UnsyncedRef()
}

func textPtr(n sql.NullString) *string {
	if n.Valid {
		return &n.String
	}
	return nil
}

func int64Ptr(n sql.NullInt64) *int64 {
	if n.Valid {
		return &n.Int64
	}
	return nil
}
