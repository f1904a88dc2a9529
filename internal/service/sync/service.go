// Package sync orchestrates bidirectional synchronization between the
// central store and a user's local replica: download/merge, reverse push,
// and promotion of local-only entities. Operations are idempotent and
// individually retryable; nothing here spans both stores with a single
// transaction.
package sync

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"linguasync/internal/domain/models"
	"linguasync/internal/domain/repositories"
	"linguasync/internal/notify"
)

// RowSyncStats is the outcome of one file-level row sync.
type RowSyncStats struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Deleted  int `json:"deleted"`
	Pushed   int `json:"pushed"`
}

// TreeSyncStats accumulates over a folder, project, or platform subtree.
type TreeSyncStats struct {
	ProjectsSynced int `json:"projects_synced"`
	FoldersSynced  int `json:"folders_synced"`
	FilesSynced    int `json:"files_synced"`
	TotalRows      int `json:"total_rows"`
}

func (t *TreeSyncStats) add(other TreeSyncStats) {
	t.ProjectsSynced += other.ProjectsSynced
	t.FoldersSynced += other.FoldersSynced
	t.FilesSynced += other.FilesSynced
	t.TotalRows += other.TotalRows
}

// Config wires the service's collaborators.
type Config struct {
	Platforms repositories.PlatformRepository
	Projects  repositories.ProjectRepository
	Folders   repositories.FolderRepository
	Files     repositories.FileRepository
	Rows      repositories.RowRepository
	TMs       repositories.CentralTMRepository
	TMEntries repositories.TMEntryRepository
	Replica   repositories.ReplicaStore
	TxManager repositories.TransactionManager
	Notifier  repositories.Notifier
	Logger    *slog.Logger
}

// Service implements the sync operations. Each call opens its own store
// round trips; no state is shared between concurrent calls.
type Service struct {
	platforms repositories.PlatformRepository
	projects  repositories.ProjectRepository
	folders   repositories.FolderRepository
	files     repositories.FileRepository
	rows      repositories.RowRepository
	tms       repositories.CentralTMRepository
	tmEntries repositories.TMEntryRepository
	replica   repositories.ReplicaStore
	txManager repositories.TransactionManager
	notifier  repositories.Notifier
	logger    *slog.Logger
}

// NewService creates a sync service.
func NewService(cfg *Config) *Service {
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.Nop{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		platforms: cfg.Platforms,
		projects:  cfg.Projects,
		folders:   cfg.Folders,
		files:     cfg.Files,
		rows:      cfg.Rows,
		tms:       cfg.TMs,
		tmEntries: cfg.TMEntries,
		replica:   cfg.Replica,
		txManager: cfg.TxManager,
		notifier:  notifier,
		logger:    logger,
	}
}

func (s *Service) emit(operation string, phase models.EventPhase, message string) {
	s.notifier.Notify(models.SyncEvent{
		ID:        uuid.NewString(),
		Operation: operation,
		Phase:     phase,
		Message:   message,
		At:        time.Now().UTC(),
	})
}

// parseTimeText converts the replica's RFC3339 text timestamps back into
// time.Time; missing or malformed text yields the zero time.
func parseTimeText(s *string) time.Time {
	if s == nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return time.Time{}
	}
	return t
}
