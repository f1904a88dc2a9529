package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"linguasync/internal/domain/models"
	"linguasync/internal/domain/repositories"
	"linguasync/internal/notify"
)

// Manager is the public entry point for TM index maintenance, invoked at
// login. It composes the staleness detector, the shared sync queue, and the
// external re-indexing collaborator.
type Manager struct {
	detector *StalenessDetector
	queue    *SyncQueue
	indexer  repositories.Indexer
	notifier repositories.Notifier
	logger   *slog.Logger
}

// ManagerConfig wires the manager's collaborators. Queue is shared by
// reference across all manager instances in the process.
type ManagerConfig struct {
	Detector *StalenessDetector
	Queue    *SyncQueue
	Indexer  repositories.Indexer
	Notifier repositories.Notifier
	Logger   *slog.Logger
}

// NewManager creates a maintenance manager.
func NewManager(cfg *ManagerConfig) *Manager {
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.Nop{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		detector: cfg.Detector,
		queue:    cfg.Queue,
		indexer:  cfg.Indexer,
		notifier: notifier,
		logger:   logger,
	}
}

// OnUserLogin classifies the user's TMs (all of them, or the explicit subset
// given) and, unless autoQueue is false, enqueues every stale or
// never-indexed one at background priority.
//
// This must never block or fail a login: any internal fault - detector
// errors, metadata corruption, even a panic - is logged and reported as zero
// stale TMs.
func (m *Manager) OnUserLogin(ctx context.Context, userID int64, autoQueue bool, tmIDs ...int64) (stale []models.StaleTMInfo) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("maintenance check panicked", "user_id", userID, "panic", r)
			stale = nil
		}
	}()

	found, err := m.detector.FindStaleTMs(ctx, tmIDs...)
	if err != nil {
		m.logger.Warn("maintenance check failed, continuing login",
			"user_id", userID, "error", err)
		return nil
	}

	if autoQueue {
		for _, info := range found {
			queued := m.QueueBackgroundSync(info.TMID, userID,
				fmt.Sprintf("login check: %s", info.Status), models.PriorityBackground)
			if queued {
				m.logger.Info("queued tm for background re-index",
					"tm_id", info.TMID,
					"tm_name", info.TMName,
					"status", string(info.Status),
					"pending_changes", info.PendingChanges,
				)
			}
		}
	}

	return found
}

// QueueBackgroundSync requests a re-index for one TM. Returns false without
// error when the TM is already queued or in progress.
func (m *Manager) QueueBackgroundSync(tmID, userID int64, reason string, priority int) bool {
	return m.queue.Enqueue(models.SyncQueueItem{
		TMID:     tmID,
		UserID:   userID,
		Priority: priority,
		QueuedAt: time.Now().UTC(),
		Reason:   reason,
	})
}

// BackgroundSync runs the re-index for one TM. The tm_id is held in the
// in-progress set for the duration, blocking duplicate admission; on
// completion it leaves both the in-progress set and the queue regardless of
// outcome, so a failed TM can be re-queued and forward progress is
// guaranteed. No internal timeout is applied - cancel ctx to bound a hung
// indexer.
func (m *Manager) BackgroundSync(ctx context.Context, tmID int64) error {
	if !m.queue.MarkInProgress(tmID) {
		m.logger.Debug("tm already being re-indexed", "tm_id", tmID)
		return nil
	}
	defer m.queue.Done(tmID)

	m.emit("reindex_tm", models.EventStarted, fmt.Sprintf("tm %d", tmID))

	stats, err := m.indexer.SyncIndex(ctx, tmID)
	if err != nil {
		m.logger.Error("tm re-index failed", "tm_id", tmID, "error", err)
		m.emit("reindex_tm", models.EventFailed, err.Error())
		return fmt.Errorf("re-index tm %d: %w", tmID, err)
	}

	m.logger.Info("tm re-indexed",
		"tm_id", tmID,
		"inserted", stats.Inserted,
		"updated", stats.Updated,
	)
	m.emit("reindex_tm", models.EventCompleted, fmt.Sprintf("tm %d", tmID))
	return nil
}

// RunPending drains the queue, servicing jobs one at a time in priority
// order. The caller owns scheduling; this is a convenience for CLI and
// worker loops.
func (m *Manager) RunPending(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		item, ok := m.queue.Pop()
		if !ok {
			return nil
		}
		if err := m.BackgroundSync(ctx, item.TMID); err != nil {
			return err
		}
	}
}

func (m *Manager) emit(operation string, phase models.EventPhase, message string) {
	m.notifier.Notify(models.SyncEvent{
		ID:        uuid.NewString(),
		Operation: operation,
		Phase:     phase,
		Message:   message,
		At:        time.Now().UTC(),
	})
}
