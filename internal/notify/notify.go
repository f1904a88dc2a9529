// Package notify provides Notifier implementations for the sync core's
// fire-and-forget operation events.
package notify

import (
	"log/slog"

	"linguasync/internal/domain/models"
	"linguasync/internal/domain/repositories"
)

// Nop discards every event. Used in tests and in callers that bring their
// own progress reporting.
type Nop struct{}

func (Nop) Notify(models.SyncEvent) {}

// Slog logs events through a structured logger, for headless runs where no
// real-time transport is attached.
type Slog struct {
	Logger *slog.Logger
}

func NewSlog(logger *slog.Logger) *Slog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slog{Logger: logger}
}

func (s *Slog) Notify(event models.SyncEvent) {
	s.Logger.Info("sync event",
		"event_id", event.ID,
		"operation", event.Operation,
		"phase", string(event.Phase),
		"message", event.Message,
	)
}

var (
	_ repositories.Notifier = Nop{}
	_ repositories.Notifier = (*Slog)(nil)
)
