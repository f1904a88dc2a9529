package repositories

import (
	"context"

	"linguasync/internal/domain/models"
)

// TMRepository is the read contract the maintenance manager consumes. It is
// identical whether backed by the central store or a local replica; the
// concrete implementation is chosen at construction time.
type TMRepository interface {
	// Get retrieves one TM
	Get(ctx context.Context, tmID int64) (*models.TranslationMemory, error)

	// GetAll lists every TM visible through this store
	GetAll(ctx context.Context) ([]models.TranslationMemory, error)

	// CountEntries returns the live entry count for a TM
	CountEntries(ctx context.Context, tmID int64) (int, error)
}

// CentralTMRepository adds the write half used by push and promotion.
type CentralTMRepository interface {
	TMRepository

	// Create inserts a new TM and fills in its assigned id
	Create(ctx context.Context, tm *models.TranslationMemory) error

	// UpdateEntryCount persists a freshly recomputed entry count
	UpdateEntryCount(ctx context.Context, tmID int64, count int) error
}
