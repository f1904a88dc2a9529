package models

import (
	"time"
)

// Folder is a self-referencing tree node scoped to a single project.
// ParentID, when set, always references a folder in the same project.
type Folder struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ProjectID int64     `json:"project_id" db:"project_id"`
	ParentID  *int64    `json:"parent_id,omitempty" db:"parent_id"` // NULL = root level
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
