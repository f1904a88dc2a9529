package models

import (
	"time"
)

// File belongs to exactly one project and at most one folder in that project.
type File struct {
	ID               int64     `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	OriginalFilename string    `json:"original_filename" db:"original_filename"`
	Format           string    `json:"format" db:"format"`
	RowCount         int       `json:"row_count" db:"row_count"`
	SourceLanguage   string    `json:"source_language" db:"source_language"`
	TargetLanguage   string    `json:"target_language" db:"target_language"`
	ProjectID        int64     `json:"project_id" db:"project_id"`
	FolderID         *int64    `json:"folder_id,omitempty" db:"folder_id"` // NULL = project root
	ExtraData        []byte    `json:"extra_data,omitempty" db:"extra_data"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
