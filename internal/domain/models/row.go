package models

import (
	"time"
)

// Row status values used by editors; the sync core treats status as opaque text.
const (
	RowStatusUntranslated = "untranslated"
	RowStatusTranslated   = "translated"
	RowStatusReviewed     = "reviewed"
)

// Row is a single translatable line owned by exactly one file.
// RowNum is unique within a file and defines display order.
type Row struct {
	ID        int64     `json:"id" db:"id"`
	FileID    int64     `json:"file_id" db:"file_id"`
	RowNum    int       `json:"row_num" db:"row_num"`
	StringID  string    `json:"string_id" db:"string_id"`
	Source    string    `json:"source" db:"source"`
	Target    string    `json:"target" db:"target"`
	Memo      string    `json:"memo" db:"memo"`
	Status    string    `json:"status" db:"status"`
	ExtraData []byte    `json:"extra_data,omitempty" db:"extra_data"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
