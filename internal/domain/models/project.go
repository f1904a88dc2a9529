package models

import (
	"time"
)

type Project struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Description  *string   `json:"description,omitempty" db:"description"`
	PlatformID   int64     `json:"platform_id" db:"platform_id"`
	IsRestricted bool      `json:"is_restricted" db:"is_restricted"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
