package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// TM status values. A freshly promoted TM starts as pending until the
// indexing collaborator builds its search index.
const (
	TMStatusPending = "pending"
	TMStatusActive  = "active"
)

type TranslationMemory struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	OwnerID     int64     `json:"owner_id" db:"owner_id"`
	SourceLang  string    `json:"source_lang" db:"source_lang"`
	TargetLang  string    `json:"target_lang" db:"target_lang"`
	EntryCount  int       `json:"entry_count" db:"entry_count"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type TMEntry struct {
	ID         int64      `json:"id" db:"id"`
	TMID       int64      `json:"tm_id" db:"tm_id"`
	SourceText string     `json:"source_text" db:"source_text"`
	TargetText string     `json:"target_text" db:"target_text"`
	SourceHash string     `json:"source_hash" db:"source_hash"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
	CreatedBy  int64      `json:"created_by" db:"created_by"`
	ChangeDate *time.Time `json:"change_date,omitempty" db:"change_date"`
}

// HashSourceText computes the content hash used by the index builder for
// exact-match lookup. Whitespace is trimmed so editor padding doesn't split
// otherwise identical segments.
func HashSourceText(source string) string {
	h := sha256.Sum256([]byte(strings.TrimSpace(source)))
	return hex.EncodeToString(h[:])
}
