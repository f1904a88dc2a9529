// Package indexmeta reads the per-TM index metadata files the external
// index builder maintains. This package never writes them: the metadata is
// the builder's record of what it last indexed, and the staleness detector
// only compares it against the central store.
package indexmeta

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Metadata mirrors one metadata.json. Older builders wrote built_at instead
// of synced_at; EffectiveTime papers over the difference.
type Metadata struct {
	SyncedAt   *time.Time `json:"synced_at,omitempty"`
	BuiltAt    *time.Time `json:"built_at,omitempty"`
	EntryCount int        `json:"entry_count"`
}

// EffectiveTime returns the last index time, preferring synced_at.
func (m *Metadata) EffectiveTime() *time.Time {
	if m.SyncedAt != nil {
		return m.SyncedAt
	}
	return m.BuiltAt
}

// Reader resolves and reads metadata files under a base directory, one
// subdirectory per TM.
type Reader struct {
	baseDir string
}

// NewReader creates a reader rooted at baseDir.
func NewReader(baseDir string) *Reader {
	return &Reader{baseDir: baseDir}
}

// Path returns the metadata file location for a TM.
func (r *Reader) Path(tmID int64) string {
	return filepath.Join(r.baseDir, fmt.Sprintf("tm_%d", tmID), "metadata.json")
}

// Read loads a TM's index metadata. A missing file is not an error: it
// returns (nil, nil), meaning the TM has never been indexed.
func (r *Reader) Read(tmID int64) (*Metadata, error) {
	data, err := os.ReadFile(r.Path(tmID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index metadata for tm %d: %w", tmID, err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse index metadata for tm %d: %w", tmID, err)
	}
	return &meta, nil
}
