package indexmeta

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeMetadata(t *testing.T, dir string, tmID int64, body string) {
	t.Helper()
	metaDir := filepath.Join(dir, fmt.Sprintf("tm_%d", tmID))
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(metaDir, "metadata.json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadMissingFileMeansNeverIndexed(t *testing.T) {
	r := NewReader(t.TempDir())

	meta, err := r.Read(99)
	if err != nil {
		t.Fatalf("Read() error = %v, want nil for missing file", err)
	}
	if meta != nil {
		t.Errorf("Read() = %+v, want nil", meta)
	}
}

func TestReadParsesSyncedAt(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, 7, `{"synced_at":"2025-05-01T10:00:00Z","entry_count":2400}`)

	r := NewReader(dir)
	meta, err := r.Read(7)
	if err != nil {
		t.Fatal(err)
	}
	if meta == nil {
		t.Fatal("Read() = nil, want metadata")
	}
	if meta.EntryCount != 2400 {
		t.Errorf("EntryCount = %d, want 2400", meta.EntryCount)
	}
	want := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	if got := meta.EffectiveTime(); got == nil || !got.Equal(want) {
		t.Errorf("EffectiveTime() = %v, want %v", got, want)
	}
}

func TestEffectiveTimeFallsBackToBuiltAt(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, 7, `{"built_at":"2024-12-31T23:59:59Z","entry_count":10}`)

	r := NewReader(dir)
	meta, err := r.Read(7)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC)
	if got := meta.EffectiveTime(); got == nil || !got.Equal(want) {
		t.Errorf("EffectiveTime() = %v, want %v", got, want)
	}
}

func TestReadRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	writeMetadata(t, dir, 7, `{not json`)

	r := NewReader(dir)
	if _, err := r.Read(7); err == nil {
		t.Error("Read() error = nil, want parse error")
	}
}
