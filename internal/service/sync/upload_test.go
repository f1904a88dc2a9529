package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"linguasync/internal/domain"
	"linguasync/internal/domain/models"
	"linguasync/internal/mapper"
)

func TestPushFileChangesToServer_SkipsUnsyncedRows(t *testing.T) {
	central := newFakeCentral()
	seedHierarchy(central)
	replica := newFakeReplica()
	replica.files[10] = models.ReplicaFile{Ref: models.SyncedRef(10), Name: "dialog.xlsx"}
	replica.rows[10] = []*models.ReplicaRow{
		{LocalID: 1, Ref: models.SyncedRef(101), Target: "Bonjour", Status: models.RowStatusTranslated, Dirty: true},
		{LocalID: 2, Ref: models.UnsyncedRef(), Target: "local only", Dirty: true},
	}
	svc := newTestService(central, replica)

	pushed, err := svc.PushFileChangesToServer(context.Background(), 10)
	if err != nil {
		t.Fatalf("PushFileChangesToServer() error = %v", err)
	}
	if pushed != 1 {
		t.Errorf("pushed = %d, want 1", pushed)
	}
	if central.rowUpdates[101] != 1 {
		t.Errorf("central row 101 updated %d times, want 1", central.rowUpdates[101])
	}
	if !replica.rows[10][1].Dirty {
		t.Error("unsynced row must stay dirty until promoted")
	}
	if replica.rows[10][0].Dirty {
		t.Error("pushed row should be clean")
	}
}

func TestPushFileChangesToServer_KeepsDirtyOnFailure(t *testing.T) {
	central := newFakeCentral()
	seedHierarchy(central)
	replica := newFakeReplica()
	replica.files[10] = models.ReplicaFile{Ref: models.SyncedRef(10)}
	// Server id 999 has no central counterpart, so the update fails.
	replica.rows[10] = []*models.ReplicaRow{
		{LocalID: 1, Ref: models.SyncedRef(999), Target: "orphan", Dirty: true},
	}
	svc := newTestService(central, replica)

	pushed, err := svc.PushFileChangesToServer(context.Background(), 10)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if pushed != 0 {
		t.Errorf("pushed = %d, want 0", pushed)
	}
	if !replica.rows[10][0].Dirty {
		t.Error("row must stay dirty when the central write fails")
	}
}

func TestPushTMChangesToServer(t *testing.T) {
	central := newFakeCentral()
	central.tms[50] = models.TranslationMemory{ID: 50, Name: "legal", OwnerID: 7, EntryCount: 1}
	central.tmEntries[50] = []models.TMEntry{
		{ID: 500, TMID: 50, SourceText: "contract", TargetText: "contrat"},
	}
	replica := newFakeReplica()
	replica.tms[1] = &models.ReplicaTM{LocalID: 1, Ref: models.SyncedRef(50), Name: "legal"}
	replica.tmEntries[1] = []*models.ReplicaTMEntry{
		{LocalID: 1, Ref: models.SyncedRef(500), TMLocalID: 1, SourceText: "contract", TargetText: "contrat signé", Dirty: true},
		{LocalID: 2, Ref: models.UnsyncedRef(), TMLocalID: 1, SourceText: "clause", TargetText: "clause", Dirty: true},
	}
	svc := newTestService(central, replica)

	pushed, err := svc.PushTMChangesToServer(context.Background(), 1, 50)
	if err != nil {
		t.Fatalf("PushTMChangesToServer() error = %v", err)
	}
	if pushed != 2 {
		t.Errorf("pushed = %d, want 2", pushed)
	}

	if got := central.tmEntries[50][0].TargetText; got != "contrat signé" {
		t.Errorf("central entry 500 target = %q, want %q", got, "contrat signé")
	}
	if len(central.tmEntries[50]) != 2 {
		t.Fatalf("central has %d entries, want 2 (implicit promotion)", len(central.tmEntries[50]))
	}
	inserted := central.tmEntries[50][1]
	if inserted.SourceHash != models.HashSourceText("clause") {
		t.Errorf("inserted entry hash = %q, want content hash of source", inserted.SourceHash)
	}
	if inserted.CreatedBy != 7 {
		t.Errorf("inserted entry created_by = %d, want tm owner 7", inserted.CreatedBy)
	}
	if got := central.tms[50].EntryCount; got != 2 {
		t.Errorf("tm entry_count = %d, want recomputed 2", got)
	}
	for _, e := range replica.tmEntries[1] {
		if e.Dirty {
			t.Errorf("entry %d should be clean after push", e.LocalID)
		}
	}
}

func TestSyncTMToOffline(t *testing.T) {
	central := newFakeCentral()
	central.tms[50] = models.TranslationMemory{ID: 50, Name: "legal", OwnerID: 7, EntryCount: 2, Status: models.TMStatusActive, UpdatedAt: baseTime}
	central.tmEntries[50] = []models.TMEntry{
		{ID: 500, TMID: 50, SourceText: "contract", TargetText: "contrat", UpdatedAt: baseTime},
		{ID: 501, TMID: 50, SourceText: "clause", TargetText: "clause", UpdatedAt: baseTime},
	}
	replica := newFakeReplica()
	svc := newTestService(central, replica)

	merged, err := svc.SyncTMToOffline(context.Background(), 50)
	if err != nil {
		t.Fatalf("SyncTMToOffline() error = %v", err)
	}
	if merged != 2 {
		t.Errorf("merged = %d, want 2", merged)
	}
	if len(replica.tms) != 1 {
		t.Fatalf("replica has %d tms, want 1", len(replica.tms))
	}

	// Second run neither duplicates the TM nor its entries.
	if _, err := svc.SyncTMToOffline(context.Background(), 50); err != nil {
		t.Fatalf("second SyncTMToOffline() error = %v", err)
	}
	if len(replica.tms) != 1 {
		t.Errorf("replica has %d tms after re-sync, want 1", len(replica.tms))
	}
	var localTMID int64
	for id := range replica.tms {
		localTMID = id
	}
	if got := len(replica.tmEntries[localTMID]); got != 2 {
		t.Errorf("replica has %d entries after re-sync, want 2", got)
	}
}

func TestSyncTMToOffline_DirtyEntrySurvivesAndPushes(t *testing.T) {
	central := newFakeCentral()
	central.tms[50] = models.TranslationMemory{ID: 50, Name: "legal", OwnerID: 7, UpdatedAt: baseTime}
	central.tmEntries[50] = []models.TMEntry{
		{ID: 500, TMID: 50, SourceText: "contract", TargetText: "contrat", UpdatedAt: baseTime},
	}
	replica := newFakeReplica()
	svc := newTestService(central, replica)

	if _, err := svc.SyncTMToOffline(context.Background(), 50); err != nil {
		t.Fatalf("initial sync error = %v", err)
	}

	var localTMID int64
	for id := range replica.tms {
		localTMID = id
	}
	entry := replica.tmEntries[localTMID][0]
	entry.TargetText = "contrat révisé"
	entry.Dirty = true
	entry.UpdatedAt = mapper.TimeText(baseTime.Add(time.Hour))

	if _, err := svc.SyncTMToOffline(context.Background(), 50); err != nil {
		t.Fatalf("re-sync error = %v", err)
	}

	if got := central.tmEntries[50][0].TargetText; got != "contrat révisé" {
		t.Errorf("central entry target = %q, local edit should have been pushed", got)
	}
	if replica.tmEntries[localTMID][0].Dirty {
		t.Error("entry should be clean after push")
	}
}
