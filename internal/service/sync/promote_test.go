package sync

import (
	"context"
	"errors"
	"testing"

	"linguasync/internal/domain"
	"linguasync/internal/domain/models"
)

func seedLocalFile(replica *fakeReplica) {
	replica.localFiles[5] = &models.ReplicaFile{
		LocalID:          5,
		Ref:              models.UnsyncedRef(),
		Name:             "glossary.xlsx",
		OriginalFilename: "glossary v2.xlsx",
		Format:           "xlsx",
		SourceLanguage:   "en",
		TargetLanguage:   "fr",
	}
	replica.localFileRows[5] = []models.ReplicaRow{
		{LocalID: 51, Ref: models.UnsyncedRef(), RowNum: 1, StringID: "t1", Source: "sword", Target: "épée", Status: models.RowStatusTranslated},
		{LocalID: 52, Ref: models.UnsyncedRef(), RowNum: 2, StringID: "t2", Source: "shield"},
	}
}

func TestSyncFileToCentral(t *testing.T) {
	central := newFakeCentral()
	central.projects[2] = models.Project{ID: 2, Name: "rpg", PlatformID: 1}
	central.folders[3] = models.Folder{ID: 3, Name: "chapter-1", ProjectID: 2}
	replica := newFakeReplica()
	seedLocalFile(replica)
	svc := newTestService(central, replica)

	res, err := svc.SyncFileToCentral(context.Background(), PromoteFileRequest{
		LocalFileID: 5, ProjectID: 2, FolderID: int64p(3), UserID: 7,
	})
	if err != nil {
		t.Fatalf("SyncFileToCentral() error = %v", err)
	}
	if res.RowsSynced != 2 {
		t.Errorf("RowsSynced = %d, want 2", res.RowsSynced)
	}

	file, ok := central.files[res.NewFileID]
	if !ok {
		t.Fatalf("central file %d was not created", res.NewFileID)
	}
	if file.ProjectID != 2 || file.FolderID == nil || *file.FolderID != 3 {
		t.Errorf("file placed at project %d folder %v, want 2/3", file.ProjectID, file.FolderID)
	}
	if file.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", file.RowCount)
	}

	rows := central.rows[res.NewFileID]
	if len(rows) != 2 {
		t.Fatalf("central has %d rows, want 2", len(rows))
	}
	if rows[0].RowNum != 1 || rows[0].Target != "épée" {
		t.Errorf("row 1 = %+v, content should carry over in order", rows[0])
	}
	if central.txCalls != 1 {
		t.Errorf("txCalls = %d, file and rows must share one transaction", central.txCalls)
	}
}

func TestSyncFileToCentral_InsertOnly(t *testing.T) {
	central := newFakeCentral()
	central.projects[2] = models.Project{ID: 2, Name: "rpg"}
	replica := newFakeReplica()
	seedLocalFile(replica)
	svc := newTestService(central, replica)

	req := PromoteFileRequest{LocalFileID: 5, ProjectID: 2, UserID: 7}
	first, err := svc.SyncFileToCentral(context.Background(), req)
	if err != nil {
		t.Fatalf("first promotion error = %v", err)
	}
	second, err := svc.SyncFileToCentral(context.Background(), req)
	if err != nil {
		t.Fatalf("second promotion error = %v", err)
	}

	if first.NewFileID == second.NewFileID {
		t.Error("promotion must never reuse an existing central file")
	}
	if len(central.files) != 2 {
		t.Errorf("central has %d files, want 2 distinct inserts", len(central.files))
	}
}

func TestSyncFileToCentral_Rejections(t *testing.T) {
	central := newFakeCentral()
	central.projects[2] = models.Project{ID: 2, Name: "rpg"}
	central.folders[9] = models.Folder{ID: 9, Name: "elsewhere", ProjectID: 99}
	replica := newFakeReplica()
	seedLocalFile(replica)
	replica.localFiles[6] = &models.ReplicaFile{LocalID: 6, Ref: models.SyncedRef(10), Name: "already.xlsx"}
	svc := newTestService(central, replica)

	tests := []struct {
		name    string
		req     PromoteFileRequest
		wantErr error
	}{
		{
			name:    "missing required fields",
			req:     PromoteFileRequest{LocalFileID: 5},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "already promoted file",
			req:     PromoteFileRequest{LocalFileID: 6, ProjectID: 2, UserID: 7},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "destination project missing",
			req:     PromoteFileRequest{LocalFileID: 5, ProjectID: 404, UserID: 7},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "folder outside destination project",
			req:     PromoteFileRequest{LocalFileID: 5, ProjectID: 2, FolderID: int64p(9), UserID: 7},
			wantErr: domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SyncFileToCentral(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if len(central.files) != 0 {
		t.Errorf("central has %d files, rejected promotions must write nothing", len(central.files))
	}
}

func TestSyncTMToCentral(t *testing.T) {
	central := newFakeCentral()
	replica := newFakeReplica()
	replica.tms[3] = &models.ReplicaTM{
		LocalID: 3, Ref: models.UnsyncedRef(),
		Name: "game terms", SourceLang: "en", TargetLang: "fr",
	}
	replica.tmEntries[3] = []*models.ReplicaTMEntry{
		{LocalID: 31, TMLocalID: 3, SourceText: "sword", TargetText: "épée", SourceHash: models.HashSourceText("sword")},
		{LocalID: 32, TMLocalID: 3, SourceText: "shield ", TargetText: "bouclier"}, // hash missing, padded source
	}
	svc := newTestService(central, replica)

	res, err := svc.SyncTMToCentral(context.Background(), 3, 7)
	if err != nil {
		t.Fatalf("SyncTMToCentral() error = %v", err)
	}
	if res.EntriesSynced != 2 {
		t.Errorf("EntriesSynced = %d, want 2", res.EntriesSynced)
	}

	tm, ok := central.tms[res.NewTMID]
	if !ok {
		t.Fatalf("central tm %d was not created", res.NewTMID)
	}
	if tm.Status != models.TMStatusPending {
		t.Errorf("status = %q, a fresh promotion is not yet indexed", tm.Status)
	}
	if tm.OwnerID != 7 || tm.EntryCount != 2 {
		t.Errorf("tm = %+v, want owner 7 and entry_count 2", tm)
	}

	entries := central.tmEntries[res.NewTMID]
	if len(entries) != 2 {
		t.Fatalf("central has %d entries, want 2", len(entries))
	}
	if entries[1].SourceHash != models.HashSourceText("shield ") {
		t.Errorf("missing hash should be computed from normalized source text")
	}
	if entries[1].SourceHash != models.HashSourceText("shield") {
		t.Errorf("hash must ignore surrounding whitespace")
	}
}

func TestSyncTMToCentral_Rejections(t *testing.T) {
	central := newFakeCentral()
	replica := newFakeReplica()
	replica.tms[4] = &models.ReplicaTM{LocalID: 4, Ref: models.SyncedRef(50), Name: "synced"}
	svc := newTestService(central, replica)

	if _, err := svc.SyncTMToCentral(context.Background(), 0, 7); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("zero local tm id: error = %v, want ErrValidation", err)
	}
	if _, err := svc.SyncTMToCentral(context.Background(), 4, 7); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("already promoted tm: error = %v, want ErrValidation", err)
	}
	if _, err := svc.SyncTMToCentral(context.Background(), 404, 7); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown local tm: error = %v, want ErrNotFound", err)
	}
}
