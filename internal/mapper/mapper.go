// Package mapper converts central records into the shapes the replica store
// persists. Every function is pure: no store access, no errors, no panics.
// Timestamps are rendered as RFC3339 text; zero or absent values become nil
// so older central schemas map cleanly.
package mapper

import (
	"time"

	"linguasync/internal/domain/models"
)

// TimeText renders a timestamp as canonical RFC3339 text, nil for zero values.
func TimeText(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

// PlatformToReplica maps a central platform to its replica shape.
func PlatformToReplica(p *models.Platform) models.ReplicaPlatform {
	if p == nil {
		return models.ReplicaPlatform{}
	}
	return models.ReplicaPlatform{
		Ref:          models.SyncedRef(p.ID),
		Name:         p.Name,
		Description:  p.Description,
		IsRestricted: p.IsRestricted,
		CreatedAt:    TimeText(p.CreatedAt),
		UpdatedAt:    TimeText(p.UpdatedAt),
	}
}

// ProjectToReplica maps a central project to its replica shape.
func ProjectToReplica(p *models.Project) models.ReplicaProject {
	if p == nil {
		return models.ReplicaProject{}
	}
	return models.ReplicaProject{
		Ref:              models.SyncedRef(p.ID),
		Name:             p.Name,
		Description:      p.Description,
		PlatformServerID: p.PlatformID,
		IsRestricted:     p.IsRestricted,
		CreatedAt:        TimeText(p.CreatedAt),
		UpdatedAt:        TimeText(p.UpdatedAt),
	}
}

// FolderToReplica maps a central folder to its replica shape.
func FolderToReplica(f *models.Folder) models.ReplicaFolder {
	if f == nil {
		return models.ReplicaFolder{}
	}
	return models.ReplicaFolder{
		Ref:             models.SyncedRef(f.ID),
		Name:            f.Name,
		ProjectServerID: f.ProjectID,
		ParentServerID:  f.ParentID,
		CreatedAt:       TimeText(f.CreatedAt),
	}
}

// FileToReplica maps a central file to its replica shape.
func FileToReplica(f *models.File) models.ReplicaFile {
	if f == nil {
		return models.ReplicaFile{}
	}
	return models.ReplicaFile{
		Ref:              models.SyncedRef(f.ID),
		Name:             f.Name,
		OriginalFilename: f.OriginalFilename,
		Format:           f.Format,
		RowCount:         f.RowCount,
		SourceLanguage:   f.SourceLanguage,
		TargetLanguage:   f.TargetLanguage,
		ProjectServerID:  f.ProjectID,
		FolderServerID:   f.FolderID,
		ExtraData:        f.ExtraData,
		CreatedAt:        TimeText(f.CreatedAt),
		UpdatedAt:        TimeText(f.UpdatedAt),
	}
}

// RowToReplica maps a central row to its replica shape.
func RowToReplica(r *models.Row) models.ReplicaRow {
	if r == nil {
		return models.ReplicaRow{}
	}
	return models.ReplicaRow{
		Ref:       models.SyncedRef(r.ID),
		RowNum:    r.RowNum,
		StringID:  r.StringID,
		Source:    r.Source,
		Target:    r.Target,
		Memo:      r.Memo,
		Status:    r.Status,
		ExtraData: r.ExtraData,
		UpdatedAt: TimeText(r.UpdatedAt),
	}
}

// RowsToReplica maps a central row slice, preserving order.
func RowsToReplica(rows []models.Row) []models.ReplicaRow {
	out := make([]models.ReplicaRow, len(rows))
	for i := range rows {
		out[i] = RowToReplica(&rows[i])
	}
	return out
}

// TMToReplica maps a central TM to its replica shape.
func TMToReplica(tm *models.TranslationMemory) models.ReplicaTM {
	if tm == nil {
		return models.ReplicaTM{}
	}
	return models.ReplicaTM{
		Ref:         models.SyncedRef(tm.ID),
		Name:        tm.Name,
		Description: tm.Description,
		OwnerID:     tm.OwnerID,
		SourceLang:  tm.SourceLang,
		TargetLang:  tm.TargetLang,
		EntryCount:  tm.EntryCount,
		Status:      tm.Status,
		CreatedAt:   TimeText(tm.CreatedAt),
		UpdatedAt:   TimeText(tm.UpdatedAt),
	}
}

// TMEntryToReplica maps a central TM entry to its replica shape.
func TMEntryToReplica(e *models.TMEntry) models.ReplicaTMEntry {
	if e == nil {
		return models.ReplicaTMEntry{}
	}
	return models.ReplicaTMEntry{
		Ref:        models.SyncedRef(e.ID),
		SourceText: e.SourceText,
		TargetText: e.TargetText,
		SourceHash: e.SourceHash,
		CreatedAt:  TimeText(e.CreatedAt),
		UpdatedAt:  TimeText(e.UpdatedAt),
	}
}
