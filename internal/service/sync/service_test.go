package sync

import (
	"context"
	"fmt"
	"sort"

	"linguasync/internal/domain"
	"linguasync/internal/domain/models"
	"linguasync/internal/domain/repositories"
)

// Test fakes. fakeCentral stands in for every central repository plus the
// transaction manager; fakeReplica routes merges through models.DecideMerge
// exactly like the embedded store adapter does.

func int64p(v int64) *int64 { return &v }

type fakeCentral struct {
	platforms map[int64]models.Platform
	projects  map[int64]models.Project
	folders   map[int64]models.Folder
	files     map[int64]models.File
	rows      map[int64][]models.Row // keyed by file id
	tms       map[int64]models.TranslationMemory
	tmEntries map[int64][]models.TMEntry // keyed by tm id

	nextID     int64
	rowUpdates map[int64]int // row id -> UpdateTranslation call count
	txCalls    int
}

func newFakeCentral() *fakeCentral {
	return &fakeCentral{
		platforms:  make(map[int64]models.Platform),
		projects:   make(map[int64]models.Project),
		folders:    make(map[int64]models.Folder),
		files:      make(map[int64]models.File),
		rows:       make(map[int64][]models.Row),
		tms:        make(map[int64]models.TranslationMemory),
		tmEntries:  make(map[int64][]models.TMEntry),
		nextID:     1000,
		rowUpdates: make(map[int64]int),
	}
}

func (c *fakeCentral) id() int64 {
	c.nextID++
	return c.nextID
}

func (c *fakeCentral) GetByID(ctx context.Context, id int64) (*models.Platform, error) {
	p, ok := c.platforms[id]
	if !ok {
		return nil, &domain.NotFoundError{ResourceType: "platform", ResourceID: id}
	}
	return &p, nil
}

// platformRepo/projectRepo/... adapt fakeCentral to the per-entity
// interfaces; GetByID collides across them, so each gets a thin wrapper.

type projectRepo struct{ c *fakeCentral }

func (r projectRepo) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	p, ok := r.c.projects[id]
	if !ok {
		return nil, &domain.NotFoundError{ResourceType: "project", ResourceID: id}
	}
	return &p, nil
}

func (r projectRepo) ListByPlatform(ctx context.Context, platformID int64) ([]models.Project, error) {
	var out []models.Project
	for _, p := range r.c.projects {
		if p.PlatformID == platformID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type folderRepo struct{ c *fakeCentral }

func (r folderRepo) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	f, ok := r.c.folders[id]
	if !ok {
		return nil, &domain.NotFoundError{ResourceType: "folder", ResourceID: id}
	}
	return &f, nil
}

func (r folderRepo) ListByParent(ctx context.Context, projectID int64, parentID *int64) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range r.c.folders {
		if f.ProjectID != projectID {
			continue
		}
		if parentID == nil && f.ParentID != nil {
			continue
		}
		if parentID != nil && (f.ParentID == nil || *f.ParentID != *parentID) {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fileRepo struct{ c *fakeCentral }

func (r fileRepo) GetByID(ctx context.Context, id int64) (*models.File, error) {
	f, ok := r.c.files[id]
	if !ok {
		return nil, &domain.NotFoundError{ResourceType: "file", ResourceID: id}
	}
	return &f, nil
}

func (r fileRepo) ListByFolder(ctx context.Context, projectID int64, folderID *int64) ([]models.File, error) {
	var out []models.File
	for _, f := range r.c.files {
		if f.ProjectID != projectID {
			continue
		}
		if folderID == nil && f.FolderID != nil {
			continue
		}
		if folderID != nil && (f.FolderID == nil || *f.FolderID != *folderID) {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fileRepo) Create(ctx context.Context, file *models.File) error {
	file.ID = r.c.id()
	r.c.files[file.ID] = *file
	return nil
}

type rowRepo struct{ c *fakeCentral }

func (r rowRepo) ListByFile(ctx context.Context, fileID int64) ([]models.Row, error) {
	out := make([]models.Row, len(r.c.rows[fileID]))
	copy(out, r.c.rows[fileID])
	sort.Slice(out, func(i, j int) bool { return out[i].RowNum < out[j].RowNum })
	return out, nil
}

func (r rowRepo) UpdateTranslation(ctx context.Context, rowID int64, target, status, memo string) error {
	for fileID, rows := range r.c.rows {
		for i := range rows {
			if rows[i].ID == rowID {
				rows[i].Target = target
				rows[i].Status = status
				rows[i].Memo = memo
				r.c.rows[fileID] = rows
				r.c.rowUpdates[rowID]++
				return nil
			}
		}
	}
	return &domain.NotFoundError{ResourceType: "row", ResourceID: rowID}
}

func (r rowRepo) BulkInsert(ctx context.Context, fileID int64, rows []models.Row) error {
	for i := range rows {
		rows[i].ID = r.c.id()
		rows[i].FileID = fileID
	}
	r.c.rows[fileID] = append(r.c.rows[fileID], rows...)
	return nil
}

type tmRepo struct{ c *fakeCentral }

func (r tmRepo) Get(ctx context.Context, tmID int64) (*models.TranslationMemory, error) {
	tm, ok := r.c.tms[tmID]
	if !ok {
		return nil, &domain.NotFoundError{ResourceType: "tm", ResourceID: tmID}
	}
	return &tm, nil
}

func (r tmRepo) GetAll(ctx context.Context) ([]models.TranslationMemory, error) {
	var out []models.TranslationMemory
	for _, tm := range r.c.tms {
		out = append(out, tm)
	}
	return out, nil
}

func (r tmRepo) CountEntries(ctx context.Context, tmID int64) (int, error) {
	return len(r.c.tmEntries[tmID]), nil
}

func (r tmRepo) Create(ctx context.Context, tm *models.TranslationMemory) error {
	tm.ID = r.c.id()
	r.c.tms[tm.ID] = *tm
	return nil
}

func (r tmRepo) UpdateEntryCount(ctx context.Context, tmID int64, count int) error {
	tm, ok := r.c.tms[tmID]
	if !ok {
		return &domain.NotFoundError{ResourceType: "tm", ResourceID: tmID}
	}
	tm.EntryCount = count
	r.c.tms[tmID] = tm
	return nil
}

type tmEntryRepo struct{ c *fakeCentral }

func (r tmEntryRepo) ListByTM(ctx context.Context, tmID int64) ([]models.TMEntry, error) {
	out := make([]models.TMEntry, len(r.c.tmEntries[tmID]))
	copy(out, r.c.tmEntries[tmID])
	return out, nil
}

func (r tmEntryRepo) UpdateTranslation(ctx context.Context, entryID int64, target string) error {
	for tmID, entries := range r.c.tmEntries {
		for i := range entries {
			if entries[i].ID == entryID {
				entries[i].TargetText = target
				r.c.tmEntries[tmID] = entries
				return nil
			}
		}
	}
	return &domain.NotFoundError{ResourceType: "tm_entry", ResourceID: entryID}
}

func (r tmEntryRepo) Insert(ctx context.Context, entry *models.TMEntry) error {
	entry.ID = r.c.id()
	r.c.tmEntries[entry.TMID] = append(r.c.tmEntries[entry.TMID], *entry)
	return nil
}

func (r tmEntryRepo) BulkInsert(ctx context.Context, tmID int64, entries []models.TMEntry) error {
	for i := range entries {
		entries[i].ID = r.c.id()
		entries[i].TMID = tmID
	}
	r.c.tmEntries[tmID] = append(r.c.tmEntries[tmID], entries...)
	return nil
}

func (c *fakeCentral) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	c.txCalls++
	return fn(ctx)
}

type fakeReplica struct {
	platforms map[int64]models.ReplicaPlatform // keyed by server id
	projects  map[int64]models.ReplicaProject
	folders   map[int64]models.ReplicaFolder
	files     map[int64]models.ReplicaFile
	rows      map[int64][]*models.ReplicaRow // keyed by file server id

	localFiles    map[int64]*models.ReplicaFile  // keyed by local id
	localFileRows map[int64][]models.ReplicaRow  // keyed by file local id
	tms           map[int64]*models.ReplicaTM    // keyed by local id
	tmEntries     map[int64][]*models.ReplicaTMEntry // keyed by tm local id

	saveOrder   []string
	nextLocalID int64
}

func newFakeReplica() *fakeReplica {
	return &fakeReplica{
		platforms:     make(map[int64]models.ReplicaPlatform),
		projects:      make(map[int64]models.ReplicaProject),
		folders:       make(map[int64]models.ReplicaFolder),
		files:         make(map[int64]models.ReplicaFile),
		rows:          make(map[int64][]*models.ReplicaRow),
		localFiles:    make(map[int64]*models.ReplicaFile),
		localFileRows: make(map[int64][]models.ReplicaRow),
		tms:           make(map[int64]*models.ReplicaTM),
		tmEntries:     make(map[int64][]*models.ReplicaTMEntry),
	}
}

func (f *fakeReplica) localID() int64 {
	f.nextLocalID++
	return f.nextLocalID
}

func (f *fakeReplica) SavePlatform(ctx context.Context, p models.ReplicaPlatform) error {
	sid, _ := p.Ref.ServerID()
	f.platforms[sid] = p
	f.saveOrder = append(f.saveOrder, fmt.Sprintf("platform:%d", sid))
	return nil
}

func (f *fakeReplica) SaveProject(ctx context.Context, p models.ReplicaProject) error {
	sid, _ := p.Ref.ServerID()
	f.projects[sid] = p
	f.saveOrder = append(f.saveOrder, fmt.Sprintf("project:%d", sid))
	return nil
}

func (f *fakeReplica) SaveFolder(ctx context.Context, fo models.ReplicaFolder) error {
	sid, _ := fo.Ref.ServerID()
	f.folders[sid] = fo
	f.saveOrder = append(f.saveOrder, fmt.Sprintf("folder:%d", sid))
	return nil
}

func (f *fakeReplica) SaveFile(ctx context.Context, fi models.ReplicaFile) error {
	sid, _ := fi.Ref.ServerID()
	f.files[sid] = fi
	f.saveOrder = append(f.saveOrder, fmt.Sprintf("file:%d", sid))
	return nil
}

func (f *fakeReplica) MergeRowsBatch(ctx context.Context, incoming []models.ReplicaRow, fileServerID int64) (repositories.MergeStats, error) {
	var stats repositories.MergeStats
	if _, ok := f.files[fileServerID]; !ok {
		return stats, &domain.NotFoundError{ResourceType: "file", ResourceID: fileServerID}
	}

	byServer := make(map[int64]*models.ReplicaRow)
	for _, r := range f.rows[fileServerID] {
		if sid, ok := r.Ref.ServerID(); ok {
			byServer[sid] = r
		}
	}

	for _, in := range incoming {
		sid, _ := in.Ref.ServerID()
		local := byServer[sid]
		switch models.DecideMerge(local, in) {
		case models.MergeInsert:
			row := in
			row.LocalID = f.localID()
			row.Dirty = false
			f.rows[fileServerID] = append(f.rows[fileServerID], &row)
			stats.Inserted++
		case models.MergeOverwrite:
			localID := local.LocalID
			*local = in
			local.LocalID = localID
			local.Dirty = false
			stats.Updated++
		default:
			stats.Skipped++
		}
	}
	return stats, nil
}

func (f *fakeReplica) LocalRowServerIDs(ctx context.Context, fileServerID int64) (map[int64]struct{}, error) {
	out := make(map[int64]struct{})
	for _, r := range f.rows[fileServerID] {
		if sid, ok := r.Ref.ServerID(); ok {
			out[sid] = struct{}{}
		}
	}
	return out, nil
}

func (f *fakeReplica) DeleteRowByServerID(ctx context.Context, serverID int64) error {
	for fileID, rows := range f.rows {
		for i, r := range rows {
			if sid, ok := r.Ref.ServerID(); ok && sid == serverID {
				f.rows[fileID] = append(rows[:i], rows[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (f *fakeReplica) ModifiedRows(ctx context.Context, fileServerID int64) ([]models.ReplicaRow, error) {
	var out []models.ReplicaRow
	for _, r := range f.rows[fileServerID] {
		if r.Dirty {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReplica) MarkRowSynced(ctx context.Context, localID int64) error {
	for _, rows := range f.rows {
		for _, r := range rows {
			if r.LocalID == localID {
				r.Dirty = false
				return nil
			}
		}
	}
	return nil
}

func (f *fakeReplica) SaveTM(ctx context.Context, tm models.ReplicaTM) (int64, error) {
	sid, _ := tm.Ref.ServerID()
	for localID, existing := range f.tms {
		if esid, ok := existing.Ref.ServerID(); ok && esid == sid {
			tm.LocalID = localID
			f.tms[localID] = &tm
			return localID, nil
		}
	}
	tm.LocalID = f.localID()
	f.tms[tm.LocalID] = &tm
	return tm.LocalID, nil
}

func (f *fakeReplica) MergeTMEntry(ctx context.Context, entry models.ReplicaTMEntry) error {
	if sid, ok := entry.Ref.ServerID(); ok {
		for _, existing := range f.tmEntries[entry.TMLocalID] {
			esid, synced := existing.Ref.ServerID()
			if !synced || esid != sid {
				continue
			}
			if existing.Dirty {
				return nil
			}
			existing.SourceText = entry.SourceText
			existing.TargetText = entry.TargetText
			existing.SourceHash = entry.SourceHash
			existing.UpdatedAt = entry.UpdatedAt
			return nil
		}
	}
	added := entry
	added.LocalID = f.localID()
	f.tmEntries[entry.TMLocalID] = append(f.tmEntries[entry.TMLocalID], &added)
	return nil
}

func (f *fakeReplica) ModifiedTMEntries(ctx context.Context, tmLocalID int64) ([]models.ReplicaTMEntry, error) {
	var out []models.ReplicaTMEntry
	for _, e := range f.tmEntries[tmLocalID] {
		if e.Dirty {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeReplica) MarkTMEntrySynced(ctx context.Context, localID int64) error {
	for _, entries := range f.tmEntries {
		for _, e := range entries {
			if e.LocalID == localID {
				e.Dirty = false
				return nil
			}
		}
	}
	return nil
}

func (f *fakeReplica) LocalFile(ctx context.Context, localID int64) (*models.ReplicaFile, error) {
	file, ok := f.localFiles[localID]
	if !ok {
		return nil, &domain.NotFoundError{ResourceType: "file", ResourceID: localID}
	}
	copied := *file
	return &copied, nil
}

func (f *fakeReplica) RowsForFile(ctx context.Context, fileLocalID int64) ([]models.ReplicaRow, error) {
	out := make([]models.ReplicaRow, len(f.localFileRows[fileLocalID]))
	copy(out, f.localFileRows[fileLocalID])
	return out, nil
}

func (f *fakeReplica) LocalTM(ctx context.Context, localID int64) (*models.ReplicaTM, error) {
	tm, ok := f.tms[localID]
	if !ok {
		return nil, &domain.NotFoundError{ResourceType: "tm", ResourceID: localID}
	}
	copied := *tm
	return &copied, nil
}

func (f *fakeReplica) TMEntriesForTM(ctx context.Context, tmLocalID int64) ([]models.ReplicaTMEntry, error) {
	var out []models.ReplicaTMEntry
	for _, e := range f.tmEntries[tmLocalID] {
		out = append(out, *e)
	}
	return out, nil
}

var _ repositories.ReplicaStore = (*fakeReplica)(nil)

func newTestService(central *fakeCentral, replica *fakeReplica) *Service {
	return NewService(&Config{
		Platforms: central,
		Projects:  projectRepo{central},
		Folders:   folderRepo{central},
		Files:     fileRepo{central},
		Rows:      rowRepo{central},
		TMs:       tmRepo{central},
		TMEntries: tmEntryRepo{central},
		Replica:   replica,
		TxManager: central,
	})
}
