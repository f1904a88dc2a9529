package models

import (
	"time"
)

// ServerRef ties a replica record to its central counterpart. A record with
// no server reference exists only locally and must be promoted before it can
// be pushed. This replaces any implicit "negative id means local" convention.
type ServerRef struct {
	id     int64
	synced bool
}

// SyncedRef returns a reference to an existing central record.
func SyncedRef(serverID int64) ServerRef {
	return ServerRef{id: serverID, synced: true}
}

// UnsyncedRef returns the reference of a local-only record.
func UnsyncedRef() ServerRef {
	return ServerRef{}
}

// Synced reports whether the record has a central counterpart.
func (r ServerRef) Synced() bool { return r.synced }

// ServerID returns the central id; ok is false for local-only records.
func (r ServerRef) ServerID() (int64, bool) { return r.id, r.synced }

// Replica counterparts of the central entities. Timestamps are carried as
// RFC3339 text (or nil), matching how the embedded store persists them.

type ReplicaPlatform struct {
	LocalID      int64
	Ref          ServerRef
	Name         string
	Description  *string
	IsRestricted bool
	CreatedAt    *string
	UpdatedAt    *string
	SyncedAt     *string
}

type ReplicaProject struct {
	LocalID          int64
	Ref              ServerRef
	Name             string
	Description      *string
	PlatformServerID int64
	IsRestricted     bool
	CreatedAt        *string
	UpdatedAt        *string
	SyncedAt         *string
}

type ReplicaFolder struct {
	LocalID         int64
	Ref             ServerRef
	Name            string
	ProjectServerID int64
	ParentServerID  *int64
	CreatedAt       *string
	SyncedAt        *string
}

type ReplicaFile struct {
	LocalID          int64
	Ref              ServerRef
	Name             string
	OriginalFilename string
	Format           string
	RowCount         int
	SourceLanguage   string
	TargetLanguage   string
	ProjectServerID  int64
	FolderServerID   *int64
	ExtraData        []byte
	CreatedAt        *string
	UpdatedAt        *string
	Dirty            bool
	SyncedAt         *string
}

type ReplicaRow struct {
	LocalID   int64
	Ref       ServerRef
	RowNum    int
	StringID  string
	Source    string
	Target    string
	Memo      string
	Status    string
	ExtraData []byte
	UpdatedAt *string
	Dirty     bool
	SyncedAt  *string
}

type ReplicaTM struct {
	LocalID     int64
	Ref         ServerRef
	Name        string
	Description *string
	OwnerID     int64
	SourceLang  string
	TargetLang  string
	EntryCount  int
	Status      string
	CreatedAt   *string
	UpdatedAt   *string
	SyncedAt    *string
}

type ReplicaTMEntry struct {
	LocalID    int64
	Ref        ServerRef
	TMLocalID  int64
	SourceText string
	TargetText string
	SourceHash string
	CreatedAt  *string
	UpdatedAt  *string
	Dirty      bool
	SyncedAt   *string
}

// MergeAction is the outcome of comparing one incoming central row against
// the replica's copy during a batch merge.
type MergeAction int

const (
	// MergeInsert: the row exists centrally but not locally.
	MergeInsert MergeAction = iota
	// MergeOverwrite: the central version supersedes the local copy
	// (either a pristine but older mirror, or a dirty row the server
	// has since overtaken - last-write-wins, local edit discarded).
	MergeOverwrite
	// MergeSkip: the local copy is already a pristine mirror of the same
	// central version.
	MergeSkip
	// MergeKeepLocal: the row is dirty and locally newer than the last
	// known central version; keep it and let the push half send it up.
	MergeKeepLocal
)

// DecideMerge applies the per-row merge policy. local is nil when the replica
// has no copy of the incoming row. Both the embedded store adapter and test
// doubles route through this single decision point so the policy cannot drift.
func DecideMerge(local *ReplicaRow, incoming ReplicaRow) MergeAction {
	if local == nil {
		return MergeInsert
	}
	if !local.Dirty {
		if timestampsEqual(local.UpdatedAt, incoming.UpdatedAt) {
			return MergeSkip
		}
		return MergeOverwrite
	}
	// Dirty local row: the server wins only when it is strictly newer.
	if timestampAfter(incoming.UpdatedAt, local.UpdatedAt) {
		return MergeOverwrite
	}
	return MergeKeepLocal
}

func parseTimestamp(s *string) (time.Time, bool) {
	if s == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func timestampsEqual(a, b *string) bool {
	ta, oka := parseTimestamp(a)
	tb, okb := parseTimestamp(b)
	if !oka || !okb {
		return oka == okb
	}
	return ta.Equal(tb)
}

// timestampAfter reports whether a is strictly later than b. An unparseable
// or missing timestamp on either side is treated as not-after, which keeps
// the local copy and defers to the push path.
func timestampAfter(a, b *string) bool {
	ta, oka := parseTimestamp(a)
	tb, okb := parseTimestamp(b)
	if !oka || !okb {
		return false
	}
	return ta.After(tb)
}
