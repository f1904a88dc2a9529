package maintenance

import (
	"sort"
	"sync"
	"time"

	"linguasync/internal/domain/models"
)

// SyncQueue is the process-wide set of pending re-index jobs plus the set of
// jobs currently running. A tm_id is admitted at most once: never while it is
// already queued, and never while it is in progress. One queue is constructed
// per process and shared by reference; tests build their own.
//
// The mutex covers only queue/set mutation. It is never held across a store
// round trip or the external re-indexing call.
type SyncQueue struct {
	mu         sync.Mutex
	pending    []models.SyncQueueItem
	inProgress map[int64]struct{}
}

// NewSyncQueue creates an empty queue.
func NewSyncQueue() *SyncQueue {
	return &SyncQueue{
		inProgress: make(map[int64]struct{}),
	}
}

// Enqueue admits a job unless its tm_id is already queued or in progress.
// Returns false on refusal; refusal is not an error. The queue stays sorted
// ascending by priority, ties in arrival order.
func (q *SyncQueue) Enqueue(item models.SyncQueueItem) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, running := q.inProgress[item.TMID]; running {
		return false
	}
	for _, pending := range q.pending {
		if pending.TMID == item.TMID {
			return false
		}
	}

	if item.QueuedAt.IsZero() {
		item.QueuedAt = time.Now().UTC()
	}
	q.pending = append(q.pending, item)
	sort.SliceStable(q.pending, func(i, j int) bool {
		return q.pending[i].Priority < q.pending[j].Priority
	})
	return true
}

// Pop removes and returns the most urgent pending job.
func (q *SyncQueue) Pop() (models.SyncQueueItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return models.SyncQueueItem{}, false
	}
	item := q.pending[0]
	q.pending = q.pending[1:]
	return item, true
}

// MarkInProgress records that a tm_id is being serviced, blocking new
// admission for it. Returns false if it is already in progress.
func (q *SyncQueue) MarkInProgress(tmID int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, running := q.inProgress[tmID]; running {
		return false
	}
	q.inProgress[tmID] = struct{}{}
	return true
}

// Done removes a tm_id from both the in-progress set and the pending queue.
// Called unconditionally when a background sync finishes, whatever the
// outcome, so a failed job can always be re-queued.
func (q *SyncQueue) Done(tmID int64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.inProgress, tmID)
	for i, pending := range q.pending {
		if pending.TMID == tmID {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			break
		}
	}
}

// Contains reports whether a tm_id is queued or in progress.
func (q *SyncQueue) Contains(tmID int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, running := q.inProgress[tmID]; running {
		return true
	}
	for _, pending := range q.pending {
		if pending.TMID == tmID {
			return true
		}
	}
	return false
}

// Len returns the number of pending jobs.
func (q *SyncQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Snapshot returns a copy of the pending queue in service order.
func (q *SyncQueue) Snapshot() []models.SyncQueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]models.SyncQueueItem, len(q.pending))
	copy(out, q.pending)
	return out
}
