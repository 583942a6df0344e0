package progress

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"timecast/internal/models"
)

type Status string

const (
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// HistoryEntry is the client's transient view of one generation: a pending
// entry exists locally before the request resolves and is either replaced by
// the server-confirmed record or flipped to failed. Never persisted
// server-side.
type HistoryEntry struct {
	ID        string
	Title     string
	CreatedAt time.Time
	Input     models.GenerationRequest
	Status    Status
	Progress  int
	IsPending bool
}

// History holds the session's entries, newest first.
type History struct {
	mu      sync.Mutex
	entries []HistoryEntry
}

func NewHistory() *History {
	return &History{}
}

// AddPending synthesizes a local generating entry and returns its id.
func (h *History) AddPending(input models.GenerationRequest) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := HistoryEntry{
		ID:        "pending-" + uuid.NewString(),
		Title:     "",
		CreatedAt: time.Now(),
		Input:     input,
		Status:    StatusGenerating,
		Progress:  0,
		IsPending: true,
	}
	h.entries = append([]HistoryEntry{entry}, h.entries...)
	return entry.ID
}

// SetProgress updates a generating entry's displayed percentage.
func (h *History) SetProgress(id string, pct int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.entries {
		if h.entries[i].ID == id {
			h.entries[i].Progress = pct
			h.entries[i].Status = StatusGenerating
			return
		}
	}
}

// Complete replaces the pending entry with the server-confirmed record.
func (h *History) Complete(id string, record models.PodcastRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.entries {
		if h.entries[i].ID == id {
			h.entries[i] = HistoryEntry{
				ID:        record.ID,
				Title:     record.Title,
				CreatedAt: time.Now(),
				Input:     record.Input,
				Status:    StatusCompleted,
				Progress:  100,
				IsPending: false,
			}
			return
		}
	}
}

// MarkFailed freezes the entry at the given percentage, floored at 1.
func (h *History) MarkFailed(id string, pct int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if pct < failureFloor {
		pct = failureFloor
	}
	for i := range h.entries {
		if h.entries[i].ID == id {
			h.entries[i].Status = StatusFailed
			h.entries[i].Progress = pct
			return
		}
	}
}

// Entries returns a snapshot of the session history.
func (h *History) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}
