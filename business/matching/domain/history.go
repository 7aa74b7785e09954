package domain

import (
	"sync"
	"time"
)

// MatchEntry records one pairwise comparison for reporting.
type MatchEntry struct {
	PairKey    string
	Title      string
	Score      float64
	Safe       bool
	ComparedAt time.Time
}

// MatchHistory is a bounded log of recent comparisons. It is safe for
// concurrent use and is never read by the matcher itself.
type MatchHistory struct {
	mu      sync.RWMutex
	entries []MatchEntry
	next    int
	full    bool
	total   int64
	safe    int64
}

// DefaultHistorySize is used when NewMatchHistory receives a non-positive size.
const DefaultHistorySize = 1000

// NewMatchHistory creates a history that keeps the last size entries.
func NewMatchHistory(size int) *MatchHistory {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &MatchHistory{entries: make([]MatchEntry, size)}
}

// Append adds entries, overwriting the oldest when full.
func (h *MatchHistory) Append(entries ...MatchEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, e := range entries {
		h.entries[h.next] = e
		h.next = (h.next + 1) % len(h.entries)
		if h.next == 0 {
			h.full = true
		}
		h.total++
		if e.Safe {
			h.safe++
		}
	}
}

// Len returns the number of retained entries.
func (h *MatchHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.full {
		return len(h.entries)
	}
	return h.next
}

// Totals returns the lifetime comparison and safe-match counts.
func (h *MatchHistory) Totals() (compared, safe int64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total, h.safe
}

// Recent returns up to n entries, newest first.
func (h *MatchHistory) Recent(n int) []MatchEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	size := h.next
	if h.full {
		size = len(h.entries)
	}
	if n > size || n <= 0 {
		n = size
	}

	out := make([]MatchEntry, 0, n)
	idx := h.next
	for i := 0; i < n; i++ {
		idx = (idx - 1 + len(h.entries)) % len(h.entries)
		out = append(out, h.entries[idx])
	}
	return out
}
