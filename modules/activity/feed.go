// Package activity keeps a bounded in-memory feed of recent chat room
// activity, built from the events the chat module publishes.
package activity

import (
	"sync"
	"time"
)

// DefaultFeedSize is the number of entries kept before old ones are
// dropped.
const DefaultFeedSize = 100

// Entry is one recorded activity item.
type Entry struct {
	Kind      string    `json:"kind"`
	Room      string    `json:"room"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Entry kinds.
const (
	KindRoomCreated   = "room_created"
	KindRoomDeleted   = "room_deleted"
	KindLeaderElected = "leader_elected"
)

// Feed is a fixed-capacity ring of activity entries. Newest entries
// evict the oldest once the capacity is reached.
type Feed struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

// NewFeed creates a feed holding at most size entries.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultFeedSize
	}
	return &Feed{
		entries: make([]Entry, size),
	}
}

// Record appends an entry, evicting the oldest when full.
func (f *Feed) Record(entry Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries[f.next] = entry
	f.next++
	if f.next == len(f.entries) {
		f.next = 0
		f.full = true
	}
}

// Recent returns all recorded entries, newest first.
func (f *Feed) Recent() []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := f.next
	if f.full {
		count = len(f.entries)
	}

	out := make([]Entry, 0, count)
	for i := 1; i <= count; i++ {
		idx := f.next - i
		if idx < 0 {
			idx += len(f.entries)
		}
		out = append(out, f.entries[idx])
	}
	return out
}

// Len returns the number of recorded entries.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.full {
		return len(f.entries)
	}
	return f.next
}
