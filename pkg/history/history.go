package history

import (
	"time"

	"vegan-agent-be/pkg/verdict"
)

const (
	DefaultSize = 5
	MaxSize     = 50
)

// Mode tells which action produced an entry.
type Mode string

const (
	ModeScan   Mode = "scan"
	ModeSearch Mode = "search"
)

type Entry struct {
	Summary   string        `json:"summary"`
	Kind      verdict.Kind  `json:"kind"`
	Style     verdict.Style `json:"style"`
	Mode      Mode          `json:"mode"`
	ScannedAt time.Time     `json:"scanned_at"`
}

// NewEntry builds a history entry from a classified verdict.
func NewEntry(v verdict.Verdict, mode Mode, at time.Time) Entry {
	return Entry{
		Summary:   v.Summary,
		Kind:      v.Kind,
		Style:     v.Style,
		Mode:      mode,
		ScannedAt: at,
	}
}

// List is a bounded, most-recent-first FIFO. The zero value is unusable;
// create one with New.
type List struct {
	size    int
	entries []Entry
}

// New returns an empty list holding at most size entries. Sizes outside
// 1..MaxSize fall back to DefaultSize.
func New(size int) *List {
	return &List{size: ClampSize(size)}
}

// ClampSize normalizes a configured history size.
func ClampSize(size int) int {
	if size < 1 || size > MaxSize {
		return DefaultSize
	}
	return size
}

func (l *List) Size() int {
	return l.size
}

func (l *List) Len() int {
	return len(l.entries)
}

// Push inserts e at the front and drops the oldest entries beyond the cap.
func (l *List) Push(e Entry) {
	next := make([]Entry, 0, l.size)
	next = append(next, e)
	for _, old := range l.entries {
		if len(next) == l.size {
			break
		}
		next = append(next, old)
	}
	l.entries = next
}

// Entries returns a copy, newest first.
func (l *List) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *List) Clear() {
	l.entries = nil
}
