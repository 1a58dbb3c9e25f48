package chronoval

import (
	"fmt"
	"sort"
)

// History is the append-only storage for a versioned value. Entries are kept
// sorted by timestamp ascending; the last entry is the current value.
//
// A History is an immutable snapshot. Every mutation allocates and returns a
// new History, so readers holding an older snapshot are never affected by a
// concurrent write producing a successor. Capacity doubles from the initial
// allocation when full, and total buffer size is capped by
// Limits.MaxBufferBytes.
type History struct {
	entries []Entry

	// Running value bounds, maintained incrementally on every write so that
	// rectangle derivation does not rescan the buffer.
	minValue int64
	maxValue int64
}

// Limits bounds history buffer growth.
type Limits struct {
	// MaxBufferBytes is the hard ceiling on a single buffer's byte size.
	// Growth past it fails with ErrBufferTooLarge. Default: 512 MiB.
	MaxBufferBytes int64 `yaml:"max_buffer_bytes"`

	// InitialCapacity is the entry capacity of a freshly created buffer.
	// Capacity doubles from here as the buffer fills. Default: 4.
	InitialCapacity int `yaml:"initial_capacity"`
}

// DefaultLimits returns the default growth limits.
func DefaultLimits() Limits {
	return Limits{
		MaxBufferBytes:  512 << 20,
		InitialCapacity: 4,
	}
}

func (l Limits) withDefaults() Limits {
	if l.MaxBufferBytes <= 0 {
		l.MaxBufferBytes = 512 << 20
	}
	if l.InitialCapacity <= 0 {
		l.InitialCapacity = 4
	}
	return l
}

// bufferBytes is the byte size of a buffer with the given entry capacity.
func bufferBytes(capacity int) int64 {
	return int64(capacity) * entrySize
}

// NewHistory creates a single-entry history recording the first assignment.
func NewHistory(value, timestamp int64, limits Limits) *History {
	limits = limits.withDefaults()
	entries := make([]Entry, 1, limits.InitialCapacity)
	entries[0] = Entry{Value: value, Timestamp: timestamp}
	return &History{entries: entries, minValue: value, maxValue: value}
}

// Append records a new assignment at the given timestamp and returns the
// successor snapshot. h may be nil, in which case a fresh single-entry
// history is created. The receiver is never modified.
//
// Timestamps are expected to be non-decreasing; an explicitly supplied
// timestamp older than the last entry is routed through sorted insertion so
// the ordering invariant always holds.
func Append(h *History, value, timestamp int64, limits Limits) (*History, error) {
	if h == nil || len(h.entries) == 0 {
		return NewHistory(value, timestamp, limits), nil
	}
	if timestamp < h.entries[len(h.entries)-1].Timestamp {
		return InsertSorted(h, value, timestamp, limits)
	}
	return h.insertAt(len(h.entries), value, timestamp, limits)
}

// InsertSorted records an assignment with a backfilled timestamp, placing it
// before the first entry with an equal or later timestamp. Like Append it is
// copy-on-write: the receiver is unchanged and a successor is returned.
func InsertSorted(h *History, value, timestamp int64, limits Limits) (*History, error) {
	if h == nil || len(h.entries) == 0 {
		return NewHistory(value, timestamp, limits), nil
	}
	idx := sort.Search(len(h.entries), func(i int) bool {
		return h.entries[i].Timestamp >= timestamp
	})
	return h.insertAt(idx, value, timestamp, limits)
}

// insertAt copies the buffer with the new entry placed at idx. The copy keeps
// the current capacity when there is room and doubles it when full.
func (h *History) insertAt(idx int, value, timestamp int64, limits Limits) (*History, error) {
	limits = limits.withDefaults()

	count := len(h.entries)
	capacity := cap(h.entries)
	if count == capacity {
		capacity *= 2
		if bufferBytes(capacity) > limits.MaxBufferBytes {
			return nil, newValueError(KindTooLarge,
				fmt.Sprintf("history growth to %d entries exceeds %d byte limit; configure a retention policy",
					capacity, limits.MaxBufferBytes), nil)
		}
	}

	entries := make([]Entry, count+1, capacity)
	copy(entries, h.entries[:idx])
	entries[idx] = Entry{Value: value, Timestamp: timestamp}
	copy(entries[idx+1:], h.entries[idx:])

	next := &History{entries: entries, minValue: h.minValue, maxValue: h.maxValue}
	if value < next.minValue {
		next.minValue = value
	}
	if value > next.maxValue {
		next.maxValue = value
	}
	return next, nil
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.entries)
}

// Cap returns the allocated entry capacity.
func (h *History) Cap() int {
	if h == nil {
		return 0
	}
	return cap(h.entries)
}

// At returns the entry at position i in timestamp order.
func (h *History) At(i int) Entry {
	return h.entries[i]
}

// Current returns the most recent value. The second return is false for a
// nil or empty history.
func (h *History) Current() (int64, bool) {
	if h.Len() == 0 {
		return 0, false
	}
	return h.entries[len(h.entries)-1].Value, true
}

// First returns the oldest entry. The second return is false for a nil or
// empty history.
func (h *History) First() (Entry, bool) {
	if h.Len() == 0 {
		return Entry{}, false
	}
	return h.entries[0], true
}

// Last returns the newest entry. The second return is false for a nil or
// empty history.
func (h *History) Last() (Entry, bool) {
	if h.Len() == 0 {
		return Entry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// MinValue returns the smallest value ever recorded in this snapshot.
func (h *History) MinValue() int64 { return h.minValue }

// MaxValue returns the largest value ever recorded in this snapshot.
func (h *History) MaxValue() int64 { return h.maxValue }

// Iterator returns a restartable cursor over the entries in ascending
// timestamp order. The underlying snapshot is immutable, so the cursor stays
// valid regardless of later writes.
func (h *History) Iterator() *HistoryIterator {
	return &HistoryIterator{h: h}
}

// HistoryIterator walks a history snapshot one entry at a time.
type HistoryIterator struct {
	h   *History
	pos int
}

// Next returns the next entry in timestamp order. The second return is false
// once the history is exhausted.
func (it *HistoryIterator) Next() (Entry, bool) {
	if it.h == nil || it.pos >= len(it.h.entries) {
		return Entry{}, false
	}
	e := it.h.entries[it.pos]
	it.pos++
	return e, true
}

// Reset rewinds the cursor to the first entry.
func (it *HistoryIterator) Reset() {
	it.pos = 0
}

// timestamps returns the entry timestamps in order. Used by the codec.
func (h *History) timestamps() []int64 {
	out := make([]int64, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Timestamp
	}
	return out
}

// values returns the entry values in order. Used by the codec.
func (h *History) values() []int64 {
	out := make([]int64, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.Value
	}
	return out
}

// historyFromColumns rebuilds a snapshot from decoded timestamp and value
// columns. Ordering is not re-verified; the codec only produces columns it
// previously encoded from a valid snapshot.
func historyFromColumns(timestamps, values []int64) (*History, error) {
	if len(timestamps) != len(values) {
		return nil, fmt.Errorf("column length mismatch: %d timestamps, %d values", len(timestamps), len(values))
	}
	if len(timestamps) == 0 {
		return nil, ErrEmptyHistory
	}
	entries := make([]Entry, len(timestamps))
	minV, maxV := values[0], values[0]
	for i := range timestamps {
		entries[i] = Entry{Value: values[i], Timestamp: timestamps[i]}
		if values[i] < minV {
			minV = values[i]
		}
		if values[i] > maxV {
			maxV = values[i]
		}
	}
	return &History{entries: entries, minValue: minV, maxValue: maxV}, nil
}
