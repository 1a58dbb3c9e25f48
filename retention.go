package chronoval

import (
	"sort"
	"time"
)

// RetentionPolicy trims stored history to a maximum entry count or a maximum
// age. The zero value retains everything.
//
// Policies are applied to the result of a write, not on reads; query paths
// always see already-trimmed data. Retention is caller-driven: neither Append
// nor InsertSorted applies a policy on its own, the owner of the value (the
// store, here) decides when to enforce it. Applying a stricter or looser
// policy later is legal and recomputes from the stored history.
type RetentionPolicy struct {
	// MaxEntries keeps at most the N most recent entries. 0 means unlimited.
	MaxEntries int `yaml:"max_entries"`

	// MaxAge keeps entries newer than now-MaxAge. 0 means unlimited.
	MaxAge time.Duration `yaml:"max_age"`
}

// IsZero reports whether the policy retains everything.
func (p RetentionPolicy) IsZero() bool {
	return p.MaxEntries <= 0 && p.MaxAge <= 0
}

// Apply enforces the policy against a snapshot and returns the compliant
// snapshot. When the input already complies the very same snapshot is
// returned, making Apply idempotent.
func (p RetentionPolicy) Apply(h *History, now time.Time) *History {
	if h == nil {
		return nil
	}
	out := h
	if p.MaxAge > 0 {
		out = EnforceMaxAge(out, p.MaxAge, now)
	}
	if p.MaxEntries > 0 {
		out = EnforceMaxEntries(out, p.MaxEntries)
	}
	return out
}

// EnforceMaxEntries keeps the n most recent entries. A compliant history is
// returned unchanged. The trimmed buffer is allocated with capacity exactly
// n: trimmed histories are replaced wholesale on the next write rather than
// grown in place, so no slack is reserved.
func EnforceMaxEntries(h *History, n int) *History {
	if h == nil || n <= 0 || h.Len() <= n {
		return h
	}
	return h.slice(h.Len() - n)
}

// EnforceMaxAge drops entries at or before now-maxAge. A compliant history is
// returned unchanged; the trimmed buffer has capacity exactly matching its
// count.
func EnforceMaxAge(h *History, maxAge time.Duration, now time.Time) *History {
	if h == nil || maxAge <= 0 || h.Len() == 0 {
		return h
	}
	cutoff := now.Add(-maxAge).UnixNano()
	idx := sort.Search(len(h.entries), func(i int) bool {
		return h.entries[i].Timestamp > cutoff
	})
	if idx == 0 {
		return h
	}
	return h.slice(idx)
}

// slice copies entries[from:] into an exact-capacity buffer, recomputing the
// value bounds over the survivors.
func (h *History) slice(from int) *History {
	kept := h.entries[from:]
	entries := make([]Entry, len(kept))
	copy(entries, kept)

	next := &History{entries: entries}
	if len(entries) > 0 {
		next.minValue = entries[0].Value
		next.maxValue = entries[0].Value
		for _, e := range entries[1:] {
			if e.Value < next.minValue {
				next.minValue = e.Value
			}
			if e.Value > next.maxValue {
				next.maxValue = e.Value
			}
		}
	}
	return next
}
