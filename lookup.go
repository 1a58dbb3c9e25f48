package chronoval

import "sort"

// ValueAt returns the value the history held at time ts: the value of the
// last entry with a timestamp at or before ts. The second return is false
// when ts precedes the first recorded entry (or the history is empty), which
// callers surface as an SQL-null-like unknown.
func (h *History) ValueAt(ts int64) (int64, bool) {
	if h.Len() == 0 {
		return 0, false
	}

	// Fast path: the common query is for the current value.
	last := h.entries[len(h.entries)-1]
	if ts >= last.Timestamp {
		return last.Value, true
	}

	// Rightmost entry with Timestamp <= ts. Search finds the first entry
	// strictly after ts; the one before it, if any, is the answer.
	idx := sort.Search(len(h.entries), func(i int) bool {
		return h.entries[i].Timestamp > ts
	})
	if idx == 0 {
		return 0, false
	}
	return h.entries[idx-1].Value, true
}

// EqualsAt reports whether the history held expected at time ts. The second
// return is false when no entry exists at or before ts, in which case the
// comparison result is unknown rather than false.
func (h *History) EqualsAt(ts int64, expected int64) (bool, bool) {
	v, ok := h.ValueAt(ts)
	if !ok {
		return false, false
	}
	return v == expected, true
}
