package chronoval

import (
	"strconv"

	"github.com/chronoval-db/chronoval/internal/encoding"
)

// VersionedInt is an append-only, time-versioned integer usable as a column
// value. It records every value it has ever held, each tagged with the
// timestamp of assignment. The wrapped history snapshot is immutable;
// assignments produce a successor value and leave the original intact.
type VersionedInt struct {
	hist *History
}

// NewVersionedInt creates a versioned integer holding its first value,
// stamped with the current unit-of-work write time.
func NewVersionedInt(value int64, clock *TxClock, limits Limits) *VersionedInt {
	return &VersionedInt{hist: NewHistory(value, clock.WriteTimestamp(), limits)}
}

// Assign is the construction/append entry point: given an existing value (or
// nil for a first assignment) and a new scalar, it returns the successor
// versioned value. The timestamp is the unit-of-work write time, constant
// across all writes of one transaction.
func Assign(existing *VersionedInt, value int64, clock *TxClock, limits Limits) (*VersionedInt, error) {
	var h *History
	if existing != nil {
		h = existing.hist
	}
	next, err := Append(h, value, clock.WriteTimestamp(), limits)
	if err != nil {
		return nil, err
	}
	return &VersionedInt{hist: next}, nil
}

// AssignNullable is Assign for scalars that may be null. Assigning null is a
// user error; versioned values record every state they ever held and an
// absent state is not a value.
func AssignNullable(existing *VersionedInt, value *int64, clock *TxClock, limits Limits) (*VersionedInt, error) {
	if value == nil {
		return nil, newValueError(KindNullValue, "cannot assign null to a versioned value", nil)
	}
	return Assign(existing, *value, clock, limits)
}

// AssignAt records an assignment with an explicit, possibly backfilled
// timestamp, inserted in sorted position.
func AssignAt(existing *VersionedInt, value, timestamp int64, limits Limits) (*VersionedInt, error) {
	var h *History
	if existing != nil {
		h = existing.hist
	}
	next, err := InsertSorted(h, value, timestamp, limits)
	if err != nil {
		return nil, err
	}
	return &VersionedInt{hist: next}, nil
}

// Current returns the most recent value. The second return is false for a
// nil value.
func (v *VersionedInt) Current() (int64, bool) {
	if v == nil {
		return 0, false
	}
	return v.hist.Current()
}

// History returns the underlying immutable snapshot.
func (v *VersionedInt) History() *History {
	if v == nil {
		return nil
	}
	return v.hist
}

// String renders the display representation: the current value only. The
// full history is deliberately not representable as text.
func (v *VersionedInt) String() string {
	cur, ok := v.Current()
	if !ok {
		return ""
	}
	return strconv.FormatInt(cur, 10)
}

// Parse always fails. A scalar string cannot reproduce the history of a
// versioned value, so textual construction is permanently unsupported; use
// Assign to build values from scalars instead.
func Parse(string) (*VersionedInt, error) {
	return nil, newValueError(KindTextInput,
		"versioned values cannot be constructed from text", nil)
}

// Compare orders two versioned values by their current value, for sort and
// btree support. Nil (and empty) values order first.
func (v *VersionedInt) Compare(o *VersionedInt) int {
	a, aok := v.Current()
	b, bok := o.Current()
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Rect returns the value's leaf key rectangle for spatial indexing.
func (v *VersionedInt) Rect() (Rect, error) {
	if v == nil {
		return Rect{}, ErrEmptyHistory
	}
	return Compress(v.hist)
}

// MarshalBinary serializes the full history into the storage blob format.
func (v *VersionedInt) MarshalBinary() ([]byte, error) {
	if v == nil || v.hist.Len() == 0 {
		return nil, ErrEmptyHistory
	}
	return encoding.EncodeColumns(v.hist.timestamps(), v.hist.values())
}

// UnmarshalVersionedInt rebuilds a versioned value from a storage blob.
func UnmarshalVersionedInt(blob []byte) (*VersionedInt, error) {
	timestamps, values, err := encoding.DecodeColumns(blob)
	if err != nil {
		return nil, err
	}
	h, err := historyFromColumns(timestamps, values)
	if err != nil {
		return nil, err
	}
	return &VersionedInt{hist: h}, nil
}
