package chronoval

// OpenEndedTime is the sentinel upper time bound for a live value: the most
// recent entry stays current until superseded, so its rectangle covers all
// future time. The sentinel participates in comparisons as an ordinary
// maximum, but all area and penalty arithmetic converts bounds to float64
// before subtracting so it can never overflow integer math.
const OpenEndedTime = int64(1<<63 - 1)

// Rect is a bounding rectangle over (time, value), summarizing a history
// snapshot or an index subtree for spatial search.
type Rect struct {
	TimeLo  int64
	TimeHi  int64
	ValueLo int64
	ValueHi int64
}

// FromHistory derives the leaf rectangle for a history snapshot: the time
// axis spans from the first recorded timestamp to OpenEndedTime, the value
// axis spans the running min/max of all recorded values.
func FromHistory(h *History) (Rect, error) {
	first, ok := h.First()
	if !ok {
		return Rect{}, ErrEmptyHistory
	}
	return Rect{
		TimeLo:  first.Timestamp,
		TimeHi:  OpenEndedTime,
		ValueLo: h.MinValue(),
		ValueHi: h.MaxValue(),
	}, nil
}

// Union returns the smallest rectangle covering all inputs. Calling it with
// no inputs is a precondition failure, not a degenerate rectangle: there is
// no valid empty geometry.
func Union(rects ...Rect) (Rect, error) {
	if len(rects) == 0 {
		return Rect{}, newValueError(KindEmptyUnion, "rectangle union requires at least one input", nil)
	}
	out := rects[0]
	for _, r := range rects[1:] {
		out = union2(out, r)
	}
	return out, nil
}

func union2(a, b Rect) Rect {
	return Rect{
		TimeLo:  min(a.TimeLo, b.TimeLo),
		TimeHi:  max(a.TimeHi, b.TimeHi),
		ValueLo: min(a.ValueLo, b.ValueLo),
		ValueHi: max(a.ValueHi, b.ValueHi),
	}
}

// Area returns the rectangle's area as a relative cost metric. Degenerate
// single-point rectangles have area zero and are valid.
func (r Rect) Area() float64 {
	return span(r.TimeLo, r.TimeHi) * span(r.ValueLo, r.ValueHi)
}

// span subtracts in float64 so that OpenEndedTime never hits integer overflow.
func span(lo, hi int64) float64 {
	return float64(hi) - float64(lo)
}

// Enlargement returns the area growth needed for base to also cover addition.
// Zero when addition is already contained.
func Enlargement(base, addition Rect) float64 {
	return union2(base, addition).Area() - base.Area()
}

// Same reports exact equality of all four bounds.
func (r Rect) Same(o Rect) bool {
	return r == o
}

// Contains reports whether the (ts, value) point falls within the rectangle.
func (r Rect) Contains(ts, value int64) bool {
	return ts >= r.TimeLo && ts <= r.TimeHi &&
		value >= r.ValueLo && value <= r.ValueHi
}
