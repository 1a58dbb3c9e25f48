package chronoval

// Spatial index primitives. These are the operations a generic
// rectangle-based tree needs from this domain to route, grow, and split its
// nodes; the tree itself (rtree.go here, or a host index) owns the entries
// and calls down into these.

// Consistent tests whether the query point can be found under an index entry
// with the given key rectangle. At a leaf the rectangle is a conservative
// superset of the stored history (the time axis is open-ended), so a
// geometric match must be rechecked against the exact entry; at an internal
// node a match is definitive for descent and needs no recheck.
func Consistent(key Rect, q PointQuery, leaf bool) (match, recheck bool) {
	if !key.Contains(q.Ts, q.Value) {
		return false, false
	}
	return true, leaf
}

// UnionAll combines the key rectangles of a node's entries into the node's
// own key. Empty input is a precondition failure.
func UnionAll(rects []Rect) (Rect, error) {
	return Union(rects...)
}

// Penalty returns the cost of placing candidate under an entry with the
// existing key: the summed linear overflow on each axis, zero when candidate
// is already contained. Unlike Enlargement this is not area-based; a long
// thin overflow on one axis costs the same as a square one.
func Penalty(existing, candidate Rect) float64 {
	var cost float64
	if candidate.TimeLo < existing.TimeLo {
		cost += span(candidate.TimeLo, existing.TimeLo)
	}
	if candidate.TimeHi > existing.TimeHi {
		cost += span(existing.TimeHi, candidate.TimeHi)
	}
	if candidate.ValueLo < existing.ValueLo {
		cost += span(candidate.ValueLo, existing.ValueLo)
	}
	if candidate.ValueHi > existing.ValueHi {
		cost += span(existing.ValueHi, candidate.ValueHi)
	}
	return cost
}

// SameRect reports whether two index keys are identical.
func SameRect(a, b Rect) bool {
	return a.Same(b)
}

// SplitResult partitions an overflowing node's entries into two groups.
// Left and Right hold the positions of the input entries; every input lands
// in exactly one group and both groups are non-empty.
type SplitResult struct {
	Left      []int
	Right     []int
	LeftRect  Rect
	RightRect Rect
}

// PickSplit divides an overflowing node's entries using Guttman's quadratic
// method. Seed selection considers every pair and picks the two entries whose
// combined rectangle wastes the most area, the worst pair to keep together.
// Remaining entries are then assigned greedily to the seed group whose
// rectangle they enlarge the least, breaking ties toward the group with the
// smaller current area.
func PickSplit(entries []Rect) (*SplitResult, error) {
	if len(entries) < 2 {
		return nil, newValueError(KindEmptyUnion, "split requires at least two entries", nil)
	}

	// Quadratic seed pick: maximize waste = area(union) - area(a) - area(b).
	seedL, seedR := 0, 1
	worst := waste(entries[0], entries[1])
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if w := waste(entries[i], entries[j]); w > worst {
				worst = w
				seedL, seedR = i, j
			}
		}
	}

	res := &SplitResult{
		Left:      []int{seedL},
		Right:     []int{seedR},
		LeftRect:  entries[seedL],
		RightRect: entries[seedR],
	}

	for i := range entries {
		if i == seedL || i == seedR {
			continue
		}
		growL := Enlargement(res.LeftRect, entries[i])
		growR := Enlargement(res.RightRect, entries[i])

		toLeft := growL < growR
		if growL == growR {
			toLeft = res.LeftRect.Area() <= res.RightRect.Area()
		}

		if toLeft {
			res.Left = append(res.Left, i)
			res.LeftRect = union2(res.LeftRect, entries[i])
		} else {
			res.Right = append(res.Right, i)
			res.RightRect = union2(res.RightRect, entries[i])
		}
	}
	return res, nil
}

func waste(a, b Rect) float64 {
	return union2(a, b).Area() - a.Area() - b.Area()
}

// Compress translates a stored history into the leaf key rectangle the index
// keeps internally.
func Compress(h *History) (Rect, error) {
	return FromHistory(h)
}

// Decompress translates an index key back into the rectangle form used by
// the primitives. Keys are stored as rectangles already, so this is the
// identity; it exists so the host's compress/decompress adapter pair is
// complete.
func Decompress(key Rect) Rect {
	return key
}
