package chronoval

import (
	"errors"
	"testing"
)

func mustAppend(t *testing.T, h *History, value, ts int64) *History {
	t.Helper()
	next, err := Append(h, value, ts, Limits{})
	if err != nil {
		t.Fatalf("Append(%d, %d): %v", value, ts, err)
	}
	return next
}

func TestAppendCountAndOrder(t *testing.T) {
	var h *History
	for i := int64(1); i <= 20; i++ {
		h = mustAppend(t, h, i*10, i*1000)
		if h.Len() != int(i) {
			t.Fatalf("after %d appends Len = %d", i, h.Len())
		}
	}

	prev := int64(-1)
	for i := 0; i < h.Len(); i++ {
		if ts := h.At(i).Timestamp; ts < prev {
			t.Fatalf("timestamps out of order at %d: %d < %d", i, ts, prev)
		} else {
			prev = ts
		}
	}
}

func TestAppendCurrentValue(t *testing.T) {
	var h *History
	for _, v := range []int64{7, -3, 42, 0, 99} {
		h = mustAppend(t, h, v, int64(h.Len()+1)*100)
		cur, ok := h.Current()
		if !ok || cur != v {
			t.Fatalf("Current = (%d, %v), want (%d, true)", cur, ok, v)
		}
	}
}

func TestCurrentEmpty(t *testing.T) {
	var h *History
	if _, ok := h.Current(); ok {
		t.Error("nil history should have no current value")
	}
}

func TestCopyOnWriteSnapshots(t *testing.T) {
	h1 := mustAppend(t, nil, 1, 100)
	h2 := mustAppend(t, h1, 2, 200)
	h3 := mustAppend(t, h2, 3, 300)

	// Earlier snapshots keep their contents after later writes.
	if h1.Len() != 1 || h2.Len() != 2 || h3.Len() != 3 {
		t.Fatalf("snapshot lengths = %d, %d, %d", h1.Len(), h2.Len(), h3.Len())
	}
	if v, _ := h1.Current(); v != 1 {
		t.Errorf("h1 current = %d after later appends", v)
	}
	if v, _ := h2.Current(); v != 2 {
		t.Errorf("h2 current = %d after later appends", v)
	}
}

func TestCapacityDoubling(t *testing.T) {
	limits := Limits{InitialCapacity: 2}
	h, err := Append(nil, 1, 1, limits)
	if err != nil {
		t.Fatal(err)
	}
	if h.Cap() != 2 {
		t.Fatalf("initial capacity = %d, want 2", h.Cap())
	}

	caps := []int{2, 4, 4, 8, 8, 8, 8, 16}
	for i, want := range caps {
		h, err = Append(h, int64(i), int64(i+2), limits)
		if err != nil {
			t.Fatal(err)
		}
		if h.Cap() != want {
			t.Errorf("after %d entries capacity = %d, want %d", h.Len(), h.Cap(), want)
		}
	}
}

func TestAppendSizeCeiling(t *testing.T) {
	// Room for exactly 4 entries; the doubling to 8 must fail.
	limits := Limits{InitialCapacity: 2, MaxBufferBytes: 4 * entrySize}

	var h *History
	var err error
	for i := int64(0); i < 4; i++ {
		h, err = Append(h, i, i*10, limits)
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	before := h.Len()
	_, err = Append(h, 99, 1000, limits)
	if !errors.Is(err, ErrBufferTooLarge) {
		t.Fatalf("err = %v, want ErrBufferTooLarge", err)
	}

	// The prior snapshot is untouched and still readable.
	if h.Len() != before {
		t.Errorf("failed append modified the buffer: Len = %d", h.Len())
	}
	if v, ok := h.Current(); !ok || v != 3 {
		t.Errorf("prior snapshot current = (%d, %v), want (3, true)", v, ok)
	}
}

func TestInsertSortedBackfill(t *testing.T) {
	h := mustAppend(t, nil, 10, 1000)
	h = mustAppend(t, h, 30, 3000)

	h2, err := InsertSorted(h, 20, 2000, Limits{})
	if err != nil {
		t.Fatal(err)
	}

	want := []Entry{{10, 1000}, {20, 2000}, {30, 3000}}
	for i, w := range want {
		if h2.At(i) != w {
			t.Errorf("entry %d = %+v, want %+v", i, h2.At(i), w)
		}
	}
	// Original snapshot unchanged.
	if h.Len() != 2 {
		t.Errorf("original snapshot Len = %d, want 2", h.Len())
	}
}

func TestAppendOutOfOrderRoutesToSortedInsert(t *testing.T) {
	h := mustAppend(t, nil, 10, 1000)
	h = mustAppend(t, h, 30, 3000)
	h = mustAppend(t, h, 20, 2000)

	if h.At(1).Value != 20 {
		t.Errorf("out-of-order append not sorted: entry 1 = %+v", h.At(1))
	}
	if v, _ := h.Current(); v != 30 {
		t.Errorf("current = %d, want 30", v)
	}
}

func TestRunningValueBounds(t *testing.T) {
	h := mustAppend(t, nil, 5, 100)
	h = mustAppend(t, h, -7, 200)
	h = mustAppend(t, h, 12, 300)

	if h.MinValue() != -7 || h.MaxValue() != 12 {
		t.Errorf("bounds = [%d, %d], want [-7, 12]", h.MinValue(), h.MaxValue())
	}
}

func TestIteratorRestartable(t *testing.T) {
	h := mustAppend(t, nil, 1, 100)
	h = mustAppend(t, h, 2, 200)
	h = mustAppend(t, h, 3, 300)

	it := h.Iterator()
	for pass := 0; pass < 2; pass++ {
		var got []int64
		for e, ok := it.Next(); ok; e, ok = it.Next() {
			got = append(got, e.Value)
		}
		if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
			t.Fatalf("pass %d: got %v", pass, got)
		}
		it.Reset()
	}
}
