package chronoval

import (
	"fmt"
	"testing"
)

func TestRTreeInsertAndSearch(t *testing.T) {
	tree := NewRTree()

	// sensor-0 held 0 at t=1000, 100 at t=2000.
	// sensor-1 held 1 at t=1000, 101 at t=2000. And so on.
	for i := int64(0); i < 10; i++ {
		h := buildHistory(t, Entry{i, 1000}, Entry{i + 100, 2000})
		if err := tree.Insert(fmt.Sprintf("sensor-%d", i), h); err != nil {
			t.Fatal(err)
		}
	}
	if tree.Size() != 10 {
		t.Fatalf("Size = %d, want 10", tree.Size())
	}

	// Exactly one value held 3 at t=1500.
	keys := tree.Search(PointQuery{Ts: 1500, Value: 3})
	if len(keys) != 1 || keys[0] != "sensor-3" {
		t.Errorf("Search(1500, 3) = %v, want [sensor-3]", keys)
	}

	// After t=2000 the same query value matches nothing: sensor-3 moved on.
	keys = tree.Search(PointQuery{Ts: 2500, Value: 3})
	if len(keys) != 0 {
		t.Errorf("Search(2500, 3) = %v, want none", keys)
	}

	// The current value matches at any later time, the rectangle is open-ended.
	keys = tree.Search(PointQuery{Ts: 999_999, Value: 103})
	if len(keys) != 1 || keys[0] != "sensor-3" {
		t.Errorf("Search(999999, 103) = %v, want [sensor-3]", keys)
	}
}

func TestRTreeRecheckFiltersFalsePositives(t *testing.T) {
	tree := NewRTree()

	// Value span [0, 100] covers 50 geometrically, but the history never
	// held 50; the leaf recheck must reject it.
	h := buildHistory(t, Entry{0, 1000}, Entry{100, 2000})
	if err := tree.Insert("jumpy", h); err != nil {
		t.Fatal(err)
	}

	if keys := tree.Search(PointQuery{Ts: 1500, Value: 50}); len(keys) != 0 {
		t.Errorf("Search = %v, want none: rectangle hit must be rechecked", keys)
	}
	if keys := tree.Search(PointQuery{Ts: 1500, Value: 0}); len(keys) != 1 {
		t.Errorf("Search = %v, want [jumpy]", keys)
	}
}

func TestRTreeQueryBeforeFirstEntry(t *testing.T) {
	tree := NewRTree()
	h := buildHistory(t, Entry{5, 1000})
	if err := tree.Insert("late", h); err != nil {
		t.Fatal(err)
	}

	if keys := tree.Search(PointQuery{Ts: 500, Value: 5}); len(keys) != 0 {
		t.Errorf("Search before first entry = %v, want none", keys)
	}
}

func TestRTreeSplitsUnderLoad(t *testing.T) {
	tree := NewRTree()

	// Enough entries to force several node splits.
	for i := int64(0); i < 200; i++ {
		h := buildHistory(t, Entry{i * 3, 1000 + i*17})
		if err := tree.Insert(fmt.Sprintf("k%03d", i), h); err != nil {
			t.Fatal(err)
		}
	}
	if tree.Size() != 200 {
		t.Fatalf("Size = %d, want 200", tree.Size())
	}

	// Every stored value is still findable at a time after its assignment.
	for i := int64(0); i < 200; i++ {
		q := PointQuery{Ts: 1000 + i*17 + 1, Value: i * 3}
		keys := tree.Search(q)
		want := fmt.Sprintf("k%03d", i)
		found := false
		for _, k := range keys {
			if k == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("Search(%+v) = %v, missing %s", q, keys, want)
		}
	}
}

func TestRTreeReplaceKey(t *testing.T) {
	tree := NewRTree()

	h1 := buildHistory(t, Entry{1, 1000})
	if err := tree.Insert("k", h1); err != nil {
		t.Fatal(err)
	}
	h2, err := Append(h1, 2, 2000, Limits{})
	if err != nil {
		t.Fatal(err)
	}
	if err := tree.Insert("k", h2); err != nil {
		t.Fatal(err)
	}

	if tree.Size() != 1 {
		t.Fatalf("Size = %d after replace, want 1", tree.Size())
	}
	if keys := tree.Search(PointQuery{Ts: 2500, Value: 2}); len(keys) != 1 {
		t.Errorf("Search = %v, want [k]", keys)
	}
}
