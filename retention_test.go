package chronoval

import (
	"testing"
	"time"
)

func buildHistory(t *testing.T, entries ...Entry) *History {
	t.Helper()
	var h *History
	var err error
	for _, e := range entries {
		h, err = Append(h, e.Value, e.Timestamp, Limits{})
		if err != nil {
			t.Fatal(err)
		}
	}
	return h
}

func TestEnforceMaxEntriesKeepsMostRecent(t *testing.T) {
	h := buildHistory(t,
		Entry{1, 100}, Entry{2, 200}, Entry{3, 300}, Entry{4, 400}, Entry{5, 500})

	trimmed := EnforceMaxEntries(h, 3)
	if trimmed.Len() != 3 {
		t.Fatalf("Len = %d, want 3", trimmed.Len())
	}
	want := []Entry{{3, 300}, {4, 400}, {5, 500}}
	for i, w := range want {
		if trimmed.At(i) != w {
			t.Errorf("entry %d = %+v, want %+v", i, trimmed.At(i), w)
		}
	}
	// Capacity is exact, no slack reserved for trimmed buffers.
	if trimmed.Cap() != 3 {
		t.Errorf("trimmed capacity = %d, want 3", trimmed.Cap())
	}
	// Input snapshot unchanged.
	if h.Len() != 5 {
		t.Errorf("input snapshot Len = %d, want 5", h.Len())
	}
}

func TestEnforceMaxEntriesCompliantNoOp(t *testing.T) {
	h := buildHistory(t, Entry{1, 100}, Entry{2, 200})
	if got := EnforceMaxEntries(h, 5); got != h {
		t.Error("compliant history should be returned unchanged")
	}
}

func TestEnforceMaxEntriesIdempotent(t *testing.T) {
	h := buildHistory(t,
		Entry{1, 100}, Entry{2, 200}, Entry{3, 300}, Entry{4, 400}, Entry{5, 500})

	once := EnforceMaxEntries(h, 3)
	twice := EnforceMaxEntries(once, 3)
	if twice != once {
		t.Error("second enforcement should be the identity")
	}
}

func TestEnforceMaxAge(t *testing.T) {
	now := time.Unix(0, 10_000)
	h := buildHistory(t,
		Entry{1, 1000}, Entry{2, 4000}, Entry{3, 7000}, Entry{4, 9000})

	trimmed := EnforceMaxAge(h, 5000*time.Nanosecond, now)
	// cutoff = 5000; entries with timestamp > 5000 survive.
	if trimmed.Len() != 2 {
		t.Fatalf("Len = %d, want 2", trimmed.Len())
	}
	if trimmed.At(0).Timestamp != 7000 {
		t.Errorf("first surviving timestamp = %d, want 7000", trimmed.At(0).Timestamp)
	}
	if trimmed.Cap() != 2 {
		t.Errorf("trimmed capacity = %d, want 2", trimmed.Cap())
	}
}

func TestEnforceMaxAgeCompliantNoOp(t *testing.T) {
	now := time.Unix(0, 10_000)
	h := buildHistory(t, Entry{1, 8000}, Entry{2, 9000})
	if got := EnforceMaxAge(h, 5000*time.Nanosecond, now); got != h {
		t.Error("compliant history should be returned unchanged")
	}
}

func TestRetentionRecomputesValueBounds(t *testing.T) {
	h := buildHistory(t, Entry{-100, 100}, Entry{5, 200}, Entry{7, 300})

	trimmed := EnforceMaxEntries(h, 2)
	if trimmed.MinValue() != 5 || trimmed.MaxValue() != 7 {
		t.Errorf("bounds = [%d, %d], want [5, 7]",
			trimmed.MinValue(), trimmed.MaxValue())
	}
}

func TestPolicyApplyCombined(t *testing.T) {
	now := time.Unix(0, 10_000)
	h := buildHistory(t,
		Entry{1, 1000}, Entry{2, 6000}, Entry{3, 7000}, Entry{4, 8000}, Entry{5, 9000})

	p := RetentionPolicy{MaxEntries: 3, MaxAge: 4000 * time.Nanosecond}
	trimmed := p.Apply(h, now)
	// Age cutoff 6000 drops the first two entries, count limit is already met.
	if trimmed.Len() != 3 {
		t.Fatalf("Len = %d, want 3", trimmed.Len())
	}
	if trimmed.At(0).Value != 3 {
		t.Errorf("oldest surviving value = %d, want 3", trimmed.At(0).Value)
	}

	if p.Apply(trimmed, now) != trimmed {
		t.Error("policy application should be idempotent")
	}
}

func TestZeroPolicyRetainsEverything(t *testing.T) {
	h := buildHistory(t, Entry{1, 100}, Entry{2, 200})
	var p RetentionPolicy
	if !p.IsZero() {
		t.Error("zero policy should report IsZero")
	}
	if p.Apply(h, time.Now()) != h {
		t.Error("zero policy should be the identity")
	}
}
