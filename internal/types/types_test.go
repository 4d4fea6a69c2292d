package types

import "testing"

func TestItemTypeValid(t *testing.T) {
	for _, tt := range []ItemType{ItemProject, ItemMilestone, ItemTask} {
		if !tt.Valid() {
			t.Errorf("%q should be valid", tt)
		}
	}
	if ItemType("epic").Valid() {
		t.Error("\"epic\" should not be valid")
	}
}

func TestStatusIsTerminal(t *testing.T) {
	terminal := []Status{StatusDone, StatusCanceled}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%q should be terminal", s)
		}
	}
	nonTerminal := []Status{StatusBacklog, StatusReady, StatusInProgress, StatusBlocked, StatusReview}
	for _, s := range nonTerminal {
		if s.IsTerminal() {
			t.Errorf("%q should not be terminal", s)
		}
	}
}

func TestNormalizeDependencyType(t *testing.T) {
	cases := []struct {
		raw  string
		want DependencyType
		ok   bool
	}{
		{"", DepFS, true},
		{"fs", DepFS, true},
		{"SS", DepSS, true},
		{"ff", DepFF, true},
		{"sf", DepSF, true},
		{"bogus", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeDependencyType(c.raw)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("NormalizeDependencyType(%q) = (%q, %v), want (%q, %v)", c.raw, got, ok, c.want, c.ok)
		}
	}
}

func TestNormalizeArchiveFilter(t *testing.T) {
	cases := []struct {
		raw  string
		want ArchiveFilter
		ok   bool
	}{
		{"", ArchiveActive, true},
		{"active", ArchiveActive, true},
		{"archived", ArchiveArchived, true},
		{"all", ArchiveAll, true},
		{"nope", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeArchiveFilter(c.raw)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("NormalizeArchiveFilter(%q) = (%q, %v), want (%q, %v)", c.raw, got, ok, c.want, c.ok)
		}
	}
}

func TestEdgeID(t *testing.T) {
	if got, want := EdgeID("a", "b"), "a->b"; got != want {
		t.Errorf("EdgeID(a, b) = %q, want %q", got, want)
	}
}

func TestScheduledBlockEndAt(t *testing.T) {
	b := ScheduledBlock{StartAt: 1000, DurationMinutes: 30}
	if got, want := b.EndAt(), int64(1000+30*60000); got != want {
		t.Errorf("EndAt() = %d, want %d", got, want)
	}
}

func TestBlockerActive(t *testing.T) {
	active := Blocker{ClearedAt: nil}
	if !active.Active() {
		t.Error("blocker with nil ClearedAt should be active")
	}
	cleared := int64(123)
	inactive := Blocker{ClearedAt: &cleared}
	if inactive.Active() {
		t.Error("blocker with non-nil ClearedAt should not be active")
	}
}
