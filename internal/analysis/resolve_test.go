package analysis

import (
	"testing"

	"thematica/internal/util/jsonutil"
)

func idx(v int) jsonutil.FlexInt { return jsonutil.FlexInt{Val: v, OK: true} }

func TestResolveByIndex(t *testing.T) {
	r := NewResolver(testThemes())
	got := r.Resolve(RawAssignment{
		UnitID:   "u1",
		ThemeIdx: idx(1),
		SubIdx:   idx(0),
	})
	if got.ThemeID != "t2" || got.SubThemeID != "s2-1" {
		t.Fatalf("resolved %s/%s, want t2/s2-1", got.ThemeID, got.SubThemeID)
	}
	if !got.StrictFit {
		t.Fatalf("strictFit should default true on a clean resolution")
	}
	if r.FallbackCount() != 0 {
		t.Fatalf("no fallback expected, count = %d", r.FallbackCount())
	}
}

func TestResolveByStringID(t *testing.T) {
	r := NewResolver(testThemes())
	got := r.Resolve(RawAssignment{UnitID: "u1", ThemeID: "t1", SubID: "s1-2"})
	if got.ThemeID != "t1" || got.SubThemeID != "s1-2" {
		t.Fatalf("resolved %s/%s, want t1/s1-2", got.ThemeID, got.SubThemeID)
	}
}

func TestResolveAlternateKeys(t *testing.T) {
	r := NewResolver(testThemes())
	got := r.Resolve(RawAssignment{AltID: "u9", ThemeID2: "t2", SubID2: "s2-1"})
	if got.UnitID != "u9" {
		t.Fatalf("unitId = %q, want u9", got.UnitID)
	}
	if got.ThemeID != "t2" || got.SubThemeID != "s2-1" {
		t.Fatalf("resolved %s/%s, want t2/s2-1", got.ThemeID, got.SubThemeID)
	}
}

func TestResolveFallbackIsDeterministic(t *testing.T) {
	r := NewResolver(testThemes())
	strict := true
	got := r.Resolve(RawAssignment{
		UnitID:    "u1",
		ThemeIdx:  idx(99),
		SubIdx:    idx(99),
		StrictFit: &strict,
	})
	if got.ThemeID != "t1" || got.SubThemeID != "s1-1" {
		t.Fatalf("fallback = %s/%s, want t1/s1-1", got.ThemeID, got.SubThemeID)
	}
	if got.StrictFit {
		t.Fatalf("fallback must clear strictFit")
	}
	if r.FallbackCount() != 1 {
		t.Fatalf("fallback count = %d, want 1", r.FallbackCount())
	}
}

func TestResolveThemeFallbackForcesSubFallback(t *testing.T) {
	r := NewResolver(testThemes())
	// The sub index is valid in isolation but was chosen relative to a
	// hallucinated theme, so it must not survive the theme fallback.
	got := r.Resolve(RawAssignment{UnitID: "u1", ThemeID: "nonsense", SubIdx: idx(1)})
	if got.ThemeID != "t1" || got.SubThemeID != "s1-1" {
		t.Fatalf("fallback = %s/%s, want t1/s1-1", got.ThemeID, got.SubThemeID)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	r := NewResolver(testThemes())
	first := r.Resolve(RawAssignment{UnitID: "u1", ThemeIdx: idx(99)})
	count := r.FallbackCount()

	again := r.Resolve(RawAssignment{
		UnitID: jsonutil.FlexString(first.UnitID),
		ThemeID: jsonutil.FlexString(first.ThemeID),
		SubID:   jsonutil.FlexString(first.SubThemeID),
	})
	if again.ThemeID != first.ThemeID || again.SubThemeID != first.SubThemeID {
		t.Fatalf("re-resolving a resolved assignment changed it: %+v -> %+v", first, again)
	}
	if r.FallbackCount() != count {
		t.Fatalf("re-resolving must not count a new fallback")
	}
}

func TestResolvePreservesExplicitStrictFitFalse(t *testing.T) {
	r := NewResolver(testThemes())
	loose := false
	got := r.Resolve(RawAssignment{UnitID: "u1", ThemeIdx: idx(0), SubIdx: idx(0), StrictFit: &loose})
	if got.StrictFit {
		t.Fatalf("explicit strictFit=false must survive resolution")
	}
}

func TestRawAssignmentUnitSkipsNullLiterals(t *testing.T) {
	raw := RawAssignment{UnitID: "null", AltID: "", UID: "u3"}
	if got := raw.Unit(); got != "u3" {
		t.Fatalf("Unit() = %q, want u3", got)
	}
}
