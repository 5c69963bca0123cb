package progression

import (
	"math"
	"testing"
)

func newTestTracker(t *testing.T) *LevelTracker {
	t.Helper()
	lt, err := NewLevelTracker(nil)
	if err != nil {
		t.Fatalf("NewLevelTracker: %v", err)
	}
	return lt
}

func TestLevelTracker_StartsAtLevelOne(t *testing.T) {
	lt := newTestTracker(t)
	if lt.Level() != 1 || lt.Experience() != 0 {
		t.Errorf("level=%d xp=%d, want 1/0", lt.Level(), lt.Experience())
	}
	if lt.XPToNextLevel() != 10_000 {
		t.Errorf("XPToNextLevel() = %d, want 10000", lt.XPToNextLevel())
	}
}

func TestLevelTracker_AddExperience(t *testing.T) {
	lt := newTestTracker(t)

	if rec := lt.AddExperience(9_999); rec != nil {
		t.Fatalf("unexpected level-up at 9999 XP: %+v", rec)
	}
	rec := lt.AddExperience(1)
	if rec == nil {
		t.Fatal("expected level-up at 10000 XP")
	}
	if rec.Level != 2 {
		t.Errorf("Level = %d, want 2", rec.Level)
	}
	if rec.Bonus.Credits != 2_000 {
		t.Errorf("Bonus.Credits = %d, want 2000", rec.Bonus.Credits)
	}
}

func TestLevelTracker_MultiLevelCrossingReportsHighest(t *testing.T) {
	lt := newTestTracker(t)
	rec := lt.AddExperience(45_000)
	if rec == nil || rec.Level != 4 {
		t.Fatalf("AddExperience(45000) = %+v, want level 4", rec)
	}
}

func TestLevelTracker_NonPositiveIgnored(t *testing.T) {
	lt := newTestTracker(t)
	for _, n := range []int64{0, -100} {
		if rec := lt.AddExperience(n); rec != nil {
			t.Errorf("AddExperience(%d) = %+v, want nil", n, rec)
		}
	}
	if lt.Experience() != 0 {
		t.Errorf("Experience() = %d, want 0", lt.Experience())
	}
}

func TestDefaultLevelThresholds(t *testing.T) {
	if n := len(DefaultLevelThresholds); n != 20 {
		t.Fatalf("levels = %d, want 20", n)
	}
	if got := DefaultLevelThresholds[19]; got != 2_621_440_000 {
		t.Errorf("level 20 threshold = %d", got)
	}
}

func TestLevelTracker_SaturatesAtMaxInt64(t *testing.T) {
	lt := newTestTracker(t)
	lt.AddExperience(500)

	rec := lt.AddExperience(math.MaxInt64)
	if lt.Experience() != math.MaxInt64 {
		t.Fatalf("Experience() = %d, want MaxInt64", lt.Experience())
	}
	if rec == nil || rec.Level != lt.MaxLevel() {
		t.Errorf("level-up = %+v, want max level %d", rec, lt.MaxLevel())
	}
	if lt.XPToNextLevel() != 0 {
		t.Errorf("XPToNextLevel() = %d, want 0", lt.XPToNextLevel())
	}
	if rec := lt.AddExperience(1); rec != nil || lt.Experience() != math.MaxInt64 {
		t.Errorf("AddExperience on a full tracker: rec=%+v xp=%d", rec, lt.Experience())
	}
}

func TestLevelTracker_MaxLevel(t *testing.T) {
	lt := newTestTracker(t)
	lt.AddExperience(5_000_000_000)
	if lt.Level() != lt.MaxLevel() {
		t.Errorf("Level() = %d, want max %d", lt.Level(), lt.MaxLevel())
	}
	if lt.XPToNextLevel() != 0 {
		t.Errorf("XPToNextLevel() at max = %d, want 0", lt.XPToNextLevel())
	}
	if rec := lt.AddExperience(1); rec != nil {
		t.Errorf("level-up past max: %+v", rec)
	}
}

func TestLevelTracker_Restore(t *testing.T) {
	lt := newTestTracker(t)
	lt.Restore(25_000)
	if lt.Level() != 3 {
		t.Errorf("Level() after Restore(25000) = %d, want 3", lt.Level())
	}
	lt.Restore(-5)
	if lt.Experience() != 0 || lt.Level() != 1 {
		t.Errorf("Restore(-5): xp=%d level=%d", lt.Experience(), lt.Level())
	}
}

func TestNewLevelTracker_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		thresholds []int64
	}{
		{"first not zero", []int64{5, 10}},
		{"not increasing", []int64{0, 10, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLevelTracker(tt.thresholds); err == nil {
				t.Error("expected error")
			}
		})
	}
}
