package progression

import (
	"testing"
	"time"
)

var streakNow = time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC)

func TestEvaluateStreakFirstSession(t *testing.T) {
	d := EvaluateStreak(nil, streakNow)
	if !d.ShouldIncrement || d.ShouldReset || d.Bonus != 0 {
		t.Fatalf("first session should start the streak with no bonus, got %+v", d)
	}
}

func TestEvaluateStreakSameDay(t *testing.T) {
	earlier := streakNow.Add(-6 * time.Hour)
	d := EvaluateStreak(&earlier, streakNow)
	if d.ShouldIncrement || d.ShouldReset || d.Bonus != 0 {
		t.Fatalf("same-day activity must not double-count, got %+v", d)
	}
}

func TestEvaluateStreakConsecutiveDay(t *testing.T) {
	yesterday := streakNow.AddDate(0, 0, -1)
	d := EvaluateStreak(&yesterday, streakNow)
	if !d.ShouldIncrement || d.ShouldReset {
		t.Fatalf("consecutive day should increment, got %+v", d)
	}
	if d.Bonus != DailyStreakBonusXP {
		t.Fatalf("expected bonus %d, got %d", DailyStreakBonusXP, d.Bonus)
	}
}

func TestEvaluateStreakBroken(t *testing.T) {
	threeDaysAgo := streakNow.AddDate(0, 0, -3)
	d := EvaluateStreak(&threeDaysAgo, streakNow)
	if d.ShouldIncrement || !d.ShouldReset || d.Bonus != 0 {
		t.Fatalf("missed days should reset with no bonus, got %+v", d)
	}
}

// Late-night activity one calendar day apart still counts as consecutive:
// only UTC midnights matter, not the 24h distance.
func TestEvaluateStreakDayBoundary(t *testing.T) {
	lastActive := time.Date(2025, time.March, 9, 23, 59, 0, 0, time.UTC)
	now := time.Date(2025, time.March, 10, 0, 1, 0, 0, time.UTC)
	d := EvaluateStreak(&lastActive, now)
	if !d.ShouldIncrement || d.Bonus != DailyStreakBonusXP {
		t.Fatalf("expected consecutive-day increment across midnight, got %+v", d)
	}
}

// A clock that somehow runs backwards (replicas with skew) is treated like
// same-day activity rather than a reset.
func TestEvaluateStreakClockSkew(t *testing.T) {
	future := streakNow.Add(12 * time.Hour)
	d := EvaluateStreak(&future, streakNow)
	if d.ShouldIncrement || d.ShouldReset {
		t.Fatalf("future lastActive should be a no-op, got %+v", d)
	}
}
