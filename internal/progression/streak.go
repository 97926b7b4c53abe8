package progression

import "time"

// StreakDecision says what a session completion does to the daily streak.
// Exactly one of ShouldIncrement/ShouldReset is set, or neither (same-day
// activity changes nothing).
type StreakDecision struct {
	ShouldIncrement bool
	ShouldReset     bool
	// Bonus is the XP awarded for continuing the streak. Zero unless
	// ShouldIncrement fired on a consecutive day.
	Bonus int64
}

// EvaluateStreak compares the last active date with now at calendar-day
// granularity. Both timestamps are normalized to UTC midnight; UTC is the
// single timezone policy for streak accounting so two app servers in
// different regions agree on day boundaries.
//
// A gap of two or more days resets the streak; the caller sets the streak to
// 1 (not 0) because today still counts as day one of a new streak.
func EvaluateStreak(lastActive *time.Time, now time.Time) StreakDecision {
	if lastActive == nil {
		// First-ever session: streak starts, no bonus yet.
		return StreakDecision{ShouldIncrement: true}
	}

	daysDiff := int(midnightUTC(now).Sub(midnightUTC(*lastActive)).Hours() / 24)
	switch {
	case daysDiff <= 0:
		return StreakDecision{}
	case daysDiff == 1:
		return StreakDecision{ShouldIncrement: true, Bonus: DailyStreakBonusXP}
	default:
		return StreakDecision{ShouldReset: true}
	}
}

func midnightUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
