package progression

import "math"

// LevelProgress describes where a given XP total sits on the level curve.
// XPForCurrentLevel and XPForNextLevel are cumulative thresholds.
type LevelProgress struct {
	CurrentLevel       int     `json:"currentLevel"`
	NextLevel          int     `json:"nextLevel"`
	XPForCurrentLevel  int64   `json:"xpForCurrentLevel"`
	XPForNextLevel     int64   `json:"xpForNextLevel"`
	XPProgress         int64   `json:"xpProgress"`
	XPNeeded           int64   `json:"xpNeeded"`
	ProgressPercentage float64 `json:"progressPercentage"`
}

// XPForLevel returns the incremental XP cost to advance from level-1 to
// level: floor(100 * 1.5^(level-1)). Levels at or below 1 cost nothing.
// The curve is exponential and uncapped; int64 keeps it overflow-free for
// any level a human can reach (the cost crosses math.MaxInt64 around level 95,
// far beyond cumulative XP any real account accrues).
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	return int64(math.Floor(100 * math.Pow(1.5, float64(level-1))))
}

// LevelFromXP returns the largest level whose cumulative threshold is at or
// below totalXP. Crossing a threshold exactly lands on the new level:
// the cumulative cost of level 2 is 150, so 149 XP is level 1 and 150 is 2.
func LevelFromXP(totalXP int64) int {
	level := 1
	var cumulative int64
	for {
		step := XPForLevel(level + 1)
		next := cumulative + step
		// Guard against the exponential curve overflowing int64 on absurd
		// XP totals; stop climbing once the arithmetic stops making sense.
		if step <= 0 || next < cumulative || next > totalXP {
			return level
		}
		cumulative = next
		level++
	}
}

// ProgressTo reports progress from totalXP toward the next level boundary.
func ProgressTo(totalXP int64) LevelProgress {
	currentLevel := LevelFromXP(totalXP)
	nextLevel := currentLevel + 1

	var xpForCurrentLevel int64
	for l := 2; l <= currentLevel; l++ {
		xpForCurrentLevel += XPForLevel(l)
	}
	xpForNextLevel := xpForCurrentLevel + XPForLevel(nextLevel)

	xpProgress := totalXP - xpForCurrentLevel
	pct := float64(xpProgress) / float64(XPForLevel(nextLevel)) * 100
	pct = math.Min(100, math.Max(0, pct))

	return LevelProgress{
		CurrentLevel:       currentLevel,
		NextLevel:          nextLevel,
		XPForCurrentLevel:  xpForCurrentLevel,
		XPForNextLevel:     xpForNextLevel,
		XPProgress:         xpProgress,
		XPNeeded:           xpForNextLevel - totalXP,
		ProgressPercentage: pct,
	}
}
