// Package progression contains the pure XP, level, and streak arithmetic that
// turns a completed session into progression changes. Everything here is
// stateless and side-effect-free; persistence and atomicity live in the app
// and infra layers.
package progression

import (
	"fmt"
	"math"

	"utme-prep-service/internal/domain"
)

// XP rewards per scoring event.
const (
	CorrectAnswerXP    int64 = 10
	WrongAnswerXP      int64 = 2
	SessionCompleteXP  int64 = 50
	PerfectSessionXP   int64 = 100
	DailyStreakBonusXP int64 = 25
)

// Multiplier returns the XP scale factor for a session mode.
func Multiplier(mode domain.Mode) float64 {
	switch mode {
	case domain.ModeTimed:
		return 1.3
	case domain.ModeMock:
		return 1.5
	default:
		return 1.0
	}
}

// SessionXP computes the XP earned by one session, before any streak bonus.
//
// The flat completion bonus is awarded even when zero questions were answered.
// That matches the shipped behavior of the platform; whether empty sessions
// should earn XP is a product question, so the behavior is preserved here and
// pinned by a test rather than silently changed.
func SessionXP(correct, incorrect int, mode domain.Mode, perfect bool) (int64, error) {
	if correct < 0 || incorrect < 0 {
		return 0, fmt.Errorf("%w: answer counts must be non-negative (correct=%d incorrect=%d)",
			domain.ErrInvalidInput, correct, incorrect)
	}

	base := int64(correct)*CorrectAnswerXP + int64(incorrect)*WrongAnswerXP
	base += SessionCompleteXP
	if perfect {
		base += PerfectSessionXP
	}

	return int64(math.Floor(float64(base) * Multiplier(mode))), nil
}
