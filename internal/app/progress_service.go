package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"utme-prep-service/internal/domain"
	"utme-prep-service/internal/progression"
)

// ProgressStore persists users and their progression state. Apply must run
// the whole read-modify-write atomically per user: two concurrent session
// completions for the same user must serialize, and the progress update and
// session record must commit together or not at all.
type ProgressStore interface {
	SyncUser(ctx context.Context, user domain.User) (domain.Progress, error)
	User(ctx context.Context, userID string) (domain.User, error)
	Progress(ctx context.Context, userID string) (domain.Progress, error)
	Apply(ctx context.Context, userID string, fn func(domain.Progress) (domain.Progress, domain.PracticeSession, error)) (domain.Progress, error)
	RecentSessions(ctx context.Context, userID string, limit int) ([]domain.PracticeSession, error)
}

// LeaderboardStore ranks users by total XP.
type LeaderboardStore interface {
	Record(ctx context.Context, entry domain.LeaderboardEntry) error
	Top(ctx context.Context, n int) (domain.Leaderboard, error)
	Rank(ctx context.Context, userID string) (int, error)
}

// ProgressService owns the session-completion use case: scoring a finished
// session, applying it to the user's progression, and fanning the new
// standings out to leaderboard subscribers.
type ProgressService struct {
	store       ProgressStore
	leaderboard LeaderboardStore
	feed        *LeaderboardFeed
	topN        int
	now         func() time.Time
}

func NewProgressService(store ProgressStore, leaderboard LeaderboardStore, feed *LeaderboardFeed, topN int) *ProgressService {
	return &ProgressService{
		store:       store,
		leaderboard: leaderboard,
		feed:        feed,
		topN:        topN,
		now:         time.Now,
	}
}

// NewProgressServiceWithClock is test-only for deterministic timestamps.
func NewProgressServiceWithClock(store ProgressStore, leaderboard LeaderboardStore, feed *LeaderboardFeed, topN int, now func() time.Time) *ProgressService {
	s := NewProgressService(store, leaderboard, feed, topN)
	s.now = now
	return s
}

// SyncUser upserts the user record, creating default progression state
// (0 XP, level 1, no streak) on first contact.
func (s *ProgressService) SyncUser(ctx context.Context, user domain.User) (domain.Progress, error) {
	if user.ID == "" {
		return domain.Progress{}, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	return s.store.SyncUser(ctx, user)
}

// CompleteSession scores one finished run and applies it to the user's
// progression atomically. The returned update mirrors what the session
// endpoint reports to clients.
func (s *ProgressService) CompleteSession(ctx context.Context, userID string, result domain.SessionResult) (domain.ProgressionUpdate, error) {
	if result.CorrectCount < 0 || result.IncorrectCount < 0 || result.QuestionsCount < 0 {
		return domain.ProgressionUpdate{}, fmt.Errorf("%w: counts must be non-negative", domain.ErrInvalidInput)
	}

	now := s.now()
	var update domain.ProgressionUpdate

	newProgress, err := s.store.Apply(ctx, userID, func(p domain.Progress) (domain.Progress, domain.PracticeSession, error) {
		xpEarned, err := progression.SessionXP(result.CorrectCount, result.IncorrectCount, result.Mode, result.IsPerfect())
		if err != nil {
			return domain.Progress{}, domain.PracticeSession{}, err
		}

		decision := progression.EvaluateStreak(p.LastActiveDate, now)
		if decision.ShouldIncrement {
			xpEarned += decision.Bonus
		}

		newTotalXP := p.TotalXP + xpEarned
		newLevel := progression.LevelFromXP(newTotalXP)

		newStreak := p.CurrentStreak
		switch {
		case decision.ShouldIncrement:
			newStreak++
		case decision.ShouldReset:
			// A broken streak still counts today as day one of a new one.
			newStreak = 1
		}

		update = domain.ProgressionUpdate{
			XPEarned:          xpEarned,
			LeveledUp:         newLevel > p.Level,
			NewLevel:          newLevel,
			NewTotalXP:        newTotalXP,
			NewStreak:         newStreak,
			StreakIncremented: decision.ShouldIncrement,
			StreakBonus:       decision.Bonus,
		}

		active := now
		next := p
		next.TotalXP = newTotalXP
		next.Level = newLevel
		next.CurrentStreak = newStreak
		next.LastActiveDate = &active
		next.QuestionsAnswered += result.QuestionsCount
		next.CorrectAnswers += result.CorrectCount

		record := domain.PracticeSession{
			ID:               uuid.NewString(),
			UserID:           userID,
			Subject:          result.Subject,
			Mode:             result.Mode,
			QuestionsCount:   result.QuestionsCount,
			CorrectCount:     result.CorrectCount,
			IncorrectCount:   result.IncorrectCount,
			XPEarned:         xpEarned,
			TimeSpentSeconds: result.TimeSpentSeconds,
			CreatedAt:        now,
		}
		return next, record, nil
	})
	if err != nil {
		return domain.ProgressionUpdate{}, err
	}

	// Leaderboard refresh is best-effort: a cache hiccup must not fail a
	// session the user already finished.
	s.publishStandings(ctx, newProgress)

	return update, nil
}

// UserStats is the composite returned by the stats endpoint.
type UserStats struct {
	User           domain.User               `json:"user"`
	Progress       domain.Progress           `json:"progress"`
	Accuracy       int                       `json:"accuracy"`
	LevelInfo      progression.LevelProgress `json:"levelInfo"`
	Rank           int                       `json:"rank,omitempty"`
	RecentSessions []domain.PracticeSession  `json:"recentSessions"`
}

// Stats assembles the profile view: progression, level curve position,
// accuracy, rank, and recent sessions.
func (s *ProgressService) Stats(ctx context.Context, userID string) (UserStats, error) {
	user, err := s.store.User(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}
	progress, err := s.store.Progress(ctx, userID)
	if err != nil {
		return UserStats{}, err
	}
	sessions, err := s.store.RecentSessions(ctx, userID, 10)
	if err != nil {
		return UserStats{}, err
	}

	rank := 0
	if s.leaderboard != nil {
		if r, err := s.leaderboard.Rank(ctx, userID); err == nil {
			rank = r
		}
	}

	return UserStats{
		User:           user,
		Progress:       progress,
		Accuracy:       progress.Accuracy(),
		LevelInfo:      progression.ProgressTo(progress.TotalXP),
		Rank:           rank,
		RecentSessions: sessions,
	}, nil
}

// Leaderboard returns the current top-N standings.
func (s *ProgressService) Leaderboard(ctx context.Context, limit int) (domain.Leaderboard, error) {
	if limit <= 0 || limit > s.topN {
		limit = s.topN
	}
	return s.leaderboard.Top(ctx, limit)
}

func (s *ProgressService) publishStandings(ctx context.Context, p domain.Progress) {
	if s.leaderboard == nil {
		return
	}

	entry := domain.LeaderboardEntry{
		UserID:  p.UserID,
		TotalXP: p.TotalXP,
		Level:   p.Level,
	}
	if user, err := s.store.User(ctx, p.UserID); err == nil {
		entry.Username = user.Username
	}
	if err := s.leaderboard.Record(ctx, entry); err != nil {
		log.Printf("leaderboard record failed for %s: %v", p.UserID, err)
		return
	}

	if s.feed == nil {
		return
	}
	top, err := s.leaderboard.Top(ctx, s.topN)
	if err != nil {
		log.Printf("leaderboard snapshot failed: %v", err)
		return
	}
	s.feed.Publish(top)
}
