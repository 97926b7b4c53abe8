package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"utme-prep-service/internal/domain"
)

// Leaderboard is an in-memory implementation of app.LeaderboardStore for
// single-instance deployments without Redis.
type Leaderboard struct {
	mu      sync.RWMutex
	entries map[string]domain.LeaderboardEntry
	clock   func() time.Time
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{
		entries: make(map[string]domain.LeaderboardEntry),
		clock:   time.Now,
	}
}

func (l *Leaderboard) Record(_ context.Context, entry domain.LeaderboardEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.Rank = 0
	l.entries[entry.UserID] = entry
	return nil
}

func (l *Leaderboard) Top(_ context.Context, n int) (domain.Leaderboard, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ranked := l.rankedLocked()
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return domain.Leaderboard{Entries: ranked, UpdatedAt: l.clock()}, nil
}

func (l *Leaderboard) Rank(_ context.Context, userID string) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, entry := range l.rankedLocked() {
		if entry.UserID == userID {
			return entry.Rank, nil
		}
	}
	return 0, domain.ErrUserNotFound
}

func (l *Leaderboard) rankedLocked() []domain.LeaderboardEntry {
	ranked := make([]domain.LeaderboardEntry, 0, len(l.entries))
	for _, entry := range l.entries {
		ranked = append(ranked, entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalXP != ranked[j].TotalXP {
			return ranked[i].TotalXP > ranked[j].TotalXP
		}
		return ranked[i].UserID < ranked[j].UserID
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
