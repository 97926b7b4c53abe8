package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"utme-prep-service/internal/domain"
)

const (
	keyLeaderboardXP   = "leaderboard:xp"
	keyLeaderboardInfo = "leaderboard:info"
)

// Leaderboard ranks users with a Redis sorted set. The score is total XP;
// display details (username, level) live in a companion hash. Rank lookups
// are O(log N) and shared across instances.
type Leaderboard struct {
	client *redis.Client
	clock  func() time.Time
}

func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{client: client, clock: time.Now}
}

type leaderboardInfo struct {
	Username string `json:"username"`
	Level    int    `json:"level"`
}

func (l *Leaderboard) Record(ctx context.Context, entry domain.LeaderboardEntry) error {
	info, err := json.Marshal(leaderboardInfo{Username: entry.Username, Level: entry.Level})
	if err != nil {
		return fmt.Errorf("marshal leaderboard info: %w", err)
	}

	pipe := l.client.Pipeline()
	pipe.ZAdd(ctx, keyLeaderboardXP, redis.Z{Score: float64(entry.TotalXP), Member: entry.UserID})
	pipe.HSet(ctx, keyLeaderboardInfo, entry.UserID, info)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record leaderboard entry: %w", err)
	}
	return nil
}

func (l *Leaderboard) Top(ctx context.Context, n int) (domain.Leaderboard, error) {
	if n <= 0 {
		n = 10
	}
	scored, err := l.client.ZRevRangeWithScores(ctx, keyLeaderboardXP, 0, int64(n-1)).Result()
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("leaderboard range: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(scored))
	for i, z := range scored {
		userID, _ := z.Member.(string)
		entry := domain.LeaderboardEntry{
			Rank:    i + 1,
			UserID:  userID,
			TotalXP: int64(z.Score),
		}
		if raw, err := l.client.HGet(ctx, keyLeaderboardInfo, userID).Result(); err == nil {
			var info leaderboardInfo
			if json.Unmarshal([]byte(raw), &info) == nil {
				entry.Username = info.Username
				entry.Level = info.Level
			}
		}
		entries = append(entries, entry)
	}

	return domain.Leaderboard{Entries: entries, UpdatedAt: l.clock()}, nil
}

func (l *Leaderboard) Rank(ctx context.Context, userID string) (int, error) {
	rank, err := l.client.ZRevRank(ctx, keyLeaderboardXP, userID).Result()
	if err == redis.Nil {
		return 0, domain.ErrUserNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("leaderboard rank: %w", err)
	}
	return int(rank) + 1, nil
}
