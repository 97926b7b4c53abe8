package memory

import (
	"context"
	"testing"

	"utme-prep-service/internal/domain"
)

func TestLeaderboardRanksByXP(t *testing.T) {
	lb := NewLeaderboard()
	ctx := context.Background()

	lb.Record(ctx, domain.LeaderboardEntry{UserID: "u1", Username: "Amina", TotalXP: 500, Level: 3})
	lb.Record(ctx, domain.LeaderboardEntry{UserID: "u2", Username: "Bola", TotalXP: 900, Level: 4})
	lb.Record(ctx, domain.LeaderboardEntry{UserID: "u3", Username: "Chidi", TotalXP: 200, Level: 2})

	top, err := lb.Top(ctx, 2)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top.Entries))
	}
	if top.Entries[0].UserID != "u2" || top.Entries[0].Rank != 1 {
		t.Fatalf("expected u2 first, got %+v", top.Entries[0])
	}
	if top.Entries[1].UserID != "u1" || top.Entries[1].Rank != 2 {
		t.Fatalf("expected u1 second, got %+v", top.Entries[1])
	}

	rank, err := lb.Rank(ctx, "u3")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if rank != 3 {
		t.Fatalf("expected rank 3 for u3, got %d", rank)
	}
}

func TestLeaderboardRecordOverwritesScore(t *testing.T) {
	lb := NewLeaderboard()
	ctx := context.Background()

	lb.Record(ctx, domain.LeaderboardEntry{UserID: "u1", TotalXP: 100})
	lb.Record(ctx, domain.LeaderboardEntry{UserID: "u1", TotalXP: 400})

	top, _ := lb.Top(ctx, 10)
	if len(top.Entries) != 1 || top.Entries[0].TotalXP != 400 {
		t.Fatalf("expected single entry with updated XP, got %+v", top.Entries)
	}
}
