package app

import (
	"sync"

	"utme-prep-service/internal/domain"
)

// LeaderboardFeed fans leaderboard snapshots out to in-process subscribers
// (the websocket handler). Slow subscribers get their stale frame dropped so
// one stuck client cannot block a broadcast.
type LeaderboardFeed struct {
	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardFeed() *LeaderboardFeed {
	return &LeaderboardFeed{
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// Subscribe returns a channel receiving leaderboard snapshots. The caller
// must invoke the returned cancel function to avoid leaks.
func (f *LeaderboardFeed) Subscribe() (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers a snapshot to every subscriber, replacing an unread stale
// frame instead of blocking.
func (f *LeaderboardFeed) Publish(lb domain.Leaderboard) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- lb:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}
