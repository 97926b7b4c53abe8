package memory

import (
	"context"
	"sync"

	"utme-prep-service/internal/domain"
)

// ProgressStore is an in-memory implementation of app.ProgressStore. A single
// mutex serializes Apply calls, which gives the per-user atomicity the
// progression update requires: concurrent session completions cannot observe
// or overwrite each other's intermediate state.
type ProgressStore struct {
	mu       sync.Mutex
	users    map[string]domain.User
	progress map[string]domain.Progress
	sessions map[string][]domain.PracticeSession
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		users:    make(map[string]domain.User),
		progress: make(map[string]domain.Progress),
		sessions: make(map[string][]domain.PracticeSession),
	}
}

func (s *ProgressStore) SyncUser(_ context.Context, user domain.User) (domain.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[user.ID] = user
	if p, ok := s.progress[user.ID]; ok {
		return p, nil
	}
	p := domain.NewProgress(user.ID)
	s.progress[user.ID] = p
	return p, nil
}

func (s *ProgressStore) User(_ context.Context, userID string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *ProgressStore) Progress(_ context.Context, userID string) (domain.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[userID]
	if !ok {
		return domain.Progress{}, domain.ErrUserNotFound
	}
	return p, nil
}

func (s *ProgressStore) Apply(_ context.Context, userID string, fn func(domain.Progress) (domain.Progress, domain.PracticeSession, error)) (domain.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.progress[userID]
	if !ok {
		return domain.Progress{}, domain.ErrUserNotFound
	}

	next, record, err := fn(current)
	if err != nil {
		return domain.Progress{}, err
	}

	s.progress[userID] = next
	s.sessions[userID] = append(s.sessions[userID], record)
	return next, nil
}

func (s *ProgressStore) RecentSessions(_ context.Context, userID string, limit int) ([]domain.PracticeSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.sessions[userID]
	if limit <= 0 || limit > len(all) {
		limit = len(all)
	}

	// Newest first.
	out := make([]domain.PracticeSession, 0, limit)
	for i := len(all) - 1; i >= len(all)-limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}
