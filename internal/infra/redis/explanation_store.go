package redis

import (
	"context"

	"utme-prep-service/internal/app"
	"utme-prep-service/internal/domain"
)

// ExplanationStore writes explanations through to the backing store and drops
// the Redis-cached copy of the question, so the next fetch carries the
// explanation instead of serving a stale cache entry until TTL.
type ExplanationStore struct {
	store app.ExplanationStore
	cache *QuestionRepository
}

func NewExplanationStore(store app.ExplanationStore, cache *QuestionRepository) *ExplanationStore {
	return &ExplanationStore{store: store, cache: cache}
}

func (s *ExplanationStore) Explanation(ctx context.Context, questionID string) (domain.Explanation, bool, error) {
	return s.store.Explanation(ctx, questionID)
}

func (s *ExplanationStore) SaveExplanation(ctx context.Context, questionID string, exp domain.Explanation) error {
	if err := s.store.SaveExplanation(ctx, questionID, exp); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, questionID)
	return nil
}
