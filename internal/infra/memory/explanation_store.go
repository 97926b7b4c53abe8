package memory

import (
	"context"

	lru "github.com/hashicorp/golang-lru"

	"utme-prep-service/internal/domain"
)

// ExplanationStore keeps generated explanations in a bounded LRU so a
// database-less instance still avoids paying for the same explanation twice.
type ExplanationStore struct {
	cache *lru.Cache
}

func NewExplanationStore(size int) (*ExplanationStore, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &ExplanationStore{cache: cache}, nil
}

func (s *ExplanationStore) Explanation(_ context.Context, questionID string) (domain.Explanation, bool, error) {
	if v, ok := s.cache.Get(questionID); ok {
		return v.(domain.Explanation), true, nil
	}
	return domain.Explanation{}, false, nil
}

func (s *ExplanationStore) SaveExplanation(_ context.Context, questionID string, exp domain.Explanation) error {
	s.cache.Add(questionID, exp)
	return nil
}
