package app

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"

	"utme-prep-service/internal/ai"
	"utme-prep-service/internal/domain"
)

// ExplanationStore caches generated explanations (the question row in
// Postgres, or an LRU when running without a database).
type ExplanationStore interface {
	Explanation(ctx context.Context, questionID string) (domain.Explanation, bool, error)
	SaveExplanation(ctx context.Context, questionID string, exp domain.Explanation) error
}

// ExplainService serves explanations cache-first: a stored explanation is
// returned as-is, otherwise exactly one provider call per question runs at a
// time (singleflight) and its result is persisted for everyone after.
type ExplainService struct {
	store    ExplanationStore
	provider ai.Provider
	sf       singleflight.Group
}

func NewExplainService(store ExplanationStore, provider ai.Provider) *ExplainService {
	return &ExplainService{store: store, provider: provider}
}

// Explain returns the explanation for a question, generating and caching it
// on first request. When the provider fails, a canned fallback naming the
// correct answer is returned along with the error so callers can still show
// the student something useful.
func (s *ExplainService) Explain(ctx context.Context, req ai.ExplanationRequest) (domain.Explanation, error) {
	if req.QuestionID == "" || req.QuestionText == "" || req.CorrectAnswer == "" {
		return domain.Explanation{}, fmt.Errorf("%w: questionId, questionText, and correctAnswer are required", domain.ErrInvalidInput)
	}

	if exp, ok, err := s.store.Explanation(ctx, req.QuestionID); err == nil && ok {
		return exp, nil
	}

	result, err, _ := s.sf.Do(req.QuestionID, func() (interface{}, error) {
		// Re-check the store in case another request filled it.
		if exp, ok, err := s.store.Explanation(ctx, req.QuestionID); err == nil && ok {
			return exp, nil
		}

		exp, err := s.provider.Generate(ctx, req)
		if err != nil {
			return domain.Explanation{}, err
		}

		if err := s.store.SaveExplanation(ctx, req.QuestionID, exp); err != nil {
			// The explanation is still good; only the cache write failed.
			log.Printf("cache explanation for %s failed: %v", req.QuestionID, err)
		}
		return exp, nil
	})
	if err != nil {
		return domain.Explanation{
			Text:           ai.FallbackExplanation(req.CorrectAnswer),
			CommonMistakes: nil,
		}, err
	}
	return result.(domain.Explanation), nil
}
