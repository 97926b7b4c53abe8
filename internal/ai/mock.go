package ai

import (
	"context"
	"time"

	"utme-prep-service/internal/domain"
)

// MockProvider returns a canned explanation without network access. Useful in
// tests and when running without an API key.
type MockProvider struct {
	// Err, when set, is returned from every Generate call.
	Err error
	// Calls counts Generate invocations; handy for cache-hit assertions.
	Calls int
}

func (m *MockProvider) Generate(_ context.Context, req ExplanationRequest) (domain.Explanation, error) {
	m.Calls++
	if m.Err != nil {
		return domain.Explanation{}, m.Err
	}
	return domain.Explanation{
		Text:           formatExplanation("The reasoning follows directly from the definition.", req.CorrectAnswer),
		KeyConcepts:    []string{req.subjectOrDefault()},
		CommonMistakes: commonMistakes(req),
		GeneratedAt:    time.Now(),
	}, nil
}
