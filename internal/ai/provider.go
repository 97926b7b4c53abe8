// Package ai generates question explanations through a hosted LLM. The
// Provider interface keeps the rest of the service ignorant of which vendor
// is behind it; tests use the mock, production uses the Groq-hosted
// OpenAI-compatible API.
package ai

import (
	"context"

	"utme-prep-service/internal/domain"
)

// ExplanationRequest carries everything the model needs to explain one MCQ.
type ExplanationRequest struct {
	QuestionID    string          `json:"questionId"`
	QuestionText  string          `json:"questionText"`
	Options       []domain.Option `json:"options"`
	CorrectAnswer string          `json:"correctAnswer"`
	Subject       string          `json:"subject"`
	UserLevel     string          `json:"userLevel"`
}

// Provider generates an explanation for a question. Implementations must be
// safe for concurrent use.
type Provider interface {
	Generate(ctx context.Context, req ExplanationRequest) (domain.Explanation, error)
}

func (r ExplanationRequest) subjectOrDefault() string {
	if r.Subject == "" {
		return "General"
	}
	return r.Subject
}

func (r ExplanationRequest) levelOrDefault() string {
	if r.UserLevel == "" {
		return "Intermediate"
	}
	return r.UserLevel
}
