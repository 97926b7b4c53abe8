package app

import (
	"context"
	"fmt"
	"strings"

	"utme-prep-service/internal/domain"
)

// QuestionQuery filters a question-bank listing.
type QuestionQuery struct {
	Subject  string
	Limit    int
	Year     int
	ExamType string
	Random   bool
}

// QuestionRepository loads question content (from cache/backing store).
type QuestionRepository interface {
	Question(ctx context.Context, id string) (domain.Question, error)
	Questions(ctx context.Context, q QuestionQuery) ([]domain.Question, error)
	Random(ctx context.Context, subject string) (domain.Question, error)
}

// Standard JAMB mock composition: English is compulsory with 60 questions,
// each chosen subject contributes 40.
const (
	mockEnglishCount = 60
	mockSubjectCount = 40
	maxListLimit     = 50
)

// QuestionService wraps the question bank with query validation and the mock
// exam composition rules.
type QuestionService struct {
	questions QuestionRepository
}

func NewQuestionService(questions QuestionRepository) *QuestionService {
	return &QuestionService{questions: questions}
}

// Question fetches a single question by ID.
func (s *QuestionService) Question(ctx context.Context, id string) (domain.Question, error) {
	if id == "" {
		return domain.Question{}, fmt.Errorf("%w: question id is required", domain.ErrInvalidInput)
	}
	return s.questions.Question(ctx, id)
}

// List returns questions for a subject, clamped to at most 50 per request.
func (s *QuestionService) List(ctx context.Context, q QuestionQuery) ([]domain.Question, error) {
	if q.Subject == "" {
		return nil, fmt.Errorf("%w: subject is required", domain.ErrInvalidInput)
	}
	q.Subject = strings.ToLower(q.Subject)
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > maxListLimit {
		q.Limit = maxListLimit
	}
	q.ExamType = strings.ToLower(q.ExamType)
	return s.questions.Questions(ctx, q)
}

// Random returns one random question for a subject.
func (s *QuestionService) Random(ctx context.Context, subject string) (domain.Question, error) {
	if subject == "" {
		return domain.Question{}, fmt.Errorf("%w: subject is required", domain.ErrInvalidInput)
	}
	return s.questions.Random(ctx, strings.ToLower(subject))
}

// MockExam assembles a full mock paper: 60 English questions followed by 40
// from each chosen subject. English passed among the chosen subjects is
// skipped, it is already compulsory.
func (s *QuestionService) MockExam(ctx context.Context, subjects []string) ([]domain.Question, error) {
	if len(subjects) == 0 {
		return nil, fmt.Errorf("%w: at least one subject besides english is required", domain.ErrInvalidInput)
	}

	paper, err := s.questions.Questions(ctx, QuestionQuery{
		Subject: "english",
		Limit:   mockEnglishCount,
		Random:  true,
	})
	if err != nil {
		return nil, err
	}

	for _, subject := range subjects {
		subject = strings.ToLower(strings.TrimSpace(subject))
		if subject == "" || subject == "english" {
			continue
		}
		questions, err := s.questions.Questions(ctx, QuestionQuery{
			Subject: subject,
			Limit:   mockSubjectCount,
			Random:  true,
		})
		if err != nil {
			return nil, err
		}
		paper = append(paper, questions...)
	}
	return paper, nil
}
