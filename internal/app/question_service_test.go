package app_test

import (
	"context"
	"testing"
	"time"

	"utme-prep-service/internal/app"
	"utme-prep-service/internal/domain"
	"utme-prep-service/internal/infra/memory"
)

func newQuestionService(questions []domain.Question) *app.QuestionService {
	repo := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(questions), 5*time.Minute)
	return app.NewQuestionService(repo)
}

func bankOf(subject string, n int) []domain.Question {
	questions := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, domain.Question{
			ID:      subject + "-" + string(rune('a'+i%26)) + string(rune('0'+i/26)),
			Subject: subject,
			Text:    "placeholder",
			Options: []domain.Option{
				{ID: "a", Text: "yes", Correct: true},
				{ID: "b", Text: "no"},
			},
			CorrectOption: "a",
		})
	}
	return questions
}

func TestMockExamComposition(t *testing.T) {
	var bank []domain.Question
	bank = append(bank, bankOf("english", 80)...)
	bank = append(bank, bankOf("physics", 60)...)
	bank = append(bank, bankOf("chemistry", 60)...)
	bank = append(bank, bankOf("mathematics", 60)...)
	service := newQuestionService(bank)

	paper, err := service.MockExam(context.Background(), []string{"physics", "chemistry", "mathematics"})
	if err != nil {
		t.Fatalf("mock exam failed: %v", err)
	}

	counts := map[string]int{}
	for _, q := range paper {
		counts[q.Subject]++
	}
	if counts["english"] != 60 {
		t.Fatalf("expected 60 english questions, got %d", counts["english"])
	}
	for _, subject := range []string{"physics", "chemistry", "mathematics"} {
		if counts[subject] != 40 {
			t.Fatalf("expected 40 %s questions, got %d", subject, counts[subject])
		}
	}
	if len(paper) != 180 {
		t.Fatalf("expected 180 questions total, got %d", len(paper))
	}
}

func TestMockExamSkipsEnglishInChosenSubjects(t *testing.T) {
	var bank []domain.Question
	bank = append(bank, bankOf("english", 80)...)
	bank = append(bank, bankOf("biology", 60)...)
	service := newQuestionService(bank)

	paper, err := service.MockExam(context.Background(), []string{"English", "biology"})
	if err != nil {
		t.Fatalf("mock exam failed: %v", err)
	}

	english := 0
	for _, q := range paper {
		if q.Subject == "english" {
			english++
		}
	}
	if english != 60 {
		t.Fatalf("english must appear once as the compulsory block, got %d questions", english)
	}
}

func TestMockExamRequiresSubjects(t *testing.T) {
	service := newQuestionService(bankOf("english", 60))
	if _, err := service.MockExam(context.Background(), nil); err == nil {
		t.Fatal("expected error without subjects")
	}
}

func TestListClampsLimit(t *testing.T) {
	service := newQuestionService(bankOf("english", 80))

	questions, err := service.List(context.Background(), app.QuestionQuery{Subject: "English", Limit: 500})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(questions) != 50 {
		t.Fatalf("expected limit clamped to 50, got %d", len(questions))
	}

	questions, err = service.List(context.Background(), app.QuestionQuery{Subject: "english"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(questions) != 10 {
		t.Fatalf("expected default limit 10, got %d", len(questions))
	}
}

func TestListRequiresSubject(t *testing.T) {
	service := newQuestionService(nil)
	if _, err := service.List(context.Background(), app.QuestionQuery{}); err == nil {
		t.Fatal("expected error without subject")
	}
}

func TestRandomRequiresSubject(t *testing.T) {
	service := newQuestionService(nil)
	if _, err := service.Random(context.Background(), ""); err == nil {
		t.Fatal("expected error without subject")
	}
}
