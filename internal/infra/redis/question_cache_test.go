package redis

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"utme-prep-service/internal/domain"
	"utme-prep-service/internal/infra/memory"
)

func TestQuestionRepositoryCachesInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	loader := &countingLoader{
		QuestionLoader: memory.NewStaticQuestionLoader([]domain.Question{
			{
				ID:      "q1",
				Subject: "english",
				Text:    "Choose the word opposite in meaning to 'scarce'.",
				Options: []domain.Option{
					{ID: "a", Text: "abundant", Correct: true},
					{ID: "b", Text: "rare"},
				},
				CorrectOption: "a",
				Year:          2020,
			},
		}),
	}
	repo := NewQuestionRepository(client, loader, time.Minute)
	ctx := context.Background()

	q, err := repo.Question(ctx, "q1")
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if q.ID != "q1" {
		t.Fatalf("unexpected question %+v", q)
	}
	if loader.calls != 1 {
		t.Fatalf("expected one loader call, got %d", loader.calls)
	}

	if _, err := repo.Question(ctx, "q1"); err != nil {
		t.Fatalf("get cached question: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}

	repo.Invalidate(ctx, "q1")
	if _, err := repo.Question(ctx, "q1"); err != nil {
		t.Fatalf("get after invalidate: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
}

func TestQuestionRepositoryConcurrentMisses(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	var bank []domain.Question
	for i := 0; i < 8; i++ {
		bank = append(bank, domain.Question{
			ID:      fmt.Sprintf("q%d", i),
			Subject: "english",
			Text:    "placeholder",
			Options: []domain.Option{
				{ID: "a", Text: "yes", Correct: true},
				{ID: "b", Text: "no"},
			},
			CorrectOption: "a",
		})
	}
	repo := NewQuestionRepository(client, memory.NewStaticQuestionLoader(bank), time.Minute)

	// Distinct keys miss at the same time, so the cache fills concurrently.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("q%d", n)
			q, err := repo.Question(context.Background(), id)
			if err != nil {
				t.Errorf("get %s: %v", id, err)
				return
			}
			if q.ID != id {
				t.Errorf("expected %s, got %s", id, q.ID)
			}
		}(i)
	}
	wg.Wait()
}

func TestQuestionRepositoryMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := NewQuestionRepository(client, memory.NewStaticQuestionLoader(nil), time.Minute)
	if _, err := repo.Question(context.Background(), "missing"); err != domain.ErrQuestionNotFound {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

type countingLoader struct {
	QuestionLoader
	calls int
}

func (l *countingLoader) LoadQuestion(ctx context.Context, id string) (domain.Question, error) {
	l.calls++
	return l.QuestionLoader.LoadQuestion(ctx, id)
}
