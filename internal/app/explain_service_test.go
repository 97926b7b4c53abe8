package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"utme-prep-service/internal/ai"
	"utme-prep-service/internal/app"
	"utme-prep-service/internal/infra/memory"
)

func explainRequest() ai.ExplanationRequest {
	return ai.ExplanationRequest{
		QuestionID:    "q1",
		QuestionText:  "What is the SI unit of force?",
		CorrectAnswer: "newton",
		Subject:       "physics",
	}
}

func TestExplainGeneratesOnceThenCaches(t *testing.T) {
	store, err := memory.NewExplanationStore(8)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	provider := &ai.MockProvider{}
	service := app.NewExplainService(store, provider)
	ctx := context.Background()

	first, err := service.Explain(ctx, explainRequest())
	if err != nil {
		t.Fatalf("explain failed: %v", err)
	}
	if first.Text == "" {
		t.Fatal("expected explanation text")
	}

	second, err := service.Explain(ctx, explainRequest())
	if err != nil {
		t.Fatalf("cached explain failed: %v", err)
	}
	if provider.Calls != 1 {
		t.Fatalf("expected one provider call, got %d", provider.Calls)
	}
	if second.Text != first.Text {
		t.Fatal("cached explanation must match the generated one")
	}
}

func TestExplainFallsBackOnProviderError(t *testing.T) {
	store, _ := memory.NewExplanationStore(8)
	wantErr := errors.New("model unavailable")
	service := app.NewExplainService(store, &ai.MockProvider{Err: wantErr})

	exp, err := service.Explain(context.Background(), explainRequest())
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if !strings.Contains(exp.Text, "newton") {
		t.Fatalf("fallback must name the correct answer, got %q", exp.Text)
	}
}

func TestExplainValidatesRequest(t *testing.T) {
	store, _ := memory.NewExplanationStore(8)
	service := app.NewExplainService(store, &ai.MockProvider{})

	if _, err := service.Explain(context.Background(), ai.ExplanationRequest{QuestionID: "q1"}); err == nil {
		t.Fatal("expected validation error")
	}
}
