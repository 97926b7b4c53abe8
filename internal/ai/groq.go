package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"utme-prep-service/internal/domain"
)

const (
	// DefaultBaseURL targets Groq's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is a fast hosted model suitable for short tutoring answers.
	DefaultModel = "llama-3.3-70b-versatile"
)

// Config holds the hosted-model settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout bounds each API call; zero means no client-side deadline.
	Timeout time.Duration
}

// GroqProvider implements Provider against any OpenAI-compatible chat API;
// the default configuration points at Groq.
type GroqProvider struct {
	client *openai.Client
	model  string
	clock  func() time.Time

	// rndMu guards rnd; Generate runs concurrently for different questions.
	rndMu sync.Mutex
	rnd   *rand.Rand
}

// NewGroqProvider builds a provider from config, applying defaults for
// base URL and model.
func NewGroqProvider(cfg Config) (*GroqProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai: api key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &GroqProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func (p *GroqProvider) Generate(ctx context.Context, req ExplanationRequest) (domain.Explanation, error) {
	subject := req.subjectOrDefault()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(subject, req.levelOrDefault())},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(req)},
		},
		Temperature: 0.7,
		MaxTokens:   800,
		TopP:        0.9,
	})
	if err != nil {
		return domain.Explanation{}, fmt.Errorf("generate explanation: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.Explanation{}, fmt.Errorf("generate explanation: empty response")
	}

	text := formatExplanation(resp.Choices[0].Message.Content, req.CorrectAnswer)

	concepts, err := p.extractKeyConcepts(ctx, text)
	if err != nil {
		// Key concepts are decoration; the explanation stands without them.
		concepts = nil
	}

	p.rndMu.Lock()
	seed := p.rnd.Intn(1000)
	p.rndMu.Unlock()

	return domain.Explanation{
		Text:           text,
		ImageURL:       diagramURL(req.QuestionText, subject, seed),
		KeyConcepts:    concepts,
		CommonMistakes: commonMistakes(req),
		GeneratedAt:    p.clock(),
	}, nil
}

// extractKeyConcepts asks the model for 2-4 concepts as a JSON array.
func (p *GroqProvider) extractKeyConcepts(ctx context.Context, explanation string) ([]string, error) {
	snippet := explanation
	if len(snippet) > 300 {
		snippet = snippet[:300]
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: `Extract 2-4 key educational concepts. Return ONLY a JSON array: ["concept1", "concept2"]`},
			{Role: openai.ChatMessageRoleUser, Content: "From this explanation, list key concepts:\n" + snippet},
		},
		Temperature: 0.3,
		MaxTokens:   200,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	// Models sometimes wrap the array in prose; cut to the brackets.
	if start, end := strings.Index(content, "["), strings.LastIndex(content, "]"); start >= 0 && end > start {
		content = content[start : end+1]
	}

	var concepts []string
	if err := json.Unmarshal([]byte(content), &concepts); err != nil {
		return nil, err
	}
	return concepts, nil
}
