package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"utme-prep-service/internal/app"
	"utme-prep-service/internal/domain"
)

// QuestionLoader fetches question content from the backing store.
type QuestionLoader interface {
	LoadQuestion(ctx context.Context, id string) (domain.Question, error)
	LoadQuestions(ctx context.Context, q app.QuestionQuery) ([]domain.Question, error)
}

// QuestionRepository caches whole questions as JSON in Redis
// (SET question:{id}) and falls back to the loader on a miss. List queries
// bypass the cache; the loader randomizes per request.
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	// rndMu guards rnd; cache fills for different keys run concurrently.
	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) Question(ctx context.Context, id string) (domain.Question, error) {
	key := r.key(id)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var q domain.Question
		if json.Unmarshal(raw, &q) == nil {
			return q, nil
		}
	}

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
			var q domain.Question
			if json.Unmarshal(raw, &q) == nil {
				return q, nil
			}
		}

		question, err := r.loader.LoadQuestion(ctx, id)
		if err != nil {
			return domain.Question{}, err
		}

		if raw, err := json.Marshal(question); err == nil {
			_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		}
		return question, nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return result.(domain.Question), nil
}

func (r *QuestionRepository) Questions(ctx context.Context, q app.QuestionQuery) ([]domain.Question, error) {
	return r.loader.LoadQuestions(ctx, q)
}

func (r *QuestionRepository) Random(ctx context.Context, subject string) (domain.Question, error) {
	questions, err := r.loader.LoadQuestions(ctx, app.QuestionQuery{Subject: subject, Limit: 1, Random: true})
	if err != nil {
		return domain.Question{}, err
	}
	if len(questions) == 0 {
		return domain.Question{}, domain.ErrNoQuestions
	}
	return questions[0], nil
}

// Invalidate drops the cached copy, e.g. after attaching an explanation.
func (r *QuestionRepository) Invalidate(ctx context.Context, id string) {
	_ = r.client.Del(ctx, r.key(id)).Err()
}

func (r *QuestionRepository) key(id string) string {
	return "question:" + id
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
