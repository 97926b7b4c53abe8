package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"utme-prep-service/internal/app"
	"utme-prep-service/internal/domain"
)

// QuestionLoader fetches question content from a backing store.
type QuestionLoader interface {
	LoadQuestion(ctx context.Context, id string) (domain.Question, error)
	LoadQuestions(ctx context.Context, q app.QuestionQuery) ([]domain.Question, error)
}

// QuestionRepository caches single-question lookups with TTL to avoid
// repeated store hits from the practice UI; list queries pass through to the
// loader, which already randomizes.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuestion
}

type cachedQuestion struct {
	question  domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuestion),
	}
}

func (r *QuestionRepository) Question(ctx context.Context, id string) (domain.Question, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[id]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.question, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[id]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.question, nil
		}
		r.mu.RUnlock()

		question, err := r.loader.LoadQuestion(ctx, id)
		if err != nil {
			return domain.Question{}, err
		}

		r.mu.Lock()
		r.cache[id] = cachedQuestion{
			question:  question,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
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

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionLoader is a simple loader backed by an in-memory slice
// (useful for tests/demos and running without Postgres).
type StaticQuestionLoader struct {
	mu        sync.RWMutex
	questions map[string]domain.Question
	order     []string
	rnd       *rand.Rand
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	l := &StaticQuestionLoader{
		questions: make(map[string]domain.Question, len(questions)),
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, q := range questions {
		l.questions[q.ID] = q
		l.order = append(l.order, q.ID)
	}
	return l
}

func (l *StaticQuestionLoader) LoadQuestion(_ context.Context, id string) (domain.Question, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if q, ok := l.questions[id]; ok {
		return q, nil
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context, query app.QuestionQuery) ([]domain.Question, error) {
	// Full lock: the shuffle below mutates the shared rand source.
	l.mu.Lock()
	defer l.mu.Unlock()

	var matched []domain.Question
	for _, id := range l.order {
		q := l.questions[id]
		if query.Subject != "" && q.Subject != query.Subject {
			continue
		}
		if query.Year != 0 && q.Year != query.Year {
			continue
		}
		if query.ExamType != "" && q.ExamType != query.ExamType {
			continue
		}
		matched = append(matched, q)
	}

	if query.Random {
		l.rnd.Shuffle(len(matched), func(i, j int) {
			matched[i], matched[j] = matched[j], matched[i]
		})
	}
	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

// SaveExplanation attaches an explanation to the stored question, letting the
// static loader double as an explanation store in database-less setups.
func (l *StaticQuestionLoader) SaveExplanation(_ context.Context, questionID string, exp domain.Explanation) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	q, ok := l.questions[questionID]
	if !ok {
		return domain.ErrQuestionNotFound
	}
	q.Explanation = &exp
	l.questions[questionID] = q
	return nil
}
