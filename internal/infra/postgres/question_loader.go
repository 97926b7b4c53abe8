package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"utme-prep-service/internal/app"
	"utme-prep-service/internal/domain"
)

// QuestionLoader reads question JSONB from Postgres. It also serves as the
// explanation store: a generated explanation is written back into the
// question's JSONB so every later fetch carries it.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestion(ctx context.Context, id string) (domain.Question, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM questions WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("load question: %w", err)
	}
	var question domain.Question
	if err := json.Unmarshal(raw, &question); err != nil {
		return domain.Question{}, fmt.Errorf("unmarshal question: %w", err)
	}
	return question, nil
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context, q app.QuestionQuery) ([]domain.Question, error) {
	query := `SELECT data FROM questions WHERE subject=$1`
	args := []interface{}{q.Subject}
	if q.Year > 0 {
		args = append(args, q.Year)
		query += fmt.Sprintf(" AND year=$%d", len(args))
	}
	if q.ExamType != "" {
		args = append(args, q.ExamType)
		query += fmt.Sprintf(" AND data->>'examType'=$%d", len(args))
	}
	if q.Random {
		query += " ORDER BY random()"
	} else {
		query += " ORDER BY id"
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := l.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var question domain.Question
		if err := json.Unmarshal(raw, &question); err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}

// SaveQuestion upserts one question row. Used by the seed command.
func (l *QuestionLoader) SaveQuestion(ctx context.Context, question domain.Question) error {
	raw, err := json.Marshal(question)
	if err != nil {
		return fmt.Errorf("marshal question: %w", err)
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO questions (id, subject, year, data) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET subject=EXCLUDED.subject, year=EXCLUDED.year, data=EXCLUDED.data`,
		question.ID, question.Subject, question.Year, raw)
	if err != nil {
		return fmt.Errorf("save question: %w", err)
	}
	return nil
}

func (l *QuestionLoader) Explanation(ctx context.Context, questionID string) (domain.Explanation, bool, error) {
	question, err := l.LoadQuestion(ctx, questionID)
	if err != nil {
		return domain.Explanation{}, false, err
	}
	if question.Explanation == nil {
		return domain.Explanation{}, false, nil
	}
	return *question.Explanation, true, nil
}

func (l *QuestionLoader) SaveExplanation(ctx context.Context, questionID string, exp domain.Explanation) error {
	raw, err := json.Marshal(exp)
	if err != nil {
		return fmt.Errorf("marshal explanation: %w", err)
	}
	tag, err := l.pool.Exec(ctx,
		`UPDATE questions SET data = jsonb_set(data, '{explanation}', $2::jsonb) WHERE id=$1`,
		questionID, raw)
	if err != nil {
		return fmt.Errorf("save explanation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}
