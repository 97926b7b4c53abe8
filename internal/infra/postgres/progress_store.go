package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"utme-prep-service/internal/domain"
)

type userRow struct {
	bun.BaseModel `bun:"table:users"`

	ID                string     `bun:"id,pk"`
	Username          string     `bun:"username"`
	Email             string     `bun:"email"`
	TotalXP           int64      `bun:"total_xp"`
	Level             int        `bun:"level"`
	CurrentStreak     int        `bun:"current_streak"`
	LastActiveDate    *time.Time `bun:"last_active_date"`
	QuestionsAnswered int        `bun:"questions_answered"`
	CorrectAnswers    int        `bun:"correct_answers"`
	CreatedAt         time.Time  `bun:"created_at,nullzero,default:now()"`
	UpdatedAt         time.Time  `bun:"updated_at,nullzero,default:now()"`
}

func (r userRow) progress() domain.Progress {
	return domain.Progress{
		UserID:            r.ID,
		TotalXP:           r.TotalXP,
		Level:             r.Level,
		CurrentStreak:     r.CurrentStreak,
		LastActiveDate:    r.LastActiveDate,
		QuestionsAnswered: r.QuestionsAnswered,
		CorrectAnswers:    r.CorrectAnswers,
	}
}

type sessionRow struct {
	bun.BaseModel `bun:"table:practice_sessions"`

	ID               string    `bun:"id,pk"`
	UserID           string    `bun:"user_id"`
	Subject          string    `bun:"subject"`
	Mode             string    `bun:"mode"`
	QuestionsCount   int       `bun:"questions_count"`
	CorrectCount     int       `bun:"correct_count"`
	IncorrectCount   int       `bun:"incorrect_count"`
	XPEarned         int64     `bun:"xp_earned"`
	TimeSpentSeconds int       `bun:"time_spent_seconds"`
	CreatedAt        time.Time `bun:"created_at,nullzero,default:now()"`
}

func (r sessionRow) session() domain.PracticeSession {
	return domain.PracticeSession{
		ID:               r.ID,
		UserID:           r.UserID,
		Subject:          r.Subject,
		Mode:             domain.ParseMode(r.Mode),
		QuestionsCount:   r.QuestionsCount,
		CorrectCount:     r.CorrectCount,
		IncorrectCount:   r.IncorrectCount,
		XPEarned:         r.XPEarned,
		TimeSpentSeconds: r.TimeSpentSeconds,
		CreatedAt:        r.CreatedAt,
	}
}

// ProgressStore persists users, progression state, and session history in
// Postgres. Apply serializes concurrent updates per user with a row lock and
// commits the progress update and session record in one transaction.
type ProgressStore struct {
	db *bun.DB
}

func NewProgressStore(db *bun.DB) *ProgressStore {
	return &ProgressStore{db: db}
}

func (s *ProgressStore) SyncUser(ctx context.Context, user domain.User) (domain.Progress, error) {
	row := userRow{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Level:    1,
	}
	_, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("username = EXCLUDED.username").
		Set("email = EXCLUDED.email").
		Set("updated_at = now()").
		Exec(ctx)
	if err != nil {
		return domain.Progress{}, fmt.Errorf("sync user: %w", err)
	}
	return s.Progress(ctx, user.ID)
}

func (s *ProgressStore) User(ctx context.Context, userID string) (domain.User, error) {
	row, err := s.userRow(ctx, s.db, userID, false)
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{ID: row.ID, Username: row.Username, Email: row.Email}, nil
}

func (s *ProgressStore) Progress(ctx context.Context, userID string) (domain.Progress, error) {
	row, err := s.userRow(ctx, s.db, userID, false)
	if err != nil {
		return domain.Progress{}, err
	}
	return row.progress(), nil
}

func (s *ProgressStore) Apply(ctx context.Context, userID string, fn func(domain.Progress) (domain.Progress, domain.PracticeSession, error)) (domain.Progress, error) {
	var applied domain.Progress
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		row, err := s.userRow(ctx, tx, userID, true)
		if err != nil {
			return err
		}

		next, record, err := fn(row.progress())
		if err != nil {
			return err
		}

		row.TotalXP = next.TotalXP
		row.Level = next.Level
		row.CurrentStreak = next.CurrentStreak
		row.LastActiveDate = next.LastActiveDate
		row.QuestionsAnswered = next.QuestionsAnswered
		row.CorrectAnswers = next.CorrectAnswers
		row.UpdatedAt = time.Now()

		if _, err := tx.NewUpdate().Model(&row).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("update progress: %w", err)
		}

		session := sessionRow{
			ID:               record.ID,
			UserID:           record.UserID,
			Subject:          record.Subject,
			Mode:             record.Mode.String(),
			QuestionsCount:   record.QuestionsCount,
			CorrectCount:     record.CorrectCount,
			IncorrectCount:   record.IncorrectCount,
			XPEarned:         record.XPEarned,
			TimeSpentSeconds: record.TimeSpentSeconds,
			CreatedAt:        record.CreatedAt,
		}
		if _, err := tx.NewInsert().Model(&session).Exec(ctx); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}

		applied = next
		return nil
	})
	if err != nil {
		if isSerializationFailure(err) {
			return domain.Progress{}, domain.ErrConflict
		}
		return domain.Progress{}, err
	}
	return applied, nil
}

// sqlStateErr is the shape pgdriver errors expose their SQLSTATE through.
type sqlStateErr interface {
	Field(field byte) string
}

// isSerializationFailure reports whether Postgres aborted the transaction to
// break a serialization conflict or deadlock on the locked user row
// (SQLSTATE 40001/40P01). Callers may retry the whole update.
func isSerializationFailure(err error) bool {
	var state sqlStateErr
	if !errors.As(err, &state) {
		return false
	}
	code := state.Field('C')
	return code == "40001" || code == "40P01"
}

func (s *ProgressStore) RecentSessions(ctx context.Context, userID string, limit int) ([]domain.PracticeSession, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []sessionRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		OrderExpr("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("recent sessions: %w", err)
	}
	sessions := make([]domain.PracticeSession, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.session())
	}
	return sessions, nil
}

func (s *ProgressStore) userRow(ctx context.Context, db bun.IDB, userID string, forUpdate bool) (userRow, error) {
	var row userRow
	q := db.NewSelect().Model(&row).Where("id = ?", userID)
	if forUpdate {
		q = q.For("UPDATE")
	}
	err := q.Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return userRow{}, domain.ErrUserNotFound
	}
	if err != nil {
		return userRow{}, fmt.Errorf("load user: %w", err)
	}
	return row, nil
}
