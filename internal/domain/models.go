package domain

import "time"

// User identifies an account. Authentication happens upstream; requests
// arrive already carrying a user ID.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Progress is the persisted progression state for one user. It is mutated
// only through ProgressStore.Apply so concurrent session completions cannot
// lose an update.
type Progress struct {
	UserID            string     `json:"userId"`
	TotalXP           int64      `json:"totalXP"`
	Level             int        `json:"level"`
	CurrentStreak     int        `json:"currentStreak"`
	LastActiveDate    *time.Time `json:"lastActiveDate,omitempty"`
	QuestionsAnswered int        `json:"questionsAnswered"`
	CorrectAnswers    int        `json:"correctAnswers"`
}

// NewProgress returns the default progression state for a freshly synced user.
func NewProgress(userID string) Progress {
	return Progress{
		UserID:        userID,
		TotalXP:       0,
		Level:         1,
		CurrentStreak: 0,
	}
}

// Accuracy returns the lifetime answer accuracy as a whole percentage.
func (p Progress) Accuracy() int {
	if p.QuestionsAnswered == 0 {
		return 0
	}
	return int(float64(p.CorrectAnswers)/float64(p.QuestionsAnswered)*100 + 0.5)
}

// SessionResult is what a completed practice/timed/mock run reports back.
type SessionResult struct {
	Subject          string `json:"subject"`
	Mode             Mode   `json:"mode"`
	QuestionsCount   int    `json:"questionsCount"`
	CorrectCount     int    `json:"correctCount"`
	IncorrectCount   int    `json:"incorrectCount"`
	TimeSpentSeconds int    `json:"timeSpent"`
}

// IsPerfect reports whether every question in a non-empty session was
// answered correctly.
func (r SessionResult) IsPerfect() bool {
	return r.QuestionsCount > 0 && r.CorrectCount == r.QuestionsCount
}

// PracticeSession is the persisted record of one completed run.
type PracticeSession struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	Subject          string    `json:"subject"`
	Mode             Mode      `json:"mode"`
	QuestionsCount   int       `json:"questionsCount"`
	CorrectCount     int       `json:"correctCount"`
	IncorrectCount   int       `json:"incorrectCount"`
	XPEarned         int64     `json:"xpEarned"`
	TimeSpentSeconds int       `json:"timeSpent"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ProgressionUpdate summarizes what one session completion did to a user's
// progression. This is the wire shape returned by the sessions endpoint.
type ProgressionUpdate struct {
	XPEarned          int64 `json:"xpEarned"`
	LeveledUp         bool  `json:"leveledUp"`
	NewLevel          int   `json:"newLevel"`
	NewTotalXP        int64 `json:"newTotalXP"`
	NewStreak         int   `json:"newStreak"`
	StreakIncremented bool  `json:"streakIncremented"`
	StreakBonus       int64 `json:"streakBonus"`
}

// Option represents a possible answer for a question.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Question models a past-exam MCQ with exactly one correct option.
type Question struct {
	ID            string   `json:"id"`
	Subject       string   `json:"subject"`
	Text          string   `json:"text"`
	Options       []Option `json:"options"`
	CorrectOption string   `json:"correctOption"`
	Year          int      `json:"year,omitempty"`
	ExamType      string   `json:"examType,omitempty"`

	Explanation *Explanation `json:"explanation,omitempty"`
}

// CorrectOptionID returns the stored correct option ID, falling back to the
// first option flagged correct when the denormalized field is empty.
func (q Question) CorrectOptionID() string {
	if q.CorrectOption != "" {
		return q.CorrectOption
	}
	for _, opt := range q.Options {
		if opt.Correct {
			return opt.ID
		}
	}
	return ""
}

// Explanation is the AI-generated study aid attached to a question. Once
// generated it is cached alongside the question and reused.
type Explanation struct {
	Text           string    `json:"explanation"`
	ImageURL       string    `json:"explanationImage,omitempty"`
	KeyConcepts    []string  `json:"keyConcepts,omitempty"`
	CommonMistakes []string  `json:"commonMistakes,omitempty"`
	GeneratedAt    time.Time `json:"-"`
}

// LeaderboardEntry is one ranked row of the global XP leaderboard.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	TotalXP  int64  `json:"totalXP"`
	Level    int    `json:"level"`
}

// Leaderboard is an ordered snapshot of the top users.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}
