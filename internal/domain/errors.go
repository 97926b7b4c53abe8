package domain

import "errors"

var (
	// ErrInvalidInput is returned when a caller supplies values outside the
	// valid domain, e.g. negative answer counts.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUserNotFound is returned when the user has not been synced yet.
	ErrUserNotFound = errors.New("user not found")
	// ErrQuestionNotFound indicates the requested question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrNoQuestions indicates the subject has no questions in the bank.
	ErrNoQuestions = errors.New("no questions found for subject")
	// ErrConflict is returned when a concurrent progression update was
	// detected; callers may retry the whole update.
	ErrConflict = errors.New("concurrent update conflict")
	// ErrRateLimited is returned when a client exceeded its request budget.
	ErrRateLimited = errors.New("rate limit exceeded")
)
