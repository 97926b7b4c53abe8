package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"utme-prep-service/internal/ai"
	"utme-prep-service/internal/app"
	"utme-prep-service/internal/domain"
	"utme-prep-service/internal/ratelimit"
)

// userIDHeader carries the caller's identity. Authentication happens
// upstream; the service trusts this header.
const userIDHeader = "X-User-ID"

// API exposes the REST surface: question bank, session completion, user
// stats, leaderboard, and the rate-limited explanation proxy.
type API struct {
	questions *app.QuestionService
	progress  *app.ProgressService
	explain   *app.ExplainService
	limiter   ratelimit.Limiter
}

func NewAPI(questions *app.QuestionService, progress *app.ProgressService, explain *app.ExplainService, limiter ratelimit.Limiter) *API {
	return &API{
		questions: questions,
		progress:  progress,
		explain:   explain,
		limiter:   limiter,
	}
}

// Register attaches all routes to the mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/questions", a.handleListQuestions)
	mux.HandleFunc("GET /api/questions/random", a.handleRandomQuestion)
	mux.HandleFunc("GET /api/questions/mock", a.handleMockExam)
	mux.HandleFunc("GET /api/questions/{id}", a.handleGetQuestion)
	mux.HandleFunc("POST /api/users/sync", a.handleSyncUser)
	mux.HandleFunc("GET /api/users/{id}/stats", a.handleUserStats)
	mux.HandleFunc("POST /api/sessions", a.handleCompleteSession)
	mux.HandleFunc("GET /api/leaderboard", a.handleLeaderboard)
	mux.HandleFunc("POST /api/explain", a.rateLimited(a.handleExplain))
}

func (a *API) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	query := app.QuestionQuery{
		Subject:  r.URL.Query().Get("subject"),
		ExamType: r.URL.Query().Get("examType"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		query.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("year"); v != "" {
		query.Year, _ = strconv.Atoi(v)
	}
	query.Random = r.URL.Query().Get("random") == "true"

	questions, err := a.questions.List(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions, "count": len(questions)})
}

func (a *API) handleRandomQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := a.questions.Random(r.Context(), r.URL.Query().Get("subject"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (a *API) handleMockExam(w http.ResponseWriter, r *http.Request) {
	var subjects []string
	for _, s := range strings.Split(r.URL.Query().Get("subjects"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			subjects = append(subjects, s)
		}
	}
	paper, err := a.questions.MockExam(r.Context(), subjects)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": paper, "count": len(paper)})
}

func (a *API) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := a.questions.Question(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func (a *API) handleSyncUser(w http.ResponseWriter, r *http.Request) {
	var user domain.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		writeError(w, domain.ErrInvalidInput)
		return
	}
	if user.ID == "" {
		user.ID = r.Header.Get(userIDHeader)
	}
	progress, err := a.progress.SyncUser(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (a *API) handleUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.progress.Stats(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userIDHeader)
	if userID == "" {
		writeError(w, domain.ErrInvalidInput)
		return
	}

	var result domain.SessionResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		writeError(w, domain.ErrInvalidInput)
		return
	}

	update, err := a.progress.CompleteSession(r.Context(), userID, result)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, update)
}

func (a *API) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	lb, err := a.progress.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func (a *API) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req ai.ExplanationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidInput)
		return
	}

	exp, err := a.explain.Explain(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, err)
			return
		}
		// Provider failure: still give the client the fallback text.
		log.Printf("explain %s failed: %v", req.QuestionID, err)
		writeJSON(w, http.StatusOK, map[string]any{
			"explanation": exp.Text,
			"fallback":    true,
		})
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrNoQuestions):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
