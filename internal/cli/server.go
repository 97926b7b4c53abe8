package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"utme-prep-service/internal/ai"
	"utme-prep-service/internal/app"
	"utme-prep-service/internal/config"
	"utme-prep-service/internal/domain"
	"utme-prep-service/internal/infra/memory"
	pginfra "utme-prep-service/internal/infra/postgres"
	redisinfra "utme-prep-service/internal/infra/redis"
	"utme-prep-service/internal/ratelimit"
	transport "utme-prep-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the exam prep server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	// Question bank: Postgres when configured, otherwise a built-in sample
	// set; cached in Redis when available, in-process otherwise.
	var pgQuestions *pginfra.QuestionLoader
	var staticLoader *memory.StaticQuestionLoader
	var loader memory.QuestionLoader
	if pool != nil {
		pgQuestions = pginfra.NewQuestionLoader(pool)
		loader = pgQuestions
	} else {
		staticLoader = memory.NewStaticQuestionLoader(sampleQuestions())
		loader = staticLoader
	}

	questionTTL := config.TTLDuration(cfg.Question.TTL, 10*time.Minute)
	var questionRepo app.QuestionRepository
	var redisQuestions *redisinfra.QuestionRepository
	if redisClient != nil {
		redisQuestions = redisinfra.NewQuestionRepository(redisClient, loader, questionTTL)
		questionRepo = redisQuestions
	} else {
		questionRepo = memory.NewQuestionRepository(loader, questionTTL)
	}

	var progressStore app.ProgressStore
	if cfg.Postgres.URL != "" {
		db := openBunDB(cfg.Postgres.URL)
		defer db.Close()
		progressStore = pginfra.NewProgressStore(db)
	} else {
		progressStore = memory.NewProgressStore()
	}

	var leaderboard app.LeaderboardStore
	if redisClient != nil {
		leaderboard = redisinfra.NewLeaderboard(redisClient)
	} else {
		leaderboard = memory.NewLeaderboard()
	}

	maxRequests, window := cfg.RateLimitSettings()
	var limiter ratelimit.Limiter
	if redisClient != nil {
		limiter = redisinfra.NewRateLimiter(redisClient, maxRequests, window)
	} else {
		limiter = ratelimit.NewWindowLimiter(maxRequests, window)
	}

	// Generated explanations live on the question row in Postgres; without a
	// database an LRU keeps recent ones around. With Redis in front, saving
	// also drops the cached question so readers see the explanation at once.
	var explanationStore app.ExplanationStore
	if pgQuestions != nil {
		explanationStore = pgQuestions
	} else {
		explanationStore, err = memory.NewExplanationStore(256)
		if err != nil {
			return err
		}
	}
	if redisQuestions != nil {
		explanationStore = redisinfra.NewExplanationStore(explanationStore, redisQuestions)
	}

	var provider ai.Provider
	if cfg.AI.APIKey != "" {
		provider, err = ai.NewGroqProvider(ai.Config{
			APIKey:  cfg.AI.APIKey,
			BaseURL: cfg.AI.BaseURL,
			Model:   cfg.AI.Model,
			Timeout: config.TTLDuration(cfg.AI.Timeout, 30*time.Second),
		})
		if err != nil {
			return err
		}
	} else {
		log.Printf("no AI api key configured, using canned explanations")
		provider = &ai.MockProvider{}
	}

	feed := app.NewLeaderboardFeed()
	progressService := app.NewProgressService(progressStore, leaderboard, feed, cfg.LeaderboardSize())
	questionService := app.NewQuestionService(questionRepo)
	explainService := app.NewExplainService(explanationStore, provider)

	api := transport.NewAPI(questionService, progressService, explainService, limiter)
	wsHandler := transport.NewWSHandler(progressService, feed)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	api.Register(mux)
	mux.HandleFunc("/ws/leaderboard", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting utme prep service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions seeds the in-memory question bank for database-less runs.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:      "eng-2021-014",
			Subject: "english",
			Text:    "Choose the word nearest in meaning to 'candid'.",
			Options: []domain.Option{
				{ID: "a", Text: "frank", Correct: true},
				{ID: "b", Text: "secretive"},
				{ID: "c", Text: "hostile"},
				{ID: "d", Text: "careless"},
			},
			CorrectOption: "a",
			Year:          2021,
			ExamType:      "utme",
		},
		{
			ID:      "phy-2021-032",
			Subject: "physics",
			Text:    "What is the SI unit of force?",
			Options: []domain.Option{
				{ID: "a", Text: "joule"},
				{ID: "b", Text: "newton", Correct: true},
				{ID: "c", Text: "watt"},
				{ID: "d", Text: "pascal"},
			},
			CorrectOption: "b",
			Year:          2021,
			ExamType:      "utme",
		},
		{
			ID:      "mth-2020-008",
			Subject: "mathematics",
			Text:    "Simplify: 2x + 3x - x.",
			Options: []domain.Option{
				{ID: "a", Text: "4x", Correct: true},
				{ID: "b", Text: "5x"},
				{ID: "c", Text: "6x"},
				{ID: "d", Text: "x"},
			},
			CorrectOption: "a",
			Year:          2020,
			ExamType:      "utme",
		},
	}
}
