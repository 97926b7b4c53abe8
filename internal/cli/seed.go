package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"utme-prep-service/internal/config"
	"utme-prep-service/internal/domain"
	pginfra "utme-prep-service/internal/infra/postgres"
)

// NewSeedCmd loads questions from a JSON file into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the question bank from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "data/questions.json", "path to questions JSON")
	return cmd
}

func runSeed(ctx context.Context, configPath, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return fmt.Errorf("parse questions file: %w", err)
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	loader := pginfra.NewQuestionLoader(pool)
	for _, q := range questions {
		if q.ID == "" || q.Subject == "" {
			return fmt.Errorf("question missing id or subject: %+v", q)
		}
		if err := loader.SaveQuestion(ctx, q); err != nil {
			return err
		}
	}
	log.Printf("seeded %d questions", len(questions))
	return nil
}
