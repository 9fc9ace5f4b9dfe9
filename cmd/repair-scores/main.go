package main

import (
	"context"
	"flag"
	"fmt"

	"examportal/internal/config"
	"examportal/internal/database"
	"examportal/internal/logger"
	"examportal/internal/repository"
)

func main() {
	var apply bool
	flag.BoolVar(&apply, "apply", false, "Clamp corrupt scores instead of only listing them")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	resultRepo := repository.NewResultRepository(pool)

	corrupt, err := resultRepo.FindCorruptScores(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to scan for corrupt scores")
	}

	if len(corrupt) == 0 {
		fmt.Println("No corrupt scores found.")
		return
	}

	fmt.Printf("Found %d completed sessions with score > question count:\n", len(corrupt))
	for _, c := range corrupt {
		fmt.Printf("  session=%s user=%d (%s) score=%d questions=%d\n",
			c.SessionID, c.UserID, c.ServiceNo, c.Score, c.QuestionCount)
	}

	if !apply {
		fmt.Println("Dry run. Re-run with -apply to clamp these scores.")
		return
	}

	fixed, err := resultRepo.ClampScores(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to clamp scores")
	}
	fmt.Printf("Clamped %d sessions.\n", fixed)
}
