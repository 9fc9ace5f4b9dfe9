package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"math/big"

	"examportal/internal/config"
	"examportal/internal/database"
	"examportal/internal/logger"
	"examportal/internal/repository"
	"examportal/internal/service"
)

const tempPasswordLength = 12

// Unambiguous alphabet: no 0/O, 1/l/I.
const passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func main() {
	var username string
	flag.StringVar(&username, "username", "admin", "Admin username to reset")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	adminRepo := repository.NewAdminRepository(pool)
	authService := service.NewAuthService(cfg, nil)

	tempPassword, err := generatePassword(tempPasswordLength)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate temporary password")
	}

	hash, err := authService.HashPassword(tempPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash temporary password")
	}

	// The flag forces a password change on the next admin login.
	found, err := adminRepo.UpdatePasswordByUsername(ctx, username, hash, true)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to reset admin password")
	}
	if !found {
		log.Fatal().Str("username", username).Msg("Admin not found")
	}

	fmt.Println("=== Admin Password Reset ===")
	fmt.Printf("Username:           %s\n", username)
	fmt.Printf("Temporary password: %s\n", tempPassword)
	fmt.Println("A password change is required on the next login.")
}

func generatePassword(length int) (string, error) {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
