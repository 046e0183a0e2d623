package main

import (
	"context"

	"app/internal/config"
	"app/internal/logger"
	"app/internal/model"
	"app/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Seeds the first-boot admin account. Safe to run repeatedly: an existing
// admin email is left untouched.
func main() {
	logger := logger.New()

	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}
	if cfg.AdminPassword == "" {
		logger.Fatal().Msg("ADMIN_PASSWORD must be set to seed the admin account")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DBConnectionString)
	if err != nil {
		logger.Fatal().Msgf("Failed to open DB connection pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Msgf("Failed to ping DB: %v", err)
	}

	userRepo := repository.NewUserRepo(pool)

	existing, err := userRepo.GetUserByEmail(ctx, cfg.AdminEmail)
	if err != nil {
		logger.Fatal().Msgf("Failed to look up admin account: %v", err)
	}
	if existing != nil {
		logger.Info().Str("email", cfg.AdminEmail).Msg("Admin account already exists")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal().Msgf("Failed to hash admin password: %v", err)
	}

	admin := &model.User{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: string(hashed),
		Role:     model.RoleAdmin,
	}
	if err := userRepo.CreateUser(ctx, admin); err != nil {
		logger.Fatal().Msgf("Failed to create admin account: %v", err)
	}
	logger.Info().Str("email", admin.Email).Int64("user_id", admin.UserID).Msg("Admin account created")
}
