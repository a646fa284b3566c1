package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/kodacard/kodacard-backend/internal/cards"
	"github.com/kodacard/kodacard-backend/internal/users"
	"github.com/kodacard/kodacard-backend/pkg/config"
	"github.com/kodacard/kodacard-backend/pkg/db"
	"github.com/kodacard/kodacard-backend/pkg/db/models"
	"github.com/kodacard/kodacard-backend/pkg/enums"
	"github.com/kodacard/kodacard-backend/pkg/logger"
	"github.com/kodacard/kodacard-backend/pkg/migrate"
	"github.com/kodacard/kodacard-backend/pkg/security"
)

const (
	fixedCardCount  = 10
	randomCardCount = 5

	adminEmail           = "admin@kodacard.local"
	adminDefaultPassword = "admin1234"
)

// Seeds a development database with a predictable card inventory and an
// admin account. Idempotent: rerunning skips rows that already exist.
func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	if cfg.App.IsProd() {
		logg.Error(ctx, "refusing to seed", errors.New("seed is a development tool"))
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	conn := dbClient.DB()

	created, err := seedCards(ctx, conn)
	if err != nil {
		logg.Error(ctx, "failed to seed cards", err)
		os.Exit(1)
	}
	logg.Info(logg.WithField(ctx, "cards_created", created), "card inventory seeded")

	if err := seedAdmin(ctx, conn, cfg); err != nil {
		logg.Error(ctx, "failed to seed admin user", err)
		os.Exit(1)
	}
	logg.Info(logg.WithField(ctx, "email", adminEmail), "admin account ready")
}

func seedCards(ctx context.Context, conn *gorm.DB) (int, error) {
	repo := cards.NewRepository(conn)
	created := 0

	for i := 1; i <= fixedCardCount; i++ {
		code := fmt.Sprintf("CARD-%04d", i)
		taken, err := repo.CodeExists(ctx, code)
		if err != nil {
			return created, err
		}
		if taken {
			continue
		}
		if _, err := repo.Create(ctx, &models.Card{Code: code, Status: enums.CardStatusInactive}); err != nil {
			return created, err
		}
		created++
	}

	for i := 0; i < randomCardCount; i++ {
		code, err := cards.NewUniqueCode(ctx, repo)
		if err != nil {
			return created, err
		}
		if _, err := repo.Create(ctx, &models.Card{Code: code, Status: enums.CardStatusInactive}); err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

func seedAdmin(ctx context.Context, conn *gorm.DB, cfg *config.Config) error {
	repo := users.NewRepository(conn)

	if _, err := repo.FindByEmail(ctx, adminEmail); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	password := os.Getenv("KODACARD_SEED_ADMIN_PASSWORD")
	if password == "" {
		password = adminDefaultPassword
	}

	hash, err := security.HashPassword(password, cfg.Password)
	if err != nil {
		return err
	}

	_, err = repo.Create(ctx, users.CreateUserDTO{
		Email:        adminEmail,
		PasswordHash: hash,
		FirstName:    "Koda",
		LastName:     "Admin",
		SystemRole:   enums.SystemRoleAdmin,
	})
	return err
}
