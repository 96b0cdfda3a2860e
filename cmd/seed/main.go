package main

import (
	"context"
	"time"

	"tradelink/internal/config"
	"tradelink/internal/database"
	"tradelink/internal/domain"
	"tradelink/internal/logger"
	"tradelink/internal/repository"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Seeds the admin account, a demo importer/supplier pair and the starter
// categories. Bootstrap tool, not idempotent.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.NewWithDefaults()
	defer log.Sync()

	dbService, err := database.New(cfg.Database)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer dbService.Close()
	db := dbService.DB()

	if err := database.RunMigrations(db, "migrations", log); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(db)

	seedUser(ctx, log, userRepo, "admin@example.com", "admin123", domain.RoleAdmin, nil, nil, nil)
	seedUser(ctx, log, userRepo, "importer1@example.com", "importer123", domain.RoleImporter,
		strPtr("Importer DOO"), strPtr("Serbia"), strPtr("Bulevar Kralja Aleksandra 1, Beograd"))
	seedUser(ctx, log, userRepo, "supplier1@example.com", "supplier123", domain.RoleSupplier,
		strPtr("Supplier DOO"), strPtr("Serbia"), strPtr("Knez Mihailova 10, Beograd"))

	for _, name := range []string{"Phones", "Laptops", "Tablets"} {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO product_category (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			uuid.New(), name,
		); err != nil {
			log.Fatal("Failed to seed category", zap.String("name", name), zap.Error(err))
		}
		log.Info("Seeded category", zap.String("name", name))
	}

	log.Info("Seed complete")
}

func seedUser(ctx context.Context, log *zap.Logger, repo repository.UserRepository,
	email, password string, role domain.Role, companyName, country, address *string) {

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		log.Fatal("Failed to hash password", zap.Error(err))
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CompanyName:  companyName,
		Country:      country,
		Address:      address,
		CreatedAt:    time.Now(),
	}

	if err := repo.Create(ctx, user); err != nil {
		if err == repository.ErrUserAlreadyExists {
			log.Info("User already seeded", zap.String("email", email))
			return
		}
		log.Fatal("Failed to seed user", zap.String("email", email), zap.Error(err))
	}

	log.Info("Seeded user", zap.String("email", email), zap.String("role", role.String()))
}

func strPtr(s string) *string {
	return &s
}
