package server

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"tradelink/internal/config"
	custommiddleware "tradelink/internal/middleware"
	"tradelink/internal/repository"
	"tradelink/internal/service"
	"tradelink/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB, healthFn func() map[string]string) *Server {
	router := chi.NewRouter()

	// Basic middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithJSON(w, http.StatusOK, healthFn())
	})

	// Redis client for the auth rate limiter
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Repositories
	userRepo := repository.NewUserRepository(db)
	collaborationRepo := repository.NewCollaborationRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	offerRepo := repository.NewOfferRepository(db)

	// Services
	tokenExpiry := time.Duration(cfg.JWT.Expiry) * time.Hour
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, tokenExpiry)
	adminService := service.NewAdminService(userRepo, collaborationRepo)
	catalogService := service.NewCatalogService(offerRepo, categoryRepo)

	// Handlers
	cookieSettings := transport.CookieSettings{
		Name:   cfg.Auth.CookieName,
		Secure: cfg.Server.Env == "production",
		MaxAge: tokenExpiry,
	}
	authHandler := transport.NewAuthHandler(authService, cookieSettings, logger)
	adminHandler := transport.NewAdminHandler(adminService, logger)
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)

	// Middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, cfg.Auth.CookieName, logger)
	requireAdmin := custommiddleware.RequireAdmin(logger)
	rateLimit := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 20,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit:auth",
	}, logger)

	// Routes
	authHandler.RegisterRoutes(router, rateLimit)
	adminHandler.RegisterRoutes(router, authMiddleware, requireAdmin)
	catalogHandler.RegisterRoutes(router, authMiddleware, logger)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
