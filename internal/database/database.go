package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"tradelink/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Service wraps the pooled database handle.
type Service struct {
	db *sql.DB
}

// New opens a pooled connection using the pgx stdlib driver.
func New(cfg config.DatabaseConfig) (*Service, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &Service{db: db}, nil
}

// DB exposes the underlying handle for repositories.
func (s *Service) DB() *sql.DB {
	return s.db
}

// Close closes the pool.
func (s *Service) Close() error {
	return s.db.Close()
}

// Health returns a snapshot of pool health and statistics.
func (s *Service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	dbStats := s.db.Stats()
	stats["status"] = "up"
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	return stats
}
