package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"goalTracker/internal/config"
	"goalTracker/internal/logger"
	repo "goalTracker/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

type Storage struct {
	pool    *pgxpool.Pool
	connStr string
}

func New(ctx context.Context, cfg config.DatabaseConfig) (*Storage, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		logger.Error("Repository: failed to parse database config", err)
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = cfg.MaxConnections
	}
	if cfg.MinConnections > 0 {
		poolConfig.MinConns = cfg.MinConnections
	}
	if cfg.IdleTimeout > 0 {
		poolConfig.MaxConnIdleTime = cfg.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("Repository: failed to create pool", err)
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: ping failed", err)
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.Info("Repository: connected to PostgreSQL")
	return &Storage{pool: pool, connStr: cfg.URL}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: PostgreSQL connections closed")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, repo.ErrInvalidKey
	}
	start := time.Now()

	query := `SELECT value
				FROM kv_slots
				WHERE key = $1`

	var value []byte
	err := s.pool.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to read slot", err,
			zap.String("key", key),
			zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("read slot: %w", err)
	}

	warnIfSlow(start, "get", key)
	return value, nil
}

func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return repo.ErrInvalidKey
	}
	start := time.Now()

	query := `INSERT INTO kv_slots (key, value, updated_at)
				VALUES ($1, $2, NOW())
				ON CONFLICT (key) DO UPDATE
				SET value = EXCLUDED.value,
					updated_at = NOW()`

	if value == nil {
		value = []byte{}
	}

	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		logger.Error("Repository: failed to write slot", err,
			zap.String("key", key),
			zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("write slot: %w", err)
	}

	warnIfSlow(start, "set", key)
	return nil
}

func warnIfSlow(start time.Time, op, key string) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: slow query",
			zap.String("op", op),
			zap.String("key", key),
			zap.Duration("ms", elapsed))
	}
}
