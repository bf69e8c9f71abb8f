package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"aesthetic_doctor_bot/internal/config"
)

// PostgresManager owns the connection pool of the Postgres code store.
type PostgresManager struct {
	pool *pgxpool.Pool
}

// NewPostgresManager opens a pool for cfg.CodesDatabaseURL and verifies it
// with a ping.
func NewPostgresManager(ctx context.Context, cfg config.Config) (*PostgresManager, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if cfg.CodesDatabaseURL == "" {
		return nil, errors.New("codes database url is required")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.CodesDatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolConfig.MaxConns = 4
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresManager{pool: pool}, nil
}

// Pool returns the underlying pool.
func (m *PostgresManager) Pool() *pgxpool.Pool {
	return m.pool
}

// Ping verifies the database is reachable.
func (m *PostgresManager) Ping(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if m == nil || m.pool == nil {
		return errors.New("postgres manager is not initialized")
	}
	if err := m.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close releases every pooled connection.
func (m *PostgresManager) Close(context.Context) error {
	if m == nil || m.pool == nil {
		return nil
	}
	m.pool.Close()
	return nil
}
