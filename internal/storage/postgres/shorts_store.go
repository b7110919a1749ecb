// Package postgres provides Postgres-backed persistence for ranked shorts.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/dotblossom/shorts-radar/internal/shorts"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// StoreConfig controls the Postgres connection pool and schema bootstrap.
type StoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	// InitRetries bounds schema creation attempts at startup.
	InitRetries    int
	InitRetryDelay time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Ping(context.Context) error
	Close()
}

// ShortsStore writes ranked shorts rows into Postgres. Each upsert is a
// single statement, so concurrent writers cannot corrupt a row.
type ShortsStore struct {
	pool           execCloser
	table          string
	initRetries    int
	initRetryDelay time.Duration
	logger         *zap.Logger
}

// NewShortsStore creates a Postgres-backed ShortsStore using the provided config.
func NewShortsStore(ctx context.Context, cfg StoreConfig, logger *zap.Logger) (*ShortsStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewShortsStoreWithPool(pool, cfg, logger)
}

// NewShortsStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewShortsStoreWithPool(pool execCloser, cfg StoreConfig, logger *zap.Logger) (*ShortsStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	table := cfg.Table
	if table == "" {
		table = "shorts"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	retries := cfg.InitRetries
	if retries <= 0 {
		retries = 5
	}
	delay := cfg.InitRetryDelay
	if delay <= 0 {
		delay = 5 * time.Second
	}
	return &ShortsStore{
		pool:           pool,
		table:          table,
		initRetries:    retries,
		initRetryDelay: delay,
		logger:         logger,
	}, nil
}

// Close releases the underlying pool resources.
func (s *ShortsStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Ping verifies database connectivity.
func (s *ShortsStore) Ping(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("shorts store is not configured")
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// InitSchema creates the shorts table if it does not exist, retrying a
// bounded number of times so the service survives a database that is still
// coming up.
func (s *ShortsStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	product_code INT NOT NULL,
	shorts_id VARCHAR(255) NOT NULL,
	shorts_url TEXT NOT NULL,
	thumbnail_url TEXT NOT NULL,
	sentiment_score INT NOT NULL,
	sentiment_label TEXT DEFAULT 'POSITIVE',
	UNIQUE (product_code, shorts_id)
)`, s.table)

	var lastErr error
	for attempt := 1; attempt <= s.initRetries; attempt++ {
		if _, err := s.pool.Exec(ctx, query); err != nil {
			lastErr = err
			s.logger.Warn("schema init attempt failed",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", s.initRetries),
				zap.Error(err),
			)
			if attempt == s.initRetries {
				break
			}
			select {
			case <-ctx.Done():
				return fmt.Errorf("initialize schema: %w", ctx.Err())
			case <-time.After(s.initRetryDelay):
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("initialize schema after %d attempts: %w", s.initRetries, lastErr)
}

// UpsertShort inserts a candidate row, overwriting url, thumbnail and
// sentiment when the (product_code, shorts_id) key already exists.
func (s *ShortsStore) UpsertShort(ctx context.Context, c shorts.Candidate) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("shorts store is not configured")
	}
	if c.VideoID == "" {
		return fmt.Errorf("shorts id is required")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	product_code,
	shorts_id,
	shorts_url,
	thumbnail_url,
	sentiment_score
) VALUES (
	$1,$2,$3,$4,$5
)
ON CONFLICT (product_code, shorts_id) DO UPDATE SET
	shorts_url = EXCLUDED.shorts_url,
	thumbnail_url = EXCLUDED.thumbnail_url,
	sentiment_score = EXCLUDED.sentiment_score`, s.table)

	args := []any{
		c.ProductCode,
		c.VideoID,
		c.URL,
		c.ThumbnailURL,
		c.SentimentScore,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert short: %w", err)
	}
	return nil
}
