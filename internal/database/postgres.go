package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const connectAttempts = 10

func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	// Sized for bid bursts: every bid holds a connection for the duration
	// of a row-locked transaction, so the pool needs headroom beyond the
	// steady-state API traffic.
	config.MaxConns = 30
	config.MinConns = 4
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	// Postgres may still be starting when the API comes up.
	backoff := time.Second
	var pool *pgxpool.Pool
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			pingErr := pool.Ping(ctx)
			if pingErr == nil {
				log.Printf("[DB] connected (attempt %d)", attempt)
				return pool, nil
			}
			pool.Close()
			err = pingErr
		}
		log.Printf("[DB] connect attempt %d/%d failed: %v", attempt, connectAttempts, err)
		time.Sleep(backoff)
		if backoff < 8*time.Second {
			backoff *= 2
		}
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", connectAttempts, err)
}
