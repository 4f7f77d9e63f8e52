package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/hearme-backend/internal/config"
)

// ParsePoolConfig turns cfg into a pgxpool config. Connections report
// application as their application_name unless the DSN already names one.
func ParsePoolConfig(cfg config.DatabaseConfig, application string) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	params := poolCfg.ConnConfig.RuntimeParams
	if _, ok := params["application_name"]; !ok && application != "" {
		params["application_name"] = application
	}
	return poolCfg, nil
}

// NewPool opens a pool for application and waits until the database answers
// a ping. Refused pings are retried with exponential backoff for up to
// maxConnectWait or until ctx ends.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, application string) (*pgxpool.Pool, error) {
	poolCfg, err := ParsePoolConfig(cfg, application)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = maxConnectWait
	if err := backoff.Retry(func() error { return pool.Ping(ctx) }, backoff.WithContext(b, ctx)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

const maxConnectWait = 30 * time.Second
