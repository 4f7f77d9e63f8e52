// Command reconcile rebuilds the Redis presence cache from PostgreSQL: active
// match counters from non-terminal matchings and the available sets from
// active waiters. The server does the same on a timer; this is for cron or
// for recovering a flushed Redis by hand.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/hearme-backend/internal/adapter/postgres"
	"github.com/heartmarshall/hearme-backend/internal/adapter/postgres/chatroom"
	matchingrepo "github.com/heartmarshall/hearme-backend/internal/adapter/postgres/matching"
	"github.com/heartmarshall/hearme-backend/internal/adapter/postgres/profile"
	"github.com/heartmarshall/hearme-backend/internal/adapter/postgres/waiting"
	"github.com/heartmarshall/hearme-backend/internal/adapter/presence"
	"github.com/heartmarshall/hearme-backend/internal/app"
	"github.com/heartmarshall/hearme-backend/internal/config"
	"github.com/heartmarshall/hearme-backend/internal/domain"
	"github.com/heartmarshall/hearme-backend/internal/relay"
	"github.com/heartmarshall/hearme-backend/internal/service/matching"
)

// discard satisfies the service's publisher; a rebuild publishes nothing.
type discard struct{}

func (discard) Publish(context.Context, relay.Message) {}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, syncLog := app.NewLogger(cfg.Log)
	defer syncLog() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database, "hearme-reconcile")
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	rdb := presence.NewClient(cfg.Redis)
	defer rdb.Close() //nolint:errcheck

	svc := matching.NewService(
		logger,
		waiting.New(pool),
		matchingrepo.New(pool),
		profile.New(pool),
		chatroom.New(pool),
		presence.NewStore(rdb, cfg.Redis.KeyPrefix, cfg.Presence.AvailableTTL, cfg.Presence.ActiveTTL),
		discard{},
		postgres.NewTxManager(pool),
		cfg.Matching,
		cfg.Kafka,
	)

	res, err := svc.RebuildPresence(ctx)
	if err != nil {
		logger.Error("presence rebuild failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("presence rebuild completed",
		slog.Int("active_profiles", res.ActiveProfiles),
		slog.Int("available_speakers", res.Available[domain.RoleSpeaker]),
		slog.Int("available_listeners", res.Available[domain.RoleListener]),
	)
}
