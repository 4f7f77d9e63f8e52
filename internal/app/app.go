package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/hearme-backend/internal/adapter/kafka"
	"github.com/heartmarshall/hearme-backend/internal/adapter/postgres"
	"github.com/heartmarshall/hearme-backend/internal/adapter/postgres/chatroom"
	matchingrepo "github.com/heartmarshall/hearme-backend/internal/adapter/postgres/matching"
	"github.com/heartmarshall/hearme-backend/internal/adapter/postgres/profile"
	"github.com/heartmarshall/hearme-backend/internal/adapter/postgres/waiting"
	"github.com/heartmarshall/hearme-backend/internal/adapter/presence"
	"github.com/heartmarshall/hearme-backend/internal/auth"
	"github.com/heartmarshall/hearme-backend/internal/config"
	"github.com/heartmarshall/hearme-backend/internal/relay"
	"github.com/heartmarshall/hearme-backend/internal/service/matching"
	"github.com/heartmarshall/hearme-backend/internal/transport/middleware"
	"github.com/heartmarshall/hearme-backend/internal/transport/rest"
)

// Run is the server entry point. It wires PostgreSQL, the Redis presence
// cache, the Kafka relay and the HTTP API, then runs the HTTP server, the
// relay drain loop, the event consumer and the presence reconciler until ctx
// is canceled or one of them fails.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, syncLog := NewLogger(cfg.Log)
	defer syncLog() //nolint:errcheck

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	// --- infrastructure ---------------------------------------------------

	pool, err := postgres.NewPool(ctx, cfg.Database, "hearme-api")
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	rdb := presence.NewClient(cfg.Redis)
	defer rdb.Close() //nolint:errcheck
	if err := rdb.Ping(ctx).Err(); err != nil {
		// The cache is rebuilt by the reconciler once Redis is back.
		logger.Warn("redis unreachable at startup", slog.String("error", err.Error()))
	}
	store := presence.NewStore(rdb, cfg.Redis.KeyPrefix, cfg.Presence.AvailableTTL, cfg.Presence.ActiveTTL)

	producer := kafka.NewProducer(cfg.Kafka)
	defer producer.Close() //nolint:errcheck

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	events, err := relay.New(producer, cfg.Relay, relay.NewMetrics(reg), logger)
	if err != nil {
		return fmt.Errorf("create relay: %w", err)
	}

	// --- service ----------------------------------------------------------

	svc := matching.NewService(
		logger,
		waiting.New(pool),
		matchingrepo.New(pool),
		profile.New(pool),
		chatroom.New(pool),
		store,
		events,
		postgres.NewTxManager(pool),
		cfg.Matching,
		cfg.Kafka,
	)

	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.EventsTopic, logger)
	defer consumer.Close() //nolint:errcheck
	dispatcher := relay.NewDispatcher(svc, logger)

	// --- transport --------------------------------------------------------

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	var rateLimit middleware.Middleware
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit)
		defer limiter.Stop()
		rateLimit = limiter.Middleware()
	}
	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Auth(jwtManager),
		rateLimit,
	)

	handler := rest.NewRouter(rest.Handlers{
		Matching: rest.NewMatchingHandler(svc, logger),
		Waiting:  rest.NewWaitingHandler(svc, logger),
		Admin:    rest.NewAdminHandler(svc, events, logger),
		Health: rest.NewHealthHandler(BuildVersion(), events,
			rest.Check{Name: "database", Pinger: pool},
			rest.Check{Name: "redis", Pinger: store},
		),
	}, reg, chain)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// --- run --------------------------------------------------------------

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return events.Run(gctx)
	})

	g.Go(func() error {
		return consumer.Run(gctx, dispatcher.Handle)
	})

	g.Go(func() error {
		return reconcileLoop(gctx, svc, cfg.Presence.ReconcileInterval, logger)
	})

	runErr := g.Wait()

	flushRelay(events, cfg.Server.ShutdownTimeout, logger)

	if runErr != nil {
		logger.Error("application stopped", slog.String("error", runErr.Error()))
		return runErr
	}
	logger.Info("application stopped")
	return nil
}

type presenceRebuilder interface {
	RebuildPresence(ctx context.Context) (*matching.RebuildResult, error)
}

// reconcileLoop rebuilds the presence cache once at startup and then every
// interval. Failures are logged; the next tick retries.
func reconcileLoop(ctx context.Context, svc presenceRebuilder, interval time.Duration, logger *slog.Logger) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := svc.RebuildPresence(ctx); err != nil && ctx.Err() == nil {
			logger.WarnContext(ctx, "presence rebuild failed", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// flushRelay gives the backup queue one last chance before exit and reports
// what could not be delivered.
func flushRelay(r *relay.Relay, timeout time.Duration, logger *slog.Logger) {
	if r.Stats().QueueDepth == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	r.DrainBackupQueue(ctx)
	if left := r.Pending(); len(left) > 0 {
		logger.Error("undelivered events at shutdown", slog.Int("count", len(left)))
		for _, m := range left {
			logger.Error("undelivered event",
				slog.String("topic", m.Topic),
				slog.String("event_id", m.EventID),
				slog.Time("enqueued_at", m.EnqueuedAt),
			)
		}
	}
}
