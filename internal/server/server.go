// Package server builds the service graph from configuration and runs it.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	authhandler "eureka/internal/auth/handler"
	authservice "eureka/internal/auth/service"
	"eureka/internal/auth/store/revocation"
	userstore "eureka/internal/auth/store/user"
	feedhandler "eureka/internal/feed/handler"
	feedservice "eureka/internal/feed/service"
	feedstore "eureka/internal/feed/store"
	jwttoken "eureka/internal/jwt_token"
	notifhandler "eureka/internal/notification/handler"
	notifservice "eureka/internal/notification/service"
	notifstore "eureka/internal/notification/store"
	"eureka/internal/platform/config"
	"eureka/internal/platform/httpserver"
	"eureka/internal/platform/metrics"
	"eureka/internal/platform/postgres"
	platformredis "eureka/internal/platform/redis"
	"eureka/internal/realtime"
	httptransport "eureka/internal/transport/http"
)

const (
	shutdownTimeout = 10 * time.Second
	purgeInterval   = time.Hour
)

// App is the assembled server.
type App struct {
	cfg      config.Server
	logger   *slog.Logger
	handler  http.Handler
	realtime *realtime.Handler
	trl      authservice.RevocationList
	closers  []func() error
}

type purger interface {
	Purge(ctx context.Context, jtis []string) (int64, error)
}

type Option func(*appOptions)

type appOptions struct {
	registry *prometheus.Registry
}

// WithRegistry collects metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *appOptions) { o.registry = reg }
}

// New connects the configured backends and wires every service. Without
// DATABASE_URL all stores are in memory; without REDIS_URL revocations live
// in Postgres, or in memory when there is no database either.
func New(ctx context.Context, cfg config.Server, logger *slog.Logger, opts ...Option) (*App, error) {
	o := appOptions{registry: prometheus.NewRegistry()}
	for _, opt := range opts {
		opt(&o)
	}
	app := &App{cfg: cfg, logger: logger}

	var (
		users         authservice.UserStore
		feed          feedservice.Store
		notifications notifservice.Store
		db            *sql.DB
	)
	if cfg.DatabaseURL != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, db.Close)
		if err := postgres.Migrate(ctx, db); err != nil {
			_ = app.Close()
			return nil, err
		}
		users = userstore.NewPostgres(db)
		feed = feedstore.NewPostgres(db)
		notifications = notifstore.NewPostgres(db)
		logger.InfoContext(ctx, "using postgres stores")
	} else {
		users = userstore.NewInMemory()
		feed = feedstore.NewInMemory()
		notifications = notifstore.NewInMemory()
		logger.WarnContext(ctx, "DATABASE_URL not set, using in-memory stores")
	}

	rc, err := platformredis.Open(ctx, cfg.Redis)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	switch {
	case rc != nil:
		app.closers = append(app.closers, rc.Close)
		app.trl = revocation.NewRedisTRL(rc)
	case db != nil:
		app.trl = revocation.NewPostgresTRL(db)
	default:
		app.trl = revocation.NewInMemoryTRL()
	}

	httpMetrics := metrics.New(o.registry)
	realtimeMetrics := realtime.NewMetrics(o.registry)

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	validator := jwttoken.NewJWTServiceAdapter(jwtService)
	auth := authservice.New(users, app.trl, jwtService, logger,
		authservice.WithTokenTTL(cfg.Auth.TokenTTL),
		authservice.WithMetrics(httpMetrics),
	)

	registry := realtime.NewRegistry()
	publisher := realtime.NewPublisher(registry, logger, realtimeMetrics)
	gate := realtime.NewGate(validator, auth)
	app.realtime = realtime.NewHandler(gate, registry, realtimeMetrics, logger, cfg.Realtime)

	notifier := notifservice.New(notifications, auth, publisher, logger,
		notifservice.WithTargetedDelivery(cfg.Realtime.TargetNotifications),
	)
	posts := feedservice.New(feed, auth, publisher, notifier, logger,
		feedservice.WithMetrics(httpMetrics),
	)

	authHTTP := authhandler.New(auth, logger)
	app.handler = httptransport.NewRouter(httptransport.Config{
		Logger:      logger,
		HTTPMetrics: httpMetrics,
		Validator:   validator,
		Revocations: auth,
	}, httptransport.Routes{
		Public:   []httptransport.PublicRegistrar{authHTTP},
		Realtime: app.realtime,
		Protected: []httptransport.Registrar{
			authHTTP,
			feedhandler.New(posts, logger),
			notifhandler.New(notifier, logger),
		},
		Metrics: promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{}),
	})
	return app, nil
}

// Handler is the root HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// Run serves until ctx ends, then drains websocket connections and shuts the
// HTTP server down.
func (a *App) Run(ctx context.Context) error {
	srv := httpserver.New(a.cfg.Addr, a.handler)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.InfoContext(gctx, "starting eureka", "addr", a.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if p, ok := a.trl.(purger); ok {
		g.Go(func() error {
			a.purgeRevocations(gctx, p)
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		a.logger.InfoContext(shutdownCtx, "shutting down")
		// hijacked websocket connections are not tracked by http.Server
		if err := a.realtime.Shutdown(shutdownCtx); err != nil {
			a.logger.WarnContext(shutdownCtx, "realtime drain incomplete", "error", err)
		}
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if closeErr := a.Close(); err == nil {
		err = closeErr
	}
	return err
}

// Shutdown closes every websocket connection with 1001 and waits for them.
func (a *App) Shutdown(ctx context.Context) error {
	return a.realtime.Shutdown(ctx)
}

// Close releases database and cache connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) purgeRevocations(ctx context.Context, p purger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.Purge(ctx, nil)
			if err != nil {
				a.logger.WarnContext(ctx, "purge token revocations failed", "error", err)
				continue
			}
			a.logger.DebugContext(ctx, "purged token revocations", "count", n)
		}
	}
}
