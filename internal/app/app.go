// Package app assembles the API from configuration: storage, sessions,
// services, handlers, router and the outbox workers.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hms-api/internal/clock"
	"github.com/jwalitptl/hms-api/internal/config"
	"github.com/jwalitptl/hms-api/internal/email"
	"github.com/jwalitptl/hms-api/internal/handler/access"
	"github.com/jwalitptl/hms-api/internal/handler/appointment"
	"github.com/jwalitptl/hms-api/internal/handler/auth"
	"github.com/jwalitptl/hms-api/internal/handler/dashboard"
	"github.com/jwalitptl/hms-api/internal/handler/health"
	"github.com/jwalitptl/hms-api/internal/handler/patient"
	"github.com/jwalitptl/hms-api/internal/handler/payment"
	"github.com/jwalitptl/hms-api/internal/handler/treatment"
	"github.com/jwalitptl/hms-api/internal/handler/user"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/repository/memory"
	"github.com/jwalitptl/hms-api/internal/repository/postgres"
	"github.com/jwalitptl/hms-api/internal/router"
	"github.com/jwalitptl/hms-api/internal/seed"
	appointmentService "github.com/jwalitptl/hms-api/internal/service/appointment"
	authService "github.com/jwalitptl/hms-api/internal/service/auth"
	dashboardService "github.com/jwalitptl/hms-api/internal/service/dashboard"
	eventService "github.com/jwalitptl/hms-api/internal/service/event"
	patientService "github.com/jwalitptl/hms-api/internal/service/patient"
	paymentService "github.com/jwalitptl/hms-api/internal/service/payment"
	treatmentService "github.com/jwalitptl/hms-api/internal/service/treatment"
	userService "github.com/jwalitptl/hms-api/internal/service/user"
	"github.com/jwalitptl/hms-api/internal/session"
	jwtauth "github.com/jwalitptl/hms-api/pkg/auth"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/messaging"
	"github.com/jwalitptl/hms-api/pkg/messaging/redis"
	"github.com/jwalitptl/hms-api/pkg/metrics"
	"github.com/jwalitptl/hms-api/pkg/security"
	"github.com/jwalitptl/hms-api/pkg/worker"
)

type App struct {
	cfg      *config.Config
	logger   *logger.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	now      clock.Func
	hasher   security.PasswordHasher

	Store    repository.Store
	Sessions session.Store
	Broker   messaging.Broker
	Router   *router.Router

	processor *worker.OutboxProcessor
	cleanup   *worker.OutboxCleanupWorker
	closers   []func() error
}

type Option func(*App)

// WithClock overrides the clock derived from clock.today.
func WithClock(now clock.Func) Option {
	return func(a *App) { a.now = now }
}

// WithHasher replaces the bcrypt hasher, e.g. with a cheaper cost in tests.
func WithHasher(h security.PasswordHasher) Option {
	return func(a *App) { a.hasher = h }
}

// WithStore uses store instead of building one from storage.driver.
func WithStore(store repository.Store) Option {
	return func(a *App) { a.Store = store }
}

func New(ctx context.Context, cfg *config.Config, log *logger.Logger, opts ...Option) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: log,
		hasher: security.NewBcryptHasher(0),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.now == nil {
		now, err := clock.FromConfig(cfg.Clock.Today)
		if err != nil {
			return nil, err
		}
		a.now = now
	}

	a.registry = metrics.NewRegistry()
	a.metrics = metrics.NewMetrics(cfg.Metrics.Namespace, "", a.registry)

	if err := a.initStore(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.initSessions(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.initWorkers(); err != nil {
		a.Close()
		return nil, err
	}
	a.initRouter()

	return a, nil
}

func (a *App) initStore(ctx context.Context) error {
	if a.Store.Users == nil {
		switch a.cfg.Storage.Driver {
		case config.StoragePostgres:
			db, err := postgres.NewDB(ctx, a.cfg.Database)
			if err != nil {
				return err
			}
			if err := postgres.Migrate(ctx, db); err != nil {
				db.Close()
				return err
			}
			a.Store = postgres.NewStore(db, a.metrics)
		default:
			a.Store = memory.NewStore()
		}
	}
	if a.Store.Close != nil {
		a.closers = append(a.closers, a.Store.Close)
	}

	if !a.cfg.Storage.Seed {
		return nil
	}
	existing, err := a.Store.Users.List(ctx, model.UserFilter{})
	if err != nil {
		return fmt.Errorf("failed to inspect store: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	ds := seed.Default()
	if a.cfg.Storage.Fixture != "" {
		if ds, err = seed.Load(a.cfg.Storage.Fixture); err != nil {
			return err
		}
	}
	if err := seed.Apply(ctx, a.Store, ds, a.hasher); err != nil {
		return err
	}
	a.logger.Info("Seeded store", "driver", a.cfg.Storage.Driver, "users", len(ds.Users))
	return nil
}

func (a *App) initSessions(ctx context.Context) error {
	var client *goredis.Client
	if a.cfg.Redis.Enabled() {
		opts, err := goredis.ParseURL(a.cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		if a.cfg.Redis.PoolSize > 0 {
			opts.PoolSize = a.cfg.Redis.PoolSize
		}
		if a.cfg.Redis.MaxRetries > 0 {
			opts.MaxRetries = a.cfg.Redis.MaxRetries
		}
		opts.MinIdleConns = a.cfg.Redis.MinIdleConns
		client = goredis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
	}

	if a.cfg.Session.Store == "redis" && client != nil {
		a.Sessions = session.NewRedisStore(client)
	} else {
		a.Sessions = session.NewMemoryStore(a.cfg.Session.CleanupInterval)
	}

	if client != nil {
		a.Broker = redis.NewRedisBrokerFromClient(client, a.cfg.Redis.ToBrokerConfig(), a.logger.Zerolog())
	} else {
		a.Broker = messaging.NewLogBroker(a.logger.Zerolog())
		a.closers = append(a.closers, a.Broker.Close)
	}
	return nil
}

func (a *App) initWorkers() error {
	processor, err := worker.NewOutboxProcessor(a.Store.Outbox, a.Broker, a.cfg.Outbox.ToWorkerConfig(), a.logger, a.metrics)
	if err != nil {
		return err
	}
	a.processor = processor
	a.cleanup = worker.NewOutboxCleanupWorker(a.Store.Outbox, a.cfg.Outbox.Retention, a.cfg.Outbox.CleanupInterval, a.logger)
	return nil
}

func (a *App) initRouter() {
	cfg := a.cfg
	delays := cfg.Simulation
	events := eventService.NewService(a.Store.Outbox, a.now)
	mail := email.NewService(cfg.SMTP.ToEmailConfig())

	jwtSvc := jwtauth.NewJWTService(cfg.JWT.Secret, cfg.JWT.TTL)
	authSvc := authService.NewService(a.Store.Users, a.Sessions, jwtSvc, a.hasher, mail,
		authService.WithLoginDelay(delays.Login),
		authService.WithMetrics(a.metrics),
		authService.WithClock(a.now),
	)
	userSvc := userService.NewService(a.Store.Users, a.Sessions, a.hasher, mail, a.now)
	paymentSvc := paymentService.NewService(a.Store.Payments, a.Store.Patients, events, a.metrics, delays.Payment, a.now)
	patientSvc := patientService.NewService(a.Store, paymentSvc, events, a.metrics, patientService.Config{
		RegistrationFee:   cfg.Registration.Fee,
		RegistrationDelay: delays.Registration,
	}, a.now)
	appointmentSvc := appointmentService.NewService(a.Store, events, a.now)
	treatmentSvc := treatmentService.NewService(a.Store, appointmentSvc, events, a.metrics, delays.Save, a.now)
	dashboardSvc := dashboardService.NewService(a.Store, appointmentSvc, patientSvc, treatmentSvc, a.now)

	healthH := health.NewHandler(a.registry, map[string]health.Checker{
		"storage":  a.Store.Ping,
		"sessions": a.Sessions.Ping,
	})

	loginLimit := cfg.RateLimit.ToMiddlewareConfig()
	if !cfg.RateLimit.Enabled {
		loginLimit = middleware.RateLimiterConfig{Rate: rate.Inf}
	}

	var reg prometheus.Registerer
	if cfg.Metrics.Enabled {
		reg = a.registry
	}

	a.Router = router.NewRouter(
		middleware.NewAuthMiddleware(authSvc),
		auth.NewHandler(authSvc, userSvc),
		healthH,
		[]router.Handler{
			access.NewHandler(),
			dashboard.NewHandler(dashboardSvc),
			user.NewHandler(userSvc),
			patient.NewHandler(patientSvc),
			appointment.NewHandler(appointmentSvc),
			treatment.NewHandler(treatmentSvc),
			payment.NewHandler(paymentSvc),
		},
		router.RouterConfig{
			Mode:          cfg.Server.Mode,
			LoginLimit:    loginLimit,
			CORSConfig:    cfg.CORS.ToMiddlewareConfig(),
			Timeout:       cfg.Server.RequestTimeout,
			MaxBodySize:   cfg.Server.MaxBodyBytes,
			MetricsPrefix: cfg.Metrics.Namespace + "_http",
			Registerer:    reg,
			RequestLogs:   cfg.Server.RequestLogs,
		},
	)
}

// Handler is the HTTP entry point.
func (a *App) Handler() http.Handler {
	return a.Router.Engine()
}

// Processor exposes the outbox processor, e.g. to drain it in tests.
func (a *App) Processor() *worker.OutboxProcessor {
	return a.processor
}

// StartWorkers runs the outbox workers until ctx is done.
func (a *App) StartWorkers(ctx context.Context) {
	if !a.cfg.Outbox.Enabled {
		a.logger.Info("Outbox processing disabled")
		return
	}
	go a.processor.Start(ctx)
	if a.cfg.Outbox.Retention > 0 && a.cfg.Outbox.CleanupInterval > 0 {
		go a.cleanup.Start(ctx)
	}
}

// Serve runs the HTTP server and the workers until ctx is cancelled, then
// shuts the server down gracefully.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:           a.cfg.Server.Addr(),
		Handler:        a.Handler(),
		ReadTimeout:    a.cfg.Server.ReadTimeout,
		WriteTimeout:   a.cfg.Server.WriteTimeout,
		MaxHeaderBytes: a.cfg.Server.MaxHeaderBytes,
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()
	a.StartWorkers(workerCtx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func (a *App) shutdownTimeout() time.Duration {
	if a.cfg.Server.ShutdownTimeout > 0 {
		return a.cfg.Server.ShutdownTimeout
	}
	return 5 * time.Second
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
