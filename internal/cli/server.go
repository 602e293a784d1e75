package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drivequest/internal/app"
	"drivequest/internal/auth"
	"drivequest/internal/catalog"
	"drivequest/internal/config"
	"drivequest/internal/domain"
	"drivequest/internal/infra/file"
	"drivequest/internal/infra/memory"
	pgcatalog "drivequest/internal/infra/postgres"
	rediscatalog "drivequest/internal/infra/redis"
	"drivequest/internal/location"
	"drivequest/internal/logging"
	"drivequest/internal/screen"
	transport "drivequest/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	defaultCatalogTTL     = 10 * time.Minute
	defaultMessageTimeout = 3 * time.Second
	loopBuffer            = 256
)

// NewServeCmd builds the CLI subcommand that runs the application and its shell binding.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the DriveQuest core and serve the UI shell binding",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// backends holds the optional external connections named in the config.
type backends struct {
	redis *redis.Client
	pool  *pgxpool.Pool
}

func connectBackends(ctx context.Context, cfg config.Config) (backends, error) {
	var b backends
	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.close()
			return b, fmt.Errorf("connect postgres: %w", err)
		}
		b.pool = pool
	}
	return b, nil
}

func (b backends) close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.pool != nil {
		b.pool.Close()
	}
}

// catalogLoader picks the catalog source and puts a cache in front of it: Redis when
// configured, process memory otherwise.
func catalogLoader(cfg config.Config, b backends, logger *zap.Logger) (catalog.Loader, error) {
	var source catalog.Loader = file.NewCatalogLoader(cfg.Catalog.Path)
	if cfg.Catalog.Source == config.CatalogFromPostgres {
		if b.pool == nil {
			return nil, fmt.Errorf("catalog source %q needs postgres", cfg.Catalog.Source)
		}
		source = pgcatalog.NewCatalogLoader(b.pool, cfg.Catalog.Document)
	}

	ttl := config.TTLDuration(cfg.Catalog.TTL, defaultCatalogTTL)
	if b.redis != nil {
		return rediscatalog.NewCatalogCache(b.redis, source, ttl, logger), nil
	}
	return memory.NewCatalogCache(source, ttl), nil
}

func locationProvider(cfg config.Config) location.Provider {
	if !cfg.Location.Simulate {
		return location.Unavailable{}
	}
	return location.NewSimulatedProvider(cfg.Location.Route, config.TTLDuration(cfg.Location.Interval, time.Second))
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	b, err := connectBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	loader, err := catalogLoader(cfg, b, logger)
	if err != nil {
		return err
	}
	content, err := catalog.Load(ctx, loader)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded",
		zap.String("source", cfg.Catalog.Source),
		zap.Int("courses", content.Len()),
		zap.Int("quizzes", content.QuizCount()),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store, err := app.NewStoreFromLoader(ctx, file.NewSeedLoader(cfg.Seed.Path),
		app.WithLogger(logger.Named("store")),
		app.WithMetrics(app.NewMetrics(registry)),
	)
	if err != nil {
		return err
	}

	loop := app.NewEventLoop(loopBuffer, logger.Named("loop"))
	tracker := location.NewTracker(locationProvider(cfg),
		location.WithDispatcher(loop.Post),
		location.WithLogger(logger.Named("location")),
	)
	authenticator := auth.NewAuthenticator(
		auth.NewStaticCredentials(cfg.Auth.Credentials),
		config.TTLDuration(cfg.Auth.Delay, auth.DefaultDelay),
		auth.WithDispatcher(loop.Post),
		auth.WithLogger(logger.Named("auth")),
	)

	messageTimeout := config.TTLDuration(cfg.Shell.MessageTimeout, defaultMessageTimeout)
	onLoop := func(d time.Duration, fn func()) {
		time.AfterFunc(d, func() { loop.Post(fn) })
	}
	newSession := func() *screen.Session {
		return screen.NewSession(screen.SessionDeps{
			Store:         store,
			Catalog:       content,
			Tracker:       tracker,
			Auth:          authenticator,
			StudentID:     domain.StudentID(cfg.Shell.StudentID),
			RequiredHours: cfg.License.RequiredHours,
			Settings:      []screen.SettingsOption{screen.WithMessageTimeout(messageTimeout, onLoop)},
		})
	}
	shell := transport.NewShellHandler(loop, newSession, logger.Named("shell"))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/ws", shell.ServeWS)

	addr := net.JoinHostPort(cfg.Server.Host, finalPort)
	server := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	go func() {
		if err := loop.Run(loopCtx); err != nil && err != context.Canceled {
			logger.Error("event loop stopped", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("serving UI shell binding", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = server.Shutdown(shutdownCtx)
	tracker.Disable()
	loop.Close()
	return err
}
