package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/http/api"
	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/http/site"
	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/http/swagger"
	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/mq/feed"
	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/repository"
	app "github.com/William-Laverty/CGS-CrossCountry/internal/app"
	"github.com/William-Laverty/CGS-CrossCountry/internal/config"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/metrics"
)

// HTTP server timeout constants. WriteTimeout is left unset: live
// sockets are long-lived and bound their own writes.
const (
	readTimeout           = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	startupTimeout        = 15 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> .env -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "results service failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	b, err := openBackends(startCtx, cfg, log)
	cancel()
	if err != nil {
		return err
	}
	defer b.close()

	svc := app.New(
		app.WithLogger(log.Named("service")),
		app.WithStore(b.store),
		app.WithFeed(b.feed),
		app.WithPublishOnWrite(b.publishOnWrite),
		app.WithStoreDriver(cfg.StoreDriver),
		app.WithFeedDriver(cfg.FeedDriver),
		app.WithRejectWhenActive(cfg.RejectWhenActive),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithLeaderboardSize(cfg.LeaderboardSize),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc, log),
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

// newHandler registers the API, docs and pages on one mux behind CORS.
// Live sockets close when ctx is cancelled.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)
	site.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc,
		api.WithLogger(log.Named("api")),
		api.WithMaxLimit(cfg.MaxLeaderboardLimit),
		api.WithFilterByEvent(cfg.FilterResultsByEvent),
		api.WithAllowedOrigins(cfg.CORSAllowedOrigins),
		api.WithPingInterval(time.Duration(cfg.WSPingIntervalMS)*time.Millisecond),
		api.WithWriteTimeout(time.Duration(cfg.WSWriteTimeoutMS)*time.Millisecond),
	)
	apiServer.Register(ctx, mux)

	return api.CORS(mux, cfg.CORSAllowedOrigins)
}

// backends holds the store and feed chosen by configuration.
type backends struct {
	store          repository.Store
	feed           feed.Feed
	publishOnWrite bool
	closers        []func() error
}

// close releases resources the service does not own. The service closes
// the store and the feed itself.
func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg *config.Config, log logger.Logger) (*backends, error) {
	b := &backends{publishOnWrite: true}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pg, err := repository.OpenPostgres(ctx, cfg.DatabaseURL, repository.WithLogger(log.Named("postgres")))
		if err != nil {
			return nil, err
		}
		b.store = pg
	default:
		b.store = repository.NewMemoryStore(repository.WithLogger(log.Named("memstore")))
	}

	fail := func(err error) (*backends, error) {
		_ = b.store.Close()
		b.close()
		return nil, err
	}

	feedLog := feed.WithLogger(log.Named("feed"))
	switch cfg.FeedDriver {
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		b.closers = append(b.closers, client.Close)
		f, err := feed.NewRedisFeed(ctx, client, feedLog, feed.WithChannelPrefix(cfg.RedisChannelPrefix))
		if err != nil {
			return fail(err)
		}
		b.feed = f
	case config.DriverPostgres:
		pg, ok := b.store.(*repository.PostgresStore)
		if !ok {
			return fail(fmt.Errorf("%w: the postgres feed needs the postgres store", config.ErrInvalidConfig))
		}
		f, err := feed.NewPostgresFeed(cfg.DatabaseURL, pg.DB(), feedLog)
		if err != nil {
			return fail(err)
		}
		b.feed = f
		// Table triggers notify on every write.
		b.publishOnWrite = false
	default:
		b.feed = feed.NewMemoryFeed(feedLog)
	}

	log.Info(ctx, "backends ready",
		logger.String("store", cfg.StoreDriver),
		logger.String("feed", cfg.FeedDriver))
	return b, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
