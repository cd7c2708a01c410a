package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/akashaba/stock-tracker-app/internal/config"
	"github.com/akashaba/stock-tracker-app/internal/infrastructure/finnhub"
	"github.com/akashaba/stock-tracker-app/internal/infrastructure/gemini"
	"github.com/akashaba/stock-tracker-app/internal/infrastructure/httpapi"
	"github.com/akashaba/stock-tracker-app/internal/infrastructure/mailer"
	"github.com/akashaba/stock-tracker-app/internal/infrastructure/newscache"
	"github.com/akashaba/stock-tracker-app/internal/infrastructure/rssfeed"
	"github.com/akashaba/stock-tracker-app/internal/infrastructure/scheduler"
	"github.com/akashaba/stock-tracker-app/internal/infrastructure/storage"
	"github.com/akashaba/stock-tracker-app/internal/logging"
	"github.com/akashaba/stock-tracker-app/internal/news"
	"github.com/akashaba/stock-tracker-app/internal/ports"
	"github.com/akashaba/stock-tracker-app/internal/usecase"
	"github.com/akashaba/stock-tracker-app/internal/workflow"
)

// Application wires configuration to the workflows and owns their lifecycle.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	server    *httpapi.Server
	scheduler *usecase.Scheduler
	cleanup   []func() error
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	a := &Application{cfg: cfg, logger: baseLogger}

	db, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a.cleanup = append(a.cleanup, db.Close)
	store := storage.NewStore(db)

	provider := a.newsProvider(baseLogger)

	aggregator := news.NewAggregator(provider, baseLogger.With("component", "aggregator"))

	summarizer, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		return nil, fmt.Errorf("init gemini: %w", err)
	}
	a.cleanup = append(a.cleanup, summarizer.Close)

	sender := mailer.New(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)

	engine := workflow.New(baseLogger.With("component", "engine"))

	digest := usecase.NewDigestPipeline(usecase.DigestDeps{
		Directory:   store,
		Watchlists:  store,
		Aggregator:  aggregator,
		Summarizer:  summarizer,
		Mailer:      sender,
		Engine:      engine,
		Logger:      baseLogger.With("component", "digest"),
		MaxArticles: cfg.News.MaxArticles,
	})

	welcome := usecase.NewWelcomeWorkflow(usecase.WelcomeDeps{
		Summarizer: summarizer,
		Mailer:     sender,
		Engine:     engine,
		Logger:     baseLogger.With("component", "welcome"),
	})

	driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
	a.scheduler = usecase.NewScheduler(driver, digest, baseLogger.With("component", "scheduler"))

	a.server = httpapi.NewServer(cfg.Server.Addr, digest, welcome, baseLogger.With("component", "http"))

	return a, nil
}

// newsProvider selects the configured provider and wraps it in the Redis
// read-through cache when an address is configured.
func (a *Application) newsProvider(baseLogger *slog.Logger) ports.NewsProvider {
	var provider ports.NewsProvider
	switch a.cfg.News.Provider {
	case "rss":
		provider = rssfeed.NewProvider(a.cfg.News.RSSFeeds, baseLogger.With("component", "rssfeed"))
	default:
		provider = finnhub.NewClient(a.cfg.News.FinnhubAPIKey)
	}

	if a.cfg.Redis.Addr == "" {
		return provider
	}

	rdb := redis.NewClient(&redis.Options{Addr: a.cfg.Redis.Addr})
	a.cleanup = append(a.cleanup, rdb.Close)
	ttl := time.Duration(a.cfg.Redis.TTLSeconds) * time.Second
	return newscache.Wrap(provider, rdb, ttl, baseLogger.With("component", "newscache"))
}

// Run starts the scheduler and the HTTP trigger server and blocks until ctx
// is canceled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduler stop", "error", err)
	}
	return a.server.Shutdown(shutdownCtx)
}

func (a *Application) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		if err := a.cleanup[i](); err != nil {
			a.logger.Warn("cleanup failed", "error", err)
		}
	}
}
