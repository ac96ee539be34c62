// Package app assembles the configured application: stores, fetcher, job
// registry and the crawl service the HTTP API submits into.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/prensa-rd/newscrawler/internal/clock/system"
	"github.com/prensa-rd/newscrawler/internal/config"
	"github.com/prensa-rd/newscrawler/internal/crawler"
	uuidgen "github.com/prensa-rd/newscrawler/internal/id/uuid"
	"github.com/prensa-rd/newscrawler/internal/jobs"
	"github.com/prensa-rd/newscrawler/internal/publisher"
	"github.com/prensa-rd/newscrawler/internal/sites"
	"github.com/prensa-rd/newscrawler/internal/snapshot"
	"github.com/prensa-rd/newscrawler/internal/store"
)

// App owns the wired components and the lifetime of background crawls.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Store     store.ArticleStore
	Registry  *jobs.Registry
	Fetcher   crawler.Fetcher
	Validator *crawler.Validator
	Snapshots crawler.SnapshotStore
	Publisher publisher.Publisher

	runCtx    context.Context
	runCancel context.CancelFunc
	pool      *pgxpool.Pool
	closers   []func() error
}

// New builds the application from configuration. The returned App must be
// closed to release clients and stop background crawls.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	clk := system.New()
	a := &App{
		Config:    cfg,
		Logger:    logger,
		Registry:  jobs.New(uuidgen.New(), clk),
		Validator: crawler.NewValidator(clk),
	}
	a.runCtx, a.runCancel = context.WithCancel(context.Background())

	robots := crawler.NewRobotsPolicy(cfg.Crawler.RespectRobots, cfg.Crawler.UserAgent, logger)
	a.Fetcher = crawler.NewCollyFetcher(crawler.FetcherConfig{
		UserAgent: cfg.Crawler.UserAgent,
		CacheDir:  cfg.Crawler.CacheDir,
	}, robots, logger)

	if err := a.buildStore(ctx, cfg); err != nil {
		return nil, err
	}
	if err := a.buildSnapshots(ctx, cfg, logger); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.buildPublisher(ctx, cfg, logger); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) buildStore(ctx context.Context, cfg *config.Config) error {
	switch cfg.Store.Provider {
	case "fs":
		fsStore, err := store.NewFSStore(cfg.Store.DataDir)
		if err != nil {
			return err
		}
		a.Store = fsStore
	case "postgres":
		pgStore, pool, err := store.OpenPostgres(ctx, cfg.Store.DSN)
		if err != nil {
			return err
		}
		if err := pgStore.Migrate(ctx); err != nil {
			pool.Close()
			return err
		}
		a.Store = pgStore
		a.pool = pool
	default:
		return fmt.Errorf("unknown store provider %q", cfg.Store.Provider)
	}
	return nil
}

func (a *App) buildSnapshots(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	switch cfg.Snapshot.Provider {
	case "noop":
		a.Snapshots = nil
	case "local":
		local, err := snapshot.NewLocalStore(cfg.Snapshot.Dir)
		if err != nil {
			return err
		}
		a.Snapshots = local
	case "gcs":
		gcs, err := snapshot.NewGCSStore(ctx, cfg.Snapshot.Bucket, logger)
		if err != nil {
			return err
		}
		a.Snapshots = gcs
		a.closers = append(a.closers, gcs.Close)
	default:
		return fmt.Errorf("unknown snapshot provider %q", cfg.Snapshot.Provider)
	}
	return nil
}

func (a *App) buildPublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	switch cfg.Publisher.Provider {
	case "noop":
		a.Publisher = publisher.NewNoop()
	case "memory":
		a.Publisher = publisher.NewMemory()
	case "pubsub":
		ps, err := publisher.NewPubSub(ctx, cfg.Publisher.Project, cfg.Publisher.Topic, logger)
		if err != nil {
			return err
		}
		a.Publisher = ps
		a.closers = append(a.closers, ps.Close)
	default:
		return fmt.Errorf("unknown publisher provider %q", cfg.Publisher.Provider)
	}
	return nil
}

// Start registers a running job for the site and launches the crawl in the
// background. The job's terminal transition and the completion event are
// handled here, not by the caller.
func (a *App) Start(ctx context.Context, site string, seedURLs []string) (crawler.Job, error) {
	profile, err := sites.Lookup(site)
	if err != nil {
		return crawler.Job{}, err
	}
	job, err := a.Registry.Create(ctx, site)
	if err != nil {
		return crawler.Job{}, err
	}

	go a.runCrawl(profile, job, seedURLs)
	return job, nil
}

func (a *App) runCrawl(profile *sites.Profile, job crawler.Job, seedURLs []string) {
	logger := a.Logger.With(zap.String("job_id", job.ID), zap.String("site", profile.Name))
	driver := crawler.NewDriver(profile, a.Fetcher, a.Validator, a.Store, a.Snapshots, a.Logger)

	outcome, runErr := driver.Run(a.runCtx, job.ID, seedURLs)

	status := crawler.JobStatusCompleted
	if runErr != nil {
		status = crawler.JobStatusFailed
		logger.Error("crawl failed", zap.Error(runErr))
		if err := a.Registry.Fail(context.Background(), job.ID, runErr.Error()); err != nil {
			logger.Error("job fail transition rejected", zap.Error(err))
		}
	} else {
		logger.Info("crawl completed",
			zap.Int("listings_fetched", outcome.ListingsFetched),
			zap.Int("articles_fetched", outcome.ArticlesFetched),
			zap.Int("pages_failed", outcome.PagesFailed),
			zap.Int("rejected", outcome.Rejected),
			zap.Int("records", outcome.Records),
		)
		if err := a.Registry.Complete(context.Background(), job.ID, outcome.Records); err != nil {
			logger.Error("job complete transition rejected", zap.Error(err))
		}
	}

	event := publisher.CompletionEvent{
		JobID:      job.ID,
		Site:       profile.Name,
		Status:     string(status),
		Records:    outcome.Records,
		FinishedAt: time.Now().UTC(),
	}
	if err := a.Publisher.Publish(context.Background(), event); err != nil {
		logger.Warn("completion event publish failed", zap.Error(err))
	}
}

// Close stops background crawls and releases external clients.
func (a *App) Close() {
	a.runCancel()
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.Logger.Warn("component close failed", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
