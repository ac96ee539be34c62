package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prensa-rd/newscrawler/internal/app"
	"github.com/prensa-rd/newscrawler/internal/crawler"
	"github.com/prensa-rd/newscrawler/internal/sites"
)

func newCrawlCmd() *cobra.Command {
	var seedURLs []string

	cmd := &cobra.Command{
		Use:   "crawl <site>",
		Short: "Runs one crawl for a site and waits for it to finish",
		Long: `Runs a single crawl for the named site profile, writing accepted
records to the configured store. With --url flags, the given pages are
crawled instead of the profile's section listings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl(cmd, args[0], seedURLs)
		},
	}
	cmd.Flags().StringSliceVar(&seedURLs, "url", nil, "seed URL overriding the profile sections (repeatable)")
	return cmd
}

func runCrawl(cmd *cobra.Command, site string, seedURLs []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if _, err := sites.Lookup(site); err != nil {
		return err
	}

	ctx := cmd.Context()
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer application.Close()

	job, err := application.Start(ctx, site, seedURLs)
	if err != nil {
		return fmt.Errorf("start crawl: %w", err)
	}
	logger.Info("crawl started", zap.String("job_id", job.ID), zap.String("site", site))

	// Poll until the background run reaches a terminal state.
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("crawl interrupted: %w", ctx.Err())
		case <-time.After(500 * time.Millisecond):
		}
		current, err := application.Registry.Get(ctx, job.ID)
		if err != nil {
			return fmt.Errorf("poll job: %w", err)
		}
		if !current.Terminal() {
			continue
		}
		if current.Status == crawler.JobStatusFailed {
			return fmt.Errorf("crawl failed: %s", current.ErrorText)
		}
		logger.Info("crawl finished",
			zap.String("job_id", current.ID),
			zap.Int("records", current.Records),
		)
		return nil
	}
}
