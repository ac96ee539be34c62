package crawler

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prensa-rd/newscrawler/internal/sites"
)

// Driver orchestrates one crawl run for one site: it seeds the frontier
// with the profile's section URLs, walks listing pages breadth-first to
// discover article links, then drains the queued article pages through
// extraction and validation, appending accepted records to the sink.
//
// Per-page fetch and extraction failures are logged and skipped; only the
// inability to start the run or reach the record sink is fatal.
type Driver struct {
	profile   *sites.Profile
	fetcher   Fetcher
	validator *Validator
	sink      RecordSink
	snapshots SnapshotStore
	logger    *zap.Logger
}

// NewDriver wires a Driver. snapshots may be nil to disable page archival.
func NewDriver(
	profile *sites.Profile,
	fetcher Fetcher,
	validator *Validator,
	sink RecordSink,
	snapshots SnapshotStore,
	logger *zap.Logger,
) *Driver {
	return &Driver{
		profile:   profile,
		fetcher:   fetcher,
		validator: validator,
		sink:      sink,
		snapshots: snapshots,
		logger:    logger.With(zap.String("site", profile.Name)),
	}
}

// Run executes the crawl for jobID. seedOverride, when non-empty, replaces
// the profile's configured section URLs. The returned error is the run's
// terminal failure; a nil error with a populated Outcome is success even
// when individual pages failed along the way.
func (d *Driver) Run(ctx context.Context, jobID string, seedOverride []string) (Outcome, error) {
	frontier := NewFrontier()

	seeds := seedOverride
	if len(seeds) == 0 {
		seeds = d.profile.SeedURLs()
	}

	var listings []string
	for _, seed := range seeds {
		normalized, err := NormalizeURL(seed)
		if err != nil {
			d.logger.Warn("skipping malformed seed", zap.String("url", seed), zap.Error(err))
			continue
		}
		if frontier.Admit(normalized) {
			listings = append(listings, normalized)
		}
	}
	if len(listings) == 0 {
		return Outcome{}, errors.New("no usable seed URLs")
	}

	var outcome Outcome

	// Discovering: breadth-first over listing pages. Fetches within a level
	// run concurrently; frontier admission stays in this goroutine so the
	// at-most-once dispatch invariant needs no extra locking discipline.
	var articles []string
	for len(listings) > 0 {
		if ctx.Err() != nil {
			return outcome, fmt.Errorf("crawl canceled: %w", ctx.Err())
		}
		results := d.fetchAll(ctx, listings)

		var next []string
		for _, res := range results {
			if res.err != nil {
				outcome.PagesFailed++
				pageFailures.WithLabelValues(d.profile.Name).Inc()
				d.logger.Warn("listing fetch failed", zap.String("url", res.url), zap.Error(res.err))
				continue
			}
			outcome.ListingsFetched++
			pagesFetched.WithLabelValues(d.profile.Name, "listing").Inc()

			links, err := ExtractLinks(res.result.URL, res.result.Body, d.profile)
			if err != nil {
				outcome.PagesFailed++
				d.logger.Warn("listing parse failed", zap.String("url", res.url), zap.Error(err))
				continue
			}
			for _, link := range links.Articles {
				normalized, err := NormalizeURL(link)
				if err != nil {
					continue
				}
				if frontier.Admit(normalized) {
					articles = append(articles, normalized)
				}
			}
			for _, link := range links.Listings {
				normalized, err := NormalizeURL(link)
				if err != nil {
					continue
				}
				if frontier.Admit(normalized) {
					next = append(next, normalized)
				}
			}
		}
		listings = next
	}

	d.logger.Info("discovery finished",
		zap.Int("listings_fetched", outcome.ListingsFetched),
		zap.Int("articles_queued", len(articles)),
	)

	// Draining: fetch, extract, validate, emit. Record order follows
	// completion order; the sink is append-only per job.
	if err := d.drain(ctx, jobID, articles, &outcome); err != nil {
		return outcome, err
	}

	if ctx.Err() != nil {
		return outcome, fmt.Errorf("crawl canceled: %w", ctx.Err())
	}
	return outcome, nil
}

type pageFetch struct {
	url    string
	result FetchResult
	err    error
}

// fetchAll fans the URLs out over a bounded worker set and gathers results.
// The per-domain limiter inside the fetcher enforces politeness; the bound
// here only keeps goroutine counts proportional to the profile's cap.
func (d *Driver) fetchAll(ctx context.Context, urls []string) []pageFetch {
	workers := d.profile.Politeness.Concurrency
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan string)
	results := make(chan pageFetch, len(urls))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rawURL := range jobs {
				res, err := d.fetcher.Fetch(ctx, rawURL, d.profile)
				results <- pageFetch{url: rawURL, result: res, err: err}
			}
		}()
	}

	for _, rawURL := range urls {
		if ctx.Err() != nil {
			break
		}
		jobs <- rawURL
	}
	close(jobs)
	wg.Wait()
	close(results)

	gathered := make([]pageFetch, 0, len(urls))
	for res := range results {
		gathered = append(gathered, res)
	}
	return gathered
}

// drain processes the queued article URLs. A sink failure is the only
// run-level error; everything else is isolated to its page.
func (d *Driver) drain(ctx context.Context, jobID string, articles []string, outcome *Outcome) error {
	workers := d.profile.Politeness.Concurrency
	if workers <= 0 {
		workers = 1
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan string)
	var (
		mu      sync.Mutex
		sinkErr error
	)
	fail := func(err error) {
		mu.Lock()
		if sinkErr == nil {
			sinkErr = err
		}
		mu.Unlock()
		cancel()
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rawURL := range jobs {
				d.processArticle(runCtx, jobID, rawURL, &mu, outcome, fail)
			}
		}()
	}

	for _, rawURL := range articles {
		if runCtx.Err() != nil {
			break
		}
		jobs <- rawURL
	}
	close(jobs)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if sinkErr != nil {
		return fmt.Errorf("record sink: %w", sinkErr)
	}
	return nil
}

func (d *Driver) processArticle(
	ctx context.Context,
	jobID string,
	rawURL string,
	mu *sync.Mutex,
	outcome *Outcome,
	fail func(error),
) {
	if ctx.Err() != nil {
		return
	}

	res, err := d.fetcher.Fetch(ctx, rawURL, d.profile)
	if err != nil {
		mu.Lock()
		outcome.PagesFailed++
		mu.Unlock()
		pageFailures.WithLabelValues(d.profile.Name).Inc()
		d.logger.Warn("article fetch failed", zap.String("url", rawURL), zap.Error(err))
		return
	}
	mu.Lock()
	outcome.ArticlesFetched++
	mu.Unlock()
	pagesFetched.WithLabelValues(d.profile.Name, "article").Inc()

	if d.snapshots != nil {
		key := d.snapshotKey(res.URL)
		if err := d.snapshots.Save(ctx, key, res.Body); err != nil {
			d.logger.Warn("page snapshot failed", zap.String("url", res.URL), zap.Error(err))
		}
	}

	candidate, err := Extract(res.URL, res.Body, d.profile)
	if err != nil {
		mu.Lock()
		outcome.PagesFailed++
		mu.Unlock()
		d.logger.Warn("article parse failed", zap.String("url", res.URL), zap.Error(err))
		return
	}

	record := d.validator.Validate(candidate)
	if record == nil {
		mu.Lock()
		outcome.Rejected++
		mu.Unlock()
		recordsRejected.WithLabelValues(d.profile.Name).Inc()
		d.logger.Debug("candidate rejected", zap.String("url", res.URL))
		return
	}

	if err := d.sink.Append(ctx, jobID, *record); err != nil {
		fail(err)
		return
	}
	mu.Lock()
	outcome.Records++
	mu.Unlock()
	recordsEmitted.WithLabelValues(d.profile.Name).Inc()
}

func (d *Driver) snapshotKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return path.Join(
		d.profile.Name,
		time.Now().UTC().Format("2006-01-02"),
		fmt.Sprintf("%x.html", sum),
	)
}
