package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/prensa-rd/newscrawler/internal/sites"
)

// ErrRobotsDisallowed marks a URL excluded by the target's robots rules.
// It is permanent: the URL is dropped without retry.
var ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

// FetcherConfig controls collector behavior shared by all profiles.
type FetcherConfig struct {
	UserAgent string
	// CacheDir enables colly's response cache for profiles that allow it.
	// Empty disables caching everywhere.
	CacheDir string
}

// CollyFetcher implements Fetcher on the Colly collector, one clone per
// request, under the profile's politeness and retry policy.
type CollyFetcher struct {
	cfg     FetcherConfig
	robots  RobotsPolicy
	limiter *DomainLimiter
	backoff *ExponentialBackoff
	logger  *zap.Logger

	mu    sync.Mutex
	bases map[string]*colly.Collector
}

// NewCollyFetcher constructs a configured Colly-based Fetcher.
func NewCollyFetcher(cfg FetcherConfig, robots RobotsPolicy, logger *zap.Logger) *CollyFetcher {
	return &CollyFetcher{
		cfg:     cfg,
		robots:  robots,
		limiter: NewDomainLimiter(),
		backoff: NewExponentialBackoff(),
		logger:  logger,
		bases:   make(map[string]*colly.Collector),
	}
}

// Fetch retrieves one URL. Transient failures (retryable status codes,
// network timeouts) are retried with jittered backoff up to the profile's
// limit; exhaustion is a terminal failure for that URL only.
func (f *CollyFetcher) Fetch(
	ctx context.Context,
	rawURL string,
	profile *sites.Profile,
) (FetchResult, error) {
	if !f.robots.Allowed(ctx, rawURL) {
		return FetchResult{}, fmt.Errorf("fetch %s: %w", rawURL, ErrRobotsDisallowed)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return FetchResult{}, fmt.Errorf("parse fetch url: %w", err)
	}

	pol := profile.Politeness
	release, err := f.limiter.Acquire(ctx, parsed.Hostname(), pol)
	if err != nil {
		return FetchResult{}, err
	}

	var (
		result  FetchResult
		lastErr error
	)
	ok := false
	defer func() {
		release(result.Duration, ok)
	}()

	for attempt := 0; ; attempt++ {
		result, lastErr = f.fetchOnce(ctx, rawURL, profile)
		fetchDuration.WithLabelValues(profile.Name).Observe(result.Duration.Seconds())
		if lastErr == nil {
			ok = true
			return result, nil
		}
		if attempt >= pol.RetryMax || !retryableFailure(lastErr, result.StatusCode, pol.RetryStatusCodes) {
			return FetchResult{}, fmt.Errorf("fetch %s: %w", rawURL, lastErr)
		}
		fetchRetries.WithLabelValues(profile.Name).Inc()
		f.logger.Debug("retrying transient fetch failure",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt+1),
			zap.Int("status_code", result.StatusCode),
			zap.Error(lastErr),
		)
		if err := sleepWithContext(ctx, f.backoff.Delay(attempt)); err != nil {
			return FetchResult{}, err
		}
	}
}

// fetchOnce runs a single attempt on a cloned collector. The returned
// FetchResult carries the status code even on failure so the retry policy
// can classify it.
func (f *CollyFetcher) fetchOnce(
	ctx context.Context,
	rawURL string,
	profile *sites.Profile,
) (FetchResult, error) {
	collector := f.base(profile).Clone()

	timeout := profile.Politeness.RequestTimeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collector.SetRequestTimeout(timeout)

	start := time.Now()
	resultCh := make(chan fetchAttempt, 1)
	var once sync.Once
	send := func(res fetchAttempt) {
		once.Do(func() { resultCh <- res })
	}

	collector.OnResponse(func(r *colly.Response) {
		headers := http.Header{}
		if r.Headers != nil {
			headers = r.Headers.Clone()
		}
		send(fetchAttempt{result: FetchResult{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Headers:    headers,
			Body:       append([]byte(nil), r.Body...),
			Duration:   time.Since(start),
		}})
	})

	collector.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		attempt := fetchAttempt{err: err}
		if r != nil {
			attempt.result.StatusCode = r.StatusCode
		}
		attempt.result.Duration = time.Since(start)
		send(attempt)
	})

	done := make(chan error, 1)
	go func() {
		visitErr := collector.Visit(rawURL)
		collector.Wait()
		done <- visitErr
	}()

	select {
	case <-ctx.Done():
		return FetchResult{Duration: time.Since(start)}, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case visitErr := <-done:
		select {
		case attempt := <-resultCh:
			if attempt.err != nil {
				return attempt.result, fmt.Errorf("fetch response: %w", attempt.err)
			}
			return attempt.result, nil
		default:
			if visitErr != nil {
				return FetchResult{Duration: time.Since(start)}, fmt.Errorf("visit: %w", visitErr)
			}
			return FetchResult{Duration: time.Since(start)}, errors.New("fetch produced no result")
		}
	}
}

// base returns the per-profile base collector, creating it on first use.
// Profiles differ in cache policy, so each gets its own base.
func (f *CollyFetcher) base(profile *sites.Profile) *colly.Collector {
	f.mu.Lock()
	defer f.mu.Unlock()
	if base, ok := f.bases[profile.Name]; ok {
		return base
	}

	opts := []colly.CollectorOption{
		colly.UserAgent(f.cfg.UserAgent),
	}
	if profile.Politeness.CacheEnabled && f.cfg.CacheDir != "" {
		opts = append(opts, colly.CacheDir(filepath.Join(f.cfg.CacheDir, profile.Name)))
	}
	base := colly.NewCollector(opts...)
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          128,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
	})

	f.bases[profile.Name] = base
	return base
}

type fetchAttempt struct {
	result FetchResult
	err    error
}
