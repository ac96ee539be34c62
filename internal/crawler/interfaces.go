package crawler

import (
	"context"
	"time"

	"github.com/prensa-rd/newscrawler/internal/sites"
)

// Fetcher fetches a single URL under the profile's politeness policy and
// returns the body plus metadata, or an error for that URL only.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, profile *sites.Profile) (FetchResult, error)
}

// RecordSink accepts accepted records one at a time. Implementations own
// durability; Append must be safe for concurrent use within one job.
type RecordSink interface {
	Append(ctx context.Context, jobID string, record ArticleRecord) error
}

// JobStore tracks job lifecycle. Implementations must reject a second
// terminal transition for the same job.
type JobStore interface {
	Create(ctx context.Context, site string) (Job, error)
	Complete(ctx context.Context, jobID string, records int) error
	Fail(ctx context.Context, jobID string, detail string) error
	Get(ctx context.Context, jobID string) (Job, error)
}

// RobotsPolicy answers whether a URL may be fetched for the configured agent.
type RobotsPolicy interface {
	Allowed(ctx context.Context, rawURL string) bool
}

// SnapshotStore archives raw page bodies. Optional; a nil store disables
// archival.
type SnapshotStore interface {
	Save(ctx context.Context, key string, body []byte) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces job IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
