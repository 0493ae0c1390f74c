package paperview

import (
	"context"
	"fmt"
)

// SyncOptions configures metadata synchronization.
type SyncOptions struct {
	// Interval selects what to fetch: a YYYY-MM-DD/YYYY-MM-DD date
	// range, the N most recent posts ("30"), or the last N days ("7d").
	Interval string

	// RefreshFeeds also pulls subscribed feeds after the API sync.
	RefreshFeeds bool

	// Progress callback, called with the number of stored manuscripts.
	Progress func(fetched int)
}

// SyncResult summarizes a sync run.
type SyncResult struct {
	Manuscripts  int
	FeedArticles int
}

// Sync pulls manuscript metadata for an interval into the cache and
// optionally refreshes feed subscriptions.
func (c *Cache) Sync(ctx context.Context, opts *SyncOptions) (*SyncResult, error) {
	if opts == nil || opts.Interval == "" {
		return nil, fmt.Errorf("sync interval required")
	}

	result := &SyncResult{}

	manuscripts, err := c.FetchInterval(ctx, opts.Interval)
	result.Manuscripts = len(manuscripts)
	if opts.Progress != nil {
		opts.Progress(result.Manuscripts)
	}
	if err != nil {
		return result, fmt.Errorf("fetch interval: %w", err)
	}

	if opts.RefreshFeeds {
		added, err := c.RefreshFeeds(ctx)
		result.FeedArticles = added
		if err != nil {
			return result, fmt.Errorf("refresh feeds: %w", err)
		}
	}

	return result, nil
}
