package ngdp

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultArchiveWorkers bounds concurrent archive fetches when the caller
// passes no limit.
const DefaultArchiveWorkers = 8

// Archives returns the archive hashes named by a CDN config's
// space-separated "archives" key, in source order.
func Archives(cdnConfig Config) []string {
	return strings.Fields(cdnConfig.Get("archives"))
}

// FetchArchives fetches every archive named in cdnConfig (index and blob)
// through the cache, at most limit at a time. The fetches are independent,
// so they fan out across a bounded worker pool; the first failure cancels
// the remaining fetches and is returned.
func (c *Client) FetchArchives(ctx context.Context, cdnConfig Config, limit int) error {
	if limit <= 0 {
		limit = DefaultArchiveWorkers
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, hash := range Archives(cdnConfig) {
		hash := hash
		g.Go(func() error {
			_, _, err := c.GetData(gctx, hash)
			return err
		})
	}
	return g.Wait()
}
