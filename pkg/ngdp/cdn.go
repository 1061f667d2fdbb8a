package ngdp

import (
	"context"
	"fmt"
)

// SelectCDN picks the CDN entry to use for a region: the first entry whose
// Name matches, else the first entry in source order. An empty manifest
// fails with ErrNoCDN, as does an entry with no hosts.
func SelectCDN(entries []CDNEntry, region string) (CDNEntry, error) {
	if len(entries) == 0 {
		return CDNEntry{}, ErrNoCDN
	}
	entry := entries[0]
	for _, e := range entries {
		if e.Name == region {
			entry = e
			break
		}
	}
	if len(entry.Hosts) == 0 {
		return CDNEntry{}, fmt.Errorf("CDN %q has no hosts: %w", entry.Name, ErrNoCDN)
	}
	return entry, nil
}

// CDNs fetches and parses the cdns manifest for the client's product.
func (c *Client) CDNs(ctx context.Context) ([]CDNEntry, error) {
	rows, err := c.cachedManifest(ctx, "/cdns")
	if err != nil {
		return nil, err
	}
	entries := make([]CDNEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, cdnEntryFromRow(row))
	}
	return entries, nil
}

// CDNHost resolves the base URL for all content retrieval, in the form
// "http://{host}/{path}/". The result is computed once per client; every
// caller after the first gets the memoized value (or the memoized error).
func (c *Client) CDNHost(ctx context.Context) (string, error) {
	c.cdnOnce.Do(func() {
		entries, err := c.CDNs(ctx)
		if err != nil {
			c.cdnErr = err
			return
		}
		entry, err := SelectCDN(entries, c.region)
		if err != nil {
			c.cdnErr = err
			return
		}
		c.cdnHost = fmt.Sprintf("http://%s/%s/", entry.Hosts[0], entry.Path)
		c.log.Debug("resolved CDN host", "region", c.region, "cdn", entry.Name, "host", c.cdnHost)
	})
	return c.cdnHost, c.cdnErr
}
