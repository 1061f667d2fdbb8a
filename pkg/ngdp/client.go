package ngdp

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Client talks NGDP: it resolves a CDN host for its region, fetches the
// pipe-delimited cdns/versions manifests from the patch server, and
// retrieves hash-addressed config/data/patch blobs from the CDN, caching
// every downloaded artifact on disk so repeat runs avoid the network.
type Client struct {
	patchHost  string
	region     string
	cache      *Cache
	httpClient *http.Client
	log        *slog.Logger

	cdnOnce sync.Once
	cdnHost string
	cdnErr  error

	manifestMu sync.Mutex
	manifests  map[string][]map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithCache uses a custom content cache instead of the per-user default.
func WithCache(cache *Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithHTTPClient uses a custom HTTP client for all network access.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger uses a custom structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithPatchHost overrides the patch server base URL derived from the
// product and region, e.g. for a local mirror or a test server.
func WithPatchHost(url string) Option {
	return func(c *Client) {
		c.patchHost = url
	}
}

// New creates a client for a product ("hsb", "wow", ...) and region. The
// patch server defaults to http://{region}.patch.battle.net:1119/{product}.
func New(product, region string, opts ...Option) *Client {
	c := &Client{
		patchHost: fmt.Sprintf("http://%s.patch.battle.net:1119/%s", region, product),
		region:    region,
		manifests: make(map[string][]map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = NewCache("")
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// Region returns the region the client was created for.
func (c *Client) Region() string {
	return c.region
}

// Cache returns the client's content cache.
func (c *Client) Cache() *Cache {
	return c.cache
}

// shardedPath builds the CDN path for a hash-named object:
// {namespace}/{aa}/{bb}/{name} where aa and bb are the first two and next
// two hex characters of the name.
func shardedPath(namespace, name string) string {
	return fmt.Sprintf("%s/%s/%s/%s", namespace, name[0:2], name[2:4], name)
}

// get issues a GET against url and returns the body. A non-200 status
// fails with a *ServerError carrying the status and requested path.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	c.log.Debug("GET", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ServerError{Status: resp.StatusCode, Path: url}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// CDNGet fetches path relative to the resolved CDN host. This is the raw
// network primitive under every hash-addressed fetch; it is not retried.
func (c *Client) CDNGet(ctx context.Context, path string) ([]byte, error) {
	host, err := c.CDNHost(ctx)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, host+path)
}

// cachedManifest fetches, caches and parses a patch-server manifest
// ("/cdns" or "/versions"). The parsed table is memoized per path for the
// client's lifetime; the raw bytes are persisted under the cdns namespace
// keyed by their MD5 digest.
func (c *Client) cachedManifest(ctx context.Context, path string) ([]map[string]string, error) {
	c.manifestMu.Lock()
	defer c.manifestMu.Unlock()

	if rows, ok := c.manifests[path]; ok {
		return rows, nil
	}

	body, err := c.get(ctx, c.patchHost+path)
	if err != nil {
		return nil, err
	}

	digest := md5.Sum(body)
	hash := hex.EncodeToString(digest[:])
	if err := c.cache.Write("cdns", hash, body); err != nil {
		return nil, err
	}
	c.log.Debug("cached manifest", "path", path, "hash", hash, "bytes", len(body))

	rows, err := ParseManifest(body)
	if err != nil {
		return nil, err
	}
	c.manifests[path] = rows
	return rows, nil
}

// Fetch returns the bytes for a hash-named CDN object, consulting the
// cache first. On a miss the object is fetched from
// {namespace}/{aa}/{bb}/{name} and stored before returning; a failed fetch
// writes nothing.
func (c *Client) Fetch(ctx context.Context, namespace, name string) ([]byte, error) {
	if len(name) < 4 {
		return nil, fmt.Errorf("invalid object name %q", name)
	}

	if c.cache.Contains(namespace, name) {
		return c.cache.Read(namespace, name)
	}

	data, err := c.CDNGet(ctx, shardedPath(namespace, name))
	if err != nil {
		return nil, err
	}
	if err := c.cache.Write(namespace, name, data); err != nil {
		return nil, err
	}
	return data, nil
}

// GetConfig fetches and parses the config blob addressed by hash.
func (c *Client) GetConfig(ctx context.Context, hash string) (Config, error) {
	data, err := c.Fetch(ctx, "config", hash)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(data), nil
}

// GetData fetches the archive addressed by hash: its index ({hash}.index)
// and the archive blob itself. Both bytes are opaque to this layer.
func (c *Client) GetData(ctx context.Context, hash string) (index, data []byte, err error) {
	index, err = c.Fetch(ctx, "data", hash+".index")
	if err != nil {
		return nil, nil, err
	}
	data, err = c.Fetch(ctx, "data", hash)
	if err != nil {
		return nil, nil, err
	}
	return index, data, nil
}

// GetPatch fetches the patch blob addressed by hash.
func (c *Client) GetPatch(ctx context.Context, hash string) ([]byte, error) {
	return c.Fetch(ctx, "patch", hash)
}

// Versions streams the versions manifest rows for the client's region,
// each enriched with its resolved BuildConfig and CDNConfig. Rows arrive
// in manifest order, one at a time, and configs are only resolved as the
// consumer advances; cancel ctx to stop early. The first failed row ends
// the stream after delivering its error. The channel is closed when the
// stream ends for any reason.
func (c *Client) Versions(ctx context.Context) (<-chan VersionResult, error) {
	rows, err := c.cachedManifest(ctx, "/versions")
	if err != nil {
		return nil, err
	}

	out := make(chan VersionResult)
	go func() {
		defer close(out)
		for _, row := range rows {
			if row["Region"] != c.region {
				continue
			}
			version, err := c.resolveVersion(ctx, row)
			result := VersionResult{Version: version, Err: err}
			select {
			case out <- result:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return out, nil
}

// resolveVersion turns a raw versions row into a Version, fetching the two
// config blobs it references. The fetches are independent and run
// concurrently.
func (c *Client) resolveVersion(ctx context.Context, row map[string]string) (*Version, error) {
	version := &Version{
		Region:       row["Region"],
		BuildID:      row["BuildId"],
		VersionsName: row["VersionsName"],
		Row:          row,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cfg, err := c.GetConfig(gctx, row["BuildConfig"])
		if err != nil {
			return fmt.Errorf("failed to resolve build config: %w", err)
		}
		version.BuildConfig = cfg
		return nil
	})
	g.Go(func() error {
		cfg, err := c.GetConfig(gctx, row["CDNConfig"])
		if err != nil {
			return fmt.Errorf("failed to resolve CDN config: %w", err)
		}
		version.CDNConfig = cfg
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return version, nil
}
