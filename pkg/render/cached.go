package render

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/mermedit/pkg/cache"
	"github.com/matzehuels/mermedit/pkg/observability"
)

// DefaultCacheTTL is how long rendered artifacts stay cached.
const DefaultCacheTTL = 24 * time.Hour

// Cached wraps a renderer with a byte cache. Syntax errors and empty
// previews are not cached. Cache failures degrade to rendering.
type Cached struct {
	next  Renderer
	cache cache.Cache
	keyer cache.Keyer
	opts  cache.RenderKeyOpts
	ttl   time.Duration
	group singleflight.Group
}

// NewCached creates a caching renderer. opts must describe everything that
// influences next's output, so that different configurations do not share
// entries. A nil keyer uses the default; ttl <= 0 uses DefaultCacheTTL.
func NewCached(next Renderer, c cache.Cache, keyer cache.Keyer, opts cache.RenderKeyOpts, ttl time.Duration) *Cached {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{next: next, cache: c, keyer: keyer, opts: opts, ttl: ttl}
}

// KeyOpts derives cache key options from a renderer configuration.
func KeyOpts(cfg Config) cache.RenderKeyOpts {
	cfg = cfg.withDefaults()
	return cache.RenderKeyOpts{
		Format:   string(cfg.Format),
		Theme:    cfg.Theme,
		RankDir:  cfg.RankDir,
		FontSize: cfg.FontSize,
	}
}

// Render returns the cached image for text, rendering it on a miss.
// Concurrent calls for the same key share one render.
func (c *Cached) Render(ctx context.Context, text string) ([]byte, error) {
	key := c.keyer.RenderKey(text, c.opts)

	if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "render")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "render")

	v, err, _ := c.group.Do(key, func() (any, error) {
		data, err := c.next.Render(ctx, text)
		if err != nil || len(data) == 0 {
			return data, err
		}
		if err := c.cache.Set(ctx, key, data, c.ttl); err == nil {
			observability.Cache().OnCacheSet(ctx, "render", len(data))
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	data, _ := v.([]byte)
	return data, nil
}

var _ Renderer = (*Cached)(nil)
