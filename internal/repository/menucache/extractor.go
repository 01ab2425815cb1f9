package menucache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/giuliontini/SoDiVino/internal/db"
	"github.com/giuliontini/SoDiVino/internal/domain"
)

// store is the consumer interface for the extraction cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// cachedMenu is the stored form of an extraction. Token counts are not kept.
type cachedMenu struct {
	Text  string           `json:"text"`
	Wines []map[string]any `json:"wines"`
}

// CachedExtractor caches vision extractions keyed by the image content hash.
type CachedExtractor struct {
	inner      domain.MenuExtractor
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.MenuExtractor,
	s store,
	prefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedExtractor {
	return &CachedExtractor{
		inner:      inner,
		store:      s,
		prefix:     prefix,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// ExtractMenu returns a cached extraction or calls the inner extractor.
// Cache hit: token counts are 0. Empty extractions are not cached.
func (c *CachedExtractor) ExtractMenu(ctx context.Context, img domain.MenuImage) (domain.MenuExtraction, error) {
	key := c.cacheKey(img.Data)

	if cached, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		domain.UsageFromContext(ctx).AddTokens(0)
		return domain.MenuExtraction{Text: cached.Text, Wines: cached.Wines}, nil
	}

	c.incCache("miss")

	result, err := c.inner.ExtractMenu(ctx, img)
	if err != nil {
		return domain.MenuExtraction{}, fmt.Errorf("extract menu: %w", err)
	}

	if result.Text != "" || len(result.Wines) > 0 {
		c.putToCache(ctx, key, cachedMenu{Text: result.Text, Wines: result.Wines})
	}
	return result, nil
}

func (c *CachedExtractor) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedExtractor) cacheKey(data []byte) string {
	h := sha256.Sum256(data)
	return c.prefix + "menu_cache:" + hex.EncodeToString(h[:])
}

func (c *CachedExtractor) getFromCache(ctx context.Context, key string) (cachedMenu, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached menu", zap.String("key", key), zap.Error(err))
		}
		return cachedMenu{}, false
	}
	if len(data) == 0 {
		return cachedMenu{}, false
	}

	var m cachedMenu
	if err := json.Unmarshal(data, &m); err != nil {
		c.logger.Warn("Failed to parse cached menu", zap.String("key", key), zap.Error(err))
		return cachedMenu{}, false
	}
	return m, true
}

func (c *CachedExtractor) putToCache(ctx context.Context, key string, m cachedMenu) {
	data, err := json.Marshal(m)
	if err != nil {
		c.logger.Warn("Failed to encode menu for cache", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache menu", zap.String("key", key), zap.Error(err))
	}
}
