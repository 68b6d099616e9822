package places

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"nexum/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cached is a read-through redis cache in front of another Searcher.
// Cache failures are logged and fall through to the wrapped searcher.
type Cached struct {
	next   Searcher
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

func NewCached(next Searcher, client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *Cached {
	return &Cached{next: next, client: client, ttl: ttl, logger: logger}
}

// cacheKey rounds the center to about 100m so nearby queries share entries.
func cacheKey(q Query) string {
	return fmt.Sprintf("nexum:places:%.3f:%.3f:%s",
		q.Center.Lat, q.Center.Lng, strings.ToLower(strings.Join(q.Keywords, ",")))
}

func (c *Cached) Search(ctx context.Context, q Query) ([]models.Venue, error) {
	key := cacheKey(q)

	data, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		var venues []models.Venue
		if err := json.Unmarshal([]byte(data), &venues); err == nil {
			c.logger.Debug("Venue cache hit", zap.String("key", key))
			return venues, nil
		}
		c.logger.Warn("Dropping corrupt venue cache entry", zap.String("key", key))
	case err != redis.Nil:
		c.logger.Warn("Venue cache read failed", zap.String("key", key), zap.Error(err))
	}

	venues, err := c.next.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(venues)
	if err != nil {
		return venues, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Venue cache write failed", zap.String("key", key), zap.Error(err))
	}
	return venues, nil
}
