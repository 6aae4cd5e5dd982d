package community

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/acube-health/acube-api/internal/model"
	"github.com/acube-health/acube-api/pkg/logger"
)

const (
	feedCacheKey = "community:feed"
	feedCacheTTL = 5 * time.Minute
)

// redisFeedCache keeps the serialized feed in Redis with a short TTL so
// busy read traffic doesn't hit the database on every request.
type redisFeedCache struct {
	client *redis.Client
	logger *logger.Logger
}

func NewRedisFeedCache(client *redis.Client, l *logger.Logger) FeedCache {
	return &redisFeedCache{client: client, logger: l}
}

func (c *redisFeedCache) Get(ctx context.Context) ([]*model.CommunityPost, bool) {
	data, err := c.client.Get(ctx, feedCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("feed cache read failed", "error", err.Error())
		}
		return nil, false
	}

	var posts []*model.CommunityPost
	if err := json.Unmarshal(data, &posts); err != nil {
		c.logger.Warn("feed cache decode failed", "error", err.Error())
		return nil, false
	}
	return posts, true
}

func (c *redisFeedCache) Set(ctx context.Context, posts []*model.CommunityPost) {
	data, err := json.Marshal(posts)
	if err != nil {
		c.logger.Warn("feed cache encode failed", "error", err.Error())
		return
	}
	if err := c.client.Set(ctx, feedCacheKey, data, feedCacheTTL).Err(); err != nil {
		c.logger.Warn("feed cache write failed", "error", err.Error())
	}
}

func (c *redisFeedCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, feedCacheKey).Err(); err != nil {
		c.logger.Warn("feed cache invalidation failed", "error", err.Error())
	}
}
