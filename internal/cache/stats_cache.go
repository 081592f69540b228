package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"zakazBack/internal/models"
)

// ProviderStatsCache keeps provider aggregates in Redis for a short TTL so
// the feed header does not hit the database on every render. The rating
// workflow invalidates the key after every accepted rating.
type ProviderStatsCache struct {
	RDB *redis.Client
	TTL time.Duration
}

func statsKey(providerID int64) string {
	return fmt.Sprintf("provider_stats:%d", providerID)
}

func (c *ProviderStatsCache) Get(ctx context.Context, providerID int64) (models.ProviderStats, bool, error) {
	data, err := c.RDB.Get(ctx, statsKey(providerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.ProviderStats{}, false, nil
		}
		return models.ProviderStats{}, false, err
	}
	var stats models.ProviderStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return models.ProviderStats{}, false, err
	}
	return stats, true, nil
}

func (c *ProviderStatsCache) Set(ctx context.Context, stats models.ProviderStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.RDB.Set(ctx, statsKey(stats.ProviderID), data, c.TTL).Err()
}

func (c *ProviderStatsCache) Invalidate(ctx context.Context, providerID int64) error {
	return c.RDB.Del(ctx, statsKey(providerID)).Err()
}
