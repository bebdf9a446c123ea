package placescache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gdugdh24/location-insights/internal/domain"
	"github.com/gdugdh24/location-insights/internal/infrastructure/obs"
	"github.com/gdugdh24/location-insights/internal/ports"
	"github.com/gdugdh24/location-insights/pkg/geo"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "places:v1"

// Coordinates are rounded to ~11 m so nearby requests share entries.
const keyPrecision = 4

// RedisPlacesCache wraps a PlacesProvider with a read-through Redis cache.
// Cache failures are logged and never fail a search.
type RedisPlacesCache struct {
	next   ports.PlacesProvider
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPlacesCache(next ports.PlacesProvider, client *redis.Client, ttl time.Duration) *RedisPlacesCache {
	return &RedisPlacesCache{next: next, client: client, ttl: ttl}
}

func (c *RedisPlacesCache) Search(
	ctx context.Context,
	point domain.Coordinates,
	category domain.Category,
	radiusMeters int,
) ([]domain.Place, error) {
	key := cacheKey(point, category, radiusMeters)

	cached, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var places []domain.Place
		if err := json.Unmarshal(cached, &places); err == nil {
			return places, nil
		}
		log.Printf("req_id=%s places cache decode failed key=%s", obs.RequestID(ctx), key)
	case !errors.Is(err, redis.Nil):
		log.Printf("req_id=%s places cache read failed key=%s err=%v", obs.RequestID(ctx), key, err)
	}

	places, err := c.next.Search(ctx, point, category, radiusMeters)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(places)
	if err == nil {
		err = c.client.Set(ctx, key, payload, c.ttl).Err()
	}
	if err != nil {
		log.Printf("req_id=%s places cache write failed key=%s err=%v", obs.RequestID(ctx), key, err)
	}

	return places, nil
}

// Invalidate drops the cached result for one search.
func (c *RedisPlacesCache) Invalidate(ctx context.Context, point domain.Coordinates, category domain.Category, radiusMeters int) error {
	return c.client.Del(ctx, cacheKey(point, category, radiusMeters)).Err()
}

func cacheKey(point domain.Coordinates, category domain.Category, radiusMeters int) string {
	return fmt.Sprintf("%s:%s:%.4f:%.4f:%d",
		keyPrefix,
		category,
		geo.RoundCoordinate(point.Lat, keyPrecision),
		geo.RoundCoordinate(point.Lng, keyPrecision),
		radiusMeters,
	)
}
