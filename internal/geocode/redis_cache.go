package geocode

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/ride-booking/internal/models"
)

// RedisCache implements Cache on a shared Redis instance so warm entries
// survive process restarts. Lookup misses on Redis errors rather than
// failing the caller.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	ctx    context.Context
}

func NewRedisCache(addr, password string, ttl time.Duration) *RedisCache {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisCache{client: c, ttl: ttl, ctx: context.Background()}
}

func (r *RedisCache) Get(placeName string) (models.Coord, bool) {
	v, err := r.client.Get(r.ctx, cacheKey(placeName)).Result()
	if err != nil {
		return models.Coord{}, false
	}
	var c models.Coord
	if _, err := fmt.Sscanf(v, "%f,%f", &c.Lon, &c.Lat); err != nil {
		return models.Coord{}, false
	}
	return c, true
}

func (r *RedisCache) Set(placeName string, c models.Coord) {
	v := fmt.Sprintf("%.6f,%.6f", c.Lon, c.Lat)
	_ = r.client.Set(r.ctx, cacheKey(placeName), v, r.ttl).Err()
}

func cacheKey(placeName string) string { return "geocode:place:" + placeName }
