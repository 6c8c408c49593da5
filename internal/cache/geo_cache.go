package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brgyhealth/bhc_api/internal/models"
)

// Geo levels used as cache key segments.
const (
	LevelRegions          = "regions"
	LevelProvinces        = "provinces"
	LevelCitiesByRegion   = "region-cities"
	LevelCitiesByProvince = "province-cities"
	LevelBarangays        = "barangays"
)

// GeoCache caches PSGC option lists per level and parent code. Lists are
// reference data that changes rarely, so a flat TTL is enough.
type GeoCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewGeoCache creates a new GeoCache.
func NewGeoCache(redis *RedisClient, ttl time.Duration) *GeoCache {
	return &GeoCache{
		redis: redis,
		ttl:   ttl,
	}
}

// key returns the Redis key for a level/parent pair.
// Format: geo:{level}:{parentCode} (root levels use "all").
func (c *GeoCache) key(level, parentCode string) string {
	if parentCode == "" {
		parentCode = "all"
	}
	return fmt.Sprintf("geo:%s:%s", level, parentCode)
}

// Get retrieves a cached option list. The bool result reports a hit.
func (c *GeoCache) Get(ctx context.Context, level, parentCode string) ([]models.GeoOption, bool) {
	jsonData, err := c.redis.Get(ctx, c.key(level, parentCode))
	if err != nil {
		return nil, false
	}

	var options []models.GeoOption
	if err := json.Unmarshal([]byte(jsonData), &options); err != nil {
		return nil, false
	}
	return options, true
}

// Set stores an option list under the level/parent key.
func (c *GeoCache) Set(ctx context.Context, level, parentCode string, options []models.GeoOption) error {
	jsonData, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("failed to marshal geo options: %w", err)
	}
	return c.redis.Set(ctx, c.key(level, parentCode), string(jsonData), c.ttl)
}
