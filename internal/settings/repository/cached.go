package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"shopbooking/pkg/logger"
	"shopbooking/pkg/model"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "shopbooking:settings:" + model.DefaultSettingsID

// cachedSettingsRepository reads through Redis. A cache failure is logged and
// the call falls through to the store.
type cachedSettingsRepository struct {
	next  SettingsRepository
	redis *redis.Client
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedSettingsRepository wraps next with a Redis cache. With a nil client
// next is returned unchanged.
func NewCachedSettingsRepository(next SettingsRepository, client *redis.Client, ttl time.Duration, log *logger.Logger) SettingsRepository {
	if client == nil {
		return next
	}
	return &cachedSettingsRepository{
		next:  next,
		redis: client,
		ttl:   ttl,
		log:   log,
	}
}

func (r *cachedSettingsRepository) Get(ctx context.Context) (*model.ShopSettings, error) {
	data, err := r.redis.Get(ctx, cacheKey).Bytes()
	switch {
	case err == nil:
		var settings model.ShopSettings
		if jsonErr := json.Unmarshal(data, &settings); jsonErr == nil {
			return &settings, nil
		}
		r.log.Warn("Discarding undecodable cached settings", "key", cacheKey)
	case !errors.Is(err, redis.Nil):
		r.log.Warn("Settings cache read failed", "error", err)
	}

	settings, err := r.next.Get(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(settings); err == nil {
		if err := r.redis.Set(ctx, cacheKey, data, r.ttl).Err(); err != nil {
			r.log.Warn("Settings cache write failed", "error", err)
		}
	}
	return settings, nil
}

func (r *cachedSettingsRepository) Save(ctx context.Context, settings *model.ShopSettings) error {
	if err := r.next.Save(ctx, settings); err != nil {
		return err
	}
	if err := r.redis.Del(ctx, cacheKey).Err(); err != nil {
		r.log.Warn("Settings cache invalidation failed", "error", err)
	}
	return nil
}
