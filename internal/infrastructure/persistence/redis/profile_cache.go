package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/internal/domain/repository"
	"github.com/aegisai/aegis/pkg/logger"
)

// CachedModelProfileRepository is a cache-aside decorator over the PostgreSQL
// profile repository. Profiles are read once per scored event, so the cache
// absorbs nearly all of that load. Cache failures degrade to the database.
type CachedModelProfileRepository struct {
	inner  repository.ModelProfileRepository
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

var _ repository.ModelProfileRepository = (*CachedModelProfileRepository)(nil)

func NewCachedModelProfileRepository(
	inner repository.ModelProfileRepository,
	client *redis.Client,
	ttl time.Duration,
	log logger.Logger,
) *CachedModelProfileRepository {
	return &CachedModelProfileRepository{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: log.WithComponent("profile_cache"),
	}
}

func profileKey(tenantID, modelName string) string {
	return fmt.Sprintf("aegis:profile:%s:%s", tenantID, modelName)
}

func (r *CachedModelProfileRepository) FindByTenantAndModel(ctx context.Context, tenantID, modelName string) (*models.ModelProfile, error) {
	key := profileKey(tenantID, modelName)

	raw, err := r.client.Get(ctx, key).Result()
	if err == nil {
		var profile models.ModelProfile
		if jsonErr := json.Unmarshal([]byte(raw), &profile); jsonErr == nil {
			return &profile, nil
		}
		// poisoned entry, fall through to the database
		r.client.Del(ctx, key)
	} else if err != redis.Nil {
		r.logger.Warn(ctx, "profile cache read failed", logger.Fields{"error": err.Error()})
	}

	profile, err := r.inner.FindByTenantAndModel(ctx, tenantID, modelName)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(profile); jsonErr == nil {
		if setErr := r.client.Set(ctx, key, data, r.ttl).Err(); setErr != nil {
			r.logger.Warn(ctx, "profile cache write failed", logger.Fields{"error": setErr.Error()})
		}
	}
	return profile, nil
}

func (r *CachedModelProfileRepository) Upsert(ctx context.Context, profile *models.ModelProfile) error {
	if err := r.inner.Upsert(ctx, profile); err != nil {
		return err
	}
	if err := r.client.Del(ctx, profileKey(profile.TenantID, profile.ModelName)).Err(); err != nil {
		r.logger.Warn(ctx, "profile cache invalidation failed", logger.Fields{"error": err.Error()})
	}
	return nil
}
