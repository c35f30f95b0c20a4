package caching

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"receiptpanel/internal/models"

	"github.com/redis/go-redis/v9"
)

const dashboardKey = "receiptpanel:dashboard:today"

type CacheService interface {
	// GetDashboard returns nil without error on a cache miss.
	GetDashboard(ctx context.Context) (*models.Dashboard, error)
	SetDashboard(ctx context.Context, dashboard *models.Dashboard, ttl time.Duration) error
	InvalidateDashboard(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int, logger *slog.Logger) CacheService {
	// Accept redis://host:port as well as host:port
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		logger.Warn("redis ping failed, dashboard cache degraded", slog.String("addr", parsedAddr), slog.Any("error", pingErr))
	} else {
		logger.Info("redis connected", slog.String("addr", parsedAddr))
	}

	return NewCacheService(client)
}

// NewCacheService wraps an existing client.
func NewCacheService(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetDashboard(ctx context.Context) (*models.Dashboard, error) {
	data, err := r.client.Get(ctx, dashboardKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var dashboard models.Dashboard
	if err := json.Unmarshal(data, &dashboard); err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (r *redisCacheService) SetDashboard(ctx context.Context, dashboard *models.Dashboard, ttl time.Duration) error {
	data, err := json.Marshal(dashboard)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, dashboardKey, data, ttl).Err()
}

func (r *redisCacheService) InvalidateDashboard(ctx context.Context) error {
	return r.client.Del(ctx, dashboardKey).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCacheService) Close() error {
	return r.client.Close()
}

// noopCache stands in when Redis is not configured. Every read is a miss.
type noopCache struct{}

func NewNoopCacheService() CacheService {
	return noopCache{}
}

func (noopCache) GetDashboard(context.Context) (*models.Dashboard, error) { return nil, nil }

func (noopCache) SetDashboard(context.Context, *models.Dashboard, time.Duration) error { return nil }

func (noopCache) InvalidateDashboard(context.Context) error { return nil }

func (noopCache) Ping(context.Context) error { return nil }

func (noopCache) Close() error { return nil }
