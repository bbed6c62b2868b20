package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"inventory_control_backend/internal/models"
	"inventory_control_backend/pkg/utils"
)

// ReportCache stores product activity reports by key. Cache failures never fail a request.
type ReportCache interface {
	Get(ctx context.Context, key string) (*models.ProductActivityReport, bool)
	Set(ctx context.Context, key string, report *models.ProductActivityReport)
}

type noopReportCache struct{}

func NewNoopReportCache() ReportCache { return noopReportCache{} }

func (noopReportCache) Get(context.Context, string) (*models.ProductActivityReport, bool) {
	return nil, false
}

func (noopReportCache) Set(context.Context, string, *models.ProductActivityReport) {}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisReportCache caches reports in redis. Revisions restart at zero with the process,
// so every key carries a per-process instance id.
func NewRedisReportCache(client *redis.Client, ttl time.Duration) ReportCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisReportCache{
		client: client,
		ttl:    ttl,
		prefix: "inventory:report:" + uuid.NewString() + ":",
	}
}

func (c *redisReportCache) Get(ctx context.Context, key string) (*models.ProductActivityReport, bool) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			utils.LogWarn("Report cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
		return nil, false
	}
	var report models.ProductActivityReport
	if err := json.Unmarshal(data, &report); err != nil {
		utils.LogWarn("Report cache entry unreadable", map[string]interface{}{"key": key, "error": err.Error()})
		return nil, false
	}
	utils.LogDebug("Report cache hit", map[string]interface{}{"key": key})
	return &report, true
}

func (c *redisReportCache) Set(ctx context.Context, key string, report *models.ProductActivityReport) {
	data, err := json.Marshal(report)
	if err != nil {
		utils.LogWarn("Report cache encode failed", map[string]interface{}{"key": key, "error": err.Error()})
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		utils.LogWarn("Report cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}
