package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cares/internal/model"
)

// ReportCache handles Redis operations for persisted reports
type ReportCache interface {
	Set(ctx context.Context, rec *model.ReportRecord) error
	Get(ctx context.Context, id int64) (*model.ReportRecord, error)
	SetList(ctx context.Context, list []model.ReportSummary) error
	GetList(ctx context.Context) ([]model.ReportSummary, error)
	InvalidateList(ctx context.Context) error
}

type reportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReportCache creates a new report cache. A non-positive ttl means 24h.
func NewReportCache(client *redis.Client, ttl time.Duration) ReportCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &reportCache{
		client: client,
		ttl:    ttl,
	}
}

func reportKey(id int64) string {
	return fmt.Sprintf("report:%d", id)
}

const reportListKey = "reports:list"

func (c *reportCache) Set(ctx context.Context, rec *model.ReportRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, reportKey(rec.ID), data, c.ttl).Err()
}

func (c *reportCache) Get(ctx context.Context, id int64) (*model.ReportRecord, error) {
	data, err := c.client.Get(ctx, reportKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec model.ReportRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *reportCache) SetList(ctx context.Context, list []model.ReportSummary) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	// short-lived; new reports invalidate it anyway
	return c.client.Set(ctx, reportListKey, data, time.Minute).Err()
}

func (c *reportCache) GetList(ctx context.Context) ([]model.ReportSummary, error) {
	data, err := c.client.Get(ctx, reportListKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []model.ReportSummary
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *reportCache) InvalidateList(ctx context.Context) error {
	return c.client.Del(ctx, reportListKey).Err()
}

// NoopReportCache is used when Redis is not configured
type NoopReportCache struct{}

func (NoopReportCache) Set(context.Context, *model.ReportRecord) error { return nil }
func (NoopReportCache) Get(context.Context, int64) (*model.ReportRecord, error) {
	return nil, nil
}
func (NoopReportCache) SetList(context.Context, []model.ReportSummary) error { return nil }
func (NoopReportCache) GetList(context.Context) ([]model.ReportSummary, error) {
	return nil, nil
}
func (NoopReportCache) InvalidateList(context.Context) error { return nil }
