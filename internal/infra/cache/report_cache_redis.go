package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"app/internal/analytics"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// 集計レポートのキャッシュ。
// ダッシュボードのポーリングで毎回全件集計しないための短TTLキャッシュ。
type ReportCacheRedis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewReportCacheRedis(client *redis.Client, ttl time.Duration) *ReportCacheRedis {
	return &ReportCacheRedis{client: client, ttl: ttl}
}

func NewRedisClient(addr string, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// 期間ごとにキーを分ける
func reportKey(rangeDays int) string {
	return fmt.Sprintf("analytics:report:%dd", rangeDays)
}

func (c *ReportCacheRedis) Get(ctx context.Context, rangeDays int) (analytics.Report, error) {
	raw, err := c.client.Get(ctx, reportKey(rangeDays)).Result()
	if errors.Is(err, redis.Nil) {
		return analytics.Report{}, ErrCacheMiss
	}
	if err != nil {
		return analytics.Report{}, err
	}

	var report analytics.Report
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return analytics.Report{}, err
	}
	return report, nil
}

func (c *ReportCacheRedis) Set(ctx context.Context, rangeDays int, report analytics.Report) error {
	b, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, reportKey(rangeDays), b, c.ttl).Err()
}
