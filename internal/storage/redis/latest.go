package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taoyao-code/vedirect-server/internal/device"
)

const (
	// Redis Key前缀
	latestKeyPrefix = "telemetry:latest:" // 最新记录（String，JSON，带TTL）
	recordChannel   = "telemetry:records" // 实时记录发布通道（Pub/Sub）
)

// LatestRecord 缓存与发布的记录结构
type LatestRecord struct {
	Serial     string        `json:"serial"`
	Source     string        `json:"source"`
	CapturedAt time.Time     `json:"captured_at"`
	Record     device.Record `json:"record"`
}

// LatestCache 最新遥测记录缓存。每个 Block 写一次，API 的 latest
// 查询与实时订阅方都从这里读，不落到 PG。
type LatestCache struct {
	client *Client
	ttl    time.Duration
}

// NewLatestCache 创建缓存。ttl 为记录过期时间，设备断流后缓存自动消失。
func NewLatestCache(client *Client, ttl time.Duration) *LatestCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &LatestCache{client: client, ttl: ttl}
}

// Store 写入最新记录并发布到实时通道
func (c *LatestCache) Store(ctx context.Context, rec *LatestRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	if err := c.client.Set(ctx, latestKeyPrefix+rec.Serial, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("store latest: %w", err)
	}
	// 发布失败不影响缓存写入,订阅是尽力而为的
	_ = c.client.Publish(ctx, recordChannel, data).Err()
	return nil
}

// Get 读取设备最新记录；缓存不存在返回 (nil, nil)
func (c *LatestCache) Get(ctx context.Context, serial string) (*LatestRecord, error) {
	raw, err := c.client.Get(ctx, latestKeyPrefix+serial).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec LatestRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("parse latest: %w", err)
	}
	return &rec, nil
}

// Subscribe 订阅实时记录通道。调用方负责消费返回的 PubSub 并在结束时关闭。
func (c *LatestCache) Subscribe(ctx context.Context) *redis.PubSub {
	return c.client.Client.Subscribe(ctx, recordChannel)
}
