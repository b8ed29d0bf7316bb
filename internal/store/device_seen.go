package store

import (
	"context"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// 采集设备心跳键：device:last-seen:<device_id>，值为 RFC3339 时间戳
const seenKeyPrefix = "device:last-seen:"

// DeviceSeen 一台有心跳的采集设备
type DeviceSeen struct {
	DeviceID string
	LastSeen string // RFC3339
}

// DeviceSeenStore 采集设备在线心跳存储
// 生命周期服务在每次签收采集时 Touch；超过 TTL 未刷新的设备视为离线
type DeviceSeenStore interface {
	Touch(ctx context.Context, deviceID string, at time.Time) error
	OnlineDevices(ctx context.Context) ([]DeviceSeen, error)
}

// RedisDeviceSeenStore Redis 实现：心跳过期交给 key TTL
type RedisDeviceSeenStore struct {
	c   *redis.Client
	ttl time.Duration
}

func NewRedisDeviceSeenStore(c *redis.Client, ttl time.Duration) *RedisDeviceSeenStore {
	return &RedisDeviceSeenStore{c: c, ttl: ttl}
}

var _ DeviceSeenStore = (*RedisDeviceSeenStore)(nil)

func (s *RedisDeviceSeenStore) Touch(ctx context.Context, deviceID string, at time.Time) error {
	return s.c.Set(ctx, seenKeyPrefix+deviceID, at.Format(time.RFC3339), s.ttl).Err()
}

func (s *RedisDeviceSeenStore) OnlineDevices(ctx context.Context) ([]DeviceSeen, error) {
	var keys []string
	var cursor uint64
	for {
		k, next, err := s.c.Scan(ctx, cursor, seenKeyPrefix+"*", 200).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, k...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	devices := make([]DeviceSeen, 0, len(keys))
	for _, key := range keys {
		val, err := s.c.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				continue // key 在 scan 与 get 之间过期属正常
			}
			return nil, err
		}
		devices = append(devices, DeviceSeen{
			DeviceID: strings.TrimPrefix(key, seenKeyPrefix),
			LastSeen: val,
		})
	}
	return devices, nil
}
