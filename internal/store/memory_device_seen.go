package store

import (
	"context"
	"sync"
	"time"
)

// MemoryDeviceSeenStore: 用于 Redis 未就绪时的联测和单元测试
// ttl <= 0 表示心跳不过期
type MemoryDeviceSeenStore struct {
	mu   sync.RWMutex
	ttl  time.Duration
	seen map[string]memorySeenEntry
}

type memorySeenEntry struct {
	lastSeen string
	expires  time.Time
}

func NewMemoryDeviceSeenStore(ttl time.Duration) *MemoryDeviceSeenStore {
	return &MemoryDeviceSeenStore{ttl: ttl, seen: map[string]memorySeenEntry{}}
}

var _ DeviceSeenStore = (*MemoryDeviceSeenStore)(nil)

func (s *MemoryDeviceSeenStore) Touch(_ context.Context, deviceID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seen[deviceID] = memorySeenEntry{
		lastSeen: at.Format(time.RFC3339),
		expires:  at.Add(s.ttl),
	}
	return nil
}

func (s *MemoryDeviceSeenStore) OnlineDevices(_ context.Context) ([]DeviceSeen, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	devices := make([]DeviceSeen, 0, len(s.seen))
	for id, e := range s.seen {
		if s.ttl > 0 && now.After(e.expires) {
			continue
		}
		devices = append(devices, DeviceSeen{DeviceID: id, LastSeen: e.lastSeen})
	}
	return devices, nil
}
