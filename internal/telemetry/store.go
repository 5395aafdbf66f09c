package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	redisclient "github.com/caec/caec-backend/pkg/redis"
)

// StoredConfig is the persisted form of a user's irrigation settings.
type StoredConfig struct {
	Config    IrrigationSettings `json:"config"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// ConfigStore keeps one irrigation config per user.
type ConfigStore interface {
	Load(ctx context.Context, userID int64) (*StoredConfig, error)
	Save(ctx context.Context, userID int64, cfg StoredConfig) error
}

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	IrrigationKey(userID int64) string
}

// RedisConfigStore persists configs as JSON under caec:irrigation:<user_id>
// without expiry.
type RedisConfigStore struct {
	client kvStore
}

func NewRedisConfigStore(client kvStore) *RedisConfigStore {
	return &RedisConfigStore{client: client}
}

func (s *RedisConfigStore) Load(ctx context.Context, userID int64) (*StoredConfig, error) {
	raw, err := s.client.Get(ctx, s.client.IrrigationKey(userID))
	if err != nil {
		if redisclient.IsMiss(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read irrigation config: %w", err)
	}
	var cfg StoredConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return nil, fmt.Errorf("decode irrigation config: %w", err)
	}
	return &cfg, nil
}

func (s *RedisConfigStore) Save(ctx context.Context, userID int64, cfg StoredConfig) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode irrigation config: %w", err)
	}
	return s.client.Set(ctx, s.client.IrrigationKey(userID), string(payload), 0)
}

// MemoryConfigStore is used when no redis server is configured.
type MemoryConfigStore struct {
	mu   sync.RWMutex
	data map[int64]StoredConfig
}

func NewMemoryConfigStore() *MemoryConfigStore {
	return &MemoryConfigStore{data: map[int64]StoredConfig{}}
}

func (s *MemoryConfigStore) Load(_ context.Context, userID int64) (*StoredConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.data[userID]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

func (s *MemoryConfigStore) Save(_ context.Context, userID int64, cfg StoredConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[userID] = cfg
	return nil
}
