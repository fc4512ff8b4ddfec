package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// RemoteStore mirrors READY entries outside the process so a restart or a
// sibling instance can serve them without recomputing. Reads are
// best-effort: a mirror failure is a miss, never a search failure.
type RemoteStore interface {
	Get(ctx context.Context, fp string) (EntrySnapshot, bool)
	Set(ctx context.Context, fp string, snap EntrySnapshot) error
	Delete(ctx context.Context, fp string) error
	Close() error
}

type RedisStore struct {
	client *redis.Client
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, fp string) (EntrySnapshot, bool) {
	data, err := s.client.Get(ctx, fp).Bytes()
	if err != nil {
		return EntrySnapshot{}, false
	}

	var snap EntrySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return EntrySnapshot{}, false
	}
	return snap, true
}

func (s *RedisStore) Set(ctx context.Context, fp string, snap EntrySnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	ttl := time.Until(snap.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, fp, data, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, fp string) error {
	return s.client.Del(ctx, fp).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

type NoOpStore struct{}

func NewNoOpStore() *NoOpStore {
	return &NoOpStore{}
}

func (s *NoOpStore) Get(ctx context.Context, fp string) (EntrySnapshot, bool) {
	return EntrySnapshot{}, false
}

func (s *NoOpStore) Set(ctx context.Context, fp string, snap EntrySnapshot) error {
	return nil
}

func (s *NoOpStore) Delete(ctx context.Context, fp string) error {
	return nil
}

func (s *NoOpStore) Close() error {
	return nil
}
