package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vitrine/backend/internal/domain/shopping"
)

// defaultSnapshotTTL bounds how long an abandoned session's aggregates
// are retained before Redis expires them
const defaultSnapshotTTL = 30 * 24 * time.Hour

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisSnapshotStore implements shopping.SnapshotStore on Redis.
// Each aggregate is one JSON value under its namespaced session key,
// written with a sliding TTL so active sessions never expire mid-visit.
type RedisSnapshotStore struct {
	client     *redis.Client
	ownsClient bool
	ttl        time.Duration
}

// RedisSnapshotStoreOption is a functional option for configuring the store
type RedisSnapshotStoreOption func(*RedisSnapshotStore)

// WithSnapshotTTL sets the retention period for persisted snapshots
func WithSnapshotTTL(ttl time.Duration) RedisSnapshotStoreOption {
	return func(s *RedisSnapshotStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewRedisSnapshotStore creates a Redis-backed snapshot store
func NewRedisSnapshotStore(cfg RedisConfig, opts ...RedisSnapshotStoreOption) (*RedisSnapshotStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	store := &RedisSnapshotStore{
		client:     client,
		ownsClient: true,
		ttl:        defaultSnapshotTTL,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// NewRedisSnapshotStoreWithClient creates a store with an existing Redis client.
// The caller retains ownership of the client and is responsible for closing it.
func NewRedisSnapshotStoreWithClient(client *redis.Client, opts ...RedisSnapshotStoreOption) *RedisSnapshotStore {
	store := &RedisSnapshotStore{
		client:     client,
		ownsClient: false,
		ttl:        defaultSnapshotTTL,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *RedisSnapshotStore) save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot %q: %w", key, err)
	}
	return nil
}

func (s *RedisSnapshotStore) load(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load snapshot %q: %w", key, err)
	}
	return data, true, nil
}

func (s *RedisSnapshotStore) delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot %q: %w", key, err)
	}
	return nil
}

// SaveCart persists the cart snapshot under the session's cart key
func (s *RedisSnapshotStore) SaveCart(ctx context.Context, key shopping.SessionKey, snap shopping.CartSnapshot) error {
	data, err := shopping.EncodeCartSnapshot(snap)
	if err != nil {
		return err
	}
	return s.save(ctx, key.CartKey(), data)
}

// LoadCart returns the cart snapshot, with found=false for an absent key
func (s *RedisSnapshotStore) LoadCart(ctx context.Context, key shopping.SessionKey) (shopping.CartSnapshot, bool, error) {
	data, found, err := s.load(ctx, key.CartKey())
	if err != nil || !found {
		return shopping.CartSnapshot{}, found, err
	}
	snap, err := shopping.DecodeCartSnapshot(data)
	if err != nil {
		return shopping.CartSnapshot{}, false, err
	}
	return snap, true, nil
}

// DeleteCart removes the session's cart snapshot
func (s *RedisSnapshotStore) DeleteCart(ctx context.Context, key shopping.SessionKey) error {
	return s.delete(ctx, key.CartKey())
}

// SaveFavorites persists the favorites snapshot under the session's favorites key
func (s *RedisSnapshotStore) SaveFavorites(ctx context.Context, key shopping.SessionKey, snap shopping.FavoritesSnapshot) error {
	data, err := shopping.EncodeFavoritesSnapshot(snap)
	if err != nil {
		return err
	}
	return s.save(ctx, key.FavoritesKey(), data)
}

// LoadFavorites returns the favorites snapshot, with found=false for an absent key
func (s *RedisSnapshotStore) LoadFavorites(ctx context.Context, key shopping.SessionKey) (shopping.FavoritesSnapshot, bool, error) {
	data, found, err := s.load(ctx, key.FavoritesKey())
	if err != nil || !found {
		return shopping.FavoritesSnapshot{}, found, err
	}
	snap, err := shopping.DecodeFavoritesSnapshot(data)
	if err != nil {
		return shopping.FavoritesSnapshot{}, false, err
	}
	return snap, true, nil
}

// DeleteFavorites removes the session's favorites snapshot
func (s *RedisSnapshotStore) DeleteFavorites(ctx context.Context, key shopping.SessionKey) error {
	return s.delete(ctx, key.FavoritesKey())
}

// Close closes the Redis client if this store owns it
func (s *RedisSnapshotStore) Close() error {
	if s.ownsClient {
		return s.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (s *RedisSnapshotStore) GetClient() *redis.Client {
	return s.client
}

// Ensure RedisSnapshotStore implements SnapshotStore
var _ shopping.SnapshotStore = (*RedisSnapshotStore)(nil)
