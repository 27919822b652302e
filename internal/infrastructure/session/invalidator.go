package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultCatalogChannel is the Pub/Sub channel for catalog change notifications
const DefaultCatalogChannel = "catalog:changed"

const invalidatorCloseTimeout = 5 * time.Second

// CatalogChangedMessage notifies subscribers that a store's catalog was
// modified and any cached product lists for it are stale
type CatalogChangedMessage struct {
	StoreID   string `json:"store_id"`
	Timestamp int64  `json:"timestamp"`
}

// RedisCatalogInvalidator broadcasts catalog change notifications over
// Redis Pub/Sub so every instance can refresh its in-memory product cache
type RedisCatalogInvalidator struct {
	client     *redis.Client
	ownsClient bool
	channel    string
	logger     *zap.Logger
	cancelFn   context.CancelFunc
	doneCh     chan struct{}
	doneOnce   sync.Once
	mu         sync.Mutex
	isRunning  bool
}

// CatalogInvalidatorOption is a functional option for configuring the invalidator
type CatalogInvalidatorOption func(*RedisCatalogInvalidator)

// WithInvalidatorChannel sets the Pub/Sub channel name
func WithInvalidatorChannel(channel string) CatalogInvalidatorOption {
	return func(i *RedisCatalogInvalidator) {
		i.channel = channel
	}
}

// WithInvalidatorLogger sets the logger for the invalidator
func WithInvalidatorLogger(logger *zap.Logger) CatalogInvalidatorOption {
	return func(i *RedisCatalogInvalidator) {
		i.logger = logger
	}
}

// NewRedisCatalogInvalidator creates an invalidator with an existing Redis
// client. The caller retains ownership of the client.
func NewRedisCatalogInvalidator(client *redis.Client, opts ...CatalogInvalidatorOption) *RedisCatalogInvalidator {
	invalidator := &RedisCatalogInvalidator{
		client:  client,
		channel: DefaultCatalogChannel,
		logger:  zap.NewNop(),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(invalidator)
	}
	return invalidator
}

// PublishCatalogChanged notifies all subscribers that a store's catalog changed
func (i *RedisCatalogInvalidator) PublishCatalogChanged(ctx context.Context, storeID string) error {
	msg := CatalogChangedMessage{
		StoreID:   storeID,
		Timestamp: time.Now().UnixNano(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog change message: %w", err)
	}

	if err := i.client.Publish(ctx, i.channel, data).Err(); err != nil {
		i.logger.Error("Failed to publish catalog change",
			zap.String("channel", i.channel),
			zap.String("store_id", storeID),
			zap.Error(err))
		return fmt.Errorf("failed to publish catalog change: %w", err)
	}

	i.logger.Debug("Published catalog change",
		zap.String("store_id", storeID),
		zap.String("channel", i.channel))

	return nil
}

// Subscribe starts listening for catalog change notifications. The
// callback is invoked for each received message. This method blocks and
// should be called in a goroutine.
func (i *RedisCatalogInvalidator) Subscribe(ctx context.Context, callback func(msg CatalogChangedMessage)) error {
	i.mu.Lock()
	if i.isRunning {
		i.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	i.isRunning = true
	i.mu.Unlock()

	subCtx, cancel := context.WithCancel(ctx)
	i.mu.Lock()
	i.cancelFn = cancel
	i.mu.Unlock()

	pubsub := i.client.Subscribe(subCtx, i.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(subCtx); err != nil {
		i.mu.Lock()
		i.isRunning = false
		i.mu.Unlock()
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	i.logger.Info("Subscribed to catalog invalidation channel",
		zap.String("channel", i.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			i.logger.Info("Catalog invalidation subscription stopped")
			i.mu.Lock()
			i.isRunning = false
			i.mu.Unlock()
			i.markDone()
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				i.logger.Warn("Catalog invalidation channel closed")
				i.mu.Lock()
				i.isRunning = false
				i.mu.Unlock()
				i.markDone()
				return nil
			}

			var changed CatalogChangedMessage
			if err := json.Unmarshal([]byte(msg.Payload), &changed); err != nil {
				i.logger.Error("Failed to unmarshal catalog change message",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}

			callback(changed)
		}
	}
}

func (i *RedisCatalogInvalidator) markDone() {
	i.doneOnce.Do(func() {
		close(i.doneCh)
	})
}

// Close stops the subscription and releases resources
func (i *RedisCatalogInvalidator) Close() error {
	i.mu.Lock()
	cancelFn := i.cancelFn
	i.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		select {
		case <-i.doneCh:
		case <-time.After(invalidatorCloseTimeout):
			i.logger.Warn("Timeout waiting for subscription to stop")
		}
	}

	if i.ownsClient {
		return i.client.Close()
	}
	return nil
}
