package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RangerDjanger/BetterDay/internal/domain/events"
	"github.com/RangerDjanger/BetterDay/pkg/config"
	"github.com/RangerDjanger/BetterDay/pkg/logger"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var log = logger.NewLogger()

// Custom error types
var (
	ErrCacheNotFound   = errors.New("cache: key not found")
	ErrCacheConnection = errors.New("cache: connection error")
	ErrInvalidConfig   = errors.New("cache: invalid configuration")
)

var cacheLookups = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cache_lookups_total",
		Help: "Cache lookups by type and result",
	},
	[]string{"type", "result"},
)

// EventChannel is the Redis channel carrying domain events.
const EventChannel = "betterday:events"

// Config holds the configuration for Redis client
type Config struct {
	Addr             string
	Password         string
	DB               int
	PoolSize         int
	MinIdleConns     int
	MaxRetries       int
	ConnTimeout      time.Duration
	OperationTimeout time.Duration
	HealthInterval   time.Duration
	MaxKeyLength     int    // Maximum allowed key length
	KeyPrefix        string // Prefix for all keys
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		PoolSize:         20,
		MinIdleConns:     2,
		MaxRetries:       3,
		ConnTimeout:      5 * time.Second,
		OperationTimeout: 2 * time.Second,
		HealthInterval:   10 * time.Second,
		MaxKeyLength:     256,
		KeyPrefix:        "betterday:",
	}
}

// NewConfigFromEnv creates a Redis config from project configuration
func NewConfigFromEnv(cfg *config.Config) *Config {
	c := DefaultConfig()
	c.Addr = cfg.Redis.Addr()
	c.Password = cfg.Redis.Password
	c.DB = cfg.Redis.DB
	if cfg.Server.Timeout > 0 {
		c.OperationTimeout = cfg.Server.Timeout
	}
	return c
}

// RedisClient wraps the Redis client with key prefixing, timeouts, health
// tracking and pub/sub helpers.
type RedisClient struct {
	client    *redis.Client
	config    *Config
	closeOnce sync.Once
	done      chan struct{}
	health    int32 // 0 = healthy, 1 = unhealthy
}

// NewRedisClient creates a new Redis client with the provided configuration
func NewRedisClient(cfg *Config) (*RedisClient, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidConfig)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnTimeout)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	r := &RedisClient{
		client: client,
		config: cfg,
		done:   make(chan struct{}),
	}

	if cfg.HealthInterval > 0 {
		go r.healthCheckLoop()
	}

	return r, nil
}

func (r *RedisClient) healthCheckLoop() {
	ticker := time.NewTicker(r.config.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), r.config.OperationTimeout)
			if err := r.HealthCheck(ctx); err != nil {
				atomic.StoreInt32(&r.health, 1)
				log.Error("Redis health check failed", zap.Error(err))
			} else {
				atomic.StoreInt32(&r.health, 0)
			}
			cancel()
		}
	}
}

// IsHealthy returns whether Redis is currently healthy
func (r *RedisClient) IsHealthy() bool {
	return atomic.LoadInt32(&r.health) == 0
}

// withContext wraps the context with a timeout if none is set
func (r *RedisClient) withContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); !ok {
		return context.WithTimeout(ctx, r.config.OperationTimeout)
	}
	return ctx, func() {}
}

func (r *RedisClient) validateKey(key string) error {
	if len(key) == 0 {
		return fmt.Errorf("%w: empty key", ErrInvalidConfig)
	}
	if len(key) > r.config.MaxKeyLength {
		return fmt.Errorf("%w: key too long (max %d characters)", ErrInvalidConfig, r.config.MaxKeyLength)
	}
	return nil
}

func (r *RedisClient) prefixKey(key string) string {
	return r.config.KeyPrefix + key
}

// Get retrieves a value from the cache
func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	if err := r.validateKey(key); err != nil {
		return "", err
	}

	if !r.IsHealthy() {
		return "", ErrCacheConnection
	}

	ctx, cancel := r.withContext(ctx)
	defer cancel()

	val, err := r.client.Get(ctx, r.prefixKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%w: %s", ErrCacheNotFound, key)
		}
		return "", fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}
	return val, nil
}

// Set stores a value in the cache
func (r *RedisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.validateKey(key); err != nil {
		return err
	}

	if !r.IsHealthy() {
		return ErrCacheConnection
	}

	ctx, cancel := r.withContext(ctx)
	defer cancel()

	return r.client.Set(ctx, r.prefixKey(key), value, ttl).Err()
}

// GetJSON decodes a cached JSON value into dest. It reports false on a miss.
func (r *RedisClient) GetJSON(ctx context.Context, key, cacheType string, dest interface{}) (bool, error) {
	raw, err := r.Get(ctx, key)
	if err != nil {
		cacheLookups.WithLabelValues(cacheType, "miss").Inc()
		if errors.Is(err, ErrCacheNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		cacheLookups.WithLabelValues(cacheType, "miss").Inc()
		log.Error("Error deserializing cached data", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	cacheLookups.WithLabelValues(cacheType, "hit").Inc()
	return true, nil
}

// SetJSON encodes value as JSON and caches it.
func (r *RedisClient) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	return r.Set(ctx, key, string(data), ttl)
}

// Delete removes values from the cache
func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if !r.IsHealthy() {
		return ErrCacheConnection
	}

	ctx, cancel := r.withContext(ctx)
	defer cancel()

	prefixedKeys := make([]string, len(keys))
	for i, key := range keys {
		if err := r.validateKey(key); err != nil {
			return err
		}
		prefixedKeys[i] = r.prefixKey(key)
	}

	return r.client.Del(ctx, prefixedKeys...).Err()
}

// ClearByPattern removes all cache entries matching the given pattern
func (r *RedisClient) ClearByPattern(ctx context.Context, pattern string) error {
	if !r.IsHealthy() {
		return ErrCacheConnection
	}

	ctx, cancel := r.withContext(ctx)
	defer cancel()

	iter := r.client.Scan(ctx, 0, r.prefixKey(pattern), 100).Iterator()
	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}

	return nil
}

// SAdd adds member to the set at key and reports whether it was newly added.
// The check and the insert are a single atomic Redis command.
func (r *RedisClient) SAdd(ctx context.Context, key, member string) (bool, error) {
	if err := r.validateKey(key); err != nil {
		return false, err
	}

	ctx, cancel := r.withContext(ctx)
	defer cancel()

	n, err := r.client.SAdd(ctx, r.prefixKey(key), member).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}
	return n == 1, nil
}

// SMembers lists the members of the set at key.
func (r *RedisClient) SMembers(ctx context.Context, key string) ([]string, error) {
	if err := r.validateKey(key); err != nil {
		return nil, err
	}

	ctx, cancel := r.withContext(ctx)
	defer cancel()

	members, err := r.client.SMembers(ctx, r.prefixKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}
	return members, nil
}

// GenerateCacheKey creates a unique cache key for the given entity
func GenerateCacheKey(entityType string, parts ...interface{}) string {
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, entityType)
	for _, p := range parts {
		segments = append(segments, fmt.Sprint(p))
	}
	return strings.Join(segments, ":")
}

// HealthCheck checks if Redis is responding
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client and stops the health loop.
func (r *RedisClient) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		err = r.client.Close()
	})
	return err
}

// GetClient returns the underlying Redis client
func (r *RedisClient) GetClient() *redis.Client {
	return r.client
}

// PublishEvent publishes a JSON-encoded payload to the specified Redis channel
func (r *RedisClient) PublishEvent(ctx context.Context, channel string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	ctx, cancel := r.withContext(ctx)
	defer cancel()

	return r.client.Publish(ctx, channel, data).Err()
}

// PublishDomainEvent publishes a domain event on EventChannel.
func (r *RedisClient) PublishDomainEvent(ctx context.Context, event *events.Event) error {
	return r.PublishEvent(ctx, EventChannel, event)
}

// Subscribe delivers raw payloads from channel to callback until ctx is done
// or the callback fails.
func (r *RedisClient) Subscribe(ctx context.Context, channel string, callback func(payload []byte) error) error {
	pubsub := r.client.Subscribe(ctx, channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := callback([]byte(msg.Payload)); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// SubscribeToEvents decodes domain events from EventChannel.
func (r *RedisClient) SubscribeToEvents(ctx context.Context, callback func(*events.Event) error) error {
	return r.Subscribe(ctx, EventChannel, func(payload []byte) error {
		var event events.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return err
		}
		return callback(&event)
	})
}
