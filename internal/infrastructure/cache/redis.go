package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
)

// Cache stores reserve snapshots and derived prices. A miss returns (nil, nil)
// or ("", nil).
type Cache interface {
	GetPair(ctx context.Context, key string) (*entities.Pair, error)
	SetPair(ctx context.Context, key string, pair *entities.Pair, ttl time.Duration) error
	GetPrice(ctx context.Context, key string) (string, error)
	SetPrice(ctx context.Context, key string, price string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisCache implements Cache using Redis
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache client
func NewRedisCache(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisCacheFromClient(client), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping checks the connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// GetPair retrieves a cached pair
func (c *RedisCache) GetPair(ctx context.Context, key string) (*entities.Pair, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var pair entities.Pair
	if err := json.Unmarshal(data, &pair); err != nil {
		return nil, fmt.Errorf("decode cached pair %s: %w", key, err)
	}

	return &pair, nil
}

// SetPair caches a pair with TTL
func (c *RedisCache) SetPair(ctx context.Context, key string, pair *entities.Pair, ttl time.Duration) error {
	data, err := json.Marshal(pair)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetPrice retrieves a cached price
func (c *RedisCache) GetPrice(ctx context.Context, key string) (string, error) {
	price, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return price, nil
}

// SetPrice caches a price with TTL
func (c *RedisCache) SetPrice(ctx context.Context, key string, price string, ttl time.Duration) error {
	return c.client.Set(ctx, key, price, ttl).Err()
}

// Delete removes a key from cache
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// PairCacheKey generates a cache key for a pair. Token order does not matter.
func PairCacheKey(dex entities.DEXType, tokenA, tokenB string) string {
	a, b := strings.ToLower(tokenA), strings.ToLower(tokenB)
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("pair:%s:%s:%s", dex, a, b)
}

// PriceCacheKey generates a cache key for a price
func PriceCacheKey(token string) string {
	return fmt.Sprintf("price:%s", strings.ToLower(token))
}

// InMemoryCache implements Cache using in-memory storage (for testing/development)
type InMemoryCache struct {
	mu     sync.Mutex
	pairs  map[string]*cachedPair
	prices map[string]*cachedPrice
	now    func() time.Time
}

type cachedPair struct {
	pair      entities.Pair
	expiresAt time.Time
}

type cachedPrice struct {
	price     string
	expiresAt time.Time
}

// NewInMemoryCache creates a new in-memory cache
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{
		pairs:  make(map[string]*cachedPair),
		prices: make(map[string]*cachedPrice),
		now:    time.Now,
	}
}

func (c *InMemoryCache) GetPair(ctx context.Context, key string) (*entities.Pair, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.pairs[key]; ok {
		if c.now().Before(cached.expiresAt) {
			pair := cached.pair
			return &pair, nil
		}
		delete(c.pairs, key)
	}
	return nil, nil
}

func (c *InMemoryCache) SetPair(ctx context.Context, key string, pair *entities.Pair, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pairs[key] = &cachedPair{
		pair:      *pair,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

func (c *InMemoryCache) GetPrice(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.prices[key]; ok {
		if c.now().Before(cached.expiresAt) {
			return cached.price, nil
		}
		delete(c.prices, key)
	}
	return "", nil
}

func (c *InMemoryCache) SetPrice(ctx context.Context, key string, price string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prices[key] = &cachedPrice{
		price:     price,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.pairs, key)
	delete(c.prices, key)
	return nil
}
