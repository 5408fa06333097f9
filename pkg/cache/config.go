package cache

import (
	"net"
	"strconv"
	"time"
)

type (
	RedisOption   func(*redisConfig)
	MemoryOption  func(*memoryConfig)
	LayeredOption func(*layeredConfig)
)

type redisConfig struct {
	addr         string
	password     string
	db           int
	poolSize     int
	minIdleConns int
	poolTimeout  time.Duration
	prefix       string
}

func defaultRedisConfig() *redisConfig {
	return &redisConfig{
		addr:         "localhost:6379",
		poolSize:     10,
		minIdleConns: 2,
		poolTimeout:  30 * time.Second,
		prefix:       "stockx",
	}
}

// WithRedisAddr sets the server address. A zero port keeps 6379.
func WithRedisAddr(host string, port int) RedisOption {
	return func(c *redisConfig) {
		if port == 0 {
			port = 6379
		}
		c.addr = net.JoinHostPort(host, strconv.Itoa(port))
	}
}

func WithRedisAuth(password string, db int) RedisOption {
	return func(c *redisConfig) {
		c.password = password
		c.db = db
	}
}

func WithRedisPool(size, minIdle int) RedisOption {
	return func(c *redisConfig) {
		if size > 0 {
			c.poolSize = size
		}
		c.minIdleConns = minIdle
	}
}

// WithRedisPrefix sets the namespace every key is stored under.
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *redisConfig) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

type memoryConfig struct {
	maxSize         int
	defaultTTL      time.Duration
	cleanupInterval time.Duration
}

// WithMemoryMaxSize caps the number of entries before LRU eviction.
func WithMemoryMaxSize(size int) MemoryOption {
	return func(c *memoryConfig) {
		c.maxSize = size
	}
}

// WithMemoryDefaultTTL is applied to Set calls with a non-positive expiration.
func WithMemoryDefaultTTL(ttl time.Duration) MemoryOption {
	return func(c *memoryConfig) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

type layeredConfig struct {
	l1Size int
	l1TTL  time.Duration
}

// WithL1 sizes the in-process tier. ttl bounds how long an L1 copy may
// outlive a Redis update.
func WithL1(size int, ttl time.Duration) LayeredOption {
	return func(c *layeredConfig) {
		if size > 0 {
			c.l1Size = size
		}
		if ttl > 0 {
			c.l1TTL = ttl
		}
	}
}
