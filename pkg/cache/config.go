package cache

import "time"

// PartitionOption configures a Partition.
type PartitionOption func(*PartitionConfig)

// PartitionConfig holds partition configuration.
type PartitionConfig struct {
	DefaultTTL      time.Duration
	MaxSize         int
	CleanupInterval time.Duration
	Clock           func() time.Time
}

// WithDefaultTTL sets the TTL applied when Set receives a non-positive one.
func WithDefaultTTL(ttl time.Duration) PartitionOption {
	return func(c *PartitionConfig) {
		c.DefaultTTL = ttl
	}
}

// WithMaxSize sets the entry capacity.
func WithMaxSize(size int) PartitionOption {
	return func(c *PartitionConfig) {
		c.MaxSize = size
	}
}

// WithCleanupInterval sets the minimum spacing between expired-entry sweeps.
func WithCleanupInterval(interval time.Duration) PartitionOption {
	return func(c *PartitionConfig) {
		c.CleanupInterval = interval
	}
}

// WithClock replaces the time source. Tests use this to drive expiry.
func WithClock(clock func() time.Time) PartitionOption {
	return func(c *PartitionConfig) {
		c.Clock = clock
	}
}

// RedisOption configures Redis cache.
type RedisOption func(*RedisConfig)

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	PoolTimeout  time.Duration
	MinIdleConns int
	Prefix       string
}

// WithRedisHost sets Redis host.
func WithRedisHost(host string) RedisOption {
	return func(c *RedisConfig) {
		c.Host = host
	}
}

// WithRedisPort sets Redis port.
func WithRedisPort(port int) RedisOption {
	return func(c *RedisConfig) {
		c.Port = port
	}
}

// WithRedisPassword sets Redis password.
func WithRedisPassword(password string) RedisOption {
	return func(c *RedisConfig) {
		c.Password = password
	}
}

// WithRedisDB sets Redis database number.
func WithRedisDB(db int) RedisOption {
	return func(c *RedisConfig) {
		c.DB = db
	}
}

// WithRedisPool sets connection pool settings.
func WithRedisPool(poolSize, minIdleConns int, timeout time.Duration) RedisOption {
	return func(c *RedisConfig) {
		c.PoolSize = poolSize
		c.MinIdleConns = minIdleConns
		c.PoolTimeout = timeout
	}
}

// WithRedisPrefix sets key prefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(c *RedisConfig) {
		c.Prefix = prefix
	}
}
