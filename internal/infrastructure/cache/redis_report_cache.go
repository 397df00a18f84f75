package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	appcashier "github.com/hotelops/backend/internal/application/cashier"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "cashier:report:monthly:"

// storeIfCurrent writes the report only while the generation key still holds
// the value read before the build. A missing generation key counts as 0.
var storeIfCurrent = redis.NewScript(`
local gen = redis.call("GET", KEYS[1]) or "0"
if gen ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 1
`)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisReportCache implements ReportCache using Redis. Reports are stored as
// JSON under one key per month so every instance shares invalidations.
type RedisReportCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisReportCache connects to Redis and verifies the connection
func NewRedisReportCache(cfg RedisConfig) (*RedisReportCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisReportCacheWithClient(client, ""), nil
}

// NewRedisReportCacheWithClient creates a cache over an existing client
func NewRedisReportCacheWithClient(client *redis.Client, keyPrefix string) *RedisReportCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisReportCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (c *RedisReportCache) key(year, month int) string {
	return fmt.Sprintf("%s%04d-%02d", c.keyPrefix, year, month)
}

func (c *RedisReportCache) generationKey(year, month int) string {
	return fmt.Sprintf("%sgen:%04d-%02d", c.keyPrefix, year, month)
}

// GetMonthly implements ReportCache
func (c *RedisReportCache) GetMonthly(ctx context.Context, year, month int) (*appcashier.MonthlyReport, bool, error) {
	data, err := c.client.Get(ctx, c.key(year, month)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read monthly report: %w", err)
	}

	var report appcashier.MonthlyReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, false, fmt.Errorf("failed to decode monthly report: %w", err)
	}
	return &report, true, nil
}

// MonthGeneration implements ReportCache
func (c *RedisReportCache) MonthGeneration(ctx context.Context, year, month int) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey(year, month)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read report generation: %w", err)
	}
	return gen, nil
}

// SetMonthly implements ReportCache. The generation check and the write run
// as one script so an invalidation cannot slip in between.
func (c *RedisReportCache) SetMonthly(ctx context.Context, report *appcashier.MonthlyReport, generation int64, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return false, fmt.Errorf("failed to encode monthly report: %w", err)
	}
	ms := ttl.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	keys := []string{c.generationKey(report.Year, report.Month), c.key(report.Year, report.Month)}
	stored, err := storeIfCurrent.Run(ctx, c.client, keys, strconv.FormatInt(generation, 10), data, ms).Int()
	if err != nil {
		return false, fmt.Errorf("failed to store monthly report: %w", err)
	}
	return stored == 1, nil
}

// InvalidateMonth implements ReportCache
func (c *RedisReportCache) InvalidateMonth(ctx context.Context, year, month int) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.generationKey(year, month))
		pipe.Del(ctx, c.key(year, month))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate monthly report: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (c *RedisReportCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

var _ appcashier.ReportCache = (*RedisReportCache)(nil)
