package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dreschagin/hostinfo/internal/application/dto"
	"github.com/dreschagin/hostinfo/internal/application/port"
	"github.com/dreschagin/hostinfo/internal/domain/entity"
	"github.com/dreschagin/hostinfo/internal/domain/valueobject"
)

// ErrCacheMiss is returned by Latest when no document is cached for the key.
var ErrCacheMiss = errors.New("cache miss: key not found")

type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

var (
	_ port.DocumentPublisher = (*DocumentCache)(nil)
	_ port.RunRecorder       = (*DocumentCache)(nil)
	_ port.DocumentCache     = (*DocumentCache)(nil)
)

// DocumentCache keeps the latest document per host and metric in Redis.
// Implements port.DocumentPublisher, port.RunRecorder and port.DocumentCache.
type DocumentCache struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// NewDocumentCache creates a new Redis cache instance
func NewDocumentCache(cfg Config) (*DocumentCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MaxRetries:   3,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newDocumentCache(client, cfg), nil
}

func newDocumentCache(client redis.UniversalClient, cfg Config) *DocumentCache {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "hostinfo"
	}
	return &DocumentCache{
		client:    client,
		keyPrefix: prefix,
		ttl:       cfg.TTL,
	}
}

func (c *DocumentCache) Name() string {
	return "redis"
}

// PublishDocument stores the document DTO under <prefix>:<host>:<metric>
func (c *DocumentCache) PublishDocument(ctx context.Context, doc *entity.Document) error {
	return c.set(ctx, c.DocumentKey(doc.Host(), doc.Metric()), dto.FromDocument(doc))
}

// RecordRun stores the run summary under <prefix>:<host>:run
func (c *DocumentCache) RecordRun(ctx context.Context, summary *entity.RunSummary) error {
	return c.set(ctx, c.RunKey(summary.Host.Hostname), dto.FromRunSummary(summary))
}

// Latest reads the cached document for host and metric
func (c *DocumentCache) Latest(ctx context.Context, host string, metric valueobject.MetricName) (*entity.Document, error) {
	val, err := c.client.Get(ctx, c.DocumentKey(host, metric)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var cached dto.DocumentDTO
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	return cached.ToEntity()
}

func (c *DocumentCache) set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

// DocumentKey generates a cache key for the latest document of a metric
func (c *DocumentCache) DocumentKey(host string, metric valueobject.MetricName) string {
	return fmt.Sprintf("%s:%s:%s", c.keyPrefix, host, metric)
}

// RunKey generates a cache key for the latest run summary of a host
func (c *DocumentCache) RunKey(host string) string {
	return fmt.Sprintf("%s:%s:run", c.keyPrefix, host)
}

// Close closes the Redis connection
func (c *DocumentCache) Close() error {
	return c.client.Close()
}
