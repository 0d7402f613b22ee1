package redis

import (
	"context"
	"errors"
	"time"

	"github.com/angristan/music-tonight/internal/infra/repository/kvstore"
	"github.com/redis/go-redis/v9"
)

const (
	defaultOpTimeout = 5 * time.Second
	scanBatchSize    = 100
)

// Backend stores entries as plain string keys "<table>:<key>" without
// expiry; the artist store is a system of record, not a TTL cache.
type Backend struct {
	redisClient *redis.Client
	prefix      string
	opTimeout   time.Duration
}

func New(redisClient *redis.Client, table string) (*Backend, error) {
	if err := kvstore.ValidateTableName(table); err != nil {
		return nil, err
	}

	return &Backend{
		redisClient: redisClient,
		prefix:      table + ":",
		opTimeout:   defaultOpTimeout,
	}, nil
}

// NewFromURL parses a redis:// URL and connects lazily.
func NewFromURL(url string, table string) (*Backend, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	return New(redis.NewClient(opts), table)
}

// Init checks connectivity. Redis keyspaces need no schema.
func (b *Backend) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, b.opTimeout)
	defer cancel()

	return b.redisClient.Ping(ctx).Err()
}

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, b.opTimeout)
	defer cancel()

	value, err := b.redisClient.Get(ctx, b.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, kvstore.ErrCacheMiss
		}

		return nil, err
	}

	return value, nil
}

func (b *Backend) Put(ctx context.Context, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, b.opTimeout)
	defer cancel()

	return b.redisClient.Set(ctx, b.prefix+key, value, 0).Err()
}

// Scan walks the keyspace with SCAN and fetches each value just before
// visiting it, so the cursor only advances at the visitor's pace. Keys
// removed mid-scan are skipped.
func (b *Backend) Scan(ctx context.Context, visit kvstore.Visitor) error {
	iter := b.redisClient.Scan(ctx, 0, b.prefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		fullKey := iter.Val()

		value, err := b.redisClient.Get(ctx, fullKey).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return err
		}

		if err := visit(ctx, fullKey[len(b.prefix):], value); err != nil {
			return err
		}
	}

	return iter.Err()
}

func (b *Backend) Close() error {
	return b.redisClient.Close()
}
