package history

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/web3-frozen/traffic-dashboard/internal/metrics"
)

const (
	// DefaultLimit is how many recent domains are kept.
	DefaultLimit = 10
	recentKey    = "traffic:recent"
)

// Recent keeps a capped, newest-first list of successfully looked-up
// domains. Only domain names are stored, never metrics.
type Recent struct {
	rdb   *redis.Client
	limit int
}

// New creates a Recent list backed by Redis.
func New(redisURL, password string, limit int) (*Recent, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if password != "" {
		opts.Password = password
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Recent{rdb: rdb, limit: limit}, nil
}

// Close shuts down the Redis connection.
func (r *Recent) Close() error {
	return r.rdb.Close()
}

// Ping reports whether Redis is reachable.
func (r *Recent) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Record moves domain to the front of the list, dropping older duplicates
// and anything beyond the limit.
func (r *Recent) Record(ctx context.Context, domain string) error {
	domain = strings.ToLower(domain)
	pipe := r.rdb.TxPipeline()
	pipe.LRem(ctx, recentKey, 0, domain)
	pipe.LPush(ctx, recentKey, domain)
	pipe.LTrim(ctx, recentKey, 0, int64(r.limit-1))
	if _, err := pipe.Exec(ctx); err != nil {
		metrics.HistoryErrorsTotal.WithLabelValues("record").Inc()
		return err
	}
	return nil
}

// List returns the recent domains, newest first.
func (r *Recent) List(ctx context.Context) ([]string, error) {
	domains, err := r.rdb.LRange(ctx, recentKey, 0, int64(r.limit-1)).Result()
	if err != nil {
		metrics.HistoryErrorsTotal.WithLabelValues("list").Inc()
		return nil, err
	}
	return domains, nil
}

// Clear removes the whole list.
func (r *Recent) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, recentKey).Err(); err != nil {
		metrics.HistoryErrorsTotal.WithLabelValues("clear").Inc()
		return err
	}
	return nil
}
