package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"ocean-query-service/internal/domain"
	"ocean-query-service/internal/platform/obs"
	"ocean-query-service/internal/ports"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 10 * time.Minute

// RedisRecordStore caches the small metadata reads of a RecordStore
// (distinct years and distinct locations) in Redis. Row reads go straight
// to the wrapped store.
//
// Redis failures never fail a query: the wrapped store is used instead.
type RedisRecordStore struct {
	next    ports.RecordStore
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	logger  *slog.Logger
	metrics *obs.Metrics
}

type RedisRecordStoreOptions struct {
	// Key prefix, typically the samples table name.
	Prefix  string
	TTL     time.Duration
	Logger  *slog.Logger
	Metrics *obs.Metrics
}

func NewRedisRecordStore(next ports.RecordStore, client *redis.Client, opts RedisRecordStoreOptions) *RedisRecordStore {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Prefix == "" {
		opts.Prefix = "samples"
	}
	if opts.Logger == nil {
		opts.Logger = obs.Discard()
	}
	return &RedisRecordStore{
		next:    next,
		client:  client,
		prefix:  "ocean:" + opts.Prefix,
		ttl:     opts.TTL,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
}

func (s *RedisRecordStore) DistinctLocations(ctx context.Context) ([]domain.Coordinates, error) {
	key := s.prefix + ":locations"

	var cached []domain.Coordinates
	if s.get(ctx, key, &cached) {
		return cached, nil
	}

	locs, err := s.next.DistinctLocations(ctx)
	if err != nil {
		return nil, err
	}
	s.set(ctx, key, locs)
	return locs, nil
}

func (s *RedisRecordStore) DistinctYears(ctx context.Context, param domain.Parameter) ([]int, error) {
	if !param.Valid() {
		return nil, fmt.Errorf("distinct years: %w", domain.ErrUnknownParameter)
	}
	key := fmt.Sprintf("%s:years:%s", s.prefix, param)

	var cached []int
	if s.get(ctx, key, &cached) {
		return cached, nil
	}

	years, err := s.next.DistinctYears(ctx, param)
	if err != nil {
		return nil, err
	}
	s.set(ctx, key, years)
	return years, nil
}

func (s *RedisRecordStore) RowsFor(ctx context.Context, param domain.Parameter, year *int) ([]domain.SampleRecord, error) {
	return s.next.RowsFor(ctx, param, year)
}

func (s *RedisRecordStore) RowsByIDs(ctx context.Context, param domain.Parameter, ids []int64) ([]domain.SampleRecord, error) {
	return s.next.RowsByIDs(ctx, param, ids)
}

// Invalidate drops every cached entry under this store's prefix, e.g. after
// reseeding.
func (s *RedisRecordStore) Invalidate(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("invalidate cache: scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate cache: del: %w", err)
	}
	return nil
}

func (s *RedisRecordStore) get(ctx context.Context, key string, dst any) bool {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		s.count("miss")
		return false
	}
	if err != nil {
		s.count("error")
		s.logger.WarnContext(ctx, "cache get failed", "req_id", obs.RequestID(ctx), "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.count("error")
		s.logger.WarnContext(ctx, "cache entry corrupt", "key", key, "error", err)
		return false
	}
	s.count("hit")
	return true
}

func (s *RedisRecordStore) set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "cache set failed", "req_id", obs.RequestID(ctx), "key", key, "error", err)
	}
}

func (s *RedisRecordStore) count(result string) {
	if s.metrics != nil {
		s.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
