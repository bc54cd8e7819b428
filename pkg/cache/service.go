package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Service is a JSON read-through cache. It only ever holds display data;
// callers must treat a miss or an error as "go to the database".
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error

	// Cache-aside pattern helper
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error

	Ping(ctx context.Context) error
}

// Error definitions
var (
	ErrCacheMiss = errors.New("cache miss")
)

// getOrSet implements cache-aside on top of any Service
func getOrSet(ctx context.Context, s Service, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	if err := s.Get(ctx, key, dest); err == nil {
		return nil
	}

	data, err := fetcher()
	if err != nil {
		return fmt.Errorf("fetcher error: %w", err)
	}

	// A failed set never fails the request
	_ = s.Set(ctx, key, data, ttl)

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal fetched data error: %w", err)
	}
	return json.Unmarshal(jsonData, dest)
}

type noopService struct{}

// NewNoopService returns a Service that never stores anything, used when
// Redis is not configured.
func NewNoopService() Service {
	return noopService{}
}

func (noopService) Get(context.Context, string, interface{}) error { return ErrCacheMiss }

func (noopService) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (noopService) Delete(context.Context, ...string) error { return nil }

func (noopService) DeletePattern(context.Context, string) error { return nil }

func (n noopService) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	return getOrSet(ctx, n, key, ttl, fetcher, dest)
}

func (noopService) Ping(context.Context) error { return nil }
