// Package redis provides a Redis-backed location index, for teams that share
// one attachment cache between several machines.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/snowreport/internal/core/domain"
	"github.com/custodia-labs/snowreport/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.LocationIndex = (*LocationIndex)(nil)

// locationPrefix namespaces index keys.
const locationPrefix = "snowreport:location:"

// LocationIndex implements driven.LocationIndex using Redis strings.
type LocationIndex struct {
	client *redis.Client
}

// NewLocationIndex creates a Redis-backed LocationIndex.
func NewLocationIndex(client *redis.Client) *LocationIndex {
	return &LocationIndex{client: client}
}

// NewClient parses a redis:// URL and checks the server is reachable.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, &domain.ConfigError{Field: "cache.redis_url", Reason: err.Error()}
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// Lookup returns the fingerprint recorded for location.
func (l *LocationIndex) Lookup(ctx context.Context, location string) (domain.Fingerprint, error) {
	fp, err := l.client.Get(ctx, locationPrefix+location).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up location: %w", err)
	}
	return domain.Fingerprint(fp), nil
}

// Record stores or replaces the fingerprint for location.
func (l *LocationIndex) Record(ctx context.Context, location string, fp domain.Fingerprint) error {
	if err := l.client.Set(ctx, locationPrefix+location, string(fp), 0).Err(); err != nil {
		return fmt.Errorf("failed to record location: %w", err)
	}
	return nil
}

// Forget removes location.
func (l *LocationIndex) Forget(ctx context.Context, location string) error {
	if err := l.client.Del(ctx, locationPrefix+location).Err(); err != nil {
		return fmt.Errorf("failed to forget location: %w", err)
	}
	return nil
}
