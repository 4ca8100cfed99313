// Package redisstore wraps the redis client for token revocation, the
// catalog read cache and domain event publishing.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	CACHE_TTL_SHORT  = 5 * time.Minute
	CACHE_TTL_MEDIUM = 30 * time.Minute
)

type TokenStore struct {
	client *redis.Client
	prefix string
}

func NewTokenStore(client *redis.Client, namespace string) *TokenStore {
	return &TokenStore{client: client, prefix: namespace + ":revoked:"}
}

// Revoke marks a token id as revoked until its natural expiry.
func (s *TokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, s.prefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *TokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}
	return n > 0, nil
}

type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCache(client *redis.Client, namespace string, ttl time.Duration) *Cache {
	return &Cache{client: client, prefix: namespace + ":", ttl: ttl}
}

// GetJSON decodes the cached value into dest. A miss returns false with a nil error.
func (c *Cache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}
	return c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.prefix + k
	}
	return c.client.Del(ctx, full...).Err()
}

type Event struct {
	EventType string      `json:"event_type"`
	EntityID  int64       `json:"entity_id"`
	Reference string      `json:"reference,omitempty"`
	UserID    int64       `json:"user_id"`
	Total     string      `json:"total,omitempty"`
	Status    string      `json:"status,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// Publisher fans each event out to <namespace>:events:<type> and
// <namespace>:events:all.
type Publisher struct {
	client    *redis.Client
	namespace string
}

func NewPublisher(client *redis.Client, namespace string) *Publisher {
	return &Publisher{client: client, namespace: namespace}
}

func (p *Publisher) Publish(ctx context.Context, event Event) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := ChannelFor(p.namespace, event.EventType)
	if err := p.client.Publish(ctx, channel, eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	if err := p.client.Publish(ctx, ChannelFor(p.namespace, "all"), eventJSON).Err(); err != nil {
		return fmt.Errorf("failed to publish to all channel: %w", err)
	}

	return nil
}

func ChannelFor(namespace, eventType string) string {
	return fmt.Sprintf("%s:events:%s", namespace, eventType)
}
