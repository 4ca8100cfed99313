// Package service holds the cafe business rules: menu catalog, the order
// lifecycle and revenue reporting.
package service

import (
	"context"
	"time"

	"kasir-system/internal/metrics"
	"kasir-system/internal/pkg/logging"
	"kasir-system/internal/redisstore"
	"kasir-system/internal/services/cafe/store"

	"go.uber.org/zap"
)

const (
	EventOrderCreated   = "order.created"
	EventOrderUpdated   = "order.updated"
	EventOrderCompleted = "order.completed"

	menuListCacheKey = "menus:list"
	menuCachePrefix  = "menu:"

	msgOrderClosed = "Pesanan ini sudah selesai atau telah dibatalkan."
)

// Cache is the read-through cache used for the menu catalog.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}) error
	Invalidate(ctx context.Context, keys ...string) error
}

type Publisher interface {
	Publish(ctx context.Context, event redisstore.Event) error
}

type noopCache struct{}

func (noopCache) GetJSON(context.Context, string, interface{}) (bool, error) { return false, nil }
func (noopCache) SetJSON(context.Context, string, interface{}) error         { return nil }
func (noopCache) Invalidate(context.Context, ...string) error                { return nil }

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, redisstore.Event) error { return nil }

type Service struct {
	store     store.Store
	cache     Cache
	publisher Publisher
	metrics   *metrics.Metrics
	topMenus  int
	now       func() time.Time
}

// NewService wires the cafe service. cache, publisher and m may be nil.
func NewService(st store.Store, cache Cache, publisher Publisher, m *metrics.Metrics) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &Service{
		store:     st,
		cache:     cache,
		publisher: publisher,
		metrics:   m,
		topMenus:  5,
		now:       time.Now,
	}
}

// WithTopMenus sets how many menus the revenue report ranks.
func (s *Service) WithTopMenus(n int) *Service {
	if n > 0 {
		s.topMenus = n
	}
	return s
}

func (s *Service) publish(ctx context.Context, event redisstore.Event) {
	event.Timestamp = s.now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("failed to publish event",
			zap.String("event_type", event.EventType),
			zap.Int64("entity_id", event.EntityID),
			zap.Error(err),
		)
	}
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		logging.FromContext(ctx).Warn("failed to invalidate cache", zap.Strings("keys", keys), zap.Error(err))
	}
}
