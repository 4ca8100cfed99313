// Package service holds the pharmacy business rules: catalog and supplier
// maintenance, sales, stock receipts and reporting.
package service

import (
	"context"
	"time"

	"kasir-system/config"
	"kasir-system/internal/metrics"
	"kasir-system/internal/pkg/logging"
	"kasir-system/internal/pricing"
	"kasir-system/internal/redisstore"
	"kasir-system/internal/services/farma/store"

	"go.uber.org/zap"
)

const (
	EventSaleCreated   = "sale.created"
	EventStockReceived = "stock.received"

	obatListCacheKey = "obat:list"
)

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

type Options struct {
	Cache     Cache
	Publisher Publisher
	Metrics   *metrics.Metrics
	Markup    pricing.Markup
	Reports   config.ReportConfig
}

type Service struct {
	store     store.Store
	cache     Cache
	publisher Publisher
	metrics   *metrics.Metrics
	markup    pricing.Markup
	reports   config.ReportConfig
	now       func() time.Time
}

func NewService(st store.Store, opts Options) *Service {
	if opts.Cache == nil {
		opts.Cache = noopCache{}
	}
	if opts.Publisher == nil {
		opts.Publisher = noopPublisher{}
	}
	if opts.Reports.LowStockFallback <= 0 {
		opts.Reports.LowStockFallback = 10
	}
	if opts.Reports.ExpiryWindowDays <= 0 {
		opts.Reports.ExpiryWindowDays = 90
	}
	if opts.Reports.TopItems <= 0 {
		opts.Reports.TopItems = 5
	}
	if opts.Reports.RecentSales <= 0 {
		opts.Reports.RecentSales = 3
	}
	return &Service{
		store:     st,
		cache:     opts.Cache,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		markup:    opts.Markup,
		reports:   opts.Reports,
		now:       time.Now,
	}
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

func (s *Service) invalidateCatalog(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, obatListCacheKey); err != nil {
		logging.FromContext(ctx).Warn("failed to invalidate obat cache", zap.Error(err))
	}
}
