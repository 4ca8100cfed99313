package service

import (
	"context"
	"strings"
	"time"

	"kasir-system/internal/apperr"
	"kasir-system/internal/database/models"
	"kasir-system/internal/services/cafe/store"

	"github.com/shopspring/decimal"
)

type Report struct {
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	CompletedOrders int64           `json:"completed_orders"`
	TodayRevenue    decimal.Decimal `json:"today_revenue"`
	TodayOrders     int64           `json:"today_orders"`
	TopMenus        []store.TopMenu `json:"top_menus"`
	GeneratedAt     time.Time       `json:"generated_at"`
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Report aggregates completed orders only.
func (s *Service) Report(ctx context.Context) (*Report, error) {
	now := s.now()

	total, count, err := s.store.CompletedRevenue(ctx, time.Time{})
	if err != nil {
		return nil, apperr.Internal("failed to sum revenue", err)
	}
	today, todayCount, err := s.store.CompletedRevenue(ctx, startOfDay(now))
	if err != nil {
		return nil, apperr.Internal("failed to sum today's revenue", err)
	}
	top, err := s.store.TopMenus(ctx, s.topMenus)
	if err != nil {
		return nil, apperr.Internal("failed to rank menus", err)
	}
	if top == nil {
		top = []store.TopMenu{}
	}

	return &Report{
		TotalRevenue:    total,
		CompletedOrders: count,
		TodayRevenue:    today,
		TodayOrders:     todayCount,
		TopMenus:        top,
		GeneratedAt:     now,
	}, nil
}

type CafeInput struct {
	Name    string
	Address string
	Phone   string
}

func (s *Service) ListCafes(ctx context.Context) ([]models.Cafe, error) {
	cafes, err := s.store.ListCafes(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list cafes", err)
	}
	return cafes, nil
}

func (s *Service) CreateCafe(ctx context.Context, in CafeInput) (*models.Cafe, error) {
	cafe := &models.Cafe{
		Name:    strings.TrimSpace(in.Name),
		Address: in.Address,
		Phone:   in.Phone,
	}
	if err := s.store.CreateCafe(ctx, cafe); err != nil {
		return nil, apperr.Internal("failed to create cafe", err)
	}
	return cafe, nil
}

// CafeExists backs the cafe_id check on user writes.
func (s *Service) CafeExists(ctx context.Context, id int64) (bool, error) {
	return s.store.CafeExists(ctx, id)
}
