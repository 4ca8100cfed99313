package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kasir-system/internal/apperr"
	"kasir-system/internal/database"
	"kasir-system/internal/database/models"
	"kasir-system/internal/pkg/logging"
	"kasir-system/internal/services/cafe/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MenuInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	ImageURL    string
}

type UpdateMenuInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	ImageURL    *string
}

func menuKey(id int64) string {
	return fmt.Sprintf("%s%d", menuCachePrefix, id)
}

// ListMenus serves the unfiltered catalog from cache when possible.
func (s *Service) ListMenus(ctx context.Context, filter store.MenuFilter) ([]models.Menu, error) {
	cacheable := filter.Category == "" && filter.Search == ""
	if cacheable {
		var cached []models.Menu
		if ok, err := s.cache.GetJSON(ctx, menuListCacheKey, &cached); err != nil {
			logging.FromContext(ctx).Warn("menu cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	menus, err := s.store.ListMenus(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("failed to list menus", err)
	}

	if cacheable {
		if err := s.cache.SetJSON(ctx, menuListCacheKey, menus); err != nil {
			logging.FromContext(ctx).Warn("menu cache write failed", zap.Error(err))
		}
	}
	return menus, nil
}

func (s *Service) GetMenu(ctx context.Context, id int64) (*models.Menu, error) {
	var cached models.Menu
	if ok, _ := s.cache.GetJSON(ctx, menuKey(id), &cached); ok {
		return &cached, nil
	}

	menu, err := s.store.GetMenu(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Menu with ID %d not found", id)
		}
		return nil, apperr.Internal("failed to get menu", err)
	}
	_ = s.cache.SetJSON(ctx, menuKey(id), menu)
	return menu, nil
}

func (s *Service) CreateMenu(ctx context.Context, in MenuInput) (*models.Menu, error) {
	if in.Price.IsNegative() {
		return nil, apperr.Field("price", "The price must be at least 0.")
	}

	menu := &models.Menu{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Category:    strings.TrimSpace(in.Category),
		ImageURL:    in.ImageURL,
	}
	if err := s.store.CreateMenu(ctx, menu); err != nil {
		return nil, apperr.Internal("failed to create menu", err)
	}
	s.invalidate(ctx, menuListCacheKey)
	return menu, nil
}

func (s *Service) UpdateMenu(ctx context.Context, id int64, in UpdateMenuInput) (*models.Menu, error) {
	menu, err := s.store.GetMenu(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Menu with ID %d not found", id)
		}
		return nil, apperr.Internal("failed to get menu", err)
	}

	if in.Name != nil {
		menu.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		menu.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, apperr.Field("price", "The price must be at least 0.")
		}
		menu.Price = *in.Price
	}
	if in.Category != nil {
		menu.Category = strings.TrimSpace(*in.Category)
	}
	if in.ImageURL != nil {
		menu.ImageURL = *in.ImageURL
	}

	if err := s.store.UpdateMenu(ctx, menu); err != nil {
		return nil, apperr.Internal("failed to update menu", err)
	}
	s.invalidate(ctx, menuListCacheKey, menuKey(id))
	return menu, nil
}

func (s *Service) DeleteMenu(ctx context.Context, id int64) error {
	if err := s.store.DeleteMenu(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return apperr.NotFound("Menu with ID %d not found", id)
		case errors.Is(err, database.ErrReferenced):
			return apperr.Rule("Menu sudah pernah dipesan dan tidak dapat dihapus")
		}
		return apperr.Internal("failed to delete menu", err)
	}
	s.invalidate(ctx, menuListCacheKey, menuKey(id))
	return nil
}
